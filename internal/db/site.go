package db

import (
	"net"
	"strconv"

	"gorm.io/gorm"
)

// Site is a tenant: one logical website addressed by hostname and port.
type Site struct {
	gorm.Model
	Hostname   string `gorm:"size:255;not null;uniqueIndex:idx_site_host_port"`
	Port       int    `gorm:"not null;default:80;uniqueIndex:idx_site_host_port"`
	SiteName   string
	RootPageID *uint
	RootPage   *Page `gorm:"constraint:OnDelete:SET NULL"`
}

// TableName keeps the table name stable across drivers.
func (Site) TableName() string {
	return "sites"
}

// Address renders hostname:port, omitting port 80.
func (s Site) Address() string {
	if s.Port == 80 || s.Port == 0 {
		return s.Hostname
	}
	return net.JoinHostPort(s.Hostname, strconv.Itoa(s.Port))
}
