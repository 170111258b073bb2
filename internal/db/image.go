package db

import "gorm.io/gorm"

// Image is a reference to an asset held by the image store.
type Image struct {
	gorm.Model
	Title   string `gorm:"not null"`
	FileURL string `gorm:"not null"`
	Width   int
	Height  int
}
