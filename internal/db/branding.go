package db

import "gorm.io/gorm"

// BrandingSettings holds the per-site branding. There is at most one row per site.
type BrandingSettings struct {
	gorm.Model
	SiteID uint   `gorm:"not null;uniqueIndex"`
	Site   Site   `gorm:"constraint:OnDelete:CASCADE"`
	LogoID *uint  `gorm:"index"`
	Logo   *Image `gorm:"constraint:OnDelete:SET NULL"`
}

// TableName keeps the table name stable across drivers.
func (BrandingSettings) TableName() string {
	return "site_branding_settings"
}

// HasLogo reports whether a logo image is configured.
func (b *BrandingSettings) HasLogo() bool {
	return b != nil && b.LogoID != nil
}

// LogoURL returns the logo file URL or "" when no logo is set or loaded.
func (b *BrandingSettings) LogoURL() string {
	if b == nil || b.Logo == nil {
		return ""
	}
	return b.Logo.FileURL
}
