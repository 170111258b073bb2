package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/sitebrand/internal/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrLogoNotFound is returned when a branding update references a missing image.
var ErrLogoNotFound = errors.New("logo image not found")

// BrandingService reads and updates the per-site branding record.
type BrandingService struct {
	db *gorm.DB
}

// BrandingInput carries the administrative update. A nil LogoID clears the logo.
type BrandingInput struct {
	LogoID *uint
}

// NewBrandingService constructs a BrandingService.
func NewBrandingService(gdb *gorm.DB) *BrandingService {
	return &BrandingService{db: gdb}
}

// ForSite returns the branding stored for site, or an unsaved default without
// a logo when none was configured. Reads never create rows.
func (s *BrandingService) ForSite(ctx context.Context, site *db.Site) (*db.BrandingSettings, error) {
	if site == nil || site.ID == 0 {
		return nil, ErrSiteNotFound
	}

	var settings db.BrandingSettings
	err := s.db.WithContext(ctx).
		Preload("Logo").
		Where("site_id = ?", site.ID).
		First(&settings).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &db.BrandingSettings{SiteID: site.ID, Site: *site}, nil
		}
		return nil, fmt.Errorf("load branding for site %d: %w", site.ID, err)
	}

	settings.Site = *site
	return &settings, nil
}

// Update creates or replaces the branding of a site.
func (s *BrandingService) Update(ctx context.Context, siteID uint, input BrandingInput) (*db.BrandingSettings, error) {
	var site db.Site
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&site, siteID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: id %d", ErrSiteNotFound, siteID)
			}
			return err
		}

		if input.LogoID != nil {
			var count int64
			if err := tx.Model(&db.Image{}).Where("id = ?", *input.LogoID).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return fmt.Errorf("%w: id %d", ErrLogoNotFound, *input.LogoID)
			}
		}

		settings := db.BrandingSettings{SiteID: siteID, LogoID: input.LogoID}
		return tx.Omit(clause.Associations).Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "site_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"logo_id":    input.LogoID,
				"updated_at": gorm.Expr("CURRENT_TIMESTAMP"),
			}),
		}).Create(&settings).Error
	})
	if err != nil {
		return nil, fmt.Errorf("update branding: %w", err)
	}

	return s.ForSite(ctx, &site)
}
