package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sitebrand/internal/db"
	"gorm.io/gorm"
)

// ErrImageNotFound is returned when an image id does not exist.
var ErrImageNotFound = errors.New("image not found")

// ImageService registers image references that branding can point at.
type ImageService struct {
	db *gorm.DB
}

// ImageInput represents fields accepted when registering an image.
type ImageInput struct {
	Title   string `validate:"required,max=255"`
	FileURL string `validate:"required,uri"`
	Width   int    `validate:"gte=0"`
	Height  int    `validate:"gte=0"`
}

// ImageListResult aggregates a page of images.
type ImageListResult struct {
	Items      []db.Image
	Total      int64
	TotalPages int
	Page       int
	PerPage    int
}

// NewImageService creates an ImageService instance.
func NewImageService(gdb *gorm.DB) *ImageService {
	return &ImageService{db: gdb}
}

// Create stores a new image reference.
func (s *ImageService) Create(ctx context.Context, input ImageInput) (*db.Image, error) {
	input.Title = strings.TrimSpace(input.Title)
	input.FileURL = strings.TrimSpace(input.FileURL)
	if err := validateInput(input); err != nil {
		return nil, err
	}

	item := db.Image{
		Title:   input.Title,
		FileURL: input.FileURL,
		Width:   input.Width,
		Height:  input.Height,
	}
	if err := s.db.WithContext(ctx).Create(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// Get fetches an image by id.
func (s *ImageService) Get(ctx context.Context, id uint) (*db.Image, error) {
	var item db.Image
	if err := s.db.WithContext(ctx).First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: id %d", ErrImageNotFound, id)
		}
		return nil, err
	}
	return &item, nil
}

// List returns images newest first.
func (s *ImageService) List(ctx context.Context, page, perPage int) (ImageListResult, error) {
	result := ImageListResult{
		Page:    normalizePage(page),
		PerPage: normalizePerPage(perPage, 20),
	}

	query := s.db.WithContext(ctx).Model(&db.Image{}).Session(&gorm.Session{})
	if err := query.Count(&result.Total).Error; err != nil {
		return result, err
	}

	result.TotalPages = calculateTotalPages(result.Total, result.PerPage)
	offset := (result.Page - 1) * result.PerPage

	if err := query.Order("created_at desc").Order("id desc").
		Limit(result.PerPage).
		Offset(offset).
		Find(&result.Items).Error; err != nil {
		return result, err
	}
	return result, nil
}

func normalizePage(page int) int {
	if page < 1 {
		return 1
	}
	return page
}

func normalizePerPage(perPage, fallback int) int {
	if perPage <= 0 {
		return fallback
	}
	return perPage
}

func calculateTotalPages(total int64, perPage int) int {
	if perPage <= 0 {
		return 1
	}
	if total == 0 {
		return 1
	}
	return int((total + int64(perPage) - 1) / int64(perPage))
}
