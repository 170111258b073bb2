package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sitebrand/internal/db"
	"github.com/sitebrand/internal/pagetype"
	"gorm.io/gorm"
)

var (
	ErrPageNotFound    = errors.New("page not found")
	ErrParentNotFound  = errors.New("parent page not found")
	ErrSlugTaken       = errors.New("slug already used by a sibling page")
	ErrNotBlogIndex    = errors.New("page is not a blog index")
	ErrPageHasChildren = errors.New("page still has child pages")
	ErrPageIsSiteRoot  = errors.New("page is the root of a site")
)

// PageService creates, publishes and lists pages of the typed page tree.
type PageService struct {
	db  *gorm.DB
	now func() time.Time
}

// PageInput describes a page to create. Body applies to Section and Blog
// pages, Intro to BlogIndex pages; other combinations are ignored.
type PageInput struct {
	Kind     pagetype.Kind `validate:"required"`
	ParentID *uint
	Title    string `validate:"required,max=255"`
	Slug     string `validate:"max=255"`
	Body     string
	Intro    string
}

// PageUpdate changes editable fields; nil fields are left untouched.
type PageUpdate struct {
	Title *string `validate:"omitempty,min=1,max=255"`
	Slug  *string `validate:"omitempty,max=255"`
	Body  *string
	Intro *string
}

// NewPageService returns a new PageService instance.
func NewPageService(gdb *gorm.DB) *PageService {
	return &PageService{db: gdb, now: time.Now}
}

// Get fetches a page by id.
func (s *PageService) Get(ctx context.Context, id uint) (*db.Page, error) {
	return findPage(s.db.WithContext(ctx), id)
}

// Create validates the placement of the new page and stores it as a draft.
func (s *PageService) Create(ctx context.Context, input PageInput) (*db.Page, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	if !input.Kind.Valid() {
		return nil, fmt.Errorf("%w: %q", pagetype.ErrUnknownKind, input.Kind)
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: Title failed %q", ErrInvalidInput, "required")
	}

	slug := Slugify(input.Slug)
	if slug == "" {
		slug = Slugify(title)
	}
	if slug == "" {
		slug = string(input.Kind)
	}

	page := db.Page{
		Kind:   input.Kind,
		Title:  title,
		Slug:   slug,
		Status: db.PageStatusDraft,
	}
	switch input.Kind {
	case pagetype.KindSection, pagetype.KindBlog:
		page.Body = input.Body
	case pagetype.KindBlogIndex:
		page.Intro = input.Intro
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if input.ParentID == nil {
			if err := pagetype.CheckPlacement(pagetype.NoParent, input.Kind); err != nil {
				return err
			}
		} else {
			parent, err := findPage(tx, *input.ParentID)
			if err != nil {
				if errors.Is(err, ErrPageNotFound) {
					return fmt.Errorf("%w: id %d", ErrParentNotFound, *input.ParentID)
				}
				return err
			}
			if err := pagetype.CheckPlacement(parent.Kind, input.Kind); err != nil {
				return err
			}
			if err := ensureSlugFree(tx, parent.ID, slug, 0); err != nil {
				return err
			}
			page.ParentID = &parent.ID
			page.RootID = parent.RootID
		}

		if err := tx.Create(&page).Error; err != nil {
			return err
		}

		if page.ParentID == nil {
			page.RootID = page.ID
			return tx.Model(&page).Update("root_id", page.ID).Error
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &page, nil
}

// Update applies editable field changes to an existing page.
func (s *PageService) Update(ctx context.Context, id uint, input PageUpdate) (*db.Page, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	var page *db.Page
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := findPage(tx, id)
		if err != nil {
			return err
		}
		page = existing

		if input.Title != nil {
			title := strings.TrimSpace(*input.Title)
			if title == "" {
				return fmt.Errorf("%w: Title failed %q", ErrInvalidInput, "required")
			}
			page.Title = title
		}
		if input.Slug != nil {
			slug := Slugify(*input.Slug)
			if slug == "" {
				return fmt.Errorf("%w: Slug failed %q", ErrInvalidInput, "slug")
			}
			if page.ParentID != nil && slug != page.Slug {
				if err := ensureSlugFree(tx, *page.ParentID, slug, page.ID); err != nil {
					return err
				}
			}
			page.Slug = slug
		}
		if input.Body != nil && (page.Kind == pagetype.KindSection || page.Kind == pagetype.KindBlog) {
			page.Body = *input.Body
		}
		if input.Intro != nil && page.Kind == pagetype.KindBlogIndex {
			page.Intro = *input.Intro
		}

		return tx.Save(page).Error
	})
	if err != nil {
		return nil, err
	}
	return page, nil
}

// Publish makes a page live. FirstPublishedAt is only set on the first publish.
func (s *PageService) Publish(ctx context.Context, id uint, at *time.Time) (*db.Page, error) {
	publishTime := s.now()
	if at != nil && !at.IsZero() {
		publishTime = *at
	}
	publishTime = publishTime.UTC()

	var page *db.Page
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := findPage(tx, id)
		if err != nil {
			return err
		}
		page = existing

		updates := map[string]interface{}{
			"status":            db.PageStatusLive,
			"last_published_at": publishTime,
		}
		if page.FirstPublishedAt == nil {
			updates["first_published_at"] = publishTime
			page.FirstPublishedAt = &publishTime
		}
		page.Status = db.PageStatusLive
		page.LastPublishedAt = &publishTime

		return tx.Model(&db.Page{}).Where("id = ?", page.ID).Updates(updates).Error
	})
	if err != nil {
		return nil, err
	}
	return page, nil
}

// Unpublish returns a page to draft. Its first-published time is kept.
func (s *PageService) Unpublish(ctx context.Context, id uint) (*db.Page, error) {
	page, err := findPage(s.db.WithContext(ctx), id)
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(&db.Page{}).Where("id = ?", id).Update("status", db.PageStatusDraft).Error; err != nil {
		return nil, err
	}
	page.Status = db.PageStatusDraft
	return page, nil
}

// Children lists the direct children of a page in creation order.
func (s *PageService) Children(ctx context.Context, parentID uint) ([]db.Page, error) {
	gdb := s.db.WithContext(ctx)
	if _, err := findPage(gdb, parentID); err != nil {
		return nil, err
	}

	var pages []db.Page
	if err := gdb.Where("parent_id = ?", parentID).Order("id asc").Find(&pages).Error; err != nil {
		return nil, err
	}
	return pages, nil
}

// BlogEntries lists the live Blog children of a BlogIndex page, newest
// first-published first.
func (s *PageService) BlogEntries(ctx context.Context, indexID uint) ([]db.Page, error) {
	gdb := s.db.WithContext(ctx)
	index, err := findPage(gdb, indexID)
	if err != nil {
		return nil, err
	}
	if index.Kind != pagetype.KindBlogIndex {
		return nil, fmt.Errorf("%w: page %d is %s", ErrNotBlogIndex, index.ID, index.Kind.Label())
	}

	var entries []db.Page
	if err := gdb.
		Where("parent_id = ? AND kind = ? AND status = ?", index.ID, pagetype.KindBlog, db.PageStatusLive).
		Order("first_published_at desc, id desc").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// LiveInTree fetches a live page that belongs to the tree rooted at rootID.
func (s *PageService) LiveInTree(ctx context.Context, rootID, id uint) (*db.Page, error) {
	var page db.Page
	if err := s.db.WithContext(ctx).
		Where("id = ? AND root_id = ? AND status = ?", id, rootID, db.PageStatusLive).
		First(&page).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: id %d", ErrPageNotFound, id)
		}
		return nil, err
	}
	return &page, nil
}

// Delete removes a leaf page that no site uses as its root.
func (s *PageService) Delete(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		page, err := findPage(tx, id)
		if err != nil {
			return err
		}

		var children int64
		if err := tx.Model(&db.Page{}).Where("parent_id = ?", page.ID).Count(&children).Error; err != nil {
			return err
		}
		if children > 0 {
			return fmt.Errorf("%w: %d", ErrPageHasChildren, children)
		}

		var roots int64
		if err := tx.Model(&db.Site{}).Where("root_page_id = ?", page.ID).Count(&roots).Error; err != nil {
			return err
		}
		if roots > 0 {
			return ErrPageIsSiteRoot
		}

		return tx.Unscoped().Delete(&db.Page{}, page.ID).Error
	})
}

func findPage(gdb *gorm.DB, id uint) (*db.Page, error) {
	var page db.Page
	if err := gdb.First(&page, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: id %d", ErrPageNotFound, id)
		}
		return nil, err
	}
	return &page, nil
}

func ensureSlugFree(tx *gorm.DB, parentID uint, slug string, exceptID uint) error {
	query := tx.Model(&db.Page{}).Where("parent_id = ? AND slug = ?", parentID, slug)
	if exceptID != 0 {
		query = query.Where("id <> ?", exceptID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("%w: %q", ErrSlugTaken, slug)
	}
	return nil
}
