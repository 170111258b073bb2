package db

import (
	"time"

	"github.com/sitebrand/internal/pagetype"
	"gorm.io/gorm"
)

const (
	PageStatusDraft = "draft"
	PageStatusLive  = "live"
)

// Page stores every page variant in one table; Kind selects the variant.
// Body is used by Section and Blog pages, Intro by BlogIndex pages.
type Page struct {
	gorm.Model
	ParentID         *uint         `gorm:"index;uniqueIndex:idx_page_parent_slug"`
	Parent           *Page         `gorm:"constraint:OnDelete:RESTRICT"`
	RootID           uint          `gorm:"index"`
	Kind             pagetype.Kind `gorm:"size:32;not null;index"`
	Title            string        `gorm:"not null"`
	Slug             string        `gorm:"size:255;not null;uniqueIndex:idx_page_parent_slug"`
	Status           string        `gorm:"size:16;not null;default:draft;index"`
	FirstPublishedAt *time.Time    `gorm:"index"`
	LastPublishedAt  *time.Time
	Body             string `gorm:"type:text"`
	Intro            string `gorm:"type:text"`
}

// IsLive reports whether the page is published.
func (p *Page) IsLive() bool {
	return p.Status == PageStatusLive
}

// Content converts the row into its typed variant.
func (p *Page) Content() pagetype.Content {
	base := pagetype.Base{
		ID:               p.ID,
		ParentID:         p.ParentID,
		Title:            p.Title,
		Slug:             p.Slug,
		Live:             p.IsLive(),
		FirstPublishedAt: p.FirstPublishedAt,
	}

	switch p.Kind {
	case pagetype.KindSection:
		return pagetype.SectionPage{Base: base, Body: p.Body}
	case pagetype.KindBlogIndex:
		return pagetype.BlogIndexPage{Base: base, Intro: p.Intro}
	case pagetype.KindBlog:
		return pagetype.BlogPage{Base: base, Body: p.Body}
	default:
		return pagetype.HomePage{Base: base}
	}
}
