package pagetype

import "time"

// Base carries the fields every page variant shares.
type Base struct {
	ID               uint
	ParentID         *uint
	Title            string
	Slug             string
	Live             bool
	FirstPublishedAt *time.Time
}

// Content is one of HomePage, SectionPage, BlogIndexPage or BlogPage.
type Content interface {
	Kind() Kind
	Common() Base
	sealed()
}

// HomePage is the root page of a site.
type HomePage struct {
	Base
}

// SectionPage is a leaf page with a rich-text body.
type SectionPage struct {
	Base
	Body string
}

// BlogIndexPage lists its Blog children below an intro.
type BlogIndexPage struct {
	Base
	Intro string
}

// BlogPage is a single blog entry.
type BlogPage struct {
	Base
	Body string
}

func (HomePage) Kind() Kind      { return KindHome }
func (SectionPage) Kind() Kind   { return KindSection }
func (BlogIndexPage) Kind() Kind { return KindBlogIndex }
func (BlogPage) Kind() Kind      { return KindBlog }

func (p HomePage) Common() Base      { return p.Base }
func (p SectionPage) Common() Base   { return p.Base }
func (p BlogIndexPage) Common() Base { return p.Base }
func (p BlogPage) Common() Base      { return p.Base }

func (HomePage) sealed()      {}
func (SectionPage) sealed()   {}
func (BlogIndexPage) sealed() {}
func (BlogPage) sealed()      {}

// RichText returns the variant's rich-text field, or "" for Home.
func RichText(c Content) string {
	switch v := c.(type) {
	case SectionPage:
		return v.Body
	case BlogIndexPage:
		return v.Intro
	case BlogPage:
		return v.Body
	default:
		return ""
	}
}
