package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sitebrand/internal/db"
	"github.com/sitebrand/internal/pagetype"
	"github.com/sitebrand/internal/service"
)

type pageResponse struct {
	ID               uint          `json:"id"`
	Kind             pagetype.Kind `json:"kind"`
	ParentID         *uint         `json:"parentId"`
	RootID           uint          `json:"rootId"`
	Title            string        `json:"title"`
	Slug             string        `json:"slug"`
	Status           string        `json:"status"`
	Body             string        `json:"body,omitempty"`
	Intro            string        `json:"intro,omitempty"`
	FirstPublishedAt *time.Time    `json:"firstPublishedAt"`
	LastPublishedAt  *time.Time    `json:"lastPublishedAt"`
	UpdatedAt        time.Time     `json:"updatedAt"`
}

type pageCreatePayload struct {
	Kind     string `json:"kind" binding:"required"`
	ParentID *uint  `json:"parentId"`
	Title    string `json:"title"`
	Slug     string `json:"slug"`
	Body     string `json:"body"`
	Intro    string `json:"intro"`
}

type pageUpdatePayload struct {
	Title *string `json:"title"`
	Slug  *string `json:"slug"`
	Body  *string `json:"body"`
	Intro *string `json:"intro"`
}

type publishPayload struct {
	At *time.Time `json:"at"`
}

type pageTypeResponse struct {
	Kind     pagetype.Kind   `json:"kind"`
	Label    string          `json:"label"`
	Root     bool            `json:"root"`
	Parents  []pagetype.Kind `json:"parents"`
	Children []pagetype.Kind `json:"children"`
}

func newPageResponse(page *db.Page) pageResponse {
	return pageResponse{
		ID:               page.ID,
		Kind:             page.Kind,
		ParentID:         page.ParentID,
		RootID:           page.RootID,
		Title:            page.Title,
		Slug:             page.Slug,
		Status:           page.Status,
		Body:             page.Body,
		Intro:            page.Intro,
		FirstPublishedAt: page.FirstPublishedAt,
		LastPublishedAt:  page.LastPublishedAt,
		UpdatedAt:        page.UpdatedAt,
	}
}

func newPageResponses(pages []db.Page) []pageResponse {
	items := make([]pageResponse, 0, len(pages))
	for i := range pages {
		items = append(items, newPageResponse(&pages[i]))
	}
	return items
}

// ListPageTypes returns the page type constraint table.
func (a *API) ListPageTypes(c *gin.Context) {
	kinds := pagetype.Kinds()
	items := make([]pageTypeResponse, 0, len(kinds))
	for _, kind := range kinds {
		rule, _ := pagetype.Rules(kind)
		items = append(items, pageTypeResponse{
			Kind:     kind,
			Label:    kind.Label(),
			Root:     rule.Root,
			Parents:  nonNilKinds(rule.Parents),
			Children: nonNilKinds(rule.Children),
		})
	}
	c.JSON(http.StatusOK, gin.H{"pageTypes": items})
}

// CreatePage creates a draft page under parentId, or a root home page.
func (a *API) CreatePage(c *gin.Context) {
	var payload pageCreatePayload
	if !bindJSON(c, &payload, "invalid page payload") {
		return
	}

	kind, err := pagetype.ParseKind(payload.Kind)
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	page, err := a.pages.Create(c.Request.Context(), service.PageInput{
		Kind:     kind,
		ParentID: payload.ParentID,
		Title:    payload.Title,
		Slug:     payload.Slug,
		Body:     payload.Body,
		Intro:    payload.Intro,
	})
	if err != nil {
		respondServiceError(c, err, "failed to create page")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"page": newPageResponse(page)})
}

// GetPage returns one page.
func (a *API) GetPage(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	page, err := a.pages.Get(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err, "failed to load page")
		return
	}

	c.JSON(http.StatusOK, gin.H{"page": newPageResponse(page)})
}

// UpdatePage edits title, slug and rich text.
func (a *API) UpdatePage(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	var payload pageUpdatePayload
	if !bindJSON(c, &payload, "invalid page payload") {
		return
	}

	page, err := a.pages.Update(c.Request.Context(), id, service.PageUpdate{
		Title: payload.Title,
		Slug:  payload.Slug,
		Body:  payload.Body,
		Intro: payload.Intro,
	})
	if err != nil {
		respondServiceError(c, err, "failed to update page")
		return
	}

	c.JSON(http.StatusOK, gin.H{"page": newPageResponse(page)})
}

// DeletePage removes a leaf page.
func (a *API) DeletePage(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := a.pages.Delete(c.Request.Context(), id); err != nil {
		respondServiceError(c, err, "failed to delete page")
		return
	}

	c.Status(http.StatusNoContent)
}

// PublishPage makes a page live, optionally at a given time.
func (a *API) PublishPage(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	var payload publishPayload
	if c.Request.ContentLength > 0 && !bindJSON(c, &payload, "invalid publish payload") {
		return
	}

	page, err := a.pages.Publish(c.Request.Context(), id, payload.At)
	if err != nil {
		respondServiceError(c, err, "failed to publish page")
		return
	}

	c.JSON(http.StatusOK, gin.H{"page": newPageResponse(page)})
}

// UnpublishPage returns a page to draft.
func (a *API) UnpublishPage(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	page, err := a.pages.Unpublish(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err, "failed to unpublish page")
		return
	}

	c.JSON(http.StatusOK, gin.H{"page": newPageResponse(page)})
}

// ListPageChildren lists the direct children of a page, drafts included.
func (a *API) ListPageChildren(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	if _, err := a.pages.Get(c.Request.Context(), id); err != nil {
		respondServiceError(c, err, "failed to load page")
		return
	}

	children, err := a.pages.Children(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err, "failed to list pages")
		return
	}

	c.JSON(http.StatusOK, gin.H{"pages": newPageResponses(children)})
}

// ListBlogEntries lists the live entries of a blog index, newest first.
func (a *API) ListBlogEntries(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	entries, err := a.pages.BlogEntries(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err, "failed to list entries")
		return
	}

	c.JSON(http.StatusOK, gin.H{"entries": newPageResponses(entries)})
}

func nonNilKinds(kinds []pagetype.Kind) []pagetype.Kind {
	if kinds == nil {
		return []pagetype.Kind{}
	}
	return kinds
}
