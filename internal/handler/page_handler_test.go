package handler

import (
	"net/http"
	"strconv"
	"testing"

	"github.com/sitebrand/internal/pagetype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pageEnvelope struct {
	Page pageResponse `json:"page"`
}

func createPageJSON(t *testing.T, router http.Handler, cookies []*http.Cookie, payload map[string]interface{}) pageResponse {
	t.Helper()
	rr := performJSON(router, http.MethodPost, "/admin/api/pages", payload, cookies)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var env pageEnvelope
	decodeBody(t, rr, &env)
	return env.Page
}

func pagePath(id uint, suffix string) string {
	return "/admin/api/pages/" + strconv.FormatUint(uint64(id), 10) + suffix
}

func TestListPageTypes(t *testing.T) {
	api, gdb := setupTestAPI(t)
	router := newTestRouter(api, &stubHTMLRender{})
	cookies := loginCookies(t, router, gdb)

	rr := performJSON(router, http.MethodGet, "/admin/api/page-types", nil, cookies)
	require.Equal(t, http.StatusOK, rr.Code)

	var body struct {
		PageTypes []pageTypeResponse `json:"pageTypes"`
	}
	decodeBody(t, rr, &body)
	require.Len(t, body.PageTypes, len(pagetype.Kinds()))

	byKind := map[pagetype.Kind]pageTypeResponse{}
	for _, item := range body.PageTypes {
		byKind[item.Kind] = item
	}
	assert.True(t, byKind[pagetype.KindHome].Root)
	assert.ElementsMatch(t, []pagetype.Kind{pagetype.KindSection, pagetype.KindBlogIndex}, byKind[pagetype.KindHome].Children)
	assert.Equal(t, []pagetype.Kind{pagetype.KindBlog}, byKind[pagetype.KindBlogIndex].Children)
	assert.Empty(t, byKind[pagetype.KindBlog].Children)
}

func TestPagePlacementOverHTTP(t *testing.T) {
	api, gdb := setupTestAPI(t)
	router := newTestRouter(api, &stubHTMLRender{})
	cookies := loginCookies(t, router, gdb)

	home := createPageJSON(t, router, cookies, map[string]interface{}{"kind": "home", "title": "Home"})
	section := createPageJSON(t, router, cookies, map[string]interface{}{"kind": "section", "parentId": home.ID, "title": "About Us", "body": "Hi"})
	assert.Equal(t, "about-us", section.Slug)
	assert.Equal(t, home.ID, section.RootID)

	rr := performJSON(router, http.MethodPost, "/admin/api/pages", map[string]interface{}{"kind": "blog", "parentId": home.ID, "title": "Stray"}, cookies)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = performJSON(router, http.MethodPost, "/admin/api/pages", map[string]interface{}{"kind": "gallery", "title": "Nope"}, cookies)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = performJSON(router, http.MethodPost, "/admin/api/pages", map[string]interface{}{"kind": "section", "parentId": home.ID, "title": "About us"}, cookies)
	assert.Equal(t, http.StatusConflict, rr.Code)

	rr = performJSON(router, http.MethodPost, "/admin/api/pages", map[string]interface{}{"kind": "section", "parentId": 4242, "title": "Orphan"}, cookies)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = performJSON(router, http.MethodGet, pagePath(section.ID, "/entries"), nil, cookies)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = performJSON(router, http.MethodDelete, pagePath(home.ID, ""), nil, cookies)
	assert.Equal(t, http.StatusConflict, rr.Code)

	rr = performJSON(router, http.MethodGet, pagePath(4242, ""), nil, cookies)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestPagePublishingOverHTTP(t *testing.T) {
	api, gdb := setupTestAPI(t)
	router := newTestRouter(api, &stubHTMLRender{})
	cookies := loginCookies(t, router, gdb)

	home := createPageJSON(t, router, cookies, map[string]interface{}{"kind": "home", "title": "Home"})
	index := createPageJSON(t, router, cookies, map[string]interface{}{"kind": "BlogIndex", "parentId": home.ID, "title": "News"})
	first := createPageJSON(t, router, cookies, map[string]interface{}{"kind": "blog", "parentId": index.ID, "title": "First"})
	second := createPageJSON(t, router, cookies, map[string]interface{}{"kind": "blog", "parentId": index.ID, "title": "Second"})

	rr := performJSON(router, http.MethodPost, pagePath(first.ID, "/publish"), map[string]interface{}{"at": "2025-01-01T10:00:00Z"}, cookies)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	rr = performJSON(router, http.MethodPost, pagePath(second.ID, "/publish"), map[string]interface{}{"at": "2025-02-01T10:00:00Z"}, cookies)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = performJSON(router, http.MethodGet, pagePath(index.ID, "/entries"), nil, cookies)
	require.Equal(t, http.StatusOK, rr.Code)
	var entries struct {
		Entries []pageResponse `json:"entries"`
	}
	decodeBody(t, rr, &entries)
	require.Len(t, entries.Entries, 2)
	assert.Equal(t, second.ID, entries.Entries[0].ID)
	assert.Equal(t, first.ID, entries.Entries[1].ID)

	rr = performJSON(router, http.MethodPost, pagePath(second.ID, "/unpublish"), nil, cookies)
	require.Equal(t, http.StatusOK, rr.Code)
	var unpublished pageEnvelope
	decodeBody(t, rr, &unpublished)
	assert.Equal(t, "draft", unpublished.Page.Status)
	assert.NotNil(t, unpublished.Page.FirstPublishedAt)

	rr = performJSON(router, http.MethodGet, pagePath(index.ID, "/children"), nil, cookies)
	require.Equal(t, http.StatusOK, rr.Code)
	var children struct {
		Pages []pageResponse `json:"pages"`
	}
	decodeBody(t, rr, &children)
	assert.Len(t, children.Pages, 2)

	title := "First post"
	rr = performJSON(router, http.MethodPut, pagePath(first.ID, ""), map[string]interface{}{"title": title, "body": "Updated"}, cookies)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var updated pageEnvelope
	decodeBody(t, rr, &updated)
	assert.Equal(t, title, updated.Page.Title)
	assert.Equal(t, "Updated", updated.Page.Body)

	rr = performJSON(router, http.MethodDelete, pagePath(second.ID, ""), nil, cookies)
	assert.Equal(t, http.StatusNoContent, rr.Code)
}
