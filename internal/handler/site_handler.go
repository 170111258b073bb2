package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sitebrand/internal/db"
	"github.com/sitebrand/internal/service"
)

type siteResponse struct {
	ID         uint      `json:"id"`
	Hostname   string    `json:"hostname"`
	Port       int       `json:"port"`
	SiteName   string    `json:"siteName"`
	Address    string    `json:"address"`
	RootPageID *uint     `json:"rootPageId"`
	CreatedAt  time.Time `json:"createdAt"`
}

type sitePayload struct {
	Hostname   string `json:"hostname"`
	Port       int    `json:"port"`
	SiteName   string `json:"siteName"`
	RootPageID *uint  `json:"rootPageId"`
}

type siteRootPayload struct {
	PageID uint `json:"pageId" binding:"required"`
}

func newSiteResponse(site *db.Site) siteResponse {
	return siteResponse{
		ID:         site.ID,
		Hostname:   site.Hostname,
		Port:       site.Port,
		SiteName:   site.SiteName,
		Address:    site.Address(),
		RootPageID: site.RootPageID,
		CreatedAt:  site.CreatedAt,
	}
}

// ListSites returns every registered site.
func (a *API) ListSites(c *gin.Context) {
	sites, err := a.sites.List(c.Request.Context())
	if err != nil {
		respondServiceError(c, err, "failed to list sites")
		return
	}

	items := make([]siteResponse, 0, len(sites))
	for i := range sites {
		items = append(items, newSiteResponse(&sites[i]))
	}
	c.JSON(http.StatusOK, gin.H{"sites": items})
}

// CreateSite registers a site for a hostname and port.
func (a *API) CreateSite(c *gin.Context) {
	var payload sitePayload
	if !bindJSON(c, &payload, "invalid site payload") {
		return
	}

	site, err := a.sites.Create(c.Request.Context(), service.SiteInput{
		Hostname:   payload.Hostname,
		Port:       payload.Port,
		SiteName:   payload.SiteName,
		RootPageID: payload.RootPageID,
	})
	if err != nil {
		respondServiceError(c, err, "failed to create site")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"site": newSiteResponse(site)})
}

// SetSiteRoot points a site at a home page.
func (a *API) SetSiteRoot(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	var payload siteRootPayload
	if !bindJSON(c, &payload, "pageId is required") {
		return
	}

	site, err := a.sites.SetRoot(c.Request.Context(), id, payload.PageID)
	if err != nil {
		respondServiceError(c, err, "failed to set site root")
		return
	}

	c.JSON(http.StatusOK, gin.H{"site": newSiteResponse(site)})
}
