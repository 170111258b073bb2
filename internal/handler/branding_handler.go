package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sitebrand/internal/db"
	"github.com/sitebrand/internal/service"
)

type brandingResponse struct {
	SiteID    uint           `json:"siteId"`
	LogoID    *uint          `json:"logoId"`
	Logo      *imageResponse `json:"logo"`
	Persisted bool           `json:"persisted"`
}

type brandingPayload struct {
	LogoID *uint `json:"logoId"`
}

func newBrandingResponse(settings *db.BrandingSettings) brandingResponse {
	resp := brandingResponse{
		SiteID:    settings.SiteID,
		LogoID:    settings.LogoID,
		Persisted: settings.ID != 0,
	}
	if settings.HasLogo() {
		logo := newImageResponse(settings.Logo)
		resp.Logo = &logo
	}
	return resp
}

// GetSiteBranding returns a site's branding, or the empty default when none is stored.
func (a *API) GetSiteBranding(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	site, err := a.sites.Get(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err, "failed to load site")
		return
	}

	settings, err := a.branding.ForSite(c.Request.Context(), site)
	if err != nil {
		respondServiceError(c, err, "failed to load branding")
		return
	}

	c.JSON(http.StatusOK, gin.H{"branding": newBrandingResponse(settings)})
}

// UpdateSiteBranding sets or clears a site's logo.
func (a *API) UpdateSiteBranding(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	var payload brandingPayload
	if !bindJSON(c, &payload, "invalid branding payload") {
		return
	}

	settings, err := a.branding.Update(c.Request.Context(), id, service.BrandingInput{LogoID: payload.LogoID})
	if err != nil {
		respondServiceError(c, err, "failed to update branding")
		return
	}

	c.JSON(http.StatusOK, gin.H{"branding": newBrandingResponse(settings)})
}
