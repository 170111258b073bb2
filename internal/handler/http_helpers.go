package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sitebrand/internal/pagetype"
	"github.com/sitebrand/internal/service"
)

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

func bindJSON(c *gin.Context, dst interface{}, message string) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, http.StatusBadRequest, message)
		return false
	}
	return true
}

func parseUintParam(c *gin.Context, key string) (uint, error) {
	raw := c.Param(key)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return uint(id), nil
}

func parseIntQuery(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

// statusFor maps service errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrSiteNotFound),
		errors.Is(err, service.ErrPageNotFound),
		errors.Is(err, service.ErrImageNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrSiteAmbiguous):
		return http.StatusInternalServerError
	case errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, service.ErrParentNotFound),
		errors.Is(err, service.ErrLogoNotFound),
		errors.Is(err, service.ErrNotBlogIndex),
		errors.Is(err, service.ErrRootNotHome),
		errors.Is(err, pagetype.ErrDisallowedPlacement),
		errors.Is(err, pagetype.ErrUnknownKind):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrSiteExists),
		errors.Is(err, service.ErrSlugTaken),
		errors.Is(err, service.ErrPageHasChildren),
		errors.Is(err, service.ErrPageIsSiteRoot):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondServiceError writes err as JSON. Internal failures are recorded on
// the context and reported with fallback instead of the raw error.
func respondServiceError(c *gin.Context, err error, fallback string) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		c.Error(err)
		respondError(c, status, fallback)
		return
	}
	respondError(c, status, err.Error())
}
