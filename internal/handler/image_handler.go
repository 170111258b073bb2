package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sitebrand/internal/db"
	"github.com/sitebrand/internal/service"
)

type imageResponse struct {
	ID        uint      `json:"id"`
	Title     string    `json:"title"`
	FileURL   string    `json:"fileUrl"`
	Width     int       `json:"width"`
	Height    int       `json:"height"`
	CreatedAt time.Time `json:"createdAt"`
}

type imagePayload struct {
	Title   string `json:"title"`
	FileURL string `json:"fileUrl"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
}

func newImageResponse(image *db.Image) imageResponse {
	return imageResponse{
		ID:        image.ID,
		Title:     image.Title,
		FileURL:   image.FileURL,
		Width:     image.Width,
		Height:    image.Height,
		CreatedAt: image.CreatedAt,
	}
}

// CreateImage registers an image reference usable as a site logo.
func (a *API) CreateImage(c *gin.Context) {
	var payload imagePayload
	if !bindJSON(c, &payload, "invalid image payload") {
		return
	}

	image, err := a.images.Create(c.Request.Context(), service.ImageInput{
		Title:   payload.Title,
		FileURL: payload.FileURL,
		Width:   payload.Width,
		Height:  payload.Height,
	})
	if err != nil {
		respondServiceError(c, err, "failed to create image")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"image": newImageResponse(image)})
}

// ListImages returns registered images, newest first.
func (a *API) ListImages(c *gin.Context) {
	result, err := a.images.List(c.Request.Context(), parseIntQuery(c, "page", 1), parseIntQuery(c, "perPage", 0))
	if err != nil {
		respondServiceError(c, err, "failed to list images")
		return
	}

	items := make([]imageResponse, 0, len(result.Items))
	for i := range result.Items {
		items = append(items, newImageResponse(&result.Items[i]))
	}
	c.JSON(http.StatusOK, gin.H{
		"images":     items,
		"total":      result.Total,
		"page":       result.Page,
		"perPage":    result.PerPage,
		"totalPages": result.TotalPages,
	})
}
