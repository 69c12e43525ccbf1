package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/romyseb/wedding/internal/models"
	"github.com/romyseb/wedding/internal/services"
	"github.com/romyseb/wedding/pkg/response"
)

// SongCatalog lists and stores playlist suggestions.
type SongCatalog interface {
	List(ctx context.Context, limit int) ([]models.SongSuggestion, error)
	Create(ctx context.Context, input services.SongInput) (*models.SongSuggestion, error)
}

// SongHandler exposes the playlist suggestion endpoints.
type SongHandler struct {
	songs SongCatalog
}

// NewSongHandler constructs a SongHandler.
func NewSongHandler(songs SongCatalog) (*SongHandler, error) {
	if songs == nil {
		return nil, errors.New("song handler: catalog is required")
	}
	return &SongHandler{songs: songs}, nil
}

// List returns suggestions, newest first.
//
// GET /api/songs?limit=
func (h *SongHandler) List(c *gin.Context) {
	items, err := h.songs.List(requestContext(c), parseIntQuery(c, "limit", 0))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"items": items})
}

// Create stores a suggestion.
//
// POST /api/songs
func (h *SongHandler) Create(c *gin.Context) {
	var req services.SongInput
	if !bindAndValidate(c, &req) {
		return
	}

	item, err := h.songs.Create(requestContext(c), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"item": item})
}
