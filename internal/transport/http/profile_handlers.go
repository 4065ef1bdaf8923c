package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"tablon-server/internal/store"
)

// ProfileHandlers provides HTTP handlers for user profile settings.
type ProfileHandlers struct {
	store store.UserStore
	log   *zerolog.Logger
}

// NewProfileHandlers creates a new profile handlers instance.
func NewProfileHandlers(st store.UserStore, logger *zerolog.Logger) *ProfileHandlers {
	return &ProfileHandlers{
		store: st,
		log:   logger,
	}
}

// ThemeRequest represents the theme update request body.
type ThemeRequest struct {
	Theme string `json:"theme" binding:"required,oneof=light dark"`
}

// UpdateTheme stores the caller's UI theme preference.
// PUT /api/profile/theme
func (h *ProfileHandlers) UpdateTheme(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	var req ThemeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Debug().Err(err).Msg("invalid theme request")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if err := h.store.UpdateUserTheme(c.Request.Context(), actor.UserID, req.Theme); err != nil {
		if errors.Is(err, store.ErrUnavailable) {
			c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "storage is unavailable, try again later"})
			return
		}
		h.log.Error().Err(err).Int64("user_id", actor.UserID).Msg("failed to update theme")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"theme": req.Theme})
}
