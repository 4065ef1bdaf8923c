package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"tablon-server/internal/moderation"
	"tablon-server/internal/store"
)

// ModerationHandlers provides HTTP handlers for the teacher moderation
// endpoints. Routes using it must be guarded by RequireRole(profesor).
type ModerationHandlers struct {
	svc *moderation.Service
	log *zerolog.Logger
}

// NewModerationHandlers creates a new moderation handlers instance.
func NewModerationHandlers(svc *moderation.Service, logger *zerolog.Logger) *ModerationHandlers {
	return &ModerationHandlers{
		svc: svc,
		log: logger,
	}
}

// ListPending returns the moderation queue.
// GET /api/moderation/pending
func (h *ModerationHandlers) ListPending(c *gin.Context) {
	h.list(c, h.svc.ListPending)
}

// ListRejected returns the rejected history view.
// GET /api/moderation/rejected
func (h *ModerationHandlers) ListRejected(c *gin.Context) {
	h.list(c, h.svc.ListRejected)
}

func (h *ModerationHandlers) list(c *gin.Context, fetch func(ctx context.Context) ([]*store.Message, error)) {
	msgs, err := fetch(c.Request.Context())
	if err != nil {
		if errors.Is(err, moderation.ErrStoreUnavailable) {
			h.log.Warn().Err(err).Msg("moderation listing degraded, store unavailable")
			c.JSON(http.StatusOK, FeedResponse{
				Messages: []MessageResponse{},
				Warning:  "storage is unavailable, try again later",
			})
			return
		}
		h.log.Error().Err(err).Msg("failed to list messages for moderation")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}
	c.JSON(http.StatusOK, FeedResponse{Messages: messagesToResponse(msgs)})
}

// Approve publishes a pending message.
// POST /api/moderation/:id/approve
func (h *ModerationHandlers) Approve(c *gin.Context) {
	h.decide(c, h.svc.ApproveMessage, "approved")
}

// Reject rejects a pending message.
// POST /api/moderation/:id/reject
func (h *ModerationHandlers) Reject(c *gin.Context) {
	h.decide(c, h.svc.RejectMessage, "rejected")
}

func (h *ModerationHandlers) decide(c *gin.Context, action func(context.Context, moderation.Actor, int64) error, verdict string) {
	actor, ok := actorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	id, ok := messageID(c)
	if !ok {
		return
	}

	if err := action(c.Request.Context(), actor, id); err != nil {
		h.log.Debug().Err(err).Int64("message_id", id).Int64("moderator_id", actor.UserID).Msg("moderation action failed")
		writeDomainError(c, err)
		return
	}

	h.log.Info().Int64("message_id", id).Int64("moderator_id", actor.UserID).Str("verdict", verdict).Msg("moderation decision applied")
	c.JSON(http.StatusOK, gin.H{"status": verdict})
}
