package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"tablon-server/internal/moderation"
)

// MessageHandlers provides HTTP handlers for message endpoints.
type MessageHandlers struct {
	svc *moderation.Service
	log *zerolog.Logger
}

// NewMessageHandlers creates a new message handlers instance.
func NewMessageHandlers(svc *moderation.Service, logger *zerolog.Logger) *MessageHandlers {
	return &MessageHandlers{
		svc: svc,
		log: logger,
	}
}

// CreateMessageRequest represents the create/edit message request body.
type CreateMessageRequest struct {
	Subject string `json:"subject" binding:"required"`
	Content string `json:"content" binding:"required"`
}

// CreateMessageResponse reports the stored message ID and the status the
// screener routed it to.
type CreateMessageResponse struct {
	ID     int64  `json:"id"`
	Status string `json:"status"`
}

// FeedResponse is the public feed page. Warning is set when the store is
// unavailable and the feed degraded to an empty listing.
type FeedResponse struct {
	Messages []MessageResponse `json:"messages"`
	Warning  string            `json:"warning,omitempty"`
}

// ListPublished handles the public feed with optional subject filter.
// GET /api/messages?subject=...
func (h *MessageHandlers) ListPublished(c *gin.Context) {
	subject := c.DefaultQuery("subject", moderation.SubjectAll)

	msgs, err := h.svc.ListPublished(c.Request.Context(), subject)
	if err != nil {
		// Reads degrade to an empty page with a surfaced warning; mutations
		// never do this.
		if errors.Is(err, moderation.ErrStoreUnavailable) {
			h.log.Warn().Err(err).Msg("feed degraded, store unavailable")
			c.JSON(http.StatusOK, FeedResponse{
				Messages: []MessageResponse{},
				Warning:  "storage is unavailable, try again later",
			})
			return
		}
		h.log.Error().Err(err).Msg("failed to list published messages")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	c.JSON(http.StatusOK, FeedResponse{Messages: messagesToResponse(msgs)})
}

// ListSubjects returns the fixed subject list used by the feed filter.
// GET /api/subjects
func (h *MessageHandlers) ListSubjects(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"subjects": moderation.Subjects})
}

// CreateMessage handles a new submission.
// POST /api/messages
func (h *MessageHandlers) CreateMessage(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	var req CreateMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Debug().Err(err).Msg("invalid create message request")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	msg, err := h.svc.CreateMessage(c.Request.Context(), actor, req.Subject, req.Content)
	if err != nil {
		h.log.Debug().Err(err).Int64("user_id", actor.UserID).Msg("create message failed")
		writeDomainError(c, err)
		return
	}

	h.log.Info().
		Int64("message_id", msg.ID).
		Int64("user_id", actor.UserID).
		Str("status", string(msg.Status)).
		Msg("message created")
	c.JSON(http.StatusCreated, CreateMessageResponse{ID: msg.ID, Status: string(msg.Status)})
}

// EditMessage handles an author updating their own message.
// PUT /api/messages/:id
func (h *MessageHandlers) EditMessage(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	id, ok := messageID(c)
	if !ok {
		return
	}

	var req CreateMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Debug().Err(err).Msg("invalid edit message request")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if err := h.svc.EditMessage(c.Request.Context(), actor, id, req.Subject, req.Content); err != nil {
		h.log.Debug().Err(err).Int64("message_id", id).Int64("user_id", actor.UserID).Msg("edit message failed")
		writeDomainError(c, err)
		return
	}

	h.log.Info().Int64("message_id", id).Int64("user_id", actor.UserID).Msg("message edited, back to pending")
	c.JSON(http.StatusOK, gin.H{"status": "pending"})
}

// DeleteMessage handles an author soft-deleting their own message.
// DELETE /api/messages/:id
func (h *MessageHandlers) DeleteMessage(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	id, ok := messageID(c)
	if !ok {
		return
	}

	if err := h.svc.DeleteMessage(c.Request.Context(), actor, id); err != nil {
		h.log.Debug().Err(err).Int64("message_id", id).Int64("user_id", actor.UserID).Msg("delete message failed")
		writeDomainError(c, err)
		return
	}

	h.log.Info().Int64("message_id", id).Int64("user_id", actor.UserID).Msg("message deleted")
	c.Status(http.StatusNoContent)
}

// messageID parses the :id route parameter, writing the error response on
// failure.
func messageID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid message id"})
		return 0, false
	}
	return id, true
}
