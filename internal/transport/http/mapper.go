package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"tablon-server/internal/moderation"
	"tablon-server/internal/store"
)

// MessageResponse represents a message in API responses.
type MessageResponse struct {
	ID        int64  `json:"id"`
	AuthorID  int64  `json:"author_id"`
	Author    string `json:"author"`
	Subject   string `json:"subject"`
	Content   string `json:"content"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
}

func messageToResponse(msg *store.Message) MessageResponse {
	return MessageResponse{
		ID:        msg.ID,
		AuthorID:  msg.AuthorID,
		Author:    msg.Author,
		Subject:   msg.Subject,
		Content:   msg.Content,
		Status:    string(msg.Status),
		CreatedAt: msg.CreatedAt.Format(time.RFC3339),
	}
}

func messagesToResponse(msgs []*store.Message) []MessageResponse {
	response := make([]MessageResponse, 0, len(msgs))
	for _, m := range msgs {
		response = append(response, messageToResponse(m))
	}
	return response
}

// writeDomainError maps moderation domain errors onto HTTP responses.
// Unknown errors become a generic 500 so internals never leak.
func writeDomainError(c *gin.Context, err error) {
	code := moderation.ErrorCode(err)
	switch {
	case errors.Is(err, moderation.ErrValidation):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: code})
	case errors.Is(err, moderation.ErrNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "message not found", Code: code})
	case errors.Is(err, moderation.ErrForbidden):
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "operation not allowed", Code: code})
	case errors.Is(err, moderation.ErrInvalidTransition):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "message is not in a state that allows this action", Code: code})
	case errors.Is(err, moderation.ErrStoreUnavailable):
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "storage is unavailable, try again later", Code: code})
	default:
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
	}
}
