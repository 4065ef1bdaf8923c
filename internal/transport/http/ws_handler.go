package http

import (
	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"tablon-server/internal/feed"
)

// FeedHandler streams moderation lifecycle events to subscribed moderators
// over a websocket. Routes using it must be guarded by RequireRole(profesor).
type FeedHandler struct {
	broker *feed.Broker
	log    *zerolog.Logger
}

// NewFeedHandler builds a new moderation feed handler.
func NewFeedHandler(broker *feed.Broker, logger *zerolog.Logger) *FeedHandler {
	return &FeedHandler{broker: broker, log: logger}
}

// FeedEvent is the wire format of one moderation event.
type FeedEvent struct {
	Event   string          `json:"event"`
	Message MessageResponse `json:"message"`
}

// Serve upgrades the connection and forwards broker events until the client
// disconnects.
// GET /api/moderation/ws
func (h *FeedHandler) Serve(c *gin.Context) {
	conn, err := websocket.Accept(c.Writer, c.Request, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		h.log.Error().Err(err).Msg("ws accept error")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "internal error")

	subscriberID := uuid.NewString()
	events := h.broker.Subscribe(subscriberID)
	defer h.broker.Unsubscribe(subscriberID)

	// CloseRead tells us when the peer goes away; the feed is write-only.
	ctx := conn.CloseRead(c.Request.Context())

	h.log.Debug().Str("subscriber", subscriberID).Msg("moderation feed subscriber connected")

	for {
		select {
		case <-ctx.Done():
			conn.Close(websocket.StatusNormalClosure, "closing")
			return
		case event, ok := <-events:
			if !ok {
				conn.Close(websocket.StatusNormalClosure, "closing")
				return
			}
			out := FeedEvent{
				Event:   event.Kind,
				Message: messageToResponse(event.Message),
			}
			if err := wsjson.Write(ctx, conn, out); err != nil {
				h.log.Debug().Err(err).Str("subscriber", subscriberID).Msg("feed write failed, dropping subscriber")
				return
			}
		}
	}
}
