package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"tablon-server/internal/auth"
	"tablon-server/internal/config"
	"tablon-server/internal/feed"
	"tablon-server/internal/moderation"
	"tablon-server/internal/store"
)

// NewServer builds the HTTP server with all board routes.
func NewServer(svc *moderation.Service, authService *auth.Service, st store.Store, broker *feed.Broker, cfg *config.Config, logger *zerolog.Logger) *http.Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestIDMiddleware())
	router.Use(LoggerMiddleware(logger))

	apiHandlers := NewAPIHandlers(authService, logger)
	messageHandlers := NewMessageHandlers(svc, logger)
	moderationHandlers := NewModerationHandlers(svc, logger)
	profileHandlers := NewProfileHandlers(st, logger)
	feedHandler := NewFeedHandler(broker, logger)
	limiter := newSubmissionLimiter(cfg.SubmitPerMinute)

	router.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	api := router.Group("/api")
	{
		api.POST("/register", apiHandlers.Register)
		api.POST("/login", apiHandlers.Login)

		// public feed
		api.GET("/messages", messageHandlers.ListPublished)
		api.GET("/subjects", messageHandlers.ListSubjects)

		authed := api.Group("")
		authed.Use(AuthMiddleware(authService, logger))
		{
			authed.POST("/messages", RateLimitMiddleware(limiter, logger), messageHandlers.CreateMessage)
			authed.PUT("/messages/:id", messageHandlers.EditMessage)
			authed.DELETE("/messages/:id", messageHandlers.DeleteMessage)
			authed.PUT("/profile/theme", profileHandlers.UpdateTheme)

			mod := authed.Group("/moderation")
			mod.Use(RequireRole(store.RoleTeacher, logger))
			{
				mod.GET("/pending", moderationHandlers.ListPending)
				mod.GET("/rejected", moderationHandlers.ListRejected)
				mod.POST("/:id/approve", moderationHandlers.Approve)
				mod.POST("/:id/reject", moderationHandlers.Reject)
				mod.GET("/ws", feedHandler.Serve)
			}
		}
	}

	return &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}
