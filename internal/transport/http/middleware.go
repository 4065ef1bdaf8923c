package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"tablon-server/internal/auth"
	"tablon-server/internal/moderation"
	"tablon-server/internal/store"
)

const (
	// ContextKeyUserID is the context key for storing user ID.
	ContextKeyUserID = "user_id"
	// ContextKeyUsername is the context key for storing username.
	ContextKeyUsername = "username"
	// ContextKeyRole is the context key for storing the user role.
	ContextKeyRole = "role"
	// ContextKeyRequestID is the context key for the per-request ID.
	ContextKeyRequestID = "request_id"

	// HeaderRequestID carries the request ID back to the client.
	HeaderRequestID = "X-Request-ID"
)

// RequestIDMiddleware assigns every request a UUID, reusing the client's
// X-Request-ID when present.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(HeaderRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(ContextKeyRequestID, requestID)
		c.Writer.Header().Set(HeaderRequestID, requestID)
		c.Next()
	}
}

// AuthMiddleware creates a middleware that validates JWT tokens.
func AuthMiddleware(authService *auth.Service, logger *zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			logger.Debug().Msg("missing authorization header")
			c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "missing authorization header"})
			c.Abort()
			return
		}

		// Extract token from "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			logger.Debug().Msg("invalid authorization header format")
			c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid authorization header format"})
			c.Abort()
			return
		}

		token := parts[1]
		claims, err := authService.ValidateToken(token)
		if err != nil {
			logger.Debug().Err(err).Msg("invalid token")
			c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid token"})
			c.Abort()
			return
		}

		// Store user info in context
		c.Set(ContextKeyUserID, claims.UserID)
		c.Set(ContextKeyUsername, claims.Username)
		c.Set(ContextKeyRole, claims.Role)

		c.Next()
	}
}

// RequireRole restricts a route to users holding the given role. Must run
// after AuthMiddleware.
func RequireRole(role store.Role, logger *zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		value, exists := c.Get(ContextKeyRole)
		actual, ok := value.(store.Role)
		if !exists || !ok || actual != role {
			logger.Debug().Str("required_role", string(role)).Msg("role check failed")
			c.JSON(http.StatusForbidden, ErrorResponse{Error: "insufficient permissions"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// LoggerMiddleware creates a middleware that logs HTTP requests.
func LoggerMiddleware(logger *zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Process request
		c.Next()

		// Log after request
		logger.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Str("request_id", c.GetString(ContextKeyRequestID)).
			Int("status", c.Writer.Status()).
			Msg("http request")
	}
}

// actorFromContext builds the moderation actor from the gin context filled
// by AuthMiddleware.
func actorFromContext(c *gin.Context) (moderation.Actor, bool) {
	userID, exists := c.Get(ContextKeyUserID)
	if !exists {
		return moderation.Actor{}, false
	}
	uid, okID := userID.(int64)
	roleValue, _ := c.Get(ContextKeyRole)
	role, okRole := roleValue.(store.Role)
	if !okID || !okRole {
		return moderation.Actor{}, false
	}
	return moderation.Actor{UserID: uid, Role: role}, true
}
