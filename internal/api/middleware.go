package api

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mmynk/splitledger/internal/auth"
	"github.com/mmynk/splitledger/internal/middleware"
)

const userIDKey = "userId"

// AuthMiddleware returns a Gin middleware that requires a valid bearer token.
// The user ID is stored under "userId" and on the request context.
func AuthMiddleware(jwtManager *auth.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, err := middleware.Authenticate(c.Request.Context(), jwtManager, c.GetHeader("Authorization"))
		if err != nil {
			writeError(c, err)
			return
		}

		c.Request = c.Request.WithContext(ctx)
		c.Set(userIDKey, middleware.GetUserID(ctx))
		c.Next()
	}
}

// RequestLogger logs every request once it has been served.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		attrs := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
		}
		if userID := c.GetString(userIDKey); userID != "" {
			attrs = append(attrs, "user_id", userID)
		}
		if c.Writer.Status() >= 500 {
			slog.Error("Request completed", append(attrs, "errors", c.Errors.String())...)
			return
		}
		slog.Info("Request completed", attrs...)
	}
}

// Metrics reports each request to obs, keyed by its route template.
func Metrics(obs middleware.RequestObserver) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		obs.ObserveRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}

func currentUser(c *gin.Context) string {
	return c.GetString(userIDKey)
}
