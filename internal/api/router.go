package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lalith-99/threadstream/internal/middleware"
)

// HealthFunc reports backend liveness; the router wires it to the
// database pool's ping.
type HealthFunc func(ctx context.Context) error

// NewRouter assembles the gin engine. Health and the auth endpoints
// are public; everything else under /v1 requires a valid JWT.
func NewRouter(authH *AuthHandler, chatH *ChatHandler, jwtSecret string, health HealthFunc) *gin.Engine {
	srv := gin.New()
	srv.Use(gin.Logger(), gin.Recovery())

	srv.GET("/v1/health", func(c *gin.Context) {
		if health != nil {
			if err := health(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	pub := srv.Group("/v1/auth")
	{
		pub.POST("/register", authH.Register)
		pub.POST("/login", authH.Login)
		pub.POST("/google", authH.Google)
		pub.POST("/verify", authH.Verify)
	}

	v1 := srv.Group("/v1")
	v1.Use(middleware.AuthMiddleware(jwtSecret))
	{
		v1.POST("/chat", chatH.Turn)
		v1.GET("/chat/threads", chatH.ListThreads)
		v1.GET("/chat/threads/:threadId", chatH.GetThread)
		v1.DELETE("/chat/threads/:threadId", chatH.DeleteThread)
	}

	return srv
}
