package router

import (
	"github.com/gin-gonic/gin"

	"github.com/Vampire-js/DAAVAT/internal/auth"
	"github.com/Vampire-js/DAAVAT/internal/handlers"
	"github.com/Vampire-js/DAAVAT/internal/middleware"
)

// Setup mounts the guarded file-tree routes and the public health probes.
func Setup(r *gin.Engine, verifier *auth.Verifier, cookieName string, documentHandler *handlers.DocumentHandler) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	protected := r.Group("/api/fileTree")
	protected.Use(middleware.AuthMiddleware(verifier, cookieName))

	DocumentRoutes(protected, documentHandler)
}
