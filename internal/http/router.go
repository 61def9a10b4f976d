package http

import (
	"github.com/gin-gonic/gin"

	httpH "github.com/lnco/artifact-service/internal/http/handlers"
	httpMW "github.com/lnco/artifact-service/internal/http/middleware"
)

type RouterConfig struct {
	AuthMiddleware *httpMW.AuthMiddleware
	CORSOrigins    []string

	ArtifactHandler *httpH.ArtifactHandler
	MediaHandler    *httpH.MediaHandler
	DraftHandler    *httpH.DraftHandler
	HealthHandler   *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.Default()
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api/v2")
	{
		if cfg.ArtifactHandler != nil {
			api.GET("/fetch", cfg.ArtifactHandler.List)
			// Reads are public; a bearer token only flips the edit flags.
			api.GET("/fetch/:id", cfg.AuthMiddleware.OptionalAuth(), cfg.ArtifactHandler.GetByID)
		}
		if cfg.MediaHandler != nil {
			api.POST("/upload", cfg.MediaHandler.Upload)
		}
	}

	protected := api.Group("/")
	{
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}

		if cfg.ArtifactHandler != nil {
			protected.GET("/user/journal", cfg.ArtifactHandler.Journal)
			protected.POST("/publish", cfg.ArtifactHandler.Create)
			protected.PATCH("/update/:id", cfg.ArtifactHandler.Update)
			protected.DELETE("/remove/:id", cfg.ArtifactHandler.Delete)
		}

		if cfg.MediaHandler != nil {
			protected.POST("/upload/url", cfg.MediaHandler.UploadByURL)
			protected.DELETE("/media/:name", cfg.MediaHandler.Delete)
		}

		if cfg.DraftHandler != nil {
			protected.POST("/draft", cfg.DraftHandler.Create)
			protected.GET("/draft/:id", cfg.DraftHandler.GetByID)
		}
	}

	return r
}
