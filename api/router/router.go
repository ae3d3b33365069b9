package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"marketpulse/api/handlers"
	"marketpulse/api/middleware"
	"marketpulse/auth"
	"marketpulse/config"
	"marketpulse/db"
	_ "marketpulse/docs"
	"marketpulse/services"
)

// Deps carries the wired services the routes depend on.
type Deps struct {
	Cfg        config.AppConfig
	JWT        *auth.JWTManager
	Posts      *services.PostService
	Generation *services.GenerationService
}

func New(deps Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestTrace())

	// Health check
	r.GET("/health", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()
		if err := db.Client().Ping(ctx, nil); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "mongo": "down", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Swagger
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// v1 routes
	api := r.Group("/api/v1")
	{
		api.GET("/posts", handlers.ListPostsHandler(deps.Posts))
		api.GET("/posts/:slug", handlers.GetPostHandler(deps.Posts))
		api.GET("/categories", handlers.ListCategoriesHandler(deps.Posts))
		api.GET("/news/headlines", handlers.NewsHeadlinesHandler(deps.Cfg))

		api.POST("/auth/login", handlers.LoginHandler(deps.Cfg, deps.JWT))
		api.POST("/auth/logout", handlers.LogoutHandler())

		admin := api.Group("/admin")
		admin.Use(middleware.AdminAuth(deps.JWT))
		{
			admin.POST("/posts", handlers.AdminCreatePostHandler(deps.Posts))
			admin.PATCH("/posts/:slug", handlers.AdminUpdatePostHandler(deps.Posts))
			admin.DELETE("/posts/:slug", handlers.AdminDeletePostHandler(deps.Posts))

			admin.POST("/generate", handlers.AdminGenerateSingleHandler(deps.Generation))
			admin.POST("/generate/batch", handlers.AdminGenerateBatchHandler(deps.Generation))

			admin.POST("/posts/:slug/regenerate/summary", handlers.AdminRegenerateSummaryHandler(deps.Generation))
			admin.POST("/posts/:slug/regenerate/tags", handlers.AdminRegenerateTagsHandler(deps.Generation))
			admin.POST("/posts/:slug/regenerate/content", handlers.AdminRegenerateContentHandler(deps.Generation))
			admin.POST("/posts/:slug/regenerate/image", handlers.AdminRegenerateImageHandler(deps.Generation))

			admin.POST("/speech", handlers.AdminSpeechHandler(deps.Generation))
		}
	}

	return r
}
