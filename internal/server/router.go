package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/voyagekit/tripcraft-backend/internal/handlers"
	"github.com/voyagekit/tripcraft-backend/internal/middleware"
	"github.com/voyagekit/tripcraft-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log                    *logger.Logger
	AllowedOrigins         []string
	PersonalizationHandler *handlers.PersonalizationHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000", "http://localhost:5173"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With", "X-Request-Id", "X-Trace-Id"},
		AllowCredentials: true,
	}))

	router.Use(otelgin.Middleware("tripcraft-backend"))
	router.Use(middleware.AttachTraceContext())
	if cfg.Log != nil {
		router.Use(middleware.RequestLog(cfg.Log))
	}

	router.GET("/healthcheck", handlers.HealthCheck)

	api := router.Group("/api/personalization")
	{
		api.POST("/sessions", cfg.PersonalizationHandler.StartSession)
		api.GET("/sessions/:id/deck", cfg.PersonalizationHandler.GetDeck)
		api.POST("/sessions/:id/swipes", cfg.PersonalizationHandler.RecordSwipe)
		api.POST("/sessions/:id/complete", cfg.PersonalizationHandler.Complete)
		api.GET("/sessions/:id/reveal", cfg.PersonalizationHandler.GetReveal)
		api.POST("/sessions/:id/swap", cfg.PersonalizationHandler.Swap)
		api.POST("/sessions/:id/confirm", cfg.PersonalizationHandler.Confirm)
		api.POST("/sessions/:id/abandon", cfg.PersonalizationHandler.Abandon)
		api.GET("/sessions/:id/summary", cfg.PersonalizationHandler.Summary)
	}

	return router
}
