package app

import (
	"github.com/gin-gonic/gin"

	"github.com/voyagekit/tripcraft-backend/internal/platform/logger"
	"github.com/voyagekit/tripcraft-backend/internal/server"
)

func wireRouter(log *logger.Logger, cfg Config, handlers Handlers) *gin.Engine {
	return server.NewRouter(server.RouterConfig{
		Log:                    log,
		AllowedOrigins:         cfg.AllowedOrigins,
		PersonalizationHandler: handlers.Personalization,
	})
}
