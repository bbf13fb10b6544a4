package app

import (
	"github.com/voyagekit/tripcraft-backend/internal/handlers"
	"github.com/voyagekit/tripcraft-backend/internal/platform/logger"
)

type Handlers struct {
	Personalization *handlers.PersonalizationHandler
}

func wireHandlers(log *logger.Logger, services Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Personalization: handlers.NewPersonalizationHandler(log, services.Personalization),
	}
}
