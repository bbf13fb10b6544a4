package app

import (
	"gorm.io/gorm"

	"github.com/voyagekit/tripcraft-backend/internal/data/repos"
	"github.com/voyagekit/tripcraft-backend/internal/platform/logger"
)

type Repos struct {
	Trip           repos.TripRepo
	TripDay        repos.TripDayRepo
	TripEntry      repos.TripEntryRepo
	Activity       repos.ActivityRepo
	TenantSettings repos.TenantSettingsRepo
	Session        repos.SessionRepo
	Interaction    repos.InteractionRepo
	CartItem       repos.CartItemRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Trip:           repos.NewTripRepo(db, log),
		TripDay:        repos.NewTripDayRepo(db, log),
		TripEntry:      repos.NewTripEntryRepo(db, log),
		Activity:       repos.NewActivityRepo(db, log),
		TenantSettings: repos.NewTenantSettingsRepo(db, log),
		Session:        repos.NewSessionRepo(db, log),
		Interaction:    repos.NewInteractionRepo(db, log),
		CartItem:       repos.NewCartItemRepo(db, log),
	}
}
