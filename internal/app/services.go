package app

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/voyagekit/tripcraft-backend/internal/platform/logger"
	"github.com/voyagekit/tripcraft-backend/internal/platform/sessionlock"
	"github.com/voyagekit/tripcraft-backend/internal/services"
)

type Services struct {
	Readiness       services.ReadinessScorer
	Deck            services.DeckBuilder
	Fit             services.FitEngine
	Interaction     services.InteractionRecorder
	Reveal          services.RevealBuilder
	RevealCache     services.RevealCache
	Swap            services.SwapService
	Confirmation    services.ConfirmationService
	Personalization services.PersonalizationService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, r Repos) (Services, error) {
	log.Info("Wiring services...")

	scorer := services.NewReadinessScorer()
	deck := services.NewDeckBuilder(log, scorer, r.Activity, r.Interaction, r.TripDay, r.TripEntry)
	fit := services.NewFitEngine(log)
	recorder := services.NewInteractionRecorder(db, log, r.Session, r.Interaction, r.CartItem, r.Activity)
	revealer := services.NewRevealBuilder(log)

	revealCache, err := services.NewRevealCache(log)
	if err != nil {
		return Services{}, fmt.Errorf("init reveal cache: %w", err)
	}

	swapPolicy := services.SwapPolicy{RequirePreferredSlot: cfg.SwapRequirePreferredSlot}
	swapper := services.NewSwapService(db, log, swapPolicy, fit, revealer,
		r.Session, r.CartItem, r.Activity, r.Trip, r.TripDay, r.TripEntry, r.TenantSettings)
	confirmation := services.NewConfirmationService(db, log, r.Session, r.CartItem, r.Trip, r.TripEntry, r.Activity)

	personalization := services.NewPersonalizationService(db, log, sessionlock.NewRegistry(),
		deck, fit, recorder, revealer, revealCache, swapper, confirmation,
		r.Session, r.CartItem, r.Activity, r.Trip, r.TripDay, r.TripEntry, r.TenantSettings)

	return Services{
		Readiness:       scorer,
		Deck:            deck,
		Fit:             fit,
		Interaction:     recorder,
		Reveal:          revealer,
		RevealCache:     revealCache,
		Swap:            swapper,
		Confirmation:    confirmation,
		Personalization: personalization,
	}, nil
}
