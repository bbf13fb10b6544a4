package services

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/voyagekit/tripcraft-backend/internal/data/repos"
	"github.com/voyagekit/tripcraft-backend/internal/domain"
	pkgerr "github.com/voyagekit/tripcraft-backend/internal/pkg/errors"
	"github.com/voyagekit/tripcraft-backend/internal/platform/dbctx"
	"github.com/voyagekit/tripcraft-backend/internal/platform/logger"
	"github.com/voyagekit/tripcraft-backend/internal/platform/sessionlock"
)

type StartSessionInput struct {
	TripID         uuid.UUID `json:"trip_id"`
	PreferenceTags []string  `json:"preference_tags"`
	DeckSize       int       `json:"deck_size"`
}

// PersonalizationService is the front door for the whole flow: start a
// session, swipe through the deck, run the fit pass, read the reveal, swap,
// confirm or abandon. Mutating operations serialize per session.
type PersonalizationService interface {
	StartSession(dbc dbctx.Context, in StartSessionInput) (*domain.PersonalizationSession, error)
	GetDeck(dbc dbctx.Context, sessionID uuid.UUID) ([]*domain.Activity, error)
	RecordSwipe(dbc dbctx.Context, sessionID uuid.UUID, swipe SwipeInput) (*domain.DeckInteraction, error)
	Complete(dbc dbctx.Context, sessionID uuid.UUID) (*Reveal, error)
	GetReveal(dbc dbctx.Context, sessionID uuid.UUID) (*Reveal, error)
	Swap(dbc dbctx.Context, sessionID, missedActivityID, fittedActivityID uuid.UUID) (*SwapResult, error)
	Confirm(dbc dbctx.Context, sessionID uuid.UUID) (*ConfirmResult, error)
	Abandon(dbc dbctx.Context, sessionID uuid.UUID) error
	Summary(dbc dbctx.Context, sessionID uuid.UUID) (*SessionSummary, error)
}

type personalizationService struct {
	db    *gorm.DB
	log   *logger.Logger
	locks *sessionlock.Registry

	deck         DeckBuilder
	fit          FitEngine
	recorder     InteractionRecorder
	revealer     RevealBuilder
	revealCache  RevealCache
	swapper      SwapService
	confirmation ConfirmationService

	sessions   repos.SessionRepo
	cartItems  repos.CartItemRepo
	activities repos.ActivityRepo
	trips      repos.TripRepo
	days       repos.TripDayRepo
	entries    repos.TripEntryRepo
	settings   repos.TenantSettingsRepo
}

func NewPersonalizationService(
	db *gorm.DB,
	baseLog *logger.Logger,
	locks *sessionlock.Registry,
	deck DeckBuilder,
	fit FitEngine,
	recorder InteractionRecorder,
	revealer RevealBuilder,
	revealCache RevealCache,
	swapper SwapService,
	confirmation ConfirmationService,
	sessions repos.SessionRepo,
	cartItems repos.CartItemRepo,
	activities repos.ActivityRepo,
	trips repos.TripRepo,
	days repos.TripDayRepo,
	entries repos.TripEntryRepo,
	settings repos.TenantSettingsRepo,
) PersonalizationService {
	return &personalizationService{
		db:           db,
		log:          baseLog.With("service", "PersonalizationService"),
		locks:        locks,
		deck:         deck,
		fit:          fit,
		recorder:     recorder,
		revealer:     revealer,
		revealCache:  revealCache,
		swapper:      swapper,
		confirmation: confirmation,
		sessions:     sessions,
		cartItems:    cartItems,
		activities:   activities,
		trips:        trips,
		days:         days,
		entries:      entries,
		settings:     settings,
	}
}

func (s *personalizationService) StartSession(dbc dbctx.Context, in StartSessionInput) (*domain.PersonalizationSession, error) {
	if in.TripID == uuid.Nil {
		return nil, fmt.Errorf("trip id is required: %w", pkgerr.ErrInvalidArgument)
	}

	trip, err := s.trips.GetByID(dbc, in.TripID)
	if err != nil {
		return nil, err
	}

	settings, err := s.settings.GetByTenantID(dbc, trip.TenantID)
	if err != nil && !pkgerr.IsNotFound(err) {
		return nil, err
	}
	if settings != nil && !settings.PersonalizationEnabled {
		return nil, fmt.Errorf("personalization is disabled for this agency: %w", pkgerr.ErrValidation)
	}

	deckSize := in.DeckSize
	if deckSize <= 0 {
		deckSize = 20
		if settings != nil && settings.DefaultDeckSize > 0 {
			deckSize = settings.DefaultDeckSize
		}
	}

	now := time.Now().UTC()
	session := &domain.PersonalizationSession{
		ID:                 uuid.New(),
		TripID:             trip.ID,
		TenantID:           trip.TenantID,
		PreferenceTagsJSON: domain.EncodeStrings(in.PreferenceTags),
		DeckSize:           deckSize,
		Status:             domain.SessionInProgress,
		StartedAt:          now,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if _, err := s.sessions.Create(dbc, session); err != nil {
		return nil, err
	}
	s.log.Info("session started",
		"session_id", session.ID.String(),
		"trip_id", trip.ID.String(),
		"deck_size", deckSize,
	)
	return session, nil
}

func (s *personalizationService) GetDeck(dbc dbctx.Context, sessionID uuid.UUID) ([]*domain.Activity, error) {
	session, err := s.sessions.GetByID(dbc, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status != domain.SessionInProgress {
		return nil, fmt.Errorf("session %s is %s: %w", sessionID, session.Status, pkgerr.ErrValidation)
	}
	settings := s.settingsOrNil(dbc, session.TenantID)
	return s.deck.Build(dbc, session, settings)
}

func (s *personalizationService) RecordSwipe(dbc dbctx.Context, sessionID uuid.UUID, swipe SwipeInput) (*domain.DeckInteraction, error) {
	release, err := s.locks.Acquire(dbc.Ctx, sessionID)
	if err != nil {
		return nil, err
	}
	defer release()
	return s.recorder.Record(dbc, sessionID, swipe)
}

// Complete runs the fit pass exactly once, persists each cart outcome and
// flips the session to completed. The reveal it returns is also cached.
func (s *personalizationService) Complete(dbc dbctx.Context, sessionID uuid.UUID) (*Reveal, error) {
	release, err := s.locks.Acquire(dbc.Ctx, sessionID)
	if err != nil {
		return nil, err
	}
	defer release()

	var reveal *Reveal
	err = withTx(s.db, dbc, func(dbc dbctx.Context) error {
		session, err := s.sessions.GetByID(dbc, sessionID)
		if err != nil {
			return err
		}
		if session.Status != domain.SessionInProgress {
			return fmt.Errorf("session %s is %s, cannot complete: %w", sessionID, session.Status, pkgerr.ErrValidation)
		}

		items, err := s.cartItems.ListBySessionID(dbc, sessionID)
		if err != nil {
			return err
		}

		actIDs := make([]uuid.UUID, 0, len(items))
		for _, ci := range items {
			actIDs = append(actIDs, ci.ActivityID)
		}
		acts, err := s.activities.GetByIDs(dbc, actIDs)
		if err != nil {
			return err
		}
		actsByID := make(map[uuid.UUID]*domain.Activity, len(acts))
		for _, a := range acts {
			actsByID[a.ID] = a
		}

		// Only liked items compete for schedule space. Saved stays a wishlist.
		var liked []FitCandidate
		var likedItems []*domain.CartItem
		for _, ci := range items {
			if ci.Status != domain.CartPending || ci.Source != domain.ActionLiked || ci.FitStatus != domain.FitPending {
				continue
			}
			act := actsByID[ci.ActivityID]
			if act == nil {
				continue
			}
			liked = append(liked, FitCandidate{Activity: act, QuotedPrice: ci.QuotedPrice, Currency: ci.Currency})
			likedItems = append(likedItems, ci)
		}

		days, err := s.days.ListByTripID(dbc, session.TripID)
		if err != nil {
			return err
		}
		dayIDs := make([]uuid.UUID, 0, len(days))
		for _, d := range days {
			dayIDs = append(dayIDs, d.ID)
		}
		allEntries, err := s.entries.ListByDayIDs(dbc, dayIDs)
		if err != nil {
			return err
		}
		entriesByDay := make(map[uuid.UUID][]*domain.TripEntry, len(days))
		for _, en := range allEntries {
			entriesByDay[en.DayID] = append(entriesByDay[en.DayID], en)
		}

		settings := s.settingsOrNil(dbc, session.TenantID)
		policy := domain.PolicyBalanced
		if settings != nil && domain.ValidPolicy(settings.PlacementPolicy) {
			policy = settings.PlacementPolicy
		}

		fitResult, err := s.fit.Fit(days, entriesByDay, liked, policy)
		if err != nil {
			return err
		}

		itemByActivity := make(map[uuid.UUID]*domain.CartItem, len(likedItems))
		for _, ci := range likedItems {
			itemByActivity[ci.ActivityID] = ci
		}

		now := time.Now().UTC()
		for _, p := range fitResult.Fitted {
			ci := itemByActivity[p.Activity.ID]
			if ci == nil {
				continue
			}
			if err := s.cartItems.UpdateFields(dbc, ci.ID, map[string]interface{}{
				"fit_status":    domain.FitFitted,
				"placed_day_id": p.DayID,
				"assigned_slot": p.Slot,
				"fit_reason":    p.Reason,
				"updated_at":    now,
			}); err != nil {
				return err
			}
		}
		for _, m := range fitResult.Missed {
			ci := itemByActivity[m.Activity.ID]
			if ci == nil {
				continue
			}
			updates := map[string]interface{}{
				"fit_status":    domain.FitMissed,
				"placed_day_id": nil,
				"assigned_slot": nil,
				"fit_reason":    m.Reason,
				"updated_at":    now,
			}
			if m.SwapCandidateID != nil {
				updates["swap_candidate_id"] = *m.SwapCandidateID
			}
			if err := s.cartItems.UpdateFields(dbc, ci.ID, updates); err != nil {
				return err
			}
		}

		if err := s.sessions.UpdateFields(dbc, sessionID, map[string]interface{}{
			"status":       domain.SessionCompleted,
			"completed_at": now,
			"updated_at":   now,
		}); err != nil {
			return err
		}

		reveal, err = s.assembleReveal(dbc, sessionID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.revealCache.Set(dbc.Ctx, sessionID, reveal)
	s.log.Info("session completed",
		"session_id", sessionID.String(),
		"fitted", reveal.TotalFitted,
		"missed", reveal.TotalMissed,
	)
	return reveal, nil
}

func (s *personalizationService) GetReveal(dbc dbctx.Context, sessionID uuid.UUID) (*Reveal, error) {
	session, err := s.sessions.GetByID(dbc, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status == domain.SessionInProgress {
		return nil, fmt.Errorf("session %s has not run the fit pass yet: %w", sessionID, pkgerr.ErrValidation)
	}

	if cached, ok := s.revealCache.Get(dbc.Ctx, sessionID); ok {
		return cached, nil
	}
	reveal, err := s.assembleReveal(dbc, sessionID)
	if err != nil {
		return nil, err
	}
	s.revealCache.Set(dbc.Ctx, sessionID, reveal)
	return reveal, nil
}

func (s *personalizationService) Swap(dbc dbctx.Context, sessionID, missedActivityID, fittedActivityID uuid.UUID) (*SwapResult, error) {
	release, err := s.locks.Acquire(dbc.Ctx, sessionID)
	if err != nil {
		return nil, err
	}
	defer release()

	result, err := s.swapper.Execute(dbc, sessionID, missedActivityID, fittedActivityID)
	if err != nil {
		return nil, err
	}
	if result.Success {
		s.revealCache.Set(dbc.Ctx, sessionID, result.Reveal)
	}
	return result, nil
}

func (s *personalizationService) Confirm(dbc dbctx.Context, sessionID uuid.UUID) (*ConfirmResult, error) {
	release, err := s.locks.Acquire(dbc.Ctx, sessionID)
	if err != nil {
		return nil, err
	}
	defer release()

	result, err := s.confirmation.Confirm(dbc, sessionID)
	if err != nil {
		return nil, err
	}
	if result.Success {
		s.revealCache.Invalidate(dbc.Ctx, sessionID)
	}
	return result, nil
}

func (s *personalizationService) Abandon(dbc dbctx.Context, sessionID uuid.UUID) error {
	release, err := s.locks.Acquire(dbc.Ctx, sessionID)
	if err != nil {
		return err
	}
	defer release()

	return withTx(s.db, dbc, func(dbc dbctx.Context) error {
		session, err := s.sessions.GetByID(dbc, sessionID)
		if err != nil {
			return err
		}
		if session.Terminal() {
			return fmt.Errorf("session %s is already %s: %w", sessionID, session.Status, pkgerr.ErrValidation)
		}
		now := time.Now().UTC()
		if err := s.sessions.UpdateFields(dbc, sessionID, map[string]interface{}{
			"status":     domain.SessionAbandoned,
			"updated_at": now,
		}); err != nil {
			return err
		}
		s.revealCache.Invalidate(dbc.Ctx, sessionID)
		return nil
	})
}

func (s *personalizationService) Summary(dbc dbctx.Context, sessionID uuid.UUID) (*SessionSummary, error) {
	return s.confirmation.Summary(dbc, sessionID)
}

func (s *personalizationService) settingsOrNil(dbc dbctx.Context, tenantID uuid.UUID) *domain.TenantSettings {
	settings, err := s.settings.GetByTenantID(dbc, tenantID)
	if err != nil {
		if !pkgerr.IsNotFound(err) {
			s.log.Warn("tenant settings lookup failed", "tenant_id", tenantID.String(), "error", err)
		}
		return nil
	}
	return settings
}

// assembleReveal loads everything the builder needs and formats the payload.
func (s *personalizationService) assembleReveal(dbc dbctx.Context, sessionID uuid.UUID) (*Reveal, error) {
	session, err := s.sessions.GetByID(dbc, sessionID)
	if err != nil {
		return nil, err
	}
	items, err := s.cartItems.ListBySessionID(dbc, sessionID)
	if err != nil {
		return nil, err
	}
	actIDs := make([]uuid.UUID, 0, len(items))
	for _, ci := range items {
		actIDs = append(actIDs, ci.ActivityID)
	}
	acts, err := s.activities.GetByIDs(dbc, actIDs)
	if err != nil {
		return nil, err
	}
	actsByID := make(map[uuid.UUID]*domain.Activity, len(acts))
	for _, a := range acts {
		actsByID[a.ID] = a
	}
	trip, err := s.trips.GetByID(dbc, session.TripID)
	if err != nil {
		return nil, err
	}
	days, err := s.days.ListByTripID(dbc, session.TripID)
	if err != nil {
		return nil, err
	}
	daysByID := make(map[uuid.UUID]*domain.TripDay, len(days))
	for _, d := range days {
		daysByID[d.ID] = d
	}

	return s.revealer.Build(RevealInput{
		Session:        session,
		Trip:           trip,
		Settings:       s.settingsOrNil(dbc, session.TenantID),
		CartItems:      items,
		ActivitiesByID: actsByID,
		DaysByID:       daysByID,
	}), nil
}
