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
)

// SwapPolicy controls which checks gate moving a missed activity into a
// vacated slot. Preferred-time is deliberately not enforced by default: on an
// explicit exchange the client already chose to take any slot.
type SwapPolicy struct {
	RequirePreferredSlot bool
}

type SwapResult struct {
	Success bool    `json:"success"`
	Reason  string  `json:"reason,omitempty"`
	Reveal  *Reveal `json:"reveal,omitempty"`
}

// SwapService exchanges one fitted cart item for one missed one, touching only
// the single slot the fitted item holds. It never re-runs the full fit pass.
type SwapService interface {
	Validate(dbc dbctx.Context, sessionID, missedActivityID, fittedActivityID uuid.UUID) error
	Execute(dbc dbctx.Context, sessionID, missedActivityID, fittedActivityID uuid.UUID) (*SwapResult, error)
}

type swapService struct {
	db         *gorm.DB
	log        *logger.Logger
	policy     SwapPolicy
	fit        FitEngine
	reveal     RevealBuilder
	sessions   repos.SessionRepo
	cartItems  repos.CartItemRepo
	activities repos.ActivityRepo
	trips      repos.TripRepo
	days       repos.TripDayRepo
	entries    repos.TripEntryRepo
	settings   repos.TenantSettingsRepo
}

func NewSwapService(
	db *gorm.DB,
	baseLog *logger.Logger,
	policy SwapPolicy,
	fit FitEngine,
	reveal RevealBuilder,
	sessions repos.SessionRepo,
	cartItems repos.CartItemRepo,
	activities repos.ActivityRepo,
	trips repos.TripRepo,
	days repos.TripDayRepo,
	entries repos.TripEntryRepo,
	settings repos.TenantSettingsRepo,
) SwapService {
	return &swapService{
		db:         db,
		log:        baseLog.With("service", "SwapService"),
		policy:     policy,
		fit:        fit,
		reveal:     reveal,
		sessions:   sessions,
		cartItems:  cartItems,
		activities: activities,
		trips:      trips,
		days:       days,
		entries:    entries,
		settings:   settings,
	}
}

func (s *swapService) Validate(dbc dbctx.Context, sessionID, missedActivityID, fittedActivityID uuid.UUID) error {
	_, _, err := s.loadPair(dbc, sessionID, missedActivityID, fittedActivityID)
	return err
}

// loadPair returns the (missed, fitted) cart rows or a validation error.
func (s *swapService) loadPair(dbc dbctx.Context, sessionID, missedActivityID, fittedActivityID uuid.UUID) (*domain.CartItem, *domain.CartItem, error) {
	missed, err := s.cartItems.GetBySessionAndActivity(dbc, sessionID, missedActivityID)
	if err != nil {
		if pkgerr.IsNotFound(err) {
			return nil, nil, fmt.Errorf("activity %s is not in this session's cart: %w", missedActivityID, pkgerr.ErrValidation)
		}
		return nil, nil, err
	}
	if missed.FitStatus != domain.FitMissed || missed.Status != domain.CartPending {
		return nil, nil, fmt.Errorf("activity %s is not a pending missed item: %w", missedActivityID, pkgerr.ErrValidation)
	}

	fitted, err := s.cartItems.GetBySessionAndActivity(dbc, sessionID, fittedActivityID)
	if err != nil {
		if pkgerr.IsNotFound(err) {
			return nil, nil, fmt.Errorf("activity %s is not in this session's cart: %w", fittedActivityID, pkgerr.ErrValidation)
		}
		return nil, nil, err
	}
	if fitted.FitStatus != domain.FitFitted || fitted.Status != domain.CartPending {
		return nil, nil, fmt.Errorf("activity %s is not a pending fitted item: %w", fittedActivityID, pkgerr.ErrValidation)
	}
	if fitted.PlacedDayID == nil || fitted.AssignedSlot == nil {
		return nil, nil, fmt.Errorf("fitted item %s has no placement: %w", fittedActivityID, pkgerr.ErrValidation)
	}
	return missed, fitted, nil
}

func (s *swapService) Execute(dbc dbctx.Context, sessionID, missedActivityID, fittedActivityID uuid.UUID) (*SwapResult, error) {
	var result *SwapResult
	err := withTx(s.db, dbc, func(dbc dbctx.Context) error {
		session, err := s.sessions.GetByID(dbc, sessionID)
		if err != nil {
			return err
		}
		if session.Terminal() {
			return fmt.Errorf("session %s is %s: %w", sessionID, session.Status, pkgerr.ErrValidation)
		}

		missed, fitted, err := s.loadPair(dbc, sessionID, missedActivityID, fittedActivityID)
		if err != nil {
			return err
		}

		act, err := s.activities.GetByID(dbc, missedActivityID)
		if err != nil {
			return err
		}
		day, err := s.days.GetByID(dbc, *fitted.PlacedDayID)
		if err != nil {
			return err
		}

		if reason := s.slotObjection(dbc, session, act, day, *fitted.AssignedSlot); reason != "" {
			result = &SwapResult{Success: false, Reason: reason}
			return nil
		}

		// Feasible: both rows flip together.
		now := time.Now().UTC()
		slot := *fitted.AssignedSlot
		if err := s.cartItems.UpdateFields(dbc, fitted.ID, map[string]interface{}{
			"fit_status":    domain.FitSwapped,
			"placed_day_id": nil,
			"assigned_slot": nil,
			"fit_reason":    "swapped out by user preference",
			"updated_at":    now,
		}); err != nil {
			return err
		}
		if err := s.cartItems.UpdateFields(dbc, missed.ID, map[string]interface{}{
			"fit_status":        domain.FitFitted,
			"placed_day_id":     day.ID,
			"assigned_slot":     slot,
			"fit_reason":        fmt.Sprintf("swapped into %s on day %d", slot, day.DayNumber),
			"swap_candidate_id": nil,
			"updated_at":        now,
		}); err != nil {
			return err
		}

		reveal, err := s.buildReveal(dbc, session)
		if err != nil {
			return err
		}
		result = &SwapResult{Success: true, Reveal: reveal}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if s.log != nil {
		s.log.Info("swap executed",
			"session_id", sessionID.String(),
			"missed_activity_id", missedActivityID.String(),
			"fitted_activity_id", fittedActivityID.String(),
			"success", result.Success,
		)
	}
	return result, nil
}

// slotObjection checks the vacated slot only: duration against the slot's
// original policy capacity and the day-of-week block list. Returns a
// client-facing reason, or "" when the move is feasible.
func (s *swapService) slotObjection(dbc dbctx.Context, session *domain.PersonalizationSession, act *domain.Activity, day *domain.TripDay, slot string) string {
	if act.WeekdayBlocked(day.Date.Weekday()) {
		return fmt.Sprintf("%s is not available on %ss", act.Title, day.Date.Weekday())
	}

	policy := domain.PolicyBalanced
	if st, err := s.settings.GetByTenantID(dbc, session.TenantID); err == nil && domain.ValidPolicy(st.PlacementPolicy) {
		policy = st.PlacementPolicy
	}
	entries, err := s.entries.ListByDayIDs(dbc, []uuid.UUID{day.ID})
	if err != nil {
		return "could not inspect the vacated slot"
	}
	capacity := s.fit.SlotCapacity(slotEntries(entries, slot), slot, policy)
	if DurationMinutes(act) > capacity {
		return fmt.Sprintf("%s does not fit in the vacated %s slot", act.Title, slot)
	}

	if s.policy.RequirePreferredSlot && act.PreferredSlot != "" && act.PreferredSlot != slot {
		return fmt.Sprintf("%s prefers the %s and the vacated slot is the %s", act.Title, act.PreferredSlot, slot)
	}
	return ""
}

func (s *swapService) buildReveal(dbc dbctx.Context, session *domain.PersonalizationSession) (*Reveal, error) {
	items, err := s.cartItems.ListBySessionID(dbc, session.ID)
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

	var settings *domain.TenantSettings
	if st, err := s.settings.GetByTenantID(dbc, session.TenantID); err == nil {
		settings = st
	}

	return s.reveal.Build(RevealInput{
		Session:        session,
		Trip:           trip,
		Settings:       settings,
		CartItems:      items,
		ActivitiesByID: actsByID,
		DaysByID:       daysByID,
	}), nil
}
