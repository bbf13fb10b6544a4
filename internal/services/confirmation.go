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

type ConfirmResult struct {
	Success       bool       `json:"success"`
	Message       string     `json:"message,omitempty"`
	ItemsAdded    int        `json:"items_added"`
	AddedPrice    float64    `json:"added_price"`
	NewTotalPrice float64    `json:"new_total_price"`
	Currency      string     `json:"currency,omitempty"`
	ConfirmedAt   *time.Time `json:"confirmed_at,omitempty"`
}

// SessionSummary is the read-only receipt for a session in any state.
type SessionSummary struct {
	SessionID    uuid.UUID  `json:"session_id"`
	TripID       uuid.UUID  `json:"trip_id"`
	Status       string     `json:"status"`
	ViewedCount  int        `json:"viewed_count"`
	LikedCount   int        `json:"liked_count"`
	PassedCount  int        `json:"passed_count"`
	SavedCount   int        `json:"saved_count"`
	TotalSwipeMS int64      `json:"total_swipe_ms"`
	TotalFitted  int        `json:"total_fitted"`
	TotalMissed  int        `json:"total_missed"`
	AddedPrice   float64    `json:"added_price"`
	Currency     string     `json:"currency,omitempty"`
	StartedAt    time.Time  `json:"started_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	ConfirmedAt  *time.Time `json:"confirmed_at,omitempty"`
}

// ConfirmationService writes the fitted cart back onto the trip schedule in a
// single transaction, or reports a no-op when nothing is confirmable.
type ConfirmationService interface {
	Confirm(dbc dbctx.Context, sessionID uuid.UUID) (*ConfirmResult, error)
	Summary(dbc dbctx.Context, sessionID uuid.UUID) (*SessionSummary, error)
}

type confirmationService struct {
	db        *gorm.DB
	log       *logger.Logger
	sessions  repos.SessionRepo
	cartItems repos.CartItemRepo
	trips     repos.TripRepo
	entries   repos.TripEntryRepo
	acts      repos.ActivityRepo
}

func NewConfirmationService(
	db *gorm.DB,
	baseLog *logger.Logger,
	sessions repos.SessionRepo,
	cartItems repos.CartItemRepo,
	trips repos.TripRepo,
	entries repos.TripEntryRepo,
	acts repos.ActivityRepo,
) ConfirmationService {
	return &confirmationService{
		db:        db,
		log:       baseLog.With("service", "ConfirmationService"),
		sessions:  sessions,
		cartItems: cartItems,
		trips:     trips,
		entries:   entries,
		acts:      acts,
	}
}

func (s *confirmationService) Confirm(dbc dbctx.Context, sessionID uuid.UUID) (*ConfirmResult, error) {
	var result *ConfirmResult
	err := withTx(s.db, dbc, func(dbc dbctx.Context) error {
		session, err := s.sessions.GetByID(dbc, sessionID)
		if err != nil {
			return err
		}
		if session.Terminal() {
			return fmt.Errorf("session %s is already %s: %w", sessionID, session.Status, pkgerr.ErrValidation)
		}

		items, err := s.cartItems.ListPendingFitted(dbc, sessionID)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			result = &ConfirmResult{
				Success: false,
				Message: "nothing to confirm: no fitted items in the cart",
			}
			return nil
		}

		trip, err := s.trips.GetByID(dbc, session.TripID)
		if err != nil {
			return err
		}

		actIDs := make([]uuid.UUID, 0, len(items))
		for _, ci := range items {
			actIDs = append(actIDs, ci.ActivityID)
		}
		acts, err := s.acts.GetByIDs(dbc, actIDs)
		if err != nil {
			return err
		}
		actsByID := make(map[uuid.UUID]*domain.Activity, len(acts))
		for _, a := range acts {
			actsByID[a.ID] = a
		}

		now := time.Now().UTC()
		added := 0.0
		currency := trip.Currency

		// Appended entries go after whatever the day already holds.
		nextPos := map[uuid.UUID]int{}
		for _, ci := range items {
			if ci.PlacedDayID == nil || ci.AssignedSlot == nil {
				return fmt.Errorf("fitted item %s has no placement: %w", ci.ID, pkgerr.ErrValidation)
			}
			dayID := *ci.PlacedDayID
			pos, ok := nextPos[dayID]
			if !ok {
				max, err := s.entries.MaxPosition(dbc, dayID)
				if err != nil {
					return err
				}
				pos = max + 1
			}
			nextPos[dayID] = pos + 1

			act := actsByID[ci.ActivityID]
			title := ""
			durMin := defaultDurationMinutes
			if act != nil {
				title = act.Title
				durMin = DurationMinutes(act)
			}
			activityID := ci.ActivityID
			if _, err := s.entries.Create(dbc, []*domain.TripEntry{{
				ID:              uuid.New(),
				DayID:           dayID,
				ActivityID:      &activityID,
				Title:           title,
				TimeSlot:        *ci.AssignedSlot,
				DurationMinutes: durMin,
				Price:           ci.QuotedPrice,
				Currency:        ci.Currency,
				AgencyLocked:    false,
				Position:        pos,
				CreatedAt:       now,
				UpdatedAt:       now,
			}}); err != nil {
				return err
			}

			if err := s.cartItems.UpdateFields(dbc, ci.ID, map[string]interface{}{
				"status":     domain.CartConfirmed,
				"updated_at": now,
			}); err != nil {
				return err
			}

			added += ci.QuotedPrice
			if ci.Currency != "" {
				currency = ci.Currency
			}
		}

		if err := s.trips.AddToTotalPrice(dbc, trip.ID, added); err != nil {
			return err
		}
		if err := s.sessions.UpdateFields(dbc, sessionID, map[string]interface{}{
			"status":       domain.SessionConfirmed,
			"confirmed_at": now,
			"updated_at":   now,
		}); err != nil {
			return err
		}

		result = &ConfirmResult{
			Success:       true,
			ItemsAdded:    len(items),
			AddedPrice:    roundPrice(added),
			NewTotalPrice: roundPrice(trip.TotalPrice + added),
			Currency:      currency,
			ConfirmedAt:   &now,
		}
		return nil
	})
	if err != nil {
		if pkgerr.IsValidation(err) || pkgerr.IsNotFound(err) {
			return nil, err
		}
		return nil, fmt.Errorf("confirm session %s: %v: %w", sessionID, err, pkgerr.ErrTransaction)
	}
	if result.Success && s.log != nil {
		s.log.Info("session confirmed",
			"session_id", sessionID.String(),
			"items_added", result.ItemsAdded,
			"added_price", result.AddedPrice,
		)
	}
	return result, nil
}

func (s *confirmationService) Summary(dbc dbctx.Context, sessionID uuid.UUID) (*SessionSummary, error) {
	session, err := s.sessions.GetByID(dbc, sessionID)
	if err != nil {
		return nil, err
	}
	items, err := s.cartItems.ListBySessionID(dbc, sessionID)
	if err != nil {
		return nil, err
	}

	out := &SessionSummary{
		SessionID:    session.ID,
		TripID:       session.TripID,
		Status:       session.Status,
		ViewedCount:  session.ViewedCount,
		LikedCount:   session.LikedCount,
		PassedCount:  session.PassedCount,
		SavedCount:   session.SavedCount,
		TotalSwipeMS: session.TotalSwipeMS,
		StartedAt:    session.StartedAt,
		CompletedAt:  session.CompletedAt,
		ConfirmedAt:  session.ConfirmedAt,
	}
	for _, ci := range items {
		if ci.Status == domain.CartCancelled {
			continue
		}
		switch ci.FitStatus {
		case domain.FitFitted:
			out.TotalFitted++
			out.AddedPrice += ci.QuotedPrice
		case domain.FitMissed, domain.FitSwapped:
			out.TotalMissed++
		}
		if ci.Currency != "" {
			out.Currency = ci.Currency
		}
	}
	out.AddedPrice = roundPrice(out.AddedPrice)
	return out, nil
}
