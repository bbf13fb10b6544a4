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

type SwipeInput struct {
	ActivityID     uuid.UUID `json:"activity_id"`
	Action         string    `json:"action"`
	ViewDurationMS int64     `json:"view_duration_ms"`
	DeckPosition   int       `json:"deck_position"`
	SwipeSpeed     float64   `json:"swipe_speed"`
}

// InteractionRecorder appends swipe rows, keeps session counters current and
// maintains the cart of liked/saved activities.
type InteractionRecorder interface {
	Record(dbc dbctx.Context, sessionID uuid.UUID, swipe SwipeInput) (*domain.DeckInteraction, error)
}

type interactionRecorder struct {
	db           *gorm.DB
	log          *logger.Logger
	sessions     repos.SessionRepo
	interactions repos.InteractionRepo
	cartItems    repos.CartItemRepo
	activities   repos.ActivityRepo
}

func NewInteractionRecorder(
	db *gorm.DB,
	baseLog *logger.Logger,
	sessions repos.SessionRepo,
	interactions repos.InteractionRepo,
	cartItems repos.CartItemRepo,
	activities repos.ActivityRepo,
) InteractionRecorder {
	return &interactionRecorder{
		db:           db,
		log:          baseLog.With("service", "InteractionRecorder"),
		sessions:     sessions,
		interactions: interactions,
		cartItems:    cartItems,
		activities:   activities,
	}
}

func (s *interactionRecorder) Record(dbc dbctx.Context, sessionID uuid.UUID, swipe SwipeInput) (*domain.DeckInteraction, error) {
	if sessionID == uuid.Nil || swipe.ActivityID == uuid.Nil {
		return nil, fmt.Errorf("missing session or activity id: %w", pkgerr.ErrInvalidArgument)
	}
	switch swipe.Action {
	case domain.ActionLiked, domain.ActionPassed, domain.ActionSaved:
	default:
		return nil, fmt.Errorf("unknown swipe action %q: %w", swipe.Action, pkgerr.ErrInvalidArgument)
	}

	var row *domain.DeckInteraction
	err := withTx(s.db, dbc, func(dbc dbctx.Context) error {
		session, err := s.sessions.GetByID(dbc, sessionID)
		if err != nil {
			return err
		}
		if session.Status != domain.SessionInProgress {
			return fmt.Errorf("session %s is %s, not accepting swipes: %w", sessionID, session.Status, pkgerr.ErrValidation)
		}

		row = &domain.DeckInteraction{
			ID:             uuid.New(),
			SessionID:      sessionID,
			ActivityID:     swipe.ActivityID,
			Action:         swipe.Action,
			ViewDurationMS: swipe.ViewDurationMS,
			DeckPosition:   swipe.DeckPosition,
			SwipeSpeed:     swipe.SwipeSpeed,
			CreatedAt:      time.Now().UTC(),
		}
		if _, err := s.interactions.Create(dbc, row); err != nil {
			return err
		}
		if err := s.sessions.BumpCounters(dbc, sessionID, swipe.Action, swipe.ViewDurationMS); err != nil {
			return err
		}

		if swipe.Action == domain.ActionLiked || swipe.Action == domain.ActionSaved {
			return s.addToCart(dbc, session, swipe.ActivityID, swipe.Action)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return row, nil
}

// addToCart is idempotent: a second like of the same activity is a no-op while
// a non-cancelled cart row exists.
func (s *interactionRecorder) addToCart(dbc dbctx.Context, session *domain.PersonalizationSession, activityID uuid.UUID, action string) error {
	existing, err := s.cartItems.GetBySessionAndActivity(dbc, session.ID, activityID)
	if err != nil && !pkgerr.IsNotFound(err) {
		return err
	}
	if existing != nil {
		return nil
	}

	act, err := s.activities.GetByID(dbc, activityID)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	_, err = s.cartItems.Create(dbc, &domain.CartItem{
		ID:          uuid.New(),
		SessionID:   session.ID,
		TripID:      session.TripID,
		ActivityID:  activityID,
		Source:      action,
		QuotedPrice: act.Price,
		Currency:    act.Currency,
		FitStatus:   domain.FitPending,
		Status:      domain.CartPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	return err
}

// withTx runs fn inside the caller's transaction when one is present,
// otherwise opens a new one so each mutating operation commits atomically.
func withTx(db *gorm.DB, dbc dbctx.Context, fn func(dbctx.Context) error) error {
	if dbc.Tx != nil {
		return fn(dbc)
	}
	return db.WithContext(dbc.Ctx).Transaction(func(tx *gorm.DB) error {
		return fn(dbctx.Context{Ctx: dbc.Ctx, Tx: tx})
	})
}
