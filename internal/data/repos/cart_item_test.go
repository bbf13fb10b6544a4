package repos

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/voyagekit/tripcraft-backend/internal/data/repos/testutil"
	"github.com/voyagekit/tripcraft-backend/internal/domain"
	pkgerr "github.com/voyagekit/tripcraft-backend/internal/pkg/errors"
	"github.com/voyagekit/tripcraft-backend/internal/platform/dbctx"
)

func newCartItem(sessionID, tripID, activityID uuid.UUID) *domain.CartItem {
	now := time.Now().UTC()
	return &domain.CartItem{
		ID:          uuid.New(),
		SessionID:   sessionID,
		TripID:      tripID,
		ActivityID:  activityID,
		Source:      domain.ActionLiked,
		QuotedPrice: 42,
		Currency:    "EUR",
		FitStatus:   domain.FitPending,
		Status:      domain.CartPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func TestCartItemRepoGetBySessionAndActivity(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	repo := NewCartItemRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}

	sessionID, tripID, activityID := uuid.New(), uuid.New(), uuid.New()
	row := newCartItem(sessionID, tripID, activityID)
	if _, err := repo.Create(dbc, row); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := repo.GetBySessionAndActivity(dbc, sessionID, activityID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ID != row.ID || got.QuotedPrice != 42 {
		t.Fatalf("got %+v", got)
	}

	// Cancelled rows stop counting for the pair.
	if err := repo.UpdateFields(dbc, row.ID, map[string]interface{}{"status": domain.CartCancelled}); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if _, err := repo.GetBySessionAndActivity(dbc, sessionID, activityID); !pkgerr.IsNotFound(err) {
		t.Fatalf("cancelled row lookup = %v, want not found", err)
	}
}

func TestCartItemRepoListPendingFitted(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	repo := NewCartItemRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}

	sessionID, tripID := uuid.New(), uuid.New()

	fitted := newCartItem(sessionID, tripID, uuid.New())
	fitted.FitStatus = domain.FitFitted
	missed := newCartItem(sessionID, tripID, uuid.New())
	missed.FitStatus = domain.FitMissed
	confirmed := newCartItem(sessionID, tripID, uuid.New())
	confirmed.FitStatus = domain.FitFitted
	confirmed.Status = domain.CartConfirmed

	for _, row := range []*domain.CartItem{fitted, missed, confirmed} {
		if _, err := repo.Create(dbc, row); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	rows, err := repo.ListPendingFitted(dbc, sessionID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 1 || rows[0].ID != fitted.ID {
		t.Fatalf("pending fitted = %+v", rows)
	}
}

func TestCartItemRepoUpdateFields(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	repo := NewCartItemRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}

	row := newCartItem(uuid.New(), uuid.New(), uuid.New())
	if _, err := repo.Create(dbc, row); err != nil {
		t.Fatalf("create: %v", err)
	}

	dayID := uuid.New()
	err := repo.UpdateFields(dbc, row.ID, map[string]interface{}{
		"fit_status":    domain.FitFitted,
		"placed_day_id": dayID,
		"assigned_slot": domain.SlotMorning,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	got, err := repo.GetByID(dbc, row.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.FitStatus != domain.FitFitted || got.PlacedDayID == nil || *got.PlacedDayID != dayID {
		t.Fatalf("placement not applied: %+v", got)
	}
	if got.AssignedSlot == nil || *got.AssignedSlot != domain.SlotMorning {
		t.Fatalf("slot not applied: %+v", got)
	}
}
