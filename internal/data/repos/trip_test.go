package repos

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/voyagekit/tripcraft-backend/internal/data/repos/testutil"
	"github.com/voyagekit/tripcraft-backend/internal/domain"
	"github.com/voyagekit/tripcraft-backend/internal/platform/dbctx"
)

func TestTripRepoAddToTotalPrice(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	repo := NewTripRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}

	now := time.Now().UTC()
	trip := &domain.Trip{
		ID: uuid.New(), TenantID: uuid.New(), Title: "weekend",
		Currency: "EUR", TotalPrice: 500, CreatedAt: now, UpdatedAt: now,
	}
	if err := tx.Create(trip).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}

	if err := repo.AddToTotalPrice(dbc, trip.ID, 150); err != nil {
		t.Fatalf("add: %v", err)
	}
	got, err := repo.GetByID(dbc, trip.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.TotalPrice != 650 {
		t.Fatalf("total = %v, want 650", got.TotalPrice)
	}
}

func TestTripDayRepoListOrdersByDayNumber(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	repo := NewTripDayRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}

	tripID := uuid.New()
	now := time.Now().UTC()
	for _, n := range []int{3, 1, 2} {
		day := &domain.TripDay{
			ID: uuid.New(), TripID: tripID, DayNumber: n,
			Date: now.AddDate(0, 0, n), CreatedAt: now, UpdatedAt: now,
		}
		if err := tx.Create(day).Error; err != nil {
			t.Fatalf("seed day %d: %v", n, err)
		}
	}

	days, err := repo.ListByTripID(dbc, tripID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(days) != 3 {
		t.Fatalf("days = %d", len(days))
	}
	for i, d := range days {
		if d.DayNumber != i+1 {
			t.Fatalf("day %d has number %d", i, d.DayNumber)
		}
	}
}

func TestTripEntryRepoMaxPosition(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	repo := NewTripEntryRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}

	dayID := uuid.New()
	got, err := repo.MaxPosition(dbc, dayID)
	if err != nil {
		t.Fatalf("max on empty day: %v", err)
	}
	if got != 0 {
		t.Fatalf("empty day max = %d, want 0", got)
	}

	now := time.Now().UTC()
	rows := []*domain.TripEntry{
		{ID: uuid.New(), DayID: dayID, Title: "a", TimeSlot: domain.SlotMorning, Position: 2, CreatedAt: now, UpdatedAt: now},
		{ID: uuid.New(), DayID: dayID, Title: "b", TimeSlot: domain.SlotEvening, Position: 7, CreatedAt: now, UpdatedAt: now},
	}
	if _, err := repo.Create(dbc, rows); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err = repo.MaxPosition(dbc, dayID)
	if err != nil {
		t.Fatalf("max: %v", err)
	}
	if got != 7 {
		t.Fatalf("max = %d, want 7", got)
	}
}
