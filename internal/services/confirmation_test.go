package services

import (
	"testing"

	"github.com/google/uuid"

	"github.com/voyagekit/tripcraft-backend/internal/domain"
	pkgerr "github.com/voyagekit/tripcraft-backend/internal/pkg/errors"
)

func TestConfirmWritesEntriesAndTotals(t *testing.T) {
	f := newFixture(t)
	a := f.seedActivity("a", 40, 60, nil)
	b := f.seedActivity("b", 60, 60, nil)
	session := f.startSession()
	f.swipe(session.ID, a.ID, domain.ActionLiked)
	f.swipe(session.ID, b.ID, domain.ActionLiked)
	if _, err := f.svc.Complete(f.dbc, session.ID); err != nil {
		t.Fatalf("complete: %v", err)
	}

	res, err := f.svc.Confirm(f.dbc, session.ID)
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if !res.Success || res.ItemsAdded != 2 {
		t.Fatalf("confirm result: %+v", res)
	}
	if res.AddedPrice != 100 || res.NewTotalPrice != 600 {
		t.Fatalf("added=%v total=%v, want 100 and 600", res.AddedPrice, res.NewTotalPrice)
	}
	if res.ConfirmedAt == nil {
		t.Fatalf("confirmed_at not set")
	}

	trip, err := f.trips.GetByID(f.dbc, f.trip.ID)
	if err != nil {
		t.Fatalf("reload trip: %v", err)
	}
	if trip.TotalPrice != 600 {
		t.Fatalf("trip total = %v, want 600", trip.TotalPrice)
	}

	dayIDs := make([]uuid.UUID, 0, len(f.tripDays))
	for _, d := range f.tripDays {
		dayIDs = append(dayIDs, d.ID)
	}
	entries, err := f.entries.ListByDayIDs(f.dbc, dayIDs)
	if err != nil {
		t.Fatalf("list entries: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("trip entries = %d, want 2", len(entries))
	}
	for _, en := range entries {
		if en.ActivityID == nil || !domain.ValidSlot(en.TimeSlot) || en.AgencyLocked {
			t.Fatalf("bad appended entry: %+v", en)
		}
	}

	sess, err := f.sessions.GetByID(f.dbc, session.ID)
	if err != nil {
		t.Fatalf("reload session: %v", err)
	}
	if sess.Status != domain.SessionConfirmed || sess.ConfirmedAt == nil {
		t.Fatalf("session not confirmed: %+v", sess)
	}

	items, err := f.cartItems.ListBySessionID(f.dbc, session.ID)
	if err != nil {
		t.Fatalf("list cart: %v", err)
	}
	for _, ci := range items {
		if ci.Status != domain.CartConfirmed {
			t.Fatalf("cart row left %s", ci.Status)
		}
	}
}

func TestConfirmAppendsAfterExistingEntries(t *testing.T) {
	f := newFixture(t)
	f.lockAllBut(f.tripDays[0], domain.SlotMorning)
	existing := f.seedEntry(f.tripDays[0], domain.SlotMorning, 30, false)
	if err := f.db.Model(existing).Update("position", 4).Error; err != nil {
		t.Fatalf("reposition: %v", err)
	}

	act := f.seedActivity("a", 40, 60, nil)
	session := f.startSession()
	f.swipe(session.ID, act.ID, domain.ActionLiked)
	if _, err := f.svc.Complete(f.dbc, session.ID); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if _, err := f.svc.Confirm(f.dbc, session.ID); err != nil {
		t.Fatalf("confirm: %v", err)
	}

	entries, err := f.entries.ListByDayIDs(f.dbc, []uuid.UUID{f.tripDays[0].ID})
	if err != nil {
		t.Fatalf("list entries: %v", err)
	}
	var appended *domain.TripEntry
	for _, en := range entries {
		if en.ActivityID != nil && *en.ActivityID == act.ID {
			appended = en
		}
	}
	if appended == nil {
		t.Fatalf("appended entry not found")
	}
	if appended.Position <= 4 {
		t.Fatalf("appended position = %d, want after existing position 4", appended.Position)
	}
}

func TestConfirmWithNothingFittedIsNoOp(t *testing.T) {
	f := newFixture(t)
	session := f.startSession()
	if _, err := f.svc.Complete(f.dbc, session.ID); err != nil {
		t.Fatalf("complete: %v", err)
	}

	res, err := f.svc.Confirm(f.dbc, session.ID)
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if res.Success {
		t.Fatalf("empty confirm should report failure")
	}
	if res.Message == "" {
		t.Fatalf("empty confirm carries no message")
	}

	sess, _ := f.sessions.GetByID(f.dbc, session.ID)
	if sess.Status != domain.SessionCompleted {
		t.Fatalf("no-op confirm moved session to %q", sess.Status)
	}
	trip, _ := f.trips.GetByID(f.dbc, f.trip.ID)
	if trip.TotalPrice != 500 {
		t.Fatalf("no-op confirm changed trip total to %v", trip.TotalPrice)
	}
}

func TestConfirmTwiceRejected(t *testing.T) {
	f := newFixture(t)
	act := f.seedActivity("a", 40, 60, nil)
	session := f.startSession()
	f.swipe(session.ID, act.ID, domain.ActionLiked)
	if _, err := f.svc.Complete(f.dbc, session.ID); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if _, err := f.svc.Confirm(f.dbc, session.ID); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if _, err := f.svc.Confirm(f.dbc, session.ID); err == nil || !pkgerr.IsValidation(err) {
		t.Fatalf("second confirm should fail validation, got %v", err)
	}
}
