package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/voyagekit/tripcraft-backend/internal/data/repos"
	"github.com/voyagekit/tripcraft-backend/internal/data/repos/testutil"
	"github.com/voyagekit/tripcraft-backend/internal/domain"
	"github.com/voyagekit/tripcraft-backend/internal/platform/dbctx"
	"github.com/voyagekit/tripcraft-backend/internal/platform/logger"
	"github.com/voyagekit/tripcraft-backend/internal/platform/sessionlock"
)

// fixture wires the full service stack against a rolled-back transaction and
// seeds one trip with three days starting on a Monday.
type fixture struct {
	t   *testing.T
	db  *gorm.DB
	dbc dbctx.Context
	log *logger.Logger

	sessions   repos.SessionRepo
	cartItems  repos.CartItemRepo
	activities repos.ActivityRepo
	trips      repos.TripRepo
	days       repos.TripDayRepo
	entries    repos.TripEntryRepo
	settings   repos.TenantSettingsRepo

	svc PersonalizationService

	tenantID uuid.UUID
	trip     *domain.Trip
	tripDays []*domain.TripDay
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	base := testutil.DB(t)
	tx := testutil.Tx(t, base)
	log := testutil.Logger(t)

	f := &fixture{
		t:   t,
		db:  tx,
		dbc: dbctx.Context{Ctx: context.Background(), Tx: tx},
		log: log,

		sessions:   repos.NewSessionRepo(tx, log),
		cartItems:  repos.NewCartItemRepo(tx, log),
		activities: repos.NewActivityRepo(tx, log),
		trips:      repos.NewTripRepo(tx, log),
		days:       repos.NewTripDayRepo(tx, log),
		entries:    repos.NewTripEntryRepo(tx, log),
		settings:   repos.NewTenantSettingsRepo(tx, log),

		tenantID: uuid.New(),
	}

	scorer := NewReadinessScorer()
	interactions := repos.NewInteractionRepo(tx, log)
	deck := NewDeckBuilder(log, scorer, f.activities, interactions, f.days, f.entries)
	fit := NewFitEngine(log)
	recorder := NewInteractionRecorder(tx, log, f.sessions, interactions, f.cartItems, f.activities)
	revealer := NewRevealBuilder(log)
	swapper := NewSwapService(tx, log, SwapPolicy{}, fit, revealer,
		f.sessions, f.cartItems, f.activities, f.trips, f.days, f.entries, f.settings)
	confirmation := NewConfirmationService(tx, log, f.sessions, f.cartItems, f.trips, f.entries, f.activities)

	f.svc = NewPersonalizationService(tx, log, sessionlock.NewRegistry(),
		deck, fit, recorder, revealer, noopRevealCache{}, swapper, confirmation,
		f.sessions, f.cartItems, f.activities, f.trips, f.days, f.entries, f.settings)

	f.seedTrip()
	return f
}

func (f *fixture) seedTrip() {
	f.t.Helper()
	now := time.Now().UTC()

	f.trip = &domain.Trip{
		ID:         uuid.New(),
		TenantID:   f.tenantID,
		Title:      "Lisbon long weekend",
		Currency:   "EUR",
		TotalPrice: 500,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := f.db.Create(f.trip).Error; err != nil {
		f.t.Fatalf("seed trip: %v", err)
	}

	for n := 1; n <= 3; n++ {
		day := &domain.TripDay{
			ID:        uuid.New(),
			TripID:    f.trip.ID,
			DayNumber: n,
			Date:      monday.AddDate(0, 0, n-1),
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := f.db.Create(day).Error; err != nil {
			f.t.Fatalf("seed day %d: %v", n, err)
		}
		f.tripDays = append(f.tripDays, day)
	}
}

func (f *fixture) seedSettings(mutate func(*domain.TenantSettings)) *domain.TenantSettings {
	f.t.Helper()
	now := time.Now().UTC()
	st := &domain.TenantSettings{
		ID:                     uuid.New(),
		TenantID:               f.tenantID,
		PersonalizationEnabled: true,
		DefaultDeckSize:        20,
		PlacementPolicy:        domain.PolicyBalanced,
		CreatedAt:              now,
		UpdatedAt:              now,
	}
	if mutate != nil {
		mutate(st)
	}
	if err := f.db.Create(st).Error; err != nil {
		f.t.Fatalf("seed settings: %v", err)
	}
	return st
}

// seedActivity persists a fully populated activity that passes every
// readiness check.
func (f *fixture) seedActivity(title string, price float64, durMinutes int, mutate func(*domain.Activity)) *domain.Activity {
	f.t.Helper()
	now := time.Now().UTC()
	lat, lng := 38.7223, -9.1393
	act := &domain.Activity{
		ID:             uuid.New(),
		TenantID:       f.tenantID,
		Title:          title,
		Active:         true,
		Price:          price,
		Currency:       "EUR",
		DurationValue:  durMinutes,
		DurationUnit:   "minutes",
		PreferredSlot:  domain.SlotAfternoon,
		TagsJSON:       domain.EncodeStrings([]string{"food", "culture"}),
		Rating:         4.5,
		ReviewCount:    120,
		LocationText:   "Alfama, Lisbon",
		Description:    "A slow wander through the old town with tastings at three family-run spots.",
		ImagesJSON:     domain.EncodeStrings([]string{"https://img.example/hero.jpg"}),
		HighlightsJSON: domain.EncodeStrings([]string{"local guide", "small group"}),
		Latitude:       &lat,
		Longitude:      &lng,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if mutate != nil {
		mutate(act)
	}
	if err := f.db.Create(act).Error; err != nil {
		f.t.Fatalf("seed activity %q: %v", title, err)
	}
	return act
}

func (f *fixture) seedEntry(day *domain.TripDay, slot string, durMinutes int, locked bool) *domain.TripEntry {
	f.t.Helper()
	now := time.Now().UTC()
	en := &domain.TripEntry{
		ID:              uuid.New(),
		DayID:           day.ID,
		Title:           "agency block",
		TimeSlot:        slot,
		DurationMinutes: durMinutes,
		Currency:        "EUR",
		AgencyLocked:    locked,
		Position:        1,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := f.db.Create(en).Error; err != nil {
		f.t.Fatalf("seed entry: %v", err)
	}
	return en
}

// lockAllBut agency-locks every slot on every seeded day except the one given,
// leaving a single open window.
func (f *fixture) lockAllBut(openDay *domain.TripDay, openSlot string) {
	f.t.Helper()
	for _, day := range f.tripDays {
		for _, slot := range []string{domain.SlotMorning, domain.SlotAfternoon, domain.SlotEvening} {
			if day.ID == openDay.ID && slot == openSlot {
				continue
			}
			f.seedEntry(day, slot, 60, true)
		}
	}
}

func (f *fixture) startSession() *domain.PersonalizationSession {
	f.t.Helper()
	session, err := f.svc.StartSession(f.dbc, StartSessionInput{TripID: f.trip.ID})
	if err != nil {
		f.t.Fatalf("start session: %v", err)
	}
	return session
}

func (f *fixture) swipe(sessionID, activityID uuid.UUID, action string) {
	f.t.Helper()
	_, err := f.svc.RecordSwipe(f.dbc, sessionID, SwipeInput{
		ActivityID:     activityID,
		Action:         action,
		ViewDurationMS: 1200,
	})
	if err != nil {
		f.t.Fatalf("swipe %s on %s: %v", action, activityID, err)
	}
}
