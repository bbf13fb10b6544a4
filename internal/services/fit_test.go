package services

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/voyagekit/tripcraft-backend/internal/domain"
	"github.com/voyagekit/tripcraft-backend/internal/platform/logger"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}
	return log
}

// monday is 2026-06-01, used so weekday expectations stay readable.
var monday = time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

func testDay(n int) *domain.TripDay {
	return &domain.TripDay{
		ID:        uuid.New(),
		DayNumber: n,
		Date:      monday.AddDate(0, 0, n-1),
	}
}

func testActivity(title string, price float64, durMinutes int) *domain.Activity {
	return &domain.Activity{
		ID:            uuid.New(),
		Title:         title,
		Price:         price,
		Currency:      "EUR",
		DurationValue: durMinutes,
		DurationUnit:  "minutes",
	}
}

func candidate(a *domain.Activity) FitCandidate {
	return FitCandidate{Activity: a, QuotedPrice: a.Price, Currency: a.Currency}
}

func TestDurationMinutesConversion(t *testing.T) {
	cases := []struct {
		value int
		unit  string
		want  int
	}{
		{90, "minutes", 90},
		{3, "hours", 180},
		{1, "days", 480},
		{2, "nights", 2880},
		{0, "minutes", 120},
	}
	for _, c := range cases {
		a := &domain.Activity{DurationValue: c.value, DurationUnit: c.unit}
		if got := DurationMinutes(a); got != c.want {
			t.Fatalf("DurationMinutes(%d %s) = %d, want %d", c.value, c.unit, got, c.want)
		}
	}
	if got := DurationMinutes(nil); got != 120 {
		t.Fatalf("DurationMinutes(nil) = %d, want 120", got)
	}
}

func TestSlotCapacityPolicies(t *testing.T) {
	e := NewFitEngine(testLogger(t))
	locked := &domain.TripEntry{TimeSlot: domain.SlotAfternoon, DurationMinutes: 60, AgencyLocked: true}
	loose := &domain.TripEntry{TimeSlot: domain.SlotAfternoon, DurationMinutes: 90}

	if got := e.SlotCapacity(nil, domain.SlotAfternoon, domain.PolicyStrict); got != 240 {
		t.Fatalf("strict empty slot = %d, want 240", got)
	}
	if got := e.SlotCapacity([]*domain.TripEntry{loose}, domain.SlotAfternoon, domain.PolicyStrict); got != 0 {
		t.Fatalf("strict occupied slot = %d, want 0", got)
	}
	if got := e.SlotCapacity([]*domain.TripEntry{locked}, domain.SlotAfternoon, domain.PolicyBalanced); got != 0 {
		t.Fatalf("balanced locked slot = %d, want 0", got)
	}
	if got := e.SlotCapacity([]*domain.TripEntry{loose}, domain.SlotAfternoon, domain.PolicyBalanced); got != 150 {
		t.Fatalf("balanced loose slot = %d, want 150", got)
	}
	if got := e.SlotCapacity([]*domain.TripEntry{locked, loose}, domain.SlotAfternoon, domain.PolicyAggressive); got != 180 {
		t.Fatalf("aggressive mixed slot = %d, want 180", got)
	}
}

func TestFitNeverOverfillsWindows(t *testing.T) {
	e := NewFitEngine(testLogger(t))
	days := []*domain.TripDay{testDay(1), testDay(2)}

	var liked []FitCandidate
	for i := 0; i < 12; i++ {
		liked = append(liked, candidate(testActivity("act", 50, 120)))
	}

	res, err := e.Fit(days, nil, liked, domain.PolicyBalanced)
	if err != nil {
		t.Fatalf("fit: %v", err)
	}

	used := map[string]int{}
	for _, p := range res.Fitted {
		key := p.DayID.String() + "/" + p.Slot
		used[key] += p.DurationMinutes
		if used[key] > slotCapacityMinutes(p.Slot) {
			t.Fatalf("slot %s overfilled: %d > %d", key, used[key], slotCapacityMinutes(p.Slot))
		}
	}
	if len(res.Fitted)+len(res.Missed) != len(liked) {
		t.Fatalf("fitted %d + missed %d != liked %d", len(res.Fitted), len(res.Missed), len(liked))
	}
	// 2 days x (180+240+240) = 1320 minutes, 120 each -> at most 10 placed.
	if len(res.Fitted) != 10 {
		t.Fatalf("fitted %d activities, want 10", len(res.Fitted))
	}
}

func TestFitOutcomesCarryPlacementOrReason(t *testing.T) {
	e := NewFitEngine(testLogger(t))
	days := []*domain.TripDay{testDay(1)}
	liked := []FitCandidate{
		candidate(testActivity("short", 80, 120)),
		candidate(testActivity("marathon", 60, 600)),
	}

	res, err := e.Fit(days, nil, liked, domain.PolicyBalanced)
	if err != nil {
		t.Fatalf("fit: %v", err)
	}
	for _, p := range res.Fitted {
		if p.DayID == uuid.Nil || !domain.ValidSlot(p.Slot) {
			t.Fatalf("fitted item without placement: %+v", p)
		}
	}
	for _, m := range res.Missed {
		if m.Reason == "" {
			t.Fatalf("missed item without reason: %+v", m)
		}
	}
	if len(res.Missed) != 1 || res.Missed[0].Reason != "duration exceeds available slots" {
		t.Fatalf("unexpected misses: %+v", res.Missed)
	}
}

func TestFitIsDeterministic(t *testing.T) {
	e := NewFitEngine(testLogger(t))
	days := []*domain.TripDay{testDay(1), testDay(2), testDay(3)}
	acts := []*domain.Activity{
		testActivity("a", 120, 60),
		testActivity("b", 90, 180),
		testActivity("c", 200, 240),
		testActivity("d", 45, 120),
		testActivity("e", 45, 120),
	}
	var liked []FitCandidate
	for _, a := range acts {
		liked = append(liked, candidate(a))
	}

	first, err := e.Fit(days, nil, liked, domain.PolicyBalanced)
	if err != nil {
		t.Fatalf("fit: %v", err)
	}
	second, err := e.Fit(days, nil, liked, domain.PolicyBalanced)
	if err != nil {
		t.Fatalf("fit: %v", err)
	}

	if len(first.Fitted) != len(second.Fitted) || len(first.Missed) != len(second.Missed) {
		t.Fatalf("runs disagree: %d/%d vs %d/%d",
			len(first.Fitted), len(first.Missed), len(second.Fitted), len(second.Missed))
	}
	for i := range first.Fitted {
		f, s := first.Fitted[i], second.Fitted[i]
		if f.Activity.ID != s.Activity.ID || f.DayID != s.DayID || f.Slot != s.Slot {
			t.Fatalf("placement %d differs: %+v vs %+v", i, f, s)
		}
	}
}

func TestFitPlacesHigherPriceFirst(t *testing.T) {
	e := NewFitEngine(testLogger(t))
	day := testDay(1)

	// Lock the afternoon and evening so only the morning window (180) remains.
	entriesByDay := map[uuid.UUID][]*domain.TripEntry{
		day.ID: {
			{TimeSlot: domain.SlotAfternoon, DurationMinutes: 60, AgencyLocked: true},
			{TimeSlot: domain.SlotEvening, DurationMinutes: 60, AgencyLocked: true},
		},
	}
	cheap := testActivity("cheap", 100, 120)
	dear := testActivity("dear", 200, 120)
	liked := []FitCandidate{candidate(cheap), candidate(dear)}

	res, err := e.Fit([]*domain.TripDay{day}, entriesByDay, liked, domain.PolicyBalanced)
	if err != nil {
		t.Fatalf("fit: %v", err)
	}
	if len(res.Fitted) != 1 || res.Fitted[0].Activity.ID != dear.ID {
		t.Fatalf("expected the 200 activity to win the slot, got %+v", res.Fitted)
	}
	if len(res.Missed) != 1 || res.Missed[0].Activity.ID != cheap.ID {
		t.Fatalf("expected the 100 activity to miss, got %+v", res.Missed)
	}
	if res.AddedPrice != 200 {
		t.Fatalf("added price = %v, want 200", res.AddedPrice)
	}
}

func TestFitHonorsPreferredSlot(t *testing.T) {
	e := NewFitEngine(testLogger(t))
	days := []*domain.TripDay{testDay(1)}

	act := testActivity("sunset cruise", 75, 120)
	act.PreferredSlot = domain.SlotEvening

	res, err := e.Fit(days, nil, []FitCandidate{candidate(act)}, domain.PolicyBalanced)
	if err != nil {
		t.Fatalf("fit: %v", err)
	}
	if len(res.Fitted) != 1 {
		t.Fatalf("expected a placement, got %+v", res)
	}
	p := res.Fitted[0]
	if p.Slot != domain.SlotEvening || !p.PreferredMatch {
		t.Fatalf("expected evening preferred placement, got slot=%s preferred=%v", p.Slot, p.PreferredMatch)
	}
	if !strings.Contains(p.Reason, "preferred time") {
		t.Fatalf("reason %q should mention the preferred time", p.Reason)
	}
}

func TestFitBlockedWeekdayMisses(t *testing.T) {
	e := NewFitEngine(testLogger(t))
	days := []*domain.TripDay{testDay(1)} // a Monday

	act := testActivity("closed mondays", 60, 120)
	act.BlockedWeekdaysJSON = domain.EncodeInts([]int{int(time.Monday)})

	res, err := e.Fit(days, nil, []FitCandidate{candidate(act)}, domain.PolicyBalanced)
	if err != nil {
		t.Fatalf("fit: %v", err)
	}
	if len(res.Fitted) != 0 || len(res.Missed) != 1 {
		t.Fatalf("expected a single miss, got %+v", res)
	}
	if res.Missed[0].Reason != "not available on these days" {
		t.Fatalf("miss reason = %q", res.Missed[0].Reason)
	}
}

func TestFitSuggestsSwapCandidate(t *testing.T) {
	e := NewFitEngine(testLogger(t))
	day := testDay(1)
	entriesByDay := map[uuid.UUID][]*domain.TripEntry{
		day.ID: {
			{TimeSlot: domain.SlotAfternoon, DurationMinutes: 60, AgencyLocked: true},
			{TimeSlot: domain.SlotEvening, DurationMinutes: 60, AgencyLocked: true},
		},
	}
	winner := testActivity("winner", 200, 120)
	loser := testActivity("loser", 100, 120)

	res, err := e.Fit([]*domain.TripDay{day}, entriesByDay,
		[]FitCandidate{candidate(winner), candidate(loser)}, domain.PolicyBalanced)
	if err != nil {
		t.Fatalf("fit: %v", err)
	}
	if len(res.Missed) != 1 {
		t.Fatalf("expected one miss, got %+v", res)
	}
	got := res.Missed[0].SwapCandidateID
	if got == nil || *got != winner.ID {
		t.Fatalf("swap candidate = %v, want %s", got, winner.ID)
	}
}

func TestFitBreaksTiesBySubmissionOrder(t *testing.T) {
	e := NewFitEngine(testLogger(t))
	day := testDay(1)
	entriesByDay := map[uuid.UUID][]*domain.TripEntry{
		day.ID: {
			{TimeSlot: domain.SlotAfternoon, DurationMinutes: 60, AgencyLocked: true},
			{TimeSlot: domain.SlotEvening, DurationMinutes: 60, AgencyLocked: true},
		},
	}
	first := testActivity("first", 100, 120)
	second := testActivity("second", 100, 120)

	res, err := e.Fit([]*domain.TripDay{day}, entriesByDay,
		[]FitCandidate{candidate(first), candidate(second)}, domain.PolicyBalanced)
	if err != nil {
		t.Fatalf("fit: %v", err)
	}
	if len(res.Fitted) != 1 || res.Fitted[0].Activity.ID != first.ID {
		t.Fatalf("tie should keep submission order, got %+v", res.Fitted)
	}
}

func TestFitNoWindowsAtAll(t *testing.T) {
	e := NewFitEngine(testLogger(t))
	day := testDay(1)
	entriesByDay := map[uuid.UUID][]*domain.TripEntry{
		day.ID: {
			{TimeSlot: domain.SlotMorning, DurationMinutes: 60, AgencyLocked: true},
			{TimeSlot: domain.SlotAfternoon, DurationMinutes: 60, AgencyLocked: true},
			{TimeSlot: domain.SlotEvening, DurationMinutes: 60, AgencyLocked: true},
		},
	}
	res, err := e.Fit([]*domain.TripDay{day}, entriesByDay,
		[]FitCandidate{candidate(testActivity("anything", 50, 60))}, domain.PolicyBalanced)
	if err != nil {
		t.Fatalf("fit: %v", err)
	}
	if len(res.Missed) != 1 || res.Missed[0].Reason != "no available slots" {
		t.Fatalf("expected 'no available slots' miss, got %+v", res)
	}
}
