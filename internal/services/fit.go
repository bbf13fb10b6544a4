package services

import (
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/voyagekit/tripcraft-backend/internal/domain"
	pkgerr "github.com/voyagekit/tripcraft-backend/internal/pkg/errors"
	"github.com/voyagekit/tripcraft-backend/internal/platform/logger"
)

// Fixed daily windows: morning 09:00-12:00, afternoon 12:00-16:00,
// evening 16:00-20:00.
const (
	CapacityMorning   = 180
	CapacityAfternoon = 240
	CapacityEvening   = 240

	defaultDurationMinutes = 120
)

var slotOrder = []string{domain.SlotMorning, domain.SlotAfternoon, domain.SlotEvening}

func slotCapacityMinutes(slot string) int {
	switch slot {
	case domain.SlotMorning:
		return CapacityMorning
	case domain.SlotAfternoon:
		return CapacityAfternoon
	case domain.SlotEvening:
		return CapacityEvening
	default:
		return 0
	}
}

// DurationMinutes converts an activity's duration to minutes. Unset durations
// default to 120 minutes.
func DurationMinutes(a *domain.Activity) int {
	if a == nil || a.DurationValue <= 0 {
		return defaultDurationMinutes
	}
	switch a.DurationUnit {
	case "hours":
		return a.DurationValue * 60
	case "days":
		return a.DurationValue * 480
	case "nights":
		return a.DurationValue * 1440
	default: // minutes
		return a.DurationValue
	}
}

// Window is one open slot on one day with remaining capacity in minutes.
type Window struct {
	DayID     uuid.UUID
	DayNumber int
	Slot      string
	Capacity  int
	Remaining int
}

// FitCandidate is a liked cart entry handed to the engine. QuotedPrice is the
// price frozen at swipe time.
type FitCandidate struct {
	Activity    *domain.Activity
	QuotedPrice float64
	Currency    string
}

type FitPlacement struct {
	Activity        *domain.Activity
	QuotedPrice     float64
	Currency        string
	DayID           uuid.UUID
	DayNumber       int
	Slot            string
	DurationMinutes int
	PreferredMatch  bool
	Reason          string
}

type FitMiss struct {
	Activity        *domain.Activity
	QuotedPrice     float64
	Currency        string
	DurationMinutes int
	Reason          string
	SwapCandidateID *uuid.UUID
}

type FitResult struct {
	Fitted     []FitPlacement
	Missed     []FitMiss
	AddedPrice float64
	Currency   string
}

type FitEngine interface {
	ComputeWindows(days []*domain.TripDay, entriesByDay map[uuid.UUID][]*domain.TripEntry, policy string) []*Window
	SlotCapacity(entries []*domain.TripEntry, slot string, policy string) int
	Fit(days []*domain.TripDay, entriesByDay map[uuid.UUID][]*domain.TripEntry, liked []FitCandidate, policy string) (*FitResult, error)
}

type fitEngine struct {
	log *logger.Logger
}

func NewFitEngine(baseLog *logger.Logger) FitEngine {
	return &fitEngine{log: baseLog.With("service", "FitEngine")}
}

// ComputeWindows walks days in order and emits one window per usable slot.
// Policy semantics:
//   - strict: a slot with any existing entry is unusable.
//   - balanced: a locked entry makes the slot unusable; unlocked entries
//     consume capacity.
//   - aggressive: unlocked entries are replaceable and ignored; locked
//     entries consume capacity, so the slot drops out only when they fill it.
func (e *fitEngine) ComputeWindows(days []*domain.TripDay, entriesByDay map[uuid.UUID][]*domain.TripEntry, policy string) []*Window {
	if !domain.ValidPolicy(policy) {
		policy = domain.PolicyBalanced
	}

	ordered := make([]*domain.TripDay, 0, len(days))
	for _, d := range days {
		if d != nil {
			ordered = append(ordered, d)
		}
	}
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].DayNumber < ordered[j].DayNumber })

	var windows []*Window
	for _, day := range ordered {
		entries := entriesByDay[day.ID]
		for _, slot := range slotOrder {
			capacity := e.SlotCapacity(slotEntries(entries, slot), slot, policy)
			if capacity <= 0 {
				continue
			}
			windows = append(windows, &Window{
				DayID:     day.ID,
				DayNumber: day.DayNumber,
				Slot:      slot,
				Capacity:  capacity,
				Remaining: capacity,
			})
		}
	}
	return windows
}

// SlotCapacity returns the slot's usable capacity under the policy given the
// entries already occupying that slot, or <= 0 when the slot is unusable.
func (e *fitEngine) SlotCapacity(entries []*domain.TripEntry, slot string, policy string) int {
	base := slotCapacityMinutes(slot)
	if base <= 0 {
		return 0
	}
	switch policy {
	case domain.PolicyStrict:
		if len(entries) > 0 {
			return 0
		}
		return base
	case domain.PolicyAggressive:
		for _, en := range entries {
			if en.AgencyLocked {
				base -= entryDuration(en)
			}
		}
		return base
	default: // balanced
		for _, en := range entries {
			if en.AgencyLocked {
				return 0
			}
			base -= entryDuration(en)
		}
		return base
	}
}

func slotEntries(entries []*domain.TripEntry, slot string) []*domain.TripEntry {
	var out []*domain.TripEntry
	for _, en := range entries {
		if en != nil && en.TimeSlot == slot {
			out = append(out, en)
		}
	}
	return out
}

func entryDuration(en *domain.TripEntry) int {
	if en.DurationMinutes > 0 {
		return en.DurationMinutes
	}
	return defaultDurationMinutes
}

// Fit greedily places liked activities into open windows, highest quoted price
// first. It never fails on "could not place"; that is the missed outcome.
func (e *fitEngine) Fit(days []*domain.TripDay, entriesByDay map[uuid.UUID][]*domain.TripEntry, liked []FitCandidate, policy string) (*FitResult, error) {
	for _, c := range liked {
		if c.Activity == nil || c.Activity.ID == uuid.Nil {
			return nil, fmt.Errorf("fit candidate missing activity id: %w", pkgerr.ErrInvalidArgument)
		}
	}

	dateByDay := make(map[uuid.UUID]*domain.TripDay, len(days))
	for _, d := range days {
		if d != nil {
			dateByDay[d.ID] = d
		}
	}

	windows := e.ComputeWindows(days, entriesByDay, policy)

	// Highest price first, then longest duration; ties keep submission order.
	order := make([]int, len(liked))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		a, b := liked[order[i]], liked[order[j]]
		if a.QuotedPrice != b.QuotedPrice {
			return a.QuotedPrice > b.QuotedPrice
		}
		return DurationMinutes(a.Activity) > DurationMinutes(b.Activity)
	})

	result := &FitResult{}
	for _, idx := range order {
		cand := liked[idx]
		act := cand.Activity
		dur := DurationMinutes(act)

		best := -1
		bestScore := 0.0
		for wi, w := range windows {
			if w.Remaining < dur {
				continue
			}
			day := dateByDay[w.DayID]
			if day != nil && act.WeekdayBlocked(day.Date.Weekday()) {
				continue
			}
			score := windowScore(w, act, dur)
			if best == -1 || score > bestScore {
				best = wi
				bestScore = score
			}
		}

		if best >= 0 {
			w := windows[best]
			preferred := act.PreferredSlot != "" && act.PreferredSlot == w.Slot
			reason := fmt.Sprintf("fits in the %s on day %d", w.Slot, w.DayNumber)
			if preferred {
				reason += " (preferred time)"
			}
			result.Fitted = append(result.Fitted, FitPlacement{
				Activity:        act,
				QuotedPrice:     cand.QuotedPrice,
				Currency:        cand.Currency,
				DayID:           w.DayID,
				DayNumber:       w.DayNumber,
				Slot:            w.Slot,
				DurationMinutes: dur,
				PreferredMatch:  preferred,
				Reason:          reason,
			})
			result.AddedPrice += cand.QuotedPrice
			if cand.Currency != "" {
				result.Currency = cand.Currency
			}
			w.Remaining -= dur
			continue
		}

		miss := FitMiss{
			Activity:        act,
			QuotedPrice:     cand.QuotedPrice,
			Currency:        cand.Currency,
			DurationMinutes: dur,
			Reason:          e.missReason(windows, dateByDay, act, dur),
		}
		miss.SwapCandidateID = suggestSwap(result.Fitted, &miss)
		result.Missed = append(result.Missed, miss)
	}

	if e.log != nil {
		e.log.Debug("fit pass finished",
			"policy", policy,
			"liked", len(liked),
			"fitted", len(result.Fitted),
			"missed", len(result.Missed),
		)
	}
	return result, nil
}

func windowScore(w *Window, act *domain.Activity, dur int) float64 {
	score := 0.0
	if act.PreferredSlot != "" && act.PreferredSlot == w.Slot {
		score += 100
	}
	if bonus := 10 - w.DayNumber; bonus > 0 {
		score += float64(bonus)
	}
	// Tighter fits score higher so big windows stay open for big activities.
	score += 10 * float64(dur) / float64(w.Capacity)
	return score
}

// missReason classifies why nothing fit, most specific cause first.
func (e *fitEngine) missReason(windows []*Window, dateByDay map[uuid.UUID]*domain.TripDay, act *domain.Activity, dur int) string {
	var open []*Window
	for _, w := range windows {
		if w.Remaining > 0 {
			open = append(open, w)
		}
	}
	if len(open) == 0 {
		return "no available slots"
	}

	largest := 0
	for _, w := range open {
		if w.Remaining > largest {
			largest = w.Remaining
		}
	}
	if dur > largest {
		return "duration exceeds available slots"
	}

	allBlocked := true
	for _, w := range open {
		day := dateByDay[w.DayID]
		if day == nil || !act.WeekdayBlocked(day.Date.Weekday()) {
			allBlocked = false
			break
		}
	}
	if allBlocked {
		return "not available on these days"
	}

	if act.PreferredSlot != "" {
		found := false
		for _, w := range open {
			if w.Slot == act.PreferredSlot {
				found = true
				break
			}
		}
		if !found {
			return "no available slots of preferred type"
		}
	}

	return "no suitable slot"
}

// suggestSwap picks the fitted item a client would most plausibly give up to
// make room for the missed one.
func suggestSwap(fitted []FitPlacement, miss *FitMiss) *uuid.UUID {
	if len(fitted) == 0 {
		return nil
	}
	best := -1
	bestScore := 0.0
	for i, f := range fitted {
		score := 0.0
		if miss.Activity.PreferredSlot != "" && f.Slot == miss.Activity.PreferredSlot {
			score += 50
		}
		if f.DurationMinutes <= miss.DurationMinutes {
			score += 30
		} else {
			score -= 20
		}
		if f.QuotedPrice < miss.QuotedPrice {
			score += (miss.QuotedPrice - f.QuotedPrice) * 0.1
		}
		if best == -1 || score > bestScore {
			best = i
			bestScore = score
		}
	}
	id := fitted[best].Activity.ID
	return &id
}
