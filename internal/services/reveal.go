package services

import (
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/voyagekit/tripcraft-backend/internal/domain"
	"github.com/voyagekit/tripcraft-backend/internal/platform/logger"
)

// RevealItem is one cart row formatted for display.
type RevealItem struct {
	ActivityID      uuid.UUID  `json:"activity_id"`
	Title           string     `json:"title"`
	Price           float64    `json:"price"`
	Currency        string     `json:"currency"`
	DurationText    string     `json:"duration_text"`
	HeroImage       string     `json:"hero_image,omitempty"`
	DayID           *uuid.UUID `json:"day_id,omitempty"`
	DayNumber       *int       `json:"day_number,omitempty"`
	Slot            string     `json:"slot,omitempty"`
	SlotLabel       string     `json:"slot_label,omitempty"`
	Reason          string     `json:"reason,omitempty"`
	SwapCandidateID *uuid.UUID `json:"swap_candidate_id,omitempty"`
}

// Reveal is the client-facing result payload after the fit pass.
type Reveal struct {
	SessionID      uuid.UUID              `json:"session_id"`
	FittedItems    []RevealItem           `json:"fitted_items"`
	MissedItems    []RevealItem           `json:"missed_items"`
	SavedItems     []RevealItem           `json:"saved_items"`
	TotalFitted    int                    `json:"total_fitted"`
	TotalLiked     int                    `json:"total_liked"`
	TotalMissed    int                    `json:"total_missed"`
	AddedPrice     float64                `json:"added_price"`
	Currency       string                 `json:"currency"`
	ProjectedTotal float64                `json:"projected_total"`
	PaymentInfo    map[string]interface{} `json:"payment_info,omitempty"`
	Status         string                 `json:"status"`
}

type RevealInput struct {
	Session        *domain.PersonalizationSession
	Trip           *domain.Trip
	Settings       *domain.TenantSettings
	CartItems      []*domain.CartItem
	ActivitiesByID map[uuid.UUID]*domain.Activity
	DaysByID       map[uuid.UUID]*domain.TripDay
}

// RevealBuilder is pure formatting over already-loaded rows.
type RevealBuilder interface {
	Build(in RevealInput) *Reveal
}

type revealBuilder struct {
	log *logger.Logger
}

func NewRevealBuilder(baseLog *logger.Logger) RevealBuilder {
	return &revealBuilder{log: baseLog.With("service", "RevealBuilder")}
}

func (b *revealBuilder) Build(in RevealInput) *Reveal {
	out := &Reveal{
		FittedItems: []RevealItem{},
		MissedItems: []RevealItem{},
		SavedItems:  []RevealItem{},
	}
	if in.Session == nil {
		return out
	}
	out.SessionID = in.Session.ID
	out.Status = in.Session.Status

	for _, ci := range in.CartItems {
		if ci == nil || ci.Status == domain.CartCancelled {
			continue
		}
		item := b.item(ci, in)

		switch {
		case ci.Source == domain.ActionSaved && ci.FitStatus == domain.FitPending:
			out.SavedItems = append(out.SavedItems, item)
			continue
		case ci.FitStatus == domain.FitFitted:
			out.FittedItems = append(out.FittedItems, item)
		case ci.FitStatus == domain.FitMissed, ci.FitStatus == domain.FitSwapped:
			out.MissedItems = append(out.MissedItems, item)
		default:
			continue
		}
		out.TotalLiked++
		if ci.Currency != "" {
			out.Currency = ci.Currency
		}
		if ci.FitStatus == domain.FitFitted {
			out.AddedPrice += ci.QuotedPrice
		}
	}

	out.TotalFitted = len(out.FittedItems)
	out.TotalMissed = len(out.MissedItems)
	out.AddedPrice = roundPrice(out.AddedPrice)

	if in.Trip != nil {
		if out.Currency == "" {
			out.Currency = in.Trip.Currency
		}
		out.ProjectedTotal = roundPrice(in.Trip.TotalPrice + out.AddedPrice)
	}
	if in.Settings != nil {
		out.PaymentInfo = in.Settings.PaymentInfo()
	}
	return out
}

func (b *revealBuilder) item(ci *domain.CartItem, in RevealInput) RevealItem {
	item := RevealItem{
		ActivityID:      ci.ActivityID,
		Price:           roundPrice(ci.QuotedPrice),
		Currency:        ci.Currency,
		Reason:          ci.FitReason,
		SwapCandidateID: ci.SwapCandidateID,
	}
	if act := in.ActivitiesByID[ci.ActivityID]; act != nil {
		item.Title = act.Title
		item.DurationText = durationText(DurationMinutes(act))
		item.HeroImage = act.HeroImage()
	}
	if ci.PlacedDayID != nil {
		item.DayID = ci.PlacedDayID
		if day := in.DaysByID[*ci.PlacedDayID]; day != nil {
			n := day.DayNumber
			item.DayNumber = &n
		}
	}
	if ci.AssignedSlot != nil {
		item.Slot = *ci.AssignedSlot
		item.SlotLabel = SlotLabel(*ci.AssignedSlot)
	}
	return item
}

func SlotLabel(slot string) string {
	switch slot {
	case domain.SlotMorning:
		return "Morning (09:00-12:00)"
	case domain.SlotAfternoon:
		return "Afternoon (12:00-16:00)"
	case domain.SlotEvening:
		return "Evening (16:00-20:00)"
	default:
		return "Unscheduled"
	}
}

func durationText(minutes int) string {
	switch {
	case minutes <= 0:
		return ""
	case minutes < 60:
		return fmt.Sprintf("%dm", minutes)
	case minutes%60 == 0 && minutes < 480:
		return fmt.Sprintf("%dh", minutes/60)
	case minutes < 480:
		return fmt.Sprintf("%dh%02dm", minutes/60, minutes%60)
	default:
		days := minutes / 480
		if minutes%480 == 0 {
			if days == 1 {
				return "1 day"
			}
			return fmt.Sprintf("%d days", days)
		}
		return fmt.Sprintf("%dh", minutes/60)
	}
}

func roundPrice(v float64) float64 {
	return math.Round(v*100) / 100
}
