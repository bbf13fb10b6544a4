package services

import (
	"strings"

	"github.com/voyagekit/tripcraft-backend/internal/domain"
)

// ReadinessScorer rates how complete an activity's data is, 0..1. Activities
// under the deck threshold are not shown to clients.
type ReadinessScorer interface {
	Score(act *domain.Activity, preferenceTags []string) (float64, []string)
}

const DeckReadinessThreshold = 0.70

type readinessScorer struct{}

func NewReadinessScorer() ReadinessScorer {
	return &readinessScorer{}
}

type readinessCheck struct {
	weight float64
	issue  string
	ok     func(act *domain.Activity, tags []string) bool
}

var readinessChecks = []readinessCheck{
	{0.15, "missing price", func(a *domain.Activity, _ []string) bool {
		return a.Price > 0
	}},
	{0.10, "missing location", func(a *domain.Activity, _ []string) bool {
		return strings.TrimSpace(a.LocationText) != ""
	}},
	{0.15, "description too short", func(a *domain.Activity, _ []string) bool {
		return len(strings.TrimSpace(a.Description)) >= 50
	}},
	{0.20, "no images", func(a *domain.Activity, _ []string) bool {
		return len(a.Images()) > 0
	}},
	{0.15, "no matching preference tags", func(a *domain.Activity, tags []string) bool {
		if len(tags) == 0 {
			return len(a.Tags()) > 0
		}
		return tagMatches(a.Tags(), tags) > 0
	}},
	{0.10, "no preferred time of day", func(a *domain.Activity, _ []string) bool {
		return domain.ValidSlot(a.PreferredSlot)
	}},
	{0.10, "fewer than two highlights", func(a *domain.Activity, _ []string) bool {
		return len(a.Highlights()) >= 2
	}},
	{0.05, "missing coordinates", func(a *domain.Activity, _ []string) bool {
		return a.Latitude != nil && a.Longitude != nil
	}},
}

// Score is a weighted sum over eight completeness checks; each failed check
// also appends a human-readable issue. Pure, no side effects.
func (s *readinessScorer) Score(act *domain.Activity, preferenceTags []string) (float64, []string) {
	if act == nil {
		return 0, []string{"missing activity"}
	}
	score := 0.0
	var issues []string
	for _, c := range readinessChecks {
		if c.ok(act, preferenceTags) {
			score += c.weight
		} else {
			issues = append(issues, c.issue)
		}
	}
	return score, issues
}

// tagMatches counts activity tags shared with the wanted set.
func tagMatches(have, want []string) int {
	if len(have) == 0 || len(want) == 0 {
		return 0
	}
	wanted := make(map[string]struct{}, len(want))
	for _, t := range want {
		wanted[strings.ToLower(strings.TrimSpace(t))] = struct{}{}
	}
	n := 0
	for _, t := range have {
		if _, ok := wanted[strings.ToLower(strings.TrimSpace(t))]; ok {
			n++
		}
	}
	return n
}
