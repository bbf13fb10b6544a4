package services

import (
	"testing"

	"github.com/voyagekit/tripcraft-backend/internal/domain"
)

func completeActivity() *domain.Activity {
	lat, lng := 38.7, -9.1
	return &domain.Activity{
		Title:          "Tile workshop",
		Price:          45,
		LocationText:   "Baixa, Lisbon",
		Description:    "Paint your own azulejo tile with a local ceramicist in a small studio.",
		ImagesJSON:     domain.EncodeStrings([]string{"hero.jpg"}),
		TagsJSON:       domain.EncodeStrings([]string{"crafts", "culture"}),
		PreferredSlot:  domain.SlotMorning,
		HighlightsJSON: domain.EncodeStrings([]string{"take your tile home", "max 8 people"}),
		Latitude:       &lat,
		Longitude:      &lng,
	}
}

func TestReadinessCompleteActivityScoresFull(t *testing.T) {
	scorer := NewReadinessScorer()
	score, issues := scorer.Score(completeActivity(), nil)
	if score < 0.999 {
		t.Fatalf("score = %v, want 1.0 (issues: %v)", score, issues)
	}
	if len(issues) != 0 {
		t.Fatalf("unexpected issues: %v", issues)
	}
}

func TestReadinessReportsIssues(t *testing.T) {
	scorer := NewReadinessScorer()
	act := completeActivity()
	act.Price = 0
	act.ImagesJSON = nil

	score, issues := scorer.Score(act, nil)
	if score > 0.66 {
		t.Fatalf("score = %v, want 0.65", score)
	}
	want := map[string]bool{"missing price": false, "no images": false}
	for _, issue := range issues {
		if _, ok := want[issue]; ok {
			want[issue] = true
		}
	}
	for issue, seen := range want {
		if !seen {
			t.Fatalf("issue %q not reported (got %v)", issue, issues)
		}
	}
}

func TestReadinessTagCheckAgainstPreferences(t *testing.T) {
	scorer := NewReadinessScorer()
	act := completeActivity()

	if score, _ := scorer.Score(act, []string{"culture"}); score < 0.999 {
		t.Fatalf("matching tag should pass, score = %v", score)
	}
	score, issues := scorer.Score(act, []string{"adrenaline"})
	if score > 0.86 {
		t.Fatalf("mismatched tags should fail the tag check, score = %v", score)
	}
	found := false
	for _, issue := range issues {
		if issue == "no matching preference tags" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected tag issue, got %v", issues)
	}
}

func TestReadinessBelowThresholdExcluded(t *testing.T) {
	scorer := NewReadinessScorer()
	act := &domain.Activity{Title: "bare", Price: 10}
	score, _ := scorer.Score(act, nil)
	if score >= DeckReadinessThreshold {
		t.Fatalf("nearly empty activity scored %v, should be under %v", score, DeckReadinessThreshold)
	}
}

func TestTagMatches(t *testing.T) {
	if n := tagMatches([]string{"Food", "culture"}, []string{"food"}); n != 1 {
		t.Fatalf("case-insensitive match = %d, want 1", n)
	}
	if n := tagMatches(nil, []string{"food"}); n != 0 {
		t.Fatalf("empty have = %d, want 0", n)
	}
	if n := tagMatches([]string{"food"}, nil); n != 0 {
		t.Fatalf("empty want = %d, want 0", n)
	}
}
