package services

import (
	"hash/fnv"
	"math/rand"
	"sort"

	"github.com/google/uuid"

	"github.com/voyagekit/tripcraft-backend/internal/data/repos"
	"github.com/voyagekit/tripcraft-backend/internal/domain"
	"github.com/voyagekit/tripcraft-backend/internal/platform/dbctx"
	"github.com/voyagekit/tripcraft-backend/internal/platform/logger"
)

// DeckBuilder selects and ranks the bounded candidate set a session swipes
// through.
type DeckBuilder interface {
	Build(dbc dbctx.Context, session *domain.PersonalizationSession, settings *domain.TenantSettings) ([]*domain.Activity, error)
}

type deckBuilder struct {
	log          *logger.Logger
	scorer       ReadinessScorer
	activities   repos.ActivityRepo
	interactions repos.InteractionRepo
	days         repos.TripDayRepo
	entries      repos.TripEntryRepo
}

func NewDeckBuilder(
	baseLog *logger.Logger,
	scorer ReadinessScorer,
	activities repos.ActivityRepo,
	interactions repos.InteractionRepo,
	days repos.TripDayRepo,
	entries repos.TripEntryRepo,
) DeckBuilder {
	return &deckBuilder{
		log:          baseLog.With("service", "DeckBuilder"),
		scorer:       scorer,
		activities:   activities,
		interactions: interactions,
		days:         days,
		entries:      entries,
	}
}

func (b *deckBuilder) Build(dbc dbctx.Context, session *domain.PersonalizationSession, settings *domain.TenantSettings) ([]*domain.Activity, error) {
	all, err := b.activities.ListActiveByTenant(dbc, session.TenantID)
	if err != nil {
		return nil, err
	}

	swiped, err := b.interactions.ActivityIDsBySession(dbc, session.ID)
	if err != nil {
		return nil, err
	}
	exclude := make(map[uuid.UUID]struct{}, len(swiped))
	for _, id := range swiped {
		exclude[id] = struct{}{}
	}

	days, err := b.days.ListByTripID(dbc, session.TripID)
	if err != nil {
		return nil, err
	}
	dayIDs := make([]uuid.UUID, 0, len(days))
	for _, d := range days {
		dayIDs = append(dayIDs, d.ID)
	}
	entries, err := b.entries.ListByDayIDs(dbc, dayIDs)
	if err != nil {
		return nil, err
	}
	for _, en := range entries {
		if en.ActivityID != nil {
			exclude[*en.ActivityID] = struct{}{}
		}
	}

	deck := b.rank(all, exclude, session, settings)
	if b.log != nil {
		b.log.Debug("deck built",
			"session_id", session.ID.String(),
			"candidates", len(all),
			"deck", len(deck),
		)
	}
	return deck, nil
}

// rank filters, scores and orders candidates. Pure given its inputs; jitter is
// seeded from the session id so rebuilding the same session's deck is
// reproducible.
func (b *deckBuilder) rank(all []*domain.Activity, exclude map[uuid.UUID]struct{}, session *domain.PersonalizationSession, settings *domain.TenantSettings) []*domain.Activity {
	prefTags := session.PreferenceTags()

	allowed := map[uuid.UUID]struct{}{}
	if settings != nil {
		for _, id := range settings.AllowedCategories() {
			allowed[id] = struct{}{}
		}
	}

	var eligible []*domain.Activity
	for _, a := range all {
		if _, skip := exclude[a.ID]; skip {
			continue
		}
		if settings != nil && settings.MaxActivityPrice > 0 && a.Price > settings.MaxActivityPrice {
			continue
		}
		if len(allowed) > 0 {
			if a.CategoryID == nil {
				continue
			}
			if _, ok := allowed[*a.CategoryID]; !ok {
				continue
			}
		}
		if score, _ := b.scorer.Score(a, prefTags); score < DeckReadinessThreshold {
			continue
		}
		eligible = append(eligible, a)
	}

	// Tag filter with fallback: a tag mismatch must never empty the deck.
	if len(prefTags) > 0 {
		var tagged []*domain.Activity
		for _, a := range eligible {
			if tagMatches(a.Tags(), prefTags) > 0 {
				tagged = append(tagged, a)
			}
		}
		if len(tagged) > 0 {
			eligible = tagged
		}
	}

	rng := rand.New(rand.NewSource(deckSeed(session.ID)))
	scores := make(map[uuid.UUID]float64, len(eligible))
	for _, a := range eligible {
		readiness, _ := b.scorer.Score(a, prefTags)
		score := 30*readiness + 20*float64(tagMatches(a.Tags(), prefTags)) + 5*a.Rating
		if rc := float64(a.ReviewCount) / 10; rc < 10 {
			score += rc
		} else {
			score += 10
		}
		if a.Featured {
			score += 5
		}
		score += rng.Float64() * 10
		scores[a.ID] = score
	}
	sort.SliceStable(eligible, func(i, j int) bool {
		return scores[eligible[i].ID] > scores[eligible[j].ID]
	})

	size := session.DeckSize
	if size <= 0 {
		size = 20
	}
	if len(eligible) > size {
		eligible = eligible[:size]
	}
	return varietyOrder(eligible, size)
}

// varietyOrder round-robins one item per category per pass so the deck does
// not front-load a single category. Truncates, never pads.
func varietyOrder(ranked []*domain.Activity, size int) []*domain.Activity {
	if len(ranked) <= 1 {
		return ranked
	}

	var keys []string
	groups := map[string][]*domain.Activity{}
	for _, a := range ranked {
		key := ""
		if a.CategoryID != nil {
			key = a.CategoryID.String()
		}
		if _, seen := groups[key]; !seen {
			keys = append(keys, key)
		}
		groups[key] = append(groups[key], a)
	}

	out := make([]*domain.Activity, 0, len(ranked))
	for len(out) < len(ranked) && len(out) < size {
		for _, key := range keys {
			if len(groups[key]) == 0 {
				continue
			}
			out = append(out, groups[key][0])
			groups[key] = groups[key][1:]
			if len(out) >= size {
				break
			}
		}
	}
	return out
}

func deckSeed(sessionID uuid.UUID) int64 {
	h := fnv.New64a()
	_, _ = h.Write(sessionID[:])
	return int64(h.Sum64())
}
