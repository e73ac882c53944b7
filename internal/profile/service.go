package profile

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/lumenlearn/mastery-engine/internal/concepts"
	"github.com/lumenlearn/mastery-engine/internal/data/repos"
	"github.com/lumenlearn/mastery-engine/internal/domain"
	"github.com/lumenlearn/mastery-engine/internal/mastery"
	"github.com/lumenlearn/mastery-engine/internal/platform/logger"
)

const (
	// Interactions below this effective weight are noise for preference
	// inference (a plain view weighs 0.02, a plain click 0.03).
	highWeightThreshold = 0.05
	// Completion bar for the difficulty vote; half-watched content says
	// little about what difficulty a learner can sustain.
	highCompletionPct = 50.0

	completionBonusPct    = 80.0
	completionBonusFactor = 1.5
	ratingBonusMin        = 4.0
	ratingBonusFactor     = 1.3

	topFormats        = 3
	topKnowledgeAreas = 10
)

// Service infers a learner's preference profile from their recent
// interaction log and persists it. Declared goals on an existing profile
// survive rebuilds; only the behavioral fields are recomputed.
type Service interface {
	// Build recomputes the profile over the trailing window. windowDays <= 0
	// uses the configured default. With autoEvolve false the persisted
	// profile is returned unchanged.
	Build(ctx context.Context, userID uuid.UUID, windowDays int, autoEvolve bool) (*domain.PreferenceProfile, error)
	Get(ctx context.Context, userID uuid.UUID) (*domain.PreferenceProfile, error)
}

type service struct {
	eventRepo   repos.InteractionEventRepo
	profileRepo repos.PreferenceProfileRepo
	cache       mastery.CacheInvalidator
	defaultDays int
	log         *logger.Logger
}

func NewService(eventRepo repos.InteractionEventRepo, profileRepo repos.PreferenceProfileRepo, cache mastery.CacheInvalidator, defaultWindowDays int, baseLog *logger.Logger) Service {
	if defaultWindowDays <= 0 {
		defaultWindowDays = 30
	}
	return &service{
		eventRepo:   eventRepo,
		profileRepo: profileRepo,
		cache:       cache,
		defaultDays: defaultWindowDays,
		log:         baseLog.With("service", "ProfileService"),
	}
}

func (s *service) Get(ctx context.Context, userID uuid.UUID) (*domain.PreferenceProfile, error) {
	if userID == uuid.Nil {
		return nil, domain.NewError(domain.CodeValidation, "ProfileService.Get", "missing user_id", nil)
	}
	return s.profileRepo.GetByUserID(ctx, nil, userID)
}

func (s *service) Build(ctx context.Context, userID uuid.UUID, windowDays int, autoEvolve bool) (*domain.PreferenceProfile, error) {
	const op = "ProfileService.Build"
	if userID == uuid.Nil {
		return nil, domain.NewError(domain.CodeValidation, op, "missing user_id", nil)
	}
	if windowDays <= 0 {
		windowDays = s.defaultDays
	}

	existing, err := s.profileRepo.GetByUserID(ctx, nil, userID)
	if err != nil {
		return nil, err
	}
	if !autoEvolve {
		if existing != nil {
			return existing, nil
		}
		// Nothing persisted yet; an empty profile is still a valid answer.
		return &domain.PreferenceProfile{UserID: userID, AutoEvolve: false}, nil
	}

	since := time.Now().UTC().AddDate(0, 0, -windowDays)
	events, err := s.eventRepo.GetByUserSince(ctx, nil, userID, since)
	if err != nil {
		return nil, err
	}

	inferred := infer(events)
	row := &domain.PreferenceProfile{
		UserID:              userID,
		PreferredDifficulty: inferred.difficulty,
		AvailableTimeDaily:  inferred.dailyMinutes,
		AutoEvolve:          true,
	}
	if existing != nil {
		row.ID = existing.ID
		row.GoalConcepts = existing.GoalConcepts
	}
	if row.PreferredFormats, err = json.Marshal(inferred.formats); err != nil {
		return nil, domain.Wrap(domain.CodeInternal, op, err)
	}
	if row.KnowledgeAreas, err = json.Marshal(inferred.areas); err != nil {
		return nil, domain.Wrap(domain.CodeInternal, op, err)
	}

	if err := s.profileRepo.Upsert(ctx, nil, row); err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.InvalidateUser(ctx, userID); err != nil {
			s.log.Warn("score cache invalidation failed", "user_id", userID.String(), "error", err)
		}
	}
	return row, nil
}

type inference struct {
	formats      []string
	difficulty   string
	dailyMinutes int
	areas        map[string]float64
}

// infer runs the pure aggregation over one window of events.
func infer(events []*domain.InteractionEvent) inference {
	formatWeight := map[string]float64{}
	difficultyWeight := map[string]float64{}
	areas := map[string]float64{}
	var durationWeighted, weightSum float64

	for _, ev := range events {
		w := effectiveWeight(ev)
		if w == 0 {
			continue
		}
		if ev.ContentFormat != "" {
			formatWeight[ev.ContentFormat] += w
		}
		if ev.ContentDifficulty != "" && ev.CompletionPercentage >= highCompletionPct {
			difficultyWeight[ev.ContentDifficulty] += w
		}
		if w >= highWeightThreshold {
			durationWeighted += float64(ev.DurationSeconds) * w
			weightSum += w
			var tags []string
			if len(ev.ContentTags) > 0 {
				if err := json.Unmarshal(ev.ContentTags, &tags); err == nil {
					for _, tag := range tags {
						if norm := concepts.Normalize(tag); norm != "" {
							areas[norm] += w
						}
					}
				}
			}
		}
	}

	out := inference{
		formats: topKeys(formatWeight, topFormats),
		areas:   truncateAreas(areas, topKnowledgeAreas),
	}
	if top := topKeys(difficultyWeight, 1); len(top) > 0 {
		out.difficulty = top[0]
	}
	if weightSum > 0 {
		out.dailyMinutes = int(durationWeighted / weightSum / 60)
	}
	return out
}

// effectiveWeight scales the base interaction weight by completion and
// rating bonuses.
func effectiveWeight(ev *domain.InteractionEvent) float64 {
	w := mastery.BaseWeight(ev.InteractionType)
	if w == 0 {
		return 0
	}
	if ev.CompletionPercentage >= completionBonusPct {
		w *= completionBonusFactor
	}
	if ev.Rating != nil && *ev.Rating >= ratingBonusMin {
		w *= ratingBonusFactor
	}
	return w
}

// topKeys returns the n highest weighted keys, ties broken alphabetically
// so rebuilds are deterministic.
func topKeys(weights map[string]float64, n int) []string {
	keys := make([]string, 0, len(weights))
	for k := range weights {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if weights[keys[i]] != weights[keys[j]] {
			return weights[keys[i]] > weights[keys[j]]
		}
		return keys[i] < keys[j]
	})
	if len(keys) > n {
		keys = keys[:n]
	}
	return keys
}

func truncateAreas(areas map[string]float64, n int) map[string]float64 {
	if len(areas) <= n {
		return areas
	}
	out := make(map[string]float64, n)
	for _, k := range topKeys(areas, n) {
		out[k] = areas[k]
	}
	return out
}
