package scoring

import (
	"context"
	"encoding/json"
	"sort"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/lumenlearn/mastery-engine/internal/concepts"
	"github.com/lumenlearn/mastery-engine/internal/config"
	"github.com/lumenlearn/mastery-engine/internal/data/repos"
	"github.com/lumenlearn/mastery-engine/internal/domain"
	"github.com/lumenlearn/mastery-engine/internal/graph"
	"github.com/lumenlearn/mastery-engine/internal/platform/logger"
)

// Duration fallback when the discovery collaborator sends no duration.
const defaultEstimatedMinutes = 10

const scoreConcurrency = 8

// Service annotates search candidates with a personalization boost and
// re-sorts them. Scoring is read-only and degrades to the base relevance
// order whenever profile or mastery data cannot be loaded; it never fails
// a ranking request for personalization reasons.
type Service interface {
	Score(ctx context.Context, userID uuid.UUID, candidates []domain.ContentCandidate) ([]domain.ScoredCandidate, error)
}

type service struct {
	masteryRepo repos.ConceptMasteryRepo
	profileRepo repos.PreferenceProfileRepo
	gateway     graph.Gateway
	resolver    *concepts.Resolver
	cfg         *config.Engine
	cache       *Cache
	log         *logger.Logger
}

func NewService(masteryRepo repos.ConceptMasteryRepo, profileRepo repos.PreferenceProfileRepo, gateway graph.Gateway, resolver *concepts.Resolver, cfg *config.Engine, cache *Cache, baseLog *logger.Logger) Service {
	return &service{
		masteryRepo: masteryRepo,
		profileRepo: profileRepo,
		gateway:     gateway,
		resolver:    resolver,
		cfg:         cfg,
		cache:       cache,
		log:         baseLog.With("service", "ScoringService"),
	}
}

// learnerView is everything about one learner the component functions need.
type learnerView struct {
	preferredFormats []string
	areas            map[string]float64
	goals            map[string]struct{}
	mastery          map[string]float64
}

func (s *service) Score(ctx context.Context, userID uuid.UUID, candidates []domain.ContentCandidate) ([]domain.ScoredCandidate, error) {
	if userID == uuid.Nil {
		return nil, domain.NewError(domain.CodeValidation, "ScoringService.Score", "missing user_id", nil)
	}
	if len(candidates) == 0 {
		return []domain.ScoredCandidate{}, nil
	}

	if cached, ok := s.cache.Get(ctx, userID, candidates); ok {
		return cached, nil
	}

	view := s.loadLearner(ctx, userID)
	var catalog map[string]graph.ConceptInfo
	if view != nil {
		var err error
		if catalog, err = s.gateway.ConceptCatalog(ctx); err != nil {
			s.log.Warn("concept graph unavailable, scoring on base relevance",
				"user_id", userID.String(), "error", err)
			view = nil
		}
	}

	scored := make([]domain.ScoredCandidate, len(candidates))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(scoreConcurrency)
	for i, cand := range candidates {
		g.Go(func() error {
			scored[i] = s.scoreOne(gctx, cand, view, catalog)
			return nil
		})
	}
	_ = g.Wait()

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].FinalScore != scored[j].FinalScore {
			return scored[i].FinalScore > scored[j].FinalScore
		}
		if scored[i].BaseRelevanceScore != scored[j].BaseRelevanceScore {
			return scored[i].BaseRelevanceScore > scored[j].BaseRelevanceScore
		}
		return scored[i].ID < scored[j].ID
	})

	s.cache.Set(ctx, userID, candidates, scored)
	return scored, nil
}

// loadLearner reads the profile and mastery state. A nil return means cold
// start: no profile row exists or a dependency failed, and every candidate
// gets a zero boost.
func (s *service) loadLearner(ctx context.Context, userID uuid.UUID) *learnerView {
	prof, err := s.profileRepo.GetByUserID(ctx, nil, userID)
	if err != nil {
		s.log.Warn("profile load failed, scoring on base relevance", "user_id", userID.String(), "error", err)
		return nil
	}
	if prof == nil {
		return nil
	}

	view := &learnerView{
		areas:   map[string]float64{},
		goals:   map[string]struct{}{},
		mastery: map[string]float64{},
	}
	if len(prof.PreferredFormats) > 0 {
		_ = json.Unmarshal(prof.PreferredFormats, &view.preferredFormats)
	}
	if len(prof.KnowledgeAreas) > 0 {
		_ = json.Unmarshal(prof.KnowledgeAreas, &view.areas)
	}
	if len(prof.GoalConcepts) > 0 {
		var goals []string
		_ = json.Unmarshal(prof.GoalConcepts, &goals)
		for _, g := range goals {
			view.goals[g] = struct{}{}
		}
	}

	rows, err := s.masteryRepo.GetByUser(ctx, nil, userID)
	if err != nil {
		s.log.Warn("mastery load failed, scoring on base relevance", "user_id", userID.String(), "error", err)
		return nil
	}
	for _, row := range rows {
		view.mastery[row.ConceptID] = row.MasteryProbability
	}
	return view
}

func (s *service) scoreOne(ctx context.Context, cand domain.ContentCandidate, view *learnerView, catalog map[string]graph.ConceptInfo) domain.ScoredCandidate {
	out := domain.ScoredCandidate{
		ContentCandidate: cand,
		FinalScore:       cand.BaseRelevanceScore,
		EstimatedTime:    cand.DurationMinutes,
	}
	if out.EstimatedTime <= 0 {
		out.EstimatedTime = defaultEstimatedMinutes
	}
	if view == nil {
		return out
	}

	conceptIDs := s.resolver.Resolve(cand.Tags, catalog)
	avgMastery := 0.0
	if len(conceptIDs) > 0 {
		sum := 0.0
		for _, id := range conceptIDs {
			sum += view.mastery[id]
		}
		avgMastery = sum / float64(len(conceptIDs))
	}

	normTags := make([]string, 0, len(cand.Tags))
	for _, tag := range cand.Tags {
		if norm := concepts.Normalize(tag); norm != "" {
			normTags = append(normTags, norm)
		}
	}

	boost := Boost(s.cfg.Scoring,
		FormatMatch(cand.Format, view.preferredFormats),
		DifficultyFit(cand.Difficulty, avgMastery),
		TopicInterest(normTags, view.areas),
		KnowledgeGapRelevance(conceptIDs, view.goals, view.mastery),
	)
	out.PersonalizationBoost = boost
	out.FinalScore = cand.BaseRelevanceScore + boost
	return out
}
