package scoring

import (
	"context"
	"encoding/json"
	"math"
	"testing"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/lumenlearn/mastery-engine/internal/concepts"
	"github.com/lumenlearn/mastery-engine/internal/config"
	"github.com/lumenlearn/mastery-engine/internal/data/repos/testutil"
	"github.com/lumenlearn/mastery-engine/internal/domain"
	"github.com/lumenlearn/mastery-engine/internal/graph"
)

type fakeMasteryRepo struct {
	rows map[string]float64
}

func (f *fakeMasteryRepo) GetForUpdate(ctx context.Context, tx *gorm.DB, userID uuid.UUID, conceptID string) (*domain.ConceptMasteryState, error) {
	return nil, nil
}

func (f *fakeMasteryRepo) Get(ctx context.Context, tx *gorm.DB, userID uuid.UUID, conceptID string) (*domain.ConceptMasteryState, error) {
	return nil, nil
}

func (f *fakeMasteryRepo) GetByUserAndConcepts(ctx context.Context, tx *gorm.DB, userID uuid.UUID, conceptIDs []string) ([]*domain.ConceptMasteryState, error) {
	return nil, nil
}

func (f *fakeMasteryRepo) GetByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*domain.ConceptMasteryState, error) {
	var out []*domain.ConceptMasteryState
	for id, m := range f.rows {
		out = append(out, &domain.ConceptMasteryState{UserID: userID, ConceptID: id, MasteryProbability: m})
	}
	return out, nil
}

func (f *fakeMasteryRepo) Create(ctx context.Context, tx *gorm.DB, row *domain.ConceptMasteryState) error {
	return nil
}

func (f *fakeMasteryRepo) Save(ctx context.Context, tx *gorm.DB, row *domain.ConceptMasteryState) error {
	return nil
}

type fakeProfileRepo struct {
	stored *domain.PreferenceProfile
}

func (f *fakeProfileRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*domain.PreferenceProfile, error) {
	return f.stored, nil
}

func (f *fakeProfileRepo) Upsert(ctx context.Context, tx *gorm.DB, row *domain.PreferenceProfile) error {
	return nil
}

type fakeGateway struct {
	catalog map[string]graph.ConceptInfo
}

func (f *fakeGateway) PathConcepts(ctx context.Context, threadID string) ([]string, error) {
	return nil, nil
}

func (f *fakeGateway) ConceptCatalog(ctx context.Context) (map[string]graph.ConceptInfo, error) {
	return f.catalog, nil
}

func profileWith(t *testing.T, formats []string, areas map[string]float64, goals []string) *domain.PreferenceProfile {
	t.Helper()
	p := &domain.PreferenceProfile{ID: uuid.New(), UserID: uuid.New(), AutoEvolve: true}
	var err error
	if p.PreferredFormats, err = json.Marshal(formats); err != nil {
		t.Fatalf("marshal formats: %v", err)
	}
	if p.KnowledgeAreas, err = json.Marshal(areas); err != nil {
		t.Fatalf("marshal areas: %v", err)
	}
	var raw datatypes.JSON
	if raw, err = json.Marshal(goals); err != nil {
		t.Fatalf("marshal goals: %v", err)
	}
	p.GoalConcepts = raw
	return p
}

func newTestScoring(t *testing.T, mastery *fakeMasteryRepo, profiles *fakeProfileRepo, catalog map[string]graph.ConceptInfo) Service {
	t.Helper()
	return NewService(mastery, profiles, &fakeGateway{catalog: catalog}, concepts.NewResolver(), config.Default(), nil, testutil.Logger(t))
}

func TestScoreColdStartPreservesBaseExactly(t *testing.T) {
	svc := newTestScoring(t, &fakeMasteryRepo{}, &fakeProfileRepo{stored: nil}, nil)

	candidates := []domain.ContentCandidate{
		{ID: "a", Format: "video", BaseRelevanceScore: 0.9},
		{ID: "b", Format: "article", BaseRelevanceScore: 0.3},
	}
	got, err := svc.Score(context.Background(), uuid.New(), candidates)
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	for _, sc := range got {
		if sc.PersonalizationBoost != 0 {
			t.Fatalf("cold start boost = %v, want exactly 0", sc.PersonalizationBoost)
		}
		if sc.FinalScore != sc.BaseRelevanceScore {
			t.Fatalf("cold start final = %v, want base %v exactly", sc.FinalScore, sc.BaseRelevanceScore)
		}
	}
	if got[0].ID != "a" || got[1].ID != "b" {
		t.Fatalf("cold start must preserve base order, got %v then %v", got[0].ID, got[1].ID)
	}
}

func TestScoreBoostReordersCandidates(t *testing.T) {
	prof := profileWith(t, []string{"video"}, map[string]float64{"javascript": 0.3}, []string{"javascript"})
	catalog := map[string]graph.ConceptInfo{"javascript": {Label: "JavaScript"}}
	svc := newTestScoring(t, &fakeMasteryRepo{rows: map[string]float64{"javascript": 0.2}}, &fakeProfileRepo{stored: prof}, catalog)

	candidates := []domain.ContentCandidate{
		// Higher base but no personal fit at all.
		{ID: "generic", Format: "pdf", BaseRelevanceScore: 0.55},
		// Lower base, but preferred format, goal concept, and topic hit.
		{ID: "fit", Format: "video", Tags: []string{"javascript"}, Difficulty: domain.DifficultyIntermediate, BaseRelevanceScore: 0.50},
	}
	got, err := svc.Score(context.Background(), prof.UserID, candidates)
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if got[0].ID != "fit" {
		t.Fatalf("expected personal fit to outrank higher base: %+v", got)
	}
	if got[0].PersonalizationBoost <= 0 {
		t.Fatalf("fit candidate boost = %v, want positive", got[0].PersonalizationBoost)
	}
	if math.Abs(got[0].FinalScore-(got[0].BaseRelevanceScore+got[0].PersonalizationBoost)) > 1e-9 {
		t.Fatalf("final score must be additive: %+v", got[0])
	}
}

func TestScoreEstimatedTime(t *testing.T) {
	svc := newTestScoring(t, &fakeMasteryRepo{}, &fakeProfileRepo{}, nil)

	got, err := svc.Score(context.Background(), uuid.New(), []domain.ContentCandidate{
		{ID: "timed", DurationMinutes: 25, BaseRelevanceScore: 0.5},
		{ID: "untimed", BaseRelevanceScore: 0.4},
	})
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if got[0].EstimatedTime != 25 {
		t.Fatalf("estimated_time = %d, want 25", got[0].EstimatedTime)
	}
	if got[1].EstimatedTime != defaultEstimatedMinutes {
		t.Fatalf("estimated_time fallback = %d, want %d", got[1].EstimatedTime, defaultEstimatedMinutes)
	}
}

func TestScoreEmptyCandidates(t *testing.T) {
	svc := newTestScoring(t, &fakeMasteryRepo{}, &fakeProfileRepo{}, nil)
	got, err := svc.Score(context.Background(), uuid.New(), nil)
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("got %d candidates, want 0", len(got))
	}
}

func TestFormatMatch(t *testing.T) {
	if FormatMatch("video", []string{"article", "video"}) != 1 {
		t.Fatalf("expected match")
	}
	if FormatMatch("podcast", []string{"article", "video"}) != 0 {
		t.Fatalf("expected no match")
	}
	if FormatMatch("video", nil) != 0 {
		t.Fatalf("expected no match on empty preferences")
	}
}

func TestDifficultyFitZoneOfProximalDevelopment(t *testing.T) {
	// Learner averaging 0.3 mastery sits at rank 1; intermediate is rank 1,
	// advanced rank 2.
	oneAbove := DifficultyFit(domain.DifficultyAdvanced, 0.3)
	same := DifficultyFit(domain.DifficultyIntermediate, 0.3)
	below := DifficultyFit(domain.DifficultyBeginner, 0.3)
	farAbove := DifficultyFit(domain.DifficultyExpert, 0.3)

	if !(oneAbove > same && same > below) {
		t.Fatalf("want one-above > same > below, got %v, %v, %v", oneAbove, same, below)
	}
	if farAbove >= same {
		t.Fatalf("content far above mastery should score low: %v >= %v", farAbove, same)
	}
}

func TestKnowledgeGapRelevance(t *testing.T) {
	goals := map[string]struct{}{"recursion": {}}

	if got := KnowledgeGapRelevance([]string{"recursion"}, goals, map[string]float64{"recursion": 0.2}); got != 1 {
		t.Fatalf("unmastered goal = %v, want 1", got)
	}
	if got := KnowledgeGapRelevance([]string{"recursion"}, goals, map[string]float64{"recursion": 0.8}); math.Abs(got-0.2) > 1e-9 {
		t.Fatalf("mostly mastered goal = %v, want 0.2", got)
	}
	if got := KnowledgeGapRelevance([]string{"sorting"}, goals, nil); got != 0 {
		t.Fatalf("non-goal concept = %v, want 0", got)
	}
}

func TestTopicInterestFraction(t *testing.T) {
	areas := map[string]float64{"javascript": 0.4, "python": 0.2}
	if got := TopicInterest([]string{"javascript", "rust"}, areas); math.Abs(got-0.5) > 1e-9 {
		t.Fatalf("TopicInterest = %v, want 0.5", got)
	}
	if got := TopicInterest(nil, areas); got != 0 {
		t.Fatalf("TopicInterest(nil) = %v, want 0", got)
	}
}
