package progress

import (
	"context"
	"encoding/json"
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/lumenlearn/mastery-engine/internal/concepts"
	"github.com/lumenlearn/mastery-engine/internal/data/repos/testutil"
	"github.com/lumenlearn/mastery-engine/internal/domain"
	"github.com/lumenlearn/mastery-engine/internal/graph"
)

type fakeGateway struct {
	paths   map[string][]string
	catalog map[string]graph.ConceptInfo
}

func (f *fakeGateway) PathConcepts(ctx context.Context, threadID string) ([]string, error) {
	return f.paths[threadID], nil
}

func (f *fakeGateway) ConceptCatalog(ctx context.Context) (map[string]graph.ConceptInfo, error) {
	return f.catalog, nil
}

type fakeMasteryRepo struct {
	rows map[string]float64 // concept_id -> mastery
}

func (f *fakeMasteryRepo) GetForUpdate(ctx context.Context, tx *gorm.DB, userID uuid.UUID, conceptID string) (*domain.ConceptMasteryState, error) {
	return nil, nil
}

func (f *fakeMasteryRepo) Get(ctx context.Context, tx *gorm.DB, userID uuid.UUID, conceptID string) (*domain.ConceptMasteryState, error) {
	return nil, nil
}

func (f *fakeMasteryRepo) GetByUserAndConcepts(ctx context.Context, tx *gorm.DB, userID uuid.UUID, conceptIDs []string) ([]*domain.ConceptMasteryState, error) {
	var out []*domain.ConceptMasteryState
	for _, id := range conceptIDs {
		if m, ok := f.rows[id]; ok {
			out = append(out, &domain.ConceptMasteryState{UserID: userID, ConceptID: id, MasteryProbability: m})
		}
	}
	return out, nil
}

func (f *fakeMasteryRepo) GetByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*domain.ConceptMasteryState, error) {
	return nil, nil
}

func (f *fakeMasteryRepo) Create(ctx context.Context, tx *gorm.DB, row *domain.ConceptMasteryState) error {
	return nil
}

func (f *fakeMasteryRepo) Save(ctx context.Context, tx *gorm.DB, row *domain.ConceptMasteryState) error {
	return nil
}

type fakeEventRepo struct {
	events []*domain.InteractionEvent
}

func (f *fakeEventRepo) Create(ctx context.Context, tx *gorm.DB, events []*domain.InteractionEvent) ([]*domain.InteractionEvent, error) {
	return events, nil
}

func (f *fakeEventRepo) GetByUserSince(ctx context.Context, tx *gorm.DB, userID uuid.UUID, since time.Time) ([]*domain.InteractionEvent, error) {
	return f.events, nil
}

func (f *fakeEventRepo) GetByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*domain.InteractionEvent, error) {
	return f.events, nil
}

func tagged(contentID string, seconds int, tags ...string) *domain.InteractionEvent {
	raw, _ := json.Marshal(tags)
	return &domain.InteractionEvent{
		ID:              uuid.New(),
		ContentID:       contentID,
		ContentTags:     datatypes.JSON(raw),
		DurationSeconds: seconds,
		OccurredAt:      time.Now().UTC(),
	}
}

func newTestProgress(t *testing.T, gw *fakeGateway, mastery *fakeMasteryRepo, events *fakeEventRepo) Service {
	t.Helper()
	return NewService(gw, mastery, events, concepts.NewResolver(), testutil.Logger(t))
}

func TestStatusForThresholds(t *testing.T) {
	cases := []struct {
		mastery float64
		want    string
	}{
		{0, domain.StatusNotStarted},
		{0.05, domain.StatusNotStarted},
		{0.1, domain.StatusInProgress},
		{0.4, domain.StatusInProgress},
		{0.69, domain.StatusInProgress},
		{0.7, domain.StatusMastered},
		{1, domain.StatusMastered},
	}
	for _, tc := range cases {
		if got := StatusFor(tc.mastery); got != tc.want {
			t.Fatalf("StatusFor(%v) = %q, want %q", tc.mastery, got, tc.want)
		}
	}
}

func TestSyncAggregatesContributions(t *testing.T) {
	gw := &fakeGateway{
		paths: map[string][]string{"thread-1": {"javascript", "python", "sql"}},
		catalog: map[string]graph.ConceptInfo{
			"javascript": {}, "python": {}, "sql": {},
		},
	}
	mastery := &fakeMasteryRepo{rows: map[string]float64{
		"javascript": 0.8,  // mastered, contributes 1.0
		"python":     0.4,  // in progress, contributes 0.4
		"sql":        0.05, // not started, contributes 0
	}}
	svc := newTestProgress(t, gw, mastery, &fakeEventRepo{})

	got, err := svc.Sync(context.Background(), uuid.New(), "thread-1")
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	want := 100 * 1.4 / 3
	if math.Abs(got.OverallProgress-want) > 1e-9 {
		t.Fatalf("overall_progress = %v, want %v", got.OverallProgress, want)
	}
	if len(got.Concepts) != 3 {
		t.Fatalf("concepts = %d, want 3", len(got.Concepts))
	}
	if got.Concepts[0].Status != domain.StatusMastered ||
		got.Concepts[1].Status != domain.StatusInProgress ||
		got.Concepts[2].Status != domain.StatusNotStarted {
		t.Fatalf("unexpected statuses: %+v", got.Concepts)
	}
}

func TestSyncMissingRowIsZeroState(t *testing.T) {
	gw := &fakeGateway{
		paths:   map[string][]string{"thread-2": {"golang"}},
		catalog: map[string]graph.ConceptInfo{"golang": {}},
	}
	svc := newTestProgress(t, gw, &fakeMasteryRepo{rows: map[string]float64{}}, &fakeEventRepo{})

	got, err := svc.Sync(context.Background(), uuid.New(), "thread-2")
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if got.OverallProgress != 0 {
		t.Fatalf("overall_progress = %v, want 0", got.OverallProgress)
	}
	if got.Concepts[0].Status != domain.StatusNotStarted || got.Concepts[0].MasteryLevel != 0 {
		t.Fatalf("missing row should project as zero state: %+v", got.Concepts[0])
	}
}

func TestSyncEmptyPathNoDivisionByZero(t *testing.T) {
	gw := &fakeGateway{paths: map[string][]string{}}
	svc := newTestProgress(t, gw, &fakeMasteryRepo{}, &fakeEventRepo{})

	got, err := svc.Sync(context.Background(), uuid.New(), "thread-empty")
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if got.OverallProgress != 0 || len(got.Concepts) != 0 {
		t.Fatalf("empty path: got %+v, want zero progress and no concepts", got)
	}
}

func TestSyncIdempotent(t *testing.T) {
	gw := &fakeGateway{
		paths:   map[string][]string{"thread-3": {"javascript", "python"}},
		catalog: map[string]graph.ConceptInfo{"javascript": {}, "python": {}},
	}
	mastery := &fakeMasteryRepo{rows: map[string]float64{"javascript": 0.55}}
	events := &fakeEventRepo{events: []*domain.InteractionEvent{
		tagged("c1", 120, "javascript"),
		tagged("c2", 60, "javascript"),
	}}
	svc := newTestProgress(t, gw, mastery, events)
	userID := uuid.New()

	first, err := svc.Sync(context.Background(), userID, "thread-3")
	if err != nil {
		t.Fatalf("Sync #1: %v", err)
	}
	second, err := svc.Sync(context.Background(), userID, "thread-3")
	if err != nil {
		t.Fatalf("Sync #2: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("sync not idempotent:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestSyncActivityFromEventLog(t *testing.T) {
	gw := &fakeGateway{
		paths:   map[string][]string{"thread-4": {"javascript"}},
		catalog: map[string]graph.ConceptInfo{"javascript": {}},
	}
	events := &fakeEventRepo{events: []*domain.InteractionEvent{
		tagged("c1", 120, "javascript"),
		tagged("c2", 60, "js"),
		tagged("c1", 30, "javascript"), // same content, counted once
	}}
	svc := newTestProgress(t, gw, &fakeMasteryRepo{}, events)

	got, err := svc.Sync(context.Background(), uuid.New(), "thread-4")
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	cp := got.Concepts[0]
	if cp.TimeSpent != 210 {
		t.Fatalf("time_spent = %d, want 210", cp.TimeSpent)
	}
	if cp.ContentCount != 2 {
		t.Fatalf("content_count = %d, want 2", cp.ContentCount)
	}
}

func TestSyncRejectsMissingThread(t *testing.T) {
	svc := newTestProgress(t, &fakeGateway{}, &fakeMasteryRepo{}, &fakeEventRepo{})
	_, err := svc.Sync(context.Background(), uuid.New(), "  ")
	if !domain.IsCode(err, domain.CodeValidation) {
		t.Fatalf("err = %v, want CodeValidation", err)
	}
}
