package progress

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/google/uuid"

	"github.com/lumenlearn/mastery-engine/internal/concepts"
	"github.com/lumenlearn/mastery-engine/internal/data/repos"
	"github.com/lumenlearn/mastery-engine/internal/domain"
	"github.com/lumenlearn/mastery-engine/internal/graph"
	"github.com/lumenlearn/mastery-engine/internal/platform/logger"
)

// Canonical status thresholds. Used by both the path projection and the
// scoring fit components so a concept never reads as mastered in one place
// and in-progress in another.
const (
	NotStartedBelow = 0.1
	MasteredAt      = 0.7
)

// StatusFor maps a mastery probability onto the canonical status table.
func StatusFor(mastery float64) string {
	switch {
	case mastery < NotStartedBelow:
		return domain.StatusNotStarted
	case mastery < MasteredAt:
		return domain.StatusInProgress
	default:
		return domain.StatusMastered
	}
}

// Contribution weighs one concept's share of overall path progress.
// Mastered counts in full, in-progress counts its mastery level, and
// not-started counts nothing.
func Contribution(mastery float64) float64 {
	switch StatusFor(mastery) {
	case domain.StatusMastered:
		return 1.0
	case domain.StatusInProgress:
		return mastery
	default:
		return 0
	}
}

// Service projects a user's mastery state onto a learning path. The
// projection is transient: calling Sync twice with no intervening evidence
// yields identical output.
type Service interface {
	Sync(ctx context.Context, userID uuid.UUID, threadID string) (*domain.LearningPathProgress, error)
}

type service struct {
	gateway     graph.Gateway
	masteryRepo repos.ConceptMasteryRepo
	eventRepo   repos.InteractionEventRepo
	resolver    *concepts.Resolver
	log         *logger.Logger
}

func NewService(gateway graph.Gateway, masteryRepo repos.ConceptMasteryRepo, eventRepo repos.InteractionEventRepo, resolver *concepts.Resolver, baseLog *logger.Logger) Service {
	return &service{
		gateway:     gateway,
		masteryRepo: masteryRepo,
		eventRepo:   eventRepo,
		resolver:    resolver,
		log:         baseLog.With("service", "ProgressService"),
	}
}

func (s *service) Sync(ctx context.Context, userID uuid.UUID, threadID string) (*domain.LearningPathProgress, error) {
	const op = "ProgressService.Sync"
	if userID == uuid.Nil || strings.TrimSpace(threadID) == "" {
		return nil, domain.NewError(domain.CodeValidation, op, "missing user_id or thread_id", nil)
	}

	conceptIDs, err := s.gateway.PathConcepts(ctx, threadID)
	if err != nil {
		return nil, err
	}

	out := &domain.LearningPathProgress{
		ThreadID: threadID,
		Concepts: []domain.ConceptProgress{},
	}
	if len(conceptIDs) == 0 {
		return out, nil
	}

	rows, err := s.masteryRepo.GetByUserAndConcepts(ctx, nil, userID, conceptIDs)
	if err != nil {
		return nil, err
	}
	mastery := make(map[string]float64, len(rows))
	for _, row := range rows {
		mastery[row.ConceptID] = row.MasteryProbability
	}

	activity, err := s.activityByConcept(ctx, userID)
	if err != nil {
		return nil, err
	}

	total := 0.0
	for _, id := range conceptIDs {
		// A missing row is zero state, not an error.
		m := mastery[id]
		cp := domain.ConceptProgress{
			Name:         id,
			Status:       StatusFor(m),
			MasteryLevel: m,
		}
		if a, ok := activity[id]; ok {
			cp.TimeSpent = a.seconds
			cp.ContentCount = len(a.contentIDs)
		}
		out.Concepts = append(out.Concepts, cp)
		total += Contribution(m)
	}

	out.OverallProgress = 100 * total / float64(len(conceptIDs))
	return out, nil
}

type conceptActivity struct {
	seconds    int
	contentIDs map[string]struct{}
}

// activityByConcept folds the user's interaction log into per-concept time
// spent and distinct content counts, resolving each event's tags through
// the same cascade ingestion uses.
func (s *service) activityByConcept(ctx context.Context, userID uuid.UUID) (map[string]*conceptActivity, error) {
	events, err := s.eventRepo.GetByUser(ctx, nil, userID)
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return map[string]*conceptActivity{}, nil
	}

	catalog, err := s.gateway.ConceptCatalog(ctx)
	if err != nil {
		return nil, err
	}

	out := make(map[string]*conceptActivity)
	for _, ev := range events {
		if len(ev.ContentTags) == 0 {
			continue
		}
		var tags []string
		if err := json.Unmarshal(ev.ContentTags, &tags); err != nil {
			s.log.Warn("skipping event with invalid tags", "event_id", ev.ID.String())
			continue
		}
		for _, id := range s.resolver.Resolve(tags, catalog) {
			a := out[id]
			if a == nil {
				a = &conceptActivity{contentIDs: map[string]struct{}{}}
				out[id] = a
			}
			a.seconds += ev.DurationSeconds
			a.contentIDs[ev.ContentID] = struct{}{}
		}
	}
	return out, nil
}
