package mastery

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lumenlearn/mastery-engine/internal/config"
	"github.com/lumenlearn/mastery-engine/internal/data/repos"
	"github.com/lumenlearn/mastery-engine/internal/domain"
	"github.com/lumenlearn/mastery-engine/internal/platform/logger"
)

// CacheInvalidator drops cached personalization results for a user after
// their mastery state changes. A nil invalidator is a no-op.
type CacheInvalidator interface {
	InvalidateUser(ctx context.Context, userID uuid.UUID) error
}

// Service applies evidence from both channels to ConceptMasteryState rows
// and keeps the append-only assessment log.
// Every write goes through one commit path that locks the row, applies the
// pure delta, clamps to [0,1], and updates the bookkeeping counters.
type Service interface {
	// ApplyInteraction applies the passive heuristic increment for each
	// resolved concept. Concepts are committed independently; a failure on
	// one concept aborts the batch and reports which concepts were updated.
	ApplyInteraction(ctx context.Context, userID uuid.UUID, conceptIDs []string, ev *domain.InteractionEvent) ([]string, error)
	// ApplyAssessment runs the BKT update for one graded answer and returns
	// the before/after mastery probabilities.
	ApplyAssessment(ctx context.Context, resp *domain.AssessmentResponse) (*domain.AssessmentResult, error)
}

type service struct {
	db           *gorm.DB
	masteryRepo  repos.ConceptMasteryRepo
	responseRepo repos.AssessmentResponseRepo
	cfg          *config.Engine
	cache        CacheInvalidator
	log          *logger.Logger
}

func NewService(db *gorm.DB, masteryRepo repos.ConceptMasteryRepo, responseRepo repos.AssessmentResponseRepo, cfg *config.Engine, cache CacheInvalidator, baseLog *logger.Logger) Service {
	return &service{
		db:           db,
		masteryRepo:  masteryRepo,
		responseRepo: responseRepo,
		cfg:          cfg,
		cache:        cache,
		log:          baseLog.With("service", "MasteryService"),
	}
}

func (s *service) ApplyInteraction(ctx context.Context, userID uuid.UUID, conceptIDs []string, ev *domain.InteractionEvent) ([]string, error) {
	if ev == nil || userID == uuid.Nil {
		return nil, domain.NewError(domain.CodeValidation, "MasteryService.ApplyInteraction", "missing event or user", nil)
	}

	d := InteractionDelta(ev.InteractionType, ev.ContentDifficulty, ev.CompletionPercentage)
	if d.Increment == 0 {
		return nil, nil
	}

	updated := make([]string, 0, len(conceptIDs))
	for _, conceptID := range conceptIDs {
		if conceptID == "" {
			continue
		}
		_, _, err := s.commit(ctx, userID, conceptID, func(prior float64) outcome {
			return outcome{
				mastery:      prior + d.Increment,
				streakExtend: d.Known,
			}
		})
		if err != nil {
			return updated, err
		}
		updated = append(updated, conceptID)
	}

	if len(updated) > 0 {
		s.invalidate(ctx, userID)
	}
	return updated, nil
}

func (s *service) ApplyAssessment(ctx context.Context, resp *domain.AssessmentResponse) (*domain.AssessmentResult, error) {
	if resp == nil || resp.UserID == uuid.Nil || resp.ConceptID == "" {
		return nil, domain.NewError(domain.CodeValidation, "MasteryService.ApplyAssessment", "missing user or concept", nil)
	}

	if s.responseRepo != nil {
		if _, err := s.responseRepo.Create(ctx, nil, []*domain.AssessmentResponse{resp}); err != nil {
			return nil, err
		}
	}

	params := s.cfg.ParamsFor(resp.ConceptID)
	before, after, err := s.commit(ctx, resp.UserID, resp.ConceptID, func(prior float64) outcome {
		return outcome{
			mastery:      BKTUpdate(prior, resp.IsCorrect, params),
			streakExtend: resp.IsCorrect,
			streakReset:  !resp.IsCorrect,
		}
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, resp.UserID)
	return &domain.AssessmentResult{
		UserID:        resp.UserID,
		Concept:       resp.ConceptID,
		MasteryBefore: before,
		MasteryAfter:  after,
	}, nil
}

// outcome is what a channel's pure delta decides for one row; the commit
// path owns everything else (clamp, counters, timestamps).
type outcome struct {
	mastery      float64
	streakExtend bool
	streakReset  bool
}

// commit is the single write path for mastery state. It locks the row
// (creating a zero row when none exists), applies the outcome, clamps the
// probability to [0,1], and bumps practice_count/last_updated. Row-level
// locking serializes concurrent evidence for the same (user, concept) pair
// while leaving other pairs fully parallel.
func (s *service) commit(ctx context.Context, userID uuid.UUID, conceptID string, apply func(prior float64) outcome) (before, after float64, err error) {
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row, err := s.masteryRepo.GetForUpdate(ctx, tx, userID, conceptID)
		if err != nil {
			return err
		}
		if row == nil {
			s.log.Warn("no prior mastery state, starting from zero",
				"user_id", userID.String(), "concept_id", conceptID)
			row = &domain.ConceptMasteryState{
				UserID:      userID,
				ConceptID:   conceptID,
				LastUpdated: time.Now().UTC(),
			}
			if err := s.masteryRepo.Create(ctx, tx, row); err != nil {
				return err
			}
		}

		before = row.MasteryProbability
		out := apply(before)

		next := out.mastery
		if next < 0 {
			next = 0
		}
		if next > 1 {
			next = 1
		}
		row.MasteryProbability = next
		row.PracticeCount++
		if out.streakReset {
			row.CorrectStreak = 0
		} else if out.streakExtend {
			row.CorrectStreak++
		}
		row.ConfidenceLevel = float64(row.PracticeCount) / float64(row.PracticeCount+5)
		row.LastUpdated = time.Now().UTC()
		after = next

		return s.masteryRepo.Save(ctx, tx, row)
	})
	if err != nil {
		return 0, 0, err
	}
	return before, after, nil
}

func (s *service) invalidate(ctx context.Context, userID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateUser(ctx, userID); err != nil {
		s.log.Warn("score cache invalidation failed", "user_id", userID.String(), "error", err)
	}
}
