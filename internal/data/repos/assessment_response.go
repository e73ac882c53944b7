package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lumenlearn/mastery-engine/internal/domain"
	"github.com/lumenlearn/mastery-engine/internal/platform/logger"
)

type AssessmentResponseRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rows []*domain.AssessmentResponse) ([]*domain.AssessmentResponse, error)
	GetByUserAndConcept(ctx context.Context, tx *gorm.DB, userID uuid.UUID, conceptID string) ([]*domain.AssessmentResponse, error)
}

type assessmentResponseRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAssessmentResponseRepo(db *gorm.DB, baseLog *logger.Logger) AssessmentResponseRepo {
	return &assessmentResponseRepo{db: db, log: baseLog.With("repo", "AssessmentResponseRepo")}
}

func (r *assessmentResponseRepo) Create(ctx context.Context, tx *gorm.DB, rows []*domain.AssessmentResponse) ([]*domain.AssessmentResponse, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return []*domain.AssessmentResponse{}, nil
	}
	if err := t.WithContext(ctx).Create(&rows).Error; err != nil {
		return nil, MapError("AssessmentResponseRepo.Create", err)
	}
	return rows, nil
}

func (r *assessmentResponseRepo) GetByUserAndConcept(ctx context.Context, tx *gorm.DB, userID uuid.UUID, conceptID string) ([]*domain.AssessmentResponse, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*domain.AssessmentResponse
	if userID == uuid.Nil || conceptID == "" {
		return out, nil
	}
	if err := t.WithContext(ctx).
		Where("user_id = ? AND concept_id = ?", userID, conceptID).
		Order("occurred_at ASC").
		Find(&out).Error; err != nil {
		return nil, MapError("AssessmentResponseRepo.GetByUserAndConcept", err)
	}
	return out, nil
}
