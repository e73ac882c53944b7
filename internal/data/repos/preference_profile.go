package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/lumenlearn/mastery-engine/internal/domain"
	"github.com/lumenlearn/mastery-engine/internal/platform/logger"
)

type PreferenceProfileRepo interface {
	GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*domain.PreferenceProfile, error)
	Upsert(ctx context.Context, tx *gorm.DB, row *domain.PreferenceProfile) error
}

type preferenceProfileRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPreferenceProfileRepo(db *gorm.DB, baseLog *logger.Logger) PreferenceProfileRepo {
	return &preferenceProfileRepo{db: db, log: baseLog.With("repo", "PreferenceProfileRepo")}
}

func (r *preferenceProfileRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*domain.PreferenceProfile, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if userID == uuid.Nil {
		return nil, nil
	}
	var row domain.PreferenceProfile
	err := t.WithContext(ctx).
		Where("user_id = ?", userID).
		Limit(1).
		Find(&row).Error
	if err != nil {
		return nil, MapError("PreferenceProfileRepo.GetByUserID", err)
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *preferenceProfileRepo) Upsert(ctx context.Context, tx *gorm.DB, row *domain.PreferenceProfile) error {
	t := tx
	if t == nil {
		t = r.db
	}
	if row == nil || row.UserID == uuid.Nil {
		return nil
	}
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	row.UpdatedAt = time.Now().UTC()
	err := t.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"preferred_formats", "preferred_difficulty", "available_time_daily",
				"knowledge_areas", "goal_concepts", "auto_evolve", "updated_at",
			}),
		}).
		Create(row).Error
	if err != nil {
		return MapError("PreferenceProfileRepo.Upsert", err)
	}
	return nil
}
