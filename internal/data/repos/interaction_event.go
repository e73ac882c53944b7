package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lumenlearn/mastery-engine/internal/domain"
	"github.com/lumenlearn/mastery-engine/internal/platform/logger"
)

type InteractionEventRepo interface {
	Create(ctx context.Context, tx *gorm.DB, events []*domain.InteractionEvent) ([]*domain.InteractionEvent, error)
	GetByUserSince(ctx context.Context, tx *gorm.DB, userID uuid.UUID, since time.Time) ([]*domain.InteractionEvent, error)
	GetByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*domain.InteractionEvent, error)
}

type interactionEventRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewInteractionEventRepo(db *gorm.DB, baseLog *logger.Logger) InteractionEventRepo {
	return &interactionEventRepo{db: db, log: baseLog.With("repo", "InteractionEventRepo")}
}

func (r *interactionEventRepo) Create(ctx context.Context, tx *gorm.DB, events []*domain.InteractionEvent) ([]*domain.InteractionEvent, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if len(events) == 0 {
		return []*domain.InteractionEvent{}, nil
	}
	if err := t.WithContext(ctx).Create(&events).Error; err != nil {
		return nil, MapError("InteractionEventRepo.Create", err)
	}
	return events, nil
}

func (r *interactionEventRepo) GetByUserSince(ctx context.Context, tx *gorm.DB, userID uuid.UUID, since time.Time) ([]*domain.InteractionEvent, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*domain.InteractionEvent
	if userID == uuid.Nil {
		return out, nil
	}
	if err := t.WithContext(ctx).
		Where("user_id = ? AND occurred_at >= ?", userID, since).
		Order("occurred_at ASC").
		Find(&out).Error; err != nil {
		return nil, MapError("InteractionEventRepo.GetByUserSince", err)
	}
	return out, nil
}

func (r *interactionEventRepo) GetByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*domain.InteractionEvent, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*domain.InteractionEvent
	if userID == uuid.Nil {
		return out, nil
	}
	if err := t.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("occurred_at ASC").
		Find(&out).Error; err != nil {
		return nil, MapError("InteractionEventRepo.GetByUser", err)
	}
	return out, nil
}
