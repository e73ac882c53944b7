package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/lumenlearn/mastery-engine/internal/domain"
	"github.com/lumenlearn/mastery-engine/internal/platform/logger"
)

type ConceptMasteryRepo interface {
	// GetForUpdate reads the (user, concept) row under a FOR UPDATE lock.
	// Must be called inside a transaction; returns nil when no row exists.
	GetForUpdate(ctx context.Context, tx *gorm.DB, userID uuid.UUID, conceptID string) (*domain.ConceptMasteryState, error)
	Get(ctx context.Context, tx *gorm.DB, userID uuid.UUID, conceptID string) (*domain.ConceptMasteryState, error)
	GetByUserAndConcepts(ctx context.Context, tx *gorm.DB, userID uuid.UUID, conceptIDs []string) ([]*domain.ConceptMasteryState, error)
	GetByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*domain.ConceptMasteryState, error)
	Create(ctx context.Context, tx *gorm.DB, row *domain.ConceptMasteryState) error
	Save(ctx context.Context, tx *gorm.DB, row *domain.ConceptMasteryState) error
}

type conceptMasteryRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewConceptMasteryRepo(db *gorm.DB, baseLog *logger.Logger) ConceptMasteryRepo {
	return &conceptMasteryRepo{db: db, log: baseLog.With("repo", "ConceptMasteryRepo")}
}

func (r *conceptMasteryRepo) GetForUpdate(ctx context.Context, tx *gorm.DB, userID uuid.UUID, conceptID string) (*domain.ConceptMasteryState, error) {
	if tx == nil {
		return nil, domain.NewError(domain.CodeInternal, "ConceptMasteryRepo.GetForUpdate", "requires transaction", nil)
	}
	if userID == uuid.Nil || conceptID == "" {
		return nil, nil
	}
	var row domain.ConceptMasteryState
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ? AND concept_id = ?", userID, conceptID).
		Limit(1).
		Find(&row).Error
	if err != nil {
		return nil, MapError("ConceptMasteryRepo.GetForUpdate", err)
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *conceptMasteryRepo) Get(ctx context.Context, tx *gorm.DB, userID uuid.UUID, conceptID string) (*domain.ConceptMasteryState, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if userID == uuid.Nil || conceptID == "" {
		return nil, nil
	}
	var row domain.ConceptMasteryState
	err := t.WithContext(ctx).
		Where("user_id = ? AND concept_id = ?", userID, conceptID).
		Limit(1).
		Find(&row).Error
	if err != nil {
		return nil, MapError("ConceptMasteryRepo.Get", err)
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *conceptMasteryRepo) GetByUserAndConcepts(ctx context.Context, tx *gorm.DB, userID uuid.UUID, conceptIDs []string) ([]*domain.ConceptMasteryState, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*domain.ConceptMasteryState
	if userID == uuid.Nil || len(conceptIDs) == 0 {
		return out, nil
	}
	if err := t.WithContext(ctx).
		Where("user_id = ? AND concept_id IN ?", userID, conceptIDs).
		Find(&out).Error; err != nil {
		return nil, MapError("ConceptMasteryRepo.GetByUserAndConcepts", err)
	}
	return out, nil
}

func (r *conceptMasteryRepo) GetByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*domain.ConceptMasteryState, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*domain.ConceptMasteryState
	if userID == uuid.Nil {
		return out, nil
	}
	if err := t.WithContext(ctx).
		Where("user_id = ?", userID).
		Find(&out).Error; err != nil {
		return nil, MapError("ConceptMasteryRepo.GetByUser", err)
	}
	return out, nil
}

func (r *conceptMasteryRepo) Create(ctx context.Context, tx *gorm.DB, row *domain.ConceptMasteryState) error {
	t := tx
	if t == nil {
		t = r.db
	}
	if row == nil {
		return nil
	}
	if err := t.WithContext(ctx).Create(row).Error; err != nil {
		return MapError("ConceptMasteryRepo.Create", err)
	}
	return nil
}

func (r *conceptMasteryRepo) Save(ctx context.Context, tx *gorm.DB, row *domain.ConceptMasteryState) error {
	t := tx
	if t == nil {
		t = r.db
	}
	if row == nil || row.ID == uuid.Nil {
		return nil
	}
	if err := t.WithContext(ctx).Save(row).Error; err != nil {
		return MapError("ConceptMasteryRepo.Save", err)
	}
	return nil
}
