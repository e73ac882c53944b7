package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ConceptMasteryState holds the calibrated mastery estimate for one
// (user, concept) pair. Exactly one row per pair, enforced by the composite
// unique index. Mutated only through the mastery commit path, which owns the
// [0,1] clamp and the bookkeeping counters.
type ConceptMasteryState struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index:idx_concept_mastery,unique,priority:1" json:"user_id"`
	ConceptID string    `gorm:"column:concept_id;type:text;not null;index:idx_concept_mastery,unique,priority:2" json:"concept_id"`

	MasteryProbability float64 `gorm:"column:mastery_probability;not null;default:0" json:"mastery_probability"` // 0..1
	ConfidenceLevel    float64 `gorm:"column:confidence_level;not null;default:0" json:"confidence_level"`       // 0..1

	PracticeCount int `gorm:"column:practice_count;not null;default:0" json:"practice_count"`
	CorrectStreak int `gorm:"column:correct_streak;not null;default:0" json:"correct_streak"`

	LastUpdated time.Time `gorm:"column:last_updated;not null;default:now()" json:"last_updated"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (ConceptMasteryState) TableName() string { return "concept_mastery_state" }
