package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// PreferenceProfile is the behaviorally inferred preference record for one
// learner. One row per user. When AutoEvolve is false the persisted row is
// authoritative and the builder leaves it untouched.
type PreferenceProfile struct {
	ID     uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`

	PreferredFormats    datatypes.JSON `gorm:"column:preferred_formats;type:jsonb" json:"preferred_formats"`   // top-3 []string
	PreferredDifficulty string         `gorm:"column:preferred_difficulty;type:text" json:"preferred_difficulty"`
	AvailableTimeDaily  int            `gorm:"column:available_time_daily;not null;default:0" json:"available_time_daily"` // minutes

	KnowledgeAreas datatypes.JSON `gorm:"column:knowledge_areas;type:jsonb" json:"knowledge_areas"` // map[concept]level
	GoalConcepts   datatypes.JSON `gorm:"column:goal_concepts;type:jsonb" json:"goal_concepts"`     // []string declared goals

	AutoEvolve bool `gorm:"column:auto_evolve;not null;default:true" json:"auto_evolve"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (PreferenceProfile) TableName() string { return "preference_profile" }
