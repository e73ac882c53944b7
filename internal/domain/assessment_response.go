package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AssessmentResponse stores one immutable row per graded assessment answer.
// This is the second evidence channel, independent of InteractionEvent, and
// the only one that can lower a mastery probability.
type AssessmentResponse struct {
	ID     uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;index:idx_assessment_user_time,priority:1" json:"user_id"`

	ItemID    string `gorm:"column:item_id;type:text;not null" json:"item_id"`
	ConceptID string `gorm:"column:concept_id;type:text;not null;index" json:"concept_id"`

	IsCorrect   bool `gorm:"column:is_correct;not null" json:"is_correct"`
	TimeSpentMs int  `gorm:"column:time_spent_ms;not null;default:0" json:"time_spent_ms"`

	OccurredAt time.Time `gorm:"column:occurred_at;not null;index:idx_assessment_user_time,priority:2" json:"occurred_at"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (AssessmentResponse) TableName() string { return "assessment_response" }
