package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Interaction types accepted by the ingestion surface.
const (
	InteractionViewed     = "viewed"
	InteractionClicked    = "clicked"
	InteractionCompleted  = "completed"
	InteractionBookmarked = "bookmarked"
	InteractionShared     = "shared"
	InteractionRated      = "rated"
)

// Content difficulty bands, ordered easiest to hardest.
const (
	DifficultyBeginner     = "beginner"
	DifficultyIntermediate = "intermediate"
	DifficultyAdvanced     = "advanced"
	DifficultyExpert       = "expert"
)

func ValidInteractionType(t string) bool {
	switch t {
	case InteractionViewed, InteractionClicked, InteractionCompleted,
		InteractionBookmarked, InteractionShared, InteractionRated:
		return true
	}
	return false
}

func ValidDifficulty(d string) bool {
	switch d {
	case DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced, DifficultyExpert:
		return true
	}
	return false
}

// DifficultyRank orders difficulty bands for fit comparisons. Unknown bands
// rank as intermediate.
func DifficultyRank(d string) int {
	switch d {
	case DifficultyBeginner:
		return 0
	case DifficultyIntermediate:
		return 1
	case DifficultyAdvanced:
		return 2
	case DifficultyExpert:
		return 3
	}
	return 1
}

// InteractionEvent stores one immutable row per recorded learner interaction.
// The engine never updates or deletes these rows.
type InteractionEvent struct {
	ID     uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;index:idx_interaction_user_time,priority:1" json:"user_id"`

	ContentID       string `gorm:"column:content_id;type:text;not null" json:"content_id"`
	InteractionType string `gorm:"column:interaction_type;type:text;not null;index" json:"interaction_type"`

	ContentTags       datatypes.JSON `gorm:"column:content_tags;type:jsonb" json:"content_tags"`
	ContentFormat     string         `gorm:"column:content_format;type:text" json:"content_format,omitempty"`
	ContentDifficulty string         `gorm:"column:content_difficulty;type:text" json:"content_difficulty"`

	DurationSeconds      int      `gorm:"column:duration_seconds;not null;default:0" json:"duration_seconds"`
	CompletionPercentage float64  `gorm:"column:completion_percentage;not null;default:0" json:"completion_percentage"`
	Rating               *float64 `gorm:"column:rating" json:"rating,omitempty"`

	OccurredAt time.Time `gorm:"column:occurred_at;not null;index:idx_interaction_user_time,priority:2" json:"occurred_at"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (InteractionEvent) TableName() string { return "interaction_event" }
