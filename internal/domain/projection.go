package domain

import "github.com/google/uuid"

// Concept progress statuses for the learning-path projection.
const (
	StatusNotStarted = "not_started"
	StatusInProgress = "in_progress"
	StatusMastered   = "mastered"
)

// ConceptProgress is one concept's slice of a learning-path projection.
type ConceptProgress struct {
	Name         string  `json:"name"`
	Status       string  `json:"status"`
	MasteryLevel float64 `json:"mastery_level"`
	TimeSpent    int     `json:"time_spent"`    // seconds, summed from the interaction log
	ContentCount int     `json:"content_count"` // distinct content items touched
}

// LearningPathProgress is a transient projection over ConceptMasteryState.
// It is never a source of truth and is always safe to recompute from scratch.
type LearningPathProgress struct {
	ThreadID        string            `json:"thread_id"`
	Concepts        []ConceptProgress `json:"concepts"`
	OverallProgress float64           `json:"overall_progress"` // 0..100
}

// ContentCandidate is a read-only search candidate supplied by the
// content-discovery collaborator with its base relevance already computed.
type ContentCandidate struct {
	ID                 string   `json:"id"`
	Tags               []string `json:"tags"`
	Format             string   `json:"format"`
	Difficulty         string   `json:"difficulty"`
	DurationMinutes    int      `json:"duration_minutes"`
	BaseRelevanceScore float64  `json:"base_relevance_score"`
}

// ScoredCandidate is a candidate annotated with its personalization boost.
// FinalScore is additive over the base score so the base ranking scale is
// preserved.
type ScoredCandidate struct {
	ContentCandidate
	PersonalizationBoost float64 `json:"personalization_boost"`
	FinalScore           float64 `json:"final_score"`
	EstimatedTime        int     `json:"estimated_time"` // minutes
}

// IngestResult reports what an accepted interaction touched.
type IngestResult struct {
	Accepted        bool     `json:"accepted"`
	ConceptsUpdated []string `json:"concepts_updated"`
}

// AssessmentResult reports a BKT update applied for one concept.
type AssessmentResult struct {
	UserID        uuid.UUID `json:"user_id"`
	Concept       string    `json:"concept"`
	MasteryBefore float64   `json:"mastery_before"`
	MasteryAfter  float64   `json:"mastery_after"`
}
