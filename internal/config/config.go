package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/lumenlearn/mastery-engine/internal/platform/logger"
)

// BKTParams are the Bayesian Knowledge Tracing rates for one skill.
type BKTParams struct {
	Learn float64 `yaml:"learn"` // P(T): transition to mastered after practice
	Slip  float64 `yaml:"slip"`  // P(S): wrong answer despite mastery
	Guess float64 `yaml:"guess"` // P(G): right answer without mastery
}

// ScoringWeights are the boost component weights for the personalization
// scorer. They are additive on top of the base relevance score.
type ScoringWeights struct {
	FormatMatch           float64 `yaml:"format_match"`
	DifficultyFit         float64 `yaml:"difficulty_fit"`
	TopicInterest         float64 `yaml:"topic_interest"`
	KnowledgeGapRelevance float64 `yaml:"knowledge_gap_relevance"`
}

// Engine is the tunable parameter set for the mastery engine. Everything has
// a code default equal to the product's calibrated values; a YAML file can
// override any subset.
type Engine struct {
	BKT BKTParams `yaml:"bkt"`
	// BKTBySkill overrides the default rates for individual concepts.
	BKTBySkill map[string]BKTParams `yaml:"bkt_by_skill"`

	Scoring ScoringWeights `yaml:"scoring"`

	// ProfileWindowDays is the rolling interaction window for profile builds.
	ProfileWindowDays int `yaml:"profile_window_days"`
}

func Default() *Engine {
	return &Engine{
		BKT: BKTParams{
			Learn: 0.2,
			Slip:  0.1,
			Guess: 0.2,
		},
		BKTBySkill: map[string]BKTParams{},
		Scoring: ScoringWeights{
			FormatMatch:           0.2,
			DifficultyFit:         0.3,
			TopicInterest:         0.2,
			KnowledgeGapRelevance: 0.3,
		},
		ProfileWindowDays: 30,
	}
}

// ParamsFor returns the BKT rates for a concept, falling back to the default
// set when no per-skill override exists.
func (e *Engine) ParamsFor(conceptID string) BKTParams {
	if e == nil {
		return Default().BKT
	}
	if p, ok := e.BKTBySkill[strings.TrimSpace(conceptID)]; ok {
		return p
	}
	return e.BKT
}

// Load reads the tuning file at path and merges it over the defaults.
// A missing or unreadable file is not fatal: the defaults are returned and a
// warning logged, so the engine always starts with a sane parameter set.
func Load(path string, log *logger.Logger) *Engine {
	cfg := Default()
	if strings.TrimSpace(path) == "" {
		return cfg
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if log != nil {
			log.Warn("engine tuning file unreadable, using defaults", "path", path, "error", err)
		}
		return cfg
	}
	var override Engine
	if err := yaml.Unmarshal(data, &override); err != nil {
		if log != nil {
			log.Warn("engine tuning file invalid, using defaults", "path", path, "error", err)
		}
		return cfg
	}
	merge(cfg, &override)
	if err := cfg.Validate(); err != nil {
		if log != nil {
			log.Warn("engine tuning rejected, using defaults", "path", path, "error", err)
		}
		return Default()
	}
	if log != nil {
		log.Info("engine tuning loaded", "path", path)
	}
	return cfg
}

// merge applies non-zero override values onto base, allowing partial files.
func merge(base, override *Engine) {
	if override.BKT.Learn != 0 {
		base.BKT.Learn = override.BKT.Learn
	}
	if override.BKT.Slip != 0 {
		base.BKT.Slip = override.BKT.Slip
	}
	if override.BKT.Guess != 0 {
		base.BKT.Guess = override.BKT.Guess
	}
	for skill, p := range override.BKTBySkill {
		base.BKTBySkill[strings.TrimSpace(skill)] = p
	}
	if override.Scoring.FormatMatch != 0 {
		base.Scoring.FormatMatch = override.Scoring.FormatMatch
	}
	if override.Scoring.DifficultyFit != 0 {
		base.Scoring.DifficultyFit = override.Scoring.DifficultyFit
	}
	if override.Scoring.TopicInterest != 0 {
		base.Scoring.TopicInterest = override.Scoring.TopicInterest
	}
	if override.Scoring.KnowledgeGapRelevance != 0 {
		base.Scoring.KnowledgeGapRelevance = override.Scoring.KnowledgeGapRelevance
	}
	if override.ProfileWindowDays != 0 {
		base.ProfileWindowDays = override.ProfileWindowDays
	}
}

func (e *Engine) Validate() error {
	check := func(name string, p BKTParams) error {
		if p.Learn <= 0 || p.Learn >= 1 {
			return fmt.Errorf("%s: learn rate %v outside (0,1)", name, p.Learn)
		}
		if p.Slip <= 0 || p.Slip >= 0.5 {
			return fmt.Errorf("%s: slip rate %v outside (0,0.5)", name, p.Slip)
		}
		if p.Guess <= 0 || p.Guess >= 0.5 {
			return fmt.Errorf("%s: guess rate %v outside (0,0.5)", name, p.Guess)
		}
		return nil
	}
	if err := check("bkt", e.BKT); err != nil {
		return err
	}
	for skill, p := range e.BKTBySkill {
		if err := check("bkt_by_skill."+skill, p); err != nil {
			return err
		}
	}
	if e.ProfileWindowDays < 1 {
		return fmt.Errorf("profile_window_days %d must be >= 1", e.ProfileWindowDays)
	}
	return nil
}
