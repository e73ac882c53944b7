package mastery

import (
	"github.com/lumenlearn/mastery-engine/internal/config"
	"github.com/lumenlearn/mastery-engine/internal/domain"
)

// Per-type base evidence weights for the passive channel.
var baseWeights = map[string]float64{
	domain.InteractionViewed:     0.02,
	domain.InteractionClicked:    0.03,
	domain.InteractionCompleted:  0.15,
	domain.InteractionBookmarked: 0.05,
	domain.InteractionShared:     0.08,
	domain.InteractionRated:      0.05,
}

var difficultyMultipliers = map[string]float64{
	domain.DifficultyBeginner:     0.8,
	domain.DifficultyIntermediate: 1.0,
	domain.DifficultyAdvanced:     1.3,
	domain.DifficultyExpert:       1.5,
}

const (
	// Hard cap on a single passive increment, regardless of inputs.
	maxPassiveIncrement = 0.2
	// Increments at or above this classify the concept as known for the
	// passive channel; below it, learning.
	knownIncrement = 0.1
)

// Delta is the pure output of one evidence computation. It carries no
// bookkeeping; the commit path owns clamping, counters, and timestamps.
type Delta struct {
	Increment float64
	// Known reports the passive channel's classification for this
	// application. Only a known classification extends the correct streak.
	Known bool
}

// BaseWeight exposes the per-type evidence weight. The preference profile
// builder reuses the same table so both consumers weight behavior alike.
func BaseWeight(interactionType string) float64 {
	return baseWeights[interactionType]
}

// InteractionDelta computes the passive-channel heuristic increment:
// base_weight × (completion/100) × difficulty_multiplier, capped at 0.2.
// Unknown types yield a zero increment; unknown difficulties multiply by 1.
func InteractionDelta(interactionType, difficulty string, completionPct float64) Delta {
	base := baseWeights[interactionType]
	if base == 0 {
		return Delta{}
	}
	if completionPct < 0 {
		completionPct = 0
	}
	if completionPct > 100 {
		completionPct = 100
	}
	mult, ok := difficultyMultipliers[difficulty]
	if !ok {
		mult = 1.0
	}

	inc := base * (completionPct / 100.0) * mult
	if inc > maxPassiveIncrement {
		inc = maxPassiveIncrement
	}
	return Delta{
		Increment: inc,
		Known:     inc >= knownIncrement,
	}
}

// BKTUpdate computes the active-channel posterior from a graded answer
// under Bayesian Knowledge Tracing, then applies the learning transition.
// It is the only evidence computation that can return a value below the
// prior. Output is in [0,1] for any prior in [0,1] and valid parameters.
func BKTUpdate(prior float64, correct bool, p config.BKTParams) float64 {
	if prior < 0 {
		prior = 0
	}
	if prior > 1 {
		prior = 1
	}

	var posterior float64
	if correct {
		num := prior * (1 - p.Slip)
		den := num + (1-prior)*p.Guess
		if den == 0 {
			posterior = prior
		} else {
			posterior = num / den
		}
	} else {
		num := prior * p.Slip
		den := num + (1-prior)*(1-p.Guess)
		if den == 0 {
			posterior = prior
		} else {
			posterior = num / den
		}
	}

	return posterior + (1-posterior)*p.Learn
}
