// Package scoring layers a personalization boost on top of the base
// relevance scores supplied by the content-discovery collaborator. All
// component calculations live here so they can be calibrated in one place.
package scoring

import (
	"github.com/lumenlearn/mastery-engine/internal/config"
	"github.com/lumenlearn/mastery-engine/internal/domain"
)

// FormatMatch returns 1 when the candidate's format is one of the learner's
// preferred formats, 0 otherwise.
func FormatMatch(format string, preferred []string) float64 {
	for _, p := range preferred {
		if p == format {
			return 1
		}
	}
	return 0
}

// masteryRank buckets an average mastery level onto the difficulty scale so
// it can be compared against content difficulty bands.
func masteryRank(avgMastery float64) int {
	switch {
	case avgMastery < 0.25:
		return 0
	case avgMastery < 0.5:
		return 1
	case avgMastery < 0.75:
		return 2
	default:
		return 3
	}
}

// DifficultyFit scores how well content difficulty sits in the learner's
// zone of proximal development: one band above current mastery is ideal,
// matching difficulty is good, and content far above or below scores low.
//
// avgMastery is the learner's mean mastery over the candidate's resolved
// concepts (zero when none resolved).
func DifficultyFit(difficulty string, avgMastery float64) float64 {
	diff := domain.DifficultyRank(difficulty) - masteryRank(avgMastery)
	switch {
	case diff == 1:
		return 1.0
	case diff == 0:
		return 0.7
	case diff == -1:
		return 0.4
	case diff >= 2:
		return 0.2
	default:
		return 0.1
	}
}

// TopicInterest returns the fraction of the candidate's normalized tags
// that appear in the learner's inferred knowledge areas.
func TopicInterest(normTags []string, areas map[string]float64) float64 {
	if len(normTags) == 0 || len(areas) == 0 {
		return 0
	}
	hits := 0
	for _, tag := range normTags {
		if _, ok := areas[tag]; ok {
			hits++
		}
	}
	return float64(hits) / float64(len(normTags))
}

// Goal mastery below this marks a genuine knowledge gap worth the full
// component score.
const gapMasteryCutoff = 0.5

// KnowledgeGapRelevance scores a candidate by how directly it fills a
// declared goal. A goal concept the learner has not yet reached the cutoff
// on scores 1; a goal concept above the cutoff scores the remaining gap; no
// goal concept scores 0.
func KnowledgeGapRelevance(conceptIDs []string, goals map[string]struct{}, mastery map[string]float64) float64 {
	best := 0.0
	for _, id := range conceptIDs {
		if _, ok := goals[id]; !ok {
			continue
		}
		score := 1.0
		if m := mastery[id]; m >= gapMasteryCutoff {
			score = 1.0 - m
		}
		if score > best {
			best = score
		}
	}
	return best
}

// Boost composes the weighted components into the additive boost.
func Boost(w config.ScoringWeights, formatMatch, difficultyFit, topicInterest, gapRelevance float64) float64 {
	return w.FormatMatch*formatMatch +
		w.DifficultyFit*difficultyFit +
		w.TopicInterest*topicInterest +
		w.KnowledgeGapRelevance*gapRelevance
}
