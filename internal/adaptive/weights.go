// Package adaptive implements the spaced-repetition question scheduler.
//
// Every scheduling call recomputes, per candidate entity, a failure score
// (recency-weighted error rate) and a forgetting score (retention decay since
// the last guess), combines them into a question weight, and draws the next
// question pack by weighted random selection. Weights are derived values and
// are never stored.
package adaptive

import (
	"math"
	"time"

	"geoclash/internal/models"
)

const (
	// DecayConstant controls how fast old guesses stop influencing the
	// failure score, in minutes.
	DecayConstant = 4000.0

	// DefaultFailureScore and DefaultForgettingScore are the mid-scale
	// scores used for entities with no guess history: neither due nor safe.
	DefaultFailureScore    = 70.0
	DefaultForgettingScore = 70.0

	// WeightFloor keeps every entity mathematically selectable.
	WeightFloor = 1e-4

	retentionC = 1.84
	retentionP = 1.25
)

// FailureScore returns a score in [0, 100] where higher means the user fails
// this entity more often. Recent mistakes dominate; mistakes older than a few
// decay constants barely register. An empty history returns the default.
func FailureScore(guesses []models.Guess, now time.Time) float64 {
	if len(guesses) == 0 {
		return DefaultFailureScore
	}

	var totalWeight, failureWeight float64
	for _, guess := range guesses {
		minutesAgo := now.Sub(guess.CreatedAt).Minutes()
		weight := math.Exp(-minutesAgo / DecayConstant)

		if !guess.IsCorrect {
			failureWeight += weight
		}
		totalWeight += weight
	}

	// Guesses old enough underflow the decay weight to zero. A history
	// with no weight left carries no signal, same as an empty one.
	if totalWeight == 0 {
		return DefaultFailureScore
	}

	score := (failureWeight / totalWeight) * 100
	return math.Min(score, 100)
}

// ForgettingScore returns a score in [0, 100] where higher means the entity
// is more likely forgotten. The score grows with the time elapsed since the
// last guess. A nil last guess returns the default.
func ForgettingScore(lastGuess *models.Guess, now time.Time) float64 {
	if lastGuess == nil {
		return DefaultForgettingScore
	}

	tMinutes := math.Max(now.Sub(lastGuess.CreatedAt).Minutes(), 1)

	retention := (100 * retentionC) / (math.Pow(math.Log10(tMinutes), retentionP) + retentionC)

	return math.Min(100-retention, 100)
}

// QuestionWeight combines the failure and forgetting scores into a selection
// weight, clamped to the floor so no entity becomes unselectable.
func QuestionWeight(failureScore, forgettingScore float64) float64 {
	weight := (failureScore*0.7 + forgettingScore*0.4) / 100
	return math.Max(weight, WeightFloor)
}

// DefaultWeight is the weight of an entity without any score record yet.
func DefaultWeight() float64 {
	return QuestionWeight(DefaultFailureScore, DefaultForgettingScore)
}
