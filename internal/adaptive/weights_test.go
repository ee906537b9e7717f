package adaptive

import (
	"math"
	"testing"
	"time"

	"geoclash/internal/models"
)

func guessAt(now time.Time, age time.Duration, correct bool) models.Guess {
	return models.Guess{CreatedAt: now.Add(-age), IsCorrect: correct}
}

func TestFailureScoreEmptyHistory(t *testing.T) {
	score := FailureScore(nil, time.Now())
	if score != DefaultFailureScore {
		t.Errorf("FailureScore(empty) = %v, want %v", score, DefaultFailureScore)
	}
}

func TestFailureScoreRange(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name    string
		guesses []models.Guess
	}{
		{
			name:    "all correct",
			guesses: []models.Guess{guessAt(now, time.Minute, true), guessAt(now, time.Hour, true)},
		},
		{
			name:    "all incorrect",
			guesses: []models.Guess{guessAt(now, time.Minute, false), guessAt(now, time.Hour, false)},
		},
		{
			name: "mixed history",
			guesses: []models.Guess{
				guessAt(now, time.Minute, false),
				guessAt(now, 2*time.Hour, true),
				guessAt(now, 48*time.Hour, false),
				guessAt(now, 30*24*time.Hour, true),
			},
		},
		{
			name:    "very old guesses",
			guesses: []models.Guess{guessAt(now, 365*24*time.Hour, false)},
		},
		{
			// Old enough that the decay weight underflows to zero.
			name:    "decade old guesses",
			guesses: []models.Guess{guessAt(now, 10*365*24*time.Hour, false)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score := FailureScore(tt.guesses, now)
			if math.IsNaN(score) || score < 0 || score > 100 {
				t.Errorf("FailureScore() = %v, want value in [0, 100]", score)
			}
		})
	}
}

func TestFailureScoreAncientHistoryIsDefault(t *testing.T) {
	now := time.Now()

	// Every decay weight underflows to zero, leaving no usable signal.
	guesses := []models.Guess{
		guessAt(now, 10*365*24*time.Hour, false),
		guessAt(now, 12*365*24*time.Hour, true),
	}

	if score := FailureScore(guesses, now); score != DefaultFailureScore {
		t.Errorf("FailureScore(ancient history) = %v, want %v", score, DefaultFailureScore)
	}
}

func TestFailureScoreAllCorrectIsZero(t *testing.T) {
	now := time.Now()
	guesses := []models.Guess{guessAt(now, time.Minute, true), guessAt(now, time.Hour, true)}

	if score := FailureScore(guesses, now); score != 0 {
		t.Errorf("FailureScore(all correct) = %v, want 0", score)
	}
}

func TestFailureScoreRecentMistakesDominate(t *testing.T) {
	now := time.Now()

	// One recent mistake among old successes weighs more than one old
	// mistake among recent successes.
	recentMistake := []models.Guess{
		guessAt(now, time.Minute, false),
		guessAt(now, 60*24*time.Hour, true),
		guessAt(now, 61*24*time.Hour, true),
	}
	oldMistake := []models.Guess{
		guessAt(now, 60*24*time.Hour, false),
		guessAt(now, time.Minute, true),
		guessAt(now, 2*time.Minute, true),
	}

	recent := FailureScore(recentMistake, now)
	old := FailureScore(oldMistake, now)
	if recent <= old {
		t.Errorf("recent mistake score %v should exceed old mistake score %v", recent, old)
	}
}

func TestForgettingScoreNoHistory(t *testing.T) {
	score := ForgettingScore(nil, time.Now())
	if score != DefaultForgettingScore {
		t.Errorf("ForgettingScore(nil) = %v, want %v", score, DefaultForgettingScore)
	}
}

func TestForgettingScoreMonotonic(t *testing.T) {
	now := time.Now()

	ages := []time.Duration{
		time.Minute,
		time.Hour,
		24 * time.Hour,
		7 * 24 * time.Hour,
		180 * 24 * time.Hour,
	}

	previous := -1.0
	for _, age := range ages {
		guess := guessAt(now, age, true)
		score := ForgettingScore(&guess, now)
		if score < 0 || score > 100 {
			t.Fatalf("ForgettingScore(age %v) = %v, want value in [0, 100]", age, score)
		}
		if score <= previous {
			t.Errorf("ForgettingScore(age %v) = %v, want > %v (monotonic in elapsed time)", age, score, previous)
		}
		previous = score
	}
}

func TestQuestionWeightFloor(t *testing.T) {
	if weight := QuestionWeight(0, 0); weight != WeightFloor {
		t.Errorf("QuestionWeight(0, 0) = %v, want floor %v", weight, WeightFloor)
	}
}

func TestDefaultWeight(t *testing.T) {
	// (70*0.7 + 70*0.4) / 100 = 0.77
	if weight := DefaultWeight(); math.Abs(weight-0.77) > 1e-9 {
		t.Errorf("DefaultWeight() = %v, want 0.77", weight)
	}
}
