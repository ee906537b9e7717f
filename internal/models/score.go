package models

import "time"

// EntityKind distinguishes which catalog a score record refers to.
type EntityKind string

const (
	EntityKindCountry    EntityKind = "country"
	EntityKindDepartment EntityKind = "department"
)

// Guess is a single recorded answer. Guesses are immutable once created.
type Guess struct {
	ID        int64
	ScoreID   int64
	CreatedAt time.Time
	IsCorrect bool
}

// ScoreRecord aggregates the guess history of one user for one entity in one
// game mode. Exactly one record exists per (user, entity kind, entity, mode);
// the database enforces the uniqueness.
type ScoreRecord struct {
	ID         int64
	UserID     int64
	EntityKind EntityKind
	EntityID   int64
	GameMode   GameMode
	CreatedAt  time.Time
	UpdatedAt  time.Time
	Guesses    []Guess // ordered by creation time
}

// LastGuess returns the most recent guess, or nil when there is none.
func (s *ScoreRecord) LastGuess() *Guess {
	if len(s.Guesses) == 0 {
		return nil
	}
	last := &s.Guesses[0]
	for i := range s.Guesses {
		if s.Guesses[i].CreatedAt.After(last.CreatedAt) {
			last = &s.Guesses[i]
		}
	}
	return last
}
