package models

import "strings"

// GameMode identifies an (entity kind, sub-mode) pair. The values double as
// stable database identifiers, so they must never be renamed.
type GameMode string

const (
	GameModeCountryFlagTraining  GameMode = "GCFF_TRAINING_INFINITE"
	GameModeCountryFlagChallenge GameMode = "GCFF_CHALLENGE_COMBO"
	GameModeCapitalTraining      GameMode = "GCFC_TRAINING_INFINITE"
	GameModeCapitalChallenge     GameMode = "GCFC_CHALLENGE_COMBO"
	GameModeDepartmentTraining   GameMode = "GDFN_TRAINING_INFINITE"
	GameModeDepartmentChallenge  GameMode = "GDFN_CHALLENGE_COMBO"
)

// AllGameModes lists every supported game mode.
var AllGameModes = []GameMode{
	GameModeCountryFlagTraining,
	GameModeCountryFlagChallenge,
	GameModeCapitalTraining,
	GameModeCapitalChallenge,
	GameModeDepartmentTraining,
	GameModeDepartmentChallenge,
}

// IsChallenge reports whether the mode is a one-pass challenge (first mistake
// ends the game).
func (m GameMode) IsChallenge() bool {
	return strings.Contains(string(m), "CHALLENGE")
}

// IsTraining reports whether the mode is a repeatable training stream.
func (m GameMode) IsTraining() bool {
	return strings.Contains(string(m), "TRAINING")
}

// Valid reports whether the mode is one of the supported identifiers.
func (m GameMode) Valid() bool {
	for _, known := range AllGameModes {
		if m == known {
			return true
		}
	}
	return false
}
