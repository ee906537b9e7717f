package service

import (
	"context"
	"errors"
	"net/url"
	"sort"
	"strings"

	"geoclash/internal/models"
)

// ErrUnsupportedGameMode is returned when no strategy is registered for the
// requested mode.
var ErrUnsupportedGameMode = errors.New("unsupported game mode")

// ErrCatalogIntegrity signals inconsistent reference data, such as a capital
// city that does not resolve to exactly one country. It is not recoverable at
// request time.
var ErrCatalogIntegrity = errors.New("catalog integrity violation")

// QuestionView is the client-facing shape of one question. Prompt carries
// the mode-specific cue: a flag image path, a country name, or a department
// number.
type QuestionView struct {
	Index  int    `json:"index"`
	Prompt string `json:"prompt"`

	// Remaining is the number of answers still expected, for multi-answer
	// questions. Single-answer questions report 1.
	Remaining int `json:"remaining"`
}

// EntityRef identifies the entity a judged question was about.
type EntityRef struct {
	Kind models.EntityKind `json:"kind"`
	ID   int64             `json:"id"`
}

// AnswerCheck is the outcome of evaluating one guess.
type AnswerCheck struct {
	// Entity is the subject of the judged question, nil for unknown
	// indexes.
	Entity *EntityRef
	// Known is false when the question index is not pending, for example
	// after the batch was replaced. Unknown guesses are not scored.
	Known bool

	Correct bool

	// Done reports whether the question is fully answered. Single-answer
	// questions are done after any guess; multi-answer questions only
	// once every expected answer was found.
	Done bool

	// Remaining answers still expected after this guess.
	Remaining int

	// Updated is the pending state to write back when the question is
	// not done, such as a capital question with answers still missing.
	Updated PendingQuestion
}

// CorrectAnswer is the reveal shown for a question the player gave up on.
type CorrectAnswer struct {
	Index        int    `json:"index"`
	Label        string `json:"label"`
	WikipediaURL string `json:"wikipedia_url"`
}

// GameStrategy implements the rules of one game mode: how questions are
// drawn and prompted, how guesses are judged and persisted, and how the
// expected answers are revealed.
type GameStrategy interface {
	Mode() models.GameMode

	// BuildQuestions draws the next batch for the session. Views are
	// numbered from startIndex and returned alongside the expected
	// answers to cache under the same indexes. lastQuestionID is the
	// identifier of the most recently asked question, used to avoid an
	// immediate repeat.
	BuildQuestions(ctx context.Context, userID int64, authenticated bool, prefs SessionPrefs, startIndex int, lastQuestionID string) ([]QuestionView, map[int]PendingQuestion, error)

	// CheckAnswer judges one guess against the pending question and, for
	// authenticated players, persists the attempt.
	CheckAnswer(ctx context.Context, userID int64, authenticated bool, pending PendingQuestion, guess string) (AnswerCheck, error)

	// CorrectAnswers renders the reveals for the given pending questions
	// in the session's language.
	CorrectAnswers(ctx context.Context, questions map[int]PendingQuestion, language string) ([]CorrectAnswer, error)
}

// singleAnswerCheck builds the check outcome for single-answer modes. A
// correct guess closes the question; a miss keeps it open so it can be
// retried or revealed later.
func singleAnswerCheck(kind models.EntityKind, pending PendingQuestion, correct bool) AnswerCheck {
	check := AnswerCheck{
		Entity:  &EntityRef{Kind: kind, ID: pending.EntityID},
		Known:   true,
		Correct: correct,
		Updated: pending,
	}
	if correct {
		check.Done = true
	} else {
		check.Remaining = 1
	}
	return check
}

// sortAnswers orders reveals by question index so the client can align them
// with the questions it displayed.
func sortAnswers(answers []CorrectAnswer) {
	sort.Slice(answers, func(i, j int) bool { return answers[i].Index < answers[j].Index })
}

// wikipediaURL builds the article link for a reveal label. French labels
// link to the French edition, everything else to the English one.
func wikipediaURL(label, language string) string {
	host := "en.wikipedia.org"
	if language == models.LanguageFR {
		host = "fr.wikipedia.org"
	}
	return "https://" + host + "/wiki/" + url.PathEscape(strings.ReplaceAll(label, " ", "_"))
}
