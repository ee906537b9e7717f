package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"geoclash/internal/logging"
	"geoclash/internal/models"
	"geoclash/internal/repository"
	"geoclash/internal/validation"
)

// ErrSessionNotAccepted is returned when questions or answers arrive for a
// session that never went through Accept, or whose state expired.
var ErrSessionNotAccepted = errors.New("session not accepted")

// StreakResult is the outcome of the streak state machine after one answer.
type StreakResult struct {
	CurrentStreak int  `json:"current_streak"`
	GameOver      bool `json:"game_over"`

	// BestStreak is the player's persisted best, only present for
	// authenticated players.
	BestStreak *int `json:"best_streak,omitempty"`
}

// AnswerResult is the outcome of one submitted answer.
type AnswerResult struct {
	// Known is false for a stale or invalid question index. Unknown
	// answers are not judged and leave the streak untouched.
	Known     bool         `json:"known"`
	Correct   bool         `json:"correct"`
	Entity    *EntityRef   `json:"entity,omitempty"`
	Remaining int          `json:"remaining"`
	Streak    StreakResult `json:"streak"`
}

// QuestionBatch is a freshly drawn set of questions plus the reveals for
// questions from the previous batch the player never solved.
type QuestionBatch struct {
	Questions []QuestionView  `json:"questions"`
	Reveals   []CorrectAnswer `json:"reveals,omitempty"`
}

// GameService drives a quiz session end to end: accepting it, drawing
// question batches through the mode's strategy, judging answers, and running
// the streak state machine.
type GameService struct {
	registry *Registry
	sessions *SessionStore
	auth     *AuthService
	stats    *repository.StatsRepository
	logger   *logging.Logger
}

// NewGameService wires the game facade.
func NewGameService(registry *Registry, sessions *SessionStore, auth *AuthService, stats *repository.StatsRepository, logger *logging.Logger) *GameService {
	return &GameService{
		registry: registry,
		sessions: sessions,
		auth:     auth,
		stats:    stats,
		logger:   logger,
	}
}

// Accept starts a game for the session: it validates the mode, resolves the
// bearer token to a user when one is presented, and records the session's
// preferences. It returns whether the session is authenticated. A bad token
// is not an error; the session simply plays anonymously.
func (s *GameService) Accept(ctx context.Context, sessionID, token string, mode models.GameMode, continents []string, language string) (bool, error) {
	if _, err := s.registry.Get(mode); err != nil {
		return false, err
	}

	userID, authenticated, err := s.auth.Authenticate(ctx, token)
	if err != nil {
		return false, err
	}
	if authenticated {
		if err := s.sessions.BindUser(ctx, sessionID, userID); err != nil {
			return false, fmt.Errorf("failed to bind user to session: %w", err)
		}
	} else {
		// A re-accept without a valid token must not keep playing under
		// a binding from an earlier accept.
		if err := s.sessions.UnbindUser(ctx, sessionID); err != nil {
			return false, fmt.Errorf("failed to clear user binding: %w", err)
		}
	}

	prefs := SessionPrefs{
		Mode:       mode,
		Continents: validation.NormalizeContinents(continents),
		Language:   validation.NormalizeLanguage(language),
	}
	if err := s.sessions.SetPrefs(ctx, sessionID, prefs); err != nil {
		return false, fmt.Errorf("failed to store session preferences: %w", err)
	}
	if err := s.sessions.SetStreak(ctx, sessionID, 0); err != nil {
		return false, err
	}
	if err := s.sessions.SetQuestions(ctx, sessionID, map[int]PendingQuestion{}); err != nil {
		return false, err
	}

	s.logger.Info("session accepted",
		"session_id", sessionID,
		"mode", mode,
		"authenticated", authenticated,
		"continents", prefs.Continents,
		"language", prefs.Language)
	return authenticated, nil
}

// Questions draws the next batch for the session. Question numbering
// continues from the previous batch, and any question from that batch still
// unanswered is revealed alongside the new prompts. An exhausted pool yields
// an empty batch, never an error.
func (s *GameService) Questions(ctx context.Context, sessionID string) (QuestionBatch, error) {
	prefs, ok, err := s.sessions.Prefs(ctx, sessionID)
	if err != nil {
		return QuestionBatch{}, err
	}
	if !ok {
		return QuestionBatch{}, ErrSessionNotAccepted
	}
	strategy, err := s.registry.Get(prefs.Mode)
	if err != nil {
		return QuestionBatch{}, err
	}
	userID, authenticated, err := s.sessions.UserID(ctx, sessionID)
	if err != nil {
		return QuestionBatch{}, err
	}

	previous, err := s.sessions.Questions(ctx, sessionID)
	if err != nil {
		return QuestionBatch{}, err
	}
	startIndex, lastQuestionID := nextBatchPosition(previous)

	reveals, err := strategy.CorrectAnswers(ctx, previous, prefs.Language)
	if err != nil {
		return QuestionBatch{}, err
	}

	views, pending, err := strategy.BuildQuestions(ctx, userID, authenticated, prefs, startIndex, lastQuestionID)
	if err != nil {
		return QuestionBatch{}, err
	}
	if err := s.sessions.SetQuestions(ctx, sessionID, pending); err != nil {
		return QuestionBatch{}, fmt.Errorf("failed to cache question batch: %w", err)
	}

	return QuestionBatch{Questions: views, Reveals: reveals}, nil
}

// SubmitAnswer judges one guess and advances the streak state machine. A
// stale question index yields Known=false and changes nothing.
func (s *GameService) SubmitAnswer(ctx context.Context, sessionID string, index int, guess string) (AnswerResult, error) {
	prefs, ok, err := s.sessions.Prefs(ctx, sessionID)
	if err != nil {
		return AnswerResult{}, err
	}
	if !ok {
		return AnswerResult{}, ErrSessionNotAccepted
	}
	strategy, err := s.registry.Get(prefs.Mode)
	if err != nil {
		return AnswerResult{}, err
	}
	userID, authenticated, err := s.sessions.UserID(ctx, sessionID)
	if err != nil {
		return AnswerResult{}, err
	}

	questions, err := s.sessions.Questions(ctx, sessionID)
	if err != nil {
		return AnswerResult{}, err
	}
	pending, ok := questions[index]
	if !ok {
		streak, err := s.sessions.Streak(ctx, sessionID)
		if err != nil {
			return AnswerResult{}, err
		}
		return AnswerResult{Streak: StreakResult{CurrentStreak: streak}}, nil
	}

	check, err := strategy.CheckAnswer(ctx, userID, authenticated, pending, guess)
	if err != nil {
		return AnswerResult{}, err
	}

	if check.Done {
		delete(questions, index)
	} else {
		questions[index] = check.Updated
	}
	if err := s.sessions.SetQuestions(ctx, sessionID, questions); err != nil {
		return AnswerResult{}, err
	}

	streak, err := s.advanceStreak(ctx, sessionID, userID, authenticated, prefs.Mode, check)
	if err != nil {
		return AnswerResult{}, err
	}

	return AnswerResult{
		Known:     true,
		Correct:   check.Correct,
		Entity:    check.Entity,
		Remaining: check.Remaining,
		Streak:    streak,
	}, nil
}

// CorrectAnswers reveals the expected answers for every question still open
// in the session, for example when the player gives up or a challenge ends.
func (s *GameService) CorrectAnswers(ctx context.Context, sessionID string) ([]CorrectAnswer, error) {
	prefs, ok, err := s.sessions.Prefs(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrSessionNotAccepted
	}
	strategy, err := s.registry.Get(prefs.Mode)
	if err != nil {
		return nil, err
	}
	questions, err := s.sessions.Questions(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return strategy.CorrectAnswers(ctx, questions, prefs.Language)
}

// Clear drops the session's cached state. Sessions expire by TTL on their
// own; Clear just reclaims the keys early.
func (s *GameService) Clear(ctx context.Context, sessionID string) error {
	return s.sessions.Clear(ctx, sessionID)
}

// advanceStreak applies the streak transition for one judged answer. A fully
// correct answer extends the streak, a correct sub-answer of a multi-part
// question leaves it unchanged, and a miss resets it; in challenge mode a
// miss also ends the game. When an authenticated player's streak dies above
// their persisted best, the new best is recorded first.
func (s *GameService) advanceStreak(ctx context.Context, sessionID string, userID int64, authenticated bool, mode models.GameMode, check AnswerCheck) (StreakResult, error) {
	streak, err := s.sessions.Streak(ctx, sessionID)
	if err != nil {
		return StreakResult{}, err
	}

	result := StreakResult{CurrentStreak: streak}
	switch {
	case check.Correct && check.Remaining == 0:
		result.CurrentStreak = streak + 1
	case check.Correct:
		// Multi-part question still open.
	default:
		result.CurrentStreak = 0
		result.GameOver = mode.IsChallenge()
	}

	if authenticated {
		best, err := s.stats.BestStreak(ctx, userID, mode)
		if err != nil {
			return StreakResult{}, err
		}
		if !check.Correct && streak > best {
			if err := s.stats.RecordBestStreak(ctx, userID, mode, streak); err != nil {
				return StreakResult{}, err
			}
			best = streak
			s.logger.Info("new best streak",
				"user_id", userID,
				"mode", mode,
				"best_streak", best)
		}
		result.BestStreak = &best
	}

	if result.CurrentStreak != streak {
		if err := s.sessions.SetStreak(ctx, sessionID, result.CurrentStreak); err != nil {
			return StreakResult{}, err
		}
	}
	return result, nil
}

// nextBatchPosition derives where the next batch starts from the previous
// one: numbering continues after the highest cached index, and the entity at
// that index is the one to keep out of the next batch's first slot.
func nextBatchPosition(previous map[int]PendingQuestion) (startIndex int, lastQuestionID string) {
	startIndex = 1
	maxIndex := 0
	for index, pending := range previous {
		if index > maxIndex {
			maxIndex = index
			lastQuestionID = strconv.FormatInt(pending.EntityID, 10)
		}
		if index >= startIndex {
			startIndex = index + 1
		}
	}
	return startIndex, lastQuestionID
}
