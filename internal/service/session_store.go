package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"geoclash/internal/cache"
	"geoclash/internal/models"
)

// SessionPrefs are recorded when a session is accepted and reused for every
// later question batch.
type SessionPrefs struct {
	Mode       models.GameMode `json:"mode"`
	Continents []string        `json:"continents,omitempty"`
	Language   string          `json:"language"`
}

// PendingQuestion is the cached expected answer for one question index.
// Exactly one of Code or CityIDs is set, depending on the mode.
type PendingQuestion struct {
	// EntityID is the database id of the asked country or department,
	// used to persist guesses for authenticated players.
	EntityID int64 `json:"entity_id"`

	// Code is the expected identifier for single-answer modes (country
	// iso2 code or department name).
	Code string `json:"code,omitempty"`

	// CityIDs are the valid capital city ids for multi-answer capital
	// questions; FoundIDs tracks which of them were already guessed.
	CityIDs  []int64 `json:"city_ids,omitempty"`
	FoundIDs []int64 `json:"found_ids,omitempty"`
}

// SessionStore keeps the per-session game state in the shared cache, one key
// per concern. Every read re-arms the session's sliding TTL, so an active
// session never expires mid-play; an idle one disappears on its own.
type SessionStore struct {
	cache cache.Cache
	ttl   time.Duration
}

// DefaultSessionTTL is the sliding lifetime of session keys when the
// configuration does not override it.
const DefaultSessionTTL = 24 * time.Hour

// NewSessionStore creates a session store on the given cache. A zero ttl
// falls back to DefaultSessionTTL.
func NewSessionStore(c cache.Cache, ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionStore{cache: c, ttl: ttl}
}

func userKey(sessionID string) string      { return "sess:" + sessionID + ":user" }
func streakKey(sessionID string) string    { return "sess:" + sessionID + ":streak" }
func questionsKey(sessionID string) string { return "sess:" + sessionID + ":questions" }
func prefsKey(sessionID string) string     { return "sess:" + sessionID + ":prefs" }

// BindUser caches the authenticated user for the session.
func (s *SessionStore) BindUser(ctx context.Context, sessionID string, userID int64) error {
	return s.cache.Set(ctx, userKey(sessionID), strconv.FormatInt(userID, 10), s.ttl)
}

// UserID returns the user bound to the session, or false for anonymous
// sessions.
func (s *SessionStore) UserID(ctx context.Context, sessionID string) (int64, bool, error) {
	raw, ok, err := s.cache.Get(ctx, userKey(sessionID))
	if err != nil || !ok {
		return 0, false, err
	}
	userID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("corrupt user binding for session %s: %w", sessionID, err)
	}
	return userID, true, nil
}

// UnbindUser drops the session's user binding, returning it to anonymous
// play.
func (s *SessionStore) UnbindUser(ctx context.Context, sessionID string) error {
	return s.cache.Delete(ctx, userKey(sessionID))
}

// SetPrefs records the accept-time preferences.
func (s *SessionStore) SetPrefs(ctx context.Context, sessionID string, prefs SessionPrefs) error {
	return s.setJSON(ctx, prefsKey(sessionID), prefs)
}

// Prefs returns the accept-time preferences, or false when the session has
// none (never accepted, or expired).
func (s *SessionStore) Prefs(ctx context.Context, sessionID string) (SessionPrefs, bool, error) {
	var prefs SessionPrefs
	ok, err := s.getJSON(ctx, prefsKey(sessionID), &prefs)
	return prefs, ok, err
}

// SetQuestions stores the pending expected answers keyed by question index.
func (s *SessionStore) SetQuestions(ctx context.Context, sessionID string, questions map[int]PendingQuestion) error {
	return s.setJSON(ctx, questionsKey(sessionID), questions)
}

// Questions returns the pending expected answers. A session with no cached
// batch returns an empty map.
func (s *SessionStore) Questions(ctx context.Context, sessionID string) (map[int]PendingQuestion, error) {
	questions := map[int]PendingQuestion{}
	if _, err := s.getJSON(ctx, questionsKey(sessionID), &questions); err != nil {
		return nil, err
	}
	return questions, nil
}

// SetStreak stores the session's current streak.
func (s *SessionStore) SetStreak(ctx context.Context, sessionID string, streak int) error {
	return s.cache.Set(ctx, streakKey(sessionID), strconv.Itoa(streak), s.ttl)
}

// Streak returns the session's current streak, 0 when unset.
func (s *SessionStore) Streak(ctx context.Context, sessionID string) (int, error) {
	raw, ok, err := s.cache.Get(ctx, streakKey(sessionID))
	if err != nil || !ok {
		return 0, err
	}
	streak, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("corrupt streak for session %s: %w", sessionID, err)
	}
	return streak, nil
}

// Clear drops all session keys. Sessions also die by TTL, so Clear is an
// optimization for explicit logout-equivalent events, not a correctness
// requirement.
func (s *SessionStore) Clear(ctx context.Context, sessionID string) error {
	for _, key := range []string{
		userKey(sessionID),
		streakKey(sessionID),
		questionsKey(sessionID),
		prefsKey(sessionID),
	} {
		if err := s.cache.Delete(ctx, key); err != nil {
			return err
		}
	}
	return nil
}

func (s *SessionStore) setJSON(ctx context.Context, key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	return s.cache.Set(ctx, key, string(raw), s.ttl)
}

func (s *SessionStore) getJSON(ctx context.Context, key string, target interface{}) (bool, error) {
	raw, ok, err := s.cache.Get(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal([]byte(raw), target); err != nil {
		return false, fmt.Errorf("corrupt cache entry %s: %w", key, err)
	}
	return true, nil
}
