package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"geoclash/internal/logging"
	"geoclash/internal/models"
	"geoclash/internal/security"
	"geoclash/internal/service"
)

// GameHandler exposes the quiz game over a thin JSON API. The session is
// carried by a cookie; the first accept call establishes it.
type GameHandler struct {
	game   *service.GameService
	logger *logging.Logger
}

// NewGameHandler creates a new game handler
func NewGameHandler(game *service.GameService, logger *logging.Logger) *GameHandler {
	return &GameHandler{game: game, logger: logger}
}

type acceptRequest struct {
	Token      string   `json:"token"`
	Mode       string   `json:"mode"`
	Continents []string `json:"continents"`
	Language   string   `json:"language"`
}

type acceptResponse struct {
	Authenticated bool   `json:"authenticated"`
	SessionID     string `json:"session_id"`
}

// Accept starts a game for the caller's session, creating the session cookie
// when none exists yet.
func (h *GameHandler) Accept(w http.ResponseWriter, r *http.Request) {
	var req acceptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, h.logger, http.StatusBadRequest, "Invalid request body", "", err)
		return
	}
	if req.Token == "" {
		req.Token = bearerToken(r)
	}

	sessionID := h.ensureSession(w, r)
	authenticated, err := h.game.Accept(r.Context(), sessionID, req.Token, models.GameMode(req.Mode), req.Continents, req.Language)
	if errors.Is(err, service.ErrUnsupportedGameMode) {
		respondWithError(w, h.logger, http.StatusBadRequest, "Unsupported game mode", "", err)
		return
	}
	if err != nil {
		respondWithError(w, h.logger, http.StatusInternalServerError, "Failed to start game", "accept failed", err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, acceptResponse{
		Authenticated: authenticated,
		SessionID:     sessionID,
	})
}

// Questions returns the next question batch for the session.
func (h *GameHandler) Questions(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	batch, err := h.game.Questions(r.Context(), sessionID)
	if errors.Is(err, service.ErrSessionNotAccepted) {
		respondWithError(w, h.logger, http.StatusConflict, "Session has no active game", "", err)
		return
	}
	if err != nil {
		respondWithError(w, h.logger, http.StatusInternalServerError, "Failed to build questions", "question batch failed", err)
		return
	}
	respondJSON(w, h.logger, http.StatusOK, batch)
}

type answerRequest struct {
	Index int    `json:"index"`
	Value string `json:"value"`
}

// Answer judges one submitted answer.
func (h *GameHandler) Answer(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	var req answerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, h.logger, http.StatusBadRequest, "Invalid request body", "", err)
		return
	}

	result, err := h.game.SubmitAnswer(r.Context(), sessionID, req.Index, req.Value)
	if errors.Is(err, service.ErrSessionNotAccepted) {
		respondWithError(w, h.logger, http.StatusConflict, "Session has no active game", "", err)
		return
	}
	if err != nil {
		respondWithError(w, h.logger, http.StatusInternalServerError, "Failed to judge answer", "answer failed", err)
		return
	}
	respondJSON(w, h.logger, http.StatusOK, result)
}

// CorrectAnswers reveals the expected answers for the session's open
// questions.
func (h *GameHandler) CorrectAnswers(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	answers, err := h.game.CorrectAnswers(r.Context(), sessionID)
	if errors.Is(err, service.ErrSessionNotAccepted) {
		respondWithError(w, h.logger, http.StatusConflict, "Session has no active game", "", err)
		return
	}
	if err != nil {
		respondWithError(w, h.logger, http.StatusInternalServerError, "Failed to load answers", "reveal failed", err)
		return
	}
	respondJSON(w, h.logger, http.StatusOK, map[string]interface{}{"answers": answers})
}

// Quit drops the session's game state and the session cookie.
func (h *GameHandler) Quit(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(security.GameSessionCookie)
	if err != nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	if err := h.game.Clear(r.Context(), cookie.Value); err != nil {
		respondWithError(w, h.logger, http.StatusInternalServerError, "Failed to end game", "clear failed", err)
		return
	}
	http.SetCookie(w, security.CreateDeleteCookie(r, security.GameSessionCookie))
	w.WriteHeader(http.StatusNoContent)
}

// ensureSession returns the request's session id, minting a new one and
// setting the cookie when the request has none.
func (h *GameHandler) ensureSession(w http.ResponseWriter, r *http.Request) string {
	if cookie, err := r.Cookie(security.GameSessionCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	sessionID := security.GenerateSessionID()
	http.SetCookie(w, security.CreateSessionCookie(r, security.GameSessionCookie, sessionID, time.Now().Add(service.DefaultSessionTTL)))
	return sessionID
}

// sessionID reads the session cookie, responding with an error when it is
// missing.
func (h *GameHandler) sessionID(w http.ResponseWriter, r *http.Request) (string, bool) {
	cookie, err := r.Cookie(security.GameSessionCookie)
	if err != nil || cookie.Value == "" {
		respondWithError(w, h.logger, http.StatusUnauthorized, "No game session", "", nil)
		return "", false
	}
	return cookie.Value, true
}

// bearerToken extracts a bearer token from the Authorization header.
func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}
