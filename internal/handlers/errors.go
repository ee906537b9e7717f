package handlers

import (
	"encoding/json"
	"net/http"

	"geoclash/internal/logging"
)

// respondWithError logs the underlying error and sends a JSON error body.
// userMsg is what the client sees; logMsg gives the log line more context.
func respondWithError(w http.ResponseWriter, logger *logging.Logger, status int, userMsg, logMsg string, err error) {
	if err != nil {
		if logMsg == "" {
			logMsg = userMsg
		}
		logger.Error(logMsg, "error", err)
	}

	respondJSON(w, logger, status, map[string]string{"error": userMsg})
}

// respondJSON writes a JSON response with the given status.
func respondJSON(w http.ResponseWriter, logger *logging.Logger, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error("failed to encode response", "error", err)
	}
}
