package handlers

import (
	"net/http"

	"geoclash/internal/logging"
	"geoclash/internal/service"
	"geoclash/internal/validation"
)

// FlagHandler serves flag asset lookups from the in-memory flag store.
type FlagHandler struct {
	flags  *service.FlagStore
	logger *logging.Logger
}

// NewFlagHandler creates a new flag handler
func NewFlagHandler(flags *service.FlagStore, logger *logging.Logger) *FlagHandler {
	return &FlagHandler{flags: flags, logger: logger}
}

type flagResponse struct {
	ISO2Code string `json:"iso2_code"`
	Path     string `json:"path"`
}

// Get returns the flag asset path for an iso2 code.
func (h *FlagHandler) Get(w http.ResponseWriter, r *http.Request) {
	iso2Code := validation.NormalizeCode(r.PathValue("iso2"))
	path, ok := h.flags.Path(iso2Code)
	if !ok {
		respondWithError(w, h.logger, http.StatusNotFound, "Unknown country code", "", nil)
		return
	}
	respondJSON(w, h.logger, http.StatusOK, flagResponse{ISO2Code: iso2Code, Path: path})
}

// Reload refreshes the flag store from the catalog.
func (h *FlagHandler) Reload(w http.ResponseWriter, r *http.Request) {
	if err := h.flags.Reload(r.Context()); err != nil {
		respondWithError(w, h.logger, http.StatusInternalServerError, "Failed to reload flags", "flag reload failed", err)
		return
	}
	respondJSON(w, h.logger, http.StatusOK, map[string]int{"flags": h.flags.Len()})
}
