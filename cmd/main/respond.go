package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/CTAG07/Trickchain/pkg/corpus"
	"github.com/CTAG07/Trickchain/pkg/markov"
	"github.com/CTAG07/Trickchain/pkg/workspace"
)

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if payload != nil {
		err := json.NewEncoder(w).Encode(payload)
		if err != nil {
			fmt.Printf("ERROR: Failed to encode JSON response: %v\n", err)
		}
	}
}

// statusFor maps an error from the workspace onto an HTTP status code.
// Exhausted generation is an ordinary "nothing found" answer.
func statusFor(err error) int {
	var mismatch *corpus.LabelMismatchError
	switch {
	case errors.Is(err, markov.ErrGenerationExhausted),
		errors.Is(err, workspace.ErrUnknownCorpus):
		return http.StatusNotFound
	case errors.Is(err, workspace.ErrNoSelection),
		errors.Is(err, workspace.ErrManifestCorpus):
		return http.StatusConflict
	case errors.Is(err, markov.ErrInvalidLength),
		errors.Is(err, markov.ErrInvalidAttempts),
		errors.As(err, &mismatch):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// respondWithWorkspaceError writes err with the status from statusFor.
// Server-side failures are logged, client errors are not.
func respondWithWorkspaceError(w http.ResponseWriter, logger *slog.Logger, action string, err error) {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		logger.Error("Failed to "+action, "error", err)
		respondWithError(w, code, fmt.Sprintf("Failed to %s: %v", action, err))
		return
	}
	respondWithError(w, code, err.Error())
}

// queryInt reads an optional non-negative integer query parameter.
func queryInt(r *http.Request, name string, fallback int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("query parameter %q must be a non-negative integer", name)
	}
	return v, nil
}

// allowMethod rejects the request with 405 unless it uses method.
func allowMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		w.Header().Set("Allow", method)
		respondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return false
	}
	return true
}
