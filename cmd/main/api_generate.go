package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/CTAG07/Trickchain/pkg/markov"
	"github.com/CTAG07/Trickchain/pkg/workspace"
)

// GenerateAPI holds the dependencies for the generation API handlers.
type GenerateAPI struct {
	ws     *workspace.Workspace
	cm     *ConfigManager
	logger *slog.Logger
}

// NewGenerateAPI creates a new instance of the GenerateAPI.
func NewGenerateAPI(ws *workspace.Workspace, cm *ConfigManager, logger *slog.Logger) *GenerateAPI {
	return &GenerateAPI{
		ws:     ws,
		cm:     cm,
		logger: logger,
	}
}

// RegisterRoutes sets up the routing for all /api/generate endpoints.
func (g *GenerateAPI) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/generate", g.handleGenerate)
	mux.HandleFunc("/api/generate/random", g.handleGenerateRandom)
}

// ExhaustedResponse is returned with 404 when no sequence was found. It keeps
// the seed so the failed request can be repeated.
type ExhaustedResponse struct {
	Error    string `json:"error"`
	Attempts int    `json:"attempts"`
	Seed     uint64 `json:"seed"`
	Start    string `json:"start,omitempty"`
	End      string `json:"end,omitempty"`
	Warning  string `json:"warning,omitempty"`
}

// decodeRequest reads a generation request and fills in the configured
// defaults. An empty body is a request with every default.
func (g *GenerateAPI) decodeRequest(r *http.Request) (workspace.GenerateRequest, error) {
	var req workspace.GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		return req, errors.New("invalid JSON request body")
	}

	cfg := g.cm.Get().Generation
	if req.MaxLength == 0 {
		req.MaxLength = cfg.DefaultMaxLength
	}
	if req.MaxLength < cfg.MinLength || req.MaxLength > cfg.MaxLength {
		return req, fmt.Errorf("maxLength must be between %d and %d", cfg.MinLength, cfg.MaxLength)
	}
	if req.MaxAttempts == 0 {
		req.MaxAttempts = cfg.MaxAttempts
	}
	if req.MaxAttempts < 1 {
		return req, markov.ErrInvalidAttempts
	}
	if req.TopK < 0 {
		return req, errors.New("topK must not be negative")
	}
	return req, nil
}

// handleGenerate samples a sequence between optional start and end tricks.
func (g *GenerateAPI) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}
	req, err := g.decodeRequest(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	gen, err := g.ws.Generate(r.Context(), req)
	g.respond(w, gen, err)
}

// handleGenerateRandom samples a sequence from a random trick to one of the
// preset finishing tricks.
func (g *GenerateAPI) handleGenerateRandom(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}
	req, err := g.decodeRequest(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	gen, err := g.ws.GenerateRandom(r.Context(), g.cm.Get().Generation.PresetEndTokens, req)
	g.respond(w, gen, err)
}

func (g *GenerateAPI) respond(w http.ResponseWriter, gen workspace.Generation, err error) {
	switch {
	case err == nil:
		respondWithJSON(w, http.StatusOK, gen)
	case errors.Is(err, markov.ErrGenerationExhausted):
		respondWithJSON(w, http.StatusNotFound, ExhaustedResponse{
			Error:    "No valid order could be generated with the given conditions",
			Attempts: gen.Attempts,
			Seed:     gen.Seed,
			Start:    gen.Start,
			End:      gen.End,
			Warning:  gen.Warning,
		})
	default:
		respondWithWorkspaceError(w, g.logger, "generate sequence", err)
	}
}
