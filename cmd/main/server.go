package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/CTAG07/Trickchain/pkg/corpus"
	"github.com/CTAG07/Trickchain/pkg/store"
	"github.com/CTAG07/Trickchain/pkg/workspace"
)

type Server struct {
	cm           *ConfigManager
	db           *sql.DB
	store        *store.Store
	ws           *workspace.Workspace
	logger       *slog.Logger
	corpusAPI    *CorpusAPI
	modelAPI     *ModelAPI
	generateAPI  *GenerateAPI
	analyticsAPI *AnalyticsAPI
	serverAPI    *ServerAPI
	apiMux       *http.ServeMux
}

func NewServer(cm *ConfigManager, logger *slog.Logger, db *sql.DB, actionChan chan string) (*Server, error) {
	config := cm.Get()

	st, err := store.NewStore(db)
	if err != nil {
		return nil, fmt.Errorf("error creating corpus store: %w", err)
	}
	st.SetLogger(logger)

	// The manifest is optional, uploaded corpora work without one.
	var manifest *corpus.Manifest
	if _, err = os.Stat(config.Server.ManifestPath); err == nil {
		manifest, err = corpus.LoadManifest(config.Server.ManifestPath)
		if err != nil {
			st.Close()
			return nil, err
		}
		logger.Info("Loaded corpus manifest", "path", config.Server.ManifestPath, "corpora", len(manifest.Corpora))
	} else {
		logger.Warn("No corpus manifest found, only uploaded corpora are available", "path", config.Server.ManifestPath)
	}

	ws := workspace.New(manifest, st)
	ws.SetLogger(logger)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if config.Server.DefaultCorpus != "" {
		_, err = ws.Select(ctx, config.Server.DefaultCorpus)
	} else {
		_, err = ws.SelectDefault(ctx)
	}
	if err != nil {
		// A broken corpus should not keep the API from starting; another one can be selected.
		logger.Error("Failed to select the initial corpus", "error", err)
	}

	// create object, register routes to the mux, and return it
	server := &Server{
		cm:           cm,
		db:           db,
		store:        st,
		ws:           ws,
		logger:       logger,
		corpusAPI:    NewCorpusAPI(ws, logger),
		modelAPI:     NewModelAPI(ws, logger),
		generateAPI:  NewGenerateAPI(ws, cm, logger),
		analyticsAPI: NewAnalyticsAPI(ws, cm, logger),
		serverAPI:    NewServerAPI(cm, ws, actionChan, logger),
		apiMux:       http.NewServeMux(),
	}

	server.corpusAPI.RegisterRoutes(server.apiMux)
	server.modelAPI.RegisterRoutes(server.apiMux)
	server.generateAPI.RegisterRoutes(server.apiMux)
	server.analyticsAPI.RegisterRoutes(server.apiMux)
	server.serverAPI.RegisterRoutes(server.apiMux)
	server.apiMux.HandleFunc("/", handleNotFound)

	return server, nil
}

// Handler returns the API handler wrapped in request logging.
func (s *Server) Handler() http.Handler {
	return s.logRequests(s.apiMux)
}

// Close releases the prepared statements of the store. The database itself
// is owned by the caller.
func (s *Server) Close() {
	s.store.Close()
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Debug("Handled request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}

func handleNotFound(w http.ResponseWriter, _ *http.Request) {
	respondWithError(w, http.StatusNotFound, "Not found")
}

// serve runs srv until it is shut down.
func serve(srv *http.Server, logger *slog.Logger) {
	logger.Info("Starting api server", "address", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Api server failed", "error", err)
	}
}
