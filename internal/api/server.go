// Package api exposes the agent over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"orchestrateiq/internal/common/config"
	"orchestrateiq/internal/common/logger"
	"orchestrateiq/internal/models"
	"orchestrateiq/internal/orchestrate"
)

// Agent is the orchestrator surface the API serves.
type Agent interface {
	ProcessQuery(ctx context.Context, req models.QueryRequest) (*models.QueryResponse, error)
	Dashboard(sector string) (*models.DashboardData, error)
	Sectors() []models.Sector
	Health() models.HealthResponse
}

// Server hosts the HTTP API.
type Server struct {
	cfg    config.ServerConfig
	agent  Agent
	logger logger.Logger
	srv    *http.Server
}

func NewServer(cfg config.ServerConfig, agent Agent, log logger.Logger) *Server {
	s := &Server{
		cfg:    cfg,
		agent:  agent,
		logger: log.WithFields(map[string]interface{}{"component": "api"}),
	}
	s.srv = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      s.Router(),
		ReadTimeout:  config.GetDuration(cfg.ReadTimeout),
		WriteTimeout: config.GetDuration(cfg.WriteTimeout),
	}
	return s
}

// Router builds the full handler chain including CORS.
func (s *Server) Router() http.Handler {
	r := mux.NewRouter()

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/query", s.handleQuery).Methods(http.MethodPost)
	api.HandleFunc("/dashboard/{sector}", s.handleDashboard).Methods(http.MethodGet)
	api.HandleFunc("/sectors", s.handleSectors).Methods(http.MethodGet)
	api.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	origins := s.cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	})
	return c.Handler(r)
}

// Start serves until the listener fails or Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("http server starting", map[string]interface{}{"addr": s.srv.Addr})
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests within the configured timeout.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, config.GetDuration(s.cfg.ShutdownTimeout))
	defer cancel()
	return s.srv.Shutdown(ctx)
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req models.QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		s.writeError(w, http.StatusBadRequest, "query must not be empty")
		return
	}

	resp, err := s.agent.ProcessQuery(r.Context(), req)
	if err != nil {
		s.logger.WithError(err).Error("query processing failed", map[string]interface{}{
			"query": req.Query,
		})
		s.writeError(w, http.StatusInternalServerError, "query processing failed")
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	sector := mux.Vars(r)["sector"]

	data, err := s.agent.Dashboard(sector)
	if err != nil {
		if errors.Is(err, orchestrate.ErrUnknownSector) {
			s.writeError(w, http.StatusNotFound, fmt.Sprintf("unknown sector: %s", sector))
			return
		}
		s.logger.WithError(err).Error("dashboard lookup failed", map[string]interface{}{
			"sector": sector,
		})
		s.writeError(w, http.StatusInternalServerError, "dashboard lookup failed")
		return
	}
	s.writeJSON(w, http.StatusOK, data)
}

func (s *Server) handleSectors(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"sectors": s.agent.Sectors(),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.agent.Health())
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.WithError(err).Error("response encoding failed", nil)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}
