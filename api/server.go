package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"spot-advisor/core/engine"
	"spot-advisor/internal/errors"
	"spot-advisor/internal/logging"
	"spot-advisor/internal/metrics"
)

// Advisor is the engine surface the API depends on.
type Advisor interface {
	ListSpotSKUs(ctx context.Context, q engine.ListQuery) (*engine.ListResult, error)
	Recommend(ctx context.Context, q engine.RecommendQuery) (*engine.RecommendResult, error)
}

// Server is the API server
type Server struct {
	advisor Advisor
	mux     *http.ServeMux
	version string
}

// NewServer creates a new API server
func NewServer(version string, advisor Advisor) *Server {
	s := &Server{
		advisor: advisor,
		mux:     http.NewServeMux(),
		version: version,
	}
	s.registerRoutes()
	return s
}

// registerRoutes registers all API routes
func (s *Server) registerRoutes() {
	// Core endpoints
	s.mux.HandleFunc("GET /v1/spot-skus", s.instrument("spot_skus", s.handleListSKUs))
	s.mux.HandleFunc("GET /v1/spot-recommendations", s.instrument("spot_recommendations", s.handleRecommendations))

	// Supporting endpoints
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /version", s.handleVersion)
}

// handleListSKUs handles GET /v1/spot-skus
func (s *Server) handleListSKUs(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	requestID := requestIDFrom(w)

	q, err := parseListQuery(r.URL.Query())
	if err != nil {
		s.writeErrorFor(w, err)
		return
	}

	result, err := s.advisor.ListSpotSKUs(r.Context(), q)
	if err != nil {
		s.writeErrorFor(w, err)
		return
	}

	s.writeJSON(w, ListResponse{
		Items: result.Items,
		Metadata: ResponseMetadata{
			RequestID:  requestID,
			Region:     q.Region,
			Count:      len(result.Items),
			Total:      result.Total,
			Warnings:   result.Warnings,
			DurationMs: time.Since(start).Milliseconds(),
		},
	}, http.StatusOK)
}

// handleRecommendations handles GET /v1/spot-recommendations
func (s *Server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	requestID := requestIDFrom(w)

	q, err := parseRecommendQuery(r.URL.Query())
	if err != nil {
		s.writeErrorFor(w, err)
		return
	}

	result, err := s.advisor.Recommend(r.Context(), q)
	if err != nil {
		s.writeErrorFor(w, err)
		return
	}

	s.writeJSON(w, RecommendationsResponse{
		Recommendations: result.Recommendations,
		Metadata: ResponseMetadata{
			RequestID:  requestID,
			Region:     q.Region,
			Count:      len(result.Recommendations),
			Message:    result.Message,
			Warnings:   result.Warnings,
			DurationMs: time.Since(start).Milliseconds(),
		},
	}, http.StatusOK)
}

// handleHealth handles GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]interface{}{
		"status":  "healthy",
		"version": s.version,
		"time":    time.Now().UTC().Format(time.RFC3339),
	}, http.StatusOK)
}

// handleVersion handles GET /version
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]string{
		"version":     s.version,
		"engine":      "spot-advisor",
		"api_version": "v1",
	}, http.StatusOK)
}

// instrument wraps a handler with request logging and metrics.
func (s *Server) instrument(endpoint string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		rec.Header().Set("X-Request-ID", uuid.NewString())

		next(rec, r)

		elapsed := time.Since(start)
		metrics.ObserveRequest(endpoint, strconv.Itoa(rec.status), elapsed)
		logging.Info("request completed",
			zap.String("endpoint", endpoint),
			zap.String("request_id", rec.Header().Get("X-Request-ID")),
			zap.Int("status", rec.status),
			zap.Duration("elapsed", elapsed),
		)
	}
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func requestIDFrom(w http.ResponseWriter) string {
	if id := w.Header().Get("X-Request-ID"); id != "" {
		return id
	}
	return uuid.NewString()
}

func (s *Server) writeJSON(w http.ResponseWriter, data interface{}, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (s *Server) writeError(w http.ResponseWriter, code, message string, status int) {
	s.writeJSON(w, map[string]interface{}{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	}, status)
}

// writeErrorFor maps the error taxonomy onto HTTP statuses.
func (s *Server) writeErrorFor(w http.ResponseWriter, err error) {
	errType := errors.TypeOf(err)

	status := http.StatusInternalServerError
	switch errType {
	case errors.TypeInput:
		status = http.StatusBadRequest
	case errors.TypeNotFound:
		status = http.StatusNotFound
	}

	message := err.Error()
	if typed, ok := err.(*errors.Error); ok {
		message = typed.Message
	}

	if status >= http.StatusInternalServerError {
		logging.Error("request failed", zap.String("type", string(errType)), zap.Error(err))
	}
	s.writeError(w, string(errType), message, status)
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}
