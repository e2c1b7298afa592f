// Package server exposes the engagement dashboard HTTP API.
package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/caledonia-energy/engage-cli/internal/engine"
	"github.com/caledonia-energy/engage-cli/internal/store"
)

// Server handles the dashboard API over an engine and store.
type Server struct {
	engine        *engine.Engine
	store         store.Store
	targetSegment string
}

// New returns a Server. targetSegment is the default segment filter
// applied when requests don't specify one.
func New(eng *engine.Engine, st store.Store, targetSegment string) *Server {
	return &Server{engine: eng, store: st, targetSegment: targetSegment}
}

// Router builds the chi router with CORS open for the dashboard.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/health", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Get("/customers", s.handleCustomers)
		r.Post("/notifications/run", s.handleNotificationsRun)
		r.Get("/analysis", s.handleAnalysis)
		r.Get("/analysis/{customerID}", s.handleAnalysisOne)
		r.Get("/segments", s.handleSegments)
		r.Post("/send", s.handleSend)
	})
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// filterFromRequest applies the default segment unless the request
// overrides it; segment=all clears the filter.
func (s *Server) filterFromRequest(r *http.Request) store.Filter {
	segment := s.targetSegment
	if q := r.URL.Query().Get("segment"); q != "" {
		segment = q
		if q == "all" {
			segment = ""
		}
	}
	return store.Filter{Segment: segment}
}

func (s *Server) handleCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := s.store.ListCustomers(r.Context(), s.filterFromRequest(r))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load customers", err)
		return
	}
	respondJSON(w, http.StatusOK, customers)
}

func (s *Server) handleNotificationsRun(w http.ResponseWriter, r *http.Request) {
	filter := s.filterFromRequest(r)
	filter.OptedInOnly = true

	notifications, err := s.engine.Run(r.Context(), filter)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "notification batch failed", err)
		return
	}
	respondJSON(w, http.StatusOK, notifications)
}

func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	analyses, err := s.engine.AnalyseAll(r.Context(), s.filterFromRequest(r))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "analysis failed", err)
		return
	}
	respondJSON(w, http.StatusOK, analyses)
}

func (s *Server) handleAnalysisOne(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "customerID")
	analysis, err := s.engine.AnalyseOne(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		respondError(w, http.StatusNotFound, "customer not found", nil)
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "analysis failed", err)
		return
	}
	respondJSON(w, http.StatusOK, analysis)
}

func (s *Server) handleSegments(w http.ResponseWriter, r *http.Request) {
	segment := s.targetSegment
	if q := r.URL.Query().Get("segment"); q != "" {
		segment = q
	}
	stats, err := s.store.SegmentStats(r.Context(), segment)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load segment stats", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{segment: stats})
}

// handleSend simulates delivery: it validates the customer and echoes
// the send back without performing any real delivery.
func (s *Server) handleSend(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CustomerID string `json:"customer_id"`
		Channel    string `json:"channel"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	if req.CustomerID == "" {
		respondError(w, http.StatusBadRequest, "customer_id is required", nil)
		return
	}

	if _, err := s.store.GetCustomer(r.Context(), req.CustomerID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(w, http.StatusNotFound, "customer not found", nil)
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to load customer", err)
		return
	}

	if req.Channel == "" {
		req.Channel = "email"
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"status":      "sent",
		"customer_id": req.CustomerID,
		"channel":     req.Channel,
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
	})
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Error("failed to encode response", zap.Error(err))
	}
}

func respondError(w http.ResponseWriter, status int, msg string, err error) {
	if err != nil {
		zap.L().Error(msg, zap.Error(err))
	}
	respondJSON(w, status, map[string]string{"error": msg})
}
