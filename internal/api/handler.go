package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/lifestream-app/lifestream/internal/biz/domain"
	"github.com/lifestream-app/lifestream/internal/biz/usecase"
	"github.com/lifestream-app/lifestream/internal/logging"
	"github.com/lifestream-app/lifestream/internal/service"
)

// Server provides the local HTTP JSON API over the LifeStream service
type Server struct {
	svc    *service.LifeStreamService
	server *http.Server
	port   int
}

// NewServer creates a new API server
func NewServer(svc *service.LifeStreamService, port int) *Server {
	return &Server{
		svc:  svc,
		port: port,
	}
}

// Handler builds the route table
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Messages
	mux.HandleFunc("/api/messages", s.handleMessages)

	// Statistics
	mux.HandleFunc("/api/stats", s.handleStats)
	mux.HandleFunc("/api/insights", s.handleInsights)
	mux.HandleFunc("/api/activities", s.handleActivities)

	// Goal management
	mux.HandleFunc("/api/goals", s.handleGoals)
	mux.HandleFunc("/api/goals/", s.handleGoalItem)

	// Metrics
	mux.Handle("/metrics", s.svc.Metrics().Handler())

	// Health check
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	return mux
}

// Start starts the HTTP server and blocks until it stops
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:    fmt.Sprintf("127.0.0.1:%d", s.port),
		Handler: s.Handler(),
	}

	logging.For("API").Infof("Starting HTTP server on port %d", s.port)
	err := s.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

// GetPort returns the server port
func (s *Server) GetPort() int {
	return s.port
}

// ============ Message Handlers ============

// MessageRequest is the body of POST /api/messages
type MessageRequest struct {
	Text string `json:"text"`
}

func (s *Server) handleMessages(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req MessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	result, err := s.svc.HandleMessage(r.Context(), req.Text)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, result)
}

// ============ Statistics Handlers ============

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	eng := s.svc.Engagement()
	level, next := domain.LevelFor(eng.TotalPoints)
	s.writeJSON(w, map[string]interface{}{
		"engagement": eng,
		"level":      level,
		"nextLevel":  next,
	})
}

func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	days, err := daysParam(r, 7)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.writeJSON(w, s.svc.Summary(days))
}

func (s *Server) handleActivities(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	days, err := daysParam(r, 7)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	activities := s.svc.Activities(days)
	if activities == nil {
		activities = []domain.Activity{}
	}
	s.writeJSON(w, map[string]interface{}{"activities": activities, "days": days})
}

// daysParam parses ?days=N; 0 means all history
func daysParam(r *http.Request, fallback int) (int, error) {
	raw := r.URL.Query().Get("days")
	if raw == "" {
		return fallback, nil
	}
	days, err := strconv.Atoi(raw)
	if err != nil || days < 0 {
		return 0, fmt.Errorf("days must be a non-negative integer")
	}
	return days, nil
}

// ============ Goal Handlers ============

// GoalRequest is the body of POST /api/goals
type GoalRequest struct {
	Title      string  `json:"title"`
	Category   string  `json:"category"`
	Target     float64 `json:"target"`
	Unit       string  `json:"unit"`
	Period     string  `json:"period"`
	Difficulty string  `json:"difficulty"`
}

// ToInput converts to the usecase goal input
func (g GoalRequest) ToInput() usecase.GoalInput {
	return usecase.GoalInput{
		Title:      g.Title,
		Category:   domain.Category(g.Category),
		Target:     g.Target,
		Unit:       g.Unit,
		Period:     g.Period,
		Difficulty: domain.Difficulty(g.Difficulty),
	}
}

func (s *Server) handleGoals(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		all := r.URL.Query().Get("all") == "true"
		goals := s.svc.Goals(all)
		if goals == nil {
			goals = []usecase.GoalView{}
		}
		s.writeJSON(w, map[string]interface{}{"goals": goals})

	case http.MethodPost:
		var req GoalRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		goal, err := s.svc.CreateGoal(req.ToInput())
		if err != nil {
			s.writeError(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(goal)

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleGoalItem(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/api/goals/")
	if id == "" || strings.Contains(id, "/") {
		http.Error(w, "goal id is required", http.StatusBadRequest)
		return
	}
	if err := s.svc.RemoveGoal(id); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, map[string]interface{}{"success": true})
}

// ============ Helpers ============

func (s *Server) writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, usecase.ErrGoalNotFound):
		status = http.StatusNotFound
	case errors.Is(err, usecase.ErrInvalidGoal):
		status = http.StatusBadRequest
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
