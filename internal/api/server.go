// Package api provides the HTTP surface of the simulation service.
// GET endpoints are public (read-only observation); mutating endpoints that
// affect the service rather than a single run require a bearer token.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/openborders/nationsim/internal/archive"
	"github.com/openborders/nationsim/internal/entropy"
	"github.com/openborders/nationsim/internal/sim"
)

// Server serves sessions and run history over HTTP.
type Server struct {
	Manager  *sim.Manager
	Archive  *archive.DB // may be nil
	Port     int
	AdminKey string   // Bearer token for admin endpoints. Empty = disabled.
	Origins  []string // Extra CORS origins beyond localhost dev servers.
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// Origins are enforced by the CORS layer for the REST surface; the feed
	// carries no credentials and is read-only.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Router builds the chi handler tree.
func (s *Server) Router() http.Handler {
	createLimiter := NewRateLimiter(30, time.Hour)

	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: append([]string{
			"http://localhost:5173",
			"http://localhost:4173",
			"http://localhost:3000",
		}, s.Origins...),
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	}))

	r.Get("/api/v1/catalog", s.handleCatalog)
	r.Get("/api/v1/history", s.handleHistory)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1/sessions", func(r chi.Router) {
		r.Post("/", RateLimitMiddleware(createLimiter, s.handleCreate))

		r.Route("/{sessionID}", func(r chi.Router) {
			r.Get("/", s.withSession(s.handleState))
			r.Get("/events", s.withSession(s.handleEvents))
			r.Get("/stream", s.withSession(s.handleStream))
			r.Get("/ws", s.withSession(s.handleFeed))
			r.Get("/stats/history", s.withSession(s.handleStatsHistory))

			r.Post("/policies/{policyID}/toggle", s.withSession(s.handleToggle))
			r.Post("/pause", s.withSession(s.handlePause))
			r.Post("/restart", s.withSession(s.handleRestart))
			r.Post("/speed", s.adminOnly(s.withSession(s.handleSpeed)))
			r.Delete("/", s.handleDelete)
		})
	})

	return r
}

// Start begins serving the HTTP API in a goroutine.
func (s *Server) Start() {
	addr := fmt.Sprintf(":%d", s.Port)
	slog.Info("HTTP API starting", "addr", addr, "admin_auth", s.AdminKey != "")

	go func() {
		if err := http.ListenAndServe(addr, s.Router()); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()
}

type sessionHandler func(w http.ResponseWriter, r *http.Request, sess *sim.Session)

// withSession resolves the {sessionID} route parameter.
func (s *Server) withSession(next sessionHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "sessionID"))
		if err != nil {
			http.Error(w, "invalid session id", http.StatusBadRequest)
			return
		}
		sess, err := s.Manager.Get(id)
		if err != nil {
			http.Error(w, "session not found", http.StatusNotFound)
			return
		}
		next(w, r, sess)
	}
}

// adminOnly wraps a handler to require bearer token auth.
func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.AdminKey == "" {
			http.Error(w, "admin endpoints disabled (no NATIONSIM_ADMIN_KEY set)", http.StatusForbidden)
			return
		}
		auth := r.Header.Get("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") || strings.TrimPrefix(auth, "Bearer ") != s.AdminKey {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	type achievementInfo struct {
		ID    sim.AchievementID `json:"id"`
		Label string            `json:"label"`
	}
	var achs []achievementInfo
	for _, a := range sim.AchievementList() {
		achs = append(achs, achievementInfo{a.ID, a.Label})
	}

	writeJSON(w, map[string]any{
		"policies":     sim.Catalog(),
		"difficulties": sim.Profiles(),
		"achievements": achs,
	})
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Difficulty string `json:"difficulty"`
		Seed       int64  `json:"seed"`
	}
	if r.Body != nil {
		// An empty body means a default medium run.
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	d, err := sim.ParseDifficulty(req.Difficulty)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	seed := req.Seed
	if seed == 0 {
		seed = entropy.Seed()
	}

	sess, err := s.Manager.Create(d, seed)
	if err != nil {
		if errors.Is(err, sim.ErrTooManySessions) {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, map[string]any{
		"session_id": sess.ID,
		"seed":       sess.Seed,
		"state":      sess.StateSnapshot(),
	})
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request, sess *sim.Session) {
	writeJSON(w, map[string]any{
		"session_id": sess.ID,
		"seed":       sess.Seed,
		"state":      sess.StateSnapshot(),
	})
}

func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request, sess *sim.Session) {
	id := sim.PolicyID(chi.URLParam(r, "policyID"))

	err := sess.TogglePolicy(id)
	switch {
	case err == nil:
	case errors.Is(err, sim.ErrUnknownPolicy):
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	case errors.Is(err, sim.ErrInsufficientBudget), errors.Is(err, sim.ErrNotRunning):
		// Soft rejection: state unchanged.
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		writeJSON(w, map[string]any{
			"error": err.Error(),
			"state": sess.StateSnapshot(),
		})
		return
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]any{"state": sess.StateSnapshot()})
}

func (s *Server) handlePause(w http.ResponseWriter, r *http.Request, sess *sim.Session) {
	var req struct {
		Paused bool `json:"paused"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	sess.SetPaused(req.Paused)
	writeJSON(w, map[string]any{"state": sess.StateSnapshot()})
}

func (s *Server) handleRestart(w http.ResponseWriter, r *http.Request, sess *sim.Session) {
	sess.Restart()
	writeJSON(w, map[string]any{"state": sess.StateSnapshot()})
}

func (s *Server) handleSpeed(w http.ResponseWriter, r *http.Request, sess *sim.Session) {
	sched := sess.Scheduler()
	if sched == nil {
		http.Error(w, "session has no scheduler", http.StatusConflict)
		return
	}

	var req struct {
		Speed float64 `json:"speed"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if req.Speed < 0 || req.Speed > 100 {
		http.Error(w, "speed must be 0-100", http.StatusBadRequest)
		return
	}
	sched.SetSpeed(req.Speed)
	slog.Info("speed changed", "session", sess.ID, "speed", req.Speed)

	writeJSON(w, map[string]float64{"speed": sched.Speed()})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "sessionID"))
	if err != nil {
		http.Error(w, "invalid session id", http.StatusBadRequest)
		return
	}
	if err := s.Manager.Remove(id); err != nil {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request, sess *sim.Session) {
	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}
	writeJSON(w, sess.Events(limit))
}

func (s *Server) handleStatsHistory(w http.ResponseWriter, r *http.Request, sess *sim.Session) {
	if s.Archive == nil {
		http.Error(w, "archive not available", http.StatusServiceUnavailable)
		return
	}

	limit := 0
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil {
			limit = n
		}
	}

	rows, err := s.Archive.YearStats(sess.ID.String(), limit)
	if err != nil {
		slog.Error("stats history query failed", "error", err)
		writeJSON(w, []archive.StatsRow{})
		return
	}
	if rows == nil {
		rows = []archive.StatsRow{}
	}
	writeJSON(w, rows)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.Archive == nil {
		http.Error(w, "archive not available", http.StatusServiceUnavailable)
		return
	}

	limit := 0
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil {
			limit = n
		}
	}

	rows, err := s.Archive.RecentRuns(limit)
	if err != nil {
		slog.Error("run history query failed", "error", err)
		writeJSON(w, []archive.RunRow{})
		return
	}
	if rows == nil {
		rows = []archive.RunRow{}
	}
	writeJSON(w, rows)
}

// handleStream serves the event feed as SSE, with catch-up and heartbeat.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request, sess *sim.Session) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	subID, ch := sess.Subscribe()
	defer sess.Unsubscribe(subID)

	// Catch-up: replay the most recent events before going live.
	for _, e := range sess.Events(50) {
		writeSSEEvent(w, e)
	}
	flusher.Flush()

	slog.Info("SSE client connected", "session", sess.ID, "sub_id", subID)

	heartbeat := time.NewTicker(15 * time.Second)
	defer heartbeat.Stop()

	for {
		select {
		case e, ok := <-ch:
			if !ok {
				return
			}
			writeSSEEvent(w, e)
			flusher.Flush()
		case <-heartbeat.C:
			fmt.Fprintf(w, ": heartbeat\n\n")
			flusher.Flush()
		case <-r.Context().Done():
			slog.Info("SSE client disconnected", "session", sess.ID, "sub_id", subID)
			return
		}
	}
}

// handleFeed serves the same event feed over a websocket, for browser
// presentation layers that prefer a socket.
func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request, sess *sim.Session) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	subID, ch := sess.Subscribe()
	defer sess.Unsubscribe(subID)

	slog.Info("websocket client connected", "session", sess.ID, "sub_id", subID)

	// Reader goroutine: drain control frames, detect close.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for _, e := range sess.Events(50) {
		if err := conn.WriteJSON(e); err != nil {
			return
		}
	}

	ping := time.NewTicker(30 * time.Second)
	defer ping.Stop()

	for {
		select {
		case e, ok := <-ch:
			if !ok {
				return
			}
			if err := conn.WriteJSON(e); err != nil {
				return
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second)); err != nil {
				return
			}
		case <-done:
			slog.Info("websocket client disconnected", "session", sess.ID, "sub_id", subID)
			return
		}
	}
}

func writeSSEEvent(w http.ResponseWriter, e sim.Event) {
	data, err := json.Marshal(e)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", e.Kind, data)
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(data)
}
