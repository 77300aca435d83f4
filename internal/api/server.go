// Package api provides the HTTP API for observing and steering the sector.
// GET endpoints are public (read-only observation).
// POST endpoints require a bearer token (admin control plane).
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/paulmach/orb"

	"github.com/talgya/starlane/internal/agents"
	"github.com/talgya/starlane/internal/engine"
	"github.com/talgya/starlane/internal/persistence"
)

// Server serves the sector state over HTTP.
type Server struct {
	Sim      *engine.Simulation
	Eng      *engine.Engine
	DB       *persistence.DB
	Port     int
	Seed     int64
	AdminKey string // Bearer token for POST endpoints. Empty = POST disabled.
	RelayKey string // Bearer token for the stream endpoint. Empty = streaming disabled.

	// SnapshotDir receives zstd exports from POST /snapshot. Empty disables export.
	SnapshotDir string

	rulesLimiter *RateLimiter
	streams      *streamHub
}

// Handler builds the routing table.
func (s *Server) Handler() http.Handler {
	if s.rulesLimiter == nil {
		s.rulesLimiter = NewRateLimiter(60, time.Minute)
	}
	if s.streams == nil {
		s.streams = newStreamHub(maxStreamConns)
	}

	mux := http.NewServeMux()

	// Public endpoints (GET, read-only).
	mux.HandleFunc("/api/v1/status", s.handleStatus)
	mux.HandleFunc("/api/v1/agents", s.handleAgents)
	mux.HandleFunc("/api/v1/agent/", s.handleAgentRoutes)
	mux.HandleFunc("/api/v1/events", s.handleEvents)
	mux.HandleFunc("/api/v1/projectiles", s.handleProjectiles)

	// Event stream (websocket, relay key).
	mux.HandleFunc("/api/v1/stream", s.handleStream)

	// Admin endpoints (POST, require bearer token).
	mux.HandleFunc("/api/v1/speed", s.adminOnly(s.handleSpeed))
	mux.HandleFunc("/api/v1/snapshot", s.adminOnly(s.handleSnapshot))
	mux.HandleFunc("/api/v1/intervention", s.adminOnly(s.handleIntervention))

	return corsMiddleware(mux)
}

// Start begins serving the HTTP API in a goroutine.
func (s *Server) Start() *http.Server {
	addr := fmt.Sprintf(":%d", s.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	slog.Info("HTTP API starting", "addr", addr, "admin_auth", s.AdminKey != "", "relay_auth", s.RelayKey != "")

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server error", "error", err)
		}
	}()
	return srv
}

// corsMiddleware adds CORS headers for allowed frontend origins.
// Set CORS_ORIGINS to a comma-separated list of extra origins.
// Localhost dev servers are always allowed.
func corsMiddleware(next http.Handler) http.Handler {
	allowedOrigins := map[string]bool{
		"http://localhost:5173": true,
		"http://localhost:3000": true,
	}
	if env := os.Getenv("CORS_ORIGINS"); env != "" {
		for _, origin := range strings.Split(env, ",") {
			origin = strings.TrimSpace(origin)
			if origin != "" {
				allowedOrigins[origin] = true
			}
		}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func bearerMatches(r *http.Request, key string) bool {
	auth := r.Header.Get("Authorization")
	return key != "" && strings.HasPrefix(auth, "Bearer ") && strings.TrimPrefix(auth, "Bearer ") == key
}

// adminOnly wraps a handler to require bearer token auth on mutating requests.
// GET requests pass through (for endpoints that support both GET and POST).
func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost || r.Method == http.MethodPut {
			if s.AdminKey == "" {
				http.Error(w, "admin endpoints disabled (no SPACESIM_ADMIN_KEY set)", http.StatusForbidden)
				return
			}
			if !bearerMatches(r, s.AdminKey) {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
		}
		next(w, r)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	tick := s.Sim.CurrentTick()
	cfg := s.Sim.Config()
	status := map[string]any{
		"name":     "Starlane",
		"tick":     tick,
		"sim_time": engine.SimTime(tick, cfg.TickDuration()),
		"sector":   s.Sim.Sector.String(),
		"stats":    s.Sim.Status(),
	}
	if s.Eng != nil {
		status["speed"] = s.Eng.Speed()
	}
	writeJSON(w, status)
}

func (s *Server) handleAgents(w http.ResponseWriter, r *http.Request) {
	t := agents.AgentType(r.URL.Query().Get("type"))
	if t != "" && !t.Valid() {
		http.Error(w, "unknown agent type", http.StatusBadRequest)
		return
	}
	writeJSON(w, s.Sim.Agents(t))
}

// handleAgentRoutes serves /agent/:id and /agent/:id/rules.
func (s *Server) handleAgentRoutes(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	// api, v1, agent, :id[, rules]
	if len(parts) < 4 {
		http.Error(w, "missing agent id", http.StatusBadRequest)
		return
	}
	id, err := strconv.ParseUint(parts[3], 10, 64)
	if err != nil {
		http.Error(w, "invalid agent id", http.StatusBadRequest)
		return
	}

	view, err := s.Sim.View(agents.AgentID(id))
	if err != nil {
		http.Error(w, "agent not found", http.StatusNotFound)
		return
	}

	if len(parts) >= 5 && parts[4] == "rules" {
		if r.Method == http.MethodGet {
			writeJSON(w, view.Rules)
			return
		}
		rateLimited := RateLimitMiddleware(s.rulesLimiter, func(w http.ResponseWriter, r *http.Request) {
			s.handleSetRules(w, r, view.ID)
		})
		s.adminOnly(rateLimited)(w, r)
		return
	}

	writeJSON(w, view)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}
	var agentID agents.AgentID
	if a := r.URL.Query().Get("agent"); a != "" {
		n, err := strconv.ParseUint(a, 10, 64)
		if err != nil {
			http.Error(w, "invalid agent id", http.StatusBadRequest)
			return
		}
		agentID = agents.AgentID(n)
	}

	// Archived events come from the database.
	if r.URL.Query().Get("source") == "db" {
		if s.DB == nil {
			http.Error(w, "database not available", http.StatusServiceUnavailable)
			return
		}
		events, err := s.DB.RecentEvents(limit, agentID)
		if err != nil {
			slog.Error("event query failed", "error", err)
			http.Error(w, "query failed", http.StatusInternalServerError)
			return
		}
		writeJSON(w, events)
		return
	}

	events := s.Sim.RecentEvents(0)
	category := r.URL.Query().Get("category")
	if agentID != 0 || category != "" {
		filtered := events[:0]
		for _, e := range events {
			if agentID != 0 && e.Agent != agentID {
				continue
			}
			if category != "" && e.Category != category {
				continue
			}
			filtered = append(filtered, e)
		}
		events = filtered
	}

	start := 0
	if len(events) > limit {
		start = len(events) - limit
	}
	writeJSON(w, events[start:])
}

func (s *Server) handleProjectiles(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Sim.Projectiles())
}

func (s *Server) handleSpeed(w http.ResponseWriter, r *http.Request) {
	if s.Eng == nil {
		http.Error(w, "engine not available", http.StatusServiceUnavailable)
		return
	}
	if r.Method == http.MethodPost {
		var req struct {
			Speed float64 `json:"speed"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if req.Speed > 1000 {
			http.Error(w, "speed must be 0-1000", http.StatusBadRequest)
			return
		}
		if err := s.Eng.SetSpeed(req.Speed); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	writeJSON(w, map[string]float64{"speed": s.Eng.Speed()})
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.DB == nil && s.SnapshotDir == "" {
		http.Error(w, "no snapshot target configured", http.StatusServiceUnavailable)
		return
	}

	resp := map[string]any{"tick": s.Sim.CurrentTick()}
	if s.DB != nil {
		if err := s.DB.SaveWorldState(s.Sim); err != nil {
			slog.Error("snapshot save failed", "error", err)
			http.Error(w, "snapshot failed", http.StatusInternalServerError)
			return
		}
		resp["database"] = "saved"
	}
	if s.SnapshotDir != "" {
		snap := persistence.TakeSnapshot(s.Sim, s.Seed)
		path := filepath.Join(s.SnapshotDir, fmt.Sprintf("sector-%010d.zst", snap.Header.Tick))
		if err := persistence.WriteSnapshot(path, snap); err != nil {
			slog.Error("snapshot export failed", "path", path, "error", err)
			http.Error(w, "snapshot export failed", http.StatusInternalServerError)
			return
		}
		resp["file"] = path
	}

	writeJSON(w, resp)
}

func (s *Server) handleIntervention(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Type        string         `json:"type"`
		Agent       agents.AgentID `json:"agent,omitempty"`
		Amount      float64        `json:"amount,omitempty"`
		Source      string         `json:"source,omitempty"`
		AgentType   string         `json:"agent_type,omitempty"`
		Name        string         `json:"name,omitempty"`
		X           float64        `json:"x,omitempty"`
		Y           float64        `json:"y,omitempty"`
		Description string         `json:"description,omitempty"`
		Category    string         `json:"category,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	switch req.Type {
	case "damage":
		if req.Amount <= 0 {
			http.Error(w, "positive amount required for damage type", http.StatusBadRequest)
			return
		}
		if req.Source == "" {
			req.Source = "operator"
		}
		if err := s.Sim.ApplyDamage(req.Agent, req.Amount, req.Source); err != nil {
			writeEngineError(w, err)
			return
		}
		writeJSON(w, map[string]any{"success": true, "details": fmt.Sprintf("agent %d takes %.0f damage", req.Agent, req.Amount)})

	case "spawn":
		view, err := s.Sim.SpawnAgent(agents.AgentType(req.AgentType), req.Name, orb.Point{req.X, req.Y})
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeJSON(w, map[string]any{"success": true, "agent": view})

	case "destroy":
		if err := s.Sim.Destroy(req.Agent); err != nil {
			writeEngineError(w, err)
			return
		}
		writeJSON(w, map[string]any{"success": true, "details": fmt.Sprintf("agent %d destroyed at next tick", req.Agent)})

	case "event":
		if req.Description == "" {
			http.Error(w, "description required for event type", http.StatusBadRequest)
			return
		}
		s.Sim.Announce(req.Description, req.Category)
		writeJSON(w, map[string]any{"success": true, "details": "event injected"})

	default:
		http.Error(w, "unknown intervention type (use: damage, spawn, destroy, event)", http.StatusBadRequest)
	}
}

func writeEngineError(w http.ResponseWriter, err error) {
	if errors.Is(err, engine.ErrUnknownAgent) {
		http.Error(w, "agent not found", http.StatusNotFound)
		return
	}
	http.Error(w, err.Error(), http.StatusBadRequest)
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(data)
}
