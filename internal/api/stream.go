package api

import (
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/talgya/starlane/internal/engine"
)

const (
	maxStreamConns  = 4
	streamCatchUp   = 50
	streamHeartbeat = 15 * time.Second
	streamWriteWait = 5 * time.Second
)

// streamHub tracks websocket event subscribers.
type streamHub struct {
	conns    int32
	limit    int32
	upgrader websocket.Upgrader
}

func newStreamHub(limit int) *streamHub {
	return &streamHub{
		limit: int32(limit),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// streamFrame is one message on the wire.
type streamFrame struct {
	Type  string        `json:"type"` // "event" or "heartbeat"
	Tick  uint64        `json:"tick"`
	Event *engine.Event `json:"event,omitempty"`
}

// handleStream upgrades to a websocket and pushes every new event.
// Requires the relay key (bearer header or token query parameter) and
// limits concurrent connections.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	if s.RelayKey == "" {
		http.Error(w, "streaming disabled (no relay key)", http.StatusForbidden)
		return
	}
	if !bearerMatches(r, s.RelayKey) && r.URL.Query().Get("token") != s.RelayKey {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	hub := s.streams
	current := atomic.AddInt32(&hub.conns, 1)
	defer atomic.AddInt32(&hub.conns, -1)
	if current > hub.limit {
		http.Error(w, "too many stream connections", http.StatusServiceUnavailable)
		return
	}

	conn, err := hub.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	ch, cancel := s.Sim.Subscribe()
	defer cancel()

	// Reader: only watches for the client going away.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	send := func(f streamFrame) bool {
		_ = conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
		return conn.WriteJSON(f) == nil
	}

	for _, e := range s.Sim.RecentEvents(streamCatchUp) {
		if !send(streamFrame{Type: "event", Tick: e.Tick, Event: &e}) {
			return
		}
	}
	slog.Info("stream client connected", "remote", r.RemoteAddr)

	heartbeat := time.NewTicker(streamHeartbeat)
	defer heartbeat.Stop()

	for {
		select {
		case e, ok := <-ch:
			if !ok {
				return
			}
			if !send(streamFrame{Type: "event", Tick: e.Tick, Event: &e}) {
				return
			}
		case <-heartbeat.C:
			if !send(streamFrame{Type: "heartbeat", Tick: s.Sim.CurrentTick()}) {
				return
			}
		case <-gone:
			slog.Info("stream client disconnected", "remote", r.RemoteAddr)
			return
		}
	}
}
