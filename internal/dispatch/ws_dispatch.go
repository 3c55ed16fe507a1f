package dispatch

import (
	"log/slog"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/example/ride-service/internal/models"
	"github.com/example/ride-service/internal/observability"
)

// WSSession is one connected dashboard or driver client.
type WSSession struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (s *WSSession) send(ev models.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.WriteJSON(ev)
}

// WSRegistry holds all connected sessions and fans ride events out to
// them. Delivery is fire-and-forget: a failed write drops the session,
// and clients are expected to poll for a full refresh as backup.
type WSRegistry struct {
	mu       sync.RWMutex
	sessions map[string]*WSSession
	logger   *slog.Logger
}

func NewWSRegistry(logger *slog.Logger) *WSRegistry {
	return &WSRegistry{sessions: make(map[string]*WSSession), logger: logger}
}

func (r *WSRegistry) Add(sessionID string, conn *websocket.Conn) {
	r.mu.Lock()
	r.sessions[sessionID] = &WSSession{conn: conn}
	n := len(r.sessions)
	r.mu.Unlock()
	observability.WSClients.Set(float64(n))
}

func (r *WSRegistry) Remove(sessionID string) {
	r.mu.Lock()
	if s, ok := r.sessions[sessionID]; ok {
		_ = s.conn.Close()
		delete(r.sessions, sessionID)
	}
	n := len(r.sessions)
	r.mu.Unlock()
	observability.WSClients.Set(float64(n))
}

// Broadcast sends ev to every connected session. Sessions whose write
// fails are pruned; the event is not retried.
func (r *WSRegistry) Broadcast(ev models.Event) {
	r.mu.RLock()
	targets := make(map[string]*WSSession, len(r.sessions))
	for id, s := range r.sessions {
		targets[id] = s
	}
	r.mu.RUnlock()

	var dead []string
	for id, s := range targets {
		if err := s.send(ev); err != nil {
			if r.logger != nil {
				r.logger.Warn("ws send failed, dropping session", "session", id, "error", err)
			}
			dead = append(dead, id)
		}
	}
	for _, id := range dead {
		r.Remove(id)
	}
}
