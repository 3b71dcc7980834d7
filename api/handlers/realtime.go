package handlers

import (
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/pianoflow/pianoeval/internal/align"
	"github.com/pianoflow/pianoeval/internal/notemodel"
	"github.com/pianoflow/pianoeval/internal/realtime"
)

// SessionRegistry holds live real-time evaluation sessions, keyed by
// session id, for the /ws/session/{id} route to attach to.
type SessionRegistry struct {
	mu       sync.Mutex
	sessions map[string]*session
}

type session struct {
	evaluator   *realtime.Evaluator
	broadcaster *realtime.Broadcaster
}

// NewSessionRegistry returns an empty registry.
func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{sessions: make(map[string]*session)}
}

// StartSession creates and starts a real-time evaluator bound to
// score, registers it under id, and launches its broadcaster.
func (reg *SessionRegistry) StartSession(id string, score *notemodel.Score, opt align.Options) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	evaluator := realtime.New(score, opt)
	feedbackCh := evaluator.SubscribeFeedback(64)
	broadcaster := realtime.NewBroadcaster(feedbackCh)
	evaluator.Start()
	go broadcaster.Run()

	reg.sessions[id] = &session{evaluator: evaluator, broadcaster: broadcaster}
}

// StopSession stops and removes a session.
func (reg *SessionRegistry) StopSession(id string) (*realtime.FinalEvaluation, error) {
	reg.mu.Lock()
	s, ok := reg.sessions[id]
	if ok {
		delete(reg.sessions, id)
	}
	reg.mu.Unlock()

	if !ok {
		return nil, nil
	}
	return s.evaluator.Stop()
}

// WebSocketHandler upgrades a request to a websocket connection and
// attaches it to the named session's broadcaster.
func (reg *SessionRegistry) WebSocketHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	reg.mu.Lock()
	s, ok := reg.sessions[id]
	reg.mu.Unlock()

	if !ok {
		http.Error(w, `{"error": "unknown session"}`, http.StatusNotFound)
		return
	}
	s.broadcaster.ServeWS(w, r)
}
