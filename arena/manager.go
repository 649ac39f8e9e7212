package arena

import (
	"log"
	"sync"

	"github.com/evoblast/evoblast-backend/game"
	"github.com/evoblast/evoblast-backend/models"
)

// Recorder persists finished matches. May be backed by nothing at all when
// persistence is disabled.
type Recorder interface {
	SaveMatch(rec models.MatchRecord) error
}

// Manager is the registry of live matches and the session -> match routing
// table. It is the serialization point for Queue <-> Match ownership
// transfer: a session is in at most one match, and Enqueue consults
// InMatch under the same lock that StartMatch and match teardown take.
type Manager struct {
	mu        sync.Mutex
	matches   map[string]*Match
	bySession map[string]*Match

	recorder   Recorder
	roundTicks int
}

// NewManager creates a match registry. roundSeconds of 0 means matches run
// until a player leaves.
func NewManager(recorder Recorder, roundSeconds int) *Manager {
	return &Manager{
		matches:    make(map[string]*Match),
		bySession:  make(map[string]*Match),
		recorder:   recorder,
		roundTicks: roundSeconds * game.TickRate,
	}
}

// StartMatch constructs a match for the given participants, registers it
// and starts its tick loop.
func (mgr *Manager) StartMatch(id string, parts []Participant) *Match {
	m := NewMatch(id, parts, mgr.roundTicks, mgr.matchEnded)

	mgr.mu.Lock()
	mgr.matches[id] = m
	for _, p := range parts {
		mgr.bySession[p.SessionID] = m
	}
	mgr.mu.Unlock()

	log.Printf("match %s: starting with %d players", id, len(parts))
	m.Start()
	return m
}

// MatchFor returns the live match a session belongs to, or nil.
func (mgr *Manager) MatchFor(sessionID string) *Match {
	mgr.mu.Lock()
	defer mgr.mu.Unlock()
	return mgr.bySession[sessionID]
}

// InMatch reports whether a session belongs to a live match.
func (mgr *Manager) InMatch(sessionID string) bool {
	return mgr.MatchFor(sessionID) != nil
}

// Count returns the number of live matches.
func (mgr *Manager) Count() int {
	mgr.mu.Lock()
	defer mgr.mu.Unlock()
	return len(mgr.matches)
}

// Shutdown stops every live match.
func (mgr *Manager) Shutdown() {
	mgr.mu.Lock()
	matches := make([]*Match, 0, len(mgr.matches))
	for _, m := range mgr.matches {
		matches = append(matches, m)
	}
	mgr.mu.Unlock()

	for _, m := range matches {
		m.Stop()
	}
}

// matchEnded releases the sessions so they may re-enter the queue, then
// hands the record to the recorder off the tick goroutine.
func (mgr *Manager) matchEnded(m *Match, rec models.MatchRecord) {
	mgr.mu.Lock()
	delete(mgr.matches, m.ID)
	for _, p := range rec.Players {
		if mgr.bySession[p.ID] == m {
			delete(mgr.bySession, p.ID)
		}
	}
	mgr.mu.Unlock()

	log.Printf("match %s: ended after %d ticks (%s)", m.ID, rec.Ticks, rec.EndReason)

	if mgr.recorder == nil {
		return
	}
	go func() {
		if err := mgr.recorder.SaveMatch(rec); err != nil {
			log.Printf("match %s: save record: %v", m.ID, err)
		}
	}()
}
