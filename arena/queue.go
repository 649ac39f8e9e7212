package arena

import (
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/evoblast/evoblast-backend/game"
	"github.com/evoblast/evoblast-backend/models"
)

// Matchmaking conflicts, surfaced to the requesting session only.
var (
	ErrAlreadyQueued  = errors.New("session already queued")
	ErrAlreadyInMatch = errors.New("session already in a match")
	ErrUnknownOffer   = errors.New("no pending offer with that id")
)

type acceptState int

const (
	waiting acceptState = iota
	offered
)

type queueEntry struct {
	sessionID  string
	name       string
	sender     Sender
	state      acceptState
	enqueuedAt time.Time

	// Set while state == offered.
	offerID  string
	deadline time.Time
	accepted bool
}

// Queue pairs waiting sessions FIFO and drives the offer/accept handshake.
// All mutating operations take the one mutex, so pairing is atomic: two
// concurrent enqueues can never both claim the same partner.
type Queue struct {
	mu      sync.Mutex
	entries []*queueEntry

	manager      *Manager
	offerTimeout time.Duration
	quit         chan struct{}
}

// NewQueue creates a matchmaking queue that hands accepted pairs to the
// manager.
func NewQueue(manager *Manager, offerTimeout time.Duration) *Queue {
	return &Queue{
		manager:      manager,
		offerTimeout: offerTimeout,
		quit:         make(chan struct{}),
	}
}

// Run sweeps for expired offers until Stop is called. The timeout is a
// scheduled check, never a blocking wait.
func (q *Queue) Run() {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-q.quit:
			return
		case now := <-ticker.C:
			q.sweep(now)
		}
	}
}

func (q *Queue) Stop() {
	close(q.quit)
}

// Enqueue inserts a session as WAITING and pairs immediately if a partner
// is available.
func (q *Queue) Enqueue(sessionID, name string, sender Sender) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.manager.InMatch(sessionID) {
		return ErrAlreadyInMatch
	}
	if q.findLocked(sessionID) != nil {
		return ErrAlreadyQueued
	}

	q.entries = append(q.entries, &queueEntry{
		sessionID:  sessionID,
		name:       game.SanitizeName(name),
		sender:     sender,
		state:      waiting,
		enqueuedAt: time.Now(),
	})
	log.Printf("queue: session %s enqueued (%d waiting)", sessionID, len(q.entries))

	q.tryPairLocked()
	q.broadcastLobbyLocked()
	return nil
}

// Accept records a session's consent to a pending offer. A duplicate
// accept is a no-op. When both sides have accepted, the pair is removed
// and handed to the manager as a new match.
func (q *Queue) Accept(sessionID, matchID string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	e := q.findLocked(sessionID)
	if e == nil || e.state != offered || e.offerID != matchID {
		return ErrUnknownOffer
	}
	if e.accepted {
		return nil
	}
	e.accepted = true

	partner := q.offerPartnerLocked(e)
	if partner == nil || !partner.accepted {
		return nil
	}

	q.removeLocked(e.sessionID)
	q.removeLocked(partner.sessionID)
	q.broadcastLobbyLocked()

	q.manager.StartMatch(e.offerID, []Participant{
		{SessionID: e.sessionID, Name: e.name, Sender: e.sender},
		{SessionID: partner.sessionID, Name: partner.name, Sender: partner.sender},
	})
	return nil
}

// Remove drops a session from the queue, e.g. on disconnect. A partner
// stranded mid-offer is returned to WAITING and notified.
func (q *Queue) Remove(sessionID string) {
	q.mu.Lock()
	defer q.mu.Unlock()

	e := q.findLocked(sessionID)
	if e == nil {
		return
	}
	partner := q.offerPartnerLocked(e)
	q.removeLocked(sessionID)
	if partner != nil {
		q.requeueLocked(partner, time.Now())
	}
	q.tryPairLocked()
	q.broadcastLobbyLocked()
}

// SetName updates a queued session's display name.
func (q *Queue) SetName(sessionID, name string) {
	q.mu.Lock()
	defer q.mu.Unlock()

	e := q.findLocked(sessionID)
	if e == nil {
		return
	}
	e.name = game.SanitizeName(name)
	q.broadcastLobbyLocked()
}

// Len returns the number of queued sessions.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries)
}

// sweep returns expired offers to WAITING with a fresh enqueue order and
// re-pairs whoever is eligible.
func (q *Queue) sweep(now time.Time) {
	q.mu.Lock()
	defer q.mu.Unlock()

	var expired []*queueEntry
	for _, e := range q.entries {
		if e.state == offered && now.After(e.deadline) {
			expired = append(expired, e)
		}
	}
	if len(expired) == 0 {
		return
	}
	for _, e := range expired {
		q.requeueLocked(e, now)
	}
	q.tryPairLocked()
	q.broadcastLobbyLocked()
}

// tryPairLocked offers a match to the two earliest-enqueued WAITING
// entries, repeatedly, while at least MatchSize are available.
func (q *Queue) tryPairLocked() {
	for {
		pair := make([]*queueEntry, 0, game.MatchSize)
		for _, e := range q.entries {
			if e.state != waiting {
				continue
			}
			pair = append(pair, e)
			if len(pair) == game.MatchSize {
				break
			}
		}
		if len(pair) < game.MatchSize {
			return
		}

		offerID := uuid.New().String()
		deadline := time.Now().Add(q.offerTimeout)
		for _, e := range pair {
			e.state = offered
			e.offerID = offerID
			e.deadline = deadline
			e.accepted = false
		}
		a, b := pair[0], pair[1]
		log.Printf("queue: offering match %s to %s and %s", offerID, a.sessionID, b.sessionID)
		q.sendEvent(a, models.Event{
			Type: models.EventMatchFound,
			Data: models.MatchFoundEvent{MatchID: offerID, Opponent: models.OpponentInfo{ID: b.sessionID, Name: b.name}},
		})
		q.sendEvent(b, models.Event{
			Type: models.EventMatchFound,
			Data: models.MatchFoundEvent{MatchID: offerID, Opponent: models.OpponentInfo{ID: a.sessionID, Name: a.name}},
		})
	}
}

// requeueLocked returns an offered entry to WAITING at the back of the
// FIFO and tells the client its offer lapsed. Slice order is the FIFO
// order, so the entry moves to the end.
func (q *Queue) requeueLocked(e *queueEntry, now time.Time) {
	e.state = waiting
	e.offerID = ""
	e.accepted = false
	e.enqueuedAt = now
	q.removeLocked(e.sessionID)
	q.entries = append(q.entries, e)
	log.Printf("queue: offer expired for session %s, requeued", e.sessionID)
	q.sendEvent(e, models.Event{Type: models.EventOfferExpired, Data: models.OfferExpiredEvent{}})
}

func (q *Queue) findLocked(sessionID string) *queueEntry {
	for _, e := range q.entries {
		if e.sessionID == sessionID {
			return e
		}
	}
	return nil
}

func (q *Queue) offerPartnerLocked(e *queueEntry) *queueEntry {
	if e.state != offered {
		return nil
	}
	for _, other := range q.entries {
		if other != e && other.offerID == e.offerID {
			return other
		}
	}
	return nil
}

func (q *Queue) removeLocked(sessionID string) {
	for i, e := range q.entries {
		if e.sessionID == sessionID {
			q.entries = append(q.entries[:i], q.entries[i+1:]...)
			return
		}
	}
}

func (q *Queue) broadcastLobbyLocked() {
	players := make([]models.LobbyPlayer, 0, len(q.entries))
	for _, e := range q.entries {
		state := "waiting"
		if e.state == offered {
			state = "offered"
		}
		players = append(players, models.LobbyPlayer{ID: e.sessionID, Name: e.name, State: state})
	}
	ev := models.Event{
		Type: models.EventLobbyState,
		Data: models.LobbyStateEvent{MatchState: "LOBBY", Count: len(q.entries), Max: game.MatchSize, Players: players},
	}
	for _, e := range q.entries {
		q.sendEvent(e, ev)
	}
}

func (q *Queue) sendEvent(e *queueEntry, ev models.Event) {
	b, err := json.Marshal(ev)
	if err != nil {
		log.Printf("queue: marshal %s event: %v", ev.Type, err)
		return
	}
	_ = e.sender.Send(b)
}
