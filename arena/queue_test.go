package arena

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/evoblast/evoblast-backend/models"
)

type fakeSender struct {
	mu   sync.Mutex
	msgs [][]byte
}

func (f *fakeSender) Send(b []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.msgs = append(f.msgs, append([]byte(nil), b...))
	return nil
}

func (f *fakeSender) Close() error { return nil }

type rawEvent struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

func (f *fakeSender) eventsOfType(t *testing.T, typ string) []json.RawMessage {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []json.RawMessage
	for _, b := range f.msgs {
		var ev rawEvent
		if err := json.Unmarshal(b, &ev); err != nil {
			t.Fatalf("bad event frame %q: %v", b, err)
		}
		if ev.Type == typ {
			out = append(out, ev.Data)
		}
	}
	return out
}

// waitForEvent polls until the sender has seen at least n events of the
// given type.
func (f *fakeSender) waitForEvent(t *testing.T, typ string, n int, timeout time.Duration) []json.RawMessage {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for {
		if evs := f.eventsOfType(t, typ); len(evs) >= n {
			return evs
		}
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %d %q events", n, typ)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func newTestQueue(t *testing.T) (*Queue, *Manager) {
	t.Helper()
	mgr := NewManager(nil, 0)
	q := NewQueue(mgr, time.Second)
	t.Cleanup(mgr.Shutdown)
	return q, mgr
}

func TestQueuePairsAndStartsMatch(t *testing.T) {
	q, mgr := newTestQueue(t)
	a, b := &fakeSender{}, &fakeSender{}

	if err := q.Enqueue("a", "Alpha", a); err != nil {
		t.Fatalf("enqueue a: %v", err)
	}
	if err := q.Enqueue("b", "Bravo", b); err != nil {
		t.Fatalf("enqueue b: %v", err)
	}

	var offerA, offerB models.MatchFoundEvent
	if err := json.Unmarshal(a.waitForEvent(t, models.EventMatchFound, 1, time.Second)[0], &offerA); err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal(b.waitForEvent(t, models.EventMatchFound, 1, time.Second)[0], &offerB); err != nil {
		t.Fatal(err)
	}
	if offerA.MatchID == "" || offerA.MatchID != offerB.MatchID {
		t.Fatalf("offers disagree on match id: %q vs %q", offerA.MatchID, offerB.MatchID)
	}
	if offerA.Opponent.ID != "b" || offerB.Opponent.ID != "a" {
		t.Fatalf("wrong opponents: %+v / %+v", offerA.Opponent, offerB.Opponent)
	}

	if err := q.Accept("a", offerA.MatchID); err != nil {
		t.Fatalf("accept a: %v", err)
	}
	if mgr.Count() != 0 {
		t.Fatalf("match started before both accepted")
	}
	if err := q.Accept("b", offerB.MatchID); err != nil {
		t.Fatalf("accept b: %v", err)
	}

	if !mgr.InMatch("a") || !mgr.InMatch("b") {
		t.Fatalf("sessions not in a match after both accepted")
	}
	if q.Len() != 0 {
		t.Fatalf("queue not drained after match start: %d", q.Len())
	}

	var start models.MatchStartEvent
	if err := json.Unmarshal(b.waitForEvent(t, models.EventMatchStart, 1, time.Second)[0], &start); err != nil {
		t.Fatal(err)
	}
	if start.MatchID != offerA.MatchID {
		t.Fatalf("matchStart id %q, offer id %q", start.MatchID, offerA.MatchID)
	}
	if len(start.Players) != 2 {
		t.Fatalf("matchStart has %d players, want 2", len(start.Players))
	}
	for id, p := range start.Players {
		if p.HP != 100 || !p.Alive {
			t.Fatalf("player %s not at match-start defaults: %+v", id, p)
		}
	}
}

func TestEnqueueConflicts(t *testing.T) {
	q, _ := newTestQueue(t)
	a := &fakeSender{}

	if err := q.Enqueue("a", "Alpha", a); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if err := q.Enqueue("a", "Alpha", a); err != ErrAlreadyQueued {
		t.Fatalf("duplicate enqueue: got %v, want ErrAlreadyQueued", err)
	}
}

func TestEnqueueWhileInMatch(t *testing.T) {
	q, _ := newTestQueue(t)
	a, b := &fakeSender{}, &fakeSender{}

	mustEnqueuePair(t, q, a, b)
	if err := q.Enqueue("a", "Alpha", a); err != ErrAlreadyInMatch {
		t.Fatalf("enqueue while in match: got %v, want ErrAlreadyInMatch", err)
	}
}

func TestAcceptUnknownOffer(t *testing.T) {
	q, _ := newTestQueue(t)
	a := &fakeSender{}

	if err := q.Accept("ghost", "m1"); err != ErrUnknownOffer {
		t.Fatalf("accept from unqueued session: got %v", err)
	}

	if err := q.Enqueue("a", "Alpha", a); err != nil {
		t.Fatal(err)
	}
	// Still WAITING: no offer exists yet.
	if err := q.Accept("a", "m1"); err != ErrUnknownOffer {
		t.Fatalf("accept without offer: got %v", err)
	}
}

func TestAcceptIsIdempotent(t *testing.T) {
	q, mgr := newTestQueue(t)
	a, b := &fakeSender{}, &fakeSender{}

	q.Enqueue("a", "Alpha", a)
	q.Enqueue("b", "Bravo", b)

	var offer models.MatchFoundEvent
	json.Unmarshal(a.waitForEvent(t, models.EventMatchFound, 1, time.Second)[0], &offer)

	if err := q.Accept("a", offer.MatchID); err != nil {
		t.Fatalf("first accept: %v", err)
	}
	if err := q.Accept("a", offer.MatchID); err != nil {
		t.Fatalf("second accept should be a no-op, got %v", err)
	}
	if mgr.Count() != 0 {
		t.Fatalf("double accept from one side started a match")
	}
}

func TestOfferTimeoutRequeuesBoth(t *testing.T) {
	mgr := NewManager(nil, 0)
	t.Cleanup(mgr.Shutdown)
	q := NewQueue(mgr, 50*time.Millisecond)
	a, b := &fakeSender{}, &fakeSender{}

	q.Enqueue("a", "Alpha", a)
	q.Enqueue("b", "Bravo", b)

	var first models.MatchFoundEvent
	json.Unmarshal(a.waitForEvent(t, models.EventMatchFound, 1, time.Second)[0], &first)

	// Neither accepts; the sweep lapses the offer and both go back to
	// WAITING with a fresh enqueue order, then pair again.
	q.sweep(time.Now().Add(time.Second))

	a.waitForEvent(t, models.EventOfferExpired, 1, time.Second)
	b.waitForEvent(t, models.EventOfferExpired, 1, time.Second)

	var second models.MatchFoundEvent
	offers := a.waitForEvent(t, models.EventMatchFound, 2, time.Second)
	json.Unmarshal(offers[1], &second)
	if second.MatchID == first.MatchID {
		t.Fatalf("expired offer id reused")
	}

	// The old offer is dead.
	if err := q.Accept("a", first.MatchID); err != ErrUnknownOffer {
		t.Fatalf("accept of expired offer: got %v, want ErrUnknownOffer", err)
	}
	if mgr.Count() != 0 {
		t.Fatalf("expired offer started a match")
	}
}

func TestRemoveRequeuesStrandedPartner(t *testing.T) {
	q, mgr := newTestQueue(t)
	a, b, c := &fakeSender{}, &fakeSender{}, &fakeSender{}

	q.Enqueue("a", "Alpha", a)
	q.Enqueue("b", "Bravo", b)
	a.waitForEvent(t, models.EventMatchFound, 1, time.Second)

	// a disconnects mid-offer; b must not be left stalled.
	q.Remove("a")
	b.waitForEvent(t, models.EventOfferExpired, 1, time.Second)
	if q.Len() != 1 {
		t.Fatalf("queue length = %d after partner removal, want 1", q.Len())
	}

	// A new arrival pairs with the stranded partner.
	q.Enqueue("c", "Cairo", c)
	var offerB, offerC models.MatchFoundEvent
	json.Unmarshal(b.waitForEvent(t, models.EventMatchFound, 2, time.Second)[1], &offerB)
	json.Unmarshal(c.waitForEvent(t, models.EventMatchFound, 1, time.Second)[0], &offerC)
	if offerB.MatchID != offerC.MatchID {
		t.Fatalf("stranded partner not re-paired")
	}

	q.Accept("b", offerB.MatchID)
	q.Accept("c", offerC.MatchID)
	if !mgr.InMatch("b") || !mgr.InMatch("c") {
		t.Fatalf("re-pair after removal did not start a match")
	}
}

func TestLobbyStateBroadcast(t *testing.T) {
	q, _ := newTestQueue(t)
	a := &fakeSender{}

	q.Enqueue("a", "Alpha", a)

	var lobby models.LobbyStateEvent
	if err := json.Unmarshal(a.waitForEvent(t, models.EventLobbyState, 1, time.Second)[0], &lobby); err != nil {
		t.Fatal(err)
	}
	if lobby.Count != 1 || lobby.Max != 2 {
		t.Fatalf("lobbyState count/max = %d/%d, want 1/2", lobby.Count, lobby.Max)
	}
	if len(lobby.Players) != 1 || lobby.Players[0].Name != "Alpha" {
		t.Fatalf("lobbyState players wrong: %+v", lobby.Players)
	}
}

// mustEnqueuePair drives two sessions through offer and accept into a
// running match.
func mustEnqueuePair(t *testing.T, q *Queue, a, b *fakeSender) string {
	t.Helper()
	if err := q.Enqueue("a", "Alpha", a); err != nil {
		t.Fatal(err)
	}
	if err := q.Enqueue("b", "Bravo", b); err != nil {
		t.Fatal(err)
	}
	var offer models.MatchFoundEvent
	if err := json.Unmarshal(a.waitForEvent(t, models.EventMatchFound, 1, time.Second)[0], &offer); err != nil {
		t.Fatal(err)
	}
	if err := q.Accept("a", offer.MatchID); err != nil {
		t.Fatal(err)
	}
	if err := q.Accept("b", offer.MatchID); err != nil {
		t.Fatal(err)
	}
	return offer.MatchID
}
