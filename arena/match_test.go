package arena

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/evoblast/evoblast-backend/models"
)

type fakeRecorder struct {
	records chan models.MatchRecord
}

func (f *fakeRecorder) SaveMatch(rec models.MatchRecord) error {
	f.records <- rec
	return nil
}

func startTestMatch(t *testing.T, mgr *Manager) (*Match, *fakeSender, *fakeSender) {
	t.Helper()
	a, b := &fakeSender{}, &fakeSender{}
	m := mgr.StartMatch("m1", []Participant{
		{SessionID: "a", Name: "Alpha", Sender: a},
		{SessionID: "b", Name: "Bravo", Sender: b},
	})
	return m, a, b
}

func TestMatchEndsWhenPlayerLeaves(t *testing.T) {
	mgr := NewManager(nil, 0)
	m, _, b := startTestMatch(t, mgr)

	if m.Phase() != Running {
		t.Fatalf("phase = %v, want Running", m.Phase())
	}

	m.Inbox <- Leave{SessionID: "a"}

	// The remaining session hears about it within a tick or so.
	b.waitForEvent(t, models.EventMatchEnded, 1, time.Second)
	if m.Phase() != Ended {
		t.Fatalf("phase = %v after leave, want Ended", m.Phase())
	}

	// Both sessions are released and may re-enter matchmaking at once.
	waitUntil(t, time.Second, func() bool {
		return !mgr.InMatch("a") && !mgr.InMatch("b")
	})
	q := NewQueue(mgr, time.Second)
	if err := q.Enqueue("b", "Bravo", b); err != nil {
		t.Fatalf("re-enqueue after match end: %v", err)
	}
}

func TestMatchBuffersInputsAndTicks(t *testing.T) {
	mgr := NewManager(nil, 0)
	t.Cleanup(mgr.Shutdown)
	m, a, b := startTestMatch(t, mgr)

	m.Inbox <- Move{SessionID: "a", X: 1200, Y: 900}
	var moved models.PlayerMovedEvent
	if err := json.Unmarshal(b.waitForEvent(t, models.EventPlayerMoved, 1, time.Second)[0], &moved); err != nil {
		t.Fatal(err)
	}
	if moved.ID != "a" || moved.X != 1200 || moved.Y != 900 {
		t.Fatalf("unexpected playerMoved: %+v", moved)
	}

	m.Inbox <- Shoot{SessionID: "a", X: 1200, Y: 900, DX: 0, DY: -1}
	var spawn models.BulletSpawnEvent
	if err := json.Unmarshal(a.waitForEvent(t, models.EventBulletSpawn, 1, time.Second)[0], &spawn); err != nil {
		t.Fatal(err)
	}
	if spawn.OwnerID != "a" || spawn.VY >= 0 {
		t.Fatalf("unexpected bulletSpawn: %+v", spawn)
	}
}

func TestMatchSetNameBroadcasts(t *testing.T) {
	mgr := NewManager(nil, 0)
	t.Cleanup(mgr.Shutdown)
	m, _, b := startTestMatch(t, mgr)

	m.Inbox <- SetName{SessionID: "a", Name: "  Renamed  "}
	var upd models.NameUpdateEvent
	if err := json.Unmarshal(b.waitForEvent(t, models.EventNameUpdate, 1, time.Second)[0], &upd); err != nil {
		t.Fatal(err)
	}
	if upd.ID != "a" || upd.Name != "Renamed" {
		t.Fatalf("unexpected nameUpdate: %+v", upd)
	}
}

func TestMatchTimeLimit(t *testing.T) {
	rec := &fakeRecorder{records: make(chan models.MatchRecord, 1)}
	mgr := NewManager(rec, 1) // 1-second round = 30 ticks
	m, a, _ := startTestMatch(t, mgr)

	select {
	case r := <-rec.records:
		if r.EndReason != EndReasonTimeLimit {
			t.Fatalf("end reason %q, want %q", r.EndReason, EndReasonTimeLimit)
		}
		if r.Ticks < 30 {
			t.Fatalf("match ended after %d ticks, want >= 30", r.Ticks)
		}
		if len(r.Players) != 2 {
			t.Fatalf("record has %d players, want 2", len(r.Players))
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("match never hit its time limit")
	}

	a.waitForEvent(t, models.EventMatchEnded, 1, time.Second)
	if m.Phase() != Ended {
		t.Fatalf("phase = %v, want Ended", m.Phase())
	}
}

func TestMatchRecordCoversLeaver(t *testing.T) {
	rec := &fakeRecorder{records: make(chan models.MatchRecord, 1)}
	mgr := NewManager(rec, 0)
	m, _, _ := startTestMatch(t, mgr)

	m.Inbox <- Leave{SessionID: "a"}

	select {
	case r := <-rec.records:
		if r.EndReason != EndReasonPlayerLeft {
			t.Fatalf("end reason %q, want %q", r.EndReason, EndReasonPlayerLeft)
		}
		ids := map[string]bool{}
		for _, p := range r.Players {
			ids[p.ID] = true
		}
		if !ids["a"] || !ids["b"] {
			t.Fatalf("record missing a participant: %+v", r.Players)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("no record after leave")
	}
}

func TestMatchStartEventListsBothPlayers(t *testing.T) {
	mgr := NewManager(nil, 0)
	t.Cleanup(mgr.Shutdown)
	_, a, _ := startTestMatch(t, mgr)

	var start models.MatchStartEvent
	if err := json.Unmarshal(a.waitForEvent(t, models.EventMatchStart, 1, time.Second)[0], &start); err != nil {
		t.Fatal(err)
	}
	if start.World.W != 2600 || start.World.H != 1800 {
		t.Fatalf("unexpected world: %+v", start.World)
	}
	pa, pb := start.Players["a"], start.Players["b"]
	if pa.X == pb.X {
		t.Fatalf("players share a spawn point: %v", pa.X)
	}
}

func waitUntil(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("condition not met within %v", timeout)
		}
		time.Sleep(5 * time.Millisecond)
	}
}
