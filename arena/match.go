package arena

import (
	"encoding/json"
	"log"
	"sync/atomic"
	"time"

	"github.com/evoblast/evoblast-backend/game"
	"github.com/evoblast/evoblast-backend/models"
)

// Sender is the outbound half of a client connection, as the arena sees it.
type Sender interface {
	Send([]byte) error
	Close() error
}

// Participant is one session handed over from the matchmaking queue.
type Participant struct {
	SessionID string
	Name      string
	Sender    Sender
}

// Phase is the match lifecycle state.
type Phase int32

const (
	Forming Phase = iota
	Running
	Ended
)

// End reasons carried on the match record.
const (
	EndReasonPlayerLeft = "player_left"
	EndReasonTimeLimit  = "time_limit"
	EndReasonFault      = "fault"
	EndReasonShutdown   = "shutdown"
)

// Commands posted to a match's Inbox.
type Move struct {
	SessionID string
	X, Y      float64
}

type Shoot struct {
	SessionID string
	X, Y      float64
	DX, DY    float64
}

type Reload struct {
	SessionID string
}

type SetName struct {
	SessionID string
	Name      string
}

type Leave struct {
	SessionID string
}

// Match owns a fixed set of sessions, their simulation state and the tick
// loop. The run goroutine is the sole writer of match state; everything
// else talks to it through the Inbox.
type Match struct {
	ID    string
	Inbox chan interface{}

	phase   atomic.Int32
	senders map[string]Sender
	state   *game.MatchState
	inputs  map[string]*game.Input

	roundTicks int
	startedAt  time.Time
	recorded   []models.RecordedEvent
	onEnd      func(m *Match, rec models.MatchRecord)
	quit       chan struct{}
}

// NewMatch attaches the participants at the fixed spawn points and leaves
// the match in Forming. Membership is fixed for the match's life.
func NewMatch(id string, parts []Participant, roundTicks int, onEnd func(*Match, models.MatchRecord)) *Match {
	m := &Match{
		ID:         id,
		Inbox:      make(chan interface{}, 256),
		senders:    make(map[string]Sender),
		state:      game.NewMatchState(time.Now().UnixNano()),
		inputs:     make(map[string]*game.Input),
		roundTicks: roundTicks,
		onEnd:      onEnd,
		quit:       make(chan struct{}),
	}
	for i, p := range parts {
		x, y := game.SpawnPoint(i)
		m.state.Attach(game.NewSession(p.SessionID, p.Name, x, y))
		m.senders[p.SessionID] = p.Sender
	}
	return m
}

// Phase reports the lifecycle state; safe from any goroutine.
func (m *Match) Phase() Phase {
	return Phase(m.phase.Load())
}

// SessionIDs returns the fixed membership of the match.
func (m *Match) SessionIDs() []string {
	ids := make([]string, 0, len(m.senders))
	for id := range m.senders {
		ids = append(ids, id)
	}
	return ids
}

// Start broadcasts matchStart, transitions to Running and launches the
// tick loop.
func (m *Match) Start() {
	m.startedAt = time.Now()

	players := make(map[string]models.MatchPlayerInfo, len(m.state.Sessions))
	for id, s := range m.state.Sessions {
		players[id] = models.MatchPlayerInfo{
			Name: s.Name, X: s.X, Y: s.Y, HP: s.HP, Alive: s.Alive, WeaponLevel: s.WeaponLevel,
		}
	}
	m.broadcast(models.Event{
		Type: models.EventMatchStart,
		Data: models.MatchStartEvent{
			MatchID: m.ID,
			World:   models.World{W: game.WorldW, H: game.WorldH},
			Players: players,
		},
	})

	m.phase.Store(int32(Running))
	go m.run()
}

// Stop ends the match from outside, e.g. on server shutdown.
func (m *Match) Stop() {
	close(m.quit)
}

func (m *Match) run() {
	defer func() {
		// A fault in one match must never take down the process or any
		// other match.
		if r := recover(); r != nil {
			log.Printf("match %s: tick loop panic: %v", m.ID, r)
			m.finish(EndReasonFault)
		}
	}()

	ticker := time.NewTicker(time.Second / game.TickRate)
	defer ticker.Stop()

	for {
		select {
		case <-m.quit:
			if m.Phase() == Running {
				m.finish(EndReasonShutdown)
			}
			return
		case cmd := <-m.Inbox:
			if m.handleCommand(cmd) {
				return
			}
		case <-ticker.C:
			events := game.Step(m.state, m.inputs)
			m.inputs = make(map[string]*game.Input)
			m.broadcast(events...)
			if m.roundTicks > 0 && m.state.Tick >= m.roundTicks {
				m.finish(EndReasonTimeLimit)
				return
			}
		}
	}
}

// handleCommand buffers gameplay input for the next tick. It returns true
// when the match has ended.
func (m *Match) handleCommand(cmd interface{}) bool {
	switch c := cmd.(type) {
	case Move:
		in := m.inputFor(c.SessionID)
		if in == nil {
			return false
		}
		in.Move = &game.MoveInput{X: c.X, Y: c.Y}
	case Shoot:
		in := m.inputFor(c.SessionID)
		if in == nil {
			return false
		}
		if len(in.Shots) < game.MaxShotsPerTick {
			in.Shots = append(in.Shots, game.ShootInput{X: c.X, Y: c.Y, DX: c.DX, DY: c.DY})
		}
	case Reload:
		in := m.inputFor(c.SessionID)
		if in == nil {
			return false
		}
		in.Reload = true
	case SetName:
		s, ok := m.state.Sessions[c.SessionID]
		if !ok {
			return false
		}
		s.Name = game.SanitizeName(c.Name)
		m.broadcast(models.Event{
			Type: models.EventNameUpdate,
			Data: models.NameUpdateEvent{ID: s.ID, Name: s.Name},
		})
	case Leave:
		if _, ok := m.senders[c.SessionID]; !ok {
			return false
		}
		// Fixed membership: losing a session ends the match. The session
		// stays attached so the record still covers the leaver.
		delete(m.senders, c.SessionID)
		m.finish(EndReasonPlayerLeft)
		return true
	default:
		log.Printf("match %s: unhandled command %T", m.ID, cmd)
	}
	return false
}

func (m *Match) inputFor(sessionID string) *game.Input {
	if _, ok := m.senders[sessionID]; !ok {
		return nil
	}
	in, ok := m.inputs[sessionID]
	if !ok {
		in = &game.Input{}
		m.inputs[sessionID] = in
	}
	return in
}

func (m *Match) finish(reason string) {
	m.phase.Store(int32(Ended))
	for id := range m.state.Bullets {
		delete(m.state.Bullets, id)
	}
	m.broadcast(models.Event{Type: models.EventMatchEnded, Data: models.MatchEndedEvent{}})

	rec := models.MatchRecord{
		MatchID:    m.ID,
		StartedAt:  m.startedAt,
		FinishedAt: time.Now(),
		Ticks:      m.state.Tick,
		EndReason:  reason,
		Events:     m.recorded,
	}
	for _, id := range m.state.Order {
		s := m.state.Sessions[id]
		rec.Players = append(rec.Players, models.MatchPlayer{ID: s.ID, Name: s.Name, Kills: s.Kills})
	}

	if m.onEnd != nil {
		m.onEnd(m, rec)
	}
}

// broadcast encodes each event once and fans it out to every member.
// Send errors are ignored; a dead connection surfaces as a Leave from the
// gateway.
func (m *Match) broadcast(events ...models.Event) {
	for _, ev := range events {
		m.recorded = append(m.recorded, models.RecordedEvent{Tick: m.state.Tick, Type: ev.Type, Data: ev.Data})
		b, err := json.Marshal(ev)
		if err != nil {
			log.Printf("match %s: marshal %s event: %v", m.ID, ev.Type, err)
			continue
		}
		for _, sender := range m.senders {
			_ = sender.Send(b)
		}
	}
}
