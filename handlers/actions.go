package handlers

import (
	"encoding/json"
	"errors"
	"log"

	"github.com/evoblast/evoblast-backend/arena"
	"github.com/evoblast/evoblast-backend/game"
	"github.com/evoblast/evoblast-backend/models"
)

// processMessage demultiplexes one inbound client message. Malformed
// messages and messages that make no sense in the session's current state
// are dropped; they must never crash a match.
func (g *Gateway) processMessage(c *Connection, rawMessage []byte) {
	var env models.Envelope
	if err := json.Unmarshal(rawMessage, &env); err != nil {
		log.Printf("gateway: bad message from session %s: %v", c.sessionID, err)
		return
	}

	switch env.Type {
	case models.MsgJoinQueue:
		g.handleJoinQueue(c, env.Data)
	case models.MsgMatchAccept:
		g.handleMatchAccept(c, env.Data)
	case models.MsgMove:
		var msg models.MoveMessage
		if json.Unmarshal(env.Data, &msg) != nil {
			return
		}
		g.toMatch(c, arena.Move{SessionID: c.sessionID, X: msg.X, Y: msg.Y})
	case models.MsgShoot:
		var msg models.ShootMessage
		if json.Unmarshal(env.Data, &msg) != nil {
			return
		}
		g.toMatch(c, arena.Shoot{SessionID: c.sessionID, X: msg.X, Y: msg.Y, DX: msg.DX, DY: msg.DY})
	case models.MsgReload:
		g.toMatch(c, arena.Reload{SessionID: c.sessionID})
	case models.MsgSetName:
		g.handleSetName(c, env.Data)
	case models.MsgReady:
		// Legacy ready-button flow; pairing is automatic via the queue.
	default:
		log.Printf("gateway: unhandled message type %q from session %s", env.Type, c.sessionID)
	}
}

func (g *Gateway) handleJoinQueue(c *Connection, data json.RawMessage) {
	var msg models.JoinQueueMessage
	_ = json.Unmarshal(data, &msg)
	if msg.Name != "" {
		c.name = game.SanitizeName(msg.Name)
	}

	err := g.queue.Enqueue(c.sessionID, c.name, c)
	switch {
	case errors.Is(err, arena.ErrAlreadyQueued):
		g.sendEvent(c, models.Event{Type: models.EventError, Data: models.ErrorEvent{Code: "AlreadyQueued", Msg: err.Error()}})
	case errors.Is(err, arena.ErrAlreadyInMatch):
		g.sendEvent(c, models.Event{Type: models.EventError, Data: models.ErrorEvent{Code: "AlreadyInMatch", Msg: err.Error()}})
	}
}

func (g *Gateway) handleMatchAccept(c *Connection, data json.RawMessage) {
	var msg models.MatchAcceptMessage
	if json.Unmarshal(data, &msg) != nil {
		return
	}
	if err := g.queue.Accept(c.sessionID, msg.MatchID); errors.Is(err, arena.ErrUnknownOffer) {
		g.sendEvent(c, models.Event{Type: models.EventError, Data: models.ErrorEvent{Code: "UnknownOffer", Msg: err.Error()}})
	}
}

func (g *Gateway) handleSetName(c *Connection, data json.RawMessage) {
	var msg models.SetNameMessage
	if json.Unmarshal(data, &msg) != nil {
		return
	}
	c.name = game.SanitizeName(msg.Name)
	g.queue.SetName(c.sessionID, c.name)
	if m := g.manager.MatchFor(c.sessionID); m != nil {
		g.toMatch(c, arena.SetName{SessionID: c.sessionID, Name: c.name})
	}
}

// toMatch forwards a gameplay command to the session's current match, if
// any. Messages racing a match that already ended are dropped.
func (g *Gateway) toMatch(c *Connection, cmd interface{}) {
	m := g.manager.MatchFor(c.sessionID)
	if m == nil || m.Phase() != arena.Running {
		return
	}
	select {
	case m.Inbox <- cmd:
	default:
		log.Printf("gateway: match %s inbox full, dropping %T from session %s", m.ID, cmd, c.sessionID)
	}
}
