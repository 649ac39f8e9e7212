package handlers

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/evoblast/evoblast-backend/arena"
	"github.com/evoblast/evoblast-backend/models"
)

// Gateway tracks active websocket connections and routes inbound messages
// to the session's current context: the matchmaking queue before a match,
// the match itself once one is running.
type Gateway struct {
	queue      *arena.Queue
	manager    *arena.Manager
	maxClients int

	mu          sync.Mutex
	connections map[string]*Connection
}

func NewGateway(queue *arena.Queue, manager *arena.Manager, maxClients int) *Gateway {
	return &Gateway{
		queue:       queue,
		manager:     manager,
		maxClients:  maxClients,
		connections: make(map[string]*Connection),
	}
}

// register adds a connection unless the server is at capacity.
func (g *Gateway) register(c *Connection) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.connections) >= g.maxClients {
		return false
	}
	g.connections[c.sessionID] = c
	return true
}

// unregister removes a connection and releases the session from whichever
// of queue or match currently owns it.
func (g *Gateway) unregister(c *Connection) {
	g.mu.Lock()
	if cur, ok := g.connections[c.sessionID]; ok && cur == c {
		delete(g.connections, c.sessionID)
	}
	g.mu.Unlock()

	g.queue.Remove(c.sessionID)
	if m := g.manager.MatchFor(c.sessionID); m != nil {
		select {
		case m.Inbox <- arena.Leave{SessionID: c.sessionID}:
		default:
			log.Printf("gateway: match %s inbox full, dropping leave for session %s", m.ID, c.sessionID)
		}
	}
}

// NumClients returns the number of active connections.
func (g *Gateway) NumClients() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.connections)
}

func (g *Gateway) sendEvent(c *Connection, ev models.Event) {
	b, err := json.Marshal(ev)
	if err != nil {
		log.Printf("gateway: marshal %s event: %v", ev.Type, err)
		return
	}
	_ = c.Send(b)
}
