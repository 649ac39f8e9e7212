package handlers

import (
	"errors"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/evoblast/evoblast-backend/game"
	"github.com/evoblast/evoblast-backend/models"
	"github.com/evoblast/evoblast-backend/responses"
	"github.com/evoblast/evoblast-backend/utils"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

var (
	errSendBufferFull = errors.New("send buffer full")
	errConnClosed     = errors.New("connection closed")
)

// Connection represents a WebSocket connection and the session it belongs to.
type Connection struct {
	ws        *websocket.Conn
	send      chan []byte
	sessionID string
	name      string

	mu     sync.Mutex
	closed bool
}

// Send queues a message for the write pump. It never blocks; if the client
// cannot keep up the message is dropped. A match or queue goroutine may
// race the connection teardown, so the closed flag is checked under the
// same lock shutdown takes.
func (c *Connection) Send(b []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return errConnClosed
	}
	select {
	case c.send <- b:
		return nil
	default:
		return errSendBufferFull
	}
}

func (c *Connection) Close() error {
	return c.ws.Close()
}

// shutdown closes the send channel exactly once, after which Send fails
// instead of panicking.
func (c *Connection) shutdown() {
	c.mu.Lock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
	c.mu.Unlock()
}

// WsHandler upgrades the connection, validates the session token from the
// URL and runs the read pump until the client goes away.
func (g *Gateway) WsHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	tokenStr := vars["token"]

	claims, err := ValidateToken(tokenStr)
	if err != nil {
		log.Println("ws: token rejected:", err)
		utils.HandleError(w, responses.UnauthorizedError{Msg: "Error validating token."})
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("ws: upgrade error:", err)
		return
	}

	connection := &Connection{
		ws:        conn,
		send:      make(chan []byte, 256),
		sessionID: claims.ID,
		name:      game.SanitizeName(claims.Username),
	}

	if !g.register(connection) {
		// Capacity error: tell the client, then drop the connection.
		g.sendEvent(connection, models.Event{
			Type: models.EventServerFull,
			Data: models.ServerFullEvent{Max: g.maxClients},
		})
		go connection.writePump()
		connection.shutdown()
		return
	}

	log.Printf("ws: session %s connected", connection.sessionID)
	g.sendEvent(connection, models.Event{
		Type: models.EventConnected,
		Data: models.ConnectedEvent{ID: connection.sessionID},
	})

	go connection.writePump()
	g.readPump(connection)
}

func (g *Gateway) readPump(c *Connection) {
	defer func() {
		g.unregister(c)
		c.shutdown()
		log.Printf("ws: session %s disconnected", c.sessionID)
	}()

	for {
		_, message, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("ws: read error from session %s: %v", c.sessionID, err)
			}
			return
		}
		g.processMessage(c, message)
	}
}

func (c *Connection) writePump() {
	defer c.ws.Close()

	for message := range c.send {
		if err := c.ws.WriteMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}
}
