package models

import "encoding/json"

// Envelope wraps every message a client sends over the websocket.
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Client -> server message types.
const (
	MsgJoinQueue   = "join_queue"
	MsgMatchAccept = "match_accept"
	MsgMove        = "move"
	MsgShoot       = "shoot"
	MsgReload      = "reload"
	MsgSetName     = "set_name"
	MsgReady       = "ready"
)

type JoinQueueMessage struct {
	Name string `json:"name"`
}

type MatchAcceptMessage struct {
	MatchID string `json:"matchId"`
}

type MoveMessage struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// ShootMessage carries the bullet origin and aim direction. The server
// derives bullet speed and damage itself.
type ShootMessage struct {
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
	DX float64 `json:"dx"`
	DY float64 `json:"dy"`
}

type SetNameMessage struct {
	Name string `json:"name"`
}

type ReadyMessage struct {
	Ready bool `json:"ready"`
}
