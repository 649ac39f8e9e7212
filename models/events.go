package models

// Event is the envelope for every server -> client message.
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// Server -> client event types.
const (
	EventConnected     = "connected"
	EventLobbyState    = "lobbyState"
	EventMatchFound    = "matchFound"
	EventOfferExpired  = "offerExpired"
	EventMatchStart    = "matchStart"
	EventBulletSpawn   = "bulletSpawn"
	EventBulletDespawn = "bulletDespawn"
	EventHPUpdate      = "hpUpdate"
	EventEliminated    = "eliminated"
	EventRespawn       = "respawn"
	EventPlayerMoved   = "playerMoved"
	EventMatchEnded    = "matchEnded"
	EventNameUpdate    = "nameUpdate"
	EventServerFull    = "serverFull"
	EventError         = "error"
)

type ConnectedEvent struct {
	ID string `json:"id"`
}

type LobbyPlayer struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	State string `json:"state"`
}

type LobbyStateEvent struct {
	MatchState string        `json:"matchState"`
	Count      int           `json:"count"`
	Max        int           `json:"max"`
	Players    []LobbyPlayer `json:"players"`
}

type OpponentInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type MatchFoundEvent struct {
	MatchID  string       `json:"matchId"`
	Opponent OpponentInfo `json:"opponent"`
}

type OfferExpiredEvent struct{}

type World struct {
	W float64 `json:"w"`
	H float64 `json:"h"`
}

type MatchPlayerInfo struct {
	Name        string  `json:"name"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	HP          float64 `json:"hp"`
	Alive       bool    `json:"alive"`
	WeaponLevel int     `json:"weaponLevel"`
}

type MatchStartEvent struct {
	MatchID string                     `json:"matchId"`
	World   World                      `json:"world"`
	Players map[string]MatchPlayerInfo `json:"players"`
}

type BulletSpawnEvent struct {
	ID      int     `json:"id"`
	OwnerID string  `json:"ownerId"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	VX      float64 `json:"vx"`
	VY      float64 `json:"vy"`
	TTL     float64 `json:"ttl"`
}

type BulletDespawnEvent struct {
	ID int `json:"id"`
}

type HPUpdateEvent struct {
	ID string  `json:"id"`
	HP float64 `json:"hp"`
}

type EliminatedEvent struct {
	ID string `json:"id"`
	By string `json:"by"`
}

type RespawnEvent struct {
	ID          string  `json:"id"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	HP          float64 `json:"hp"`
	WeaponLevel int     `json:"weaponLevel"`
}

type PlayerMovedEvent struct {
	ID string  `json:"id"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
}

type MatchEndedEvent struct{}

type NameUpdateEvent struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type ServerFullEvent struct {
	Max int `json:"max"`
}

type ErrorEvent struct {
	Code string `json:"code"`
	Msg  string `json:"message"`
}
