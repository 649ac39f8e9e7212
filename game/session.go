package game

import "strings"

// neverShot keeps the fire-rate gate open for a session's first shot.
const neverShot = -1 << 30

// Session is the server-side authoritative record for one connected player
// inside a match.
type Session struct {
	ID   string
	Name string

	X, Y  float64
	HP    float64
	Alive bool

	WeaponLevel      int
	Ammo             int
	Reloading        bool
	ReloadEndsAtTick int
	LastShotTick     int

	RespawnAtTick int
	Kills         int
}

// NewSession creates a session with match-start defaults at the given spawn
// point.
func NewSession(id, name string, x, y float64) *Session {
	s := &Session{ID: id, Name: SanitizeName(name)}
	s.ResetForMatch(x, y)
	return s
}

// ResetForMatch restores match-start defaults: full health, tier-1 weapon,
// full magazine, zero kills.
func (s *Session) ResetForMatch(x, y float64) {
	s.WeaponLevel = StartWeaponLevel
	s.Kills = 0
	s.Respawn(x, y)
}

// Respawn revives an eliminated session at the given point with full
// health and a full magazine. Weapon tier and the kill tally carry over.
func (s *Session) Respawn(x, y float64) {
	w := WeaponByLevel(s.WeaponLevel)
	s.X = x
	s.Y = y
	s.HP = StartHP
	s.Alive = true
	s.Ammo = w.MagSize
	s.Reloading = false
	s.ReloadEndsAtTick = 0
	s.LastShotTick = neverShot
	s.RespawnAtTick = 0
}

// SanitizeName caps a display name at MaxNameLen characters and defaults
// blank names to "Player".
func SanitizeName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "Player"
	}
	runes := []rune(name)
	if len(runes) > MaxNameLen {
		return string(runes[:MaxNameLen])
	}
	return name
}
