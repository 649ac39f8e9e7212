package game

import "math/rand"

// MatchState is the authoritative state of one running match. It is owned
// exclusively by that match's tick loop; nothing else mutates it.
type MatchState struct {
	Tick     int
	Sessions map[string]*Session
	// Order fixes session enumeration order so input application and
	// collision tests are deterministic.
	Order   []string
	Bullets map[int]*Bullet

	CurrentRadius float64

	bulletSeq int
	rng       *rand.Rand
}

// NewMatchState creates an empty match state. The seed drives respawn
// jitter, so a match replays identically given the same inputs.
func NewMatchState(seed int64) *MatchState {
	return &MatchState{
		Sessions:      make(map[string]*Session),
		Bullets:       make(map[int]*Bullet),
		CurrentRadius: ZoneStartRadius,
		rng:           rand.New(rand.NewSource(seed)),
	}
}

// Attach adds a session to the match.
func (st *MatchState) Attach(s *Session) {
	if _, ok := st.Sessions[s.ID]; ok {
		return
	}
	st.Sessions[s.ID] = s
	st.Order = append(st.Order, s.ID)
}

// Detach removes a session from the match.
func (st *MatchState) Detach(id string) {
	if _, ok := st.Sessions[id]; !ok {
		return
	}
	delete(st.Sessions, id)
	for i, sid := range st.Order {
		if sid == id {
			st.Order = append(st.Order[:i], st.Order[i+1:]...)
			break
		}
	}
}

// SpawnPoint returns the match-start spawn for the idx-th session, offset
// either side of the map center.
func SpawnPoint(idx int) (float64, float64) {
	cx, cy := WorldW/2, WorldH/2
	if idx%2 == 0 {
		return cx - SpawnOffsetX, cy
	}
	return cx + SpawnOffsetX, cy
}

func (st *MatchState) nextBulletID() int {
	st.bulletSeq++
	return st.bulletSeq
}

// respawnPoint is a jittered point near the map center.
func (st *MatchState) respawnPoint() (float64, float64) {
	cx, cy := WorldW/2, WorldH/2
	rx := cx + (st.rng.Float64()*2-1)*RespawnJitter
	ry := cy + (st.rng.Float64()*2-1)*RespawnJitter
	return rx, ry
}
