package game

import (
	"math"
	"sort"

	"github.com/evoblast/evoblast-backend/models"
)

// Step advances the match by exactly one tick and returns the events to
// fan out, in emission order. Buffered inputs are applied at the tick
// boundary so the tick loop is the only writer of match state.
func Step(st *MatchState, inputs map[string]*Input) []models.Event {
	st.Tick++
	var events []models.Event

	events = applyInputs(st, inputs, events)
	events = advanceBullets(st, events)
	events = checkRespawns(st, events)
	st.CurrentRadius = ZoneRadiusAt(st.Tick)
	events = applyZoneDamage(st, events)

	return events
}

func applyInputs(st *MatchState, inputs map[string]*Input, events []models.Event) []models.Event {
	for _, id := range st.Order {
		s := st.Sessions[id]
		in := inputs[id]

		// Finish a reload that came due, whether or not anything arrived.
		if s.Reloading && st.Tick >= s.ReloadEndsAtTick {
			s.Reloading = false
			s.Ammo = WeaponByLevel(s.WeaponLevel).MagSize
		}

		if in == nil {
			continue
		}

		if in.Move != nil && s.Alive {
			s.X = clamp(in.Move.X, 0, WorldW)
			s.Y = clamp(in.Move.Y, 0, WorldH)
			events = append(events, models.Event{
				Type: models.EventPlayerMoved,
				Data: models.PlayerMovedEvent{ID: s.ID, X: s.X, Y: s.Y},
			})
		}

		if in.Reload {
			startReload(st, s)
		}

		for _, shot := range in.Shots {
			events = fireShot(st, s, shot, events)
		}
	}
	return events
}

// fireShot validates one buffered shoot request and spawns a bullet on
// success. Invalid requests are dropped silently.
func fireShot(st *MatchState, s *Session, shot ShootInput, events []models.Event) []models.Event {
	if !s.Alive || s.Reloading {
		return events
	}
	w := WeaponByLevel(s.WeaponLevel)
	if st.Tick-s.LastShotTick < w.FireRateTicks() {
		return events
	}
	if s.Ammo <= 0 {
		startReload(st, s)
		return events
	}

	length := math.Hypot(shot.DX, shot.DY)
	if length < 1e-4 {
		return events
	}

	s.Ammo--
	s.LastShotTick = st.Tick
	if s.Ammo == 0 {
		startReload(st, s)
	}

	b := &Bullet{
		ID:      st.nextBulletID(),
		OwnerID: s.ID,
		X:       shot.X,
		Y:       shot.Y,
		VX:      shot.DX / length * w.BulletSpeed,
		VY:      shot.DY / length * w.BulletSpeed,
		Damage:  w.Damage,
		Life:    BulletTTLSeconds,
	}
	st.Bullets[b.ID] = b

	return append(events, models.Event{
		Type: models.EventBulletSpawn,
		Data: models.BulletSpawnEvent{ID: b.ID, OwnerID: b.OwnerID, X: b.X, Y: b.Y, VX: b.VX, VY: b.VY, TTL: b.Life},
	})
}

func startReload(st *MatchState, s *Session) {
	w := WeaponByLevel(s.WeaponLevel)
	if s.Reloading || s.Ammo == w.MagSize {
		return
	}
	s.Reloading = true
	s.ReloadEndsAtTick = st.Tick + w.ReloadTicks()
}

// advanceBullets moves every live bullet, expiring those that run out of
// life or leave the world, then hit-tests survivors. A bullet is removed
// exactly once: either expired or hit, never both.
func advanceBullets(st *MatchState, events []models.Event) []models.Event {
	ids := make([]int, 0, len(st.Bullets))
	for id := range st.Bullets {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	for _, id := range ids {
		b := st.Bullets[id]
		b.X += b.VX * Dt
		b.Y += b.VY * Dt
		b.Life -= Dt

		if b.Life <= 0 || b.X < 0 || b.X > WorldW || b.Y < 0 || b.Y > WorldH {
			delete(st.Bullets, id)
			events = append(events, models.Event{
				Type: models.EventBulletDespawn,
				Data: models.BulletDespawnEvent{ID: id},
			})
			continue
		}

		// First qualifying hit wins; the owner is never a target and dead
		// sessions are invisible until they respawn.
		for _, sid := range st.Order {
			if sid == b.OwnerID {
				continue
			}
			target := st.Sessions[sid]
			if target == nil || !target.Alive {
				continue
			}
			if dist2(b.X, b.Y, target.X, target.Y) > PlayerRadius*PlayerRadius {
				continue
			}
			delete(st.Bullets, id)
			events = append(events, models.Event{
				Type: models.EventBulletDespawn,
				Data: models.BulletDespawnEvent{ID: id},
			})
			events = applyDamage(st, target, b.Damage, b.OwnerID, events)
			break
		}
	}
	return events
}

// applyDamage is the single damage/elimination path shared by bullets and
// the safe zone, so a session cannot be eliminated twice in one tick.
func applyDamage(st *MatchState, target *Session, amount float64, by string, events []models.Event) []models.Event {
	if !target.Alive {
		return events
	}
	target.HP = math.Max(0, target.HP-amount)
	events = append(events, models.Event{
		Type: models.EventHPUpdate,
		Data: models.HPUpdateEvent{ID: target.ID, HP: target.HP},
	})
	if target.HP > 0 {
		return events
	}

	target.Alive = false
	target.RespawnAtTick = st.Tick + RespawnTicks
	if attacker, ok := st.Sessions[by]; ok && by != target.ID {
		attacker.Kills++
	}
	return append(events, models.Event{
		Type: models.EventEliminated,
		Data: models.EliminatedEvent{ID: target.ID, By: by},
	})
}

func checkRespawns(st *MatchState, events []models.Event) []models.Event {
	for _, id := range st.Order {
		s := st.Sessions[id]
		if s.Alive || s.RespawnAtTick > st.Tick {
			continue
		}
		x, y := st.respawnPoint()
		s.Respawn(x, y)
		events = append(events, models.Event{
			Type: models.EventRespawn,
			Data: models.RespawnEvent{ID: s.ID, X: s.X, Y: s.Y, HP: s.HP, WeaponLevel: s.WeaponLevel},
		})
	}
	return events
}

// ZoneRadiusAt interpolates the safe-zone radius linearly over the shrink
// window and clamps to the end radius thereafter.
func ZoneRadiusAt(tick int) float64 {
	if tick < ZoneShrinkStartTick {
		return ZoneStartRadius
	}
	if tick >= ZoneShrinkEndTick {
		return ZoneEndRadius
	}
	t := float64(tick-ZoneShrinkStartTick) / float64(ZoneShrinkEndTick-ZoneShrinkStartTick)
	return ZoneStartRadius + (ZoneEndRadius-ZoneStartRadius)*t
}

func applyZoneDamage(st *MatchState, events []models.Event) []models.Event {
	cx, cy := WorldW/2, WorldH/2
	for _, id := range st.Order {
		s := st.Sessions[id]
		if !s.Alive {
			continue
		}
		if dist2(s.X, s.Y, cx, cy) <= st.CurrentRadius*st.CurrentRadius {
			continue
		}
		events = applyDamage(st, s, OutsideDamagePerSec*Dt, "zone", events)
	}
	return events
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func dist2(ax, ay, bx, by float64) float64 {
	dx, dy := ax-bx, ay-by
	return dx*dx + dy*dy
}
