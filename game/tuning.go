package game

// World constants. These match the client's map and sprite sizes; they are
// fixed configuration, not runtime-negotiable.
const (
	WorldW       = 2600.0
	WorldH       = 1800.0
	PlayerRadius = 16.0

	TickRate = 30
	Dt       = 1.0 / float64(TickRate)

	MatchSize = 2

	StartHP        = 100.0
	RespawnSeconds = 3
	RespawnTicks   = RespawnSeconds * TickRate

	// Match spawn points sit either side of the map center so players
	// immediately see each other; respawns jitter around the center.
	SpawnOffsetX  = 120.0
	RespawnJitter = 140.0

	BulletTTLSeconds = 1.2

	ZoneStartRadius           = 900.0
	ZoneEndRadius             = 320.0
	ZoneShrinkStartSeconds    = 20
	ZoneShrinkDurationSeconds = 15
	ZoneShrinkStartTick       = ZoneShrinkStartSeconds * TickRate
	ZoneShrinkEndTick         = ZoneShrinkStartTick + ZoneShrinkDurationSeconds*TickRate
	OutsideDamagePerSec       = 4.0

	MaxNameLen = 16

	// Shoot requests buffered per session per tick beyond this are dropped;
	// the fire-rate gate rejects them anyway.
	MaxShotsPerTick = 8
)
