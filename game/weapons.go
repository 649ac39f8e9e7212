package game

// Weapon is one tier of the weapon table. Damage, speed and rate come from
// the tier alone; client-proposed values are ignored.
type Weapon struct {
	Level       int
	Name        string
	Damage      float64
	FireRateMs  int
	MagSize     int
	ReloadMs    int
	BulletSpeed float64
}

var weapons = []Weapon{
	{Level: 1, Name: "Basic Blaster", Damage: 10, FireRateMs: 260, MagSize: 10, ReloadMs: 3000, BulletSpeed: 750},
	{Level: 2, Name: "Rapid Blaster", Damage: 12, FireRateMs: 240, MagSize: 10, ReloadMs: 3000, BulletSpeed: 800},
}

const StartWeaponLevel = 1

// WeaponByLevel returns the weapon for the given tier, falling back to
// tier 1 for unknown levels.
func WeaponByLevel(level int) Weapon {
	for _, w := range weapons {
		if w.Level == level {
			return w
		}
	}
	return weapons[0]
}

// FireRateTicks is the minimum whole ticks between accepted shots.
func (w Weapon) FireRateTicks() int {
	return (w.FireRateMs*TickRate + 999) / 1000
}

// ReloadTicks is the reload duration in whole ticks.
func (w Weapon) ReloadTicks() int {
	return (w.ReloadMs*TickRate + 999) / 1000
}
