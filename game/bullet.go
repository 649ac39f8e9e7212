package game

// Bullet is a live projectile. IDs come from a per-match sequence so they
// never collide while live.
type Bullet struct {
	ID      int
	OwnerID string
	X, Y    float64
	VX, VY  float64
	Damage  float64
	Life    float64 // seconds remaining
}
