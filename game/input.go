package game

// MoveInput is a client-proposed position, applied at the next tick
// boundary after clamping to world bounds.
type MoveInput struct {
	X, Y float64
}

// ShootInput is a bullet origin plus aim direction.
type ShootInput struct {
	X, Y   float64
	DX, DY float64
}

// Input buffers everything a session sent since the previous tick. Only the
// latest move is kept; shots queue up to MaxShotsPerTick.
type Input struct {
	Move   *MoveInput
	Shots  []ShootInput
	Reload bool
}
