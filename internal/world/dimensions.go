package world

// Default arena extents used when a caller does not size the world.
const (
	DefaultWidth  = 2400.0
	DefaultHeight = 1600.0
)

// AgentHalf is the half-extent of an agent's body, used to keep positions
// inside the arena bounds.
const AgentHalf = 14.0

// ClampToArena keeps a point inside the playable area of a width×height arena.
func ClampToArena(p Vec2, width, height float64) Vec2 {
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	return Vec2{
		X: Clamp(p.X, AgentHalf, width-AgentHalf),
		Y: Clamp(p.Y, AgentHalf, height-AgentHalf),
	}
}
