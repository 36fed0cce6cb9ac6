package sim

import "time"

// CommandType names the external requests the simulation accepts.
type CommandType string

const (
	// CommandSpawnUnit requests a friendly unit spawn near the leader.
	CommandSpawnUnit CommandType = "spawn_unit"
	// CommandSpawnEnemy requests a hostile spawn at a position.
	CommandSpawnEnemy CommandType = "spawn_enemy"
	// CommandLeaderMove reports the leader's latest position.
	CommandLeaderMove CommandType = "leader_move"
)

// Command is the only way external systems mutate the world: staged through
// the loop's buffer and applied at the top of a tick.
type Command struct {
	Type     CommandType
	Source   string
	IssuedAt time.Time

	Spawn  *SpawnCommand
	Leader *LeaderMoveCommand
}

// SpawnCommand carries a spawn request. Position is optional for friendly
// units, which default to scattering near the leader.
type SpawnCommand struct {
	UnitType string
	X        float64
	Y        float64
	HasPos   bool
}

// LeaderMoveCommand carries the leader's position for the coming tick.
type LeaderMoveCommand struct {
	X float64
	Y float64
}
