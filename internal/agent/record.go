package agent

import (
	"hollowmarch/sim/catalog"
	"hollowmarch/sim/internal/world"
)

// Faction partitions agents into the two sides of a fight.
type Faction uint8

const (
	FactionFriendly Faction = iota
	FactionHostile
)

// Opponent returns the faction whose members are valid targets.
func (f Faction) Opponent() Faction {
	if f == FactionFriendly {
		return FactionHostile
	}
	return FactionFriendly
}

func (f Faction) String() string {
	if f == FactionFriendly {
		return "friendly"
	}
	return "hostile"
}

// State enumerates the behavior states of the agent machine. StateDead is
// terminal.
type State uint8

const (
	StateFollow State = iota
	StateAttack
	StateReturn
	StateDead
)

func (s State) String() string {
	switch s {
	case StateFollow:
		return "follow"
	case StateAttack:
		return "attack"
	case StateReturn:
		return "return"
	case StateDead:
		return "dead"
	default:
		return "unknown"
	}
}

// Agent is the mutable per-agent record the simulation passes operate on.
// Stats come from the shared immutable Config; TargetID is a lookup handle
// resolved against the live roster every use, never a held pointer.
type Agent struct {
	ID      string
	Type    string
	Faction Faction
	Config  *catalog.Config

	Pos    world.Vec2
	Home   world.Vec2
	Facing float64
	Health float64
	State  State

	TargetID string
	Slot     int

	// NextAttackAt is the elapsed-time threshold for the attack cooldown.
	// NextAcquireAt throttles target re-acquisition to the tick cadence.
	NextAttackAt  float64
	NextAcquireAt uint64
}

// New builds a live agent at pos with full health. The spawn point doubles as
// the agent's home anchor.
func New(id, typeID string, faction Faction, cfg *catalog.Config, pos world.Vec2) *Agent {
	health := 0.0
	if cfg != nil {
		health = cfg.MaxHealth
	}
	return &Agent{
		ID:      id,
		Type:    typeID,
		Faction: faction,
		Config:  cfg,
		Pos:     pos,
		Home:    pos,
		Health:  health,
		State:   StateFollow,
		Slot:    -1,
	}
}

// Alive reports whether the agent still participates in the simulation.
func (a *Agent) Alive() bool {
	return a != nil && a.Health > 0 && a.State != StateDead
}
