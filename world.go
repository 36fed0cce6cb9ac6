// Package sim is the autonomous combat core of Hollowmarch: a single-threaded,
// tick-driven simulation of player-owned units following their leader and
// fighting hostile agents, including the arc-trajectory projectiles ranged
// attackers use. External systems talk to it through commands, events, and
// snapshots; it holds no global state.
package sim

import (
	"math/rand"
	"sync/atomic"

	"hollowmarch/sim/catalog"
	"hollowmarch/sim/internal/agent"
	"hollowmarch/sim/internal/grid"
	"hollowmarch/sim/internal/projectile"
	simloop "hollowmarch/sim/internal/sim"
	"hollowmarch/sim/internal/world"
)

// Ledger is the external resource/army accounting the core consults at spawn
// time only; nothing here is called mid-simulation.
type Ledger interface {
	SpendResources(cost int) bool
	CanAddUnit() bool
	UpdateArmyCount(delta int)
}

type allowAllLedger struct{}

func (allowAllLedger) SpendResources(int) bool { return true }
func (allowAllLedger) CanAddUnit() bool        { return true }
func (allowAllLedger) UpdateArmyCount(int)     {}

// WorldConfig sizes and seeds a new world.
type WorldConfig struct {
	Seed            string
	Width           float64
	Height          float64
	FormationRadius float64
	AcquireInterval uint64
}

// World owns the live agent roster, the formation ring, and the active
// projectile set. It is single-threaded: every mutation happens on the loop
// goroutine, one step per tick. Roster removal is deferred to the end of a
// step so in-flight queries never observe a partially-removed agent.
type World struct {
	cfg  WorldConfig
	deps simloop.Deps

	library *catalog.Library
	ledger  Ledger

	tick    uint64
	elapsed float64

	leaderPos world.Vec2
	hasLeader bool

	agents map[string]*agent.Agent
	order  []*agent.Agent
	index  *grid.Index
	ring   *agent.Ring

	projectiles []*projectile.State

	nextUnitID       atomic.Uint64
	nextEnemyID      atomic.Uint64
	nextProjectileID atomic.Uint64

	rng    *rand.Rand
	events []Event
}

// NewWorld builds an empty world. A nil ledger permits every spawn; a nil
// library rejects them all.
func NewWorld(cfg WorldConfig, library *catalog.Library, ledger Ledger, deps simloop.Deps) *World {
	if cfg.Width <= 0 {
		cfg.Width = world.DefaultWidth
	}
	if cfg.Height <= 0 {
		cfg.Height = world.DefaultHeight
	}
	if ledger == nil {
		ledger = allowAllLedger{}
	}
	seed := cfg.Seed
	if seed == "" {
		seed = world.DefaultSeed
	}
	return &World{
		cfg:         cfg,
		deps:        deps,
		library:     library,
		ledger:      ledger,
		agents:      make(map[string]*agent.Agent),
		order:       make([]*agent.Agent, 0),
		index:       grid.NewIndex(0),
		ring:        agent.NewRing(cfg.FormationRadius),
		projectiles: make([]*projectile.State, 0),
		rng:         world.NewDeterministicRNG(seed, "world"),
	}
}

// Deps returns the injected dependencies, satisfying the loop's engine
// contract.
func (w *World) Deps() simloop.Deps {
	if w == nil {
		return simloop.Deps{}
	}
	return w.deps
}

// Tick reports the last completed tick.
func (w *World) Tick() uint64 {
	if w == nil {
		return 0
	}
	return w.tick
}

// LeaderPos reports the leader's position and whether one is known.
func (w *World) LeaderPos() (world.Vec2, bool) {
	if w == nil {
		return world.Vec2{}, false
	}
	return w.leaderPos, w.hasLeader
}

// SetLeaderPos records the leader's position for subsequent ticks.
func (w *World) SetLeaderPos(pos world.Vec2) {
	if w == nil {
		return
	}
	w.leaderPos = world.ClampToArena(pos, w.cfg.Width, w.cfg.Height)
	w.hasLeader = true
}

// Agent resolves an agent ID against the live roster.
func (w *World) Agent(id string) *agent.Agent {
	if w == nil || id == "" {
		return nil
	}
	return w.agents[id]
}

// AgentCount reports the number of live agents in the given faction.
func (w *World) AgentCount(faction agent.Faction) int {
	if w == nil {
		return 0
	}
	count := 0
	for _, a := range w.order {
		if a.Faction == faction && a.Alive() {
			count++
		}
	}
	return count
}

// ProjectileCount reports the number of active projectiles.
func (w *World) ProjectileCount() int {
	if w == nil {
		return 0
	}
	return len(w.projectiles)
}

func (w *World) visitAgents(visit func(a *agent.Agent) bool) {
	for _, a := range w.order {
		if !visit(a) {
			return
		}
	}
}
