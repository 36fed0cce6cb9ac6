package sim

import (
	"context"
	"fmt"
	"math"

	"hollowmarch/sim/catalog"
	"hollowmarch/sim/internal/agent"
	"hollowmarch/sim/internal/world"
	"hollowmarch/sim/logging"
	"hollowmarch/sim/logging/lifecycle"
)

// SpawnRejectReason explains a refused spawn request. Empty means success.
type SpawnRejectReason string

const (
	SpawnRejectUnknownType SpawnRejectReason = "unknown_type"
	SpawnRejectArmyLimit   SpawnRejectReason = "army_limit"
	SpawnRejectResources   SpawnRejectReason = "resources"
)

// spawnScatter keeps fresh spawns from stacking exactly on the spawn point.
const spawnScatter = 24.0

// SpawnUnit creates a friendly unit of the given type. Position defaults to
// the unit's formation point near the leader when at is nil. All ledger
// preconditions are checked before any state is touched; a rejected spawn
// creates nothing.
func (w *World) SpawnUnit(unitType string, at *world.Vec2) (string, SpawnRejectReason) {
	if w == nil {
		return "", SpawnRejectUnknownType
	}
	cfg := w.library.Config(unitType)
	if cfg == nil {
		w.rejectSpawn(unitType, SpawnRejectUnknownType)
		return "", SpawnRejectUnknownType
	}
	if !w.ledger.CanAddUnit() {
		w.rejectSpawn(unitType, SpawnRejectArmyLimit)
		return "", SpawnRejectArmyLimit
	}
	if !w.ledger.SpendResources(cfg.Cost) {
		w.rejectSpawn(unitType, SpawnRejectResources)
		return "", SpawnRejectResources
	}

	id := fmt.Sprintf("unit-%d", w.nextUnitID.Add(1))
	slot := w.ring.Assign()

	var pos world.Vec2
	switch {
	case at != nil:
		pos = *at
	case w.hasLeader:
		pos = world.Add(w.leaderPos, w.ring.Offset(slot))
	default:
		pos = world.Vec2{X: w.cfg.Width / 2, Y: w.cfg.Height / 2}
	}
	pos = w.scatter(pos)

	a := agent.New(id, unitType, agent.FactionFriendly, cfg, pos)
	a.Slot = slot
	w.insertAgent(a)
	w.ledger.UpdateArmyCount(1)

	w.pushEvent(EventUnitSpawned, id, unitType)
	lifecycle.UnitSpawned(context.Background(), w.deps.Publisher, w.tick,
		logging.EntityRef{ID: id, Kind: logging.EntityKindUnit}, unitType, pos.X, pos.Y, slot)
	if w.deps.Metrics != nil {
		w.deps.Metrics.Add("sim_units_spawned_total", 1)
	}
	return id, ""
}

// SpawnEnemy creates a hostile agent anchored to its spawn point. Enemies
// bypass the ledger; their budget is the wave director's concern.
func (w *World) SpawnEnemy(unitType string, at world.Vec2) (string, SpawnRejectReason) {
	if w == nil {
		return "", SpawnRejectUnknownType
	}
	cfg := w.library.Config(unitType)
	if cfg == nil {
		w.rejectSpawn(unitType, SpawnRejectUnknownType)
		return "", SpawnRejectUnknownType
	}

	id := fmt.Sprintf("enemy-%d", w.nextEnemyID.Add(1))
	pos := world.ClampToArena(at, w.cfg.Width, w.cfg.Height)
	a := agent.New(id, unitType, agent.FactionHostile, cfg, pos)
	w.insertAgent(a)

	if w.deps.Metrics != nil {
		w.deps.Metrics.Add("sim_enemies_spawned_total", 1)
	}
	return id, ""
}

// ApplyUpgrade derives a new Config for the unit type, installs it in the
// library for future spawns, and reassigns it to every live agent of that
// type. Health is rescaled in proportion so a wounded agent stays wounded.
// The previous Config is never mutated.
func (w *World) ApplyUpgrade(unitType string, up catalog.Upgrade) error {
	if w == nil {
		return fmt.Errorf("sim: nil world")
	}
	current := w.library.Config(unitType)
	if current == nil {
		return fmt.Errorf("sim: unknown unit type %q", unitType)
	}
	derived := catalog.ApplyUpgrade(current, up)
	if _, err := w.library.Replace(*derived); err != nil {
		return err
	}
	installed := w.library.Config(unitType)
	for _, a := range w.order {
		if a.Type != unitType || !a.Alive() {
			continue
		}
		ratio := 1.0
		if a.Config != nil && a.Config.MaxHealth > 0 {
			ratio = a.Health / a.Config.MaxHealth
		}
		a.Config = installed
		a.Health = installed.MaxHealth * ratio
	}
	return nil
}

func (w *World) insertAgent(a *agent.Agent) {
	w.agents[a.ID] = a
	w.order = append(w.order, a)
	w.index.Upsert(a.ID, a.Pos.X, a.Pos.Y)
}

func (w *World) scatter(pos world.Vec2) world.Vec2 {
	angle := world.RandomAngle(w.rng)
	dist := world.RandomDistance(w.rng, 0, spawnScatter)
	scattered := world.Vec2{
		X: pos.X + dist*math.Cos(angle),
		Y: pos.Y + dist*math.Sin(angle),
	}
	return world.ClampToArena(scattered, w.cfg.Width, w.cfg.Height)
}

func (w *World) rejectSpawn(unitType string, reason SpawnRejectReason) {
	lifecycle.SpawnRejected(context.Background(), w.deps.Publisher, w.tick, unitType, string(reason))
	if w.deps.Metrics != nil {
		w.deps.Metrics.Add("sim_spawns_rejected_total", 1)
	}
}
