package sim

import (
	"context"
	"fmt"

	"hollowmarch/sim/internal/agent"
	"hollowmarch/sim/internal/combat"
	"hollowmarch/sim/internal/projectile"
	simloop "hollowmarch/sim/internal/sim"
	"hollowmarch/sim/internal/world"
	"hollowmarch/sim/logging"
	logcombat "hollowmarch/sim/logging/combat"
	"hollowmarch/sim/logging/lifecycle"
)

// Apply stages the effects of externally issued commands. It runs at the top
// of a tick, before the decision pass, on the loop goroutine.
func (w *World) Apply(cmds []simloop.Command) {
	if w == nil {
		return
	}
	for _, cmd := range cmds {
		switch cmd.Type {
		case simloop.CommandLeaderMove:
			if cmd.Leader != nil {
				w.SetLeaderPos(world.Vec2{X: cmd.Leader.X, Y: cmd.Leader.Y})
			}
		case simloop.CommandSpawnUnit:
			if cmd.Spawn != nil {
				var at *world.Vec2
				if cmd.Spawn.HasPos {
					at = &world.Vec2{X: cmd.Spawn.X, Y: cmd.Spawn.Y}
				}
				w.SpawnUnit(cmd.Spawn.UnitType, at)
			}
		case simloop.CommandSpawnEnemy:
			if cmd.Spawn != nil {
				pos := world.Vec2{X: cmd.Spawn.X, Y: cmd.Spawn.Y}
				if !cmd.Spawn.HasPos {
					pos = world.Vec2{
						X: world.RandomDistance(w.rng, world.AgentHalf, w.cfg.Width-world.AgentHalf),
						Y: world.RandomDistance(w.rng, world.AgentHalf, w.cfg.Height-world.AgentHalf),
					}
				}
				w.SpawnEnemy(cmd.Spawn.UnitType, pos)
			}
		}
	}
}

// Step advances the world by one tick: the agent decision-and-movement pass,
// then the projectile pass, then the deferred removal sweep. Each agent
// changes state at most once per step, and dead agents stay visible to the
// rest of the tick until the sweep runs.
func (w *World) Step(ctx simloop.TickContext) {
	if w == nil {
		return
	}
	w.tick = ctx.Tick
	w.elapsed += ctx.Delta

	env := &agent.Env{
		Tick:            ctx.Tick,
		Delta:           ctx.Delta,
		Elapsed:         w.elapsed,
		LeaderPos:       w.leaderPos,
		HasLeader:       w.hasLeader,
		Agents:          w.order,
		Lookup:          w.Agent,
		Index:           w.index,
		Ring:            w.ring,
		Attack:          w.resolveAttack,
		Moved:           w.agentMoved,
		AcquireInterval: w.cfg.AcquireInterval,
	}
	agent.Run(env)
	if w.deps.Metrics != nil {
		w.deps.Metrics.Add("sim_decisions_total", uint64(len(w.order)))
	}

	w.advanceProjectiles(ctx)
	w.sweepDefeated()

	if w.deps.Metrics != nil {
		w.deps.Metrics.Store("sim_agents_live", uint64(len(w.order)))
		w.deps.Metrics.Store("sim_projectiles_live", uint64(len(w.projectiles)))
	}
}

func (w *World) agentMoved(a *agent.Agent) {
	a.Pos = world.ClampToArena(a.Pos, w.cfg.Width, w.cfg.Height)
	w.index.Upsert(a.ID, a.Pos.X, a.Pos.Y)
}

// resolveAttack feeds one cooldown-cleared attempt through the combat
// resolver. Ranged attackers spawn a projectile instead of applying damage
// directly.
func (w *World) resolveAttack(attacker, target *agent.Agent) bool {
	outcome := combat.TryAttack(combat.AttackConfig{
		Attacker:        attacker,
		Target:          target,
		Ready:           true,
		SpawnProjectile: w.spawnProjectile,
		OnDamage: func(victim *agent.Agent, amount float64) {
			logcombat.Damage(context.Background(), w.deps.Publisher, w.tick,
				entityRef(attacker), entityRef(victim), amount, victim.Health, false)
		},
	})
	return outcome == combat.OutcomeApplied
}

func (w *World) spawnProjectile(start, target world.Vec2, damage float64, faction agent.Faction, ownerID string) {
	owner := w.Agent(ownerID)
	speed := 0.0
	arcHeight := 0.0
	if owner != nil && owner.Config != nil {
		speed = owner.Config.ProjectileSpeed
		arcHeight = owner.Config.ArcHeight
	}
	id := fmt.Sprintf("proj-%d", w.nextProjectileID.Add(1))
	p := projectile.Launch(projectile.LaunchConfig{
		ID:        id,
		Start:     start,
		Target:    target,
		Speed:     speed,
		ArcHeight: arcHeight,
		Damage:    damage,
		Faction:   faction,
		OwnerID:   ownerID,
	})
	w.projectiles = append(w.projectiles, p)

	logcombat.ProjectileLaunched(context.Background(), w.deps.Publisher, w.tick,
		entityRef(owner), id, target.X, target.Y, arcHeight)
	if w.deps.Metrics != nil {
		w.deps.Metrics.Add("sim_projectiles_spawned_total", 1)
	}
}

func (w *World) advanceProjectiles(ctx simloop.TickContext) {
	kept := w.projectiles[:0]
	for _, p := range w.projectiles {
		result := p.Advance(projectile.AdvanceConfig{
			Delta: ctx.Delta,
			Visit: w.visitAgents,
			OnHit: func(victim *agent.Agent, amount float64) {
				logcombat.Damage(context.Background(), w.deps.Publisher, w.tick,
					logging.EntityRef{ID: p.ID, Kind: logging.EntityKindProjectile},
					entityRef(victim), amount, victim.Health, true)
			},
		})
		switch {
		case result.Hit:
			logcombat.ProjectileResolved(context.Background(), w.deps.Publisher, w.tick,
				p.ID, "hit", p.Target.X, p.Target.Y)
		case result.Landed:
			logcombat.ProjectileResolved(context.Background(), w.deps.Publisher, w.tick,
				p.ID, "landed", p.Target.X, p.Target.Y)
		case result.Removed:
			logcombat.ProjectileResolved(context.Background(), w.deps.Publisher, w.tick,
				p.ID, "decayed", p.Target.X, p.Target.Y)
		}
		if !result.Removed {
			kept = append(kept, p)
		}
	}
	for i := len(kept); i < len(w.projectiles); i++ {
		w.projectiles[i] = nil
	}
	w.projectiles = kept
}

// sweepDefeated removes dead agents at the end of the step so that roster
// lookups earlier in the same tick never observe a half-removed agent.
// Removal frees the formation slot and emits the death events.
func (w *World) sweepDefeated() {
	kept := w.order[:0]
	for _, a := range w.order {
		if a.State != agent.StateDead {
			kept = append(kept, a)
			continue
		}
		delete(w.agents, a.ID)
		w.index.Remove(a.ID)
		if a.Faction == agent.FactionFriendly && a.Slot >= 0 {
			w.ring.Release(a.Slot)
			a.Slot = -1
		}

		ref := entityRef(a)
		logcombat.Defeat(context.Background(), w.deps.Publisher, w.tick, ref)
		lifecycle.Died(context.Background(), w.deps.Publisher, w.tick, ref)
		if a.Faction == agent.FactionFriendly {
			w.pushEvent(EventUnitDied, a.ID, a.Type)
		} else {
			w.pushEvent(EventEnemyDied, a.ID, a.Type)
		}
		if w.deps.Metrics != nil {
			w.deps.Metrics.Add("sim_agents_defeated_total", 1)
		}
	}
	for i := len(kept); i < len(w.order); i++ {
		w.order[i] = nil
	}
	w.order = kept
}

func entityRef(a *agent.Agent) logging.EntityRef {
	if a == nil {
		return logging.EntityRef{Kind: logging.EntityKindUnknown}
	}
	kind := logging.EntityKindEnemy
	if a.Faction == agent.FactionFriendly {
		kind = logging.EntityKindUnit
	}
	return logging.EntityRef{ID: a.ID, Kind: kind}
}
