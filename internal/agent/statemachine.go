package agent

import (
	"hollowmarch/sim/internal/grid"
	"hollowmarch/sim/internal/world"
)

const (
	// attackRangeHysteresis widens the disengage boundary so a target sitting
	// at the edge of attack range does not flip the machine between Follow
	// and Attack every tick.
	attackRangeHysteresis = 1.5
	// followArriveMargin keeps a returning agent from re-triggering Return
	// immediately after arriving at follow distance.
	followArriveMargin = 1.0
	// stopDistance halts Follow movement near the formation point.
	stopDistance = 4.0
	// defaultAcquireInterval throttles target re-acquisition, in ticks.
	defaultAcquireInterval = 10
)

// Env captures the runtime dependencies for one agent decision pass. The
// roster slice, index, and callbacks are owned by the caller; Run only
// mutates the agents themselves.
type Env struct {
	Tick    uint64
	Delta   float64
	Elapsed float64

	LeaderPos world.Vec2
	HasLeader bool

	Agents []*Agent
	Lookup func(id string) *Agent
	Index  *grid.Index
	Ring   *Ring

	// Attack resolves an attack attempt and reports whether it applied.
	// Cooldown gating stays here, in the state machine.
	Attack func(attacker, target *Agent) bool
	// Moved is invoked after an agent's position changes.
	Moved func(a *Agent)

	AcquireInterval uint64
}

// Run executes one decision-and-behavior pass over every live agent:
// target refresh (throttled), state transitions, then the active state's
// behavior. Dead agents are skipped entirely.
func Run(env *Env) {
	if env == nil || len(env.Agents) == 0 {
		return
	}
	for _, a := range env.Agents {
		if a == nil || a.Config == nil || a.State == StateDead {
			continue
		}
		if a.Health <= 0 {
			enterDead(a)
			continue
		}
		refreshTarget(env, a)
		evaluateTransitions(env, a)
		runBehavior(env, a)
	}
}

func enterDead(a *Agent) {
	a.State = StateDead
	a.TargetID = ""
}

// resolveTarget validates the agent's target handle against the roster.
// A dead or removed target resolves to nil; callers re-check immediately
// before every use rather than trusting earlier lookups.
func resolveTarget(env *Env, a *Agent) *Agent {
	if env == nil || env.Lookup == nil || a.TargetID == "" {
		return nil
	}
	target := env.Lookup(a.TargetID)
	if target == nil || !target.Alive() {
		return nil
	}
	return target
}

// anchorPos is the point an agent follows and returns to: the leader for
// friendly agents, the home spawn anchor for hostiles or when the leader is
// absent.
func anchorPos(env *Env, a *Agent) world.Vec2 {
	if a.Faction == FactionFriendly && env.HasLeader {
		return env.LeaderPos
	}
	return a.Home
}

func refreshTarget(env *Env, a *Agent) {
	if target := resolveTarget(env, a); target != nil {
		if world.Dist(a.Pos, target.Pos) <= a.Config.DetectionRange {
			return
		}
	}
	a.TargetID = ""
	if env.Tick < a.NextAcquireAt {
		return
	}
	interval := env.AcquireInterval
	if interval == 0 {
		interval = defaultAcquireInterval
	}
	a.NextAcquireAt = env.Tick + interval
	if id, ok := FindNearestHostile(env, a.Pos, a.Config.DetectionRange, a.Faction, a.ID); ok {
		a.TargetID = id
	}
}

func evaluateTransitions(env *Env, a *Agent) {
	target := resolveTarget(env, a)
	if target == nil {
		a.TargetID = ""
	}
	anchorDist := world.Dist(a.Pos, anchorPos(env, a))

	switch a.State {
	case StateFollow:
		if target != nil && world.Dist(a.Pos, target.Pos) <= a.Config.AttackRange {
			a.State = StateAttack
		}
	case StateAttack:
		if target == nil {
			a.State = StateFollow
			return
		}
		dist := world.Dist(a.Pos, target.Pos)
		if dist > a.Config.AttackRange*attackRangeHysteresis {
			if anchorDist > a.Config.ReturnDistance {
				a.State = StateReturn
			} else {
				a.State = StateFollow
			}
			return
		}
		if anchorDist > a.Config.ReturnDistance {
			a.State = StateReturn
		}
	case StateReturn:
		if anchorDist <= a.Config.FollowDistance+followArriveMargin {
			a.State = StateFollow
		}
	}
}

func runBehavior(env *Env, a *Agent) {
	switch a.State {
	case StateFollow:
		behaviorFollow(env, a)
	case StateAttack:
		behaviorAttack(env, a)
	case StateReturn:
		moveToward(env, a, anchorPos(env, a))
	}
}

func behaviorFollow(env *Env, a *Agent) {
	if target := resolveTarget(env, a); target != nil {
		if world.Dist(a.Pos, target.Pos) > a.Config.AttackRange {
			moveToward(env, a, target.Pos)
		} else {
			faceToward(a, target.Pos)
		}
		return
	}

	dest := anchorPos(env, a)
	if a.Faction == FactionFriendly && env.Ring != nil && a.Slot >= 0 {
		dest = world.Add(dest, env.Ring.Offset(a.Slot))
	}
	if world.Dist(a.Pos, dest) > stopDistance {
		moveToward(env, a, dest)
		return
	}
	faceToward(a, anchorPos(env, a))
}

func behaviorAttack(env *Env, a *Agent) {
	target := resolveTarget(env, a)
	if target == nil {
		return
	}
	faceToward(a, target.Pos)
	if env.Elapsed < a.NextAttackAt || env.Attack == nil {
		return
	}
	if env.Attack(a, target) {
		speed := a.Config.AttackSpeed
		if speed <= 0 {
			speed = 1
		}
		a.NextAttackAt = env.Elapsed + 1/speed
	}
}

func moveToward(env *Env, a *Agent, dest world.Vec2) {
	delta := world.Sub(dest, a.Pos)
	dist := world.Dist(a.Pos, dest)
	if dist == 0 {
		return
	}
	step := a.Config.MoveSpeed * env.Delta
	if step >= dist {
		a.Pos = dest
	} else {
		a.Pos = world.Add(a.Pos, world.Scale(delta, step/dist))
	}
	a.Facing = world.Heading(delta)
	if env.Moved != nil {
		env.Moved(a)
	}
}

func faceToward(a *Agent, point world.Vec2) {
	delta := world.Sub(point, a.Pos)
	if delta.X == 0 && delta.Y == 0 {
		return
	}
	a.Facing = world.Heading(delta)
}
