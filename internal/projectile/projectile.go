package projectile

import (
	"math"

	"hollowmarch/sim/internal/agent"
	"hollowmarch/sim/internal/combat"
	"hollowmarch/sim/internal/world"
)

// Status tracks a projectile through its lifecycle. Every projectile resolves
// to exactly one of Hit or Landed; a Landed projectile decays and is removed.
type Status uint8

const (
	StatusFlying Status = iota
	StatusHit
	StatusLanded
	StatusDecayed
)

func (s Status) String() string {
	switch s {
	case StatusFlying:
		return "flying"
	case StatusHit:
		return "hit"
	case StatusLanded:
		return "landed"
	case StatusDecayed:
		return "decayed"
	default:
		return "unknown"
	}
}

const (
	// DefaultHitRadius bounds the landing scan for victims.
	DefaultHitRadius = 22.0
	// DefaultStickDuration holds a missed projectile in the ground before it
	// starts fading.
	DefaultStickDuration = 2.5
	// DefaultFadeDuration is the fade-out window after the stick period.
	DefaultFadeDuration = 0.4
	// minFlightDuration keeps point-blank shots steppable.
	minFlightDuration = 0.05

	headingEpsilon = 1e-3
)

// LaunchConfig captures everything a projectile needs at launch. The target
// position is snapshotted here and never re-tracked.
type LaunchConfig struct {
	ID        string
	Start     world.Vec2
	Target    world.Vec2
	Speed     float64
	ArcHeight float64
	Damage    float64
	Faction   agent.Faction
	OwnerID   string

	HitRadius     float64
	StickDuration float64
	FadeDuration  float64
}

// State is one in-flight projectile. It advances independently of the agent
// that launched it.
type State struct {
	ID        string
	Start     world.Vec2
	Target    world.Vec2
	Duration  float64
	ArcHeight float64
	Damage    float64
	Faction   agent.Faction
	OwnerID   string

	Status Status

	elapsed       float64
	decayElapsed  float64
	hitRadius     float64
	stickDuration float64
	fadeDuration  float64
}

// Launch derives the flight duration from distance and speed and returns a
// Flying projectile.
func Launch(cfg LaunchConfig) *State {
	speed := cfg.Speed
	if speed <= 0 {
		speed = 1
	}
	duration := world.Dist(cfg.Start, cfg.Target) / speed
	if duration < minFlightDuration {
		duration = minFlightDuration
	}
	hitRadius := cfg.HitRadius
	if hitRadius <= 0 {
		hitRadius = DefaultHitRadius
	}
	stick := cfg.StickDuration
	if stick <= 0 {
		stick = DefaultStickDuration
	}
	fade := cfg.FadeDuration
	if fade <= 0 {
		fade = DefaultFadeDuration
	}
	return &State{
		ID:            cfg.ID,
		Start:         cfg.Start,
		Target:        cfg.Target,
		Duration:      duration,
		ArcHeight:     cfg.ArcHeight,
		Damage:        cfg.Damage,
		Faction:       cfg.Faction,
		OwnerID:       cfg.OwnerID,
		Status:        StatusFlying,
		hitRadius:     hitRadius,
		stickDuration: stick,
		fadeDuration:  fade,
	}
}

// Progress is the normalized flight time t in [0, 1].
func (p *State) Progress() float64 {
	if p == nil || p.Duration <= 0 {
		return 1
	}
	return world.Clamp(p.elapsed/p.Duration, 0, 1)
}

// GroundPositionAt interpolates the projectile's ground-plane position at
// normalized time t.
func (p *State) GroundPositionAt(t float64) world.Vec2 {
	if p == nil {
		return world.Vec2{}
	}
	return world.Lerp(p.Start, p.Target, world.Clamp(t, 0, 1))
}

// HeightAt is the vertical arc offset at normalized time t: zero at both
// endpoints, peaking at exactly ArcHeight at t = 0.5.
func (p *State) HeightAt(t float64) float64 {
	if p == nil || p.ArcHeight <= 0 {
		return 0
	}
	t = world.Clamp(t, 0, 1)
	return 4 * p.ArcHeight * t * (1 - t)
}

// RenderPositionAt is the drawn position: ground position lifted by the arc.
func (p *State) RenderPositionAt(t float64) world.Vec2 {
	pos := p.GroundPositionAt(t)
	pos.Y -= p.HeightAt(t)
	return pos
}

// Heading derives the facing angle from the finite-difference direction of
// the rendered trajectory.
func (p *State) Heading() float64 {
	if p == nil {
		return 0
	}
	t := p.Progress()
	ahead := t + headingEpsilon
	if ahead > 1 {
		ahead = 1
		t = 1 - headingEpsilon
	}
	delta := world.Sub(p.RenderPositionAt(ahead), p.RenderPositionAt(t))
	if delta.X == 0 && delta.Y == 0 {
		delta = world.Sub(p.Target, p.Start)
	}
	return world.Heading(delta)
}

// FadeAlpha reports the render opacity: 1 until the stick period ends, then
// linearly down to 0 across the fade window. Fading never affects hit
// resolution; the projectile is already Landed.
func (p *State) FadeAlpha() float64 {
	if p == nil {
		return 0
	}
	if p.Status != StatusLanded {
		if p.Status == StatusFlying {
			return 1
		}
		return 0
	}
	if p.decayElapsed <= p.stickDuration {
		return 1
	}
	if p.fadeDuration <= 0 {
		return 0
	}
	return world.Clamp(1-(p.decayElapsed-p.stickDuration)/p.fadeDuration, 0, 1)
}

// AdvanceConfig carries the per-tick dependencies for stepping a projectile.
type AdvanceConfig struct {
	Delta float64

	// Visit iterates the live roster. The projectile applies its own
	// faction, owner, and liveness filters.
	Visit func(visit func(a *agent.Agent) bool)

	// OnHit observes an applied hit for telemetry.
	OnHit func(victim *agent.Agent, amount float64)
}

// AdvanceResult reports what a single step changed.
type AdvanceResult struct {
	Hit      bool
	VictimID string
	Landed   bool
	Removed  bool
}

// Advance steps the projectile by cfg.Delta seconds. Flying projectiles move
// along the arc; direct shots (zero arc height) also test collision on the
// way. At t >= 1 the landing resolves against whoever stands at the target
// point. Landed projectiles sit through the stick period, fade, and are
// removed.
func (p *State) Advance(cfg AdvanceConfig) AdvanceResult {
	result := AdvanceResult{}
	if p == nil || cfg.Delta <= 0 {
		return result
	}

	switch p.Status {
	case StatusFlying:
		p.elapsed += cfg.Delta
		t := p.Progress()

		if t < 1 {
			if p.ArcHeight <= 0 {
				if victim := p.nearestVictim(cfg, p.GroundPositionAt(t)); victim != nil {
					p.resolveHit(cfg, victim, &result)
				}
			}
			return result
		}

		if victim := p.nearestVictim(cfg, p.Target); victim != nil {
			p.resolveHit(cfg, victim, &result)
			return result
		}
		p.Status = StatusLanded
		p.decayElapsed = 0
		result.Landed = true
	case StatusLanded:
		p.decayElapsed += cfg.Delta
		if p.decayElapsed >= p.stickDuration+p.fadeDuration {
			p.Status = StatusDecayed
			result.Removed = true
		}
	default:
		result.Removed = true
	}
	return result
}

func (p *State) resolveHit(cfg AdvanceConfig, victim *agent.Agent, result *AdvanceResult) {
	combat.ApplyDamage(victim, p.Damage)
	if cfg.OnHit != nil {
		cfg.OnHit(victim, p.Damage)
	}
	p.Status = StatusHit
	result.Hit = true
	result.VictimID = victim.ID
	result.Removed = true
}

// nearestVictim scans for the closest living opposing-faction agent within
// the hit radius of point. The owner is always excluded, as is everyone on
// the owning faction's side.
func (p *State) nearestVictim(cfg AdvanceConfig, point world.Vec2) *agent.Agent {
	if cfg.Visit == nil {
		return nil
	}
	opponent := p.Faction.Opponent()
	radiusSq := p.hitRadius * p.hitRadius
	var best *agent.Agent
	bestDistSq := math.MaxFloat64
	cfg.Visit(func(a *agent.Agent) bool {
		if a == nil || a.ID == p.OwnerID || a.Faction != opponent || !a.Alive() {
			return true
		}
		distSq := world.DistSq(point, a.Pos)
		if distSq > radiusSq {
			return true
		}
		if distSq < bestDistSq-1e-6 || (math.Abs(distSq-bestDistSq) <= 1e-6 && best != nil && a.ID < best.ID) {
			bestDistSq = distSq
			best = a
		}
		return true
	})
	return best
}
