package combat

import (
	"hollowmarch/sim/internal/agent"
	"hollowmarch/sim/internal/world"
)

// Outcome reports how an attack attempt resolved.
type Outcome uint8

const (
	OutcomeApplied Outcome = iota
	OutcomeOnCooldown
	OutcomeOutOfRange
)

func (o Outcome) String() string {
	switch o {
	case OutcomeApplied:
		return "applied"
	case OutcomeOnCooldown:
		return "on_cooldown"
	case OutcomeOutOfRange:
		return "out_of_range"
	default:
		return "unknown"
	}
}

// AttackConfig bundles one attack attempt. Cooldown state is owned by the
// caller and arrives as the Ready flag, so the resolver stays free of shared
// mutable state and serves both factions.
type AttackConfig struct {
	Attacker *agent.Agent
	Target   *agent.Agent
	Ready    bool

	// SpawnProjectile launches a ranged shot at the target's current
	// position. When nil, ranged attackers deal their damage directly.
	SpawnProjectile func(start, target world.Vec2, damage float64, faction agent.Faction, ownerID string)

	// OnDamage observes applied melee damage for telemetry.
	OnDamage func(target *agent.Agent, amount float64)
}

// TryAttack resolves a single attack attempt. Melee damage applies
// immediately and unconditionally on success; ranged attackers instead snap
// off a projectile aimed at where the target stands right now.
func TryAttack(cfg AttackConfig) Outcome {
	attacker := cfg.Attacker
	target := cfg.Target
	if attacker == nil || attacker.Config == nil || !attacker.Alive() {
		return OutcomeOutOfRange
	}
	if target == nil || !target.Alive() || target.Faction != attacker.Faction.Opponent() {
		return OutcomeOutOfRange
	}
	if !cfg.Ready {
		return OutcomeOnCooldown
	}
	if world.Dist(attacker.Pos, target.Pos) > attacker.Config.AttackRange {
		return OutcomeOutOfRange
	}

	if attacker.Config.Ranged && cfg.SpawnProjectile != nil {
		cfg.SpawnProjectile(attacker.Pos, target.Pos, attacker.Config.Damage, attacker.Faction, attacker.ID)
		return OutcomeApplied
	}

	ApplyDamage(target, attacker.Config.Damage)
	if cfg.OnDamage != nil {
		cfg.OnDamage(target, attacker.Config.Damage)
	}
	return OutcomeApplied
}

// ApplyDamage subtracts amount from the target's health, clamped at zero,
// and returns the remaining health. The state machine moves the target to
// its terminal state on its next transition check.
func ApplyDamage(target *agent.Agent, amount float64) float64 {
	if target == nil || amount <= 0 {
		return 0
	}
	target.Health -= amount
	if target.Health < 0 {
		target.Health = 0
	}
	return target.Health
}
