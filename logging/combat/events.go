package combat

import (
	"context"

	"hollowmarch/sim/logging"
)

const (
	// EventDamage is emitted when an attack or projectile deals damage.
	EventDamage logging.EventType = "combat.damage"
	// EventDefeat is emitted when an agent's health reaches zero.
	EventDefeat logging.EventType = "combat.defeat"
	// EventProjectileLaunched is emitted when a ranged attack spawns a projectile.
	EventProjectileLaunched logging.EventType = "combat.projectile_launched"
	// EventProjectileResolved is emitted when a projectile hits, lands, or decays.
	EventProjectileResolved logging.EventType = "combat.projectile_resolved"
)

// DamagePayload captures the amount dealt to a single target.
type DamagePayload struct {
	Amount       float64 `json:"amount"`
	TargetHealth float64 `json:"targetHealth"`
	Ranged       bool    `json:"ranged,omitempty"`
}

// ProjectilePayload describes a projectile lifecycle event.
type ProjectilePayload struct {
	Outcome   string  `json:"outcome,omitempty"`
	TargetX   float64 `json:"targetX"`
	TargetY   float64 `json:"targetY"`
	ArcHeight float64 `json:"arcHeight,omitempty"`
}

// Damage publishes a combat.damage event.
func Damage(ctx context.Context, pub logging.Publisher, tick uint64, actor, target logging.EntityRef, amount, targetHealth float64, ranged bool) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventDamage,
		Tick:     tick,
		Actor:    actor,
		Targets:  []logging.EntityRef{target},
		Severity: logging.SeverityInfo,
		Category: logging.CategoryCombat,
		Payload:  DamagePayload{Amount: amount, TargetHealth: targetHealth, Ranged: ranged},
	})
}

// Defeat publishes a combat.defeat event.
func Defeat(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventDefeat,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryCombat,
	})
}

// ProjectileLaunched publishes a combat.projectile_launched event.
func ProjectileLaunched(ctx context.Context, pub logging.Publisher, tick uint64, owner logging.EntityRef, projectileID string, targetX, targetY, arcHeight float64) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventProjectileLaunched,
		Tick:     tick,
		Actor:    owner,
		Targets:  []logging.EntityRef{{ID: projectileID, Kind: logging.EntityKindProjectile}},
		Severity: logging.SeverityDebug,
		Category: logging.CategoryCombat,
		Payload:  ProjectilePayload{TargetX: targetX, TargetY: targetY, ArcHeight: arcHeight},
	})
}

// ProjectileResolved publishes a combat.projectile_resolved event with the
// terminal outcome ("hit", "landed", or "decayed").
func ProjectileResolved(ctx context.Context, pub logging.Publisher, tick uint64, projectileID, outcome string, targetX, targetY float64) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventProjectileResolved,
		Tick:     tick,
		Actor:    logging.EntityRef{ID: projectileID, Kind: logging.EntityKindProjectile},
		Severity: logging.SeverityDebug,
		Category: logging.CategoryCombat,
		Payload:  ProjectilePayload{Outcome: outcome, TargetX: targetX, TargetY: targetY},
	})
}
