package lifecycle

import (
	"context"

	"hollowmarch/sim/logging"
)

const (
	// EventUnitSpawned is emitted when a friendly unit enters the roster.
	EventUnitSpawned logging.EventType = "lifecycle.unit_spawned"
	// EventUnitDied is emitted when a friendly unit is removed after defeat.
	EventUnitDied logging.EventType = "lifecycle.unit_died"
	// EventEnemyDied is emitted when a hostile agent is removed after defeat.
	EventEnemyDied logging.EventType = "lifecycle.enemy_died"
	// EventSpawnRejected is emitted when a spawn request fails preconditions.
	EventSpawnRejected logging.EventType = "lifecycle.spawn_rejected"
)

// SpawnPayload describes a spawn event.
type SpawnPayload struct {
	UnitType string  `json:"unitType"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Slot     int     `json:"slot,omitempty"`
}

// RejectPayload carries the reason a spawn request was refused.
type RejectPayload struct {
	UnitType string `json:"unitType"`
	Reason   string `json:"reason"`
}

// UnitSpawned publishes a lifecycle.unit_spawned event.
func UnitSpawned(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, unitType string, x, y float64, slot int) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventUnitSpawned,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryGameplay,
		Payload:  SpawnPayload{UnitType: unitType, X: x, Y: y, Slot: slot},
	})
}

// Died publishes the faction-appropriate death event.
func Died(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef) {
	if pub == nil {
		return
	}
	eventType := EventEnemyDied
	if actor.Kind == logging.EntityKindUnit {
		eventType = EventUnitDied
	}
	pub.Publish(ctx, logging.Event{
		Type:     eventType,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryGameplay,
	})
}

// SpawnRejected publishes a lifecycle.spawn_rejected event.
func SpawnRejected(ctx context.Context, pub logging.Publisher, tick uint64, unitType, reason string) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventSpawnRejected,
		Tick:     tick,
		Actor:    logging.EntityRef{Kind: logging.EntityKindWorld},
		Severity: logging.SeverityWarn,
		Category: logging.CategoryGameplay,
		Payload:  RejectPayload{UnitType: unitType, Reason: reason},
	})
}
