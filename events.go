package sim

// EventKind names the gameplay events the core emits toward external
// systems (resource ledger, progression, UI). Delivery is a drained queue so
// emission order is deterministic and inspectable.
type EventKind string

const (
	EventUnitSpawned EventKind = "unit_spawned"
	EventUnitDied    EventKind = "unit_died"
	EventEnemyDied   EventKind = "enemy_died"
)

// Event is a fire-and-forget gameplay notification.
type Event struct {
	Kind     EventKind
	AgentID  string
	UnitType string
	Tick     uint64
}

func (w *World) pushEvent(kind EventKind, agentID, unitType string) {
	if w == nil {
		return
	}
	w.events = append(w.events, Event{
		Kind:     kind,
		AgentID:  agentID,
		UnitType: unitType,
		Tick:     w.tick,
	})
}

// DrainEvents returns every event emitted since the last drain, in emission
// order, and clears the queue.
func (w *World) DrainEvents() []Event {
	if w == nil || len(w.events) == 0 {
		return nil
	}
	drained := w.events
	w.events = make([]Event, 0, len(drained))
	return drained
}
