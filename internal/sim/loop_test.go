package sim

import (
	"testing"
	"time"
)

type fakeCore struct {
	applied [][]Command
	steps   []TickContext
	deps    Deps
}

func (c *fakeCore) Apply(cmds []Command) { c.applied = append(c.applied, cmds) }
func (c *fakeCore) Step(ctx TickContext) { c.steps = append(c.steps, ctx) }
func (c *fakeCore) Deps() Deps           { return c.deps }

func TestLoopAdvanceDrainsIntoApply(t *testing.T) {
	core := &fakeCore{}
	loop := NewLoop(core, LoopConfig{CommandCapacity: 8}, LoopHooks{})

	for i := 0; i < 3; i++ {
		if ok, reason := loop.Enqueue(Command{Type: CommandSpawnUnit, Source: "test"}); !ok {
			t.Fatalf("enqueue %d rejected: %s", i, reason)
		}
	}
	if loop.Pending() != 3 {
		t.Fatalf("expected 3 pending, got %d", loop.Pending())
	}

	result := loop.Advance(TickContext{Tick: 1, Now: time.Unix(0, 0), Delta: 1.0 / 30})

	if result.Commands != 3 {
		t.Fatalf("expected 3 commands in result, got %d", result.Commands)
	}
	if len(core.applied) != 1 || len(core.applied[0]) != 3 {
		t.Fatalf("apply saw %v", core.applied)
	}
	if len(core.steps) != 1 || core.steps[0].Tick != 1 {
		t.Fatalf("step saw %v", core.steps)
	}
	if loop.Pending() != 0 {
		t.Fatalf("commands still pending after advance")
	}
}

func TestLoopPerSourceThrottle(t *testing.T) {
	core := &fakeCore{}
	var drops []string
	loop := NewLoop(core, LoopConfig{CommandCapacity: 16, PerSourceLimit: 2}, LoopHooks{
		OnCommandDrop: func(reason string, cmd Command) {
			drops = append(drops, reason)
		},
	})

	for i := 0; i < 2; i++ {
		if ok, _ := loop.Enqueue(Command{Source: "spammer"}); !ok {
			t.Fatalf("enqueue %d rejected under limit", i)
		}
	}
	ok, reason := loop.Enqueue(Command{Source: "spammer"})
	if ok || reason != CommandRejectQueueLimit {
		t.Fatalf("expected queue_limit rejection, got ok=%v reason=%s", ok, reason)
	}
	if len(drops) != 1 || drops[0] != CommandRejectQueueLimit {
		t.Fatalf("drop hook saw %v", drops)
	}

	// Another source is unaffected.
	if ok, _ := loop.Enqueue(Command{Source: "other"}); !ok {
		t.Fatalf("unrelated source throttled")
	}

	// Draining resets the per-source quota.
	loop.Advance(TickContext{Tick: 1, Delta: 1.0 / 30})
	if ok, _ := loop.Enqueue(Command{Source: "spammer"}); !ok {
		t.Fatalf("throttle not reset after drain")
	}
}

func TestLoopQueueFullRejection(t *testing.T) {
	core := &fakeCore{}
	loop := NewLoop(core, LoopConfig{CommandCapacity: 1}, LoopHooks{})

	loop.Enqueue(Command{Source: "a"})
	ok, reason := loop.Enqueue(Command{Source: "b"})
	if ok || reason != CommandRejectQueueFull {
		t.Fatalf("expected queue_full, got ok=%v reason=%s", ok, reason)
	}
}

func TestLoopQueueWarningHook(t *testing.T) {
	core := &fakeCore{}
	warned := 0
	loop := NewLoop(core, LoopConfig{CommandCapacity: 8, WarningStep: 2}, LoopHooks{
		OnQueueWarning: func(length int) { warned++ },
	})

	loop.Enqueue(Command{Source: "a"})
	loop.Enqueue(Command{Source: "b"})
	if warned != 1 {
		t.Fatalf("expected warning at step threshold, got %d", warned)
	}
}

func TestNewLoopNilCore(t *testing.T) {
	if NewLoop(nil, LoopConfig{}, LoopHooks{}) != nil {
		t.Fatalf("expected nil loop for nil core")
	}
}
