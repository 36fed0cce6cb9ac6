package sinks

import (
	"bytes"
	"strings"
	"testing"

	"hollowmarch/sim/logging"
	logcombat "hollowmarch/sim/logging/combat"
	"hollowmarch/sim/logging/lifecycle"
)

func TestConsoleSinkFormatsDamage(t *testing.T) {
	var buf bytes.Buffer
	sink := NewConsoleSink(&buf, logging.ConsoleConfig{})

	err := sink.Write(logging.Event{
		Type:     logcombat.EventDamage,
		Tick:     42,
		Actor:    logging.EntityRef{ID: "unit-1", Kind: logging.EntityKindUnit},
		Targets:  []logging.EntityRef{{ID: "enemy-3", Kind: logging.EntityKindEnemy}},
		Severity: logging.SeverityInfo,
		Payload:  logcombat.DamagePayload{Amount: 15, TargetHealth: 65},
	})
	if err != nil {
		t.Fatalf("write: %v", err)
	}

	line := buf.String()
	want := "tick=42 combat.damage unit:unit-1 strikes enemy:enemy-3 for 15 (65 hp left)"
	if !strings.Contains(line, want) {
		t.Fatalf("damage line %q missing %q", line, want)
	}
	if strings.Contains(line, "\x1b[") {
		t.Fatalf("uncolored sink emitted ANSI codes: %q", line)
	}
}

func TestConsoleSinkFormatsRangedAndProjectileEvents(t *testing.T) {
	var buf bytes.Buffer
	sink := NewConsoleSink(&buf, logging.ConsoleConfig{})

	sink.Write(logging.Event{
		Type:    logcombat.EventDamage,
		Tick:    7,
		Actor:   logging.EntityRef{ID: "proj-2", Kind: logging.EntityKindProjectile},
		Targets: []logging.EntityRef{{ID: "enemy-1", Kind: logging.EntityKindEnemy}},
		Payload: logcombat.DamagePayload{Amount: 14, TargetHealth: 46, Ranged: true},
	})
	sink.Write(logging.Event{
		Type:    logcombat.EventProjectileLaunched,
		Tick:    7,
		Actor:   logging.EntityRef{ID: "unit-2", Kind: logging.EntityKindUnit},
		Targets: []logging.EntityRef{{ID: "proj-2", Kind: logging.EntityKindProjectile}},
		Payload: logcombat.ProjectilePayload{TargetX: 300, TargetY: 200, ArcHeight: 48},
	})
	sink.Write(logging.Event{
		Type:    logcombat.EventProjectileResolved,
		Tick:    9,
		Actor:   logging.EntityRef{ID: "proj-2", Kind: logging.EntityKindProjectile},
		Payload: logcombat.ProjectilePayload{Outcome: "landed", TargetX: 300, TargetY: 200},
	})

	out := buf.String()
	for _, want := range []string{
		"projectile:proj-2 shoots enemy:enemy-1 for 14 (46 hp left)",
		"unit:unit-2 looses projectile:proj-2 toward (300, 200)",
		"projectile:proj-2 landed at (300, 200)",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

func TestConsoleSinkFormatsLifecycleEvents(t *testing.T) {
	var buf bytes.Buffer
	sink := NewConsoleSink(&buf, logging.ConsoleConfig{})

	sink.Write(logging.Event{
		Type:    lifecycle.EventUnitSpawned,
		Tick:    1,
		Actor:   logging.EntityRef{ID: "unit-1", Kind: logging.EntityKindUnit},
		Payload: lifecycle.SpawnPayload{UnitType: "militia", X: 100, Y: 80, Slot: 0},
	})
	sink.Write(logging.Event{
		Type:     lifecycle.EventSpawnRejected,
		Tick:     2,
		Actor:    logging.EntityRef{Kind: logging.EntityKindWorld},
		Severity: logging.SeverityWarn,
		Payload:  lifecycle.RejectPayload{UnitType: "archer", Reason: "resources"},
	})

	out := buf.String()
	if !strings.Contains(out, "unit:unit-1 (militia) enters at (100, 80) slot=0") {
		t.Fatalf("spawn line wrong:\n%s", out)
	}
	if !strings.Contains(out, "spawn of archer refused: resources") {
		t.Fatalf("reject line wrong:\n%s", out)
	}
}

func TestConsoleSinkGenericFallback(t *testing.T) {
	var buf bytes.Buffer
	sink := NewConsoleSink(&buf, logging.ConsoleConfig{ShowPayloads: true})

	sink.Write(logging.Event{
		Type:     "system.note",
		Tick:     3,
		Actor:    logging.EntityRef{Kind: logging.EntityKindWorld},
		Severity: logging.SeverityInfo,
		Payload:  map[string]int{"n": 1},
	})

	out := buf.String()
	if !strings.Contains(out, "actor=world severity=info") {
		t.Fatalf("generic line wrong:\n%s", out)
	}
	if !strings.Contains(out, `payload={"n":1}`) {
		t.Fatalf("payload not appended:\n%s", out)
	}
}

func TestConsoleSinkColorsBySeverity(t *testing.T) {
	var buf bytes.Buffer
	sink := NewConsoleSink(&buf, logging.ConsoleConfig{UseColor: true})

	sink.Write(logging.Event{
		Type:     lifecycle.EventSpawnRejected,
		Severity: logging.SeverityWarn,
		Payload:  lifecycle.RejectPayload{UnitType: "militia", Reason: "army_limit"},
	})

	out := buf.String()
	if !strings.Contains(out, colorWarn) || !strings.Contains(out, colorReset) {
		t.Fatalf("warn line not colored: %q", out)
	}
}

func TestMemorySinkFiltersByType(t *testing.T) {
	sink := NewMemorySink()
	sink.Write(logging.Event{Type: logcombat.EventDamage, Tick: 1})
	sink.Write(logging.Event{Type: logcombat.EventDefeat, Tick: 2})
	sink.Write(logging.Event{Type: logcombat.EventDamage, Tick: 3})

	if got := sink.CountOf(logcombat.EventDamage); got != 2 {
		t.Fatalf("damage count %d, want 2", got)
	}
	hits := sink.OfType(logcombat.EventDamage)
	if len(hits) != 2 || hits[0].Tick != 1 || hits[1].Tick != 3 {
		t.Fatalf("filtered events wrong: %+v", hits)
	}
	last, ok := sink.Last()
	if !ok || last.Type != logcombat.EventDamage || last.Tick != 3 {
		t.Fatalf("last event wrong: %+v", last)
	}

	sink.Reset()
	if len(sink.Events()) != 0 {
		t.Fatalf("reset left events behind")
	}
	if _, ok := sink.Last(); ok {
		t.Fatalf("last returned an event after reset")
	}
}

func TestMemorySinkDetachesMutableFields(t *testing.T) {
	sink := NewMemorySink()
	targets := []logging.EntityRef{{ID: "enemy-1", Kind: logging.EntityKindEnemy}}
	extra := map[string]any{"seed": "a"}
	sink.Write(logging.Event{Type: logcombat.EventDamage, Targets: targets, Extra: extra})

	targets[0].ID = "mutated"
	extra["seed"] = "b"

	recorded := sink.Events()[0]
	if recorded.Targets[0].ID != "enemy-1" {
		t.Fatalf("recorded target mutated: %+v", recorded.Targets)
	}
	if recorded.Extra["seed"] != "a" {
		t.Fatalf("recorded extra mutated: %+v", recorded.Extra)
	}
}
