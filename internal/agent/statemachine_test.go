package agent

import (
	"math"
	"testing"

	"hollowmarch/sim/catalog"
	"hollowmarch/sim/internal/world"
)

func testConfig() *catalog.Config {
	cfg := catalog.Normalize(catalog.Config{
		ID:             "militia",
		MaxHealth:      80,
		Damage:         15,
		AttackSpeed:    1,
		AttackRange:    40,
		MoveSpeed:      160,
		FollowDistance: 60,
		ReturnDistance: 320,
		DetectionRange: 240,
	})
	return &cfg
}

func newTestEnv(agents ...*Agent) *Env {
	byID := make(map[string]*Agent, len(agents))
	for _, a := range agents {
		byID[a.ID] = a
	}
	return &Env{
		Tick:      1,
		Delta:     1.0 / 30,
		Elapsed:   1,
		LeaderPos: world.Vec2{X: 0, Y: 0},
		HasLeader: true,
		Agents:    agents,
		Lookup:    func(id string) *Agent { return byID[id] },
		Ring:      NewRing(0),
	}
}

func TestRunAcquiresTargetAndEntersAttack(t *testing.T) {
	unit := New("unit-1", "militia", FactionFriendly, testConfig(), world.Vec2{X: 0, Y: 0})
	enemy := New("enemy-1", "raider", FactionHostile, testConfig(), world.Vec2{X: 30, Y: 0})
	env := newTestEnv(unit, enemy)

	attacks := 0
	env.Attack = func(attacker, target *Agent) bool {
		if attacker == unit {
			if target != enemy {
				t.Fatalf("unexpected target %s", target.ID)
			}
			attacks++
		}
		return true
	}

	Run(env)

	if unit.State != StateAttack {
		t.Fatalf("expected attack state, got %s", unit.State)
	}
	if unit.TargetID != "enemy-1" {
		t.Fatalf("expected target enemy-1, got %q", unit.TargetID)
	}
	if attacks != 1 {
		t.Fatalf("expected 1 attack, got %d", attacks)
	}
}

func TestFollowIgnoresHostileBeyondDetection(t *testing.T) {
	unit := New("unit-1", "militia", FactionFriendly, testConfig(), world.Vec2{X: 0, Y: 0})
	enemy := New("enemy-1", "raider", FactionHostile, testConfig(), world.Vec2{X: 500, Y: 0})
	env := newTestEnv(unit, enemy)

	Run(env)

	if unit.TargetID != "" {
		t.Fatalf("expected no target, got %q", unit.TargetID)
	}
	if unit.State != StateFollow {
		t.Fatalf("expected follow state, got %s", unit.State)
	}
}

func TestAttackHoldsInsideHysteresisBand(t *testing.T) {
	unit := New("unit-1", "militia", FactionFriendly, testConfig(), world.Vec2{X: 0, Y: 0})
	enemy := New("enemy-1", "raider", FactionHostile, testConfig(), world.Vec2{X: 55, Y: 0})
	unit.State = StateAttack
	unit.TargetID = "enemy-1"
	env := newTestEnv(unit, enemy)

	evaluateTransitions(env, unit)

	// 55 is past attack range 40 but inside 40 * 1.5, so the machine holds.
	if unit.State != StateAttack {
		t.Fatalf("expected attack state at 55 units, got %s", unit.State)
	}

	enemy.Pos.X = 61
	evaluateTransitions(env, unit)
	if unit.State != StateFollow {
		t.Fatalf("expected follow state past the hysteresis band, got %s", unit.State)
	}
}

func TestAttackAtExactRangeBoundary(t *testing.T) {
	unit := New("unit-1", "militia", FactionFriendly, testConfig(), world.Vec2{X: 0, Y: 0})
	enemy := New("enemy-1", "raider", FactionHostile, testConfig(), world.Vec2{X: 40, Y: 0})
	unit.TargetID = "enemy-1"
	env := newTestEnv(unit, enemy)

	evaluateTransitions(env, unit)

	if unit.State != StateAttack {
		t.Fatalf("expected attack at exact range boundary, got %s", unit.State)
	}
}

func TestAttackDefersToReturnWhenTooFarFromLeader(t *testing.T) {
	unit := New("unit-1", "militia", FactionFriendly, testConfig(), world.Vec2{X: 400, Y: 0})
	enemy := New("enemy-1", "raider", FactionHostile, testConfig(), world.Vec2{X: 420, Y: 0})
	unit.State = StateAttack
	unit.TargetID = "enemy-1"
	env := newTestEnv(unit, enemy)

	evaluateTransitions(env, unit)

	if unit.State != StateReturn {
		t.Fatalf("expected return state beyond leash, got %s", unit.State)
	}
}

func TestReturnArrivalRestoresFollow(t *testing.T) {
	unit := New("unit-1", "militia", FactionFriendly, testConfig(), world.Vec2{X: 61, Y: 0})
	unit.State = StateReturn
	env := newTestEnv(unit)

	evaluateTransitions(env, unit)

	// 61 <= follow distance 60 + arrive margin 1.
	if unit.State != StateFollow {
		t.Fatalf("expected follow after arriving, got %s", unit.State)
	}
}

func TestReturnConvergesOnAnchor(t *testing.T) {
	unit := New("unit-1", "militia", FactionFriendly, testConfig(), world.Vec2{X: 800, Y: 0})
	unit.State = StateReturn
	env := newTestEnv(unit)

	for i := 0; i < 300 && unit.State == StateReturn; i++ {
		Run(env)
	}

	if unit.State != StateFollow {
		t.Fatalf("expected return to converge, still %s at %v", unit.State, unit.Pos)
	}
	if world.Dist(unit.Pos, env.LeaderPos) > unit.Config.ReturnDistance {
		t.Fatalf("agent still outside leash after converging: %v", unit.Pos)
	}
}

func TestZeroHealthEntersTerminalDead(t *testing.T) {
	unit := New("unit-1", "militia", FactionFriendly, testConfig(), world.Vec2{X: 0, Y: 0})
	unit.Health = 0
	unit.TargetID = "enemy-1"
	env := newTestEnv(unit)

	Run(env)

	if unit.State != StateDead {
		t.Fatalf("expected dead state, got %s", unit.State)
	}
	if unit.TargetID != "" {
		t.Fatalf("expected cleared target, got %q", unit.TargetID)
	}

	// Dead is terminal: restoring health never revives the agent.
	unit.Health = 50
	Run(env)
	if unit.State != StateDead {
		t.Fatalf("dead agent came back as %s", unit.State)
	}
}

func TestDeadTargetDropsBackToFollow(t *testing.T) {
	unit := New("unit-1", "militia", FactionFriendly, testConfig(), world.Vec2{X: 0, Y: 0})
	enemy := New("enemy-1", "raider", FactionHostile, testConfig(), world.Vec2{X: 30, Y: 0})
	enemy.Health = 0
	enemy.State = StateDead
	unit.State = StateAttack
	unit.TargetID = "enemy-1"
	env := newTestEnv(unit, enemy)

	evaluateTransitions(env, unit)

	if unit.State != StateFollow {
		t.Fatalf("expected follow after target death, got %s", unit.State)
	}
	if unit.TargetID != "" {
		t.Fatalf("expected cleared handle, got %q", unit.TargetID)
	}
}

func TestFollowMovesTowardFormationPoint(t *testing.T) {
	unit := New("unit-1", "militia", FactionFriendly, testConfig(), world.Vec2{X: 300, Y: 0})
	unit.Slot = 2
	env := newTestEnv(unit)

	moved := 0
	env.Moved = func(a *Agent) { moved++ }

	Run(env)

	dest := world.Add(env.LeaderPos, env.Ring.Offset(2))
	before := world.Dist(world.Vec2{X: 300, Y: 0}, dest)
	after := world.Dist(unit.Pos, dest)
	if after >= before {
		t.Fatalf("expected movement toward formation point, %f -> %f", before, after)
	}
	if moved != 1 {
		t.Fatalf("expected one move notification, got %d", moved)
	}
}

func TestFollowHaltsNearFormationPoint(t *testing.T) {
	unit := New("unit-1", "militia", FactionFriendly, testConfig(), world.Vec2{})
	unit.Slot = 0
	env := newTestEnv(unit)
	dest := world.Add(env.LeaderPos, env.Ring.Offset(0))
	unit.Pos = world.Vec2{X: dest.X + 1, Y: dest.Y}

	env.Moved = func(a *Agent) {
		t.Fatalf("agent moved while inside stop distance")
	}
	Run(env)
}

func TestHostileAnchorsOnHome(t *testing.T) {
	enemy := New("enemy-1", "raider", FactionHostile, testConfig(), world.Vec2{X: 900, Y: 900})
	env := newTestEnv(enemy)

	if got := anchorPos(env, enemy); got != enemy.Home {
		t.Fatalf("hostile anchor = %v, want home %v", got, enemy.Home)
	}
}

func TestAcquireThrottleDelaysNextScan(t *testing.T) {
	unit := New("unit-1", "militia", FactionFriendly, testConfig(), world.Vec2{X: 0, Y: 0})
	env := newTestEnv(unit)
	env.AcquireInterval = 10
	env.Tick = 5

	Run(env)
	if unit.NextAcquireAt != 15 {
		t.Fatalf("expected next acquire at 15, got %d", unit.NextAcquireAt)
	}

	// A hostile appearing before the throttle elapses is not noticed.
	enemy := New("enemy-1", "raider", FactionHostile, testConfig(), world.Vec2{X: 100, Y: 0})
	env.Agents = append(env.Agents, enemy)
	byID := map[string]*Agent{"unit-1": unit, "enemy-1": enemy}
	env.Lookup = func(id string) *Agent { return byID[id] }

	env.Tick = 10
	Run(env)
	if unit.TargetID != "" {
		t.Fatalf("expected throttled scan, got target %q", unit.TargetID)
	}

	env.Tick = 15
	Run(env)
	if unit.TargetID != "enemy-1" {
		t.Fatalf("expected target after throttle, got %q", unit.TargetID)
	}
}

func TestAttackCooldownSingleApplication(t *testing.T) {
	unit := New("unit-1", "militia", FactionFriendly, testConfig(), world.Vec2{X: 0, Y: 0})
	enemy := New("enemy-1", "raider", FactionHostile, testConfig(), world.Vec2{X: 20, Y: 0})
	unit.State = StateAttack
	unit.TargetID = "enemy-1"
	env := newTestEnv(unit, enemy)

	attacks := 0
	env.Attack = func(attacker, target *Agent) bool {
		if attacker == unit {
			attacks++
		}
		return true
	}

	env.Elapsed = 1
	Run(env)
	Run(env)
	if attacks != 1 {
		t.Fatalf("expected single attack within one cooldown window, got %d", attacks)
	}
	if unit.NextAttackAt != 2 {
		t.Fatalf("expected cooldown until 2, got %f", unit.NextAttackAt)
	}

	env.Elapsed = 2
	Run(env)
	if attacks != 2 {
		t.Fatalf("expected second attack after cooldown, got %d", attacks)
	}
}

func TestFailedAttackDoesNotConsumeCooldown(t *testing.T) {
	unit := New("unit-1", "militia", FactionFriendly, testConfig(), world.Vec2{X: 0, Y: 0})
	enemy := New("enemy-1", "raider", FactionHostile, testConfig(), world.Vec2{X: 20, Y: 0})
	unit.State = StateAttack
	unit.TargetID = "enemy-1"
	env := newTestEnv(unit, enemy)
	env.Attack = func(attacker, target *Agent) bool { return false }

	Run(env)

	if unit.NextAttackAt != 0 {
		t.Fatalf("expected cooldown untouched after failed attack, got %f", unit.NextAttackAt)
	}
}

func TestAttackFacesTarget(t *testing.T) {
	unit := New("unit-1", "militia", FactionFriendly, testConfig(), world.Vec2{X: 0, Y: 0})
	enemy := New("enemy-1", "raider", FactionHostile, testConfig(), world.Vec2{X: 0, Y: 30})
	unit.State = StateAttack
	unit.TargetID = "enemy-1"
	env := newTestEnv(unit, enemy)
	env.Attack = func(attacker, target *Agent) bool { return true }

	Run(env)

	want := math.Pi / 2
	if math.Abs(unit.Facing-want) > 1e-9 {
		t.Fatalf("expected facing %f, got %f", want, unit.Facing)
	}
}

func TestMoveSnapsOntoDestination(t *testing.T) {
	unit := New("unit-1", "militia", FactionFriendly, testConfig(), world.Vec2{X: 0, Y: 0})
	unit.State = StateReturn
	env := newTestEnv(unit)
	env.Delta = 10 // one huge step

	moveToward(env, unit, world.Vec2{X: 50, Y: 0})

	if unit.Pos.X != 50 || unit.Pos.Y != 0 {
		t.Fatalf("expected snap onto destination, got %v", unit.Pos)
	}
}
