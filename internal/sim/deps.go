package sim

import (
	"time"

	"hollowmarch/sim/internal/telemetry"
	"hollowmarch/sim/logging"
)

// Deps are the injected services an engine core runs with. There are no
// global singletons; everything arrives through this struct.
type Deps struct {
	Logger    telemetry.Logger
	Metrics   telemetry.Metrics
	Publisher logging.Publisher
	Clock     logging.Clock
}

// TickContext identifies one simulation step.
type TickContext struct {
	Tick  uint64
	Now   time.Time
	Delta float64
}

// EngineCore is the single-threaded simulation the loop drives: commands in,
// one step per tick.
type EngineCore interface {
	Apply(cmds []Command)
	Step(ctx TickContext)
	Deps() Deps
}

// StepResult summarizes one completed tick for loop observers.
type StepResult struct {
	Tick         uint64
	Now          time.Time
	Delta        float64
	Commands     int
	Duration     time.Duration
	Budget       time.Duration
	ClampedDelta bool
}

// LoopHooks lets callers observe the loop without reaching into it.
type LoopHooks struct {
	AfterStep      func(StepResult)
	OnCommandDrop  func(reason string, cmd Command)
	OnQueueWarning func(length int)
}
