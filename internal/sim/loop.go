package sim

import (
	"sync"
	"time"

	"hollowmarch/sim/internal/telemetry"
	"hollowmarch/sim/logging"
)

const (
	// CommandRejectQueueLimit indicates a command was dropped due to
	// per-source queue throttling.
	CommandRejectQueueLimit = "queue_limit"
	// CommandRejectQueueFull indicates the shared command queue is saturated.
	CommandRejectQueueFull = "queue_full"
)

// LoopConfig tunes the command queue and tick loop orchestration.
type LoopConfig struct {
	TickRate        int
	CatchupMaxTicks int
	CommandCapacity int
	PerSourceLimit  int
	WarningStep     int
}

// Loop serializes external commands into a fixed-timestep driver for an
// EngineCore. Producers enqueue concurrently; the engine itself only ever
// runs on the loop goroutine.
type Loop struct {
	core    EngineCore
	queue   *CommandQueue
	hooks   LoopHooks
	config  LoopConfig
	logger  telemetry.Logger
	metrics telemetry.Metrics

	tick uint64

	queueMu        sync.Mutex
	perSourceCount map[string]int
	dropCounts     map[string]uint64
}

// NewLoop wraps the provided engine core with a staging queue and loop.
func NewLoop(core EngineCore, cfg LoopConfig, hooks LoopHooks) *Loop {
	if core == nil {
		return nil
	}
	deps := core.Deps()
	return &Loop{
		core:           core,
		queue:          NewCommandQueue(cfg.CommandCapacity, deps.Metrics),
		hooks:          hooks,
		config:         cfg,
		logger:         deps.Logger,
		metrics:        deps.Metrics,
		perSourceCount: make(map[string]int),
		dropCounts:     make(map[string]uint64),
	}
}

// Pending reports the number of staged commands.
func (l *Loop) Pending() int {
	if l == nil {
		return 0
	}
	return l.queue.Len()
}

// DroppedCommands reports how many commands of each type the queue refused.
func (l *Loop) DroppedCommands() map[CommandType]uint64 {
	if l == nil {
		return nil
	}
	return l.queue.DroppedByType()
}

// Enqueue stages a command, enforcing per-source throttling and capacity
// limits.
func (l *Loop) Enqueue(cmd Command) (bool, string) {
	if l == nil {
		return false, CommandRejectQueueFull
	}
	reason := ""
	var dropCount uint64
	l.queueMu.Lock()
	if l.config.PerSourceLimit > 0 && cmd.Source != "" {
		count := l.perSourceCount[cmd.Source]
		if count >= l.config.PerSourceLimit {
			reason = CommandRejectQueueLimit
			dropCount = l.incrementDropLocked(cmd.Source)
		} else {
			l.perSourceCount[cmd.Source] = count + 1
		}
	}
	if reason == "" {
		if !l.queue.Push(cmd) {
			reason = CommandRejectQueueFull
			dropCount = l.incrementDropLocked(cmd.Source)
		} else if l.config.WarningStep > 0 {
			length := l.queue.Len()
			if length >= l.config.WarningStep && length%l.config.WarningStep == 0 {
				l.queueMu.Unlock()
				if l.hooks.OnQueueWarning != nil {
					l.hooks.OnQueueWarning(length)
				}
				return true, ""
			}
		}
	}
	l.queueMu.Unlock()
	if reason != "" {
		l.reportDrop(reason, cmd, dropCount)
		return false, reason
	}
	return true, ""
}

// Advance executes a single simulation step using the staged commands.
func (l *Loop) Advance(ctx TickContext) StepResult {
	if l == nil {
		return StepResult{}
	}
	commands := l.drainCommands()
	l.core.Apply(commands)
	l.core.Step(ctx)
	return StepResult{
		Tick:     ctx.Tick,
		Now:      ctx.Now,
		Delta:    ctx.Delta,
		Commands: len(commands),
	}
}

// Run drives the fixed-timestep loop until the stop channel closes.
func (l *Loop) Run(stop <-chan struct{}) {
	if l == nil {
		return
	}
	tickRate := l.config.TickRate
	if tickRate <= 0 {
		tickRate = 30
	}
	ticker := time.NewTicker(time.Second / time.Duration(tickRate))
	defer ticker.Stop()

	deps := l.core.Deps()
	clock := deps.Clock
	if clock == nil {
		clock = logging.SystemClock{}
	}
	last := clock.Now()
	budgetSeconds := 1.0 / float64(tickRate)
	maxDt := budgetSeconds
	if l.config.CatchupMaxTicks > 1 {
		maxDt = budgetSeconds * float64(l.config.CatchupMaxTicks)
	}
	budgetDuration := time.Second / time.Duration(tickRate)

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			now := clock.Now()
			dt := now.Sub(last).Seconds()
			clamped := false
			if dt <= 0 {
				dt = budgetSeconds
			} else if dt > maxDt {
				dt = maxDt
				clamped = true
			}
			last = now

			l.tick++
			start := clock.Now()
			result := l.Advance(TickContext{Tick: l.tick, Now: now, Delta: dt})
			result.Duration = clock.Now().Sub(start)
			result.Budget = budgetDuration
			result.ClampedDelta = clamped

			if l.hooks.AfterStep != nil {
				l.hooks.AfterStep(result)
			}
		}
	}
}

func (l *Loop) drainCommands() []Command {
	l.queueMu.Lock()
	defer l.queueMu.Unlock()
	commands := l.queue.Drain()
	if len(l.perSourceCount) > 0 {
		l.perSourceCount = make(map[string]int)
	}
	return commands
}

func (l *Loop) incrementDropLocked(source string) uint64 {
	if source == "" {
		return 0
	}
	count := l.dropCounts[source] + 1
	l.dropCounts[source] = count
	return count
}

func (l *Loop) reportDrop(reason string, cmd Command, count uint64) {
	if l.hooks.OnCommandDrop != nil {
		l.hooks.OnCommandDrop(reason, cmd)
	}
	if count > 0 && count&(count-1) == 0 {
		if l.logger != nil {
			l.logger.Printf(
				"[backpressure] dropping command source=%s type=%s count=%d reason=%s",
				cmd.Source,
				cmd.Type,
				count,
				reason,
			)
		}
	}
}
