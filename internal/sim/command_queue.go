package sim

import (
	"sync"

	"hollowmarch/sim/internal/telemetry"
)

const (
	queueDepthMetricKey     = "sim_command_queue_depth"
	queueHighWaterMetricKey = "sim_command_queue_high_water"
	queueDroppedMetricKey   = "sim_commands_dropped_total"
)

// CommandQueue stages spawn and leader-move requests between ticks. Producers
// append concurrently; the loop swaps the whole batch out at the top of a
// tick. Capacity bounds one tick's batch, and anything past it is dropped
// with per-type accounting so a flooding source shows up in metrics.
type CommandQueue struct {
	mu        sync.Mutex
	staged    []Command
	spare     []Command
	capacity  int
	highWater int
	dropped   map[CommandType]uint64
	metrics   telemetry.Metrics
}

// NewCommandQueue builds a queue that holds at most capacity commands per
// tick. A capacity below one is raised to one so the queue always accepts
// something.
func NewCommandQueue(capacity int, metrics telemetry.Metrics) *CommandQueue {
	if capacity < 1 {
		capacity = 1
	}
	return &CommandQueue{
		staged:   make([]Command, 0, capacity),
		spare:    make([]Command, 0, capacity),
		capacity: capacity,
		dropped:  make(map[CommandType]uint64),
		metrics:  metrics,
	}
}

// Capacity reports the per-tick batch limit.
func (q *CommandQueue) Capacity() int {
	if q == nil {
		return 0
	}
	return q.capacity
}

// Push stages a command for the next tick. It returns false when the batch
// is already full; the command is dropped, never queued for a later tick.
func (q *CommandQueue) Push(cmd Command) bool {
	if q == nil {
		return false
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.staged) >= q.capacity {
		q.dropped[cmd.Type]++
		if q.metrics != nil {
			q.metrics.Add(queueDroppedMetricKey, 1)
		}
		return false
	}
	q.staged = append(q.staged, cmd)
	if len(q.staged) > q.highWater {
		q.highWater = len(q.staged)
		if q.metrics != nil {
			q.metrics.Store(queueHighWaterMetricKey, uint64(q.highWater))
		}
	}
	if q.metrics != nil {
		q.metrics.Store(queueDepthMetricKey, uint64(len(q.staged)))
	}
	return true
}

// Drain hands the staged batch to the loop in arrival order and resets the
// queue. The returned slice is reused, so it is only valid until the next
// Drain; the loop applies it synchronously within the same tick.
func (q *CommandQueue) Drain() []Command {
	if q == nil {
		return nil
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.staged) == 0 {
		return nil
	}
	batch := q.staged
	q.staged = q.spare[:0]
	q.spare = batch
	if q.metrics != nil {
		q.metrics.Store(queueDepthMetricKey, 0)
	}
	return batch
}

// Len reports the number of commands staged for the next tick.
func (q *CommandQueue) Len() int {
	if q == nil {
		return 0
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.staged)
}

// DroppedByType copies the per-type drop counts accumulated so far.
func (q *CommandQueue) DroppedByType() map[CommandType]uint64 {
	if q == nil {
		return nil
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.dropped) == 0 {
		return nil
	}
	counts := make(map[CommandType]uint64, len(q.dropped))
	for kind, n := range q.dropped {
		counts[kind] = n
	}
	return counts
}
