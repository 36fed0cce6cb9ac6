package sim

import "testing"

type recordingMetrics struct {
	counters map[string]uint64
	gauges   map[string]uint64
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{
		counters: make(map[string]uint64),
		gauges:   make(map[string]uint64),
	}
}

func (m *recordingMetrics) Add(key string, delta uint64)   { m.counters[key] += delta }
func (m *recordingMetrics) Store(key string, value uint64) { m.gauges[key] = value }

func TestCommandQueueDrainsInArrivalOrder(t *testing.T) {
	queue := NewCommandQueue(4, nil)
	sources := []string{"a", "b", "c"}
	for _, src := range sources {
		if !queue.Push(Command{Type: CommandLeaderMove, Source: src}) {
			t.Fatalf("push %s failed", src)
		}
	}
	if queue.Len() != 3 {
		t.Fatalf("expected 3 staged, got %d", queue.Len())
	}

	batch := queue.Drain()
	if len(batch) != 3 {
		t.Fatalf("expected 3 drained, got %d", len(batch))
	}
	for i, src := range sources {
		if batch[i].Source != src {
			t.Fatalf("position %d: got %s, want %s", i, batch[i].Source, src)
		}
	}
	if queue.Len() != 0 {
		t.Fatalf("queue not cleared after drain")
	}
	if queue.Drain() != nil {
		t.Fatalf("second drain returned commands")
	}
}

func TestCommandQueueDropsPastCapacity(t *testing.T) {
	metrics := newRecordingMetrics()
	queue := NewCommandQueue(2, metrics)
	queue.Push(Command{Type: CommandLeaderMove})
	queue.Push(Command{Type: CommandSpawnUnit})

	if queue.Push(Command{Type: CommandSpawnEnemy}) {
		t.Fatalf("push succeeded past capacity")
	}
	if queue.Push(Command{Type: CommandSpawnEnemy}) {
		t.Fatalf("second overflow push succeeded")
	}
	if metrics.counters[queueDroppedMetricKey] != 2 {
		t.Fatalf("dropped counter %d, want 2", metrics.counters[queueDroppedMetricKey])
	}
	if metrics.gauges[queueDepthMetricKey] != 2 {
		t.Fatalf("depth gauge %d, want 2", metrics.gauges[queueDepthMetricKey])
	}

	dropped := queue.DroppedByType()
	if dropped[CommandSpawnEnemy] != 2 {
		t.Fatalf("spawn_enemy drops %d, want 2", dropped[CommandSpawnEnemy])
	}
	if len(dropped) != 1 {
		t.Fatalf("unexpected drop entries: %v", dropped)
	}
}

func TestCommandQueueReusesBatchStorage(t *testing.T) {
	queue := NewCommandQueue(2, nil)
	queue.Push(Command{Source: "a"})
	queue.Drain()
	queue.Push(Command{Source: "b"})
	queue.Push(Command{Source: "c"})

	batch := queue.Drain()
	if len(batch) != 2 || batch[0].Source != "b" || batch[1].Source != "c" {
		t.Fatalf("redrained batch wrong: %+v", batch)
	}

	queue.Push(Command{Source: "d"})
	batch = queue.Drain()
	if len(batch) != 1 || batch[0].Source != "d" {
		t.Fatalf("third batch wrong: %+v", batch)
	}
}

func TestCommandQueueHighWaterGauge(t *testing.T) {
	metrics := newRecordingMetrics()
	queue := NewCommandQueue(4, metrics)
	queue.Push(Command{Source: "a"})
	queue.Push(Command{Source: "b"})
	queue.Push(Command{Source: "c"})
	queue.Drain()
	queue.Push(Command{Source: "d"})

	if metrics.gauges[queueHighWaterMetricKey] != 3 {
		t.Fatalf("high water %d, want 3", metrics.gauges[queueHighWaterMetricKey])
	}
	if metrics.gauges[queueDepthMetricKey] != 1 {
		t.Fatalf("depth %d, want 1", metrics.gauges[queueDepthMetricKey])
	}
}

func TestCommandQueueMinimumCapacity(t *testing.T) {
	queue := NewCommandQueue(0, nil)
	if queue.Capacity() != 1 {
		t.Fatalf("expected capacity 1, got %d", queue.Capacity())
	}
	if !queue.Push(Command{Source: "a"}) {
		t.Fatalf("push into minimum-capacity queue failed")
	}
}
