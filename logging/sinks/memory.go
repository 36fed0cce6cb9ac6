package sinks

import (
	"context"
	"sync"

	"hollowmarch/sim/logging"
)

// MemorySink records events for inspection, mainly in tests that want to
// assert on the combat log without parsing console output.
type MemorySink struct {
	mu     sync.RWMutex
	events []logging.Event
}

func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

func (s *MemorySink) Write(event logging.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, detachEvent(event))
	return nil
}

// Events copies everything recorded so far, in write order.
func (s *MemorySink) Events() []logging.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]logging.Event(nil), s.events...)
}

// OfType copies the recorded events of one type, in write order.
func (s *MemorySink) OfType(eventType logging.EventType) []logging.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var matched []logging.Event
	for _, event := range s.events {
		if event.Type == eventType {
			matched = append(matched, event)
		}
	}
	return matched
}

// CountOf reports how many events of one type were recorded.
func (s *MemorySink) CountOf(eventType logging.EventType) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, event := range s.events {
		if event.Type == eventType {
			count++
		}
	}
	return count
}

// Last returns the most recent event, if any.
func (s *MemorySink) Last() (logging.Event, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.events) == 0 {
		return logging.Event{}, false
	}
	return s.events[len(s.events)-1], true
}

func (s *MemorySink) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = s.events[:0]
}

func (s *MemorySink) Close(context.Context) error {
	return nil
}

// detachEvent deep-copies the mutable parts so a recorded event cannot
// change under a later assertion.
func detachEvent(event logging.Event) logging.Event {
	detached := event
	if len(event.Targets) > 0 {
		detached.Targets = append([]logging.EntityRef(nil), event.Targets...)
	}
	if event.Extra != nil {
		extra := make(map[string]any, len(event.Extra))
		for k, v := range event.Extra {
			extra[k] = v
		}
		detached.Extra = extra
	}
	return detached
}
