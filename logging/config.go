package logging

import "time"

// Config tunes the simulation event log: which sinks run, how much the
// router buffers between the loop goroutine and the sink workers, and the
// floor below which events are discarded before they ever reach a sink.
type Config struct {
	// EnabledSinks names the sinks the router starts workers for.
	EnabledSinks []string
	// BufferSize is the per-sink channel depth; a full channel drops events
	// rather than stalling the simulation tick.
	BufferSize int
	// MinimumSeverity filters events before fan-out. Combat projectile
	// chatter publishes at debug, so the default of info keeps skirmish
	// output readable.
	MinimumSeverity Severity
	// Fields are attached to every event that does not already carry the
	// key, typically a run seed or scenario name.
	Fields map[string]any
	// JSON and Console carry sink-specific knobs.
	JSON    JSONConfig
	Console ConsoleConfig
	// DropWarnInterval rate-limits the router's own dropped-event warnings.
	DropWarnInterval time.Duration
}

// JSONConfig tunes the append-only JSON event file.
type JSONConfig struct {
	FilePath      string
	FlushInterval time.Duration
}

// ConsoleConfig tunes the human-readable skirmish log.
type ConsoleConfig struct {
	// UseColor wraps lines in ANSI severity colors.
	UseColor bool
	// ShowPayloads appends raw JSON payloads to events the console sink has
	// no prose formatting for.
	ShowPayloads bool
}

// DefaultConfig is the skirmish demo's logging setup: console only, info
// and above, modest buffering.
func DefaultConfig() Config {
	return Config{
		EnabledSinks:     []string{"console"},
		BufferSize:       256,
		MinimumSeverity:  SeverityInfo,
		DropWarnInterval: 5 * time.Second,
		JSON: JSONConfig{
			FlushInterval: 2 * time.Second,
		},
	}
}

// HasSink reports whether name is in the enabled set.
func (c Config) HasSink(name string) bool {
	for _, s := range c.EnabledSinks {
		if s == name {
			return true
		}
	}
	return false
}

// CloneFields copies the configured base fields so the router can hand each
// event its own map.
func (c Config) CloneFields() map[string]any {
	if len(c.Fields) == 0 {
		return nil
	}
	cloned := make(map[string]any, len(c.Fields))
	for k, v := range c.Fields {
		cloned[k] = v
	}
	return cloned
}
