package sinks

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"strings"

	"hollowmarch/sim/logging"
	logcombat "hollowmarch/sim/logging/combat"
	"hollowmarch/sim/logging/lifecycle"
)

const (
	colorReset = "\x1b[0m"
	colorDim   = "\x1b[90m"
	colorWarn  = "\x1b[33m"
	colorError = "\x1b[31m"
)

// ConsoleSink renders simulation events as one human-readable line each.
// Combat and lifecycle payloads get compact prose; anything else falls back
// to a generic line with an optional JSON payload.
type ConsoleSink struct {
	logger       *log.Logger
	useColor     bool
	showPayloads bool
}

func NewConsoleSink(w io.Writer, cfg logging.ConsoleConfig) *ConsoleSink {
	return &ConsoleSink{
		logger:       log.New(w, "", log.LstdFlags),
		useColor:     cfg.UseColor,
		showPayloads: cfg.ShowPayloads,
	}
}

func (s *ConsoleSink) Write(event logging.Event) error {
	if s == nil || s.logger == nil {
		return nil
	}
	line := fmt.Sprintf("tick=%d %s %s", event.Tick, event.Type, s.describe(event))
	if s.useColor {
		if color := severityColor(event.Severity); color != "" {
			line = color + line + colorReset
		}
	}
	s.logger.Print(line)
	return nil
}

func (s *ConsoleSink) Close(context.Context) error {
	return nil
}

// describe turns the known payload shapes into skirmish-log prose.
func (s *ConsoleSink) describe(event logging.Event) string {
	switch p := event.Payload.(type) {
	case logcombat.DamagePayload:
		verb := "strikes"
		if p.Ranged {
			verb = "shoots"
		}
		return fmt.Sprintf("%s %s %s for %.0f (%.0f hp left)",
			refLabel(event.Actor), verb, firstTarget(event), p.Amount, p.TargetHealth)
	case logcombat.ProjectilePayload:
		if p.Outcome != "" {
			return fmt.Sprintf("%s %s at (%.0f, %.0f)",
				refLabel(event.Actor), p.Outcome, p.TargetX, p.TargetY)
		}
		return fmt.Sprintf("%s looses %s toward (%.0f, %.0f)",
			refLabel(event.Actor), firstTarget(event), p.TargetX, p.TargetY)
	case lifecycle.SpawnPayload:
		return fmt.Sprintf("%s (%s) enters at (%.0f, %.0f) slot=%d",
			refLabel(event.Actor), p.UnitType, p.X, p.Y, p.Slot)
	case lifecycle.RejectPayload:
		return fmt.Sprintf("spawn of %s refused: %s", p.UnitType, p.Reason)
	}
	return s.generic(event)
}

func (s *ConsoleSink) generic(event logging.Event) string {
	parts := []string{"actor=" + refLabel(event.Actor)}
	if len(event.Targets) > 0 {
		labels := make([]string, 0, len(event.Targets))
		for _, target := range event.Targets {
			labels = append(labels, refLabel(target))
		}
		parts = append(parts, "targets="+strings.Join(labels, ","))
	}
	parts = append(parts, "severity="+severityLabel(event.Severity))
	if s.showPayloads && event.Payload != nil {
		if data, err := json.Marshal(event.Payload); err == nil {
			parts = append(parts, "payload="+string(data))
		}
	}
	return strings.Join(parts, " ")
}

func refLabel(ref logging.EntityRef) string {
	switch {
	case ref.ID == "" && ref.Kind == "":
		return "?"
	case ref.ID == "":
		return string(ref.Kind)
	case ref.Kind == "":
		return ref.ID
	}
	return string(ref.Kind) + ":" + ref.ID
}

func firstTarget(event logging.Event) string {
	if len(event.Targets) == 0 {
		return "?"
	}
	return refLabel(event.Targets[0])
}

func severityLabel(sev logging.Severity) string {
	switch sev {
	case logging.SeverityDebug:
		return "debug"
	case logging.SeverityInfo:
		return "info"
	case logging.SeverityWarn:
		return "warn"
	case logging.SeverityError:
		return "error"
	}
	return "unknown"
}

func severityColor(sev logging.Severity) string {
	switch sev {
	case logging.SeverityDebug:
		return colorDim
	case logging.SeverityWarn:
		return colorWarn
	case logging.SeverityError:
		return colorError
	}
	return ""
}
