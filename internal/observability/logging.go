// Package observability provides logging utilities.
package observability

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/cory-johannsen/skillforge/internal/config"
	"github.com/cory-johannsen/skillforge/internal/game/combat"
)

// NewLogger creates a structured logger from the given logging configuration.
// Every entry carries the named service.
//
// Precondition: cfg.Level must be one of "debug", "info", "warn", "error".
// Precondition: cfg.Format must be "json" or "console".
// Postcondition: Returns a configured zap.Logger or a non-nil error.
func NewLogger(cfg config.LoggingConfig, service string) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("parsing log level %q: %w", cfg.Level, err)
	}

	var zapCfg zap.Config
	switch cfg.Format {
	case "json":
		zapCfg = zap.NewProductionConfig()
	case "console":
		zapCfg = zap.NewDevelopmentConfig()
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}

	zapCfg.Level = zap.NewAtomicLevelAt(level)
	zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	// Battle resolution logs many identical messages per round.
	zapCfg.Sampling = nil

	logger, err := zapCfg.Build(zap.Fields(zap.String("service", service)))
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}
	return logger, nil
}

// EventFields renders a battle event as typed log fields.
func EventFields(ev combat.Event) []zap.Field {
	fields := []zap.Field{
		zap.Stringer("event", ev.Kind),
		zap.String("phase", string(ev.Phase)),
		zap.Int("round", ev.Round),
	}
	if ev.Actor != combat.NoTarget {
		fields = append(fields, zap.Int("actor", ev.Actor))
	}
	if ev.Target != combat.NoTarget {
		fields = append(fields, zap.Int("target", ev.Target))
	}
	if ev.Amount != 0 {
		fields = append(fields, zap.Int("amount", ev.Amount))
	}
	if ev.Crit {
		fields = append(fields, zap.Bool("crit", true))
	}
	if ev.Detail != "" {
		fields = append(fields, zap.String("detail", ev.Detail))
	}
	return fields
}
