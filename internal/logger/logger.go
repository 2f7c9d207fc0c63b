// Package logger builds the service zap logger and carries per-request loggers in contexts.
package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/TechTorque-2025/Agent-Bot/internal/version"
)

// presets maps an environment name to its base zap configuration.
// prod is JSON for log shipping; everything else is colored console output.
var presets = map[string]func() zap.Config{
	"prod": func() zap.Config {
		cfg := zap.NewProductionConfig()
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		return cfg
	},
	"local":  console,
	"dev":    console,
	"docker": console,
}

func console() zap.Config {
	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	return cfg
}

// NewLogger creates the service logger for env (local, dev, docker, prod).
// levelOverride, when non-empty, replaces the environment's default level.
func NewLogger(env string, levelOverride ...string) (*zap.Logger, error) {
	preset, ok := presets[env]
	if !ok {
		return nil, fmt.Errorf("unknown environment %q for logger", env)
	}
	cfg := preset()

	if len(levelOverride) > 0 && levelOverride[0] != "" {
		level, err := zapcore.ParseLevel(levelOverride[0])
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", levelOverride[0], err)
		}
		cfg.Level = zap.NewAtomicLevelAt(level)
	}

	l, err := cfg.Build(zap.AddStacktrace(zapcore.ErrorLevel))
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return l.Named("agentbot").With(
		zap.String("version", version.Version),
		zap.String("env", env),
	), nil
}
