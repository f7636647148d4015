package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"fswake/internal/logging"
	"fswake/internal/worker"
)

const defaultWatchPath = "/tmp"

type Config struct {
	WatchPath    string
	IdleInterval time.Duration
	LogLevel     logging.Level
	WakePolicy   worker.WakePolicy
}

func loadConfig() (Config, error) {
	cfg := Config{
		WatchPath:    defaultWatchPath,
		IdleInterval: worker.DefaultIdleInterval,
		LogLevel:     logging.LevelInfo,
	}

	if raw := strings.TrimSpace(os.Getenv("FSWAKE_WATCH_PATH")); raw != "" {
		cfg.WatchPath = raw
	}

	if raw := strings.TrimSpace(os.Getenv("FSWAKE_IDLE_INTERVAL")); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil || parsed <= 0 {
			return Config{}, fmt.Errorf("invalid FSWAKE_IDLE_INTERVAL %q", raw)
		}
		cfg.IdleInterval = parsed
	}

	if raw := strings.TrimSpace(os.Getenv("FSWAKE_LOG_LEVEL")); raw != "" {
		level, ok := logging.ParseLevel(raw)
		if !ok {
			return Config{}, fmt.Errorf("invalid FSWAKE_LOG_LEVEL %q", raw)
		}
		cfg.LogLevel = level
	}

	policy, err := worker.ParseWakePolicy(os.Getenv("FSWAKE_WAKE_ALL"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid FSWAKE_WAKE_ALL: %w", err)
	}
	cfg.WakePolicy = policy

	return cfg, nil
}
