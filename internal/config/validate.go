package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// MaxNameLen is the longest subsystem name accepted.
const MaxNameLen = 19

var ErrNoSubsystems = errors.New("config: at least one subsystem is required")

// Validate checks configuration correctness.
// It performs declarative validation only.
// It MUST NOT mutate configuration.
func Validate(cfg Config) error {
	if len(cfg.Subsystems) == 0 {
		return ErrNoSubsystems
	}

	seen := make(map[string]int, len(cfg.Subsystems))
	for i, name := range cfg.Subsystems {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("subsystem %d: name must not be blank", i+1)
		}
		if len(name) > MaxNameLen {
			return fmt.Errorf("subsystem %d: name %q longer than %d bytes", i+1, name, MaxNameLen)
		}
		if prev, dup := seen[name]; dup {
			return fmt.Errorf("subsystem %d: name %q already used by subsystem %d", i+1, name, prev)
		}
		seen[name] = i + 1
	}

	// ------------------------------------------------------------
	// AUDIT DESTINATIONS
	// ------------------------------------------------------------

	if strings.TrimSpace(cfg.Audit.ManualFile) == "" {
		return errors.New("audit.manual_file must not be blank")
	}
	if strings.TrimSpace(cfg.Audit.AutoFile) == "" {
		return errors.New("audit.auto_file must not be blank")
	}
	if filepath.Clean(cfg.ManualPath()) == filepath.Clean(cfg.AutoPath()) {
		return fmt.Errorf("audit: manual and automatic destinations must differ (both %s)", cfg.ManualPath())
	}
	if cfg.Audit.MaxBytes <= 0 {
		return fmt.Errorf("audit.max_bytes must be > 0, got %d", cfg.Audit.MaxBytes)
	}
	if cfg.Audit.TailSize < 0 {
		return fmt.Errorf("audit.tail_size must be >= 0, got %d", cfg.Audit.TailSize)
	}

	// ------------------------------------------------------------
	// DIAGNOSTIC LOGGING
	// ------------------------------------------------------------

	switch strings.ToLower(cfg.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("log.level: unknown level %q", cfg.Log.Level)
	}
	switch strings.ToLower(cfg.Log.Format) {
	case "console", "json":
	default:
		return fmt.Errorf("log.format: unknown format %q", cfg.Log.Format)
	}

	return nil
}
