package main

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"self-healing-kernel/internal/auto"
	"self-healing-kernel/internal/clock"
	"self-healing-kernel/internal/config"
	"self-healing-kernel/internal/diag"
	"self-healing-kernel/internal/logs"
	"self-healing-kernel/internal/metrics"
	"self-healing-kernel/internal/subsystem"
)

// kernel is the wired simulator shared by every command.
type kernel struct {
	cfg       config.Config
	logger    *zap.Logger
	clock     clock.Clock
	metrics   *metrics.Registry
	registry  *subsystem.Registry
	manualLog *logs.FileLog
	autoLog   *logs.FileLog
	random    auto.Source
}

// loadConfig returns the defaults, or the file named by --config, validated.
func loadConfig(path string) (config.Config, error) {
	cfg := config.Default()
	if path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return config.Config{}, err
		}
	}
	if err := config.Validate(cfg); err != nil {
		return config.Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func newKernel(path string) (*kernel, error) {
	cfg, err := loadConfig(path)
	if err != nil {
		return nil, err
	}

	logger := diag.New(cfg.Log)
	clk := clock.Real{}
	reg := metrics.NewRegistry()

	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	k := &kernel{
		cfg:       cfg,
		logger:    logger,
		clock:     clk,
		metrics:   reg,
		registry:  subsystem.NewRegistry(cfg.Subsystems),
		manualLog: logs.NewFileLog(cfg.ManualPath(), cfg.Audit.MaxBytes, cfg.Audit.TailSize, clk, reg, logger),
		autoLog:   logs.NewFileLog(cfg.AutoPath(), cfg.Audit.MaxBytes, cfg.Audit.TailSize, clk, reg, logger),
		random:    auto.NewSource(seed),
	}

	logger.Debug("kernel initialized",
		zap.Strings("subsystems", cfg.Subsystems),
		zap.String("manual_log", cfg.ManualPath()),
		zap.String("auto_log", cfg.AutoPath()),
		zap.Uint64("seed", seed),
	)
	return k, nil
}
