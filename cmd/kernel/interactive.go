package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"

	"self-healing-kernel/internal/console"
)

func runInteractive(parent context.Context) error {
	k, err := newKernel(configPath)
	if err != nil {
		return err
	}
	defer func() { _ = k.logger.Sync() }()

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := console.New(console.Deps{
		Registry:  k.registry,
		ManualLog: k.manualLog,
		AutoLog:   k.autoLog,
		Clock:     k.clock,
		Random:    k.random,
		Metrics:   k.metrics,
		Logger:    k.logger,
		Color:     !color.NoColor,
	}, os.Stdout)

	err = c.Run(ctx, os.Stdin)
	switch {
	case errors.Is(err, console.ErrInvalidMenuChoice):
		// already reported to the operator; not a failure exit
		return nil
	case errors.Is(err, context.Canceled):
		return nil
	default:
		return err
	}
}
