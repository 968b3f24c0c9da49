package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"self-healing-kernel/internal/analysis"
	"self-healing-kernel/internal/api"
	"self-healing-kernel/internal/auto"
	"self-healing-kernel/internal/health"
	"self-healing-kernel/internal/logs"
)

const shutdownTimeout = 5 * time.Second

func newServeCommand() *cobra.Command {
	var addr string
	var noAuto bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP admin API",
		Long: `Serve exposes subsystem status, crash/heal/restart operations, health
analysis, Prometheus metrics and the audit log tails over HTTP. Unless
disabled, automatic mode runs in the background until the process is
interrupted.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), addr, noAuto)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides http.addr)")
	cmd.Flags().BoolVar(&noAuto, "no-auto", false, "Do not run automatic mode in the background")
	return cmd
}

func runServe(parent context.Context, addr string, noAuto bool) error {
	k, err := newKernel(configPath)
	if err != nil {
		return err
	}
	defer func() { _ = k.logger.Sync() }()

	if addr == "" {
		addr = k.cfg.HTTP.Addr
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return serve(ctx, k, ln, k.cfg.HTTP.Auto && !noAuto)
}

// serve runs the admin API on ln, and automatic mode when runAuto is set,
// until ctx is cancelled. It returns once the server has shut down and the
// in-flight tick has finished. HTTP operations audit to the manual log.
func serve(parent context.Context, k *kernel, ln net.Listener, runAuto bool) error {
	ctx, stop := context.WithCancel(parent)
	defer stop()

	manual := health.NewMachine(k.registry, k.manualLog, k.clock, k.metrics)
	handler := api.NewHandler(manual, k.metrics, map[string]analysis.Tail{
		"manual": k.manualLog,
		"auto":   k.autoLog,
	})

	server := &http.Server{
		Handler:           api.NewRouter(handler, k.logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	var wg sync.WaitGroup
	if runAuto {
		automatic := health.NewMachine(k.registry, k.autoLog, k.clock, k.metrics)
		runner := auto.NewRunner(automatic, k.random, auto.TickPeriod, k.metrics, k.logger)

		k.autoLog.Append(logs.INFO, "Automatic mode started.")
		wg.Add(1)
		go func() {
			defer wg.Done()
			runner.Start(ctx)
			k.autoLog.Append(logs.INFO, "Exited automatic mode.")
		}()
	}

	serveErr := make(chan error, 1)
	go func() {
		k.logger.Info("server started", zap.String("addr", ln.Addr().String()))
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			stop()
			wg.Wait()
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
	}

	k.logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		k.logger.Warn("http shutdown", zap.Error(err))
	}

	wg.Wait()
	return nil
}
