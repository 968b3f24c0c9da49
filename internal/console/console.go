// Package console is the operator command surface: a mode menu, the manual
// command shell and automatic mode, all driven from one line-oriented input.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"self-healing-kernel/internal/auto"
	"self-healing-kernel/internal/clock"
	"self-healing-kernel/internal/health"
	"self-healing-kernel/internal/logs"
	"self-healing-kernel/internal/metrics"
	"self-healing-kernel/internal/subsystem"
)

// ErrInvalidMenuChoice is returned by Run when the menu selection is not a
// number at all. The session cannot continue.
var ErrInvalidMenuChoice = errors.New("console: menu choice is not a number")

const (
	choiceManual    = 1
	choiceAutomatic = 2
	choiceExit      = 3
)

// Deps wires a Console to the rest of the simulator.
type Deps struct {
	Registry   *subsystem.Registry
	ManualLog  logs.Sink
	AutoLog    logs.Sink
	Clock      clock.Clock
	Random     auto.Source
	TickPeriod time.Duration // 0 means auto.TickPeriod
	Metrics    *metrics.Registry
	Logger     *zap.Logger
	Color      bool
}

type Console struct {
	registry  *subsystem.Registry
	manual    *health.Machine
	automatic *health.Machine
	manualLog logs.Sink
	autoLog   logs.Sink
	rng       auto.Source
	period    time.Duration
	metrics   *metrics.Registry
	logger    *zap.Logger

	out     *syncWriter
	palette palette
}

// New creates a console writing to out. Both modes share d.Registry; manual
// operations are audited to d.ManualLog and automatic ones to d.AutoLog.
func New(d Deps, out io.Writer) *Console {
	if d.Clock == nil {
		d.Clock = clock.Real{}
	}
	if d.Random == nil {
		d.Random = auto.NewSource(uint64(time.Now().UnixNano()))
	}
	if d.TickPeriod <= 0 {
		d.TickPeriod = auto.TickPeriod
	}
	if d.Metrics == nil {
		d.Metrics = metrics.NewRegistry()
	}
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}

	c := &Console{
		registry:  d.Registry,
		manualLog: d.ManualLog,
		autoLog:   d.AutoLog,
		rng:       d.Random,
		period:    d.TickPeriod,
		metrics:   d.Metrics,
		logger:    d.Logger,
		out:       &syncWriter{w: out},
		palette:   newPalette(d.Color),
	}
	c.manual = health.NewMachine(d.Registry, d.ManualLog, d.Clock, d.Metrics).WithNotifier(c)
	c.automatic = health.NewMachine(d.Registry, d.AutoLog, d.Clock, d.Metrics).WithNotifier(c)
	return c
}

// Run shows the mode menu until the operator exits, input ends or ctx is
// cancelled. A non-numeric selection ends the session with
// ErrInvalidMenuChoice.
func (c *Console) Run(ctx context.Context, in io.Reader) error {
	done := make(chan struct{})
	defer close(done)
	lines := readLines(in, done)

	for {
		c.printf("\nSelect Mode:\n  1. Manual\n  2. Automatic\n  3. Exit\nChoice: ")

		line, ok := nextNonBlank(ctx, lines)
		if !ok {
			c.printf("\nExiting kernel simulator.\n")
			return ctx.Err()
		}

		choice, ok := leadingInt(line)
		if !ok {
			c.printf("Invalid input.\n")
			return ErrInvalidMenuChoice
		}

		switch choice {
		case choiceManual:
			c.manualMode(ctx, lines)
		case choiceAutomatic:
			c.automaticMode(ctx, lines)
		case choiceExit:
			c.printf("Exiting kernel simulator.\n")
			return nil
		default:
			c.printf("Invalid choice.\n")
		}
	}
}

// Applied echoes completed operations to the operator.
func (c *Console) Applied(op health.Operation, s subsystem.Subsystem) {
	switch op {
	case health.OpCrash:
		c.printf("%s\n", c.palette.failed(s.Name+" crashed."))
	case health.OpHeal:
		c.printf("%s\n", c.palette.healthy(s.Name+" healed successfully."))
	case health.OpRestart:
		c.printf("%s\n", c.palette.healthy(s.Name+" restarted successfully."))
	}
}

func (c *Console) printf(format string, args ...any) {
	fmt.Fprintf(c.out, format, args...)
}

// readLines feeds input lines to the returned channel, which is closed at end
// of input. Every mode reads from the same channel so no line is lost when
// control moves between them. Lines have no length limit; an oversized line
// is delivered whole and rejected by the mode like any other bad command.
func readLines(in io.Reader, done <-chan struct{}) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		r := bufio.NewReader(in)
		for {
			line, err := r.ReadString('\n')
			if line != "" {
				select {
				case lines <- strings.TrimSuffix(line, "\n"):
				case <-done:
					return
				}
			}
			if err != nil {
				return
			}
		}
	}()
	return lines
}

func next(ctx context.Context, lines <-chan string) (string, bool) {
	select {
	case line, ok := <-lines:
		return strings.TrimRight(line, "\r"), ok
	case <-ctx.Done():
		return "", false
	}
}

// nextNonBlank skips empty lines, the way a numeric scan skips whitespace.
func nextNonBlank(ctx context.Context, lines <-chan string) (string, bool) {
	for {
		line, ok := next(ctx, lines)
		if !ok || strings.TrimSpace(line) != "" {
			return line, ok
		}
	}
}

type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}
