package console

import (
	"context"
	"strings"

	"self-healing-kernel/internal/auto"
	"self-healing-kernel/internal/logs"
)

// automaticMode runs the tick loop in the background while waiting for
// "exit". The in-flight tick always completes before the mode returns.
func (c *Console) automaticMode(ctx context.Context, lines <-chan string) {
	c.autoLog.Append(logs.INFO, "Automatic mode started.")
	c.printf("Automatic mode running... type 'exit' to return.\n")

	runCtx, cancel := context.WithCancel(ctx)
	runner := auto.NewRunner(c.automatic, c.rng, c.period, c.metrics, c.logger)

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		runner.Start(runCtx)
	}()

	for {
		c.printf("(auto)> ")
		line, ok := next(ctx, lines)
		if !ok || strings.HasPrefix(strings.TrimSpace(line), "exit") {
			break
		}
	}

	cancel()
	<-stopped

	c.autoLog.Append(logs.INFO, "Exited automatic mode.")
}
