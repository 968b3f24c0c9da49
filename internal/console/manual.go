package console

import (
	"context"
	"strings"

	"self-healing-kernel/internal/health"
	"self-healing-kernel/internal/logs"
)

const helpText = "Commands: status | crash <id> | heal <id> | restart <id> | exit\n"

func (c *Console) manualMode(ctx context.Context, lines <-chan string) {
	c.manualLog.Append(logs.INFO, "Manual mode started.")

	for {
		c.printf("kernel(manual)> ")

		line, ok := next(ctx, lines)
		if !ok {
			return
		}

		cmd := strings.TrimSpace(line)
		switch {
		case cmd == "status":
			c.writeStatus()
		case cmd == "exit":
			c.manualLog.Append(logs.INFO, "Exited manual mode.")
			return
		case cmd == "help":
			c.printf(helpText)
		default:
			op, arg, found := parseOperation(cmd)
			if !found {
				c.printf("Unknown command. Type 'help'.\n")
				continue
			}
			c.manual.Do(op, atoi(arg))
		}
	}
}

// parseOperation splits "<op> <id>". The id is left unparsed.
func parseOperation(cmd string) (health.Operation, string, bool) {
	for _, op := range []health.Operation{health.OpCrash, health.OpHeal, health.OpRestart} {
		if arg, ok := strings.CutPrefix(cmd, string(op)+" "); ok {
			return op, arg, true
		}
	}
	return "", "", false
}
