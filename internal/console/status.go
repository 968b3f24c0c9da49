package console

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"self-healing-kernel/internal/subsystem"
)

type palette struct {
	healthy    func(a ...any) string
	failed     func(a ...any) string
	recovering func(a ...any) string
	title      func(a ...any) string
}

func newPalette(enabled bool) palette {
	mk := func(attrs ...color.Attribute) func(a ...any) string {
		c := color.New(attrs...)
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
		return c.SprintFunc()
	}
	return palette{
		healthy:    mk(color.FgGreen),
		failed:     mk(color.FgRed, color.Bold),
		recovering: mk(color.FgYellow),
		title:      mk(color.Bold),
	}
}

func (p palette) status(s subsystem.Status) func(a ...any) string {
	switch s {
	case subsystem.Healthy:
		return p.healthy
	case subsystem.Failed:
		return p.failed
	default:
		return p.recovering
	}
}

// WriteStatus prints the subsystem table in registry order.
func WriteStatus(w io.Writer, subsystems []subsystem.Subsystem, colored bool) {
	writeTable(w, subsystems, newPalette(colored))
}

func (c *Console) writeStatus() {
	writeTable(c.out, c.registry.Snapshot(), c.palette)
}

func writeTable(w io.Writer, subsystems []subsystem.Subsystem, p palette) {
	fmt.Fprintf(w, "\n%s\n--------------------------------\n", p.title("Subsystem Status"))
	for _, s := range subsystems {
		// pad before colouring so escape codes do not break alignment
		status := p.status(s.Status)(fmt.Sprintf("%-10s", s.Status))
		fmt.Fprintf(w, "%d) %-8s | %s | Health: %3d%% | Restarts: %d\n",
			s.ID, s.Name, status, s.Health, s.RestartCount)
	}
	fmt.Fprintf(w, "--------------------------------\n\n")
}
