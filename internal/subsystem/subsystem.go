package subsystem

import (
	"fmt"
	"strings"
)

// Status is the health state of a subsystem.
type Status int

const (
	Healthy Status = iota
	Failed
	Recovering
)

const (
	FullHealth = 100
	NoHealth   = 0
)

func (s Status) String() string {
	switch s {
	case Healthy:
		return "HEALTHY"
	case Failed:
		return "FAILED"
	case Recovering:
		return "RECOVERING"
	default:
		return "UNKNOWN"
	}
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(text []byte) error {
	switch strings.ToUpper(string(text)) {
	case "HEALTHY":
		*s = Healthy
	case "FAILED":
		*s = Failed
	case "RECOVERING":
		*s = Recovering
	default:
		return fmt.Errorf("unknown subsystem status %q", text)
	}
	return nil
}

// Subsystem is a point-in-time copy of one registry entry.
type Subsystem struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	Status       Status `json:"status"`
	Health       int    `json:"health"`
	RestartCount int    `json:"restart_count"`
}

// DefaultNames are the subsystems the simulator boots with.
func DefaultNames() []string {
	return []string{"CPU", "Memory", "I/O", "Network", "Storage"}
}
