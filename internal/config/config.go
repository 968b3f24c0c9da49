package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"self-healing-kernel/internal/logs"
	"self-healing-kernel/internal/subsystem"
)

// AuditConfig locates the two audit destinations.
type AuditConfig struct {
	Dir        string `yaml:"dir"`
	ManualFile string `yaml:"manual_file"`
	AutoFile   string `yaml:"auto_file"`
	MaxBytes   int64  `yaml:"max_bytes"` // rotation threshold
	TailSize   int    `yaml:"tail_size"` // records kept in memory per destination
}

// LogConfig controls diagnostic logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug|info|warn|error
	Format string `yaml:"format"` // console|json
}

// HTTPConfig controls the admin surface of `serve`.
type HTTPConfig struct {
	Addr string `yaml:"addr"`
	Auto bool   `yaml:"auto"` // run automatic mode in the background
}

type Config struct {
	Subsystems []string    `yaml:"subsystems"`
	Audit      AuditConfig `yaml:"audit"`
	Log        LogConfig   `yaml:"log"`
	HTTP       HTTPConfig  `yaml:"http"`
	Seed       uint64      `yaml:"seed"` // 0 = seed from the clock
}

func Default() Config {
	return Config{
		Subsystems: subsystem.DefaultNames(),
		Audit: AuditConfig{
			Dir:        ".",
			ManualFile: "manual_kernel_log.txt",
			AutoFile:   "auto_kernel_log.txt",
			MaxBytes:   logs.DefaultMaxBytes,
			TailSize:   200,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		HTTP: HTTPConfig{
			Addr: ":8080",
			Auto: true,
		},
	}
}

// Load reads a YAML file on top of Default. Keys missing from the file keep
// their default values. The result is not validated.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// ManualPath is the audit file for manual mode events.
func (c Config) ManualPath() string {
	return filepath.Join(c.Audit.Dir, c.Audit.ManualFile)
}

// AutoPath is the audit file for automatic mode events.
func (c Config) AutoPath() string {
	return filepath.Join(c.Audit.Dir, c.Audit.AutoFile)
}
