package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"self-healing-kernel/internal/config"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "kernel.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadConfig(t *testing.T) {
	t.Run("DefaultsWhenNoPath", func(t *testing.T) {
		cfg, err := loadConfig("")
		require.NoError(t, err)
		assert.Equal(t, config.Default(), cfg)
	})

	t.Run("InvalidFileIsRejected", func(t *testing.T) {
		_, err := loadConfig(writeConfig(t, "subsystems: []\n"))
		assert.ErrorIs(t, err, config.ErrNoSubsystems)
	})
}

func TestNewKernel(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, "audit:\n  dir: "+dir+"\nseed: 1\nlog:\n  level: error\n")

	k, err := newKernel(path)
	require.NoError(t, err)

	assert.Equal(t, 5, k.registry.Len())
	assert.Equal(t, filepath.Join(dir, "manual_kernel_log.txt"), k.manualLog.Path())
	assert.Equal(t, filepath.Join(dir, "auto_kernel_log.txt"), k.autoLog.Path())
}

func TestStatusCommand(t *testing.T) {
	color.NoColor = true
	configPath = writeConfig(t, "subsystems: [GPU, Disk]\n")
	t.Cleanup(func() { configPath = "" })

	cmd := newStatusCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "1) GPU      | HEALTHY    | Health: 100% | Restarts: 0\n")
	assert.Contains(t, out.String(), "2) Disk     | HEALTHY    | Health: 100% | Restarts: 0\n")
}
