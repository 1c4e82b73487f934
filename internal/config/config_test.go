package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/morphology-mcp/internal/morphology"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, runtime.NumCPU(), cfg.Processing.Workers)
	assert.Equal(t, DefaultMaxIterations, cfg.Processing.MaxIterations)
	assert.False(t, cfg.Processing.FullyConnected)
	assert.False(t, cfg.Processing.CheckPreconditions)
	assert.Equal(t, "info", cfg.Logging.Level)
	require.NoError(t, cfg.Validate())
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfig_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := "processing:\n  workers: 3\n  fullyConnected: true\nlogging:\n  level: debug\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Processing.Workers)
	assert.True(t, cfg.Processing.FullyConnected)
	assert.Equal(t, DefaultMaxIterations, cfg.Processing.MaxIterations)
	assert.Equal(t, 1024*1024, cfg.Server.MaxMessageBytes)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadConfig_Errors(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name string
		data string
	}{
		{"malformed yaml", "processing: [unterminated\n"},
		{"negative workers", "processing:\n  workers: -1\n"},
		{"negative cap", "processing:\n  maxIterations: -5\n"},
		{"tiny message limit", "server:\n  maxMessageBytes: 10\n"},
		{"unknown level", "logging:\n  level: chatty\n"},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name+".yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.data), 0644), "case %d", i)

			_, err := LoadConfig(path)
			assert.Error(t, err)
		})
	}
}

func TestSaveAndLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "config.yaml")

	cfg := DefaultConfig()
	cfg.Processing.Workers = 2
	cfg.Processing.MaxIterations = 0
	cfg.Processing.CheckPreconditions = true
	require.NoError(t, SaveConfig(cfg, path))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestCreateDefaultConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	require.NoError(t, CreateDefaultConfigFile(path))
	assert.FileExists(t, path)

	err := CreateDefaultConfigFile(path)
	assert.Error(t, err, "second create must not overwrite")
}

func TestLogging_ParseLevel(t *testing.T) {
	lvl, err := Logging{}.ParseLevel()
	require.NoError(t, err)
	assert.Equal(t, log.InfoLevel, lvl)

	lvl, err = Logging{Level: "warn"}.ParseLevel()
	require.NoError(t, err)
	assert.Equal(t, log.WarnLevel, lvl)

	_, err = Logging{Level: "loud"}.ParseLevel()
	assert.Error(t, err)
}

func TestProcessing_Options(t *testing.T) {
	opts := Processing{Workers: 4, MaxIterations: 50, FullyConnected: true, CheckPreconditions: true}.Options()

	assert.Equal(t, 4, opts.Workers)
	assert.Equal(t, 50, opts.MaxIterations)
	assert.Equal(t, morphology.FullyConnected, opts.Connectivity)
	assert.True(t, opts.CheckPreconditions)
	assert.False(t, opts.RunOneIteration)

	opts = Processing{}.Options()
	assert.Equal(t, runtime.NumCPU(), opts.Workers)
	assert.Equal(t, morphology.FaceConnected, opts.Connectivity)
	assert.Zero(t, opts.MaxIterations)
}

func TestSaveAndLoadConfig_TOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg := DefaultConfig()
	cfg.Processing.Workers = 6
	cfg.Processing.FullyConnected = true
	cfg.Logging.Level = "debug"
	require.NoError(t, SaveConfig(cfg, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "[processing]")

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoadConfig_PartialTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.TOML")
	data := "[processing]\nmaxIterations = 25\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 25, cfg.Processing.MaxIterations)
	assert.Equal(t, runtime.NumCPU(), cfg.Processing.Workers)
}

func TestMarshal_FormatByExtension(t *testing.T) {
	cfg := DefaultConfig()

	y, err := Marshal(cfg, "config.yaml")
	require.NoError(t, err)
	assert.Contains(t, string(y), "processing:")

	tm, err := Marshal(cfg, "config.toml")
	require.NoError(t, err)
	assert.Contains(t, string(tm), "maxIterations = 10000")
}
