package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fentz26/prochunt/internal/classifier"
	"github.com/fentz26/prochunt/internal/models"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 10.0, cfg.Scan.CPUThreshold)
	assert.Equal(t, 500.0, cfg.Scan.MemThresholdMB)
	assert.Equal(t, "prochunt", cfg.Scan.SelfMarker)
	assert.Equal(t, 500*time.Millisecond, cfg.Terminate.PollInterval)
	assert.Equal(t, 6, cfg.Terminate.PollAttempts)
	assert.Equal(t, "prochunt-baseline.json", filepath.Base(cfg.Baseline.Path))
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoadConfig_MissingFileYieldsDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Scan, cfg.Scan)
}

func TestLoadConfig_PartialFileKeepsDefaults(t *testing.T) {
	path := writeConfig(t, `
scan:
  cpu_threshold: 25
terminate:
  poll_interval: 250ms
rules:
  ignore: ["^backupd$"]
  auto_kill:
    - pattern: "storybook"
      reason: "Storybook dev server"
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 25.0, cfg.Scan.CPUThreshold)
	assert.Equal(t, 500.0, cfg.Scan.MemThresholdMB)
	assert.Equal(t, 250*time.Millisecond, cfg.Terminate.PollInterval)
	assert.Equal(t, 6, cfg.Terminate.PollAttempts)
	require.Len(t, cfg.Rules.AutoKill, 1)

	c, err := cfg.Classifier()
	require.NoError(t, err)
	cat, reason := c.Classify("node", "node storybook")
	assert.Equal(t, models.CategoryAutoKill, cat)
	assert.Equal(t, "Storybook dev server", reason)
	cat, _ = c.Classify("backupd", "")
	assert.Equal(t, models.CategoryIgnore, cat)
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "scan:\n  cpu_threshold: 25\n")
	t.Setenv("PROCHUNT_SCAN_CPU_THRESHOLD", "40")
	t.Setenv("PROCHUNT_TERMINATE_POLL_ATTEMPTS", "3")
	t.Setenv("PROCHUNT_LOGGING_LEVEL", "debug")
	t.Setenv("PROCHUNT_JOURNAL_ENABLED", "false")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 40.0, cfg.Scan.CPUThreshold)
	assert.Equal(t, 3, cfg.Terminate.PollAttempts)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.False(t, cfg.Journal.Enabled)
}

func TestLoadConfig_EnvIgnoresUnprefixedNames(t *testing.T) {
	t.Setenv("PATH", "/usr/bin")
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.NotEqual(t, "/usr/bin", cfg.Baseline.Path)
	assert.NotEqual(t, "/usr/bin", cfg.Journal.Path)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := map[string]string{
		"negative_cpu":   "scan:\n  cpu_threshold: -1\n",
		"zero_attempts":  "terminate:\n  poll_attempts: 0\n",
		"zero_interval":  "terminate:\n  settle_interval: 0s\n",
		"bad_pattern":    "rules:\n  ignore: [\"(\"]\n",
		"bad_level":      "logging:\n  level: loud\n",
		"empty_marker":   "scan:\n  self_marker: \"\"\n",
		"malformed_yaml": "scan: [\n",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, body))
			assert.Error(t, err)
		})
	}
}

func TestSaveConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := DefaultConfig()
	cfg.Scan.MemThresholdMB = 750
	cfg.Rules.AutoKill = []classifier.Rule{{Pattern: "jest.*--watch", Reason: "Jest watcher"}}

	require.NoError(t, SaveConfig(path, cfg))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(raw), "poll_interval: 500ms"))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 750.0, loaded.Scan.MemThresholdMB)
	assert.Equal(t, cfg.Rules.AutoKill, loaded.Rules.AutoKill)
}

func TestSaveConfig_RejectsInvalid(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Terminate.PollAttempts = 0
	assert.Error(t, SaveConfig(filepath.Join(t.TempDir(), "c.yaml"), cfg))
	assert.Error(t, SaveConfig(filepath.Join(t.TempDir(), "c.yaml"), nil))
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, ".prochunt", "journal.db"), ExpandPath("~/.prochunt/journal.db"))
	assert.Equal(t, home, ExpandPath("~"))
	assert.Equal(t, "/tmp/x", ExpandPath("/tmp/x"))
}

func TestDerivedSettings(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, cfg.Scan.SelfMarker, cfg.ScanOptions().SelfMarker)
	assert.Equal(t, cfg.Terminate.PollAttempts, cfg.ReaperConfig().PollAttempts)
	assert.Equal(t, []string{"stderr"}, cfg.LoggerConfig().OutputPaths)
}
