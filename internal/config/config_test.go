package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, time.Thursday, cfg.Merge.Anchor())
	assert.Equal(t, []time.Weekday{time.Friday, time.Saturday}, cfg.Merge.Targets())
}

func TestLoadFrom_FileThenEnv(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`
server:
  port: 9000
logging:
  level: debug
merge:
  anchor_weekday: Wednesday
  target_weekdays: [Thursday]
`), 0644))

	t.Setenv("PIPELEDGER_SERVER_PORT", "9100")
	t.Setenv("PIPELEDGER_MERGE_GAP_FILL", "false")

	cfg, err := LoadFrom(file)
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.Server.Port, "env wins over file")
	assert.Equal(t, "debug", cfg.Logging.Level, "file wins over default")
	assert.False(t, cfg.Merge.GapFill)
	assert.Equal(t, time.Wednesday, cfg.Merge.Anchor())
	assert.Equal(t, []time.Weekday{time.Thursday}, cfg.Merge.Targets())
	assert.Equal(t, DefaultShutdownTimeout, cfg.Server.ShutdownTimeout, "untouched default survives")
}

func TestLoadFrom_RejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"bad port", map[string]string{"PIPELEDGER_SERVER_PORT": "70000"}},
		{"bad level", map[string]string{"PIPELEDGER_LOGGING_LEVEL": "chatty"}},
		{"bad weekday", map[string]string{"PIPELEDGER_MERGE_ANCHOR_WEEKDAY": "Funday"}},
		{"bad exporter", map[string]string{"PIPELEDGER_TELEMETRY_METRIC_EXPORTER": "statsd"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := LoadFrom("")
			assert.Error(t, err)
		})
	}
}

func TestParseWeekday(t *testing.T) {
	wd, err := ParseWeekday(" friday ")
	require.NoError(t, err)
	assert.Equal(t, time.Friday, wd)

	_, err = ParseWeekday("fri")
	assert.Error(t, err)
}
