package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
[log]
level = "debug"
format = "json"

[db]
host = "db.internal"
port = 6543
user = "market"
database = "market"

[market]
strict_pack_types = true
sweep_interval = "30s"

[chain]
request_timeout = "5s"
`

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(sampleConfig), 0o600))
	t.Setenv("DB_PASSWORD", "from-env")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, slog.LevelDebug, cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "db.internal", cfg.DB.Host)
	assert.Equal(t, 6543, cfg.DB.Port)
	assert.Equal(t, "from-env", cfg.DB.Password)
	assert.True(t, cfg.Market.StrictPackTypes)
	assert.Equal(t, 30*time.Second, cfg.Market.SweepInterval.Std())
	assert.Equal(t, 5*time.Second, cfg.Chain.RequestTimeout.Std())

	// untouched sections keep their defaults
	assert.Equal(t, DefaultEventStream, cfg.NATS.Stream)
	assert.Equal(t, DefaultChainSubjectPrefix, cfg.Chain.SubjectPrefix)
	assert.Equal(t, DefaultSweepBatchSize, cfg.Market.SweepBatch)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}

func TestLoadConfigBadDuration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[market]\nsweep_interval = \"soon\"\n"), 0o600))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}
