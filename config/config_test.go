package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
[log]
level = "debug"
format = "json"

[server]
addr = "127.0.0.1:6000"

[bootstrap]
file = "seed.txt"
verify = true

[wal]
dir = "/tmp/wal"
segment-size = 4096
segment-duration = "10s"

[snapshot]
interval = "1m30s"

[outbox]
enabled = true

[kafka]
client = "sarama"
brokers = ["k1:9092", "k2:9092"]
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "counter.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	cfg, err := Load(writeConfig(t, sample))
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "127.0.0.1:6000", cfg.Server.Addr)
	assert.True(t, cfg.Bootstrap.Verify)
	assert.Equal(t, int64(4096), cfg.WAL.SegmentSize)
	assert.Equal(t, 10*time.Second, cfg.WAL.SegmentDuration.Duration)
	assert.Equal(t, 90*time.Second, cfg.Snapshot.Interval.Duration)
	// untouched keys keep their defaults
	assert.Equal(t, "./snapshots", cfg.Snapshot.Dir)
	assert.Equal(t, "event-counts", cfg.Kafka.Topic)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := map[string]string{
		"no brokers":     "[outbox]\nenabled = true\n",
		"bad client":     "[outbox]\nenabled = true\n[kafka]\nclient = \"x\"\nbrokers = [\"k\"]\n",
		"zero segment":   "[wal]\nsegment-size = 0\n",
		"empty addr":     "[server]\naddr = \"\"\n",
		"metrics noaddr": "[metrics]\nenabled = true\naddr = \"\"\n",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, body))
			assert.True(t, errors.Is(err, ErrInvalid), "got %v", err)
		})
	}
}

func TestLoadBadDuration(t *testing.T) {
	_, err := Load(writeConfig(t, "[snapshot]\ninterval = \"soon\"\n"))
	require.Error(t, err)
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
}
