// Package config loads the server configuration from a TOML file.
package config

import (
	"time"

	"github.com/BurntSushi/toml"
	"github.com/cockroachdb/errors"

	"eventcounter/infra/kafka"
	"eventcounter/infra/logutil"
)

type Config struct {
	Log       logutil.LogConfig `toml:"log"`
	Server    ServerConfig      `toml:"server"`
	Bootstrap BootstrapConfig   `toml:"bootstrap"`
	WAL       WALConfig         `toml:"wal"`
	Snapshot  SnapshotConfig    `toml:"snapshot"`
	Outbox    OutboxConfig      `toml:"outbox"`
	Kafka     KafkaConfig       `toml:"kafka"`
	Metrics   MetricsConfig     `toml:"metrics"`
}

type ServerConfig struct {
	Addr string `toml:"addr"`
}

type BootstrapConfig struct {
	// File is the sorted seed file loaded when no snapshot exists.
	File string `toml:"file"`
	// Verify checks that the seed ids strictly increase before loading.
	Verify bool `toml:"verify"`
}

type WALConfig struct {
	Dir             string   `toml:"dir"`
	SegmentSize     int64    `toml:"segment-size"`
	SegmentDuration Duration `toml:"segment-duration"`
	SyncEveryWrite  bool     `toml:"sync-every-write"`
}

type SnapshotConfig struct {
	Dir      string   `toml:"dir"`
	Interval Duration `toml:"interval"`
}

type OutboxConfig struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`
}

type KafkaConfig struct {
	Client       string   `toml:"client"`
	Brokers      []string `toml:"brokers"`
	Topic        string   `toml:"topic"`
	PollInterval Duration `toml:"poll-interval"`
}

type MetricsConfig struct {
	Enabled bool   `toml:"enabled"`
	Addr    string `toml:"addr"`
}

// Duration lets TOML carry values like "250ms" or "1m".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return errors.Wrapf(err, "config: duration %q", text)
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func Default() Config {
	return Config{
		Log:    logutil.LogConfig{Level: "info", Format: "console"},
		Server: ServerConfig{Addr: ":50051"},
		WAL: WALConfig{
			Dir:             "./wal_entry",
			SegmentSize:     2 * 1024 * 1024,
			SegmentDuration: Duration{time.Minute},
		},
		Snapshot: SnapshotConfig{
			Dir:      "./snapshots",
			Interval: Duration{30 * time.Second},
		},
		Outbox: OutboxConfig{Dir: "./wal_exit"},
		Kafka: KafkaConfig{
			Client:       kafka.ClientKafkaGo,
			Topic:        "event-counts",
			PollInterval: Duration{250 * time.Millisecond},
		},
		Metrics: MetricsConfig{Addr: ":9090"},
	}
}

var ErrInvalid = errors.New("config: invalid")

// Load decodes path over Default and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, errors.Wrapf(err, "config: decode %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch {
	case c.Server.Addr == "":
		return errors.Wrap(ErrInvalid, "server.addr is empty")
	case c.WAL.Dir == "":
		return errors.Wrap(ErrInvalid, "wal.dir is empty")
	case c.WAL.SegmentSize <= 0:
		return errors.Wrapf(ErrInvalid, "wal.segment-size %d", c.WAL.SegmentSize)
	case c.Snapshot.Dir == "":
		return errors.Wrap(ErrInvalid, "snapshot.dir is empty")
	case c.Snapshot.Interval.Duration <= 0:
		return errors.Wrapf(ErrInvalid, "snapshot.interval %s", c.Snapshot.Interval)
	}

	if c.Outbox.Enabled {
		if c.Outbox.Dir == "" {
			return errors.Wrap(ErrInvalid, "outbox.dir is empty")
		}
		if len(c.Kafka.Brokers) == 0 {
			return errors.Wrap(ErrInvalid, "outbox enabled without kafka.brokers")
		}
		if c.Kafka.Client != kafka.ClientKafkaGo && c.Kafka.Client != kafka.ClientSarama {
			return errors.Wrapf(ErrInvalid, "kafka.client %q", c.Kafka.Client)
		}
		if c.Kafka.PollInterval.Duration <= 0 {
			return errors.Wrapf(ErrInvalid, "kafka.poll-interval %s", c.Kafka.PollInterval)
		}
	}
	if c.Metrics.Enabled && c.Metrics.Addr == "" {
		return errors.Wrap(ErrInvalid, "metrics.addr is empty")
	}
	return nil
}
