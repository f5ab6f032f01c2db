// Package config holds the tunable settings of a sender binary. Settings are
// layered: built-in defaults, then an optional YAML file, then environment
// variables, then command-line flags
package config

import (
	"context"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/sethvargo/go-envconfig"
	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so it parses from "250ms"-style strings in
// both YAML and the environment
type Duration time.Duration

// Std returns the wrapped time.Duration
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// UnmarshalYAML implements yaml.Unmarshaler
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	return d.UnmarshalText([]byte(s))
}

// UnmarshalText implements encoding.TextUnmarshaler
func (d *Duration) UnmarshalText(b []byte) error {
	parsed, err := time.ParseDuration(string(b))
	if err != nil {
		return errors.Wrapf(err, "invalid duration %q", b)
	}
	*d = Duration(parsed)
	return nil
}

// Config is the full configuration of one sender run
type Config struct {
	// BindAddr is the local address the transfer socket binds to
	BindAddr string `yaml:"bind_addr" env:"YUSEND_BIND_ADDR,overwrite"`

	// PeerAddr is the fixed receiver endpoint
	PeerAddr string `yaml:"peer_addr" env:"YUSEND_PEER_ADDR,overwrite"`

	// File is the path of the file to transfer
	File string `yaml:"file" env:"YUSEND_FILE,overwrite"`

	// RecvTimeout bounds every receive on the transfer socket
	RecvTimeout Duration `yaml:"recv_timeout" env:"YUSEND_RECV_TIMEOUT,overwrite"`

	// LogLevel is a logrus level name; per-packet traces appear at debug
	LogLevel string `yaml:"log_level" env:"YUSEND_LOG_LEVEL,overwrite"`

	// MetricsAddr, when set, serves live Prometheus metrics during the
	// transfer
	MetricsAddr string `yaml:"metrics_addr" env:"YUSEND_METRICS_ADDR,overwrite"`

	// Progress draws a progress bar of acknowledged bytes on stderr
	Progress bool `yaml:"progress" env:"YUSEND_PROGRESS,overwrite"`
}

// Default returns the built-in configuration with the variant's input path
func Default(file string) Config {
	return Config{
		BindAddr:    "0.0.0.0:5002",
		PeerAddr:    "127.0.0.1:5001",
		File:        file,
		RecvTimeout: Duration(1 * time.Second),
		LogLevel:    "info",
	}
}

// LoadFile overlays the settings found in a YAML file
func (c *Config) LoadFile(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "read config file %s", path)
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return errors.Wrapf(err, "parse config file %s", path)
	}
	return nil
}

// LoadEnv overlays settings from the process environment
func (c *Config) LoadEnv(ctx context.Context) error {
	if err := envconfig.Process(ctx, c); err != nil {
		return errors.Wrap(err, "process environment")
	}
	return nil
}
