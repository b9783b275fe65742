// Package config provides ambient, interpreter-level configuration: pool
// size and the defaults handed to the http built-in's client. It is not
// part of any script-visible module; it configures the embedding host.
package config

import (
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"hype/internal/errs"
)

// HTTPConfig controls the shared http built-in client.
type HTTPConfig struct {
	TimeoutSeconds int `yaml:"timeout_seconds,omitempty"`
	MaxRedirects   int `yaml:"max_redirects,omitempty"`
	MaxIdleConns   int `yaml:"max_idle_conns_per_host,omitempty"`
}

// Timeout returns the configured HTTP timeout as a time.Duration.
func (h HTTPConfig) Timeout() time.Duration {
	return time.Duration(h.TimeoutSeconds) * time.Second
}

// PoolConfig controls a pkg/hype.Pool of interpreters.
type PoolConfig struct {
	Size int `yaml:"size,omitempty"`
}

// Config is the top-level ambient configuration for an embedding host.
type Config struct {
	Pool PoolConfig `yaml:"pool,omitempty"`
	HTTP HTTPConfig `yaml:"http,omitempty"`
}

// Default returns the configuration used when no file is supplied.
func Default() Config {
	return Config{
		Pool: PoolConfig{Size: 10},
		HTTP: HTTPConfig{TimeoutSeconds: 30, MaxRedirects: 10, MaxIdleConns: 10},
	}
}

// UnmarshalYAML applies defaults before decoding, so a config file that
// omits a section (or a field within one) still gets a usable value
// instead of Go's zero value.
func (c *Config) UnmarshalYAML(value *yaml.Node) error {
	type rawConfig Config
	raw := rawConfig(Default())

	if err := value.Decode(&raw); err != nil {
		return errs.Wrap(errs.InvalidManifest, err, "decoding config")
	}

	if raw.Pool.Size == 0 {
		raw.Pool.Size = Default().Pool.Size
	}
	if raw.HTTP.TimeoutSeconds == 0 {
		raw.HTTP.TimeoutSeconds = Default().HTTP.TimeoutSeconds
	}
	if raw.HTTP.MaxRedirects == 0 {
		raw.HTTP.MaxRedirects = Default().HTTP.MaxRedirects
	}
	if raw.HTTP.MaxIdleConns == 0 {
		raw.HTTP.MaxIdleConns = Default().HTTP.MaxIdleConns
	}

	*c = Config(raw)
	return nil
}

// Load decodes ambient configuration from YAML bytes, applying defaults
// for anything the file omits. Empty input yields Default().
func Load(data []byte) (Config, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return Default(), nil
	}
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Config{}, errs.Wrap(errs.InvalidManifest, err, "parsing config")
	}
	return c, nil
}

// LoadFile reads and decodes ambient configuration from path.
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errs.Wrap(errs.NotFound, err, "reading config %q", path)
	}
	return Load(data)
}
