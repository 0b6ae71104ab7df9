// Package config provides layered configuration for the cache harness:
// defaults, an optional YAML file, then environment variable overrides,
// validated as a whole before use.
package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so YAML values like "30s" decode directly.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config is the full configuration of the cache harness.
type Config struct {
	Environment string          `yaml:"environment" validate:"oneof=development staging production"`
	AWS         AWSConfig       `yaml:"aws"`
	Table       TableConfig     `yaml:"table"`
	Cache       CacheConfig     `yaml:"cache"`
	Sweeper     SweeperConfig   `yaml:"sweeper"`
	Server      ServerConfig    `yaml:"server"`
	Events      EventsConfig    `yaml:"events"`
	Telemetry   TelemetryConfig `yaml:"telemetry"`
}

// AWSConfig selects the AWS region and an optional endpoint override for
// local development against DynamoDB Local.
type AWSConfig struct {
	Region   string `yaml:"region"`
	Endpoint string `yaml:"endpoint"`
}

// TableConfig names the storage location.
type TableConfig struct {
	Name        string `yaml:"name" validate:"required"`
	ExpiryIndex string `yaml:"expiry_index" validate:"required"`
}

// CacheConfig bounds the store's query shapes. ChunkSize is capped by the
// membership-predicate limit; PageSize by the atomic batch limit.
type CacheConfig struct {
	ChunkSize int `yaml:"chunk_size" validate:"min=1,max=100"`
	PageSize  int `yaml:"page_size" validate:"min=1,max=100"`
}

// SweeperConfig drives the scheduled expiry sweep.
type SweeperConfig struct {
	Interval Duration `yaml:"interval"`
}

// ServerConfig configures the admin HTTP server.
type ServerConfig struct {
	Addr string `yaml:"addr" validate:"required"`
}

// EventsConfig names the EventBridge bus for cache events. Empty disables
// publishing.
type EventsConfig struct {
	BusName string `yaml:"bus_name"`
}

// TelemetryConfig configures tracing export. Empty disables the exporter.
type TelemetryConfig struct {
	OTLPEndpoint string `yaml:"otlp_endpoint"`
}

// Default returns the configuration used when nothing else is specified.
func Default() *Config {
	return &Config{
		Environment: "development",
		AWS: AWSConfig{
			Region: "us-east-1",
		},
		Table: TableConfig{
			Name:        "responseCache",
			ExpiryIndex: "ExpireAtIndex",
		},
		Cache: CacheConfig{
			ChunkSize: 10,
			PageSize:  100,
		},
		Sweeper: SweeperConfig{
			Interval: Duration(time.Minute),
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
	}
}

// Validate checks the configuration as a whole.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	if c.Sweeper.Interval.Std() < time.Second {
		return fmt.Errorf("sweeper interval %s is below the 1s minimum", c.Sweeper.Interval.Std())
	}
	return nil
}
