package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Load builds the configuration from three layers, lowest priority first:
// defaults, the YAML file at path (skipped when path is empty or missing),
// and environment variables. The merged result is validated before return.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// Missing file falls through to defaults + environment.
		case err != nil:
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
			}
		}
	}

	applyEnvironment(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvironment applies environment variable overrides, the highest
// priority layer.
func applyEnvironment(cfg *Config) {
	setString(&cfg.Environment, "DYNACACHE_ENV")
	setString(&cfg.AWS.Region, "AWS_REGION")
	setString(&cfg.AWS.Endpoint, "AWS_ENDPOINT_URL")
	setString(&cfg.Table.Name, "DYNACACHE_TABLE_NAME")
	setString(&cfg.Table.ExpiryIndex, "DYNACACHE_EXPIRY_INDEX")
	setInt(&cfg.Cache.ChunkSize, "DYNACACHE_CHUNK_SIZE")
	setInt(&cfg.Cache.PageSize, "DYNACACHE_PAGE_SIZE")
	setDuration(&cfg.Sweeper.Interval, "DYNACACHE_SWEEP_INTERVAL")
	setString(&cfg.Server.Addr, "DYNACACHE_SERVER_ADDR")
	setString(&cfg.Events.BusName, "DYNACACHE_EVENT_BUS")
	setString(&cfg.Telemetry.OTLPEndpoint, "DYNACACHE_OTLP_ENDPOINT")
}

func setString(target *string, key string) {
	if value := os.Getenv(key); value != "" {
		*target = value
	}
}

func setInt(target *int, key string) {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			*target = parsed
		}
	}
}

func setDuration(target *Duration, key string) {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			*target = Duration(parsed)
		}
	}
}
