package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds the application configuration
type Config struct {
	// Pick-period bounds in days, enforced when a book is registered
	MinPickPeriod int
	MaxPickPeriod int

	// ClickHouse configuration for the snapshot persister. Host may stay
	// empty when the process runs without persistence.
	ClickHouseHost     string
	ClickHousePort     int
	ClickHouseDatabase string
	ClickHouseUser     string
	ClickHousePassword string
	ClickHouseUseTLS   bool
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() (*Config, error) {
	config := &Config{
		MinPickPeriod: 3,
		MaxPickPeriod: 30,
	}

	// Pick-period bounds are optional. Non-positive or malformed values
	// are ignored and the defaults stand.
	if v := os.Getenv("LIBRARY_MIN_PICK_PERIOD"); v != "" {
		if days, err := strconv.Atoi(v); err == nil && days > 0 {
			config.MinPickPeriod = days
		}
	}
	if v := os.Getenv("LIBRARY_MAX_PICK_PERIOD"); v != "" {
		if days, err := strconv.Atoi(v); err == nil && days > 0 {
			config.MaxPickPeriod = days
		}
	}

	// ClickHouse configuration (only validated when a host is given)
	config.ClickHouseHost = os.Getenv("CLICKHOUSE_HOST")
	if config.ClickHouseHost != "" {
		portStr := os.Getenv("CLICKHOUSE_PORT")
		if portStr == "" {
			config.ClickHousePort = 9000 // Default ClickHouse native port
		} else {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return nil, fmt.Errorf("invalid CLICKHOUSE_PORT: %w", err)
			}
			config.ClickHousePort = port
		}

		config.ClickHouseDatabase = os.Getenv("CLICKHOUSE_DATABASE")
		if config.ClickHouseDatabase == "" {
			config.ClickHouseDatabase = "default"
		}

		config.ClickHouseUser = os.Getenv("CLICKHOUSE_USER")
		if config.ClickHouseUser == "" {
			config.ClickHouseUser = "default"
		}

		config.ClickHousePassword = os.Getenv("CLICKHOUSE_PASSWORD")
		// Password is optional, can be empty

		config.ClickHouseUseTLS = os.Getenv("CLICKHOUSE_USE_TLS") == "true"
	}

	return config, nil
}
