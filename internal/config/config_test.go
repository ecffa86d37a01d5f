package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromEnv_Defaults(t *testing.T) {
	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.MinPickPeriod)
	assert.Equal(t, 30, cfg.MaxPickPeriod)
	assert.Empty(t, cfg.ClickHouseHost)
}

func TestLoadFromEnv_PickPeriodBounds(t *testing.T) {
	testCases := []struct {
		name        string
		min, max    string
		expectedMin int
		expectedMax int
	}{
		{name: "valid overrides", min: "7", max: "60", expectedMin: 7, expectedMax: 60},
		{name: "zero is ignored", min: "0", max: "0", expectedMin: 3, expectedMax: 30},
		{name: "negative is ignored", min: "-5", max: "-1", expectedMin: 3, expectedMax: 30},
		{name: "garbage is ignored", min: "soon", max: "later", expectedMin: 3, expectedMax: 30},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("LIBRARY_MIN_PICK_PERIOD", tc.min)
			t.Setenv("LIBRARY_MAX_PICK_PERIOD", tc.max)

			cfg, err := LoadFromEnv()
			require.NoError(t, err)
			assert.Equal(t, tc.expectedMin, cfg.MinPickPeriod)
			assert.Equal(t, tc.expectedMax, cfg.MaxPickPeriod)
		})
	}
}

func TestLoadFromEnv_ClickHouse(t *testing.T) {
	t.Setenv("CLICKHOUSE_HOST", "ch.example.com")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "ch.example.com", cfg.ClickHouseHost)
	assert.Equal(t, 9000, cfg.ClickHousePort)
	assert.Equal(t, "default", cfg.ClickHouseDatabase)
	assert.Equal(t, "default", cfg.ClickHouseUser)
	assert.False(t, cfg.ClickHouseUseTLS)

	t.Setenv("CLICKHOUSE_PORT", "9440")
	t.Setenv("CLICKHOUSE_USE_TLS", "true")
	cfg, err = LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, 9440, cfg.ClickHousePort)
	assert.True(t, cfg.ClickHouseUseTLS)
}

func TestLoadFromEnv_InvalidPort(t *testing.T) {
	t.Setenv("CLICKHOUSE_HOST", "ch.example.com")
	t.Setenv("CLICKHOUSE_PORT", "not-a-port")

	_, err := LoadFromEnv()
	assert.Error(t, err)
}
