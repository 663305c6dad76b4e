package redis

import (
	"testing"
	"time"

	"rental-backend/internal/config"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) (config.RedisConfig, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	return config.RedisConfig{
		Host:         mr.Host(),
		Port:         mr.Port(),
		DB:           0,
		PoolSize:     5,
		MinIdleConns: 1,
		MaxRetries:   1,
		RetryDelay:   100 * time.Millisecond,
		DialTimeout:  time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
		PoolTimeout:  time.Second,
	}, mr
}

func TestNewClient(t *testing.T) {
	cfg, _ := testConfig(t)

	client := NewClient(cfg)
	defer client.Close()

	require.NotNil(t, client.GetClient())
	assert.True(t, client.IsConnected())
}

func TestHealthCheck(t *testing.T) {
	cfg, mr := testConfig(t)

	client := NewClient(cfg)
	defer client.Close()

	status := client.HealthCheck()
	assert.True(t, status.IsConnected)
	assert.NotEmpty(t, status.ConnectionInfo)
	assert.False(t, status.LastPing.IsZero())
	assert.Empty(t, status.Error)

	mr.Close()

	status = client.HealthCheck()
	assert.False(t, status.IsConnected)
	assert.NotEmpty(t, status.Error)
}

func TestGetConnectionStats(t *testing.T) {
	cfg, _ := testConfig(t)

	client := NewClient(cfg)
	defer client.Close()

	stats := client.GetConnectionStats()
	require.NotNil(t, stats)

	for _, key := range []string{"hits", "misses", "timeouts", "totalConns", "idleConns", "staleConns", "isConnected"} {
		assert.Contains(t, stats, key)
	}
}
