package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.LoadDefaults()

	assert.Equal(t, ":8080", cfg.EndpointAddr)
	assert.Equal(t, 5*time.Minute, cfg.DisplayCacheTTL)
	assert.Equal(t, "127.0.0.1:6379", cfg.RedisAddr)
	assert.NotEmpty(t, cfg.DatabaseDSN)
	assert.NotEmpty(t, cfg.S3Bucket)
}

func TestParseFlags(t *testing.T) {
	origArgs := os.Args
	defer func() { os.Args = origArgs }()

	os.Args = []string{"server", "-a", ":9999", "-l", "10", "-r", "redis:6379"}

	cfg := &Config{}
	cfg.LoadDefaults()
	parseFlags(cfg)

	assert.Equal(t, ":9999", cfg.EndpointAddr)
	assert.Equal(t, 10*time.Minute, cfg.DisplayCacheTTL)
	assert.Equal(t, "redis:6379", cfg.RedisAddr)
}

func TestParseJson(t *testing.T) {
	origArgs := os.Args
	defer func() { os.Args = origArgs }()

	dir := t.TempDir()
	path := filepath.Join(dir, "conf.json")
	data := `{
		"endpoint_addr": ":7070",
		"database_dsn": "postgres://x",
		"secret_key": "k",
		"access_token_validity_duration": "15m",
		"redis_addr": "cache:6379",
		"redis_db": 2,
		"display_cache_ttl": "3m",
		"s3_bucket": "b"
	}`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	os.Args = []string{"server", "-c", path}

	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)

	assert.Equal(t, ":7070", cfg.EndpointAddr)
	assert.Equal(t, "postgres://x", cfg.DatabaseDSN)
	assert.Equal(t, 15*time.Minute, cfg.AccessTokenValidityDuration)
	assert.Equal(t, "cache:6379", cfg.RedisAddr)
	assert.Equal(t, 2, cfg.RedisDB)
	assert.Equal(t, 3*time.Minute, cfg.DisplayCacheTTL)
	assert.Equal(t, "b", cfg.S3Bucket)
}
