package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultLiteConfig(t *testing.T) {
	cfg := DefaultLiteConfig()

	assert.NotEmpty(t, cfg.DataDir)
	assert.Equal(t, 1000, cfg.CacheMaxItems)
	assert.Equal(t, 24*time.Hour, cfg.CacheTTL)
	assert.Equal(t, 3, cfg.CDS.ElaborateTopCauses)
	assert.Equal(t, 365, cfg.CDS.LabRecencyDays)
	assert.Equal(t, "stdio", cfg.Transport)
	assert.Equal(t, 8080, cfg.HTTPPort)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoadLiteConfig_Defaults(t *testing.T) {
	// Clear relevant env vars
	clearEnvVars(t)

	cfg := LoadLiteConfig()

	assert.NotEmpty(t, cfg.DataDir)
	assert.Equal(t, 1000, cfg.CacheMaxItems)
	assert.Equal(t, "stdio", cfg.Transport)
}

func TestLoadLiteConfig_EnvironmentOverrides(t *testing.T) {
	clearEnvVars(t)

	// Set environment variables
	os.Setenv("PCOS_CDS_DATA_DIR", "/tmp/test-pcos-cds")
	os.Setenv("PCOS_CDS_CACHE_MAX_ITEMS", "500")
	os.Setenv("PCOS_CDS_CACHE_TTL", "12h")
	os.Setenv("PCOS_CDS_LAB_RECENCY_DAYS", "180")
	os.Setenv("PCOS_CDS_TRANSPORT", "http")
	os.Setenv("PCOS_CDS_HTTP_PORT", "9090")
	os.Setenv("PCOS_CDS_LOG_LEVEL", "debug")

	defer clearEnvVars(t)

	cfg := LoadLiteConfig()

	assert.Equal(t, "/tmp/test-pcos-cds", cfg.DataDir)
	assert.Equal(t, 500, cfg.CacheMaxItems)
	assert.Equal(t, 12*time.Hour, cfg.CacheTTL)
	assert.Equal(t, 180, cfg.CDS.LabRecencyDays)
	assert.Equal(t, "http", cfg.Transport)
	assert.Equal(t, 9090, cfg.HTTPPort)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadLiteConfig_InvalidNumbersIgnored(t *testing.T) {
	clearEnvVars(t)

	os.Setenv("PCOS_CDS_CACHE_MAX_ITEMS", "not-a-number")
	os.Setenv("PCOS_CDS_LAB_RECENCY_DAYS", "-30")

	defer clearEnvVars(t)

	cfg := LoadLiteConfig()

	assert.Equal(t, 1000, cfg.CacheMaxItems)
	assert.Equal(t, 365, cfg.CDS.LabRecencyDays)
}

func TestLiteConfig_HistoryDBPath(t *testing.T) {
	cfg := &LiteConfig{DataDir: "/home/user/.pcos-cds"}

	path := cfg.HistoryDBPath()

	assert.Equal(t, "/home/user/.pcos-cds/history.db", path)
}

func TestLiteConfig_ExportDir(t *testing.T) {
	cfg := &LiteConfig{DataDir: "/home/user/.pcos-cds"}

	path := cfg.ExportDir()

	assert.Equal(t, "/home/user/.pcos-cds/exports", path)
}

func TestLiteConfig_EnsureDataDir(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "config-test-*")
	require.NoError(t, err)
	defer os.RemoveAll(tmpDir)

	cfg := &LiteConfig{DataDir: filepath.Join(tmpDir, "pcos-cds")}

	err = cfg.EnsureDataDir()
	require.NoError(t, err)

	// Verify directories exist
	_, err = os.Stat(cfg.DataDir)
	assert.NoError(t, err)

	_, err = os.Stat(cfg.ExportDir())
	assert.NoError(t, err)
}

func clearEnvVars(t *testing.T) {
	t.Helper()
	vars := []string{
		"PCOS_CDS_DATA_DIR",
		"PCOS_CDS_CACHE_MAX_ITEMS",
		"PCOS_CDS_CACHE_TTL",
		"PCOS_CDS_LAB_RECENCY_DAYS",
		"PCOS_CDS_TRANSPORT",
		"PCOS_CDS_HTTP_PORT",
		"PCOS_CDS_LOG_LEVEL",
		"PCOS_CDS_LOG_FORMAT",
	}
	for _, v := range vars {
		os.Unsetenv(v)
	}
}
