package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitSymbols(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected []string
	}{
		{"empty", "", nil},
		{"single", "aapl", []string{"AAPL"}},
		{"mixed case and spaces", " aapl, msft ,GOOG", []string{"AAPL", "MSFT", "GOOG"}},
		{"duplicates collapse", "AAPL,aapl,MSFT", []string{"AAPL", "MSFT"}},
		{"empty entries dropped", "AAPL,,MSFT,", []string{"AAPL", "MSFT"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, splitSymbols(tt.raw))
		})
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("FRONTIER_DATA_DIR", t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.DevMode)
	assert.False(t, cfg.Backup.Enabled())
}

func TestLoad_BackupValidation(t *testing.T) {
	t.Setenv("FRONTIER_DATA_DIR", t.TempDir())
	t.Setenv("BACKUP_S3_BUCKET", "frontier-backups")

	_, err := Load()
	require.Error(t, err, "bucket without credentials must be rejected")

	t.Setenv("BACKUP_S3_ACCESS_KEY_ID", "key")
	t.Setenv("BACKUP_S3_SECRET_ACCESS_KEY", "secret")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.Backup.Enabled())
}
