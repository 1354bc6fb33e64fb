package audit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDisabledByDefault(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.False(t, cfg.IsEnabled())
}

func TestLoadConfigEnabledRequiresCredentials(t *testing.T) {
	t.Setenv("AUDIT_S3_ENABLED", "true")

	_, err := LoadConfig()
	assert.Error(t, err)

	t.Setenv("AUDIT_S3_ACCESS_KEY_ID", "key")
	t.Setenv("AUDIT_S3_SECRET_ACCESS_KEY", "secret")
	t.Setenv("AUDIT_S3_BUCKET_NAME", "paycore-audit")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.True(t, cfg.IsEnabled())
	assert.Equal(t, 500, cfg.BatchSize)
	assert.Equal(t, 15*time.Minute, cfg.ExportInterval)
}

func TestLoadConfigCustomExportInterval(t *testing.T) {
	t.Setenv("AUDIT_S3_EXPORT_INTERVAL_MINUTES", "5")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 5*time.Minute, cfg.ExportInterval)
}
