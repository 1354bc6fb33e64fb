package audit

import (
	"errors"
	"strconv"
	"time"

	"github.com/quitanza/paycore/internal/pkg/env"
)

// Config holds S3 archive configuration for transaction log exports.
type Config struct {
	AccessKeyID     string
	SecretAccessKey string
	Region          string
	BucketName      string
	EndpointURL     string // Optional for S3-compatible services
	Enabled         bool
	BatchSize       int
	ExportInterval  time.Duration
}

// LoadConfig loads archive configuration from environment variables.
func LoadConfig() (*Config, error) {
	config := &Config{
		AccessKeyID:     env.GetEnv("AUDIT_S3_ACCESS_KEY_ID", ""),
		SecretAccessKey: env.GetEnv("AUDIT_S3_SECRET_ACCESS_KEY", ""),
		Region:          env.GetEnv("AUDIT_S3_REGION", "us-east-1"),
		BucketName:      env.GetEnv("AUDIT_S3_BUCKET_NAME", ""),
		EndpointURL:     env.GetEnv("AUDIT_S3_ENDPOINT_URL", ""),
		Enabled:         env.GetEnv("AUDIT_S3_ENABLED", "false") == "true",
		BatchSize:       500,
		ExportInterval:  exportInterval(),
	}

	if config.Enabled {
		if config.AccessKeyID == "" {
			return nil, errors.New("AUDIT_S3_ACCESS_KEY_ID is required when the audit archive is enabled")
		}
		if config.SecretAccessKey == "" {
			return nil, errors.New("AUDIT_S3_SECRET_ACCESS_KEY is required when the audit archive is enabled")
		}
		if config.BucketName == "" {
			return nil, errors.New("AUDIT_S3_BUCKET_NAME is required when the audit archive is enabled")
		}
	}

	return config, nil
}

// IsEnabled reports whether archiving is configured and switched on.
func (c *Config) IsEnabled() bool {
	return c.Enabled
}

func exportInterval() time.Duration {
	minutes, err := strconv.Atoi(env.GetEnv("AUDIT_S3_EXPORT_INTERVAL_MINUTES", "15"))
	if err != nil || minutes < 1 {
		minutes = 15
	}
	return time.Duration(minutes) * time.Minute
}
