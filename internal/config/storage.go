package config

import (
	"fmt"

	"flight-timetable/internal/infra/output"
	pkgconfig "flight-timetable/internal/pkg/config"
)

// StorageConfig holds the optional sinks a run publishes to besides the output directory.
type StorageConfig struct {
	// DatabaseURL enables snapshot persistence when set.
	DatabaseURL string

	S3 output.S3Config
}

// LoadStorageConfig reads the storage settings.
//
// Environment variables:
//   - DATABASE_URL: PostgreSQL DSN
//   - S3_ENDPOINT, S3_BUCKET, S3_ACCESS_KEY, S3_SECRET_KEY: object storage target
//   - S3_REGION (default: us-east-1), S3_PREFIX, S3_USE_SSL (default: true)
func LoadStorageConfig(tr *pkgconfig.Tracker) *StorageConfig {
	str := func(field, key string) string {
		return pkgconfig.Use(tr, field, pkgconfig.LoadString(key, "", nil))
	}

	cfg := &StorageConfig{
		DatabaseURL: str("database_url", "DATABASE_URL"),
		S3: output.S3Config{
			Endpoint:  str("s3_endpoint", "S3_ENDPOINT"),
			Bucket:    str("s3_bucket", "S3_BUCKET"),
			AccessKey: str("s3_access_key", "S3_ACCESS_KEY"),
			SecretKey: str("s3_secret_key", "S3_SECRET_KEY"),
			Prefix:    str("s3_prefix", "S3_PREFIX"),
			Region:    pkgconfig.Use(tr, "s3_region", pkgconfig.LoadString("S3_REGION", "us-east-1", nil)),
			UseSSL:    pkgconfig.Use(tr, "s3_use_ssl", pkgconfig.LoadBool("S3_USE_SSL", true)),
		},
	}
	return cfg
}

// DatabaseEnabled reports whether snapshots should be persisted.
func (c *StorageConfig) DatabaseEnabled() bool {
	return c.DatabaseURL != ""
}

// S3Enabled reports whether an S3 target was configured at all.
func (c *StorageConfig) S3Enabled() bool {
	return c.S3.Endpoint != "" || c.S3.Bucket != ""
}

// Validate rejects a half-configured S3 target. Credentials are never echoed.
func (c *StorageConfig) Validate() error {
	if !c.S3Enabled() {
		return nil
	}
	var missing []string
	if c.S3.Endpoint == "" {
		missing = append(missing, "S3_ENDPOINT")
	}
	if c.S3.Bucket == "" {
		missing = append(missing, "S3_BUCKET")
	}
	if c.S3.AccessKey == "" {
		missing = append(missing, "S3_ACCESS_KEY")
	}
	if c.S3.SecretKey == "" {
		missing = append(missing, "S3_SECRET_KEY")
	}
	if len(missing) > 0 {
		return fmt.Errorf("incomplete s3 configuration: missing %v", missing)
	}
	return nil
}
