package config

import (
	"fmt"
	"os"
	"time"
)

type Config struct {
	DatabaseURL string // CONFSTORE_DATABASE_URL (required)
	HTTPAddr    string // CONFSTORE_HTTP_ADDR (default ":8080")
	NATSURL     string // CONFSTORE_NATS_URL (optional, empty = no external events)
	AuthToken   string // CONFSTORE_AUTH_TOKEN (optional, empty = auth disabled)

	// Backup settings
	SyncInterval   time.Duration // CONFSTORE_SYNC_INTERVAL (default 10m; 0 = disabled)
	SyncS3Bucket   string        // CONFSTORE_SYNC_S3_BUCKET (enables S3 when set)
	SyncS3Endpoint string        // CONFSTORE_SYNC_S3_ENDPOINT (custom endpoint for MinIO)
	SyncS3Region   string        // CONFSTORE_SYNC_S3_REGION (default "us-east-1")
	SyncS3Key      string        // CONFSTORE_SYNC_S3_KEY (default "confstore/backup.jsonl")
}

func Load() (*Config, error) {
	c := &Config{
		DatabaseURL:    os.Getenv("CONFSTORE_DATABASE_URL"),
		HTTPAddr:       envOrDefault("CONFSTORE_HTTP_ADDR", ":8080"),
		NATSURL:        os.Getenv("CONFSTORE_NATS_URL"),
		AuthToken:      os.Getenv("CONFSTORE_AUTH_TOKEN"),
		SyncS3Bucket:   os.Getenv("CONFSTORE_SYNC_S3_BUCKET"),
		SyncS3Endpoint: os.Getenv("CONFSTORE_SYNC_S3_ENDPOINT"),
		SyncS3Region:   envOrDefault("CONFSTORE_SYNC_S3_REGION", "us-east-1"),
		SyncS3Key:      envOrDefault("CONFSTORE_SYNC_S3_KEY", "confstore/backup.jsonl"),
	}
	if c.DatabaseURL == "" {
		return nil, fmt.Errorf("CONFSTORE_DATABASE_URL is required")
	}

	intervalStr := envOrDefault("CONFSTORE_SYNC_INTERVAL", "10m")
	if intervalStr != "" {
		d, err := time.ParseDuration(intervalStr)
		if err != nil {
			return nil, fmt.Errorf("CONFSTORE_SYNC_INTERVAL: %w", err)
		}
		c.SyncInterval = d
	}

	return c, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
