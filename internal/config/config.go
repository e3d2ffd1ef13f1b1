package config

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Port            int
	ImageBasePath   string
	DBPath          string
	LogDirectory    string
	MaxUploadSizeMB int64
	PingInterval    int // seconds between keepalive pings to viewers
}

func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:            getEnvAsInt("PORT", 8081),
		ImageBasePath:   getEnv("IMAGE_BASE_PATH", filepath.Join(".", "images")),
		DBPath:          getEnv("DB_PATH", filepath.Join(".", "data", "defects.db")),
		LogDirectory:    getEnv("LOG_DIR", filepath.Join(".", "logs")),
		MaxUploadSizeMB: getEnvAsInt64("MAX_UPLOAD_SIZE_MB", 50),
		PingInterval:    getEnvAsInt("PING_INTERVAL", 30),
	}
}

// MaxUploadSizeBytes returns the multipart memory/size limit in bytes.
func (c *Config) MaxUploadSizeBytes() int64 {
	return c.MaxUploadSizeMB << 20
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}
