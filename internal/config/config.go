package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/docker/go-units"
)

// DefaultMaxUploadSize is the upload ceiling applied when MAX_UPLOAD_SIZE is unset (10 MiB).
const DefaultMaxUploadSize int64 = 10 * 1024 * 1024

// Supported blob store drivers.
const (
	BlobDriverDisk   = "disk"
	BlobDriverMemory = "memory"
	BlobDriverMinIO  = "minio"
)

// Supported metadata store drivers.
const (
	MetadataDriverPostgres = "postgres"
	MetadataDriverMemory   = "memory"
	MetadataDriverMongo    = "mongo"
)

// DatabaseConfig holds PostgreSQL database connection settings.
type DatabaseConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
}

// MinIOConfig holds object storage settings for MinIO.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// MongoConfig holds MongoDB connection settings for the mongo metadata driver.
type MongoConfig struct {
	URI        string
	Database   string
	TimeoutSec int
}

// StorageConfig selects the blob and metadata backends.
type StorageConfig struct {
	BlobDriver     string
	BlobRoot       string
	MetadataDriver string
}

// UploadConfig bounds what the upload endpoint accepts.
type UploadConfig struct {
	MaxSize        int64
	RateLimitRPS   float64
	RateLimitBurst int
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	AppHost       string
	Port          string
	Timezone      string
	LogLevel      string
	AllowedOrigin string
	Storage       StorageConfig
	Upload        UploadConfig
	Database      DatabaseConfig
	MinIO         MinIOConfig
	Mongo         MongoConfig
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	return &AppConfig{
		AppHost:       getEnv("APP_HOST", "localhost:8080"),
		Port:          getEnv("PORT", "8080"),
		Timezone:      getEnv("APP_TIMEZONE", "UTC"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		AllowedOrigin: getEnv("ALLOWED_ORIGIN", "*"),
		Storage: StorageConfig{
			BlobDriver:     strings.ToLower(getEnv("BLOB_DRIVER", BlobDriverDisk)),
			BlobRoot:       getEnv("BLOB_ROOT", "./uploads"),
			MetadataDriver: strings.ToLower(getEnv("METADATA_DRIVER", MetadataDriverPostgres)),
		},
		Upload: UploadConfig{
			MaxSize:        getEnvSize("MAX_UPLOAD_SIZE", DefaultMaxUploadSize),
			RateLimitRPS:   getEnvFloat("UPLOAD_RATE_LIMIT_RPS", 0),
			RateLimitBurst: getEnvInt("UPLOAD_RATE_LIMIT_BURST", 5),
		},
		Database: DatabaseConfig{
			Host:               getEnv("DB_HOST", ""),
			Port:               getEnv("DB_PORT", "5432"),
			User:               getEnv("DB_USER", ""),
			Password:           getEnv("DB_PASSWORD", ""),
			Name:               getEnv("DB_NAME", ""),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", ""),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
		Mongo: MongoConfig{
			URI:        getEnv("MONGODB_URI", ""),
			Database:   getEnv("MONGODB_DATABASE", "pdfvault"),
			TimeoutSec: getEnvInt("MONGODB_TIMEOUT_SEC", 10),
		},
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err == nil {
			return f
		}
	}
	return def
}

// getEnvSize accepts plain byte counts ("10485760") and binary units ("10MiB", "512k").
func getEnvSize(key string, def int64) int64 {
	if v := os.Getenv(key); v != "" {
		n, err := units.RAMInBytes(v)
		if err == nil && n > 0 {
			return n
		}
	}
	return def
}
