package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad(t *testing.T) {
	t.Setenv("DB_HOST", "test-host")
	t.Setenv("DB_MAX_OPEN_CONNS", "20")
	t.Setenv("MINIO_USE_SSL", "true")
	t.Setenv("BLOB_DRIVER", "MEMORY")
	t.Setenv("METADATA_DRIVER", "mongo")
	t.Setenv("MAX_UPLOAD_SIZE", "5MiB")

	cfg := Load()

	assert.Equal(t, "test-host", cfg.Database.Host)
	assert.Equal(t, 20, cfg.Database.MaxOpenConns)
	assert.True(t, cfg.MinIO.UseSSL)
	assert.Equal(t, BlobDriverMemory, cfg.Storage.BlobDriver)
	assert.Equal(t, MetadataDriverMongo, cfg.Storage.MetadataDriver)
	assert.Equal(t, int64(5*1024*1024), cfg.Upload.MaxSize)
}

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"BLOB_DRIVER", "METADATA_DRIVER", "MAX_UPLOAD_SIZE", "BLOB_ROOT", "PORT", "ALLOWED_ORIGIN", "UPLOAD_RATE_LIMIT_RPS"} {
		t.Setenv(k, "")
	}

	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "*", cfg.AllowedOrigin)
	assert.Equal(t, BlobDriverDisk, cfg.Storage.BlobDriver)
	assert.Equal(t, "./uploads", cfg.Storage.BlobRoot)
	assert.Equal(t, MetadataDriverPostgres, cfg.Storage.MetadataDriver)
	assert.Equal(t, int64(10485760), cfg.Upload.MaxSize)
	assert.Equal(t, float64(0), cfg.Upload.RateLimitRPS)
}

func TestGetEnv(t *testing.T) {
	key := "TEST_ENV_VAR"
	os.Setenv(key, "value")
	defer os.Unsetenv(key)

	assert.Equal(t, "value", getEnv(key, "default"))
	assert.Equal(t, "default", getEnv("NON_EXISTENT", "default"))
}

func TestGetEnvBool(t *testing.T) {
	key := "TEST_BOOL_VAR"

	os.Setenv(key, "true")
	assert.True(t, getEnvBool(key, false))

	os.Setenv(key, "false")
	assert.False(t, getEnvBool(key, true))

	os.Setenv(key, "invalid")
	assert.True(t, getEnvBool(key, true))

	os.Unsetenv(key)
	assert.True(t, getEnvBool(key, true))
}

func TestGetEnvInt(t *testing.T) {
	key := "TEST_INT_VAR"

	os.Setenv(key, "123")
	assert.Equal(t, 123, getEnvInt(key, 0))

	os.Setenv(key, "invalid")
	assert.Equal(t, 10, getEnvInt(key, 10))

	os.Unsetenv(key)
	assert.Equal(t, 10, getEnvInt(key, 10))
}

func TestGetEnvSize(t *testing.T) {
	key := "TEST_SIZE_VAR"
	defer os.Unsetenv(key)

	os.Setenv(key, "1024")
	assert.Equal(t, int64(1024), getEnvSize(key, 1))

	os.Setenv(key, "2MiB")
	assert.Equal(t, int64(2*1024*1024), getEnvSize(key, 1))

	os.Setenv(key, "lots")
	assert.Equal(t, int64(7), getEnvSize(key, 7))

	os.Setenv(key, "0")
	assert.Equal(t, int64(7), getEnvSize(key, 7))
}
