package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad(t *testing.T) {
	t.Setenv("DB_HOST", "test-host")
	t.Setenv("DB_MAX_OPEN_CONNS", "20")
	t.Setenv("MINIO_USE_SSL", "true")
	t.Setenv("STORAGE_PROVIDER", "AWSS3")
	t.Setenv("AWS_S3_BUCKET", "docs")
	t.Setenv("UPLOAD_MAX_FILE_SIZE", "20MB")
	t.Setenv("UPLOAD_ALLOWED_MIME_TYPES", "application/pdf, image/png")

	cfg := Load()

	assert.Equal(t, "test-host", cfg.Database.Host)
	assert.Equal(t, 20, cfg.Database.MaxOpenConns)
	assert.True(t, cfg.Storage.MinIO.UseSSL)
	assert.Equal(t, "AWSS3", cfg.Storage.Provider)
	assert.Equal(t, "docs", cfg.Storage.S3.Bucket)
	assert.Equal(t, int64(20*1024*1024), cfg.Upload.MaxFileSizeBytes)
	assert.Equal(t, []string{"application/pdf", "image/png"}, cfg.Upload.AllowedMimeTypes)
}

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"STORAGE_PROVIDER", "UPLOAD_MAX_FILE_SIZE", "PRESIGNED_URL_EXPIRY_MINUTES", "AUDIT_ENABLED", "APP_TIMEZONE"} {
		t.Setenv(k, "")
	}

	cfg := Load()

	assert.Equal(t, "azureblob", cfg.Storage.Provider)
	assert.Equal(t, int64(104857600), cfg.Upload.MaxFileSizeBytes)
	assert.Equal(t, 30, cfg.Upload.PresignedURLExpiryMinutes)
	assert.Equal(t, 30*time.Minute, cfg.Upload.PresignedURLExpiry())
	assert.Contains(t, cfg.Upload.AllowedMimeTypes, "application/pdf")
	assert.True(t, cfg.Audit.Enabled)
	assert.Equal(t, "X-User-Id", cfg.Security.UserIDHeader)
	assert.Equal(t, time.UTC, cfg.Location())
}

func TestLoad_NonPositiveExpiryFallsBack(t *testing.T) {
	for _, v := range []string{"0", "-10"} {
		t.Run(v, func(t *testing.T) {
			t.Setenv("PRESIGNED_URL_EXPIRY_MINUTES", v)

			cfg := Load()

			assert.Equal(t, DefaultPresignedURLExpiryMinutes, cfg.Upload.PresignedURLExpiryMinutes)
			assert.Equal(t, 30*time.Minute, cfg.Upload.PresignedURLExpiry())
		})
	}
}

func TestUploadConfig_PresignedURLExpiry(t *testing.T) {
	assert.Equal(t, 15*time.Minute, UploadConfig{PresignedURLExpiryMinutes: 15}.PresignedURLExpiry())
	assert.Equal(t, 30*time.Minute, UploadConfig{}.PresignedURLExpiry())
	assert.Equal(t, 30*time.Minute, UploadConfig{PresignedURLExpiryMinutes: -1}.PresignedURLExpiry())
}

func TestAppConfig_Location(t *testing.T) {
	cfg := &AppConfig{Timezone: "Not/AZone"}
	assert.Equal(t, time.UTC, cfg.Location())

	cfg.Timezone = "UTC"
	assert.Equal(t, "UTC", cfg.Location().String())
}

func TestEnvHelpers(t *testing.T) {
	tests := []struct {
		name  string
		value string
		check func(t *testing.T, key string)
	}{
		{"string set", "value", func(t *testing.T, key string) {
			assert.Equal(t, "value", getEnv(key, "default"))
		}},
		{"string unset", "", func(t *testing.T, key string) {
			assert.Equal(t, "default", getEnv(key, "default"))
		}},
		{"bool false", "false", func(t *testing.T, key string) {
			assert.False(t, getEnvBool(key, true))
		}},
		{"bool garbage keeps default", "maybe", func(t *testing.T, key string) {
			assert.True(t, getEnvBool(key, true))
		}},
		{"int", "123", func(t *testing.T, key string) {
			assert.Equal(t, 123, getEnvInt(key, 0))
		}},
		{"int garbage keeps default", "ten", func(t *testing.T, key string) {
			assert.Equal(t, 10, getEnvInt(key, 10))
		}},
		{"positive int", "15", func(t *testing.T, key string) {
			assert.Equal(t, 15, getEnvPositiveInt(key, 30))
		}},
		{"zero keeps default", "0", func(t *testing.T, key string) {
			assert.Equal(t, 30, getEnvPositiveInt(key, 30))
		}},
		{"negative keeps default", "-5", func(t *testing.T, key string) {
			assert.Equal(t, 30, getEnvPositiveInt(key, 30))
		}},
		{"size plain bytes", "1048576", func(t *testing.T, key string) {
			assert.Equal(t, int64(1048576), getEnvSize(key, 1))
		}},
		{"size human", "5MiB", func(t *testing.T, key string) {
			assert.Equal(t, int64(5*1024*1024), getEnvSize(key, 1))
		}},
		{"size garbage keeps default", "lots", func(t *testing.T, key string) {
			assert.Equal(t, int64(7), getEnvSize(key, 7))
		}},
		{"list trims and drops blanks", " a ,b,, c", func(t *testing.T, key string) {
			assert.Equal(t, []string{"a", "b", "c"}, getEnvList(key, nil))
		}},
		{"list of blanks keeps default", " , ", func(t *testing.T, key string) {
			assert.Equal(t, []string{"x"}, getEnvList(key, []string{"x"}))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			const key = "DOCFLOW_TEST_VAR"
			t.Setenv(key, tt.value)
			tt.check(t, key)
		})
	}
}
