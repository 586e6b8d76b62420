package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/docker/go-units"
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
	AutoMigrate        bool
}

// MinIOConfig holds settings for the S3-compatible MinIO provider.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// S3Config holds settings for the AWS S3 provider.
// Endpoint is optional and only needed for non-AWS S3 endpoints.
type S3Config struct {
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	Endpoint        string
	UsePathStyle    bool
}

// AzureBlobConfig holds settings for the Azure Blob Storage provider.
// The connection string must carry AccountName and AccountKey so SAS URLs can be signed.
type AzureBlobConfig struct {
	ConnectionString string
	Container        string
}

// StorageConfig selects and configures the object storage provider.
type StorageConfig struct {
	Provider  string
	MinIO     MinIOConfig
	S3        S3Config
	AzureBlob AzureBlobConfig
}

// UploadConfig holds the upload policy and presigned URL lifetime.
type UploadConfig struct {
	MaxFileSizeBytes          int64
	AllowedMimeTypes          []string
	PresignedURLExpiryMinutes int
}

// DefaultPresignedURLExpiryMinutes is used when no positive lifetime is configured.
const DefaultPresignedURLExpiryMinutes = 30

// PresignedURLExpiry returns the configured presigned URL lifetime.
// A zero or negative setting yields the default.
func (c UploadConfig) PresignedURLExpiry() time.Duration {
	minutes := c.PresignedURLExpiryMinutes
	if minutes <= 0 {
		minutes = DefaultPresignedURLExpiryMinutes
	}
	return time.Duration(minutes) * time.Minute
}

// AuditConfig controls the audit trail sink.
type AuditConfig struct {
	Enabled bool
	Sink    string // "postgres" or "log"
}

// SecurityConfig names the request headers carrying caller identity.
type SecurityConfig struct {
	UserIDHeader    string
	CompanyIDHeader string
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	AppHost  string
	Port     string
	Timezone string
	LogLevel string
	Database DatabaseConfig
	Storage  StorageConfig
	Upload   UploadConfig
	Audit    AuditConfig
	Security SecurityConfig
}

// Location resolves Timezone, falling back to UTC when it is empty or unknown.
func (c *AppConfig) Location() *time.Location {
	if c.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

var defaultAllowedMimeTypes = []string{
	"application/pdf",
	"image/jpeg",
	"image/png",
	"text/plain",
	"text/csv",
	"application/msword",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"application/vnd.ms-excel",
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	return &AppConfig{
		AppHost:  getEnv("APP_HOST", "localhost:8080"),
		Port:     getEnv("PORT", "8080"),
		Timezone: getEnv("APP_TIMEZONE", "UTC"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
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
			AutoMigrate:        getEnvBool("DB_AUTO_MIGRATE", false),
		},
		Storage: StorageConfig{
			Provider: getEnv("STORAGE_PROVIDER", "azureblob"),
			MinIO: MinIOConfig{
				Endpoint:  getEnv("MINIO_ENDPOINT", ""),
				AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
				SecretKey: getEnv("MINIO_SECRET_KEY", ""),
				Bucket:    getEnv("MINIO_BUCKET", ""),
				UseSSL:    getEnvBool("MINIO_USE_SSL", false),
			},
			S3: S3Config{
				Region:          getEnv("AWS_S3_REGION", ""),
				Bucket:          getEnv("AWS_S3_BUCKET", ""),
				AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
				SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
				Endpoint:        getEnv("AWS_S3_ENDPOINT", ""),
				UsePathStyle:    getEnvBool("AWS_S3_USE_PATH_STYLE", false),
			},
			AzureBlob: AzureBlobConfig{
				ConnectionString: getEnv("AZURE_STORAGE_CONNECTION_STRING", ""),
				Container:        getEnv("AZURE_STORAGE_CONTAINER", "documents"),
			},
		},
		Upload: UploadConfig{
			MaxFileSizeBytes:          getEnvSize("UPLOAD_MAX_FILE_SIZE", 100*units.MiB),
			AllowedMimeTypes:          getEnvList("UPLOAD_ALLOWED_MIME_TYPES", defaultAllowedMimeTypes),
			PresignedURLExpiryMinutes: getEnvPositiveInt("PRESIGNED_URL_EXPIRY_MINUTES", DefaultPresignedURLExpiryMinutes),
		},
		Audit: AuditConfig{
			Enabled: getEnvBool("AUDIT_ENABLED", true),
			Sink:    getEnv("AUDIT_SINK", "postgres"),
		},
		Security: SecurityConfig{
			UserIDHeader:    getEnv("SECURITY_USER_ID_HEADER", "X-User-Id"),
			CompanyIDHeader: getEnv("SECURITY_COMPANY_ID_HEADER", "X-Company-Id"),
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

// getEnvPositiveInt is getEnvInt that also rejects zero and negative values.
func getEnvPositiveInt(key string, def int) int {
	if v := getEnvInt(key, def); v > 0 {
		return v
	}
	return def
}

// getEnvSize accepts plain byte counts or human sizes such as "100MiB" or "20MB".
// Units are binary, so "100MB" and "100MiB" are both 104857600 bytes.
func getEnvSize(key string, def int64) int64 {
	if v := os.Getenv(key); v != "" {
		n, err := units.RAMInBytes(v)
		if err == nil && n > 0 {
			return n
		}
	}
	return def
}

func getEnvList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
