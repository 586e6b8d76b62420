package storage

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"docflow/internal/config"
)

// minioStorage implements Storage against an S3-compatible MinIO deployment.
type minioStorage struct {
	client *minio.Client
	bucket string
	logger *slog.Logger
}

// NewMinIO creates a MinIO-backed Storage. It validates the settings and
// builds the client without contacting the server.
func NewMinIO(cfg config.MinIOConfig, logger *slog.Logger) (Storage, error) {
	if cfg.Endpoint == "" {
		return nil, misconfigured(ProviderMinIO, "endpoint is required")
	}
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, misconfigured(ProviderMinIO, "credentials are required")
	}
	if cfg.Bucket == "" {
		return nil, misconfigured(ProviderMinIO, "bucket is required")
	}

	cli, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:     credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure:    cfg.UseSSL,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	})
	if err != nil {
		return nil, misconfigured(ProviderMinIO, "create client: %v", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &minioStorage{client: cli, bucket: cfg.Bucket, logger: logger}, nil
}

// Init ensures the bucket exists, creating it if missing.
func (m *minioStorage) Init(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	exists, err := m.client.BucketExists(ctx, m.bucket)
	if err != nil {
		return fmt.Errorf("check bucket existence: %w", err)
	}
	if !exists {
		if err := m.client.MakeBucket(ctx, m.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("create bucket: %w", err)
		}
		m.logger.Info("storage bucket created", "bucket", m.bucket)
	}
	return nil
}

func (m *minioStorage) PresignUpload(ctx context.Context, key, contentType string, size int64, expiry time.Duration) (string, error) {
	if err := validateKey(key); err != nil {
		return "", err
	}
	h := http.Header{}
	h.Set("Content-Type", contentType)
	u, err := m.client.PresignHeader(ctx, http.MethodPut, m.bucket, key, expiry, url.Values{}, h)
	if err != nil {
		return "", fmt.Errorf("presign put %s: %w", key, err)
	}
	return u.String(), nil
}

func (m *minioStorage) PresignDownload(ctx context.Context, key string, expiry time.Duration) (string, error) {
	ok, err := m.Exists(ctx, key)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", ErrNotFound
	}
	u, err := m.client.PresignedGetObject(ctx, m.bucket, key, expiry, url.Values{})
	if err != nil {
		return "", fmt.Errorf("presign get %s: %w", key, err)
	}
	return u.String(), nil
}

func (m *minioStorage) Exists(ctx context.Context, key string) (bool, error) {
	md, err := m.Metadata(ctx, key)
	if err != nil {
		return false, err
	}
	return md.Exists, nil
}

func (m *minioStorage) Metadata(ctx context.Context, key string) (ObjectMetadata, error) {
	if err := validateKey(key); err != nil {
		return ObjectMetadata{}, err
	}
	st, err := m.client.StatObject(ctx, m.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		if isMinIONotFound(err) {
			return ObjectMetadata{}, nil
		}
		return ObjectMetadata{}, fmt.Errorf("stat object %s: %w", key, err)
	}
	size := st.Size
	return ObjectMetadata{Exists: true, SizeBytes: &size}, nil
}

// Delete removes an object by key. S3 semantics make removal of a missing key a no-op.
func (m *minioStorage) Delete(ctx context.Context, key string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	if err := m.client.RemoveObject(ctx, m.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		if isMinIONotFound(err) {
			return nil
		}
		return fmt.Errorf("remove object %s: %w", key, err)
	}
	return nil
}

func isMinIONotFound(err error) bool {
	return minio.ToErrorResponse(err).Code == "NoSuchKey"
}
