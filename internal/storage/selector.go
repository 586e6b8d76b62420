package storage

import (
	"fmt"
	"log/slog"
	"strings"

	"docflow/internal/config"
)

// Provider names accepted in StorageConfig.Provider (case-insensitive).
const (
	ProviderAzureBlob = "azureblob"
	ProviderAWSS3     = "awss3"
	ProviderMinIO     = "minio"
)

// NormalizeProvider trims and lower-cases a configured provider name.
func NormalizeProvider(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// New builds the configured provider. It is called once at startup and the
// returned Storage is shared by every caller.
// No network call is made; use Initialize to prepare the bucket or container.
func New(cfg config.StorageConfig, logger *slog.Logger) (Storage, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("system", "storage")

	name := NormalizeProvider(cfg.Provider)
	var (
		s   Storage
		err error
	)
	switch name {
	case ProviderAzureBlob:
		s, err = NewAzureBlob(cfg.AzureBlob, logger)
	case ProviderAWSS3:
		s, err = NewS3(cfg.S3, logger)
	case ProviderMinIO:
		s, err = NewMinIO(cfg.MinIO, logger)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedProvider, cfg.Provider)
	}
	if err != nil {
		return nil, err
	}
	logger.Info("storage provider selected", "provider", name)
	return s, nil
}

func misconfigured(provider, format string, args ...any) error {
	return fmt.Errorf("%w: %s: %s", ErrMisconfiguredProvider, provider, fmt.Sprintf(format, args...))
}
