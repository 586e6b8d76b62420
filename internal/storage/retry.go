package storage

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/cenkalti/backoff/v5"
	"github.com/minio/minio-go/v7"
)

// RetryOptions tunes the retrying decorator. Zero values use the defaults.
type RetryOptions struct {
	MaxTries        uint
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

const (
	defaultRetryMaxTries        = 3
	defaultRetryInitialInterval = 100 * time.Millisecond
	defaultRetryMaxInterval     = 2 * time.Second
)

// retrying retries the idempotent read operations of the wrapped Storage.
// PresignDownload counts as a read: providers check existence before signing.
// PresignUpload and Delete pass through untouched.
type retrying struct {
	Storage
	opts RetryOptions
}

// WithRetry wraps s so that Exists, Metadata and PresignDownload are retried
// with exponential backoff on transient failures. Key validation errors, missing
// objects, 4xx provider responses and context cancellation are not retried.
func WithRetry(s Storage, opts RetryOptions) Storage {
	if opts.MaxTries == 0 {
		opts.MaxTries = defaultRetryMaxTries
	}
	if opts.InitialInterval <= 0 {
		opts.InitialInterval = defaultRetryInitialInterval
	}
	if opts.MaxInterval <= 0 {
		opts.MaxInterval = defaultRetryMaxInterval
	}
	return &retrying{Storage: s, opts: opts}
}

func (r *retrying) Exists(ctx context.Context, key string) (bool, error) {
	return retryRead(ctx, r.opts, func() (bool, error) {
		return r.Storage.Exists(ctx, key)
	})
}

func (r *retrying) Metadata(ctx context.Context, key string) (ObjectMetadata, error) {
	return retryRead(ctx, r.opts, func() (ObjectMetadata, error) {
		return r.Storage.Metadata(ctx, key)
	})
}

func (r *retrying) PresignDownload(ctx context.Context, key string, expiry time.Duration) (string, error) {
	return retryRead(ctx, r.opts, func() (string, error) {
		return r.Storage.PresignDownload(ctx, key, expiry)
	})
}

// Init forwards to the wrapped provider.
func (r *retrying) Init(ctx context.Context) error {
	return Initialize(ctx, r.Storage)
}

func retryRead[T any](ctx context.Context, opts RetryOptions, op func() (T, error)) (T, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = opts.InitialInterval
	b.MaxInterval = opts.MaxInterval

	return backoff.Retry(ctx, func() (T, error) {
		v, err := op()
		if err != nil && !retryable(err) {
			return v, backoff.Permanent(err)
		}
		return v, err
	}, backoff.WithBackOff(b), backoff.WithMaxTries(opts.MaxTries))
}

func retryable(err error) bool {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return false
	case errors.Is(err, ErrEmptyKey), errors.Is(err, ErrInvalidKey), errors.Is(err, ErrNotFound):
		return false
	}
	if code, ok := providerStatus(err); ok {
		return code == http.StatusRequestTimeout || code == http.StatusTooManyRequests || code >= 500
	}
	return true
}

// providerStatus extracts the HTTP status of an SDK response error, if any.
func providerStatus(err error) (int, bool) {
	var withStatus interface{ HTTPStatusCode() int }
	if errors.As(err, &withStatus) {
		return withStatus.HTTPStatusCode(), true
	}
	var azErr *azcore.ResponseError
	if errors.As(err, &azErr) {
		return azErr.StatusCode, true
	}
	var minioErr minio.ErrorResponse
	if errors.As(err, &minioErr) && minioErr.StatusCode != 0 {
		return minioErr.StatusCode, true
	}
	return 0, false
}
