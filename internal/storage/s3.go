package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"docflow/internal/config"
)

// s3Storage implements Storage against AWS S3 using the v2 SDK.
type s3Storage struct {
	client  *s3.Client
	presign *s3.PresignClient
	bucket  string
	logger  *slog.Logger
}

// NewS3 creates an AWS S3-backed Storage. Presigning is done locally;
// no request is sent until an object is queried.
func NewS3(cfg config.S3Config, logger *slog.Logger) (Storage, error) {
	if cfg.Bucket == "" {
		return nil, misconfigured(ProviderAWSS3, "bucket is required")
	}
	if cfg.Region == "" {
		return nil, misconfigured(ProviderAWSS3, "region is required")
	}
	if cfg.AccessKeyID == "" || cfg.SecretAccessKey == "" {
		return nil, misconfigured(ProviderAWSS3, "credentials are required")
	}

	opts := s3.Options{
		Region: cfg.Region,
		Credentials: aws.NewCredentialsCache(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		)),
		UsePathStyle: cfg.UsePathStyle,
		HTTPClient:   &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
	}
	client := s3.New(opts)

	if logger == nil {
		logger = slog.Default()
	}
	return &s3Storage{
		client:  client,
		presign: s3.NewPresignClient(client),
		bucket:  cfg.Bucket,
		logger:  logger,
	}, nil
}

// Init verifies the bucket is reachable with the configured credentials.
func (s *s3Storage) Init(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if _, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)}); err != nil {
		return fmt.Errorf("unable to access bucket %s: %w", s.bucket, err)
	}
	return nil
}

func (s *s3Storage) PresignUpload(ctx context.Context, key, contentType string, size int64, expiry time.Duration) (string, error) {
	if err := validateKey(key); err != nil {
		return "", err
	}
	req, err := s.presign.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(size),
	}, s3.WithPresignExpires(expiry))
	if err != nil {
		return "", fmt.Errorf("presign put %s: %w", key, err)
	}
	return req.URL, nil
}

func (s *s3Storage) PresignDownload(ctx context.Context, key string, expiry time.Duration) (string, error) {
	ok, err := s.Exists(ctx, key)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", ErrNotFound
	}
	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(expiry))
	if err != nil {
		return "", fmt.Errorf("presign get %s: %w", key, err)
	}
	return req.URL, nil
}

func (s *s3Storage) Exists(ctx context.Context, key string) (bool, error) {
	md, err := s.Metadata(ctx, key)
	if err != nil {
		return false, err
	}
	return md.Exists, nil
}

func (s *s3Storage) Metadata(ctx context.Context, key string) (ObjectMetadata, error) {
	if err := validateKey(key); err != nil {
		return ObjectMetadata{}, err
	}
	out, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isS3NotFound(err) {
			return ObjectMetadata{}, nil
		}
		return ObjectMetadata{}, fmt.Errorf("head object %s: %w", key, err)
	}
	size := aws.ToInt64(out.ContentLength)
	return ObjectMetadata{Exists: true, SizeBytes: &size}, nil
}

func (s *s3Storage) Delete(ctx context.Context, key string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil && !isS3NotFound(err) {
		return fmt.Errorf("delete object %s: %w", key, err)
	}
	return nil
}

// isS3NotFound matches both the typed errors and a bare 404, which is what
// HEAD requests return since they carry no error body.
func isS3NotFound(err error) bool {
	var nf *types.NotFound
	if errors.As(err, &nf) {
		return true
	}
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	var re *awshttp.ResponseError
	return errors.As(err, &re) && re.HTTPStatusCode() == http.StatusNotFound
}
