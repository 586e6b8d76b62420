package storage

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "docflow/internal/storage"

// Metrics holds the storage operation collectors.
type Metrics struct {
	duration *prometheus.HistogramVec
}

// NewMetrics creates and registers the storage collectors on reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "docflow_storage_operation_duration_seconds",
				Help:    "Duration of object storage operations.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"provider", "operation", "outcome"},
		),
	}
	if err := reg.Register(m.duration); err != nil {
		return nil, err
	}
	return m, nil
}

// instrumented records a span and a duration sample for every call.
type instrumented struct {
	next     Storage
	provider string
	metrics  *Metrics
	tracer   trace.Tracer
}

// Instrument wraps s with tracing and metrics labelled by provider.
func Instrument(s Storage, provider string, m *Metrics) Storage {
	return &instrumented{
		next:     s,
		provider: provider,
		metrics:  m,
		tracer:   otel.Tracer(tracerName),
	}
}

func (i *instrumented) observe(ctx context.Context, op, key string) (context.Context, func(error)) {
	start := time.Now()
	ctx, span := i.tracer.Start(ctx, "storage."+op, trace.WithAttributes(
		attribute.String("storage.provider", i.provider),
		attribute.String("storage.key", key),
	))
	return ctx, func(err error) {
		outcome := "ok"
		switch {
		case errors.Is(err, ErrNotFound):
			outcome = "not_found"
		case err != nil:
			outcome = "error"
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		if i.metrics != nil {
			i.metrics.duration.WithLabelValues(i.provider, op, outcome).Observe(time.Since(start).Seconds())
		}
		span.End()
	}
}

func (i *instrumented) PresignUpload(ctx context.Context, key, contentType string, size int64, expiry time.Duration) (string, error) {
	ctx, done := i.observe(ctx, "presign_upload", key)
	u, err := i.next.PresignUpload(ctx, key, contentType, size, expiry)
	done(err)
	return u, err
}

func (i *instrumented) PresignDownload(ctx context.Context, key string, expiry time.Duration) (string, error) {
	ctx, done := i.observe(ctx, "presign_download", key)
	u, err := i.next.PresignDownload(ctx, key, expiry)
	done(err)
	return u, err
}

func (i *instrumented) Exists(ctx context.Context, key string) (bool, error) {
	ctx, done := i.observe(ctx, "exists", key)
	ok, err := i.next.Exists(ctx, key)
	done(err)
	return ok, err
}

func (i *instrumented) Metadata(ctx context.Context, key string) (ObjectMetadata, error) {
	ctx, done := i.observe(ctx, "metadata", key)
	md, err := i.next.Metadata(ctx, key)
	done(err)
	return md, err
}

func (i *instrumented) Delete(ctx context.Context, key string) error {
	ctx, done := i.observe(ctx, "delete", key)
	err := i.next.Delete(ctx, key)
	done(err)
	return err
}

// Init forwards to the wrapped provider.
func (i *instrumented) Init(ctx context.Context) error {
	return Initialize(ctx, i.next)
}
