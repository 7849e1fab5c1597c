// Package metrics exports storage and upload telemetry to Prometheus.
package metrics

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/s3loader/service/internal/storage"
)

// DefaultNamespace prefixes every metric name.
const DefaultNamespace = "s3loader"

// Observer implements storage.Observer on Prometheus collectors.
type Observer struct {
	operationDuration *prometheus.HistogramVec
	operationErrors   *prometheus.CounterVec
	uploads           *prometheus.CounterVec
	uploadRetries     prometheus.Counter
	uploadBytes       prometheus.Counter
}

// NewObserver creates the collectors and registers them with reg. Collectors
// already present in reg are reused.
func NewObserver(namespace string, reg prometheus.Registerer) (*Observer, error) {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	o := &Observer{
		operationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "operation_duration_seconds",
			Help:      "Latency of object storage operations.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		operationErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "operation_errors_total",
			Help:      "Failed object storage operations by kind.",
		}, []string{"operation", "kind"}),
		uploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "uploads_total",
			Help:      "Uploads that reached the backend, by outcome.",
		}, []string{"outcome"}),
		uploadRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upload_retries_total",
			Help:      "Backend write attempts beyond the first.",
		}),
		uploadBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "uploaded_bytes_total",
			Help:      "Cumulative payload size successfully written.",
		}),
	}

	var err error
	if o.operationDuration, err = register(reg, o.operationDuration); err != nil {
		return nil, err
	}
	if o.operationErrors, err = register(reg, o.operationErrors); err != nil {
		return nil, err
	}
	if o.uploads, err = register(reg, o.uploads); err != nil {
		return nil, err
	}
	if o.uploadRetries, err = register(reg, o.uploadRetries); err != nil {
		return nil, err
	}
	if o.uploadBytes, err = register(reg, o.uploadBytes); err != nil {
		return nil, err
	}
	return o, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, fmt.Errorf("register metric: %w", err)
	}
	return c, nil
}

// RecordUpload tracks one Put: its total duration, retries and outcome.
func (o *Observer) RecordUpload(duration time.Duration, sizeBytes int64, retries int, err error) {
	if o == nil {
		return
	}
	o.operationDuration.WithLabelValues("put").Observe(duration.Seconds())
	o.uploadRetries.Add(float64(retries))
	if err != nil {
		o.operationErrors.WithLabelValues("put", storage.KindOf(err).String()).Inc()
		o.uploads.WithLabelValues("failed").Inc()
		return
	}
	o.uploads.WithLabelValues("success").Inc()
	o.uploadBytes.Add(float64(sizeBytes))
}

func (o *Observer) RecordOperation(op string, duration time.Duration, err error) {
	if o == nil {
		return
	}
	o.operationDuration.WithLabelValues(op).Observe(duration.Seconds())
	if err != nil {
		o.operationErrors.WithLabelValues(op, storage.KindOf(err).String()).Inc()
	}
}

var _ storage.Observer = (*Observer)(nil)

// NewRegistry returns a registry carrying the Go runtime and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// Handler serves the metrics in reg in the Prometheus exposition format.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}
