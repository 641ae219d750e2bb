package catalog

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type storeMetrics struct {
	ops     *prometheus.CounterVec
	latency *prometheus.HistogramVec
}

type instrumentedStore struct {
	next Store
	m    *storeMetrics
}

// InstrumentStore reports per-operation counts and latency of next to reg.
func InstrumentStore(next Store, reg prometheus.Registerer) Store {
	m := &storeMetrics{
		ops: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "catalog_store_operations_total",
				Help: "Product store operations by result",
			},
			[]string{"op", "result"},
		),
		latency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "catalog_store_operation_duration_seconds",
				Help:    "Product store operation latency",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"op"},
		),
	}
	reg.MustRegister(m.ops, m.latency)
	return &instrumentedStore{next: next, m: m}
}

func (s *instrumentedStore) observe(op string, start time.Time, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	s.m.latency.WithLabelValues(op).Observe(time.Since(start).Seconds())
	s.m.ops.WithLabelValues(op, result).Inc()
}

func (s *instrumentedStore) Load(ctx context.Context) ([]Product, error) {
	start := time.Now()
	out, err := s.next.Load(ctx)
	s.observe("load", start, err)
	return out, err
}

func (s *instrumentedStore) Save(ctx context.Context, products []Product) error {
	start := time.Now()
	err := s.next.Save(ctx, products)
	s.observe("save", start, err)
	return err
}

func (s *instrumentedStore) Ping(ctx context.Context) error {
	start := time.Now()
	err := s.next.Ping(ctx)
	s.observe("ping", start, err)
	return err
}
