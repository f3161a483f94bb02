package metrics

import "github.com/prometheus/client_golang/prometheus"

const defaultNamespace = "repboard"

type options struct {
	namespace string
	registry  *prometheus.Registry
	buckets   []float64
}

func defaultOptions() options {
	return options{
		namespace: defaultNamespace,
		buckets:   prometheus.DefBuckets,
	}
}

// Option applies a configuration option to the Manager.
type Option func(*options)

// WithNamespace sets the metric namespace.
func WithNamespace(ns string) Option {
	return func(o *options) {
		if ns != "" {
			o.namespace = ns
		}
	}
}

// WithRegistry sets the Prometheus registry to register collectors with.
func WithRegistry(r *prometheus.Registry) Option {
	return func(o *options) {
		if r != nil {
			o.registry = r
		}
	}
}

// WithHistogramBuckets overrides the HTTP duration histogram buckets.
func WithHistogramBuckets(buckets []float64) Option {
	return func(o *options) {
		if len(buckets) > 0 {
			o.buckets = buckets
		}
	}
}
