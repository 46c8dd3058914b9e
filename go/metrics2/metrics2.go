// Package metrics2 exposes prometheus-backed counters, gauges and summaries
// keyed by a measurement name plus a set of tags.
package metrics2

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Int64Metric is a metric which reports an int64 value.
type Int64Metric interface {
	Get() int64
	Update(v int64)
}

// Counter is a struct used for tracking counts.
type Counter interface {
	Get() int64
	Inc(i int64)
	Dec(i int64)
	Reset()
}

// Float64SummaryMetric is a metric which reports a summary of many float64 values.
type Float64SummaryMetric interface {
	Observe(v float64)
}

// Client represents a set of metrics.
type Client interface {
	GetInt64Metric(name string, tags ...map[string]string) Int64Metric
	GetCounter(name string, tags ...map[string]string) Counter
	GetFloat64SummaryMetric(name string, tags ...map[string]string) Float64SummaryMetric
}

var defaultClient Client = newPromClient(prometheus.DefaultRegisterer)

// GetInt64Metric returns an Int64Metric from the default Client.
func GetInt64Metric(name string, tags ...map[string]string) Int64Metric {
	return defaultClient.GetInt64Metric(name, tags...)
}

// GetCounter returns a Counter from the default Client.
func GetCounter(name string, tags ...map[string]string) Counter {
	return defaultClient.GetCounter(name, tags...)
}

// GetFloat64SummaryMetric returns a Float64SummaryMetric from the default Client.
func GetFloat64SummaryMetric(name string, tags ...map[string]string) Float64SummaryMetric {
	return defaultClient.GetFloat64SummaryMetric(name, tags...)
}

// Handler serves the metrics registered with the default Client.
func Handler() http.Handler {
	return promhttp.Handler()
}
