package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "endpoint", "status"},
	)
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Histogram of HTTP request durations.",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
		},
		[]string{"method", "endpoint", "status"},
	)

	syncRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_sync_runs_total",
			Help: "Total number of catalog sync runs by outcome.",
		},
		[]string{"trigger", "status"},
	)
	syncRecordsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_sync_records_total",
			Help: "Products processed by catalog sync runs.",
		},
		[]string{"result"},
	)
	syncPagesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "catalog_sync_page_requests_total",
			Help: "Product page requests made to the shop.",
		},
	)
	syncDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "catalog_sync_duration_seconds",
			Help:    "Histogram of catalog sync run durations.",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800},
		},
	)
	syncLastSuccess = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "catalog_sync_last_success_timestamp_seconds",
			Help: "Unix time of the last successful catalog sync.",
		},
	)
)

func init() {
	prometheus.MustRegister(httpRequestsTotal)
	prometheus.MustRegister(httpRequestDuration)
	prometheus.MustRegister(syncRunsTotal, syncRecordsTotal, syncPagesTotal, syncDuration, syncLastSuccess)
}

// RecordRequest records one HTTP request.
func RecordRequest(method, endpoint string, statusCode int, duration time.Duration) {
	status := classifyStatus(statusCode)
	httpRequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	httpRequestDuration.WithLabelValues(method, endpoint, status).Observe(duration.Seconds())
}

// SyncRun is the outcome of one sync run as seen by metrics.
type SyncRun struct {
	Trigger   string
	Status    string
	Requests  int
	Succeeded int
	Failed    int
	Duration  time.Duration
	Finished  time.Time
}

// RecordSync records a finished sync run.
func RecordSync(run SyncRun) {
	syncRunsTotal.WithLabelValues(run.Trigger, run.Status).Inc()
	syncRecordsTotal.WithLabelValues("succeeded").Add(float64(run.Succeeded))
	syncRecordsTotal.WithLabelValues("failed").Add(float64(run.Failed))
	syncPagesTotal.Add(float64(run.Requests))
	syncDuration.Observe(run.Duration.Seconds())
	if run.Status == "succeeded" {
		syncLastSuccess.Set(float64(run.Finished.Unix()))
	}
}

func classifyStatus(statusCode int) string {
	if statusCode >= 200 && statusCode < 300 {
		return "2xx"
	} else if statusCode >= 300 && statusCode < 400 {
		return "3xx"
	} else if statusCode >= 400 && statusCode < 500 {
		return "4xx"
	} else if statusCode >= 500 && statusCode < 600 {
		return "5xx"
	}
	return "unknown"
}

// Handler exposes the default registry for scraping.
func Handler() http.Handler {
	return promhttp.Handler()
}
