package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "gridfees_"

	ResultSuccess = "success"
	ResultError   = "error"
)

var (
	registerOnce sync.Once

	calculationsTotal  *prometheus.CounterVec
	calculationLatency *prometheus.HistogramVec

	datasetReloadsTotal *prometheus.CounterVec
	datasetRows         prometheus.Gauge
	datasetShadowedRows prometheus.Gauge

	exportsTotal *prometheus.CounterVec

	websocketClients prometheus.Gauge
)

// Init registers the metrics with the default registry.
func Init() {
	registerOnce.Do(func() {
		calculationsTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "calculations_total",
				Help: "Total fee calculations by outcome",
			},
			[]string{"outcome"},
		)
		calculationLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "calculation_latency_seconds",
				Help:    "Fee calculation latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"endpoint"},
		)

		datasetReloadsTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "dataset_reloads_total",
				Help: "Total tariff dataset reloads by result",
			},
			[]string{"result"},
		)
		datasetRows = prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: metricPrefix + "dataset_rows",
				Help: "Fee rows in the current tariff dataset",
			},
		)
		datasetShadowedRows = prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: metricPrefix + "dataset_shadowed_rows",
				Help: "Fee rows that can never be selected because an earlier row matches first",
			},
		)

		exportsTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "exports_total",
				Help: "Total calculation exports by format and result",
			},
			[]string{"format", "result"},
		)

		websocketClients = prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: metricPrefix + "websocket_clients",
				Help: "Connected websocket clients",
			},
		)

		prometheus.MustRegister(
			calculationsTotal,
			calculationLatency,
			datasetReloadsTotal,
			datasetRows,
			datasetShadowedRows,
			exportsTotal,
			websocketClients,
		)
	})
}

// ObserveCalculation counts a calculation by outcome, "success" or the
// error kind, and records its latency per endpoint.
func ObserveCalculation(endpoint, outcome string, duration time.Duration) {
	if outcome == "" {
		outcome = ResultSuccess
	}
	if endpoint == "" {
		endpoint = "unknown"
	}
	if calculationsTotal != nil {
		calculationsTotal.WithLabelValues(outcome).Inc()
	}
	if calculationLatency != nil {
		calculationLatency.WithLabelValues(endpoint).Observe(duration.Seconds())
	}
}

// ObserveDatasetReload counts a reload attempt. Row gauges are only
// updated on success.
func ObserveDatasetReload(result string, rows, shadowed int) {
	if result == "" {
		result = ResultSuccess
	}
	if datasetReloadsTotal != nil {
		datasetReloadsTotal.WithLabelValues(result).Inc()
	}
	if result != ResultSuccess {
		return
	}
	if datasetRows != nil {
		datasetRows.Set(float64(rows))
	}
	if datasetShadowedRows != nil {
		datasetShadowedRows.Set(float64(shadowed))
	}
}

func IncExport(format, result string) {
	if format == "" {
		format = "unknown"
	}
	if result == "" {
		result = ResultSuccess
	}
	if exportsTotal != nil {
		exportsTotal.WithLabelValues(format, result).Inc()
	}
}

func SetWebsocketClients(n int) {
	if websocketClients != nil {
		websocketClients.Set(float64(n))
	}
}
