// Package metrics describes run metrics. A one-shot CLI has no scrape endpoint,
// so metrics are written in text exposition format for the node_exporter textfile collector.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Stage labels used by RunsTotal.
const (
	StageLocation = "location"
	StageWeather  = "weather"
	StageStorage  = "storage"
	StageSuccess  = "success"
)

type Metrics struct {
	RunsTotal       *prometheus.CounterVec
	RequestSeconds  *prometheus.HistogramVec
	LastTemperature prometheus.Gauge
	LastSuccess     prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		RunsTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "meteo_runs_total",
			Help: "Total number of runs by the stage they finished at.",
		}, []string{"stage"}),
		RequestSeconds: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "meteo_request_duration_seconds",
			Help:    "Duration of calls to external collaborators.",
			Buckets: prometheus.DefBuckets,
		}, []string{"collaborator"}),
		LastTemperature: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "meteo_last_temperature_celsius",
			Help: "Temperature reported by the last successful run.",
		}),
		LastSuccess: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "meteo_last_success_timestamp_seconds",
			Help: "Unix time of the last successful run.",
		}),
	}
}

// WriteTextfile stores the gathered metrics at path. An empty path is a no-op.
func WriteTextfile(path string, gatherer prometheus.Gatherer) error {
	if path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, gatherer); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}

	return nil
}
