package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	TasksFinished   *prometheus.CounterVec
	PointsLoaded    prometheus.Counter
	PairsGenerated  prometheus.Counter
	GeocodeErrors   prometheus.Counter
	ProviderSeconds *prometheus.HistogramVec
	ActiveBatches   prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		TasksFinished: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "meridian_tasks_finished_total",
			Help: "Total number of pipeline tasks that reached a terminal status.",
		}, []string{"type", "status"}),
		PointsLoaded: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "meridian_points_loaded_total",
			Help: "Total number of points bulk-loaded from uploaded files.",
		}),
		PairsGenerated: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "meridian_distance_pairs_total",
			Help: "Total number of unordered point pairs processed by the distance pipeline.",
		}),
		GeocodeErrors: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "meridian_geocode_errors_total",
			Help: "Total number of classified errors received from the reverse-geocoding provider.",
		}),
		ProviderSeconds: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "meridian_provider_request_duration_seconds",
			Help:    "Duration of requests to the reverse-geocoding provider API.",
			Buckets: prometheus.DefBuckets,
		}, []string{"provider"}),
		ActiveBatches: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "meridian_active_distance_batches",
			Help: "Current number of distance batches being computed.",
		}),
	}
}
