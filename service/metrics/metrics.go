package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the sensor's Prometheus collectors. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	FramesProcessed prometheus.Counter
	ReadErrors      prometheus.Counter
	DetectErrors    prometheus.Counter
	PersonCount     prometheus.Gauge
	DetectLatency   prometheus.Histogram

	DeviceUpdates   *prometheus.CounterVec
	DeviceThrottled prometheus.Counter
	Alerts          *prometheus.CounterVec
	AlertsThrottled prometheus.Counter

	registry *prometheus.Registry
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		FramesProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "crowd_frames_processed_total",
			Help: "Frames read and passed to the detector",
		}),
		ReadErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "crowd_frame_read_errors_total",
			Help: "Failed frame reads",
		}),
		DetectErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "crowd_detect_errors_total",
			Help: "Frames the detector failed on",
		}),
		PersonCount: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "crowd_person_count",
			Help: "Persons detected in the latest frame",
		}),
		DetectLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "crowd_detect_seconds",
			Help:    "Detector latency per frame",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 10),
		}),
		DeviceUpdates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "crowd_device_updates_total",
			Help: "Device update attempts by outcome",
		}, []string{"outcome"}),
		DeviceThrottled: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "crowd_device_updates_throttled_total",
			Help: "Device updates suppressed by the rate limiter",
		}),
		Alerts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "crowd_alerts_total",
			Help: "Alert attempts by outcome",
		}, []string{"outcome"}),
		AlertsThrottled: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "crowd_alerts_throttled_total",
			Help: "Alerts above threshold suppressed by the rate limiter",
		}),
	}

	m.registry.MustRegister(
		m.FramesProcessed,
		m.ReadErrors,
		m.DetectErrors,
		m.PersonCount,
		m.DetectLatency,
		m.DeviceUpdates,
		m.DeviceThrottled,
		m.Alerts,
		m.AlertsThrottled,
	)

	return m
}

// Handler returns the Prometheus HTTP handler
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveFrame(count int, detect time.Duration) {
	if m == nil {
		return
	}
	m.FramesProcessed.Inc()
	m.PersonCount.Set(float64(count))
	m.DetectLatency.Observe(detect.Seconds())
}

func (m *Metrics) ObserveReadError() {
	if m == nil {
		return
	}
	m.ReadErrors.Inc()
}

func (m *Metrics) ObserveDetectError() {
	if m == nil {
		return
	}
	m.DetectErrors.Inc()
}

func (m *Metrics) ObserveDevice(outcome string) {
	if m == nil {
		return
	}
	m.DeviceUpdates.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveDeviceThrottled() {
	if m == nil {
		return
	}
	m.DeviceThrottled.Inc()
}

func (m *Metrics) ObserveAlert(outcome string) {
	if m == nil {
		return
	}
	m.Alerts.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveAlertThrottled() {
	if m == nil {
		return
	}
	m.AlertsThrottled.Inc()
}
