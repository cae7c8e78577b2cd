package evergreen

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/yohamta/donburi"
)

// Metrics holds the session's Prometheus collectors on a private registry.
type Metrics struct {
	Registry *prometheus.Registry

	frames         prometheus.Counter
	updateSeconds  prometheus.Histogram
	transitions    *prometheus.CounterVec
	photos         *prometheus.CounterVec
	aiRequests     *prometheus.CounterVec
	particles      prometheus.Gauge
	gestureEnabled prometheus.Gauge
	handVisible    prometheus.Gauge
}

// NewMetrics creates and registers the collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		frames: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "evergreen_frames_total",
			Help: "Frames processed by the session loop.",
		}),
		updateSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "evergreen_update_seconds",
			Help:    "Time spent in one session update.",
			Buckets: []float64{0.0005, 0.001, 0.002, 0.004, 0.008, 0.016, 0.033},
		}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "evergreen_mode_transitions_total",
			Help: "Mode transitions by destination and trigger.",
		}, []string{"to", "trigger"}),
		photos: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "evergreen_photos_added_total",
			Help: "Photo particles added by source.",
		}, []string{"source"}),
		aiRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "evergreen_ai_requests_total",
			Help: "Image generation and edit requests by operation and result.",
		}, []string{"op", "result"}),
		particles: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "evergreen_particles",
			Help: "Particles in the store.",
		}),
		gestureEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "evergreen_gesture_enabled",
			Help: "1 while camera gesture input is active.",
		}),
		handVisible: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "evergreen_hand_visible",
			Help: "1 when the last frame contained a hand.",
		}),
	}
	m.Registry.MustRegister(
		m.frames, m.updateSeconds, m.transitions, m.photos,
		m.aiRequests, m.particles, m.gestureEnabled, m.handVisible,
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

// subscribe counts transitions and photos from the session event bus.
func (m *Metrics) subscribe(world donburi.World) {
	ModeChangedEvent.Subscribe(world, func(w donburi.World, c ModeChange) {
		trigger := "gesture"
		if c.Manual {
			trigger = "manual"
		}
		m.transitions.WithLabelValues(c.To.String(), trigger).Inc()
	})
	PhotoAddedEvent.Subscribe(world, func(w donburi.World, p PhotoAdded) {
		m.photos.WithLabelValues(p.Source.String()).Inc()
	})
}

func (m *Metrics) observeFrame(fc *FrameContext, particles int, seconds float64) {
	m.frames.Inc()
	m.updateSeconds.Observe(seconds)
	m.particles.Set(float64(particles))
	if fc.HandVisible {
		m.handVisible.Set(1)
	} else {
		m.handVisible.Set(0)
	}
}

func (m *Metrics) setGestureEnabled(on bool) {
	if on {
		m.gestureEnabled.Set(1)
	} else {
		m.gestureEnabled.Set(0)
	}
}

func (m *Metrics) aiResult(op string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.aiRequests.WithLabelValues(op, result).Inc()
}
