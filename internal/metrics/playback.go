// Package metrics exposes Prometheus collectors for the frame pipeline.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	framesProduced = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pixelpane_frames_produced_total",
		Help: "Production cycles by result",
	}, []string{"result"}) // result=success|decode_failure|skipped|idle

	framesDisplayed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pixelpane_frames_displayed_total",
		Help: "Frames transferred to the panel",
	})

	displayFPS = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "pixelpane_display_fps",
		Help: "Frames per second over the last counter window",
	})

	blitDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "pixelpane_blit_duration_seconds",
		Help:    "Time to transfer one frame to the panel",
		Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1},
	})

	stallReopens = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pixelpane_stall_reopens_total",
		Help: "Forced reopens triggered by the stall monitor",
	})

	openTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pixelpane_media_open_total",
		Help: "Media open attempts by result and mode",
	}, []string{"result", "mode"})

	switchRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pixelpane_switch_requests_total",
		Help: "Switch requests accepted from the control surface",
	}, []string{"kind"}) // kind=open|next|prev|reopen
)

// IncFrameProduced records the outcome of one production cycle.
func IncFrameProduced(result string) {
	framesProduced.WithLabelValues(result).Inc()
}

// IncFrameDisplayed records one completed panel transfer.
func IncFrameDisplayed() {
	framesDisplayed.Inc()
}

// SetDisplayFPS publishes the consumer's rolling FPS value.
func SetDisplayFPS(fps float64) {
	displayFPS.Set(fps)
}

// ObserveBlit records the duration of one panel transfer.
func ObserveBlit(d time.Duration) {
	blitDuration.Observe(d.Seconds())
}

// IncStallReopen records one stall-triggered forced reopen.
func IncStallReopen() {
	stallReopens.Inc()
}

// IncOpen records a media open attempt.
func IncOpen(success bool, mode string) {
	result := "failure"
	if success {
		result = "success"
	}
	openTotal.WithLabelValues(result, mode).Inc()
}

// IncSwitchRequest records an accepted control-surface switch request.
func IncSwitchRequest(kind string) {
	switchRequests.WithLabelValues(kind).Inc()
}
