// Package telemetry provides Prometheus metrics and correlation-id aware logging helpers.
package telemetry

import (
	"context"
	"log/slog"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Sources label values.
const (
	SourceTwitch  = "twitch"
	SourceYouTube = "youtube"
)

var (
	once sync.Once

	// Counters
	ChatMessages    *prometheus.CounterVec // by source
	EventsAccepted  *prometheus.CounterVec // by source
	EventsDelivered prometheus.Counter
	TokenRenewals   *prometheus.CounterVec // by result
	ProfileLookups  *prometheus.CounterVec // by result: hit|ok|placeholder
	YouTubePolls    *prometheus.CounterVec // by result: ok|quota|error

	// Gauges
	ConnectedClients prometheus.Gauge
	PollingActive    prometheus.Gauge // 1=polling,0=idle
)

// Init registers metrics (idempotent).
func Init() {
	once.Do(func() {
		ChatMessages = promauto.NewCounterVec(prometheus.CounterOpts{Name: "xp_chat_messages_total", Help: "Chat messages inspected"}, []string{"source"})
		EventsAccepted = promauto.NewCounterVec(prometheus.CounterOpts{Name: "xp_events_accepted_total", Help: "Chat messages accepted as xp events"}, []string{"source"})
		EventsDelivered = promauto.NewCounter(prometheus.CounterOpts{Name: "xp_frames_delivered_total", Help: "Frames written to overlay clients"})
		TokenRenewals = promauto.NewCounterVec(prometheus.CounterOpts{Name: "xp_twitch_token_renewals_total", Help: "Twitch app token renewals"}, []string{"result"})
		ProfileLookups = promauto.NewCounterVec(prometheus.CounterOpts{Name: "xp_profile_lookups_total", Help: "Twitch avatar resolutions"}, []string{"result"})
		YouTubePolls = promauto.NewCounterVec(prometheus.CounterOpts{Name: "xp_youtube_polls_total", Help: "YouTube live chat poll ticks"}, []string{"result"})
		ConnectedClients = promauto.NewGauge(prometheus.GaugeOpts{Name: "xp_ws_clients", Help: "Currently connected overlay clients"})
		PollingActive = promauto.NewGauge(prometheus.GaugeOpts{Name: "xp_youtube_polling", Help: "YouTube polling active=1 idle=0"})
	})
}

// Inc increments a labelled counter if metrics were initialized.
func Inc(vec *prometheus.CounterVec, label string) {
	if vec != nil {
		vec.WithLabelValues(label).Inc()
	}
}

// AddDelivered records frames written by one broadcast.
func AddDelivered(n int) {
	if EventsDelivered != nil && n > 0 {
		EventsDelivered.Add(float64(n))
	}
}

// SetClients records the current overlay client count.
func SetClients(n int) {
	if ConnectedClients != nil {
		ConnectedClients.Set(float64(n))
	}
}

// SetPolling sets gauge to 1 if polling else 0.
func SetPolling(active bool) {
	if PollingActive != nil {
		if active {
			PollingActive.Set(1)
		} else {
			PollingActive.Set(0)
		}
	}
}

// Correlation ID helpers ----------------------------------------------------
type corrKeyType struct{}

var corrKey corrKeyType

// WithCorrelation returns a new context embedding the correlation id.
func WithCorrelation(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, corrKey, id)
}

// GetCorrelation returns correlation id or empty string.
func GetCorrelation(ctx context.Context) string {
	v := ctx.Value(corrKey)
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

// LoggerWithCorr returns a logger with corr attribute if present.
func LoggerWithCorr(ctx context.Context) *slog.Logger {
	if id := GetCorrelation(ctx); id != "" {
		return slog.Default().With(slog.String("corr", id))
	}
	return slog.Default()
}
