package transport

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	eventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bitechat_transport_events_total",
		Help: "Decoded server push events by type.",
	}, []string{"type"})

	framesDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bitechat_transport_frames_dropped_total",
		Help: "Frames dropped because they failed to decode.",
	})
)
