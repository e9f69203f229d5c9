package conversation

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	messagesSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bitechat_messages_sent_total",
		Help: "Outgoing messages confirmed by the server.",
	})
	messagesFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bitechat_messages_failed_total",
		Help: "Outgoing messages that failed to upload or send.",
	})
	messagesReceived = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bitechat_messages_received_total",
		Help: "Live messages applied to the open conversation.",
	})
)
