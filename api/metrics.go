package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	apiErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bitechat_api_errors_total",
		Help: "Non-2xx REST responses, excluding 401.",
	})
	unauthorizedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bitechat_api_unauthorized_total",
		Help: "401 responses that forced a sign-out.",
	})
)
