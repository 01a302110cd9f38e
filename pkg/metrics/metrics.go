package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "micropub"

var (
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)
	Actions = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "actions_total", Help: "Micropub actions by action and outcome."},
		[]string{"action", "outcome"},
	)
	Queries = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "queries_total", Help: "Micropub queries by q."},
		[]string{"q"},
	)
	MediaUploads = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "media_uploads_total", Help: "Media endpoint uploads by outcome."},
		[]string{"outcome"},
	)
)

// Outcome labels an action or upload result for the counters above.
func Outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
	reg.MustRegister(Actions)
	reg.MustRegister(Queries)
	reg.MustRegister(MediaUploads)
}
