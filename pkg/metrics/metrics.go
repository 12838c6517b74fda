package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "papyrus", Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "papyrus", Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)
	// NoteOperations counts note repository calls by operation (create|list|update|delete|export)
	// and outcome (ok|not_found|invalid|error).
	NoteOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "papyrus", Name: "notes_operations_total", Help: "Number of note operations by operation and outcome."},
		[]string{"op", "outcome"},
	)
	ProbeResults = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "papyrus", Name: "probe_results_total", Help: "Database probe results by status."},
		[]string{"result"},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
	reg.MustRegister(NoteOperations)
	reg.MustRegister(ProbeResults)
}
