package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "sketchbook", Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "sketchbook", Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)
	LoginAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "sketchbook", Name: "login_attempts_total", Help: "Login attempts by result (success|invalid|error)."},
		[]string{"result"},
	)
	DrawingsSaved = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "sketchbook", Name: "drawings_saved_total", Help: "Drawing uploads by result (success|failure)."},
		[]string{"result"},
	)
	DrawingLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "sketchbook", Name: "drawing_lookups_total", Help: "Drawing lookups by direction (latest|before|after|id) and result (found|not_found|error)."},
		[]string{"direction", "result"},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
	reg.MustRegister(LoginAttempts)
	reg.MustRegister(DrawingsSaved)
	reg.MustRegister(DrawingLookups)
}
