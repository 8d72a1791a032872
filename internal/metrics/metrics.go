// Package metrics exposes Prometheus instrumentation for the progression
// service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// SessionsStarted counts progression sessions opened, by mode
var SessionsStarted = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "progression",
	Name:      "sessions_started_total",
	Help:      "Number of progression sessions started.",
}, []string{"mode"})

// StepsCompleted counts step completions, by mode and step
var StepsCompleted = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "progression",
	Name:      "steps_completed_total",
	Help:      "Number of progression steps completed.",
}, []string{"mode", "step"})

// Finalizes counts finalize outcomes, by mode and status
// (committed, rolled_back, rejected, lock_contended)
var Finalizes = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "progression",
	Name:      "finalize_total",
	Help:      "Number of finalize attempts by outcome.",
}, []string{"mode", "status"})
