package orchestrator

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Метрики выполнения workflows.
var (
	executionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "conductor_executions_total",
		Help: "Workflow executions by final status (completed, failed, invalid)",
	}, []string{"status"})

	stepDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "conductor_step_duration_seconds",
		Help:    "Skill invocation duration per step",
		Buckets: prometheus.DefBuckets,
	})

	rollbacksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "conductor_rollbacks_total",
		Help: "Rollback walks triggered by step failures",
	})
)
