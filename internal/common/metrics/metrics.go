// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	QueriesProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agent_queries_processed_total",
			Help: "Total number of queries processed by the agent",
		},
		[]string{"intent"},
	)

	QueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "agent_query_duration_seconds",
			Help: "Duration of query processing in seconds",
		},
		[]string{"intent"},
	)

	IntentRecognitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agent_intent_recognitions_total",
			Help: "Intent recognitions by method (ai or keyword)",
		},
		[]string{"method"},
	)

	WorkflowExecutions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agent_workflow_executions_total",
			Help: "Workflow executions by workflow name",
		},
		[]string{"workflow"},
	)

	SkillOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agent_skill_operations_total",
			Help: "Skill operations by skill and outcome",
		},
		[]string{"skill", "outcome"},
	)

	AICalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agent_ai_calls_total",
			Help: "AI model calls by operation and outcome",
		},
		[]string{"operation", "outcome"},
	)

	ActiveQueries = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "agent_queries_active",
			Help: "Number of queries currently being processed",
		},
		[]string{"intent"},
	)
)
