package orchestrate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"orchestrateiq/internal/common/logger"
	"orchestrateiq/internal/common/metrics"
	"orchestrateiq/internal/common/observability"
	"orchestrateiq/internal/handlers"
	"orchestrateiq/internal/models"
)

// ErrUnknownSector marks a dashboard request for a sector that has none.
var ErrUnknownSector = errors.New("UNKNOWN_SECTOR")

// Notifier delivers an out-of-band digest of triggered actions. Delivery is
// best effort and never affects the query response.
type Notifier interface {
	NotifyActions(ctx context.Context, query string, actions []models.Action) error
}

// Agent ties intent recognition and workflow execution together into the
// query processing entry point the API serves.
type Agent struct {
	recognizer *Recognizer
	engine     *Engine
	notifier   Notifier
	obs        *observability.Observability
	logger     logger.Logger

	initialized bool
}

// NewAgent wires an agent. notifier and obs may be nil.
func NewAgent(recognizer *Recognizer, engine *Engine, notifier Notifier, obs *observability.Observability, log logger.Logger) *Agent {
	return &Agent{
		recognizer:  recognizer,
		engine:      engine,
		notifier:    notifier,
		obs:         obs,
		logger:      log.WithFields(map[string]interface{}{"component": "agent"}),
		initialized: recognizer != nil && engine != nil,
	}
}

// ProcessQuery runs the full pipeline for one query: recognize the intent,
// execute the matching workflow, compose the response text.
func (a *Agent) ProcessQuery(ctx context.Context, req models.QueryRequest) (*models.QueryResponse, error) {
	start := time.Now()

	intentResult := a.recognizer.Recognize(ctx, req.Query, req.Sector)

	metrics.ActiveQueries.WithLabelValues(intentResult.Intent).Inc()
	defer metrics.ActiveQueries.WithLabelValues(intentResult.Intent).Dec()

	result := a.engine.Execute(ctx, intentResult.Intent, req.Query)

	if a.notifier != nil && len(result.Actions) > 0 {
		if err := a.notifier.NotifyActions(ctx, req.Query, result.Actions); err != nil {
			a.logger.Warn("action notification failed", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	elapsed := time.Since(start)
	metrics.QueriesProcessed.WithLabelValues(intentResult.Intent).Inc()
	metrics.QueryDuration.WithLabelValues(intentResult.Intent).Observe(elapsed.Seconds())
	if a.obs != nil {
		a.obs.RecordQueryProcessed(ctx, intentResult.Intent)
		a.obs.RecordQueryDuration(ctx, elapsed, intentResult.Intent)
	}

	a.logger.Info("query processed", map[string]interface{}{
		"intent":         intentResult.Intent,
		"confidence":     intentResult.Confidence,
		"insights":       len(result.Insights),
		"actions":        len(result.Actions),
		"execution_time": elapsed.Seconds(),
	})

	// The response carries the sectors the recognizer detected, not the
	// sectors the workflow happens to span.
	return &models.QueryResponse{
		Query:         req.Query,
		Intent:        intentResult.Intent,
		Sectors:       intentResult.Sectors,
		Insights:      result.Insights,
		Actions:       result.Actions,
		Data:          result.Data,
		ResponseText:  composeResponse(result),
		ExecutionTime: elapsed.Seconds(),
		Timestamp:     time.Now().UTC(),
	}, nil
}

// composeResponse renders a workflow result as conversational text. At most
// three insights are spelled out; actions are always listed in full.
func composeResponse(result models.WorkflowResult) string {
	var parts []string

	if len(result.Insights) > 0 {
		parts = append(parts, fmt.Sprintf("I found %d key insight(s):", len(result.Insights)))
		for i, insight := range result.Insights {
			if i == 3 {
				break
			}
			parts = append(parts, "• "+insight.Description)
		}
	}

	if len(result.Actions) > 0 {
		parts = append(parts, fmt.Sprintf("\nI've triggered %d action(s):", len(result.Actions)))
		for _, action := range result.Actions {
			parts = append(parts, fmt.Sprintf("• %s: %s", action.ActionType, action.Target))
		}
	}

	if len(result.Data) > 0 {
		parts = append(parts, "\nHere's the data you requested:")
	}

	if len(parts) == 0 {
		return "I've processed your query and retrieved the relevant information."
	}

	out := parts[0]
	for _, p := range parts[1:] {
		out += "\n" + p
	}
	return out
}

// Dashboard returns the snapshot for one sector.
func (a *Agent) Dashboard(sector string) (*models.DashboardData, error) {
	parsed, ok := models.ParseSector(sector)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSector, sector)
	}
	d, ok := handlers.ForSector(parsed)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSector, sector)
	}

	return &models.DashboardData{
		Sector:      parsed,
		Metrics:     d.Metrics(),
		Trends:      d.Trends(),
		Alerts:      d.Alerts(),
		LastUpdated: time.Now().UTC(),
	}, nil
}

// Sectors lists the sectors that can be queried directly.
func (a *Agent) Sectors() []models.Sector {
	return models.KnownSectors()
}

// Health reports liveness. A partially wired agent reports degraded instead
// of failing the endpoint.
func (a *Agent) Health() models.HealthResponse {
	status := "healthy"
	agentState := "initialized"
	if !a.initialized {
		status = "degraded"
		agentState = "not_initialized"
	}
	return models.HealthResponse{
		Status:    status,
		Agent:     agentState,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}
