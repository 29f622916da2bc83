// Package orchestrate is the core of the agent: it recognizes what a query
// asks for and runs the matching workflow across the sector skills.
package orchestrate

import (
	"context"
	"strings"

	"orchestrateiq/internal/common/logger"
	"orchestrateiq/internal/common/metrics"
	"orchestrateiq/internal/models"
	"orchestrateiq/internal/watsonx"
)

// AIClient is the slice of the watsonx client the orchestrator uses. The
// integration is optional end to end; every call site has a deterministic
// fallback.
type AIClient interface {
	Available() bool
	RecognizeIntent(ctx context.Context, query string, knownSectors []string) (*watsonx.IntentPayload, error)
	GenerateInsight(ctx context.Context, query string, analysis interface{}, extra map[string]interface{}) (string, error)
	AnalyzeCorrelation(ctx context.Context, first, second interface{}) (*watsonx.CorrelationPayload, error)
}

// Intent names. Every intent resolves to a workflow; anything unrecognized
// runs the general workflow.
const (
	IntentAnalyzeAttrition     = "analyze_attrition"
	IntentCorrelateSatisfSales = "correlate_satisfaction_sales"
	IntentAnalyzePipeline      = "analyze_pipeline"
	IntentBlockingTickets      = "identify_blocking_tickets"
	IntentPredictEscalations   = "predict_escalations"
	IntentComplaintImpact      = "analyze_complaint_impact"
	IntentAutoApproveInvoices  = "auto_approve_invoices"
	IntentBudgetHiring         = "analyze_budget_hiring"
	IntentGeneralQuery         = "general_query"
)

const (
	aiConfidence      = 0.95
	keywordConfidence = 0.85
)

// Recognizer classifies queries, preferring the model and degrading to
// keyword matching whenever the model is unavailable or misbehaves.
type Recognizer struct {
	ai     AIClient
	logger logger.Logger
}

func NewRecognizer(ai AIClient, log logger.Logger) *Recognizer {
	return &Recognizer{
		ai:     ai,
		logger: log.WithFields(map[string]interface{}{"component": "intent"}),
	}
}

// Recognize classifies one query. explicitSector is the caller's sector hint
// and only applies when keyword matching finds no sector on its own.
func (r *Recognizer) Recognize(ctx context.Context, query, explicitSector string) models.IntentResult {
	if r.ai != nil && r.ai.Available() {
		known := make([]string, 0, len(models.KnownSectors()))
		for _, s := range models.KnownSectors() {
			known = append(known, string(s))
		}

		payload, err := r.ai.RecognizeIntent(ctx, query, known)
		if err == nil {
			sectors := make([]models.Sector, 0, len(payload.Sectors))
			for _, raw := range payload.Sectors {
				// The model sometimes invents sector names; those are dropped.
				if s, ok := models.ParseSector(raw); ok && s != models.SectorCross {
					sectors = append(sectors, s)
				}
			}
			metrics.IntentRecognitions.WithLabelValues("ai").Inc()
			return models.IntentResult{
				Intent:     payload.Intent,
				Sectors:    sectors,
				Confidence: aiConfidence,
			}
		}
		r.logger.Warn("model intent recognition failed, falling back to keywords", map[string]interface{}{
			"error": err.Error(),
		})
	}

	metrics.IntentRecognitions.WithLabelValues("keyword").Inc()
	return r.recognizeByKeywords(query, explicitSector)
}

// recognizeByKeywords walks the sector keyword groups in a fixed order. Each
// matching group contributes its sector; a later group's specific pattern
// overrides an earlier intent.
func (r *Recognizer) recognizeByKeywords(query, explicitSector string) models.IntentResult {
	q := strings.ToLower(query)
	contains := func(kw string) bool { return strings.Contains(q, kw) }
	containsAny := func(kws ...string) bool {
		for _, kw := range kws {
			if contains(kw) {
				return true
			}
		}
		return false
	}

	var sectors []models.Sector
	intent := ""

	if containsAny("attrition", "employee", "hiring", "satisfaction", "hr", "human resources") {
		sectors = append(sectors, models.SectorHR)
		if contains("attrition") && contains("trend") {
			intent = IntentAnalyzeAttrition
		} else if contains("satisfaction") && containsAny("sales", "performance") {
			intent = IntentCorrelateSatisfSales
		}
	}

	if containsAny("pipeline", "deal", "sales", "customer", "revenue") {
		sectors = append(sectors, models.SectorSales)
		if contains("pipeline") {
			intent = IntentAnalyzePipeline
		} else if contains("ticket") && containsAny("block", "blocking") {
			intent = IntentBlockingTickets
		}
	}

	if containsAny("ticket", "service", "support", "escalat", "complaint") {
		sectors = append(sectors, models.SectorService)
		if containsAny("escalat", "predict") {
			intent = IntentPredictEscalations
		} else if contains("complaint") && containsAny("impact", "financial") {
			intent = IntentComplaintImpact
		}
	}

	if containsAny("invoice", "finance", "budget", "cash flow", "approve") {
		sectors = append(sectors, models.SectorFinance)
		if contains("approve") && contains("invoice") {
			intent = IntentAutoApproveInvoices
		} else if contains("budget") && containsAny("hiring", "hr") {
			intent = IntentBudgetHiring
		}
	}

	if intent == "" {
		intent = IntentGeneralQuery
	}
	if len(sectors) == 0 && explicitSector != "" {
		if s, ok := models.ParseSector(explicitSector); ok && s != models.SectorCross {
			sectors = append(sectors, s)
		}
	}
	if sectors == nil {
		sectors = []models.Sector{}
	}

	return models.IntentResult{
		Intent:     intent,
		Sectors:    sectors,
		Confidence: keywordConfidence,
	}
}
