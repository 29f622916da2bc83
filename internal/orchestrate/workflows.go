package orchestrate

import (
	"context"
	"fmt"
	"strings"

	"orchestrateiq/internal/common/config"
	"orchestrateiq/internal/common/logger"
	"orchestrateiq/internal/common/metrics"
	"orchestrateiq/internal/handlers"
	"orchestrateiq/internal/models"
	"orchestrateiq/internal/skills"
)

// workflowDef ties an intent to the sectors it spans, the skills it pulls
// data from, and the step that runs it.
type workflowDef struct {
	Sectors []models.Sector
	Skills  []string
	run     func(e *Engine, ctx context.Context, query string) models.WorkflowResult
}

// Engine executes the workflow behind a recognized intent. Workflows never
// fail outright: missing or partial data produces insights over whatever the
// skills returned.
type Engine struct {
	skills  *skills.Manager
	ai      AIClient
	cfg     config.WorkflowConfig
	logger  logger.Logger
	hr      handlers.HRHandler
	sales   handlers.SalesHandler
	service handlers.ServiceHandler
	finance handlers.FinanceHandler

	workflows map[string]workflowDef
}

func NewEngine(mgr *skills.Manager, ai AIClient, cfg config.WorkflowConfig, log logger.Logger) *Engine {
	e := &Engine{
		skills: mgr,
		ai:     ai,
		cfg:    cfg,
		logger: log.WithFields(map[string]interface{}{"component": "workflows"}),
	}
	e.workflows = map[string]workflowDef{
		IntentAnalyzeAttrition: {
			Sectors: []models.Sector{models.SectorHR},
			Skills:  []string{skills.SkillWorkdayHR},
			run:     (*Engine).runAttrition,
		},
		IntentCorrelateSatisfSales: {
			Sectors: []models.Sector{models.SectorHR, models.SectorSales},
			Skills:  []string{skills.SkillWorkdayHR, skills.SkillSalesforce},
			run:     (*Engine).runCorrelation,
		},
		IntentAnalyzePipeline: {
			Sectors: []models.Sector{models.SectorSales},
			Skills:  []string{skills.SkillSalesforce},
			run:     (*Engine).runPipeline,
		},
		IntentBlockingTickets: {
			Sectors: []models.Sector{models.SectorSales, models.SectorService},
			Skills:  []string{skills.SkillSalesforce, skills.SkillServiceNow},
			run:     (*Engine).runBlockingTickets,
		},
		IntentPredictEscalations: {
			Sectors: []models.Sector{models.SectorService},
			Skills:  []string{skills.SkillServiceNow},
			run:     (*Engine).runEscalations,
		},
		IntentComplaintImpact: {
			Sectors: []models.Sector{models.SectorService, models.SectorFinance},
			Skills:  []string{skills.SkillServiceNow, skills.SkillSAP},
			run:     (*Engine).runComplaintImpact,
		},
		IntentAutoApproveInvoices: {
			Sectors: []models.Sector{models.SectorFinance},
			Skills:  []string{skills.SkillSAP},
			run:     (*Engine).runInvoiceApproval,
		},
		IntentBudgetHiring: {
			Sectors: []models.Sector{models.SectorFinance, models.SectorHR},
			Skills:  []string{skills.SkillSAP, skills.SkillWorkdayHR},
			run:     (*Engine).runBudgetHiring,
		},
		IntentGeneralQuery: {
			Sectors: []models.Sector{},
			Skills:  []string{},
			run:     (*Engine).runGeneral,
		},
	}
	return e
}

// Definition returns the sectors and skills a workflow spans, false for
// intents that fall through to the general workflow.
func (e *Engine) Definition(intent string) ([]models.Sector, []string, bool) {
	def, ok := e.workflows[intent]
	if !ok {
		return nil, nil, false
	}
	return def.Sectors, def.Skills, true
}

// Execute runs the workflow for an intent. Unknown intents run the general
// workflow. The total action count is capped by configuration.
func (e *Engine) Execute(ctx context.Context, intent, query string) models.WorkflowResult {
	def, ok := e.workflows[intent]
	if !ok {
		e.logger.Warn("unknown intent, running general workflow", map[string]interface{}{
			"intent": intent,
		})
		def = e.workflows[IntentGeneralQuery]
		intent = IntentGeneralQuery
	}

	metrics.WorkflowExecutions.WithLabelValues(intent).Inc()
	result := def.run(e, ctx, query)

	if e.cfg.MaxActionsPerQuery > 0 && len(result.Actions) > e.cfg.MaxActionsPerQuery {
		result.Actions = result.Actions[:e.cfg.MaxActionsPerQuery]
	}
	if result.Insights == nil {
		result.Insights = []models.Insight{}
	}
	if result.Actions == nil {
		result.Actions = []models.Action{}
	}
	if result.Data == nil {
		result.Data = map[string]interface{}{}
	}
	return result
}

// fetch pulls one dataset, degrading to an empty one on hard skill errors.
func (e *Engine) fetch(ctx context.Context, skill, operation string) models.Dataset {
	ds, err := e.skills.Execute(ctx, skill, operation, nil)
	if err != nil {
		e.logger.WithError(err).Error("skill execution failed", map[string]interface{}{
			"skill":     skill,
			"operation": operation,
		})
		return models.EmptyDataset()
	}
	return ds
}

// describe asks the model for a narrative description of an analysis and
// keeps the template text when the model is unavailable or fails.
func (e *Engine) describe(ctx context.Context, query string, analysis interface{}, fallback string) string {
	if e.ai == nil || !e.ai.Available() {
		return fallback
	}
	text, err := e.ai.GenerateInsight(ctx, query, analysis, nil)
	if err != nil || text == "" {
		if err != nil {
			e.logger.Debug("insight generation failed, keeping template", map[string]interface{}{
				"error": err.Error(),
			})
		}
		return fallback
	}
	return text
}

func (e *Engine) runAttrition(ctx context.Context, query string) models.WorkflowResult {
	data := e.fetch(ctx, skills.SkillWorkdayHR, "get_attrition_data")
	analysis := e.hr.AnalyzeAttrition(data)

	desc := e.describe(ctx, query, analysis,
		fmt.Sprintf("Attrition rate is %.1f%% this quarter", analysis.AttritionRate))
	insight := models.NewInsight("Attrition Trend Analysis", desc, models.SectorHR, 0.9, analysis)

	var actions []models.Action
	if len(analysis.HighRiskDepartments) > 0 {
		actions = append(actions, models.NewAction(
			"generate_retention_plan",
			"departments: "+strings.Join(analysis.HighRiskDepartments, ", "),
			map[string]interface{}{"departments": analysis.HighRiskDepartments},
		))
	}

	return models.WorkflowResult{
		Insights: []models.Insight{insight},
		Actions:  actions,
		Data:     map[string]interface{}{"analysis": analysis},
	}
}

func (e *Engine) runCorrelation(ctx context.Context, query string) models.WorkflowResult {
	hrData := e.fetch(ctx, skills.SkillWorkdayHR, "get_satisfaction_data")
	salesData := e.fetch(ctx, skills.SkillSalesforce, "get_performance_data")
	analysis := e.hr.CorrelateWithSales(hrData, salesData)

	desc := analysis.Description
	confidence := 0.85
	if e.ai != nil && e.ai.Available() {
		payload, err := e.ai.AnalyzeCorrelation(ctx, analysis, map[string]interface{}{
			"avg_sales_performance": analysis.AvgSalesPerformance,
		})
		if err == nil {
			desc = payload.Description
			confidence = payload.Confidence
		} else {
			e.logger.Debug("correlation analysis failed, keeping template", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	insight := models.NewInsight("Satisfaction-Sales Correlation", desc, models.SectorCross, confidence, analysis)

	return models.WorkflowResult{
		Insights: []models.Insight{insight},
		Data:     map[string]interface{}{"analysis": analysis},
	}
}

func (e *Engine) runPipeline(ctx context.Context, query string) models.WorkflowResult {
	data := e.fetch(ctx, skills.SkillSalesforce, "get_pipeline_data")
	analysis := e.sales.AnalyzePipeline(data)

	desc := e.describe(ctx, query, analysis,
		fmt.Sprintf("Pipeline health: %.1f/100", analysis.HealthScore))
	insight := models.NewInsight("Pipeline Analysis", desc, models.SectorSales, 0.9, analysis)

	var actions []models.Action
	for i, deal := range analysis.UrgentDeals {
		if i == 3 {
			break
		}
		dealID := deal.GetString("deal_id")
		actions = append(actions, models.NewAction(
			"assign_task",
			"deal: "+dealID,
			map[string]interface{}{"deal_id": dealID, "priority": "high"},
		))
	}

	return models.WorkflowResult{
		Insights: []models.Insight{insight},
		Actions:  actions,
		Data:     map[string]interface{}{"analysis": analysis},
	}
}

func (e *Engine) runBlockingTickets(ctx context.Context, query string) models.WorkflowResult {
	salesData := e.fetch(ctx, skills.SkillSalesforce, "get_deals_data")
	serviceData := e.fetch(ctx, skills.SkillServiceNow, "get_tickets_data")
	analysis := e.sales.IdentifyBlockingTickets(salesData, serviceData)

	desc := e.describe(ctx, query, analysis, fmt.Sprintf(
		"%d unresolved tickets are blocking %d deals",
		analysis.TotalBlocking, analysis.DealsAffected))
	insight := models.NewInsight("Blocking Tickets Analysis", desc, models.SectorCross, 0.88, analysis)

	var actions []models.Action
	for i, ticket := range analysis.BlockingTickets {
		if i == 3 {
			break
		}
		ticketID := ticket.GetString("ticket_id")
		actions = append(actions, models.NewAction(
			"escalate_ticket",
			"ticket: "+ticketID,
			map[string]interface{}{"ticket_id": ticketID, "priority": "critical"},
		))
	}

	return models.WorkflowResult{
		Insights: []models.Insight{insight},
		Actions:  actions,
		Data:     map[string]interface{}{"analysis": analysis},
	}
}

func (e *Engine) runEscalations(ctx context.Context, query string) models.WorkflowResult {
	data := e.fetch(ctx, skills.SkillServiceNow, "get_tickets_data")
	analysis := e.service.PredictEscalations(data)

	desc := e.describe(ctx, query, analysis, fmt.Sprintf(
		"%d tickets are at high risk of escalation", analysis.TotalHighRisk))
	insight := models.NewInsight("Escalation Prediction", desc, models.SectorService, 0.87, analysis)

	var actions []models.Action
	for i, ticket := range analysis.HighRiskTickets {
		if i == 3 {
			break
		}
		actions = append(actions, models.NewAction(
			"assign_senior_agent",
			"ticket: "+ticket.ID,
			map[string]interface{}{"ticket_id": ticket.ID, "agent_level": "senior"},
		))
	}

	return models.WorkflowResult{
		Insights: []models.Insight{insight},
		Actions:  actions,
		Data:     map[string]interface{}{"analysis": analysis},
	}
}

func (e *Engine) runComplaintImpact(ctx context.Context, query string) models.WorkflowResult {
	serviceData := e.fetch(ctx, skills.SkillServiceNow, "get_complaints_data")
	financeData := e.fetch(ctx, skills.SkillSAP, "get_financial_data")
	analysis := e.service.AnalyzeFinancialImpact(serviceData, financeData)

	desc := e.describe(ctx, query, analysis, fmt.Sprintf(
		"Top 5 complaints have $%.0f financial impact", analysis.TotalImpact))
	insight := models.NewInsight("Financial Impact Analysis", desc, models.SectorCross, 0.9, analysis)

	return models.WorkflowResult{
		Insights: []models.Insight{insight},
		Data:     map[string]interface{}{"analysis": analysis},
	}
}

func (e *Engine) runInvoiceApproval(ctx context.Context, query string) models.WorkflowResult {
	data := e.fetch(ctx, skills.SkillSAP, "get_invoices_data")
	analysis := e.finance.AutoApproveInvoices(data, e.cfg.AutoApproveThreshold)

	insight := models.NewInsight(
		"Auto-Approval Summary",
		fmt.Sprintf("Approved %d invoices automatically", analysis.ApprovedCount),
		models.SectorFinance, 1.0, analysis,
	)

	var actions []models.Action
	for _, invoice := range analysis.ApprovedInvoices {
		invoiceID := invoice.GetString("invoice_id")
		actions = append(actions, models.NewAction(
			"approve_invoice",
			"invoice: "+invoiceID,
			map[string]interface{}{"invoice_id": invoiceID, "amount": invoice.GetFloat("amount")},
		))
	}

	return models.WorkflowResult{
		Insights: []models.Insight{insight},
		Actions:  actions,
		Data:     map[string]interface{}{"analysis": analysis},
	}
}

func (e *Engine) runBudgetHiring(ctx context.Context, query string) models.WorkflowResult {
	financeData := e.fetch(ctx, skills.SkillSAP, "get_cashflow_data")
	hrData := e.fetch(ctx, skills.SkillWorkdayHR, "get_hiring_plan_data")
	analysis := e.finance.AnalyzeHiringBudget(financeData, hrData, e.cfg.CostPerPosition)

	insight := models.NewInsight("Budget-Hiring Analysis", analysis.Recommendation, models.SectorCross, 0.88, analysis)

	return models.WorkflowResult{
		Insights: []models.Insight{insight},
		Data:     map[string]interface{}{"analysis": analysis},
	}
}

func (e *Engine) runGeneral(ctx context.Context, query string) models.WorkflowResult {
	return models.WorkflowResult{
		Insights: []models.Insight{},
		Actions:  []models.Action{},
		Data: map[string]interface{}{
			"message": "General query processed",
			"query":   query,
		},
	}
}
