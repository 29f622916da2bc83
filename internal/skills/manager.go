// Package skills connects the agent to the mock enterprise systems that back
// each sector: Workday (HR), Salesforce (sales), ServiceNow (service) and
// SAP (finance).
package skills

import (
	"context"

	commonerrors "orchestrateiq/internal/common/errors"
	"orchestrateiq/internal/common/logger"
	"orchestrateiq/internal/common/metrics"
	"orchestrateiq/internal/models"
)

const (
	SkillWorkdayHR  = "workday_hr"
	SkillSalesforce = "salesforce"
	SkillServiceNow = "servicenow"
	SkillSAP        = "sap"
)

// datasetRef names the dataset behind one skill operation.
type datasetRef struct {
	Sector string
	Name   string
}

// skillOperations maps skill -> operation -> backing dataset.
var skillOperations = map[string]map[string]datasetRef{
	SkillWorkdayHR: {
		"get_attrition_data":    {Sector: "hr", Name: "attrition_data"},
		"get_satisfaction_data": {Sector: "hr", Name: "satisfaction_scores"},
		"get_hiring_plan_data":  {Sector: "hr", Name: "employee_data"},
	},
	SkillSalesforce: {
		"get_pipeline_data":    {Sector: "sales", Name: "pipeline_data"},
		"get_deals_data":       {Sector: "sales", Name: "deals_data"},
		"get_performance_data": {Sector: "sales", Name: "customer_data"},
	},
	SkillServiceNow: {
		"get_tickets_data":    {Sector: "service", Name: "tickets_data"},
		"get_complaints_data": {Sector: "service", Name: "escalations"},
		"get_response_times":  {Sector: "service", Name: "response_times"},
	},
	SkillSAP: {
		"get_invoices_data":  {Sector: "finance", Name: "invoices_data"},
		"get_financial_data": {Sector: "finance", Name: "cashflow_data"},
		"get_cashflow_data":  {Sector: "finance", Name: "cashflow_data"},
		"get_budget_data":    {Sector: "finance", Name: "budget_data"},
	},
}

// Manager executes skill operations against the configured dataset source.
type Manager struct {
	source Source
	logger logger.Logger
}

func NewManager(source Source, log logger.Logger) *Manager {
	return &Manager{
		source: source,
		logger: log.WithFields(map[string]interface{}{"component": "skills"}),
	}
}

// Skills lists the registered skill names.
func (m *Manager) Skills() []string {
	return []string{SkillWorkdayHR, SkillSalesforce, SkillServiceNow, SkillSAP}
}

// Execute runs one operation of one skill and returns a fresh dataset
// snapshot. An unknown skill is a hard error; an unknown operation of a
// known skill degrades to an empty dataset. Fetch failures are recorded on
// the dataset instead of propagating, so workflows always proceed with
// whatever data is available.
func (m *Manager) Execute(ctx context.Context, skill, operation string, params map[string]interface{}) (models.Dataset, error) {
	ops, ok := skillOperations[skill]
	if !ok {
		metrics.SkillOperations.WithLabelValues(skill, "unknown_skill").Inc()
		return models.Dataset{}, commonerrors.NewSkillNotFoundError(skill)
	}

	ref, ok := ops[operation]
	if !ok {
		opErr := commonerrors.NewOperationUnsupportedError(skill, operation)
		m.logger.WithError(opErr).Warn("unknown operation for skill", map[string]interface{}{
			"skill":     skill,
			"operation": operation,
		})
		metrics.SkillOperations.WithLabelValues(skill, "unknown_operation").Inc()
		return models.EmptyDataset(), nil
	}

	ds, err := m.source.Fetch(ctx, ref.Sector, ref.Name)
	if err != nil {
		fetchErr := commonerrors.NewDatasetUnavailableError(ref.Name, err)
		m.logger.WithError(fetchErr).Warn("dataset fetch failed", map[string]interface{}{
			"skill":     skill,
			"operation": operation,
			"dataset":   ref.Name,
		})
		metrics.SkillOperations.WithLabelValues(skill, "fetch_failed").Inc()
		return models.Dataset{
			Data:  []models.Record{},
			Count: 0,
			Err:   fetchErr.Details,
		}, nil
	}

	metrics.SkillOperations.WithLabelValues(skill, "success").Inc()
	return ds, nil
}
