package handlers

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"orchestrateiq/internal/models"
)

func TestPredictEscalations(t *testing.T) {
	h := &ServiceHandler{}

	tests := []struct {
		name     string
		ticket   models.Record
		expected int // expected risk score, -1 when below the high-risk bar
	}{
		{
			name:     "old critical open ticket scores maximum",
			ticket:   models.Record{"id": "T001", "age_days": "7", "priority": "critical", "status": "open"},
			expected: 8,
		},
		{
			name:     "medium aged pending ticket reaches the bar",
			ticket:   models.Record{"id": "T002", "age_days": "4", "priority": "high", "status": "resolved"},
			expected: 5,
		},
		{
			name:     "fresh low priority ticket stays below",
			ticket:   models.Record{"id": "T003", "age_days": "1", "priority": "low", "status": "open"},
			expected: -1,
		},
		{
			name:     "unparseable age treated as zero",
			ticket:   models.Record{"id": "T004", "age_days": "n/a", "priority": "medium", "status": "open"},
			expected: -1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := h.PredictEscalations(dataset(tt.ticket))
			if tt.expected < 0 {
				assert.Empty(t, out.HighRiskTickets)
			} else {
				assert.Len(t, out.HighRiskTickets, 1)
				assert.Equal(t, tt.expected, out.HighRiskTickets[0].RiskScore)
				assert.Equal(t, "High age, priority, or unresolved status", out.HighRiskTickets[0].Reason)
			}
			assert.Equal(t, 0.87, out.PredictionConfidence)
		})
	}
}

func TestPredictEscalationsEmpty(t *testing.T) {
	h := &ServiceHandler{}

	out := h.PredictEscalations(dataset())
	assert.Empty(t, out.HighRiskTickets)
	assert.Equal(t, 0.85, out.PredictionConfidence)
}

func TestPredictEscalationsCap(t *testing.T) {
	h := &ServiceHandler{}

	var records []models.Record
	for i := 0; i < 15; i++ {
		records = append(records, models.Record{
			"id": fmt.Sprintf("T%03d", i), "age_days": "10", "priority": "critical", "status": "open",
		})
	}

	out := h.PredictEscalations(dataset(records...))
	assert.Len(t, out.HighRiskTickets, 10)
	assert.Equal(t, 15, out.TotalHighRisk)
}

func TestAnalyzeFinancialImpact(t *testing.T) {
	h := &ServiceHandler{}

	out := h.AnalyzeFinancialImpact(dataset(
		models.Record{"type": "billing", "financial_impact": "10000"},
		models.Record{"type": "billing", "financial_impact": "5000"},
		models.Record{"type": "outage", "cost": "40000"},
		models.Record{"category": "delivery", "financial_impact": "2000"},
	), dataset())

	assert.Len(t, out.TopComplaints, 3)
	assert.Equal(t, "outage", out.TopComplaints[0].Type)
	assert.Equal(t, 40000.0, out.TopComplaints[0].TotalImpact)
	assert.Equal(t, "billing", out.TopComplaints[1].Type)
	assert.Equal(t, 15000.0, out.TopComplaints[1].TotalImpact)
	assert.Equal(t, 7500.0, out.TopComplaints[1].AvgImpact)
	assert.Equal(t, 57000.0, out.TotalImpact)
}

func TestAnalyzeFinancialImpactTopFive(t *testing.T) {
	h := &ServiceHandler{}

	var records []models.Record
	for i := 0; i < 8; i++ {
		records = append(records, models.Record{
			"type":             fmt.Sprintf("type%d", i),
			"financial_impact": fmt.Sprintf("%d", (i+1)*1000),
		})
	}

	out := h.AnalyzeFinancialImpact(dataset(records...), dataset())
	assert.Len(t, out.TopComplaints, 5)
	assert.Equal(t, "type7", out.TopComplaints[0].Type)
}
