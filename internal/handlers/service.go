package handlers

import (
	"sort"
	"strings"

	"orchestrateiq/internal/models"
)

// ServiceHandler analyzes customer service data.
type ServiceHandler struct{}

func (h *ServiceHandler) Metrics() map[string]interface{} {
	return map[string]interface{}{
		"open_tickets":      234,
		"avg_response_time": 2.5,
		"resolution_rate":   87.5,
		"escalation_rate":   12.3,
	}
}

func (h *ServiceHandler) Trends() []map[string]interface{} {
	return []map[string]interface{}{
		{"period": "Q1", "tickets": 210, "response_time": 3.2},
		{"period": "Q2", "tickets": 225, "response_time": 2.8},
		{"period": "Q3", "tickets": 234, "response_time": 2.5},
	}
}

func (h *ServiceHandler) Alerts() []map[string]interface{} {
	return []map[string]interface{}{
		{"type": "high_escalation", "count": 15, "severity": "high"},
		{"type": "slow_response", "avg_time": 4.5, "severity": "medium"},
	}
}

// RiskTicket is a ticket flagged as likely to escalate.
type RiskTicket struct {
	ID        string `json:"id"`
	RiskScore int    `json:"risk_score"`
	Reason    string `json:"reason"`
}

// EscalationPrediction is the outcome of PredictEscalations.
type EscalationPrediction struct {
	HighRiskTickets      []RiskTicket `json:"high_risk_tickets"`
	TotalHighRisk        int          `json:"total_high_risk"`
	PredictionConfidence float64      `json:"prediction_confidence"`
}

// PredictEscalations scores each ticket on age, priority and status. A
// ticket is high risk at score >= 5; the result lists the top 10.
func (h *ServiceHandler) PredictEscalations(data models.Dataset) EscalationPrediction {
	records := data.Data
	if len(records) == 0 {
		return EscalationPrediction{HighRiskTickets: []RiskTicket{}, PredictionConfidence: 0.85}
	}

	var highRisk []RiskTicket
	for _, ticket := range records {
		score := 0

		ageDays := ticket.GetFloat("age_days")
		if ageDays > 5 {
			score += 3
		} else if ageDays > 3 {
			score += 2
		}

		priority := strings.ToLower(ticket.GetString("priority"))
		if strings.Contains(priority, "high") || strings.Contains(priority, "critical") {
			score += 3
		} else if strings.Contains(priority, "medium") {
			score += 1
		}

		status := strings.ToLower(ticket.GetString("status"))
		if strings.Contains(status, "open") || strings.Contains(status, "pending") {
			score += 2
		}

		if score >= 5 {
			id := ticket.GetString("id")
			if id == "" {
				id = "unknown"
			}
			highRisk = append(highRisk, RiskTicket{
				ID:        id,
				RiskScore: score,
				Reason:    "High age, priority, or unresolved status",
			})
		}
	}

	capped := highRisk
	if len(capped) > 10 {
		capped = capped[:10]
	}
	if capped == nil {
		capped = []RiskTicket{}
	}

	return EscalationPrediction{
		HighRiskTickets:      capped,
		TotalHighRisk:        len(highRisk),
		PredictionConfidence: 0.87,
	}
}

// ComplaintGroup aggregates complaints of one type.
type ComplaintGroup struct {
	Type        string  `json:"type"`
	Count       int     `json:"count"`
	TotalImpact float64 `json:"total_impact"`
	AvgImpact   float64 `json:"avg_impact"`
}

// ComplaintImpactAnalysis is the outcome of AnalyzeFinancialImpact.
type ComplaintImpactAnalysis struct {
	TopComplaints         []ComplaintGroup `json:"top_complaints"`
	TotalImpact           float64          `json:"total_impact"`
	AvgImpactPerComplaint float64          `json:"avg_impact_per_complaint"`
}

// AnalyzeFinancialImpact groups complaints by type and ranks the top 5 by
// total financial impact.
func (h *ServiceHandler) AnalyzeFinancialImpact(serviceData, financeData models.Dataset) ComplaintImpactAnalysis {
	records := serviceData.Data

	groups := map[string]*ComplaintGroup{}
	var order []string
	for _, r := range records {
		ctype := r.GetString("type")
		if ctype == "" {
			ctype = r.GetString("category")
		}
		if ctype == "" {
			ctype = "unknown"
		}

		g, ok := groups[ctype]
		if !ok {
			g = &ComplaintGroup{Type: ctype}
			groups[ctype] = g
			order = append(order, ctype)
		}
		g.Count++

		impact := r.GetFloat("financial_impact")
		if impact == 0 {
			impact = r.GetFloat("cost")
		}
		g.TotalImpact += impact
	}

	top := make([]ComplaintGroup, 0, len(order))
	for _, ctype := range order {
		g := groups[ctype]
		if g.Count > 0 {
			g.AvgImpact = g.TotalImpact / float64(g.Count)
		}
		top = append(top, *g)
	}
	sort.SliceStable(top, func(i, j int) bool {
		return top[i].TotalImpact > top[j].TotalImpact
	})
	if len(top) > 5 {
		top = top[:5]
	}

	totalImpact := 0.0
	for _, g := range top {
		totalImpact += g.TotalImpact
	}
	avgImpact := 0.0
	if len(top) > 0 {
		avgImpact = totalImpact / float64(len(top))
	}

	return ComplaintImpactAnalysis{
		TopComplaints:         top,
		TotalImpact:           totalImpact,
		AvgImpactPerComplaint: avgImpact,
	}
}
