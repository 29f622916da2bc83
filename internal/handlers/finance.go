package handlers

import (
	"fmt"
	"strings"

	"orchestrateiq/internal/models"
)

// FinanceHandler analyzes invoices, cash flow and budgets.
type FinanceHandler struct{}

func (h *FinanceHandler) Metrics() map[string]interface{} {
	return map[string]interface{}{
		"total_revenue":      4500000,
		"pending_invoices":   67,
		"cash_flow":          1250000,
		"budget_utilization": 78.5,
	}
}

func (h *FinanceHandler) Trends() []map[string]interface{} {
	return []map[string]interface{}{
		{"period": "Q1", "revenue": 4000000, "expenses": 3200000},
		{"period": "Q2", "revenue": 4250000, "expenses": 3400000},
		{"period": "Q3", "revenue": 4500000, "expenses": 3500000},
	}
}

func (h *FinanceHandler) Alerts() []map[string]interface{} {
	return []map[string]interface{}{
		{"type": "overdue_invoice", "count": 12, "total_amount": 125000, "severity": "high"},
		{"type": "budget_alert", "department": "IT", "utilization": 95, "severity": "medium"},
	}
}

// InvoiceApproval is the outcome of AutoApproveInvoices.
type InvoiceApproval struct {
	ApprovedCount    int             `json:"approved_count"`
	ApprovedInvoices []models.Record `json:"approved_invoices"`
	Threshold        float64         `json:"threshold"`
	TotalAmount      float64         `json:"total_amount"`
}

// AutoApproveInvoices approves pending invoices at or below the threshold.
// The invoice list is capped at 20; count and total cover all approvals.
func (h *FinanceHandler) AutoApproveInvoices(data models.Dataset, threshold float64) InvoiceApproval {
	records := data.Data
	if len(records) == 0 {
		return InvoiceApproval{ApprovedCount: 0, ApprovedInvoices: []models.Record{}, Threshold: threshold}
	}

	var approved []models.Record
	for _, invoice := range records {
		amount := invoice.GetFloat("amount")
		status := strings.ToLower(invoice.GetString("status"))
		if amount <= threshold && status == "pending" {
			approved = append(approved, invoice)
		}
	}

	totalAmount := 0.0
	for _, invoice := range approved {
		totalAmount += invoice.GetFloat("amount")
	}

	capped := approved
	if len(capped) > 20 {
		capped = capped[:20]
	}
	if capped == nil {
		capped = []models.Record{}
	}

	return InvoiceApproval{
		ApprovedCount:    len(approved),
		ApprovedInvoices: capped,
		Threshold:        threshold,
		TotalAmount:      totalAmount,
	}
}

// HiringBudgetAnalysis is the outcome of AnalyzeHiringBudget.
type HiringBudgetAnalysis struct {
	AvailableCash       float64 `json:"available_cash"`
	OpenPositions       int     `json:"open_positions"`
	EstimatedHiringCost float64 `json:"estimated_hiring_cost"`
	CanAfford           bool    `json:"can_afford"`
	Recommendation      string  `json:"recommendation"`
}

// AnalyzeHiringBudget weighs available cash flow against the cost of open
// positions at costPerPosition each, with a 20% buffer for a strong rating.
func (h *FinanceHandler) AnalyzeHiringBudget(financeData, hrData models.Dataset, costPerPosition float64) HiringBudgetAnalysis {
	availableCash := 1250000.0
	if len(financeData.Data) > 0 {
		sum := 0.0
		for _, r := range financeData.Data {
			cash := r.GetFloat("cash_flow")
			if cash == 0 {
				cash = r.GetFloat("amount")
			}
			sum += cash
		}
		availableCash = sum
	}

	openPositions := 45
	if len(hrData.Data) > 0 {
		openPositions = 0
		for _, r := range hrData.Data {
			if r.GetString("status") == "open" {
				openPositions++
			}
		}
	}

	totalCost := float64(openPositions) * costPerPosition

	var recommendation string
	var canAfford bool
	switch {
	case availableCash >= totalCost*1.2:
		recommendation = fmt.Sprintf(
			"Strong cash flow ($%s) supports hiring %d positions. Recommended budget: $%s",
			money(availableCash), openPositions, money(totalCost),
		)
		canAfford = true
	case availableCash >= totalCost:
		recommendation = fmt.Sprintf(
			"Cash flow ($%s) can support hiring but with limited buffer. Consider reducing to %d positions.",
			money(availableCash), int(float64(openPositions)*0.8),
		)
		canAfford = true
	default:
		recommendation = fmt.Sprintf(
			"Limited cash flow ($%s) may not support all %d positions. Recommended: %d positions.",
			money(availableCash), openPositions, int(availableCash/costPerPosition),
		)
		canAfford = false
	}

	return HiringBudgetAnalysis{
		AvailableCash:       availableCash,
		OpenPositions:       openPositions,
		EstimatedHiringCost: totalCost,
		CanAfford:           canAfford,
		Recommendation:      recommendation,
	}
}
