package handlers

import (
	"strings"

	"orchestrateiq/internal/models"
)

// SalesHandler analyzes pipeline and deal data.
type SalesHandler struct{}

func (h *SalesHandler) Metrics() map[string]interface{} {
	return map[string]interface{}{
		"total_pipeline_value": 2500000,
		"deals_closed":         45,
		"conversion_rate":      23.5,
		"avg_deal_size":        55000,
	}
}

func (h *SalesHandler) Trends() []map[string]interface{} {
	return []map[string]interface{}{
		{"period": "Q1", "revenue": 1200000, "deals": 38},
		{"period": "Q2", "revenue": 1350000, "deals": 42},
		{"period": "Q3", "revenue": 1500000, "deals": 45},
	}
}

func (h *SalesHandler) Alerts() []map[string]interface{} {
	return []map[string]interface{}{
		{"type": "stale_deal", "deal_id": "DEAL-123", "days_stale": 45, "severity": "high"},
		{"type": "low_conversion", "period": "Q3", "severity": "medium"},
	}
}

// PipelineAnalysis is the outcome of AnalyzePipeline.
type PipelineAnalysis struct {
	HealthScore        float64         `json:"health_score"`
	TotalPipelineValue float64         `json:"total_pipeline_value"`
	AvgDealSize        float64         `json:"avg_deal_size"`
	UrgentDeals        []models.Record `json:"urgent_deals"`
	TotalDeals         int             `json:"total_deals"`
}

// AnalyzePipeline scores pipeline health from the average deal size and
// flags deals that are high value or stale (top 5). The health score is
// 75 + avgDealSize/1000 clamped to [0, 100].
func (h *SalesHandler) AnalyzePipeline(data models.Dataset) PipelineAnalysis {
	records := data.Data
	if len(records) == 0 {
		return PipelineAnalysis{HealthScore: 75, UrgentDeals: []models.Record{}}
	}

	totalValue := 0.0
	for _, r := range records {
		totalValue += r.GetFloat("value")
	}
	if totalValue == 0 {
		totalValue = 2500000
	}
	avgDealSize := totalValue / float64(len(records))

	urgent := []models.Record{}
	for _, r := range records {
		if r.GetFloat("value") > 50000 || r.GetString("status") == "stale" {
			urgent = append(urgent, r)
			if len(urgent) == 5 {
				break
			}
		}
	}

	healthScore := 75 + avgDealSize/1000
	if healthScore > 100 {
		healthScore = 100
	}
	if healthScore < 0 {
		healthScore = 0
	}

	return PipelineAnalysis{
		HealthScore:        healthScore,
		TotalPipelineValue: totalValue,
		AvgDealSize:        avgDealSize,
		UrgentDeals:        urgent,
		TotalDeals:         len(records),
	}
}

// BlockingTicketsAnalysis is the outcome of IdentifyBlockingTickets.
type BlockingTicketsAnalysis struct {
	BlockingTickets []models.Record `json:"blocking_tickets"`
	TotalBlocking   int             `json:"total_blocking"`
	DealsAffected   int             `json:"deals_affected"`
}

// IdentifyBlockingTickets matches unresolved service tickets against the
// top 10 deals by customer, at most 2 tickets per deal, 10 overall.
func (h *SalesHandler) IdentifyBlockingTickets(salesData, serviceData models.Dataset) BlockingTicketsAnalysis {
	deals := salesData.Data
	tickets := serviceData.Data

	var blocking []models.Record
	if len(deals) > 0 && len(tickets) > 0 {
		topDeals := deals
		if len(topDeals) > 10 {
			topDeals = topDeals[:10]
		}

		for _, deal := range topDeals {
			customerID := deal.GetString("customer_id")
			if customerID == "" {
				customerID = deal.GetString("customer_name")
			}

			matched := 0
			for _, t := range tickets {
				if t.GetString("status") == "resolved" {
					continue
				}
				if t.GetString("customer_id") == customerID ||
					strings.EqualFold(t.GetString("customer_name"), customerID) {
					blocking = append(blocking, t)
					matched++
					if matched == 2 {
						break
					}
				}
			}
		}
	}

	affected := map[string]bool{}
	for _, t := range blocking {
		affected[t.GetString("customer_id")] = true
	}

	capped := blocking
	if len(capped) > 10 {
		capped = capped[:10]
	}
	if capped == nil {
		capped = []models.Record{}
	}

	return BlockingTicketsAnalysis{
		BlockingTickets: capped,
		TotalBlocking:   len(blocking),
		DealsAffected:   len(affected),
	}
}
