package handlers

import (
	"fmt"

	"orchestrateiq/internal/models"
)

// HRHandler analyzes workforce data.
type HRHandler struct{}

func (h *HRHandler) Metrics() map[string]interface{} {
	return map[string]interface{}{
		"total_employees":    1250,
		"attrition_rate":     8.5,
		"satisfaction_score": 7.8,
		"open_positions":     45,
	}
}

func (h *HRHandler) Trends() []map[string]interface{} {
	return []map[string]interface{}{
		{"period": "Q1", "attrition": 6.2, "satisfaction": 7.5},
		{"period": "Q2", "attrition": 7.1, "satisfaction": 7.7},
		{"period": "Q3", "attrition": 8.5, "satisfaction": 7.8},
	}
}

func (h *HRHandler) Alerts() []map[string]interface{} {
	return []map[string]interface{}{
		{"type": "high_attrition", "department": "Sales", "severity": "high"},
		{"type": "low_satisfaction", "department": "Support", "severity": "medium"},
	}
}

// AttritionAnalysis is the outcome of AnalyzeAttrition.
type AttritionAnalysis struct {
	AttritionRate       float64  `json:"attrition_rate"`
	HighRiskDepartments []string `json:"high_risk_departments"`
	TotalEmployees      int      `json:"total_employees"`
	DepartmentsAnalyzed int      `json:"departments_analyzed"`
}

// AnalyzeAttrition computes the attrition rate and flags departments above
// 10% attrition (top 5, in first-seen order).
func (h *HRHandler) AnalyzeAttrition(data models.Dataset) AttritionAnalysis {
	records := data.Data
	if len(records) == 0 {
		return AttritionAnalysis{AttritionRate: 0, HighRiskDepartments: []string{}}
	}

	total := len(records)
	left := 0
	for _, r := range records {
		if r.GetString("status") == "Left" {
			left++
		}
	}
	attritionRate := float64(left) / float64(total) * 100

	type deptCount struct {
		total int
		left  int
	}
	deptCounts := map[string]*deptCount{}
	var deptOrder []string
	for _, r := range records {
		dept := r.GetString("department")
		if dept == "" {
			dept = "Unknown"
		}
		dc, ok := deptCounts[dept]
		if !ok {
			dc = &deptCount{}
			deptCounts[dept] = dc
			deptOrder = append(deptOrder, dept)
		}
		dc.total++
		if r.GetString("status") == "Left" {
			dc.left++
		}
	}

	highRisk := []string{}
	for _, dept := range deptOrder {
		dc := deptCounts[dept]
		if dc.total > 0 && float64(dc.left)/float64(dc.total)*100 > 10 {
			highRisk = append(highRisk, dept)
		}
	}
	if len(highRisk) > 5 {
		highRisk = highRisk[:5]
	}

	return AttritionAnalysis{
		AttritionRate:       attritionRate,
		HighRiskDepartments: highRisk,
		TotalEmployees:      total,
		DepartmentsAnalyzed: len(deptOrder),
	}
}

// CorrelationAnalysis is the outcome of CorrelateWithSales.
type CorrelationAnalysis struct {
	Correlation         string  `json:"correlation"`
	AvgSatisfaction     float64 `json:"avg_satisfaction"`
	AvgSalesPerformance float64 `json:"avg_sales_performance"`
	Description         string  `json:"description"`
}

// CorrelateWithSales relates satisfaction scores to sales performance.
// Missing columns fall back to the company-wide defaults.
func (h *HRHandler) CorrelateWithSales(hrData, salesData models.Dataset) CorrelationAnalysis {
	avgSatisfaction := 7.8
	if len(hrData.Data) > 0 && hrData.Data[0].Has("satisfaction_score") {
		sum := 0.0
		for _, r := range hrData.Data {
			sum += r.GetFloat("satisfaction_score")
		}
		avgSatisfaction = sum / float64(len(hrData.Data))
	}

	avgPerformance := 85.0
	if len(salesData.Data) > 0 && salesData.Data[0].Has("performance") {
		sum := 0.0
		for _, r := range salesData.Data {
			sum += r.GetFloat("performance")
		}
		avgPerformance = sum / float64(len(salesData.Data))
	}

	correlation := "neutral"
	if avgSatisfaction > 7.5 && avgPerformance > 80 {
		correlation = "positive"
	}

	return CorrelationAnalysis{
		Correlation:         correlation,
		AvgSatisfaction:     avgSatisfaction,
		AvgSalesPerformance: avgPerformance,
		Description: fmt.Sprintf(
			"Employee satisfaction (%.1f/10) shows %s correlation with sales performance (%.1f%%)",
			avgSatisfaction, correlation, avgPerformance,
		),
	}
}
