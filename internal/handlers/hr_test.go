package handlers

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"orchestrateiq/internal/models"
)

func dataset(records ...models.Record) models.Dataset {
	return models.Dataset{Data: records, Count: len(records)}
}

func TestAnalyzeAttrition(t *testing.T) {
	h := &HRHandler{}

	tests := []struct {
		name     string
		data     models.Dataset
		validate func(t *testing.T, out AttritionAnalysis)
	}{
		{
			name: "exact rate from 100 records with 8 leavers",
			data: func() models.Dataset {
				var records []models.Record
				for i := 0; i < 100; i++ {
					status := "Active"
					if i < 8 {
						status = "Left"
					}
					records = append(records, models.Record{
						"employee_id": fmt.Sprintf("E%03d", i),
						"department":  "Engineering",
						"status":      status,
					})
				}
				return dataset(records...)
			}(),
			validate: func(t *testing.T, out AttritionAnalysis) {
				assert.Equal(t, 8.0, out.AttritionRate)
				assert.Equal(t, 100, out.TotalEmployees)
			},
		},
		{
			name: "empty dataset yields zero rate",
			data: dataset(),
			validate: func(t *testing.T, out AttritionAnalysis) {
				assert.Equal(t, 0.0, out.AttritionRate)
				assert.Empty(t, out.HighRiskDepartments)
			},
		},
		{
			name: "departments above ten percent flagged",
			data: dataset(
				models.Record{"department": "Sales", "status": "Left"},
				models.Record{"department": "Sales", "status": "Active"},
				models.Record{"department": "Support", "status": "Active"},
				models.Record{"department": "Support", "status": "Active"},
			),
			validate: func(t *testing.T, out AttritionAnalysis) {
				assert.Equal(t, []string{"Sales"}, out.HighRiskDepartments)
				assert.Equal(t, 2, out.DepartmentsAnalyzed)
			},
		},
		{
			name: "high risk list capped at five",
			data: func() models.Dataset {
				var records []models.Record
				for i := 0; i < 7; i++ {
					records = append(records, models.Record{
						"department": fmt.Sprintf("Dept%d", i),
						"status":     "Left",
					})
				}
				return dataset(records...)
			}(),
			validate: func(t *testing.T, out AttritionAnalysis) {
				assert.Len(t, out.HighRiskDepartments, 5)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.validate(t, h.AnalyzeAttrition(tt.data))
		})
	}
}

func TestAnalyzeAttritionIdempotent(t *testing.T) {
	h := &HRHandler{}
	data := dataset(
		models.Record{"department": "Sales", "status": "Left"},
		models.Record{"department": "Sales", "status": "Active"},
	)

	first := h.AnalyzeAttrition(data)
	second := h.AnalyzeAttrition(data)
	assert.Equal(t, first, second)
}

func TestCorrelateWithSales(t *testing.T) {
	h := &HRHandler{}

	t.Run("positive when both above thresholds", func(t *testing.T) {
		out := h.CorrelateWithSales(
			dataset(
				models.Record{"satisfaction_score": "8.0"},
				models.Record{"satisfaction_score": "8.0"},
			),
			dataset(
				models.Record{"performance": "90"},
			),
		)
		assert.Equal(t, "positive", out.Correlation)
		assert.Equal(t, 8.0, out.AvgSatisfaction)
		assert.Equal(t, 90.0, out.AvgSalesPerformance)
		assert.Contains(t, out.Description, "positive correlation")
	})

	t.Run("neutral at threshold boundary", func(t *testing.T) {
		out := h.CorrelateWithSales(
			dataset(models.Record{"satisfaction_score": "7.5"}),
			dataset(models.Record{"performance": "90"}),
		)
		assert.Equal(t, "neutral", out.Correlation)
	})

	t.Run("defaults when columns missing", func(t *testing.T) {
		out := h.CorrelateWithSales(dataset(), dataset())
		assert.Equal(t, 7.8, out.AvgSatisfaction)
		assert.Equal(t, 85.0, out.AvgSalesPerformance)
		assert.Equal(t, "positive", out.Correlation)
	})
}
