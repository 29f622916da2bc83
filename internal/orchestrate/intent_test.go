package orchestrate

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"orchestrateiq/internal/common/logger"
	"orchestrateiq/internal/models"
	"orchestrateiq/internal/watsonx"
)

// fakeAI scripts the model side of recognition and insight generation.
type fakeAI struct {
	available   bool
	intent      *watsonx.IntentPayload
	intentErr   error
	insight     string
	insightErr  error
	correlation *watsonx.CorrelationPayload
	corrErr     error

	recognizeCalls int
}

func (f *fakeAI) Available() bool { return f.available }

func (f *fakeAI) RecognizeIntent(ctx context.Context, query string, known []string) (*watsonx.IntentPayload, error) {
	f.recognizeCalls++
	return f.intent, f.intentErr
}

func (f *fakeAI) GenerateInsight(ctx context.Context, query string, analysis interface{}, extra map[string]interface{}) (string, error) {
	return f.insight, f.insightErr
}

func (f *fakeAI) AnalyzeCorrelation(ctx context.Context, first, second interface{}) (*watsonx.CorrelationPayload, error) {
	return f.correlation, f.corrErr
}

func TestRecognizeByKeywords(t *testing.T) {
	r := NewRecognizer(nil, logger.NewNoOpLogger())

	tests := []struct {
		name    string
		query   string
		intent  string
		sectors []models.Sector
	}{
		{
			name:    "attrition trends",
			query:   "Show me attrition trends for this quarter",
			intent:  IntentAnalyzeAttrition,
			sectors: []models.Sector{models.SectorHR},
		},
		{
			name:    "satisfaction against sales",
			query:   "How does employee satisfaction relate to sales performance?",
			intent:  IntentCorrelateSatisfSales,
			sectors: []models.Sector{models.SectorHR, models.SectorSales},
		},
		{
			name:    "pipeline health",
			query:   "What is the state of our sales pipeline?",
			intent:  IntentAnalyzePipeline,
			sectors: []models.Sector{models.SectorSales},
		},
		{
			name:    "blocking tickets",
			query:   "Which support tickets are blocking our top deals?",
			intent:  IntentBlockingTickets,
			sectors: []models.Sector{models.SectorSales, models.SectorService},
		},
		{
			name:    "escalation prediction",
			query:   "Predict which tickets will escalate",
			intent:  IntentPredictEscalations,
			sectors: []models.Sector{models.SectorService},
		},
		{
			name:    "complaint impact",
			query:   "What is the financial impact of our top complaints?",
			intent:  IntentComplaintImpact,
			// "financial" does not contain "finance", so only the service
			// group matches here.
			sectors: []models.Sector{models.SectorService},
		},
		{
			name:    "invoice approval",
			query:   "Approve all small invoices",
			intent:  IntentAutoApproveInvoices,
			sectors: []models.Sector{models.SectorFinance},
		},
		{
			name:    "budget versus hiring",
			query:   "Can our budget cover the hiring plan?",
			intent:  IntentBudgetHiring,
			sectors: []models.Sector{models.SectorHR, models.SectorFinance},
		},
		{
			name:    "nothing recognizable",
			query:   "What is the weather like today?",
			intent:  IntentGeneralQuery,
			sectors: []models.Sector{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := r.Recognize(context.Background(), tt.query, "")
			assert.Equal(t, tt.intent, out.Intent)
			assert.ElementsMatch(t, tt.sectors, out.Sectors)
			assert.Equal(t, keywordConfidence, out.Confidence)
		})
	}
}

func TestRecognizeExplicitSectorFallback(t *testing.T) {
	r := NewRecognizer(nil, logger.NewNoOpLogger())

	out := r.Recognize(context.Background(), "Give me a summary", "finance")
	assert.Equal(t, IntentGeneralQuery, out.Intent)
	assert.Equal(t, []models.Sector{models.SectorFinance}, out.Sectors)

	// An explicit sector never overrides matched keywords.
	out = r.Recognize(context.Background(), "Show attrition trends", "finance")
	assert.Equal(t, []models.Sector{models.SectorHR}, out.Sectors)

	// Unknown sector hints are ignored.
	out = r.Recognize(context.Background(), "Give me a summary", "logistics")
	assert.Empty(t, out.Sectors)
}

func TestRecognizeWithModel(t *testing.T) {
	ai := &fakeAI{
		available: true,
		intent:    &watsonx.IntentPayload{Intent: IntentAnalyzeAttrition, Sectors: []string{"hr", "made_up"}},
	}
	r := NewRecognizer(ai, logger.NewNoOpLogger())

	out := r.Recognize(context.Background(), "anything", "")
	assert.Equal(t, IntentAnalyzeAttrition, out.Intent)
	assert.Equal(t, []models.Sector{models.SectorHR}, out.Sectors)
	assert.Equal(t, aiConfidence, out.Confidence)
	assert.Equal(t, 1, ai.recognizeCalls)
}

func TestRecognizeFallsBackOnModelError(t *testing.T) {
	ai := &fakeAI{
		available: true,
		intentErr: errors.New("MODEL_CALL_FAILED"),
	}
	r := NewRecognizer(ai, logger.NewNoOpLogger())

	out := r.Recognize(context.Background(), "show attrition trends", "")
	assert.Equal(t, IntentAnalyzeAttrition, out.Intent)
	assert.Equal(t, keywordConfidence, out.Confidence)
}

func TestRecognizeSkipsUnavailableModel(t *testing.T) {
	ai := &fakeAI{available: false}
	r := NewRecognizer(ai, logger.NewNoOpLogger())

	out := r.Recognize(context.Background(), "show attrition trends", "")
	assert.Equal(t, IntentAnalyzeAttrition, out.Intent)
	assert.Equal(t, 0, ai.recognizeCalls)
}
