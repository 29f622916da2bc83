// internal/models/models.go
package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Sector identifies a business domain.
type Sector string

const (
	SectorHR      Sector = "hr"
	SectorSales   Sector = "sales"
	SectorService Sector = "service"
	SectorFinance Sector = "finance"
	SectorCross   Sector = "cross_sector"
)

// KnownSectors lists the sectors that can be targeted directly.
func KnownSectors() []Sector {
	return []Sector{SectorHR, SectorSales, SectorService, SectorFinance}
}

// ParseSector maps a raw string to a Sector, false when unknown.
func ParseSector(raw string) (Sector, bool) {
	switch Sector(raw) {
	case SectorHR, SectorSales, SectorService, SectorFinance, SectorCross:
		return Sector(raw), true
	}
	return "", false
}

// Record is one row of a dataset. Values from CSV sources are strings,
// values from Postgres and Elasticsearch keep their native types.
type Record map[string]interface{}

// GetString returns the value under key rendered as a string, "" when absent.
func (r Record) GetString(key string) string {
	v, ok := r[key]
	if !ok || v == nil {
		return ""
	}
	switch s := v.(type) {
	case string:
		return s
	default:
		return fmt.Sprintf("%v", s)
	}
}

// GetFloat returns the value under key as a float64, 0 when absent or
// unparseable. Dataset rows mix strings and numbers depending on the source.
func (r Record) GetFloat(key string) float64 {
	v, ok := r[key]
	if !ok || v == nil {
		return 0
	}
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0
		}
		return f
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0
		}
		return f
	}
	return 0
}

// Has reports whether the record carries the given column at all.
func (r Record) Has(key string) bool {
	_, ok := r[key]
	return ok
}

// Dataset is an immutable snapshot of records fetched by one skill operation.
type Dataset struct {
	Data    []Record `json:"data"`
	Count   int      `json:"count"`
	Columns []string `json:"columns,omitempty"`
	Err     string   `json:"error,omitempty"`
}

// EmptyDataset returns a dataset with no rows and no error.
func EmptyDataset() Dataset {
	return Dataset{Data: []Record{}, Count: 0}
}

// Insight is a single analytical finding.
type Insight struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Sector      Sector      `json:"sector"`
	Confidence  float64     `json:"confidence"`
	Data        interface{} `json:"data"`
	Timestamp   time.Time   `json:"timestamp"`
}

// NewInsight builds an insight with a fresh ID and timestamp.
func NewInsight(title, description string, sector Sector, confidence float64, data interface{}) Insight {
	return Insight{
		ID:          uuid.NewString(),
		Title:       title,
		Description: description,
		Sector:      sector,
		Confidence:  confidence,
		Data:        data,
		Timestamp:   time.Now().UTC(),
	}
}

// Action is a follow-up step triggered by a workflow. Actions are recorded
// as completed at creation; delivery is best effort and never blocks the
// response.
type Action struct {
	ID         string                 `json:"id"`
	ActionType string                 `json:"action_type"`
	Target     string                 `json:"target"`
	Parameters map[string]interface{} `json:"parameters"`
	Status     string                 `json:"status"`
	Timestamp  time.Time              `json:"timestamp"`
}

// NewAction builds a completed action with a fresh ID and timestamp.
func NewAction(actionType, target string, parameters map[string]interface{}) Action {
	if parameters == nil {
		parameters = map[string]interface{}{}
	}
	return Action{
		ID:         uuid.NewString(),
		ActionType: actionType,
		Target:     target,
		Parameters: parameters,
		Status:     "completed",
		Timestamp:  time.Now().UTC(),
	}
}

// IntentResult is the outcome of intent recognition.
type IntentResult struct {
	Intent     string   `json:"intent"`
	Sectors    []Sector `json:"sectors"`
	Confidence float64  `json:"confidence"`
}

// WorkflowResult bundles what one workflow execution produced.
type WorkflowResult struct {
	Insights []Insight              `json:"insights"`
	Actions  []Action               `json:"actions"`
	Data     map[string]interface{} `json:"data"`
}

// QueryRequest is the inbound query envelope.
type QueryRequest struct {
	Query   string                 `json:"query"`
	Sector  string                 `json:"sector,omitempty"`
	Context map[string]interface{} `json:"context,omitempty"`
}

// QueryResponse is the full outcome of processing one query.
type QueryResponse struct {
	Query         string                 `json:"query"`
	Intent        string                 `json:"intent"`
	Sectors       []Sector               `json:"sectors"`
	Insights      []Insight              `json:"insights"`
	Actions       []Action               `json:"actions"`
	Data          map[string]interface{} `json:"data"`
	ResponseText  string                 `json:"response_text"`
	ExecutionTime float64                `json:"execution_time"`
	Timestamp     time.Time              `json:"timestamp"`
}

// DashboardData is a per-sector dashboard snapshot.
type DashboardData struct {
	Sector      Sector                   `json:"sector"`
	Metrics     map[string]interface{}   `json:"metrics"`
	Trends      []map[string]interface{} `json:"trends"`
	Alerts      []map[string]interface{} `json:"alerts"`
	LastUpdated time.Time                `json:"last_updated"`
}

// HealthResponse reports service liveness.
type HealthResponse struct {
	Status    string `json:"status"`
	Agent     string `json:"agent"`
	Timestamp string `json:"timestamp"`
}
