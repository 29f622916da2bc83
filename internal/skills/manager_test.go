package skills

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	commonerrors "orchestrateiq/internal/common/errors"
	"orchestrateiq/internal/common/logger"
)

func writeFixture(t *testing.T, dir, sector, name, content string) {
	t.Helper()
	sectorDir := filepath.Join(dir, sector)
	require.NoError(t, os.MkdirAll(sectorDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(sectorDir, name+".csv"), []byte(content), 0o644))
}

func TestManagerExecute(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "hr", "attrition_data",
		"employee_id,department,status\nE001,Engineering,Active\nE002,Sales,Left\n")

	mgr := NewManager(NewCSVSource(dir), logger.NewNoOpLogger())

	ds, err := mgr.Execute(context.Background(), SkillWorkdayHR, "get_attrition_data", nil)
	require.NoError(t, err)
	assert.Equal(t, 2, ds.Count)
	assert.Equal(t, []string{"employee_id", "department", "status"}, ds.Columns)
	assert.Equal(t, "Left", ds.Data[1]["status"])
	assert.Empty(t, ds.Err)
}

func TestManagerUnknownSkill(t *testing.T) {
	mgr := NewManager(NewCSVSource(t.TempDir()), logger.NewNoOpLogger())

	_, err := mgr.Execute(context.Background(), "jira", "get_tickets_data", nil)
	require.Error(t, err)

	var stdErr *commonerrors.StandardError
	require.True(t, errors.As(err, &stdErr))
	assert.Equal(t, commonerrors.ErrCodeSkillNotFound, stdErr.Code)
	assert.False(t, stdErr.Retryable)
	assert.Contains(t, stdErr.Details, "jira")
}

func TestManagerUnknownOperation(t *testing.T) {
	mgr := NewManager(NewCSVSource(t.TempDir()), logger.NewNoOpLogger())

	ds, err := mgr.Execute(context.Background(), SkillSalesforce, "get_forecast_data", nil)
	require.NoError(t, err)
	assert.Equal(t, 0, ds.Count)
	assert.Empty(t, ds.Data)
	assert.Empty(t, ds.Err)
}

func TestManagerMissingDataset(t *testing.T) {
	mgr := NewManager(NewCSVSource(t.TempDir()), logger.NewNoOpLogger())

	ds, err := mgr.Execute(context.Background(), SkillSAP, "get_invoices_data", nil)
	require.NoError(t, err)
	assert.Equal(t, 0, ds.Count)
	assert.Contains(t, ds.Err, "dataset: invoices_data")
}

func TestManagerOperationRouting(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "finance", "cashflow_data", "month,amount\nJan,100000\n")

	mgr := NewManager(NewCSVSource(dir), logger.NewNoOpLogger())

	// Both operations resolve to the same cashflow dataset.
	for _, op := range []string{"get_financial_data", "get_cashflow_data"} {
		ds, err := mgr.Execute(context.Background(), SkillSAP, op, nil)
		require.NoError(t, err, op)
		assert.Equal(t, 1, ds.Count, op)
	}
}

func TestManagerSkillList(t *testing.T) {
	mgr := NewManager(NewCSVSource(t.TempDir()), logger.NewNoOpLogger())
	assert.ElementsMatch(t,
		[]string{"workday_hr", "salesforce", "servicenow", "sap"},
		mgr.Skills(),
	)
}
