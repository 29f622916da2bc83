package skills

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVSourceFetch(t *testing.T) {
	dir := t.TempDir()
	sectorDir := filepath.Join(dir, "sales")
	require.NoError(t, os.MkdirAll(sectorDir, 0o755))
	require.NoError(t, os.WriteFile(
		filepath.Join(sectorDir, "pipeline_data.csv"),
		[]byte("deal_id,value,status\nD001,60000,active\nD002,30000,stale\n"),
		0o644,
	))

	src := NewCSVSource(dir)
	ds, err := src.Fetch(context.Background(), "sales", "pipeline_data")
	require.NoError(t, err)

	assert.Equal(t, 2, ds.Count)
	assert.Equal(t, "60000", ds.Data[0]["value"])
	assert.Equal(t, "stale", ds.Data[1]["status"])
}

func TestCSVSourceMissingFile(t *testing.T) {
	src := NewCSVSource(t.TempDir())

	_, err := src.Fetch(context.Background(), "hr", "attrition_data")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDatasetNotFound))
}

func TestCSVSourceEmptyFile(t *testing.T) {
	dir := t.TempDir()
	sectorDir := filepath.Join(dir, "hr")
	require.NoError(t, os.MkdirAll(sectorDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(sectorDir, "attrition_data.csv"), []byte(""), 0o644))

	src := NewCSVSource(dir)
	ds, err := src.Fetch(context.Background(), "hr", "attrition_data")
	require.NoError(t, err)
	assert.Equal(t, 0, ds.Count)
}

func TestPostgresSourceFetch(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"invoice_id", "amount", "status"}).
		AddRow("INV-1", 4500.0, "pending").
		AddRow("INV-2", 9000.0, "approved")
	mock.ExpectQuery("SELECT \\* FROM finance_invoices_data").WillReturnRows(rows)

	src := NewPostgresSource(db)
	ds, err := src.Fetch(context.Background(), "finance", "invoices_data")
	require.NoError(t, err)

	assert.Equal(t, 2, ds.Count)
	assert.Equal(t, []string{"invoice_id", "amount", "status"}, ds.Columns)
	assert.Equal(t, "INV-1", ds.Data[0]["invoice_id"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSourceQueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT \\* FROM hr_attrition_data").WillReturnError(errors.New("relation does not exist"))

	src := NewPostgresSource(db)
	_, err = src.Fetch(context.Background(), "hr", "attrition_data")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrQueryFailed))
}

func TestElasticsearchSourceFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "service-tickets-data")
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"hits": {
				"hits": [
					{"_source": {"ticket_id": "T001", "priority": "high", "status": "open"}},
					{"_source": {"ticket_id": "T002", "priority": "low", "status": "resolved"}}
				]
			}
		}`))
	}))
	defer server.Close()

	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{server.URL}})
	require.NoError(t, err)

	src := NewElasticsearchSource(client)
	ds, err := src.Fetch(context.Background(), "service", "tickets_data")
	require.NoError(t, err)

	assert.Equal(t, 2, ds.Count)
	assert.Equal(t, "T001", ds.Data[0]["ticket_id"])
	assert.Contains(t, ds.Columns, "priority")
}

func TestElasticsearchSourceMissingIndex(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":{"type":"index_not_found_exception"}}`))
	}))
	defer server.Close()

	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{server.URL}})
	require.NoError(t, err)

	src := NewElasticsearchSource(client)
	_, err = src.Fetch(context.Background(), "hr", "attrition_data")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDatasetNotFound))
}
