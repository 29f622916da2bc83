package skills

import (
	"context"
	"database/sql"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"

	"orchestrateiq/internal/models"
)

var (
	ErrDatasetNotFound   = errors.New("DATASET_NOT_FOUND")
	ErrQueryFailed       = errors.New("QUERY_EXECUTION_FAILED")
	ErrSearchQueryFailed = errors.New("SEARCH_QUERY_FAILED")
)

// Source resolves a named dataset for a sector into records.
type Source interface {
	Fetch(ctx context.Context, sector, name string) (models.Dataset, error)
}

// CSVSource reads datasets from <dir>/<sector>/<name>.csv. Every cell is
// kept as a string; the data handlers coerce types defensively.
type CSVSource struct {
	dir string
}

func NewCSVSource(dir string) *CSVSource {
	return &CSVSource{dir: dir}
}

func (s *CSVSource) Fetch(ctx context.Context, sector, name string) (models.Dataset, error) {
	path := filepath.Join(s.dir, sector, name+".csv")

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return models.Dataset{}, fmt.Errorf("%w: %s", ErrDatasetNotFound, path)
		}
		return models.Dataset{}, fmt.Errorf("open dataset %s: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	rows, err := reader.ReadAll()
	if err != nil {
		return models.Dataset{}, fmt.Errorf("parse dataset %s: %w", path, err)
	}

	if len(rows) == 0 {
		return models.EmptyDataset(), nil
	}

	columns := rows[0]
	records := make([]models.Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rec := make(models.Record, len(columns))
		for i, col := range columns {
			if i < len(row) {
				rec[col] = row[i]
			}
		}
		records = append(records, rec)
	}

	return models.Dataset{
		Data:    records,
		Count:   len(records),
		Columns: columns,
	}, nil
}

// PostgresSource reads datasets from tables named <sector>_<name>.
type PostgresSource struct {
	db *sql.DB
}

func NewPostgresSource(db *sql.DB) *PostgresSource {
	return &PostgresSource{db: db}
}

func (s *PostgresSource) Fetch(ctx context.Context, sector, name string) (models.Dataset, error) {
	table := fmt.Sprintf("%s_%s", sector, name)

	rows, err := s.db.QueryContext(ctx, fmt.Sprintf("SELECT * FROM %s", table))
	if err != nil {
		return models.Dataset{}, fmt.Errorf("%w: %s: %v", ErrQueryFailed, table, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return models.Dataset{}, fmt.Errorf("%w: %s: %v", ErrQueryFailed, table, err)
	}

	var records []models.Record
	for rows.Next() {
		values := make([]interface{}, len(columns))
		ptrs := make([]interface{}, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return models.Dataset{}, fmt.Errorf("%w: %s: %v", ErrQueryFailed, table, err)
		}

		rec := make(models.Record, len(columns))
		for i, col := range columns {
			if b, ok := values[i].([]byte); ok {
				rec[col] = string(b)
			} else {
				rec[col] = values[i]
			}
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return models.Dataset{}, fmt.Errorf("%w: %s: %v", ErrQueryFailed, table, err)
	}

	if records == nil {
		records = []models.Record{}
	}
	return models.Dataset{
		Data:    records,
		Count:   len(records),
		Columns: columns,
	}, nil
}

// ElasticsearchSource reads datasets from indices named <sector>-<name>.
type ElasticsearchSource struct {
	client *elasticsearch.Client
	size   int
}

func NewElasticsearchSource(client *elasticsearch.Client) *ElasticsearchSource {
	return &ElasticsearchSource{client: client, size: 1000}
}

func (s *ElasticsearchSource) Fetch(ctx context.Context, sector, name string) (models.Dataset, error) {
	index := fmt.Sprintf("%s-%s", sector, strings.ReplaceAll(name, "_", "-"))

	body := fmt.Sprintf(`{"query":{"match_all":{}},"size":%d}`, s.size)
	res, err := s.client.Search(
		s.client.Search.WithContext(ctx),
		s.client.Search.WithIndex(index),
		s.client.Search.WithBody(strings.NewReader(body)),
	)
	if err != nil {
		return models.Dataset{}, fmt.Errorf("%w: %s: %v", ErrSearchQueryFailed, index, err)
	}
	defer res.Body.Close()

	if res.StatusCode == 404 {
		return models.Dataset{}, fmt.Errorf("%w: %s", ErrDatasetNotFound, index)
	}
	if res.IsError() {
		return models.Dataset{}, fmt.Errorf("%w: %s: %s", ErrSearchQueryFailed, index, res.Status())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				Source models.Record `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return models.Dataset{}, fmt.Errorf("%w: %s: %v", ErrSearchQueryFailed, index, err)
	}

	records := make([]models.Record, 0, len(parsed.Hits.Hits))
	columnSet := map[string]bool{}
	for _, hit := range parsed.Hits.Hits {
		records = append(records, hit.Source)
		for col := range hit.Source {
			columnSet[col] = true
		}
	}

	columns := make([]string, 0, len(columnSet))
	for col := range columnSet {
		columns = append(columns, col)
	}

	return models.Dataset{
		Data:    records,
		Count:   len(records),
		Columns: columns,
	}, nil
}
