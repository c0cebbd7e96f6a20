package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/paulmach/orb/geojson"
	"github.com/rs/zerolog/log"

	"github.com/opencurb/curbmap/internal/catalog"
	"github.com/opencurb/curbmap/internal/geo"
)

var (
	// ErrStatsUnavailable is returned when no attribute database was
	// configured or it failed to open.
	ErrStatsUnavailable = errors.New("attribute database unavailable")

	// ErrNoNumericValues is returned when a column holds nothing that
	// casts to a number.
	ErrNoNumericValues = errors.New("no numeric values")
)

// ColumnInfo describes one attribute column of an ingested dataset.
type ColumnInfo struct {
	Name string `json:"name" doc:"Property key as stored in the dataset"`
	Type string `json:"type" doc:"SQL type of the ingested column"`
}

// StatsService ingests dataset properties into DuckDB and answers
// column and range queries over them. Tables are built lazily per
// dataset and rebuilt after Invalidate.
type StatsService struct {
	db       *sql.DB
	registry *catalog.Registry
	loader   *geo.Loader

	mu     sync.Mutex
	tables map[string]string // dataset name -> table name
}

// NewStatsService returns a service backed by db, which may be nil when
// the database could not be opened. All queries then report
// ErrStatsUnavailable.
func NewStatsService(db *sql.DB, registry *catalog.Registry, loader *geo.Loader) *StatsService {
	return &StatsService{db: db, registry: registry, loader: loader, tables: make(map[string]string)}
}

// Available reports whether the attribute database is usable.
func (s *StatsService) Available() bool { return s.db != nil }

// Columns lists the attribute columns of a dataset's ingested table in
// their ingestion order.
func (s *StatsService) Columns(ctx context.Context, dataset string) ([]ColumnInfo, error) {
	table, err := s.ensure(ctx, dataset)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT column_name, data_type FROM information_schema.columns WHERE table_name = ? ORDER BY ordinal_position",
		table)
	if err != nil {
		return nil, fmt.Errorf("describe %s: %w", dataset, err)
	}
	defer rows.Close()

	var cols []ColumnInfo
	for rows.Next() {
		var c ColumnInfo
		if err := rows.Scan(&c.Name, &c.Type); err != nil {
			return nil, fmt.Errorf("describe %s: %w", dataset, err)
		}
		cols = append(cols, c)
	}
	return cols, rows.Err()
}

// NumericRange returns the minimum and maximum of a column cast to
// double. Values that do not parse as numbers are ignored; when none
// parse the error wraps ErrNoNumericValues.
func (s *StatsService) NumericRange(ctx context.Context, dataset, column string) (float64, float64, error) {
	table, err := s.ensure(ctx, dataset)
	if err != nil {
		return 0, 0, err
	}

	q := fmt.Sprintf("SELECT min(TRY_CAST(%s AS DOUBLE)), max(TRY_CAST(%s AS DOUBLE)) FROM %s",
		quoteIdent(column), quoteIdent(column), quoteIdent(table))
	var lo, hi sql.NullFloat64
	if err := s.db.QueryRowContext(ctx, q).Scan(&lo, &hi); err != nil {
		return 0, 0, fmt.Errorf("range of %s.%s: %w", dataset, column, err)
	}
	if !lo.Valid || !hi.Valid {
		return 0, 0, fmt.Errorf("%s.%s: %w", dataset, column, ErrNoNumericValues)
	}
	return lo.Float64, hi.Float64, nil
}

// Invalidate drops the dataset's table so the next query rebuilds it
// from fresh source data. It is a no-op without a database.
func (s *StatsService) Invalidate(ctx context.Context, dataset string) error {
	if s.db == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	table, ok := s.tables[dataset]
	if !ok {
		return nil
	}
	delete(s.tables, dataset)
	if _, err := s.db.ExecContext(ctx, "DROP TABLE IF EXISTS "+quoteIdent(table)); err != nil {
		return fmt.Errorf("drop %s: %w", dataset, err)
	}
	return nil
}

func (s *StatsService) ensure(ctx context.Context, dataset string) (string, error) {
	if s.db == nil {
		return "", ErrStatsUnavailable
	}
	ds, ok := s.registry.Get(dataset)
	if !ok {
		return "", fmt.Errorf("%s: %w", dataset, ErrUnknownDataset)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if table, ok := s.tables[ds.Name]; ok {
		return table, nil
	}

	fc, err := s.loader.Load(ctx, ds.File)
	if err != nil {
		return "", fmt.Errorf("%s: %w", ds.Name, err)
	}

	table := tableName(ds.Name)
	if err := s.ingest(ctx, table, fc); err != nil {
		return "", fmt.Errorf("%s: %w", ds.Name, err)
	}
	s.tables[ds.Name] = table
	log.Debug().Str("dataset", ds.Name).Str("table", table).Int("rows", len(fc.Features)).Msg("attribute table built")
	return table, nil
}

// ingest creates the table and inserts one row per feature. Property
// keys become columns; the widest type seen per key wins.
func (s *StatsService) ingest(ctx context.Context, table string, fc *geojson.FeatureCollection) error {
	cols := schemaOf(fc)
	if len(cols) == 0 {
		return errors.New("no attributes to ingest")
	}

	defs := make([]string, len(cols))
	marks := make([]string, len(cols))
	for i, c := range cols {
		defs[i] = quoteIdent(c.name) + " " + c.sqlType
		marks[i] = "?"
	}

	if _, err := s.db.ExecContext(ctx,
		fmt.Sprintf("CREATE OR REPLACE TABLE %s (%s)", quoteIdent(table), strings.Join(defs, ", "))); err != nil {
		return fmt.Errorf("create table: %w", err)
	}

	stmt, err := s.db.PrepareContext(ctx,
		fmt.Sprintf("INSERT INTO %s VALUES (%s)", quoteIdent(table), strings.Join(marks, ", ")))
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	args := make([]interface{}, len(cols))
	for _, f := range fc.Features {
		for i, c := range cols {
			args[i] = sqlValue(f.Properties[c.name], c.sqlType)
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("insert row: %w", err)
		}
	}
	return nil
}

type attrColumn struct {
	name    string
	sqlType string
}

func schemaOf(fc *geojson.FeatureCollection) []attrColumn {
	kinds := map[string]string{}
	for _, f := range fc.Features {
		for k, v := range f.Properties {
			kinds[k] = widen(kinds[k], kindOf(v))
		}
	}

	names := make([]string, 0, len(kinds))
	for k := range kinds {
		names = append(names, k)
	}
	sort.Strings(names)

	cols := make([]attrColumn, 0, len(names))
	for _, n := range names {
		t := kinds[n]
		if t == "" || t == "null" {
			t = "VARCHAR"
		}
		cols = append(cols, attrColumn{name: n, sqlType: t})
	}
	return cols
}

func kindOf(v interface{}) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "BOOLEAN"
	case float64, int, int64:
		return "DOUBLE"
	default:
		return "VARCHAR"
	}
}

// widen merges two observed kinds; null defers, equal kinds stick,
// anything mixed falls back to VARCHAR.
func widen(a, b string) string {
	switch {
	case a == "" || a == "null":
		return b
	case b == "" || b == "null":
		return a
	case a == b:
		return a
	default:
		return "VARCHAR"
	}
}

func sqlValue(v interface{}, sqlType string) interface{} {
	if v == nil {
		return nil
	}
	switch sqlType {
	case "DOUBLE":
		switch n := v.(type) {
		case float64:
			return n
		case int:
			return float64(n)
		case int64:
			return float64(n)
		}
		return nil
	case "BOOLEAN":
		if b, ok := v.(bool); ok {
			return b
		}
		return nil
	default:
		if s, ok := v.(string); ok {
			return s
		}
		return fmt.Sprint(v)
	}
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func tableName(dataset string) string {
	var b strings.Builder
	b.WriteString("ds_")
	pending := false
	for _, r := range strings.ToLower(dataset) {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			if pending && b.Len() > 3 {
				b.WriteByte('_')
			}
			pending = false
			b.WriteRune(r)
			continue
		}
		pending = true
	}
	return b.String()
}
