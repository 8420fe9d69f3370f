package datarecording

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"reflect"
	"strings"
)

// QueryParams selects the rows of a query.
type QueryParams struct {
	// Where is the condition without the WHERE keyword, for example
	// "Latency > ? AND VNet = ?".
	Where string

	// Args fill the placeholders of Where.
	Args []any

	// OrderBy is the ordering without the ORDER BY keywords, for example
	// "DeliveredAt DESC".
	OrderBy string

	// Limit bounds the number of rows. Zero means no limit.
	Limit int

	// Offset skips rows. It only applies together with a limit.
	Offset int
}

func (p QueryParams) whereClause() string {
	if p.Where == "" {
		return ""
	}

	return " WHERE " + p.Where
}

func (p QueryParams) sql(table string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "SELECT * FROM %s%s", table, p.whereClause())

	if p.OrderBy != "" {
		b.WriteString(" ORDER BY " + p.OrderBy)
	}

	if p.Limit > 0 {
		fmt.Fprintf(&b, " LIMIT %d", p.Limit)

		if p.Offset > 0 {
			fmt.Fprintf(&b, " OFFSET %d", p.Offset)
		}
	}

	return b.String()
}

// Reader reads the tables of a recording.
type Reader struct {
	db *sql.DB
}

// OpenReader opens an existing recording.
func OpenReader(path string) (*Reader, error) {
	filename := FileName(path)

	if _, err := os.Stat(filename); err != nil {
		return nil, fmt.Errorf("opening recording: %w", err)
	}

	db, err := sql.Open("sqlite3", filename)
	if err != nil {
		return nil, fmt.Errorf("opening recording: %w", err)
	}

	return &Reader{db: db}, nil
}

// NewReaderWithDB reads from a database that is already open.
func NewReaderWithDB(db *sql.DB) *Reader {
	return &Reader{db: db}
}

// ListTables returns the tables of the recording in creation order.
func (r *Reader) ListTables(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT name FROM sqlite_master WHERE type = 'table' ORDER BY rowid")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tables []string

	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}

		tables = append(tables, name)
	}

	return tables, rows.Err()
}

// Count returns the number of rows that match the condition of the params.
// Ordering and paging are ignored.
func (r *Reader) Count(
	ctx context.Context,
	table string,
	params QueryParams,
) (int, error) {
	query := "SELECT COUNT(*) FROM " + table + params.whereClause()

	var count int

	err := r.db.QueryRowContext(ctx, query, params.Args...).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting %s: %w", table, err)
	}

	return count, nil
}

// Close closes the recording.
func (r *Reader) Close() error {
	return r.db.Close()
}

// Query reads rows of a table into entries of type T. Columns are matched to
// the exported fields of T by name. Columns without a field are skipped.
func Query[T any](
	ctx context.Context,
	r *Reader,
	table string,
	params QueryParams,
) ([]T, error) {
	structType := reflect.TypeOf((*T)(nil)).Elem()
	if structType.Kind() != reflect.Struct {
		return nil, fmt.Errorf("cannot read rows into %s", structType)
	}

	rows, err := r.db.QueryContext(ctx, params.sql(table), params.Args...)
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", table, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var results []T

	for rows.Next() {
		var entry T

		if err := rows.Scan(scanTargets(&entry, columns)...); err != nil {
			return nil, fmt.Errorf("reading %s: %w", table, err)
		}

		results = append(results, entry)
	}

	return results, rows.Err()
}

func scanTargets(entry any, columns []string) []any {
	v := reflect.ValueOf(entry).Elem()
	targets := make([]any, len(columns))

	for i, column := range columns {
		field := v.FieldByName(column)
		if field.IsValid() && field.CanSet() {
			targets[i] = field.Addr().Interface()
			continue
		}

		var skipped any
		targets[i] = &skipped
	}

	return targets
}
