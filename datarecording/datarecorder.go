// Package datarecording writes simulation records into SQLite databases and
// reads them back.
package datarecording

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"reflect"
	"strings"

	// Registers the sqlite3 driver.
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/xid"
	"github.com/tebeka/atexit"
)

// DataRecorder stores flat structs as rows of SQLite tables.
type DataRecorder interface {
	// CreateTable creates a table whose columns are the fields of the
	// sample entry.
	CreateTable(tableName string, sampleEntry any)

	// InsertData buffers a row. The entry must have the type of the sample
	// entry the table was created with.
	InsertData(tableName string, entry any)

	// ListTables returns the table names in creation order.
	ListTables() []string

	// Flush writes the buffered rows in one transaction.
	Flush()

	// Close flushes and closes the database.
	Close() error
}

// DefaultBatchSize is the number of buffered rows that triggers a flush.
const DefaultBatchSize = 100000

// FileName returns the database file of a recording path.
func FileName(path string) string {
	if strings.HasSuffix(path, ".sqlite3") {
		return path
	}

	return path + ".sqlite3"
}

// New creates a DataRecorder that writes to a new SQLite file. An empty path
// picks a unique name. It panics if the file already exists, so that a run
// never mixes its rows with an older one. Buffered rows are flushed when the
// program exits through atexit.
func New(path string) DataRecorder {
	if path == "" {
		path = "noc_recording_" + xid.New().String()
	}

	file := FileName(path)
	if _, err := os.Stat(file); err == nil {
		panic(fmt.Sprintf("recording %s already exists", file))
	}

	db, err := sql.Open("sqlite3", file)
	if err != nil {
		panic(err)
	}

	slog.Info("recording into database", "file", file)

	return NewWithDB(db)
}

// NewWithDB creates a DataRecorder that writes to an open database.
func NewWithDB(db *sql.DB) DataRecorder {
	r := &recorder{
		db:        db,
		batchSize: DefaultBatchSize,
		tables:    make(map[string]*table),
	}

	atexit.Register(r.Flush)

	return r
}

var sqlTypes = map[reflect.Kind]string{
	reflect.Bool:    "BOOLEAN",
	reflect.Int:     "INTEGER",
	reflect.Int8:    "INTEGER",
	reflect.Int16:   "INTEGER",
	reflect.Int32:   "INTEGER",
	reflect.Int64:   "INTEGER",
	reflect.Uint:    "INTEGER",
	reflect.Uint8:   "INTEGER",
	reflect.Uint16:  "INTEGER",
	reflect.Uint32:  "INTEGER",
	reflect.Uint64:  "INTEGER",
	reflect.Float32: "REAL",
	reflect.Float64: "REAL",
	reflect.String:  "TEXT",
}

type table struct {
	name    string
	typ     reflect.Type
	insert  string
	pending [][]any
}

func newTable(name string, sample any) (*table, []string, error) {
	typ := reflect.TypeOf(sample)
	if typ == nil || typ.Kind() != reflect.Struct {
		return nil, nil, fmt.Errorf("entry of type %v is not a struct", typ)
	}

	columns := make([]string, typ.NumField())
	marks := make([]string, typ.NumField())

	for i := range typ.NumField() {
		f := typ.Field(i)

		sqlType, ok := sqlTypes[f.Type.Kind()]
		if !f.IsExported() || !ok {
			return nil, nil, fmt.Errorf("field %s of %s cannot be recorded",
				f.Name, typ)
		}

		columns[i] = f.Name + " " + sqlType
		marks[i] = "?"
	}

	t := &table{
		name: name,
		typ:  typ,
		insert: fmt.Sprintf("INSERT INTO %s VALUES (%s)",
			name, strings.Join(marks, ", ")),
	}

	return t, columns, nil
}

func (t *table) row(entry any) []any {
	v := reflect.ValueOf(entry)

	row := make([]any, v.NumField())
	for i := range row {
		row[i] = v.Field(i).Interface()
	}

	return row
}

type recorder struct {
	db         *sql.DB
	batchSize  int
	tables     map[string]*table
	order      []*table
	numPending int
	closed     bool
}

func (r *recorder) CreateTable(tableName string, sampleEntry any) {
	if _, exists := r.tables[tableName]; exists {
		panic(fmt.Sprintf("table %s already exists", tableName))
	}

	t, columns, err := newTable(tableName, sampleEntry)
	if err != nil {
		panic(err)
	}

	query := fmt.Sprintf("CREATE TABLE %s (\n\t%s\n)",
		tableName, strings.Join(columns, ",\n\t"))
	if _, err := r.db.Exec(query); err != nil {
		panic(fmt.Errorf("creating table %s: %w", tableName, err))
	}

	r.tables[tableName] = t
	r.order = append(r.order, t)
}

func (r *recorder) InsertData(tableName string, entry any) {
	t, exists := r.tables[tableName]
	if !exists {
		panic(fmt.Sprintf("table %s does not exist", tableName))
	}

	if reflect.TypeOf(entry) != t.typ {
		panic(fmt.Sprintf("table %s takes %s, not %T", tableName, t.typ, entry))
	}

	t.pending = append(t.pending, t.row(entry))

	r.numPending++
	if r.numPending >= r.batchSize {
		r.Flush()
	}
}

func (r *recorder) ListTables() []string {
	names := make([]string, len(r.order))
	for i, t := range r.order {
		names[i] = t.name
	}

	return names
}

func (r *recorder) Flush() {
	if r.numPending == 0 || r.closed {
		return
	}

	if err := r.flush(); err != nil {
		panic(fmt.Errorf("flushing recording: %w", err))
	}
}

func (r *recorder) flush() error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}

	for _, t := range r.order {
		if err := t.writeTo(tx); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("table %s: %w", t.name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	for _, t := range r.order {
		t.pending = nil
	}

	r.numPending = 0

	return nil
}

func (t *table) writeTo(tx *sql.Tx) error {
	if len(t.pending) == 0 {
		return nil
	}

	stmt, err := tx.Prepare(t.insert)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, row := range t.pending {
		if _, err := stmt.Exec(row...); err != nil {
			return err
		}
	}

	return nil
}

func (r *recorder) Close() error {
	r.Flush()
	r.closed = true

	return r.db.Close()
}
