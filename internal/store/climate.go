// Package store provides the SQLite-backed climate agriculture dataset the
// analyst agent queries through its SQL tool.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"strconv"
	"strings"

	_ "modernc.org/sqlite"
)

// TableName is the single dataset table.
const TableName = "climate_agriculture_data"

// previewRows caps how many rows a tool result renders in full.
const previewRows = 20

// Store wraps the climate agriculture SQLite database.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens the database at path. The file must already exist; a missing
// database is a startup failure with a pointer at the ingest command.
func Open(path string) (*Store, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("database not found at %s (run: climate-agent ingest <csv>): %w", path, err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	return &Store{db: db, path: path}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// RowCount returns the number of rows in the dataset table.
func (s *Store) RowCount() (int, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM " + TableName).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count rows: %w", err)
	}
	return count, nil
}

// Query executes a SQL query and renders the result as a formatted text
// table for the agent's tool output. Query errors are returned as text too,
// so the model can see what went wrong and correct its SQL.
func (s *Store) Query(sqlText string) string {
	rows, err := s.db.Query(sqlText)
	if err != nil {
		return fmt.Sprintf("Error executing query: %v", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return fmt.Sprintf("Error executing query: %v", err)
	}

	var results [][]string
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return fmt.Sprintf("Error executing query: %v", err)
		}

		rendered := make([]string, len(columns))
		for i, v := range values {
			rendered[i] = renderValue(v)
		}
		results = append(results, rendered)
	}
	if err := rows.Err(); err != nil {
		return fmt.Sprintf("Error executing query: %v", err)
	}

	if len(results) == 0 {
		return "No results found."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Query returned %d rows:\n\n", len(results))
	b.WriteString(strings.Join(columns, " | ") + "\n")
	b.WriteString(strings.Repeat("-", 80) + "\n")

	limit := len(results)
	if limit > previewRows {
		limit = previewRows
	}
	for _, row := range results[:limit] {
		b.WriteString(strings.Join(row, " | ") + "\n")
	}

	if len(results) > previewRows {
		fmt.Fprintf(&b, "\n... and %d more rows", len(results)-previewRows)
	}

	return b.String()
}

func renderValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "NULL"
	case []byte:
		return string(val)
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64)
	default:
		return fmt.Sprint(val)
	}
}
