package store

import (
	"database/sql"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	_ "modernc.org/sqlite"
)

// Ingest loads a CSV file into a fresh dataset table at dbPath, replacing
// any existing table. Column types are inferred from the data: INTEGER if
// every non-empty value parses as an integer, REAL if numeric, TEXT
// otherwise. Returns the number of ingested rows.
func Ingest(csvPath, dbPath string) (int, error) {
	f, err := os.Open(csvPath)
	if err != nil {
		return 0, fmt.Errorf("failed to open CSV: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	records, err := reader.ReadAll()
	if err != nil {
		return 0, fmt.Errorf("failed to read CSV: %w", err)
	}
	if len(records) < 2 {
		return 0, fmt.Errorf("CSV %s has no data rows", csvPath)
	}

	header := records[0]
	data := records[1:]
	types := inferColumnTypes(header, data)

	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return 0, fmt.Errorf("failed to create data directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return 0, fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if _, err := db.Exec("DROP TABLE IF EXISTS " + TableName); err != nil {
		return 0, fmt.Errorf("failed to drop existing table: %w", err)
	}

	cols := make([]string, len(header))
	for i, name := range header {
		cols[i] = fmt.Sprintf("%q %s", sanitizeColumn(name), types[i])
	}
	createStmt := fmt.Sprintf("CREATE TABLE %s (%s)", TableName, strings.Join(cols, ", "))
	if _, err := db.Exec(createStmt); err != nil {
		return 0, fmt.Errorf("failed to create table: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(header)), ",")
	insert, err := tx.Prepare(fmt.Sprintf("INSERT INTO %s VALUES (%s)", TableName, placeholders))
	if err != nil {
		tx.Rollback()
		return 0, fmt.Errorf("failed to prepare insert: %w", err)
	}

	for _, row := range data {
		values := make([]any, len(header))
		for i := range header {
			if i < len(row) {
				values[i] = convertValue(row[i], types[i])
			}
		}
		if _, err := insert.Exec(values...); err != nil {
			insert.Close()
			tx.Rollback()
			return 0, fmt.Errorf("failed to insert row: %w", err)
		}
	}
	insert.Close()

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit: %w", err)
	}

	return len(data), nil
}

func inferColumnTypes(header []string, data [][]string) []string {
	types := make([]string, len(header))

	for col := range header {
		isInt, isReal := true, true
		seen := false

		for _, row := range data {
			if col >= len(row) || row[col] == "" {
				continue
			}
			seen = true
			if _, err := strconv.ParseInt(row[col], 10, 64); err != nil {
				isInt = false
			}
			if _, err := strconv.ParseFloat(row[col], 64); err != nil {
				isReal = false
			}
			if !isInt && !isReal {
				break
			}
		}

		switch {
		case !seen:
			types[col] = "TEXT"
		case isInt:
			types[col] = "INTEGER"
		case isReal:
			types[col] = "REAL"
		default:
			types[col] = "TEXT"
		}
	}

	return types
}

func convertValue(raw, colType string) any {
	if raw == "" {
		return nil
	}
	switch colType {
	case "INTEGER":
		if v, err := strconv.ParseInt(raw, 10, 64); err == nil {
			return v
		}
	case "REAL":
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			return v
		}
	}
	return raw
}

func sanitizeColumn(name string) string {
	return strings.ReplaceAll(strings.TrimSpace(name), `"`, "")
}
