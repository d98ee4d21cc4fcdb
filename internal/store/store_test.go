package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func ingestFixture(t *testing.T, csvContent string) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "climate.db")
	_, err := Ingest(writeCSV(t, csvContent), dbPath)
	require.NoError(t, err)

	s, err := Open(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

const sampleCSV = `Year,Region,Rainfall_mm,Crop,Notes
2020,Punjab,650.5,Wheat,good season
2021,Punjab,590.2,Wheat,
2022,Sindh,410.8,Cotton,drought year
`

func TestIngest(t *testing.T) {
	t.Run("loads rows and infers column types", func(t *testing.T) {
		dbPath := filepath.Join(t.TempDir(), "climate.db")
		n, err := Ingest(writeCSV(t, sampleCSV), dbPath)
		require.NoError(t, err)
		assert.Equal(t, 3, n)

		s, err := Open(dbPath)
		require.NoError(t, err)
		defer s.Close()

		count, err := s.RowCount()
		require.NoError(t, err)
		assert.Equal(t, 3, count)

		// INTEGER and REAL columns must come back numeric, not as text.
		out := s.Query("SELECT MAX(Rainfall_mm) AS max_rain, MAX(Year) AS max_year FROM " + TableName)
		assert.Contains(t, out, "650.5")
		assert.Contains(t, out, "2022")
	})

	t.Run("replaces an existing table", func(t *testing.T) {
		dbPath := filepath.Join(t.TempDir(), "climate.db")
		_, err := Ingest(writeCSV(t, sampleCSV), dbPath)
		require.NoError(t, err)

		n, err := Ingest(writeCSV(t, "Year,Region\n2023,Balochistan\n"), dbPath)
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		s, err := Open(dbPath)
		require.NoError(t, err)
		defer s.Close()

		count, err := s.RowCount()
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})

	t.Run("rejects a CSV without data rows", func(t *testing.T) {
		dbPath := filepath.Join(t.TempDir(), "climate.db")
		_, err := Ingest(writeCSV(t, "Year,Region\n"), dbPath)
		assert.Error(t, err)
	})

	t.Run("missing csv file", func(t *testing.T) {
		_, err := Ingest(filepath.Join(t.TempDir(), "nope.csv"), filepath.Join(t.TempDir(), "db"))
		assert.Error(t, err)
	})
}

func TestInferColumnTypes(t *testing.T) {
	header := []string{"a", "b", "c", "d"}
	data := [][]string{
		{"1", "1.5", "x", ""},
		{"2", "2", "y", ""},
		{"", "3.25", "3", ""},
	}

	types := inferColumnTypes(header, data)
	assert.Equal(t, []string{"INTEGER", "REAL", "TEXT", "TEXT"}, types)
}

func TestOpenMissingDatabase(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "absent.db"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "climate-agent ingest")
}

func TestQuery(t *testing.T) {
	s := ingestFixture(t, sampleCSV)

	t.Run("formats rows as a text table", func(t *testing.T) {
		out := s.Query("SELECT Year, Region FROM " + TableName + " ORDER BY Year")
		assert.Contains(t, out, "Query returned 3 rows:")
		assert.Contains(t, out, "Year | Region")
		assert.Contains(t, out, "2020 | Punjab")
		assert.Contains(t, out, "2022 | Sindh")
	})

	t.Run("empty result", func(t *testing.T) {
		out := s.Query("SELECT * FROM " + TableName + " WHERE Year = 1900")
		assert.Equal(t, "No results found.", out)
	})

	t.Run("null values render as NULL", func(t *testing.T) {
		out := s.Query("SELECT Notes FROM " + TableName + " WHERE Year = 2021")
		assert.Contains(t, out, "NULL")
	})

	t.Run("sql errors are returned as text", func(t *testing.T) {
		out := s.Query("SELECT nonsense FROM missing_table")
		assert.Contains(t, out, "Error executing query:")
	})

	t.Run("long results are previewed", func(t *testing.T) {
		var b strings.Builder
		b.WriteString("Year,Value\n")
		for i := 0; i < 30; i++ {
			fmt.Fprintf(&b, "%d,%d\n", 1990+i, i)
		}
		wide := ingestFixture(t, b.String())

		out := wide.Query("SELECT * FROM " + TableName + " ORDER BY Year")
		assert.Contains(t, out, "Query returned 30 rows:")
		assert.Contains(t, out, "... and 10 more rows")
		assert.NotContains(t, out, "2019 | 29")
	})
}
