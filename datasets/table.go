package datasets

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"
)

// RawTable is one CSV table held in memory. Cells are kept as strings; the
// encoder decides later whether a column is numeric or categorical. Empty
// cells and the literal "NA" count as missing.
type RawTable struct {
	// Columns holds the header names in file order.
	Columns []string

	// Rows holds one string slice per record, aligned with Columns.
	Rows [][]string

	colIndex map[string]int
}

// NewRawTable builds a table from an in-memory header and rows. Every row
// must have exactly one cell per column.
func NewRawTable(columns []string, rows [][]string) (*RawTable, error) {
	if len(columns) == 0 {
		return nil, fmt.Errorf("table has no columns")
	}
	idx := make(map[string]int, len(columns))
	for i, c := range columns {
		name := strings.TrimSpace(c)
		if _, dup := idx[name]; dup {
			return nil, fmt.Errorf("duplicate column %q", name)
		}
		idx[name] = i
	}
	for i, r := range rows {
		if len(r) != len(columns) {
			return nil, fmt.Errorf("row %d has %d cells, expected %d", i, len(r), len(columns))
		}
	}
	cols := make([]string, len(columns))
	for i, c := range columns {
		cols[i] = strings.TrimSpace(c)
	}
	return &RawTable{Columns: cols, Rows: rows, colIndex: idx}, nil
}

// LoadTable reads a CSV file into a RawTable. The first record is the
// header; every following record is one row.
func LoadTable(path string) (*RawTable, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV %s: %w", path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("CSV %s is empty", path)
	}

	table, err := NewRawTable(records[0], records[1:])
	if err != nil {
		return nil, fmt.Errorf("bad CSV %s: %w", path, err)
	}
	return table, nil
}

// Len returns the number of data rows.
func (t *RawTable) Len() int { return len(t.Rows) }

// HasColumn reports whether the table contains the named column.
func (t *RawTable) HasColumn(name string) bool {
	_, ok := t.colIndex[name]
	return ok
}

// Column returns the named column's cells in row order.
func (t *RawTable) Column(name string) ([]string, error) {
	i, ok := t.colIndex[name]
	if !ok {
		return nil, fmt.Errorf("column %q not found", name)
	}
	out := make([]string, len(t.Rows))
	for r, row := range t.Rows {
		out[r] = row[i]
	}
	return out, nil
}

// cell returns one cell by row and column name. The column must exist.
func (t *RawTable) cell(row int, name string) string {
	return t.Rows[row][t.colIndex[name]]
}
