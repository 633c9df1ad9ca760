package datasets

import (
	"os"
	"path/filepath"
	"testing"
)

// writeCSV writes a CSV file with the given header and rows to path.
func writeCSV(t *testing.T, path, header string, rows []string) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create csv %s: %v", path, err)
	}
	defer f.Close()

	if _, err := f.WriteString(header + "\n"); err != nil {
		t.Fatalf("failed to write header: %v", err)
	}
	for _, r := range rows {
		if _, err := f.WriteString(r + "\n"); err != nil {
			t.Fatalf("failed to write row: %v", err)
		}
	}
}

func TestLoadTable(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "train.csv")
	writeCSV(t, path, "Id,Area,Zone,Price", []string{
		"1,100,urban,1000",
		"2,NA,rural,2000",
		"3,300,,3000",
	})

	table, err := LoadTable(path)
	if err != nil {
		t.Fatalf("LoadTable failed: %v", err)
	}
	if table.Len() != 3 {
		t.Fatalf("expected 3 rows, got %d", table.Len())
	}
	if len(table.Columns) != 4 || table.Columns[1] != "Area" {
		t.Fatalf("unexpected columns: %v", table.Columns)
	}
	if !table.HasColumn("Zone") || table.HasColumn("nope") {
		t.Fatalf("HasColumn misbehaves")
	}

	area, err := table.Column("Area")
	if err != nil {
		t.Fatalf("Column(Area) error: %v", err)
	}
	if area[0] != "100" || !isMissing(area[1]) || area[2] != "300" {
		t.Fatalf("unexpected Area column: %v", area)
	}
	// The empty Zone cell in row 3 counts as missing too.
	zone, _ := table.Column("Zone")
	if !isMissing(zone[2]) {
		t.Fatalf("empty cell not treated as missing: %q", zone[2])
	}

	if _, err := table.Column("nope"); err == nil {
		t.Fatalf("expected error for unknown column, got nil")
	}
}

func TestLoadTableMissingFile(t *testing.T) {
	if _, err := LoadTable(filepath.Join(t.TempDir(), "nope.csv")); err == nil {
		t.Fatalf("expected error for missing file, got nil")
	}
}

func TestNewRawTableValidation(t *testing.T) {
	if _, err := NewRawTable([]string{"A", "A"}, nil); err == nil {
		t.Fatalf("expected error for duplicate columns, got nil")
	}
	if _, err := NewRawTable([]string{"A", "B"}, [][]string{{"1"}}); err == nil {
		t.Fatalf("expected error for short row, got nil")
	}
	if _, err := NewRawTable(nil, nil); err == nil {
		t.Fatalf("expected error for empty header, got nil")
	}
}
