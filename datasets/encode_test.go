package datasets

import (
	"math"
	"strings"
	"testing"
)

// mustTable builds a RawTable or fails the test.
func mustTable(t *testing.T, columns []string, rows [][]string) *RawTable {
	t.Helper()
	table, err := NewRawTable(columns, rows)
	if err != nil {
		t.Fatalf("NewRawTable error: %v", err)
	}
	return table
}

func approxEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

// featureIndex finds an encoded column by name.
func featureIndex(t *testing.T, enc *Encoded, name string) int {
	t.Helper()
	for i, n := range enc.FeatureNames {
		if n == name {
			return i
		}
	}
	t.Fatalf("feature %q not found in %v", name, enc.FeatureNames)
	return -1
}

// TestEncodeStandardizesNumeric verifies that a numeric column ends up with
// mean ~0 and sample stddev ~1 over the combined train+test rows.
func TestEncodeStandardizesNumeric(t *testing.T) {
	train := mustTable(t,
		[]string{"Id", "Area", "Price"},
		[][]string{
			{"1", "100", "1000"},
			{"2", "200", "2000"},
			{"3", "300", "3000"},
		})
	test := mustTable(t,
		[]string{"Id", "Area"},
		[][]string{
			{"4", "400"},
			{"5", "500"},
		})

	enc, err := Encode(train, test, "Id", "Price")
	if err != nil {
		t.Fatalf("Encode error: %v", err)
	}
	if len(enc.FeatureNames) != 1 || enc.FeatureNames[0] != "Area" {
		t.Fatalf("unexpected feature names: %v", enc.FeatureNames)
	}

	col := featureIndex(t, enc, "Area")
	var combined []float64
	for _, row := range enc.TrainFeatures {
		combined = append(combined, float64(row[col]))
	}
	for _, row := range enc.TestFeatures {
		combined = append(combined, float64(row[col]))
	}

	mean := 0.0
	for _, v := range combined {
		mean += v
	}
	mean /= float64(len(combined))
	variance := 0.0
	for _, v := range combined {
		variance += (v - mean) * (v - mean)
	}
	std := math.Sqrt(variance / float64(len(combined)-1))

	if !approxEqual(mean, 0, 1e-5) {
		t.Fatalf("standardized mean = %f, expected ~0", mean)
	}
	if !approxEqual(std, 1, 1e-4) {
		t.Fatalf("standardized stddev = %f, expected ~1", std)
	}
}

// TestEncodeZeroVarianceColumn: a constant numeric column must become all
// zeros rather than NaN.
func TestEncodeZeroVarianceColumn(t *testing.T) {
	train := mustTable(t,
		[]string{"Id", "Flat", "Price"},
		[][]string{
			{"1", "7", "1000"},
			{"2", "7", "2000"},
		})
	test := mustTable(t,
		[]string{"Id", "Flat"},
		[][]string{
			{"3", "7"},
		})

	enc, err := Encode(train, test, "Id", "Price")
	if err != nil {
		t.Fatalf("Encode error: %v", err)
	}
	col := featureIndex(t, enc, "Flat")
	for r, row := range enc.TrainFeatures {
		if row[col] != 0 {
			t.Fatalf("train row %d: constant column encoded as %f, expected 0", r, row[col])
		}
		if math.IsNaN(float64(row[col])) {
			t.Fatalf("train row %d: constant column encoded as NaN", r)
		}
	}
	if enc.TestFeatures[0][col] != 0 {
		t.Fatalf("test row 0: constant column encoded as %f, expected 0", enc.TestFeatures[0][col])
	}
}

// TestEncodeCategoricalExpansion: a text column expands into one indicator
// per distinct value plus an explicit missing indicator, with the same
// vocabulary across both tables.
func TestEncodeCategoricalExpansion(t *testing.T) {
	train := mustTable(t,
		[]string{"Id", "Zone", "Price"},
		[][]string{
			{"1", "urban", "1000"},
			{"2", "rural", "2000"},
			{"3", "NA", "3000"},
		})
	test := mustTable(t,
		[]string{"Id", "Zone"},
		[][]string{
			{"4", "coastal"},
			{"5", "urban"},
		})

	enc, err := Encode(train, test, "Id", "Price")
	if err != nil {
		t.Fatalf("Encode error: %v", err)
	}

	want := []string{"Zone=coastal", "Zone=rural", "Zone=urban", "Zone=" + MissingLevel}
	if len(enc.FeatureNames) != len(want) {
		t.Fatalf("unexpected feature names: %v", enc.FeatureNames)
	}
	for i, name := range want {
		if enc.FeatureNames[i] != name {
			t.Fatalf("feature %d = %q, expected %q", i, enc.FeatureNames[i], name)
		}
	}

	// Row 0 is urban, row 2 is missing.
	urban := featureIndex(t, enc, "Zone=urban")
	missing := featureIndex(t, enc, "Zone="+MissingLevel)
	if enc.TrainFeatures[0][urban] != 1 || enc.TrainFeatures[0][missing] != 0 {
		t.Fatalf("train row 0 mis-encoded: %v", enc.TrainFeatures[0])
	}
	if enc.TrainFeatures[2][missing] != 1 {
		t.Fatalf("train row 2 should set the missing indicator: %v", enc.TrainFeatures[2])
	}
	// Each categorical row is a one-hot vector.
	for r, row := range append(enc.TrainFeatures, enc.TestFeatures...) {
		var sum float32
		for _, v := range row {
			sum += v
		}
		if sum != 1 {
			t.Fatalf("row %d indicators sum to %f, expected 1", r, sum)
		}
	}
}

// TestEncodeAlignment: a column present only in the train table is dropped
// from both matrices and the column layouts stay identical.
func TestEncodeAlignment(t *testing.T) {
	train := mustTable(t,
		[]string{"Id", "Area", "TrainOnly", "Price"},
		[][]string{
			{"1", "100", "extra", "1000"},
			{"2", "200", "extra", "2000"},
		})
	test := mustTable(t,
		[]string{"Id", "Area"},
		[][]string{
			{"3", "300"},
		})

	enc, err := Encode(train, test, "Id", "Price")
	if err != nil {
		t.Fatalf("Encode error: %v", err)
	}
	for _, name := range enc.FeatureNames {
		if strings.HasPrefix(name, "TrainOnly") {
			t.Fatalf("one-sided column survived encoding: %v", enc.FeatureNames)
		}
	}
	if len(enc.TrainFeatures[0]) != len(enc.TestFeatures[0]) {
		t.Fatalf("train width %d != test width %d", len(enc.TrainFeatures[0]), len(enc.TestFeatures[0]))
	}
	if len(enc.TrainFeatures[0]) != len(enc.FeatureNames) {
		t.Fatalf("matrix width %d != feature name count %d", len(enc.TrainFeatures[0]), len(enc.FeatureNames))
	}
}

// TestEncodeNumericWithMissingDropped: a numeric column with a hole cannot
// be standardized and is dropped from both matrices.
func TestEncodeNumericWithMissingDropped(t *testing.T) {
	train := mustTable(t,
		[]string{"Id", "Area", "Frontage", "Price"},
		[][]string{
			{"1", "100", "30", "1000"},
			{"2", "200", "NA", "2000"},
		})
	test := mustTable(t,
		[]string{"Id", "Area", "Frontage"},
		[][]string{
			{"3", "300", "50"},
		})

	enc, err := Encode(train, test, "Id", "Price")
	if err != nil {
		t.Fatalf("Encode error: %v", err)
	}
	if len(enc.FeatureNames) != 1 || enc.FeatureNames[0] != "Area" {
		t.Fatalf("expected only Area to survive, got %v", enc.FeatureNames)
	}
}

// TestEncodeDegenerateFeatureSet: dropping every column is an error, raised
// before any training could start.
func TestEncodeDegenerateFeatureSet(t *testing.T) {
	train := mustTable(t,
		[]string{"Id", "Frontage", "Price"},
		[][]string{
			{"1", "NA", "1000"},
			{"2", "40", "2000"},
		})
	test := mustTable(t,
		[]string{"Id", "Frontage"},
		[][]string{
			{"3", "50"},
		})

	if _, err := Encode(train, test, "Id", "Price"); err == nil {
		t.Fatalf("expected degenerate-feature-set error, got nil")
	}
}

// TestEncodeLabelsAndIDs: labels carry the target column verbatim and
// TestIDs preserve the test table's row order.
func TestEncodeLabelsAndIDs(t *testing.T) {
	train := mustTable(t,
		[]string{"Id", "Area", "Price"},
		[][]string{
			{"1", "100", "123500"},
			{"2", "200", "98000"},
		})
	test := mustTable(t,
		[]string{"Id", "Area"},
		[][]string{
			{"9", "300"},
			{"4", "400"},
		})

	enc, err := Encode(train, test, "Id", "Price")
	if err != nil {
		t.Fatalf("Encode error: %v", err)
	}
	if enc.Labels[0] != 123500 || enc.Labels[1] != 98000 {
		t.Fatalf("labels not taken verbatim: %v", enc.Labels)
	}
	if enc.TestIDs[0] != "9" || enc.TestIDs[1] != "4" {
		t.Fatalf("test ids out of order: %v", enc.TestIDs)
	}
}

// TestEncodeMissingTargetColumn fails fast before any encoding work.
func TestEncodeMissingTargetColumn(t *testing.T) {
	train := mustTable(t, []string{"Id", "Area"}, [][]string{{"1", "100"}})
	test := mustTable(t, []string{"Id", "Area"}, [][]string{{"2", "200"}})
	if _, err := Encode(train, test, "Id", "Price"); err == nil {
		t.Fatalf("expected error for missing target column, got nil")
	}
}
