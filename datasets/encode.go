package datasets

import (
	"fmt"
	"math"
	"sort"
)

// MissingLevel is the indicator name used for missing values when a
// categorical column is expanded.
const MissingLevel = "<missing>"

// Encoded is the result of running the feature encoder over a train/test
// table pair. The two feature matrices share the same column set and column
// order; FeatureNames describes that shared layout.
type Encoded struct {
	// TrainFeatures has one row per train record, TestFeatures one row per
	// test record. Both have len(FeatureNames) columns.
	TrainFeatures [][]float32
	TestFeatures  [][]float32

	// Labels holds the train target column verbatim, row-aligned with
	// TrainFeatures. Values are assumed strictly positive (prices).
	Labels []float32

	// FeatureNames names the encoded columns: a numeric column keeps its
	// name, an indicator column is "column=level".
	FeatureNames []string

	// TestIDs holds the test identifier column in original row order, for
	// pairing with predictions at export time.
	TestIDs []string
}

type columnKind int

const (
	colDropped columnKind = iota
	colNumeric
	colCategorical
)

// columnPlan is the per-column outcome of the first encoding pass: the
// statistics (numeric) or vocabulary (categorical) collected over the
// combined train+test rows, fixed before any row is expanded.
type columnPlan struct {
	name string
	kind columnKind

	// numeric columns
	mean, std float64

	// categorical columns: sorted distinct levels, MissingLevel last
	levels   []string
	levelIdx map[string]int
}

// Encode turns a train/test RawTable pair into aligned feature matrices and
// the label vector. idColumn and targetColumn are excluded from the feature
// set; targetColumn must exist in the train table and becomes Labels.
//
// Feature columns are the train/test intersection; a column present in only
// one table is dropped from both. For each shared column, one pass over the
// combined rows of both tables decides its treatment:
//
//   - every value numeric: standardized to zero mean and unit variance using
//     the combined statistics (a zero-variance column becomes all zeros);
//   - any text value: expanded into one 0/1 indicator per distinct observed
//     value plus an explicit missing indicator;
//   - numeric but with missing entries, or entirely missing: dropped, since
//     standardization cannot resolve the missing cells.
//
// A second pass then expands every row against the fixed plans, so train and
// test rows are encoded identically by construction.
func Encode(train, test *RawTable, idColumn, targetColumn string) (*Encoded, error) {
	if train == nil || test == nil {
		return nil, fmt.Errorf("train and test tables are both required")
	}
	if !train.HasColumn(targetColumn) {
		return nil, fmt.Errorf("train table has no target column %q", targetColumn)
	}
	if !test.HasColumn(idColumn) {
		return nil, fmt.Errorf("test table has no identifier column %q", idColumn)
	}

	// Shared feature columns, in train header order.
	var shared []string
	for _, name := range train.Columns {
		if name == idColumn || name == targetColumn {
			continue
		}
		if test.HasColumn(name) {
			shared = append(shared, name)
		}
	}

	// Pass one: fix a plan per shared column from the combined rows.
	plans := make([]columnPlan, 0, len(shared))
	width := 0
	for _, name := range shared {
		plan := planColumn(name, train, test)
		switch plan.kind {
		case colNumeric:
			width++
		case colCategorical:
			width += len(plan.levels)
		}
		plans = append(plans, plan)
	}
	if width == 0 {
		return nil, fmt.Errorf("no usable feature columns after encoding %d shared columns", len(shared))
	}

	names := make([]string, 0, width)
	for _, plan := range plans {
		switch plan.kind {
		case colNumeric:
			names = append(names, plan.name)
		case colCategorical:
			for _, level := range plan.levels {
				names = append(names, plan.name+"="+level)
			}
		}
	}

	// Pass two: expand every row against the fixed plans.
	trainFeats := make([][]float32, train.Len())
	for r := range trainFeats {
		trainFeats[r] = encodeRow(train, r, plans, width)
	}
	testFeats := make([][]float32, test.Len())
	for r := range testFeats {
		testFeats[r] = encodeRow(test, r, plans, width)
	}

	labels := make([]float32, train.Len())
	for r := range labels {
		v, err := parseFloat32(train.cell(r, targetColumn))
		if err != nil {
			return nil, fmt.Errorf("train row %d: bad target value %q: %w", r, train.cell(r, targetColumn), err)
		}
		labels[r] = v
	}

	ids, err := test.Column(idColumn)
	if err != nil {
		return nil, err
	}

	return &Encoded{
		TrainFeatures: trainFeats,
		TestFeatures:  testFeats,
		Labels:        labels,
		FeatureNames:  names,
		TestIDs:       ids,
	}, nil
}

// planColumn inspects one shared column across both tables and decides how
// it will be encoded.
func planColumn(name string, train, test *RawTable) columnPlan {
	var nums []float64
	levelSet := make(map[string]bool)
	missing, text := 0, 0

	scan := func(t *RawTable) {
		for r := 0; r < t.Len(); r++ {
			cell := t.cell(r, name)
			switch {
			case isMissing(cell):
				missing++
			case isNumeric(cell):
				v, _ := parseFloat64(cell)
				nums = append(nums, v)
				levelSet[cell] = true
			default:
				text++
				levelSet[cell] = true
			}
		}
	}
	scan(train)
	scan(test)

	if text > 0 {
		// Categorical: numeric-looking cells become levels like any other
		// value, and missing gets its own indicator.
		levels := make([]string, 0, len(levelSet)+1)
		for level := range levelSet {
			levels = append(levels, level)
		}
		sort.Strings(levels)
		levels = append(levels, MissingLevel)
		idx := make(map[string]int, len(levels))
		for i, level := range levels {
			idx[level] = i
		}
		return columnPlan{name: name, kind: colCategorical, levels: levels, levelIdx: idx}
	}

	if len(nums) == 0 || missing > 0 {
		// Entirely missing, or numeric with holes that standardization
		// cannot fill.
		return columnPlan{name: name, kind: colDropped}
	}

	mean := 0.0
	for _, v := range nums {
		mean += v
	}
	mean /= float64(len(nums))
	std := 0.0
	if len(nums) > 1 {
		for _, v := range nums {
			d := v - mean
			std += d * d
		}
		std = math.Sqrt(std / float64(len(nums)-1))
	}
	return columnPlan{name: name, kind: colNumeric, mean: mean, std: std}
}

// encodeRow expands one table row against the fixed column plans.
func encodeRow(t *RawTable, row int, plans []columnPlan, width int) []float32 {
	out := make([]float32, 0, width)
	for _, plan := range plans {
		cell := t.cell(row, plan.name)
		switch plan.kind {
		case colNumeric:
			if plan.std == 0 {
				out = append(out, 0)
				continue
			}
			v, _ := parseFloat64(cell)
			out = append(out, float32((v-plan.mean)/plan.std))
		case colCategorical:
			vec := make([]float32, len(plan.levels))
			if isMissing(cell) {
				vec[len(vec)-1] = 1
			} else {
				vec[plan.levelIdx[cell]] = 1
			}
			out = append(out, vec...)
		}
	}
	return out
}
