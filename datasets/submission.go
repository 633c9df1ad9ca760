package datasets

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
)

// WriteSubmission writes the identifier-to-prediction table as a two-column
// CSV: one row per test record, in the order the ids and predictions were
// produced. ids and predictions must be row-aligned.
func WriteSubmission(path, idHeader, predHeader string, ids []string, predictions []float32) error {
	if len(ids) != len(predictions) {
		return fmt.Errorf("ids and predictions row counts don't match: %d != %d", len(ids), len(predictions))
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create submission %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{idHeader, predHeader}); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for i, id := range ids {
		value := strconv.FormatFloat(float64(predictions[i]), 'f', -1, 32)
		if err := w.Write([]string{id, value}); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush submission: %w", err)
	}
	return nil
}
