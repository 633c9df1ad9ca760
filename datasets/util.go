package datasets

import (
	"fmt"
	"strconv"
	"strings"
)

// isMissing reports whether a raw CSV cell counts as a missing value.
// Empty cells and the conventional "NA" marker are missing.
func isMissing(s string) bool {
	s = strings.TrimSpace(s)
	return s == "" || s == "NA"
}

func parseFloat32(s string) (float32, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty string")
	}
	v, err := strconv.ParseFloat(s, 32)
	if err != nil {
		return 0, err
	}
	return float32(v), nil
}

func parseFloat64(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty string")
	}
	return strconv.ParseFloat(s, 64)
}

// isNumeric reports whether the cell parses as a number.
func isNumeric(s string) bool {
	_, err := parseFloat64(s)
	return err == nil
}
