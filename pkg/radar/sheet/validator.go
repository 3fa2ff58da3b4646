// Package sheet validates and normalizes raw tabular rows.
package sheet

import (
	"strings"

	"github.com/radarsheet/radarsheet-go/pkg/radar"
)

// Canonical column names.
const (
	ColumnName        = "name"
	ColumnRing        = "ring"
	ColumnQuadrant    = "quadrant"
	ColumnIsNew       = "isNew"
	ColumnTopic       = "topic"
	ColumnDescription = "description"
)

// RequiredColumns returns the default required column set. Topic is optional.
func RequiredColumns() []string {
	return []string{ColumnName, ColumnRing, ColumnQuadrant, ColumnIsNew, ColumnDescription}
}

// VerifyHeaders fails with a MalformedDataError unless header is a superset
// of required. Both checks are pure; callers must run VerifyHeaders and
// VerifyContent before sanitizing.
func VerifyHeaders(header []string, required []string) error {
	seen := make(map[string]bool, len(header))
	for _, h := range header {
		seen[strings.TrimSpace(h)] = true
	}
	var missing []string
	for _, col := range required {
		if !seen[col] {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return radar.NewMalformedDataError("missing required columns: %s", strings.Join(missing, ", "))
	}
	return nil
}

// VerifyContent fails with a MalformedDataError if the source has no data
// rows.
func VerifyContent(rowCount int) error {
	if rowCount == 0 {
		return radar.NewMalformedDataError("no data rows found")
	}
	return nil
}
