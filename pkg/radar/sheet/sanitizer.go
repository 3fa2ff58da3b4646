package sheet

import (
	"strings"

	"github.com/radarsheet/radarsheet-go/pkg/radar/models"
)

// Sanitize maps a row already keyed by header name into a normalized record.
// Every field is trimmed. IsNew is true only when the trimmed value
// lower-cases to exactly "true"; anything else, including "yes", is false.
//
// Sanitization assumes validated shape and produces blank fields, not
// failures, for missing optional columns.
func Sanitize(row map[string]string) models.BlipRecord {
	return models.BlipRecord{
		Name:        strings.TrimSpace(row[ColumnName]),
		Quadrant:    strings.TrimSpace(row[ColumnQuadrant]),
		Ring:        strings.TrimSpace(row[ColumnRing]),
		IsNew:       isTrue(row[ColumnIsNew]),
		Topic:       strings.TrimSpace(row[ColumnTopic]),
		Description: strings.TrimSpace(row[ColumnDescription]),
	}
}

// SanitizeFromValues re-pairs a positional value sequence to labels using
// the header row by index, then applies the same normalization as Sanitize.
// Protected-sheet reads deliver rows in this shape.
func SanitizeFromValues(values []string, header []string) models.BlipRecord {
	row := make(map[string]string, len(header))
	for i, h := range header {
		if i >= len(values) {
			break
		}
		row[strings.TrimSpace(h)] = values[i]
	}
	return Sanitize(row)
}

func isTrue(s string) bool {
	return strings.ToLower(strings.TrimSpace(s)) == "true"
}
