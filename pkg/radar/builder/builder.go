// Package builder folds normalized records into the radar domain model.
package builder

import (
	"strings"
	"unicode"

	"github.com/radarsheet/radarsheet-go/pkg/radar"
	"github.com/radarsheet/radarsheet-go/pkg/radar/models"
)

// MaxRings is the hard bound on distinct rings per radar. Downstream
// rendering depends on it absolutely.
const MaxRings = 4

// Build constructs a Radar from normalized records plus the current tab name
// and its siblings.
//
// The ring-count check runs before any Quadrant or Blip is created, so a
// partially built model is never observable. Ring identity is exact on the
// trimmed raw string; quadrant identity is the lower-cased name with a
// capitalized display form.
func Build(records []models.BlipRecord, currentSheet string, alternativeSheets []string) (*models.Radar, error) {
	rings, ringByName, err := collectRings(records)
	if err != nil {
		return nil, err
	}

	var quadrants []*models.Quadrant
	quadrantByKey := make(map[string]*models.Quadrant)
	for _, rec := range records {
		key := strings.ToLower(rec.Quadrant)
		q, ok := quadrantByKey[key]
		if !ok {
			q = &models.Quadrant{Name: capitalize(rec.Quadrant)}
			quadrantByKey[key] = q
			quadrants = append(quadrants, q)
		}
		q.Add(&models.Blip{
			Name:        rec.Name,
			Ring:        ringByName[rec.Ring],
			IsNew:       rec.IsNew,
			Topic:       rec.Topic,
			Description: rec.Description,
		})
	}

	return &models.Radar{
		Quadrants:         quadrants,
		Rings:             rings,
		CurrentSheetName:  currentSheet,
		AlternativeSheets: alternativeSheets,
	}, nil
}

// collectRings assigns each distinct ring name an order index by first
// appearance, failing when the distinct count exceeds MaxRings.
func collectRings(records []models.BlipRecord) ([]*models.Ring, map[string]*models.Ring, error) {
	var rings []*models.Ring
	byName := make(map[string]*models.Ring)
	for _, rec := range records {
		if _, ok := byName[rec.Ring]; ok {
			continue
		}
		if len(rings) == MaxRings {
			return nil, nil, radar.NewMalformedDataError(
				"more than %d distinct ring names found", MaxRings)
		}
		ring := &models.Ring{Name: rec.Ring, Order: len(rings)}
		byName[rec.Ring] = ring
		rings = append(rings, ring)
	}
	return rings, byName, nil
}

// capitalize upper-cases the first rune and lower-cases the rest.
func capitalize(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(strings.ToLower(s))
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
