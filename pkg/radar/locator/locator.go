// Package locator parses the navigation context into a data source.
package locator

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/radarsheet/radarsheet-go/pkg/radar/models"
)

var sheetIDPattern = regexp.MustCompile(`/spreadsheets/d/([a-zA-Z0-9-_]+)`)

// Parse resolves a navigation reference (a full URL or a bare query string)
// into a Source. A malformed or missing sheetId never fails; it falls
// through to the form prompt.
//
// Detection order matters: a file-extension match on the sheetId value takes
// precedence over the provider-domain check.
func Parse(reference string) models.Source {
	query := queryPart(reference)
	values, err := url.ParseQuery(query)
	if err != nil {
		return models.Source{Kind: models.KindFormPrompt}
	}

	sheetID := strings.TrimSpace(values.Get("sheetId"))
	sheetName := strings.TrimSpace(values.Get("sheetName"))
	if sheetID == "" {
		return models.Source{Kind: models.KindFormPrompt}
	}

	lower := strings.ToLower(sheetID)
	switch {
	case strings.HasSuffix(lower, ".csv"):
		return models.Source{Kind: models.KindCSV, URL: sheetID, SheetName: sheetName}
	case strings.HasSuffix(lower, ".json"):
		return models.Source{Kind: models.KindJSON, URL: sheetID, SheetName: sheetName}
	case strings.HasSuffix(lower, ".xlsx"):
		return models.Source{Kind: models.KindWorkbook, Path: sheetID, SheetName: sheetName}
	}

	if u, err := url.Parse(sheetID); err == nil && u.Scheme != "" && u.Host != "" {
		if isProviderHost(u.Host) {
			if m := sheetIDPattern.FindStringSubmatch(u.Path); m != nil {
				return models.Source{Kind: models.KindGoogleSheet, SheetID: m[1], SheetName: sheetName}
			}
		}
		// A URL on an unrecognized domain with no recognized extension is
		// not a usable source.
		return models.Source{Kind: models.KindFormPrompt}
	}

	// A bare token is taken as a spreadsheet identifier.
	return models.Source{Kind: models.KindGoogleSheet, SheetID: sheetID, SheetName: sheetName}
}

// queryPart extracts the query string from a reference that may be a full
// URL, a "?"-prefixed query, or a bare query string.
func queryPart(reference string) string {
	reference = strings.TrimSpace(reference)
	if i := strings.Index(reference, "?"); i >= 0 {
		return reference[i+1:]
	}
	return reference
}

func isProviderHost(host string) bool {
	host = strings.ToLower(host)
	return host == "google.com" || strings.HasSuffix(host, ".google.com")
}
