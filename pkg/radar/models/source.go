package models

// SourceKind identifies the acquisition strategy for a radar data source.
type SourceKind string

const (
	// KindCSV is a delimited file fetched over HTTP.
	KindCSV SourceKind = "csv"
	// KindJSON is a JSON array file fetched over HTTP.
	KindJSON SourceKind = "json"
	// KindWorkbook is a local xlsx workbook.
	KindWorkbook SourceKind = "workbook"
	// KindGoogleSheet is a spreadsheet read through the provider API,
	// anonymously first and authenticated on failure.
	KindGoogleSheet SourceKind = "google_sheet"
	// KindFormPrompt means no usable source was found and the entry form
	// should be shown.
	KindFormPrompt SourceKind = "form_prompt"
)

// Source is the resolved navigation context: which acquisition strategy to
// use and its coordinates.
type Source struct {
	Kind SourceKind
	// URL is set for CSV and JSON sources.
	URL string
	// Path is set for workbook sources.
	Path string
	// SheetID is set for Google Sheet sources.
	SheetID string
	// SheetName is the optionally requested tab.
	SheetName string
}
