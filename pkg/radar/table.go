package radar

// TableData is the payload every tabular source hands to validation: the
// spreadsheet title, the header row, the data rows, and the names of sibling
// tabs discovered alongside the requested one.
//
// Rows arrive in one of two shapes depending on the acquisition path.
// Public reads deliver rows already keyed by header name (Named); protected
// reads deliver positional value sequences without attached labels (Values).
// Exactly one of the two is populated.
type TableData struct {
	// Title is the source's own title (file name or spreadsheet title).
	Title string
	// Header is the ordered header row.
	Header []string
	// Named holds rows keyed by header name.
	Named []map[string]string
	// Values holds positional rows, paired to Header by index.
	Values [][]string
	// CurrentSheet is the tab the rows came from.
	CurrentSheet string
	// SheetNames lists all discovered tabs, including the current one.
	SheetNames []string
}

// RowCount returns the number of data rows regardless of shape.
func (t *TableData) RowCount() int {
	if t.Named != nil {
		return len(t.Named)
	}
	return len(t.Values)
}
