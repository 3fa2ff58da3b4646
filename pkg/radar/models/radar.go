package models

// Radar is the aggregate root handed to the rendering collaborator.
// It is immutable once constructed.
type Radar struct {
	// Quadrants holds at most one quadrant per distinct name, in order of
	// first appearance.
	Quadrants []*Quadrant `json:"quadrants"`
	// Rings holds the distinct rings in assignment order.
	Rings []*Ring `json:"rings"`
	// CurrentSheetName is the data tab this radar was built from.
	CurrentSheetName string `json:"current_sheet_name,omitempty"`
	// AlternativeSheets lists sibling data tabs the user could switch to.
	AlternativeSheets []string `json:"alternative_sheets,omitempty"`
}

// BlipCount returns the total number of blips across all quadrants.
func (r *Radar) BlipCount() int {
	n := 0
	for _, q := range r.Quadrants {
		n += len(q.Blips)
	}
	return n
}
