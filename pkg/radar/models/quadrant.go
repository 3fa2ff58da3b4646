package models

// Quadrant is a top-level category grouping blips. It is created on first
// reference and only appended to afterwards.
type Quadrant struct {
	// Name is the capitalized display name.
	Name string `json:"name"`
	// Blips are the items in this quadrant, in input order.
	Blips []*Blip `json:"blips"`
}

// Add appends a blip to the quadrant.
func (q *Quadrant) Add(b *Blip) {
	q.Blips = append(q.Blips, b)
}
