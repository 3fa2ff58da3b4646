package models

// Ring is a maturity tier. A radar holds at most four rings; Order is the
// assignment order of first appearance in the row stream.
type Ring struct {
	// Name is the ring name exactly as seen in the source (trimmed).
	Name string `json:"name"`
	// Order is the tier index in [0,3], innermost first.
	Order int `json:"order"`
}
