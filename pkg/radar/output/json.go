// Package output serializes the render handoff: the radar view-model on
// success, a state/message pair on failure.
package output

import (
	"encoding/json"
	"strings"

	"github.com/radarsheet/radarsheet-go/pkg/radar/models"
)

// RadarView is the success view-model handed to rendering.
type RadarView struct {
	Title string        `json:"title"`
	Radar *models.Radar `json:"radar"`
}

// ErrorView is the failure view-model: one of the closed display states plus
// a user-facing message.
type ErrorView struct {
	State   string `json:"state"`
	Message string `json:"message,omitempty"`
}

// ToJSON serializes a radar view.
func ToJSON(title string, r *models.Radar, pretty bool) ([]byte, error) {
	return marshal(RadarView{Title: title, Radar: r}, pretty)
}

// ErrorToJSON serializes an error view.
func ErrorToJSON(state, message string, pretty bool) ([]byte, error) {
	return marshal(ErrorView{State: state, Message: message}, pretty)
}

// DisplayTitle strips a trailing file extension from a source title:
// "radar.csv" displays as "radar", "My Radar" is unchanged.
func DisplayTitle(title string) string {
	lower := strings.ToLower(title)
	for _, ext := range []string{".csv", ".json"} {
		if strings.HasSuffix(lower, ext) {
			return title[:len(title)-len(ext)]
		}
	}
	return title
}

func marshal(v interface{}, pretty bool) ([]byte, error) {
	if pretty {
		return json.MarshalIndent(v, "", "  ")
	}
	return json.Marshal(v)
}
