package domain

import "github.com/paulmach/orb/geojson"

// TurningAssessment is the result of checking whether a vehicle can turn
// around using the paved area near a junction. Assessed=false means the
// check could not be evaluated, not that it passed.
type TurningAssessment struct {
	Assessed         bool             `json:"assessed"`
	AvailableRadiusM float64          `json:"available_radius_m"`
	RequiredRadiusM  float64          `json:"required_radius_m"`
	CanTurn          bool             `json:"can_turn"`
	Rating           Rating           `json:"rating"`
	Detail           string           `json:"detail"`
	TurningCircle    *geojson.Feature `json:"turning_circle,omitempty"`
}
