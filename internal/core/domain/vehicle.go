package domain

// VehicleProfile is the physical envelope of a vehicle class. Immutable
// reference data for an assessment run.
type VehicleProfile struct {
	Name           string  `json:"name"`
	Class          string  `json:"vehicle_class"`
	WidthM         float64 `json:"width_m"`
	LengthM        float64 `json:"length_m"`
	HeightM        float64 `json:"height_m"`
	WeightKg       int     `json:"weight_kg"`
	TurningRadiusM float64 `json:"turning_radius_m"`
	MirrorWidthM   float64 `json:"mirror_width_m"`
}

// TotalWidthM is the body width plus both mirrors.
func (v VehicleProfile) TotalWidthM() float64 {
	return v.WidthM + 2*v.MirrorWidthM
}
