package domain

// WidthMeasurement is one perpendicular width sample between a pair of
// opposing road edges. Left and Right are grid coordinates.
type WidthMeasurement struct {
	Fraction float64   `json:"fraction"`
	WidthM   float64   `json:"width_m"`
	Left     GridPoint `json:"left_point"`
	Right    GridPoint `json:"right_point"`
}

// PinchPoint marks a location in the narrowest decile of measurements.
type PinchPoint struct {
	Location GridPoint `json:"location"`
	WidthM   float64   `json:"width_m"`
}

// WidthAnalysis aggregates width measurements for a query area.
// Reason is set when no measurement could be made; callers must treat
// that as "width unknown", not as zero width.
type WidthAnalysis struct {
	MinWidthM    float64            `json:"min_width_m"`
	MaxWidthM    float64            `json:"max_width_m"`
	MeanWidthM   float64            `json:"mean_width_m"`
	SampleCount  int                `json:"sample_count"`
	PinchPoints  []PinchPoint       `json:"pinch_points"`
	Measurements []WidthMeasurement `json:"measurements"`
	Estimated    bool               `json:"estimated"`
	Reason       string             `json:"reason,omitempty"`
}

// Measured reports whether the analysis produced usable width data.
func (w *WidthAnalysis) Measured() bool {
	return w != nil && w.Reason == "" && w.MinWidthM > 0
}

// WidthFit is the result of checking a vehicle envelope against the
// narrowest measured width.
type WidthFit struct {
	Fits            bool    `json:"fits"`
	TotalVehicleM   float64 `json:"total_vehicle_width_m"`
	RequiredWidthM  float64 `json:"required_width_m"`
	AvailableWidthM float64 `json:"available_width_m"`
	ClearanceM      float64 `json:"clearance_m"`
	Rating          Rating  `json:"rating"`
}
