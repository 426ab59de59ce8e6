package domain

// Elevation is an elevation sample that may be unavailable. A missing
// sample is skipped by the gradient analysis, never zero-filled.
type Elevation struct {
	Value float64
	Valid bool
}

// GradientSample is one point of a gradient profile. Samples are ordered
// by cumulative distance, which is monotonically non-decreasing.
type GradientSample struct {
	DistanceM   float64  `json:"distance_m"`
	ElevationM  float64  `json:"elevation_m"`
	GradientPct float64  `json:"gradient_pct"`
	Point       GeoPoint `json:"point"`
}

// SteepSegment is a maximal run of consecutive samples whose gradient
// exceeds the steep threshold.
type SteepSegment struct {
	StartM      float64 `json:"start_m"`
	EndM        float64 `json:"end_m"`
	GradientPct float64 `json:"gradient_pct"`
}

// GradientAnalysis is the gradient profile of an approach path.
type GradientAnalysis struct {
	Samples         []GradientSample `json:"samples"`
	MaxGradientPct  float64          `json:"max_gradient_pct"`
	MeanGradientPct float64          `json:"mean_gradient_pct"`
	SteepSegments   []SteepSegment   `json:"steep_segments"`
	Reason          string           `json:"reason,omitempty"`
}

// Measured reports whether usable gradient data was produced.
func (g *GradientAnalysis) Measured() bool {
	return g != nil && g.Reason == "" && len(g.Samples) > 0
}
