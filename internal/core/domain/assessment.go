package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/paulmach/orb/geojson"
)

// Check names, in the fixed order the scoring engine evaluates them.
const (
	CheckRoadWidth         = "Road Width"
	CheckGradient          = "Gradient"
	CheckTurningSpace      = "Turning Space"
	CheckRouteRestrictions = "Route Restrictions"
)

// CheckResult is one named check for one vehicle. Value and Threshold are
// nil when the check was not backed by a measurement; a measured zero is
// a different thing from "not measured".
type CheckResult struct {
	Name      string   `json:"name"`
	Rating    Rating   `json:"rating"`
	Detail    string   `json:"detail"`
	Value     *float64 `json:"value,omitempty"`
	Threshold *float64 `json:"threshold,omitempty"`

	// Evidenced records whether the check was backed by real data.
	// It feeds the confidence score, not the rating.
	Evidenced bool `json:"-"`
}

// VehicleAssessment is the scored outcome for a single vehicle.
type VehicleAssessment struct {
	VehicleName    string        `json:"vehicle_name"`
	VehicleClass   string        `json:"vehicle_class"`
	OverallRating  Rating        `json:"overall_rating"`
	Confidence     float64       `json:"confidence"`
	Checks         []CheckResult `json:"checks"`
	Recommendation string        `json:"recommendation"`
}

// ProvenanceStatus describes how fully a pipeline stage was served.
type ProvenanceStatus string

const (
	StatusOK          ProvenanceStatus = "ok"
	StatusDegraded    ProvenanceStatus = "degraded"
	StatusUnavailable ProvenanceStatus = "unavailable"
)

// Provenance names, per pipeline stage, which provider answered and at
// what status.
type Provenance struct {
	Source string           `json:"source"`
	Status ProvenanceStatus `json:"status"`
	Note   string           `json:"note,omitempty"`
}

// Pipeline stage keys in the provenance map.
const (
	StageGeocoding    = "geocoding"
	StageRoadGeometry = "road_geometry"
	StageElevation    = "elevation"
	StageWidth        = "width_analysis"
	StageRestrictions = "route_restrictions"
)

// OverlayBundle carries the GeoJSON map overlays of an assessment, all in
// geographic coordinates.
type OverlayBundle struct {
	Roads             *geojson.FeatureCollection `json:"roads"`
	Buildings         *geojson.FeatureCollection `json:"buildings"`
	RoadLines         *geojson.FeatureCollection `json:"road_lines"`
	WidthMeasurements *geojson.FeatureCollection `json:"width_measurements"`
	GradientProfile   *geojson.FeatureCollection `json:"gradient_profile,omitempty"`
	TurningCircles    *geojson.FeatureCollection `json:"turning_circles,omitempty"`
}

// AssessmentResult is the complete outcome of one pipeline run.
type AssessmentResult struct {
	ID                 uuid.UUID             `json:"id"`
	Postcode           string                `json:"postcode"`
	Location           Location              `json:"location"`
	OverallRating      Rating                `json:"overall_rating"`
	VehicleAssessments []VehicleAssessment   `json:"vehicle_assessments"`
	Width              *WidthAnalysis        `json:"width_analysis,omitempty"`
	Gradient           *GradientAnalysis     `json:"gradient_analysis,omitempty"`
	DataSources        map[string]Provenance `json:"data_sources"`
	Overlays           OverlayBundle         `json:"geojson_overlays"`
	CreatedAt          time.Time             `json:"created_at"`
}
