package domain

// FeatureSourceKind describes how a feature provider represents roads, which
// determines which width-measurement strategy applies.
type FeatureSourceKind string

const (
	// SourceSurveyEdges means features are surveyed kerb-edge lines whose
	// separation can be measured directly.
	SourceSurveyEdges FeatureSourceKind = "survey_edges"

	// SourceCrowdCentrelines means features are crowd-sourced road
	// centrelines with widths estimated from classification tags.
	SourceCrowdCentrelines FeatureSourceKind = "crowd_centrelines"
)

// Descriptive group values used to classify area and line features.
// Survey data carries these natively; the crowd-sourced adapter maps
// OSM tags onto the same vocabulary.
const (
	GroupRoadOrTrack    = "Road Or Track"
	GroupBuilding       = "Building"
	GroupPath           = "Path"
	GroupGeneralSurface = "General Surface"
)

// DescriptiveGroupKey is the feature property under which the
// classification tag is stored.
const DescriptiveGroupKey = "DescriptiveGroup"
