package domain

// RestrictionType buckets a routing notice into a physical constraint
// category.
type RestrictionType string

const (
	RestrictionHeight RestrictionType = "height"
	RestrictionWeight RestrictionType = "weight"
	RestrictionWidth  RestrictionType = "width"
)

// Restriction is one truck-routing restriction found on the approach route.
type Restriction struct {
	Type   RestrictionType `json:"type"`
	Detail string          `json:"detail"`
}

// RestrictionResult is the outcome of a truck-routing restriction check
// for a single vehicle. Absence of data is not evidence of absence of
// restriction: an unreachable provider yields AMBER, never GREEN.
type RestrictionResult struct {
	RouteFound   bool          `json:"route_found"`
	Restrictions []Restriction `json:"restrictions"`
	Warnings     []string      `json:"warnings"`
	Rating       Rating        `json:"rating"`
}
