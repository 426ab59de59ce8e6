package ports

import (
	"context"

	"github.com/paulmach/orb/geojson"

	"github.com/Hamza-Xoho/digital-surveyor/internal/core/domain"
)

// Geocoder resolves a UK postcode to coordinates.
type Geocoder interface {
	// Geocode returns the location for a postcode. It fails with
	// domain.ErrInvalidPostcode for malformed input and
	// domain.ErrPostcodeNotFound for unknown postcodes.
	Geocode(ctx context.Context, postcode string) (*domain.Location, error)
}

// FeatureProvider supplies road-edge lines and ground-area polygons around
// a point. An empty collection is a valid, non-error result. Geometry is
// returned in grid coordinates.
type FeatureProvider interface {
	// Name identifies the provider in provenance records.
	Name() string

	// Kind reports how the provider represents roads, which selects the
	// width-measurement strategy.
	Kind() domain.FeatureSourceKind

	// Configured reports whether the provider has the credentials or
	// resources it needs. Unconfigured providers are skipped by the
	// fallback chain.
	Configured() bool

	FetchAreaFeatures(ctx context.Context, loc domain.Location, radius float64) (*geojson.FeatureCollection, error)
	FetchLineFeatures(ctx context.Context, loc domain.Location, radius float64) (*geojson.FeatureCollection, error)
}

// ElevationProvider supplies elevation at a coordinate or along a path.
// Unavailable samples are reported as such, never fabricated.
type ElevationProvider interface {
	Name() string

	// Resolution describes the vertical data resolution for provenance
	// records (e.g. "1m", "~30m (SRTM)").
	Resolution() string

	Configured() bool

	// ElevationAt samples elevation at a single point.
	ElevationAt(ctx context.Context, pt domain.PathPoint) (domain.Elevation, error)

	// ElevationsAlong samples elevation for each point of a path. The
	// returned slice always has one entry per input point.
	ElevationsAlong(ctx context.Context, path []domain.PathPoint) ([]domain.Elevation, error)
}

// RoutingProvider checks truck-specific restrictions along an approach
// route for a vehicle envelope.
type RoutingProvider interface {
	Name() string
	Configured() bool

	CheckRestrictions(ctx context.Context, origin, destination domain.GeoPoint, vehicle domain.VehicleProfile) (*domain.RestrictionResult, error)
}

// VehicleCatalog lists the vehicle profiles to assess. Static reference
// data, injected rather than read from package state.
type VehicleCatalog interface {
	// ListVehicles returns profiles, optionally filtered by class name.
	// An empty filter returns the whole catalog.
	ListVehicles(classes []string) []domain.VehicleProfile
}
