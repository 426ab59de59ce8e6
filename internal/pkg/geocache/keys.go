package geocache

import "fmt"

// Cache TTLs in seconds. Survey geometry barely changes; routing
// restrictions do.
const (
	TTLGeocode        = 30 * 24 * 3600
	TTLSurveyFeatures = 90 * 24 * 3600
	TTLCrowdFeatures  = 30 * 24 * 3600
	TTLRouting        = 7 * 24 * 3600
)

// GeocodeKey keys a postcode lookup by the normalised postcode.
func GeocodeKey(postcode string) string {
	return "geocode:" + postcode
}

// FeatureKey keys a survey feature fetch by geometry kind ("area" or
// "line") and the grid search window, quantized to whole metres.
func FeatureKey(kind string, easting, northing, radiusM float64) string {
	return fmt.Sprintf("osfeatures:%s:%d:%d:%d", kind, int(easting), int(northing), int(radiusM))
}

// CrowdFeatureKey keys a crowd-sourced feature fetch by kind ("roads"
// or "areas") and the geographic search window, 5 dp (~1 m).
func CrowdFeatureKey(kind string, lat, lon, radiusM float64) string {
	return fmt.Sprintf("overpass:%s:%.5f:%.5f:%d", kind, lat, lon, int(radiusM))
}

// RoutingKey keys a restriction check by route endpoints (4 dp) and the
// vehicle envelope in transport units (cm and kg).
func RoutingKey(originLat, originLon, destLat, destLon float64, heightCm, widthCm, weightKg int) string {
	return fmt.Sprintf("here:%.4f,%.4f:%.4f,%.4f:h%d:w%d:wt%d",
		originLat, originLon, destLat, destLon, heightCm, widthCm, weightKg)
}
