package usecases

import (
	"fmt"
	"math"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"

	"github.com/Hamza-Xoho/digital-surveyor/internal/core/domain"
	"github.com/Hamza-Xoho/digital-surveyor/internal/pkg/geospatial"
)

const (
	// turningSearchRadiusM bounds which road polygons count as part of
	// the turning area around the junction.
	turningSearchRadiusM = 30.0
	// turningGridSize is the sampling resolution of the inscribed
	// circle approximation.
	turningGridSize = 20
	// circleSegments is the vertex count of the rendered circle.
	circleSegments = 32
)

// TurningService checks whether a vehicle can turn around on the paved
// area near the target junction. The largest inscribed circle of the
// road surface polygon is approximated by grid sampling and compared
// with the vehicle turning radius. Geometry is in grid metres.
type TurningService struct {
	gridSize int
}

func NewTurningService(gridSize int) *TurningService {
	if gridSize < 2 {
		gridSize = turningGridSize
	}
	return &TurningService{gridSize: gridSize}
}

// Assess evaluates the turning space for one vehicle. When no road
// surface polygon lies near the junction the check is reported as not
// assessed with an AMBER rating rather than a failure.
func (s *TurningService) Assess(areas *geojson.FeatureCollection, junction domain.GridPoint, vehicle domain.VehicleProfile) *domain.TurningAssessment {
	pt := orb.Point{junction.Easting, junction.Northing}

	polys := nearbyRoadPolygons(areas, pt)
	if len(polys) == 0 {
		return &domain.TurningAssessment{
			Assessed:        false,
			RequiredRadiusM: vehicle.TurningRadiusM,
			CanTurn:         true,
			Rating:          domain.RatingAmber,
			Detail:          "no road polygons found near junction, cannot assess turning",
		}
	}

	// Merging overlapping polygons properly needs a full boolean
	// overlay; the largest nearby polygon is a conservative stand-in
	// for the merged turning area.
	area := largestPolygon(polys)
	radius, centre := s.maxInscribedCircle(area)

	canTurn := radius >= vehicle.TurningRadiusM
	rating := domain.RatingGreen
	verdict := "sufficient"
	if !canTurn {
		rating = domain.RatingRed
		verdict = "INSUFFICIENT"
	}

	return &domain.TurningAssessment{
		Assessed:         true,
		AvailableRadiusM: radius,
		RequiredRadiusM:  vehicle.TurningRadiusM,
		CanTurn:          canTurn,
		Rating:           rating,
		Detail:           fmt.Sprintf("available %.2fm radius, required %.2fm: %s", radius, vehicle.TurningRadiusM, verdict),
		TurningCircle:    turningCircleFeature(centre, vehicle.TurningRadiusM, radius, canTurn),
	}
}

// nearbyRoadPolygons filters road and track surface polygons within the
// search radius of the junction.
func nearbyRoadPolygons(areas *geojson.FeatureCollection, junction orb.Point) []orb.Polygon {
	if areas == nil {
		return nil
	}
	var out []orb.Polygon
	for _, f := range areas.Features {
		group, _ := f.Properties[domain.DescriptiveGroupKey].(string)
		if !strings.Contains(group, "Road") && !strings.Contains(group, "Track") {
			continue
		}
		for _, poly := range featurePolygons(f) {
			if polygonDistance(poly, junction) <= turningSearchRadiusM {
				out = append(out, poly)
			}
		}
	}
	return out
}

func featurePolygons(f *geojson.Feature) []orb.Polygon {
	switch g := f.Geometry.(type) {
	case orb.Polygon:
		return []orb.Polygon{g}
	case orb.MultiPolygon:
		return g
	}
	return nil
}

// polygonDistance is the distance from a point to a polygon: zero when
// the point is inside, otherwise the distance to the nearest ring.
func polygonDistance(poly orb.Polygon, pt orb.Point) float64 {
	if planar.PolygonContains(poly, pt) {
		return 0
	}
	return ringDistance(poly, pt)
}

// ringDistance is the distance from a point to the nearest point on any
// of the polygon's rings.
func ringDistance(poly orb.Polygon, pt orb.Point) float64 {
	min := math.Inf(1)
	for _, ring := range poly {
		if len(ring) < 2 {
			continue
		}
		closest := geospatial.ClosestPoint(orb.LineString(ring), pt)
		if d := planar.Distance(pt, closest); d < min {
			min = d
		}
	}
	return min
}

func largestPolygon(polys []orb.Polygon) orb.Polygon {
	best := polys[0]
	bestArea := math.Abs(planar.Area(best))
	for _, p := range polys[1:] {
		if a := math.Abs(planar.Area(p)); a > bestArea {
			bestArea = a
			best = p
		}
	}
	return best
}

// maxInscribedCircle approximates the largest circle that fits inside
// the polygon by sampling a grid over its bounding box and keeping the
// interior point furthest from the boundary.
func (s *TurningService) maxInscribedCircle(poly orb.Polygon) (float64, orb.Point) {
	bound := poly.Bound()
	n := float64(s.gridSize)

	bestRadius := 0.0
	bestCentre, _ := planar.CentroidArea(poly)

	for i := 0; i < s.gridSize; i++ {
		for j := 0; j < s.gridSize; j++ {
			pt := orb.Point{
				bound.Min[0] + (bound.Max[0]-bound.Min[0])*(float64(i)+0.5)/n,
				bound.Min[1] + (bound.Max[1]-bound.Min[1])*(float64(j)+0.5)/n,
			}
			if !planar.PolygonContains(poly, pt) {
				continue
			}
			if d := ringDistance(poly, pt); d > bestRadius {
				bestRadius = d
				bestCentre = pt
			}
		}
	}
	return round2(bestRadius), bestCentre
}

// turningCircleFeature renders the required turning circle in
// geographic coordinates for map display.
func turningCircleFeature(centre orb.Point, requiredRadius, availableRadius float64, canTurn bool) *geojson.Feature {
	ring := make(orb.Ring, 0, circleSegments+1)
	for i := 0; i <= circleSegments; i++ {
		angle := 2 * math.Pi * float64(i) / circleSegments
		vertex := domain.GridPoint{
			Easting:  centre[0] + requiredRadius*math.Cos(angle),
			Northing: centre[1] + requiredRadius*math.Sin(angle),
		}
		geo, err := gridToGeo(vertex)
		if err != nil {
			return nil
		}
		ring = append(ring, geo)
	}

	f := geojson.NewFeature(orb.Polygon{ring})
	f.Properties = geojson.Properties{
		"radius_m":           requiredRadius,
		"available_radius_m": availableRadius,
		"can_turn":           canTurn,
	}
	return f
}
