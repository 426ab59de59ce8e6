package usecases

import (
	"math"
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"

	"github.com/Hamza-Xoho/digital-surveyor/internal/core/domain"
	"github.com/Hamza-Xoho/digital-surveyor/internal/pkg/geospatial"
)

// Edge pairing and fit tuning. Separation bounds reflect the typical UK
// road width range.
const (
	bearingToleranceDeg = 15.0
	minEdgeSeparationM  = 2.0
	maxEdgeSeparationM  = 15.0
	minEdgeLengthM      = 3.0
	clearanceMarginM    = 0.5
)

// Highway classes a goods vehicle can plausibly drive on. Footways and
// cycleways never carry the fleet.
var vehicleHighways = map[string]bool{
	"motorway": true, "motorway_link": true,
	"trunk": true, "trunk_link": true,
	"primary": true, "primary_link": true,
	"secondary": true, "secondary_link": true,
	"tertiary": true, "tertiary_link": true,
	"residential": true, "living_street": true,
	"unclassified": true, "service": true,
}

// WidthService computes road widths. Surveyed kerb-edge lines are
// measured directly by pairing opposing edges and sampling perpendicular
// separations; crowd-sourced centrelines fall back to tagged or
// class-estimated widths. All geometry is in grid metres.
type WidthService struct {
	sampleCount int
}

// NewWidthService creates the service. sampleCount is the number of
// width samples taken along each edge pair.
func NewWidthService(sampleCount int) *WidthService {
	if sampleCount < 2 {
		sampleCount = 20
	}
	return &WidthService{sampleCount: sampleCount}
}

// AnalyzeEdges measures widths between opposing kerb-edge line features.
func (s *WidthService) AnalyzeEdges(fc *geojson.FeatureCollection) *domain.WidthAnalysis {
	if fc == nil || len(fc.Features) == 0 {
		return &domain.WidthAnalysis{Reason: "no line features available for width computation"}
	}

	pairs := findOpposingEdgePairs(fc)
	if len(pairs) == 0 {
		return &domain.WidthAnalysis{Reason: "could not find opposing road edge pairs"}
	}

	var measurements []domain.WidthMeasurement
	for _, p := range pairs {
		measurements = append(measurements, s.samplePerpendicularWidths(p.left, p.right)...)
	}
	if len(measurements) == 0 {
		return &domain.WidthAnalysis{Reason: "no width measurements from edge pairs"}
	}
	return aggregate(measurements, false)
}

// AnalyzeCentrelines estimates widths from centreline features carrying
// a width_m property. Each vehicle-capable road contributes one
// pseudo-measurement at its midpoint; when no feature matches a
// vehicle-capable class, all features count.
func (s *WidthService) AnalyzeCentrelines(fc *geojson.FeatureCollection) *domain.WidthAnalysis {
	if fc == nil || len(fc.Features) == 0 {
		return &domain.WidthAnalysis{Reason: "no road features available", Estimated: true}
	}

	roads := make([]*geojson.Feature, 0, len(fc.Features))
	for _, f := range fc.Features {
		if highway, _ := f.Properties["highway"].(string); vehicleHighways[highway] {
			roads = append(roads, f)
		}
	}
	if len(roads) == 0 {
		roads = fc.Features
	}

	var measurements []domain.WidthMeasurement
	for _, f := range roads {
		line, ok := f.Geometry.(orb.LineString)
		if !ok || len(line) < 2 {
			continue
		}
		width, ok := featureWidth(f)
		if !ok {
			continue
		}
		mid := geospatial.Midpoint(line)
		pt := domain.GridPoint{Easting: mid[0], Northing: mid[1]}
		measurements = append(measurements, domain.WidthMeasurement{
			Fraction: 0.5,
			WidthM:   round2(width),
			Left:     pt,
			Right:    pt,
		})
	}
	if len(measurements) == 0 {
		return &domain.WidthAnalysis{Reason: "no width data from road features", Estimated: true}
	}
	return aggregate(measurements, true)
}

// CheckFit checks a vehicle envelope against the narrowest measured
// width. Clearance of at least the margin is GREEN, any non-negative
// clearance AMBER, negative RED.
func (s *WidthService) CheckFit(roadMinWidthM float64, vehicle domain.VehicleProfile) domain.WidthFit {
	total := vehicle.TotalWidthM()
	clearance := roadMinWidthM - total

	var rating domain.Rating
	switch {
	case clearance >= clearanceMarginM:
		rating = domain.RatingGreen
	case clearance >= 0:
		rating = domain.RatingAmber
	default:
		rating = domain.RatingRed
	}

	return domain.WidthFit{
		Fits:            clearance >= 0,
		TotalVehicleM:   round2(total),
		RequiredWidthM:  round2(total + clearanceMarginM),
		AvailableWidthM: round2(roadMinWidthM),
		ClearanceM:      round2(clearance),
		Rating:          rating,
	}
}

// MeasurementLines renders width measurements as geographic LineString
// features for map display.
func (s *WidthService) MeasurementLines(analysis *domain.WidthAnalysis) *geojson.FeatureCollection {
	out := geojson.NewFeatureCollection()
	if analysis == nil {
		return out
	}
	for _, m := range analysis.Measurements {
		left, errL := gridToGeo(m.Left)
		right, errR := gridToGeo(m.Right)
		if errL != nil || errR != nil {
			continue
		}
		f := geojson.NewFeature(orb.LineString{left, right})
		f.Properties = geojson.Properties{
			"width_m":  m.WidthM,
			"fraction": m.Fraction,
		}
		out.Append(f)
	}
	return out
}

type edgePair struct {
	left, right orb.LineString
}

// findOpposingEdgePairs pairs lines that look like the two kerb edges
// of the same road: roughly parallel bearings, midpoints separated by a
// plausible road width. Greedy first-fit in feature order; each line
// joins at most one pair.
func findOpposingEdgePairs(fc *geojson.FeatureCollection) []edgePair {
	type candidate struct {
		line    orb.LineString
		bearing float64
		mid     orb.Point
	}

	var lines []candidate
	for _, f := range fc.Features {
		line, ok := f.Geometry.(orb.LineString)
		if !ok || len(line) < 2 {
			continue
		}
		if planar.Length(line) < minEdgeLengthM {
			continue
		}
		lines = append(lines, candidate{
			line:    line,
			bearing: geospatial.LineBearing(line),
			mid:     geospatial.Midpoint(line),
		})
	}

	var pairs []edgePair
	used := make(map[int]bool)

	for i, a := range lines {
		if used[i] {
			continue
		}
		best := -1
		bestDist := math.Inf(1)

		for j := i + 1; j < len(lines); j++ {
			if used[j] {
				continue
			}
			b := lines[j]
			if geospatial.BearingDiff(a.bearing, b.bearing) > bearingToleranceDeg {
				continue
			}
			dist := planar.Distance(a.mid, b.mid)
			if dist >= minEdgeSeparationM && dist <= maxEdgeSeparationM && dist < bestDist {
				bestDist = dist
				best = j
			}
		}

		if best >= 0 {
			pairs = append(pairs, edgePair{left: a.line, right: lines[best].line})
			used[i] = true
			used[best] = true
		}
	}
	return pairs
}

// samplePerpendicularWidths walks the left edge at even intervals and
// measures the distance to the nearest point on the right edge.
func (s *WidthService) samplePerpendicularWidths(left, right orb.LineString) []domain.WidthMeasurement {
	out := make([]domain.WidthMeasurement, 0, s.sampleCount)
	for i := 0; i < s.sampleCount; i++ {
		frac := float64(i) / float64(s.sampleCount-1)
		ptLeft := geospatial.PointAlong(left, frac)
		ptRight := geospatial.ClosestPoint(right, ptLeft)

		out = append(out, domain.WidthMeasurement{
			Fraction: round3(frac),
			WidthM:   round2(planar.Distance(ptLeft, ptRight)),
			Left:     domain.GridPoint{Easting: ptLeft[0], Northing: ptLeft[1]},
			Right:    domain.GridPoint{Easting: ptRight[0], Northing: ptRight[1]},
		})
	}
	return out
}

func aggregate(measurements []domain.WidthMeasurement, estimated bool) *domain.WidthAnalysis {
	widths := make([]float64, len(measurements))
	sum := 0.0
	for i, m := range measurements {
		widths[i] = m.WidthM
		sum += m.WidthM
	}
	sort.Float64s(widths)

	// Pinch points are the narrowest decile of measurements.
	threshold := widths[maxInt(1, len(widths)/10)-1]
	var pinches []domain.PinchPoint
	for _, m := range measurements {
		if m.WidthM <= threshold {
			pinches = append(pinches, domain.PinchPoint{Location: m.Left, WidthM: m.WidthM})
		}
	}

	return &domain.WidthAnalysis{
		MinWidthM:    round2(widths[0]),
		MaxWidthM:    round2(widths[len(widths)-1]),
		MeanWidthM:   round2(sum / float64(len(measurements))),
		SampleCount:  len(measurements),
		PinchPoints:  pinches,
		Measurements: measurements,
		Estimated:    estimated,
	}
}

func featureWidth(f *geojson.Feature) (float64, bool) {
	switch v := f.Properties["width_m"].(type) {
	case float64:
		return v, v > 0
	case int:
		return float64(v), v > 0
	}
	return 0, false
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }

func round3(v float64) float64 { return math.Round(v*1000) / 1000 }

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
