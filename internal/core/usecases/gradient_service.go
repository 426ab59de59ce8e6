package usecases

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/Hamza-Xoho/digital-surveyor/internal/core/domain"
	"github.com/Hamza-Xoho/digital-surveyor/internal/pkg/geospatial"
)

// steepThresholdPct marks a sample as part of a steep segment
// regardless of vehicle class.
const steepThresholdPct = 5.0

// gradientThresholds are per-class amber/red boundaries in percent.
// Heavier vehicles tolerate shallower slopes.
type gradientThresholds struct {
	amber float64
	red   float64
}

var classThresholds = map[string]gradientThresholds{
	"pantechnicon_18t": {amber: 5, red: 8},
	"truck_7_5t":       {amber: 6, red: 10},
}

var defaultThresholds = gradientThresholds{amber: 8, red: 12}

// GradientService builds gradient profiles along an approach path and
// rates them against per-class slope limits.
type GradientService struct{}

func NewGradientService() *GradientService {
	return &GradientService{}
}

// BuildProfile computes the gradient profile of a path from elevation
// samples. Invalid elevations are skipped; each gradient is computed
// against the previous valid sample, so gaps widen the baseline rather
// than producing spikes.
func (s *GradientService) BuildProfile(path []domain.PathPoint, elevations []domain.Elevation) *domain.GradientAnalysis {
	if len(path) != len(elevations) {
		return &domain.GradientAnalysis{Reason: "elevation count does not match path"}
	}

	var samples []domain.GradientSample
	cumulative := 0.0
	for i, pt := range path {
		if i > 0 {
			cumulative += geospatial.Haversine(
				orb.Point{path[i-1].Geo.Lon, path[i-1].Geo.Lat},
				orb.Point{pt.Geo.Lon, pt.Geo.Lat},
			)
		}
		if !elevations[i].Valid {
			continue
		}

		gradient := 0.0
		if n := len(samples); n > 0 {
			prev := samples[n-1]
			if run := cumulative - prev.DistanceM; run > 0 {
				rise := elevations[i].Value - prev.ElevationM
				gradient = abs(rise/run) * 100
			}
		}
		samples = append(samples, domain.GradientSample{
			DistanceM:   round2(cumulative),
			ElevationM:  round2(elevations[i].Value),
			GradientPct: round2(gradient),
			Point:       pt.Geo,
		})
	}

	if len(samples) < 2 {
		return &domain.GradientAnalysis{Reason: "insufficient elevation data along approach path"}
	}

	maxG, sum, count := 0.0, 0.0, 0
	for _, sm := range samples {
		if sm.GradientPct > 0 {
			sum += sm.GradientPct
			count++
			if sm.GradientPct > maxG {
				maxG = sm.GradientPct
			}
		}
	}
	mean := 0.0
	if count > 0 {
		mean = sum / float64(count)
	}

	return &domain.GradientAnalysis{
		Samples:         samples,
		MaxGradientPct:  round2(maxG),
		MeanGradientPct: round2(mean),
		SteepSegments:   steepSegments(samples),
	}
}

// steepSegments extracts maximal runs of samples above the steep
// threshold. A run closes at the first sample back at or below it.
func steepSegments(samples []domain.GradientSample) []domain.SteepSegment {
	var segments []domain.SteepSegment
	start := -1
	peak := 0.0

	flush := func(endIdx int) {
		if start < 0 {
			return
		}
		segments = append(segments, domain.SteepSegment{
			StartM:      samples[start].DistanceM,
			EndM:        samples[endIdx].DistanceM,
			GradientPct: round2(peak),
		})
		start = -1
		peak = 0
	}

	for i, sm := range samples {
		if sm.GradientPct > steepThresholdPct {
			if start < 0 {
				start = i
			}
			if sm.GradientPct > peak {
				peak = sm.GradientPct
			}
		} else {
			flush(i - 1)
		}
	}
	flush(len(samples) - 1)
	return segments
}

// Classify rates the profile's maximum gradient against the vehicle
// class limits. Values at a boundary stay in the lower band.
func (s *GradientService) Classify(analysis *domain.GradientAnalysis, vehicleClass string) domain.Rating {
	th, ok := classThresholds[vehicleClass]
	if !ok {
		th = defaultThresholds
	}
	switch {
	case analysis.MaxGradientPct <= th.amber:
		return domain.RatingGreen
	case analysis.MaxGradientPct <= th.red:
		return domain.RatingAmber
	default:
		return domain.RatingRed
	}
}

// ProfileOverlay renders the profile for map display: the approach path
// as a LineString plus a Point per steep sample.
func (s *GradientService) ProfileOverlay(analysis *domain.GradientAnalysis) *geojson.FeatureCollection {
	out := geojson.NewFeatureCollection()
	if analysis == nil || !analysis.Measured() {
		return out
	}

	line := make(orb.LineString, 0, len(analysis.Samples))
	for _, sm := range analysis.Samples {
		line = append(line, orb.Point{sm.Point.Lon, sm.Point.Lat})
	}
	path := geojson.NewFeature(line)
	path.Properties = geojson.Properties{
		"max_gradient_pct":  analysis.MaxGradientPct,
		"mean_gradient_pct": analysis.MeanGradientPct,
	}
	out.Append(path)

	for _, sm := range analysis.Samples {
		if sm.GradientPct <= steepThresholdPct {
			continue
		}
		f := geojson.NewFeature(orb.Point{sm.Point.Lon, sm.Point.Lat})
		f.Properties = geojson.Properties{
			"gradient_pct": sm.GradientPct,
			"distance_m":   sm.DistanceM,
		}
		out.Append(f)
	}
	return out
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
