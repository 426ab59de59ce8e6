package usecases

import (
	"math"
	"testing"

	"github.com/Hamza-Xoho/digital-surveyor/internal/core/domain"
)

// pathNorth builds a path of n points heading due north at roughly
// 10 m spacing.
func pathNorth(n int) []domain.PathPoint {
	const stepLat = 0.0000899 // ~10 m
	pts := make([]domain.PathPoint, n)
	for i := range pts {
		pts[i] = domain.PathPoint{
			Geo: domain.GeoPoint{Lat: 51.5 + float64(i)*stepLat, Lon: -0.14},
		}
	}
	return pts
}

func valid(vals ...float64) []domain.Elevation {
	out := make([]domain.Elevation, len(vals))
	for i, v := range vals {
		out[i] = domain.Elevation{Value: v, Valid: true}
	}
	return out
}

func TestBuildProfileFlat(t *testing.T) {
	svc := NewGradientService()
	analysis := svc.BuildProfile(pathNorth(5), valid(10, 10, 10, 10, 10))

	if !analysis.Measured() {
		t.Fatalf("expected measured profile, got reason %q", analysis.Reason)
	}
	if analysis.MaxGradientPct != 0 || analysis.MeanGradientPct != 0 {
		t.Fatalf("flat path gradients = max %v mean %v, want 0", analysis.MaxGradientPct, analysis.MeanGradientPct)
	}
	if len(analysis.SteepSegments) != 0 {
		t.Fatalf("flat path steep segments = %d, want 0", len(analysis.SteepSegments))
	}
}

func TestBuildProfileRise(t *testing.T) {
	svc := NewGradientService()
	// 1 m rise per ~10 m step: 10% sustained gradient.
	analysis := svc.BuildProfile(pathNorth(3), valid(0, 1, 2))

	if !analysis.Measured() {
		t.Fatalf("expected measured profile, got reason %q", analysis.Reason)
	}
	if math.Abs(analysis.MaxGradientPct-10.0) > 0.5 {
		t.Fatalf("max gradient = %v, want ~10", analysis.MaxGradientPct)
	}
	if len(analysis.SteepSegments) != 1 {
		t.Fatalf("steep segments = %d, want 1", len(analysis.SteepSegments))
	}
	seg := analysis.SteepSegments[0]
	if seg.StartM >= seg.EndM {
		t.Fatalf("segment bounds [%v, %v] not increasing", seg.StartM, seg.EndM)
	}
	if math.Abs(seg.GradientPct-analysis.MaxGradientPct) > 0.01 {
		t.Fatalf("segment gradient = %v, want run maximum %v", seg.GradientPct, analysis.MaxGradientPct)
	}
}

func TestBuildProfileSkipsInvalidSamples(t *testing.T) {
	svc := NewGradientService()
	elevs := []domain.Elevation{
		{Value: 0, Valid: true},
		{Valid: false},
		{Value: 2, Valid: true},
	}
	analysis := svc.BuildProfile(pathNorth(3), elevs)

	if !analysis.Measured() {
		t.Fatalf("expected measured profile, got reason %q", analysis.Reason)
	}
	if len(analysis.Samples) != 2 {
		t.Fatalf("samples = %d, want 2 after skipping invalid", len(analysis.Samples))
	}
	// 2 m rise over ~20 m, measured across the gap.
	if math.Abs(analysis.MaxGradientPct-10.0) > 0.5 {
		t.Fatalf("max gradient = %v, want ~10 across the gap", analysis.MaxGradientPct)
	}
}

func TestBuildProfileDegenerate(t *testing.T) {
	svc := NewGradientService()

	if got := svc.BuildProfile(pathNorth(3), valid(1, 2)); got.Measured() {
		t.Fatal("mismatched lengths must not produce a profile")
	}

	elevs := []domain.Elevation{{Valid: false}, {Valid: false}, {Value: 5, Valid: true}}
	if got := svc.BuildProfile(pathNorth(3), elevs); got.Measured() {
		t.Fatal("a single valid sample must not produce a profile")
	}
}

func TestSteepSegmentsSplitOnGentleSample(t *testing.T) {
	svc := NewGradientService()
	// Steep, steep, flat, steep: two distinct runs.
	analysis := svc.BuildProfile(pathNorth(5), valid(0, 1, 2, 2, 3))

	if len(analysis.SteepSegments) != 2 {
		t.Fatalf("steep segments = %d, want 2", len(analysis.SteepSegments))
	}
	if analysis.SteepSegments[0].EndM >= analysis.SteepSegments[1].StartM {
		t.Fatal("segments must not overlap")
	}
}

func TestClassifyThresholds(t *testing.T) {
	svc := NewGradientService()
	tests := []struct {
		name  string
		max   float64
		class string
		want  domain.Rating
	}{
		{"pantechnicon at amber boundary", 5.0, "pantechnicon_18t", domain.RatingGreen},
		{"pantechnicon between", 6.0, "pantechnicon_18t", domain.RatingAmber},
		{"pantechnicon over red", 8.5, "pantechnicon_18t", domain.RatingRed},
		{"7.5t at red boundary", 10.0, "truck_7_5t", domain.RatingAmber},
		{"7.5t over red", 10.5, "truck_7_5t", domain.RatingRed},
		{"default class mild", 7.9, "luton_3_5t", domain.RatingGreen},
		{"default class steep", 11.0, "luton_3_5t", domain.RatingAmber},
		{"default class severe", 13.0, "luton_3_5t", domain.RatingRed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			analysis := &domain.GradientAnalysis{MaxGradientPct: tt.max}
			if got := svc.Classify(analysis, tt.class); got != tt.want {
				t.Fatalf("Classify(%v, %s) = %v, want %v", tt.max, tt.class, got, tt.want)
			}
		})
	}
}

func TestProfileOverlay(t *testing.T) {
	svc := NewGradientService()
	analysis := svc.BuildProfile(pathNorth(3), valid(0, 1, 1))

	overlay := svc.ProfileOverlay(analysis)
	// One path line plus one steep-sample point.
	if len(overlay.Features) != 2 {
		t.Fatalf("overlay features = %d, want 2", len(overlay.Features))
	}
	if _, ok := overlay.Features[0].Properties["max_gradient_pct"]; !ok {
		t.Fatal("path feature missing max_gradient_pct")
	}

	if got := svc.ProfileOverlay(&domain.GradientAnalysis{Reason: "x"}); len(got.Features) != 0 {
		t.Fatal("unmeasured profile must render an empty overlay")
	}
}
