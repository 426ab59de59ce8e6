package osgrid_test

import (
	"errors"
	"math"
	"testing"

	"github.com/Hamza-Xoho/digital-surveyor/internal/core/domain"
	"github.com/Hamza-Xoho/digital-surveyor/internal/pkg/osgrid"
)

func TestToGrid_KnownPoints(t *testing.T) {
	// Reference values from the OS coordinate transformation guide and
	// the OS online converter (OSGB36 via single Helmert, so a few
	// metres of datum error is expected).
	cases := []struct {
		name     string
		geo      domain.GeoPoint
		easting  float64
		northing float64
	}{
		{"london", domain.GeoPoint{Lat: 51.5007, Lon: -0.1246}, 530268, 179545},
		{"edinburgh", domain.GeoPoint{Lat: 55.9533, Lon: -3.1883}, 325908, 673845},
		{"cardiff", domain.GeoPoint{Lat: 51.4816, Lon: -3.1791}, 318236, 176168},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			grid, err := osgrid.ToGrid(tc.geo)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if math.Abs(grid.Easting-tc.easting) > 50 {
				t.Errorf("easting: want ~%.0f, got %.1f", tc.easting, grid.Easting)
			}
			if math.Abs(grid.Northing-tc.northing) > 50 {
				t.Errorf("northing: want ~%.0f, got %.1f", tc.northing, grid.Northing)
			}
		})
	}
}

func TestRoundTrip(t *testing.T) {
	points := []domain.GeoPoint{
		{Lat: 51.5007, Lon: -0.1246}, // central London
		{Lat: 50.0657, Lon: -5.7147}, // Land's End
		{Lat: 58.6373, Lon: -3.0689}, // John o' Groats
		{Lat: 52.9548, Lon: -1.1581}, // Nottingham
	}

	for _, p := range points {
		grid, err := osgrid.ToGrid(p)
		if err != nil {
			t.Fatalf("ToGrid(%v): %v", p, err)
		}
		back, err := osgrid.ToGeo(grid)
		if err != nil {
			t.Fatalf("ToGeo(%v): %v", grid, err)
		}
		if math.Abs(back.Lat-p.Lat) > 0.0001 {
			t.Errorf("lat round trip: %.6f → %.6f", p.Lat, back.Lat)
		}
		if math.Abs(back.Lon-p.Lon) > 0.0001 {
			t.Errorf("lon round trip: %.6f → %.6f", p.Lon, back.Lon)
		}
	}
}

func TestOutOfRange(t *testing.T) {
	_, err := osgrid.ToGrid(domain.GeoPoint{Lat: 48.85, Lon: 2.35}) // Paris
	if !errors.Is(err, domain.ErrProjectionOutOfRange) {
		t.Errorf("expected ErrProjectionOutOfRange, got %v", err)
	}

	_, err = osgrid.ToGeo(domain.GridPoint{Easting: -5000, Northing: 100000})
	if !errors.Is(err, domain.ErrProjectionOutOfRange) {
		t.Errorf("expected ErrProjectionOutOfRange, got %v", err)
	}
}

func TestTileRef(t *testing.T) {
	cases := []struct {
		easting  float64
		northing float64
		want     string
	}{
		{530000, 104000, "TQ30"},
		{325908, 673845, "NT27"},
		{0, 0, "SV00"},
	}

	for _, tc := range cases {
		got, err := osgrid.TileRef(tc.easting, tc.northing)
		if err != nil {
			t.Fatalf("TileRef(%.0f, %.0f): %v", tc.easting, tc.northing, err)
		}
		if got != tc.want {
			t.Errorf("TileRef(%.0f, %.0f) = %s, want %s", tc.easting, tc.northing, got, tc.want)
		}
	}

	if _, err := osgrid.TileRef(900000, 100000); err == nil {
		t.Error("expected error for easting beyond grid letters")
	}
}
