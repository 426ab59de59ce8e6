package overpass_test

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/paulmach/orb"

	"github.com/Hamza-Xoho/digital-surveyor/internal/adapters/overpass"
	"github.com/Hamza-Xoho/digital-surveyor/internal/core/domain"
)

var testLoc = domain.Location{
	Postcode: "SW1A 1AA",
	Geo:      domain.GeoPoint{Lat: 51.501, Lon: -0.1416},
	Grid:     domain.GridPoint{Easting: 529090, Northing: 179645},
}

const roadsResponse = `{
	"elements": [
		{"type": "node", "id": 1, "lat": 51.5010, "lon": -0.1416},
		{"type": "node", "id": 2, "lat": 51.5014, "lon": -0.1410},
		{"type": "node", "id": 3, "lat": 51.5018, "lon": -0.1404},
		{"type": "way", "id": 100, "nodes": [1, 2, 3],
			"tags": {"highway": "residential", "name": "Test Street"}},
		{"type": "way", "id": 101, "nodes": [1, 2],
			"tags": {"highway": "service", "width": "4.2 m"}},
		{"type": "way", "id": 102, "nodes": [2, 3],
			"tags": {"landuse": "grass"}}
	]
}`

func TestFetchLineFeatures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		q := string(body)
		if !strings.Contains(q, `way%5B%22highway%22%5D`) && !strings.Contains(q, `way["highway"]`) {
			t.Errorf("query missing highway selector: %s", q)
		}
		fmt.Fprint(w, roadsResponse)
	}))
	defer srv.Close()

	c := overpass.New(srv.URL, nil)
	fc, err := c.FetchLineFeatures(context.Background(), testLoc, 200)
	if err != nil {
		t.Fatalf("FetchLineFeatures: %v", err)
	}

	// The untagged landuse way is dropped.
	if len(fc.Features) != 2 {
		t.Fatalf("features = %d, want 2", len(fc.Features))
	}

	byName := map[string]float64{}
	for _, f := range fc.Features {
		highway, _ := f.Properties["highway"].(string)
		width, _ := f.Properties["width_m"].(float64)
		byName[highway] = width

		line, ok := f.Geometry.(orb.LineString)
		if !ok {
			t.Fatalf("geometry type %T, want LineString", f.Geometry)
		}
		// Coordinates must be in grid metres near the test location.
		for _, pt := range line {
			if pt[0] < 528000 || pt[0] > 530000 || pt[1] < 179000 || pt[1] > 180500 {
				t.Errorf("point %v not in expected grid window", pt)
			}
		}
		if group, _ := f.Properties["DescriptiveGroup"].(string); group != "Road Or Track" {
			t.Errorf("DescriptiveGroup = %q", group)
		}
	}

	// residential has no width tag: estimated 5.5. service has "4.2 m" tagged.
	if byName["residential"] != 5.5 {
		t.Errorf("residential width = %f, want 5.5", byName["residential"])
	}
	if byName["service"] != 4.2 {
		t.Errorf("service width = %f, want 4.2", byName["service"])
	}
}

func TestFetchAreaFeatures(t *testing.T) {
	const buildingsResponse = `{
		"elements": [
			{"type": "node", "id": 1, "lat": 51.5010, "lon": -0.1416},
			{"type": "node", "id": 2, "lat": 51.5012, "lon": -0.1416},
			{"type": "node", "id": 3, "lat": 51.5012, "lon": -0.1412},
			{"type": "node", "id": 4, "lat": 51.5010, "lon": -0.1412},
			{"type": "way", "id": 200, "nodes": [1, 2, 3, 4, 1],
				"tags": {"building": "house"}},
			{"type": "way", "id": 201, "nodes": [1, 2, 3],
				"tags": {"building": "yes"}}
		]
	}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, buildingsResponse)
	}))
	defer srv.Close()

	c := overpass.New(srv.URL, nil)
	fc, err := c.FetchAreaFeatures(context.Background(), testLoc, 200)
	if err != nil {
		t.Fatalf("FetchAreaFeatures: %v", err)
	}

	// The open way is not a footprint.
	if len(fc.Features) != 1 {
		t.Fatalf("features = %d, want 1", len(fc.Features))
	}
	if _, ok := fc.Features[0].Geometry.(orb.Polygon); !ok {
		t.Fatalf("geometry type %T, want Polygon", fc.Features[0].Geometry)
	}
	if group, _ := fc.Features[0].Properties["DescriptiveGroup"].(string); group != "Building" {
		t.Errorf("DescriptiveGroup = %q", group)
	}
}

func TestProviderIdentity(t *testing.T) {
	c := overpass.New("", nil)
	if !c.Configured() {
		t.Error("overpass needs no key and must always be configured")
	}
	if c.Kind() != domain.SourceCrowdCentrelines {
		t.Errorf("kind = %v", c.Kind())
	}
}
