package osdatahub_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/Hamza-Xoho/digital-surveyor/internal/adapters/osdatahub"
	"github.com/Hamza-Xoho/digital-surveyor/internal/core/domain"
	"github.com/Hamza-Xoho/digital-surveyor/internal/pkg/geocache"
)

var testLoc = domain.Location{
	Postcode: "SW1A 1AA",
	Geo:      domain.GeoPoint{Lat: 51.501, Lon: -0.1416},
	Grid:     domain.GridPoint{Easting: 529090, Northing: 179645},
}

func featureJSON(group string, id int) string {
	return fmt.Sprintf(`{
		"type": "Feature",
		"id": "osgb%d",
		"geometry": {"type": "Polygon", "coordinates": [[[529000,179600],[529010,179600],[529010,179610],[529000,179600]]]},
		"properties": {"DescriptiveGroup": %q}
	}`, id, group)
}

func TestFetchAreaFeaturesFiltersGroups(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("typeNames") != "Topography_TopographicArea" {
			t.Errorf("typeNames = %q", q.Get("typeNames"))
		}
		if q.Get("srsName") != "EPSG:27700" {
			t.Errorf("srsName = %q", q.Get("srsName"))
		}
		if q.Get("key") != "test-key" {
			t.Errorf("key = %q", q.Get("key"))
		}
		fmt.Fprintf(w, `{"type":"FeatureCollection","features":[%s,%s,%s]}`,
			featureJSON("Road Or Track", 1),
			featureJSON("Structure", 2),
			featureJSON("Building", 3))
	}))
	defer srv.Close()

	c := osdatahub.New("test-key", srv.URL, nil)
	fc, err := c.FetchAreaFeatures(context.Background(), testLoc, 200)
	if err != nil {
		t.Fatalf("FetchAreaFeatures: %v", err)
	}
	if len(fc.Features) != 2 {
		t.Fatalf("kept %d features, want 2 (Structure dropped)", len(fc.Features))
	}
	for _, f := range fc.Features {
		group, _ := f.Properties["DescriptiveGroup"].(string)
		if group != "Road Or Track" && group != "Building" {
			t.Errorf("unexpected group %q survived the filter", group)
		}
	}
}

func TestFetchLineFeaturesPaginates(t *testing.T) {
	var pages []int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start, _ := strconv.Atoi(r.URL.Query().Get("startIndex"))
		pages = append(pages, start)

		// First page full (100 features), second page short.
		n := 100
		if start >= 100 {
			n = 3
		}
		fmt.Fprint(w, `{"type":"FeatureCollection","features":[`)
		for i := 0; i < n; i++ {
			if i > 0 {
				fmt.Fprint(w, ",")
			}
			fmt.Fprintf(w, `{"type":"Feature","id":"osgb%d",
				"geometry":{"type":"LineString","coordinates":[[529000,179600],[529050,179650]]},
				"properties":{"DescriptiveGroup":"Road Or Track"}}`, start+i)
		}
		fmt.Fprint(w, `]}`)
	}))
	defer srv.Close()

	c := osdatahub.New("test-key", srv.URL, nil)
	fc, err := c.FetchLineFeatures(context.Background(), testLoc, 200)
	if err != nil {
		t.Fatalf("FetchLineFeatures: %v", err)
	}
	if len(fc.Features) != 103 {
		t.Errorf("features = %d, want 103", len(fc.Features))
	}
	if len(pages) != 2 || pages[0] != 0 || pages[1] != 100 {
		t.Errorf("page offsets = %v, want [0 100]", pages)
	}
}

func TestFetchUsesCache(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		fmt.Fprintf(w, `{"type":"FeatureCollection","features":[%s]}`, featureJSON("Building", 1))
	}))
	defer srv.Close()

	cache := geocache.New(geocache.NewMemoryStore(), nil)
	c := osdatahub.New("test-key", srv.URL, cache)

	for i := 0; i < 2; i++ {
		fc, err := c.FetchAreaFeatures(context.Background(), testLoc, 200)
		if err != nil {
			t.Fatalf("FetchAreaFeatures: %v", err)
		}
		if len(fc.Features) != 1 {
			t.Fatalf("features = %d, want 1", len(fc.Features))
		}
	}
	if hits != 1 {
		t.Errorf("upstream hits = %d, want 1", hits)
	}
}

func TestUnconfiguredReturnsEmpty(t *testing.T) {
	c := osdatahub.New("", "http://unused.invalid", nil)
	if c.Configured() {
		t.Fatal("client without key must report unconfigured")
	}
	fc, err := c.FetchAreaFeatures(context.Background(), testLoc, 200)
	if err != nil {
		t.Fatalf("FetchAreaFeatures: %v", err)
	}
	if len(fc.Features) != 0 {
		t.Errorf("expected empty collection, got %d features", len(fc.Features))
	}
}
