package openelevation_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Hamza-Xoho/digital-surveyor/internal/adapters/openelevation"
	"github.com/Hamza-Xoho/digital-surveyor/internal/core/domain"
)

func geoPath(coords ...[2]float64) []domain.PathPoint {
	path := make([]domain.PathPoint, len(coords))
	for i, c := range coords {
		path[i] = domain.PathPoint{Geo: domain.GeoPoint{Lat: c[0], Lon: c[1]}}
	}
	return path
}

func TestElevationsAlongOpenMeteo(t *testing.T) {
	meteo := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("latitude") == "" {
			t.Error("latitude param missing")
		}
		fmt.Fprint(w, `{"elevation":[45.0,46.5,48.0]}`)
	}))
	defer meteo.Close()

	p := openelevation.New(meteo.URL, "http://unused.invalid")
	elevs, err := p.ElevationsAlong(context.Background(),
		geoPath([2]float64{51.50, -0.14}, [2]float64{51.501, -0.14}, [2]float64{51.502, -0.14}))
	if err != nil {
		t.Fatalf("ElevationsAlong: %v", err)
	}
	if len(elevs) != 3 {
		t.Fatalf("samples = %d, want 3", len(elevs))
	}
	want := []float64{45.0, 46.5, 48.0}
	for i, e := range elevs {
		if !e.Valid || e.Value != want[i] {
			t.Errorf("elevs[%d] = %+v, want valid %f", i, e, want[i])
		}
	}
}

func TestElevationsAlongBackfill(t *testing.T) {
	// Open-Meteo resolves only 1 of 4 points; below half triggers the
	// Open-Elevation backfill for the gaps.
	meteo := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"elevation":[null,46.5,null,null]}`)
	}))
	defer meteo.Close()

	var backupCalled bool
	backup := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		backupCalled = true
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		fmt.Fprint(w, `{"results":[{"elevation":45.0},{"elevation":99.0},{"elevation":48.0},{"elevation":49.5}]}`)
	}))
	defer backup.Close()

	p := openelevation.New(meteo.URL, backup.URL)
	elevs, err := p.ElevationsAlong(context.Background(),
		geoPath([2]float64{51.50, -0.14}, [2]float64{51.501, -0.14},
			[2]float64{51.502, -0.14}, [2]float64{51.503, -0.14}))
	if err != nil {
		t.Fatalf("ElevationsAlong: %v", err)
	}
	if !backupCalled {
		t.Fatal("backup API was not consulted")
	}

	// Resolved points keep the Open-Meteo value, gaps take the backup's.
	if !elevs[0].Valid || elevs[0].Value != 45.0 {
		t.Errorf("elevs[0] = %+v", elevs[0])
	}
	if !elevs[1].Valid || elevs[1].Value != 46.5 {
		t.Errorf("elevs[1] = %+v, want open-meteo value kept", elevs[1])
	}
	if !elevs[2].Valid || elevs[2].Value != 48.0 {
		t.Errorf("elevs[2] = %+v", elevs[2])
	}
	if !elevs[3].Valid || elevs[3].Value != 49.5 {
		t.Errorf("elevs[3] = %+v", elevs[3])
	}
}

func TestBothAPIsDownYieldsInvalidSamples(t *testing.T) {
	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "over capacity", http.StatusServiceUnavailable)
	}))
	defer down.Close()

	p := openelevation.New(down.URL, down.URL)
	elevs, err := p.ElevationsAlong(context.Background(),
		geoPath([2]float64{51.50, -0.14}, [2]float64{51.501, -0.14}))
	if err != nil {
		t.Fatalf("ElevationsAlong must not fail hard: %v", err)
	}
	for i, e := range elevs {
		if e.Valid {
			t.Errorf("elevs[%d] valid with both APIs down", i)
		}
	}
}
