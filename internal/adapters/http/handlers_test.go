package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/Hamza-Xoho/digital-surveyor/internal/adapters/catalog"
	"github.com/Hamza-Xoho/digital-surveyor/internal/core/domain"
	"github.com/Hamza-Xoho/digital-surveyor/internal/core/usecases"
)

type stubGeocoder struct {
	fn func(ctx context.Context, postcode string) (*domain.Location, error)
}

func (s *stubGeocoder) Geocode(ctx context.Context, postcode string) (*domain.Location, error) {
	return s.fn(ctx, postcode)
}

func testApp(t *testing.T, geocode func(ctx context.Context, postcode string) (*domain.Location, error)) *fiber.App {
	t.Helper()

	fleet, err := catalog.Load("")
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}

	width := usecases.NewWidthService(20)
	gradient := usecases.NewGradientService()
	svc := usecases.NewAssessmentService(usecases.AssessmentDeps{
		Geocoder: &stubGeocoder{fn: geocode},
		Catalog:  fleet,
		Width:    width,
		Gradient: gradient,
		Turning:  usecases.NewTurningService(20),
		Scoring:  usecases.NewScoringService(width, gradient),
	})

	app := fiber.New()
	SetupRoutes(app, &Dependencies{Assessments: svc, Catalog: fleet})
	return app
}

func okGeocode(ctx context.Context, postcode string) (*domain.Location, error) {
	return &domain.Location{
		Postcode: "SW1A 1AA",
		Geo:      domain.GeoPoint{Lat: 51.501, Lon: -0.1416},
		Grid:     domain.GridPoint{Easting: 530000, Northing: 104000},
	}, nil
}

func postAssessment(t *testing.T, app *fiber.App, body string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest("POST", "/v1/assessments", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, 10000)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	var decoded map[string]any
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &decoded); err != nil {
			t.Fatalf("decode response %q: %v", raw, err)
		}
	}
	return resp.StatusCode, decoded
}

func TestCreateAssessment(t *testing.T) {
	app := testApp(t, okGeocode)

	status, body := postAssessment(t, app, `{"postcode": "SW1A 1AA"}`)
	if status != 201 {
		t.Fatalf("status = %d, want 201", status)
	}
	if body["postcode"] != "SW1A 1AA" {
		t.Fatalf("postcode = %v, want SW1A 1AA", body["postcode"])
	}
	// No providers configured: degraded but complete, never an error.
	if body["overall_rating"] != "AMBER" {
		t.Fatalf("overall_rating = %v, want AMBER", body["overall_rating"])
	}
	vas, ok := body["vehicle_assessments"].([]any)
	if !ok || len(vas) != 3 {
		t.Fatalf("vehicle_assessments = %v, want 3 entries", body["vehicle_assessments"])
	}
	if _, ok := body["data_sources"].(map[string]any); !ok {
		t.Fatal("expected data_sources provenance map")
	}
}

func TestCreateAssessmentValidation(t *testing.T) {
	app := testApp(t, okGeocode)

	status, body := postAssessment(t, app, `{}`)
	if status != 400 {
		t.Fatalf("empty postcode status = %d, want 400", status)
	}
	if body["code"] != "bad_request" {
		t.Fatalf("code = %v, want bad_request", body["code"])
	}

	status, _ = postAssessment(t, app, `not json`)
	if status != 400 {
		t.Fatalf("malformed body status = %d, want 400", status)
	}
}

func TestCreateAssessmentErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"invalid postcode", domain.ErrInvalidPostcode, 400, "bad_request"},
		{"unknown postcode", domain.ErrPostcodeNotFound, 404, "not_found"},
		{"upstream failure", context.DeadlineExceeded, 502, "external_api_error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := testApp(t, func(ctx context.Context, postcode string) (*domain.Location, error) {
				return nil, tt.err
			})
			status, body := postAssessment(t, app, `{"postcode": "ZZ99 9ZZ"}`)
			if status != tt.wantStatus {
				t.Fatalf("status = %d, want %d", status, tt.wantStatus)
			}
			if body["code"] != tt.wantCode {
				t.Fatalf("code = %v, want %v", body["code"], tt.wantCode)
			}
		})
	}
}

func TestListVehicles(t *testing.T) {
	app := testApp(t, okGeocode)

	req := httptest.NewRequest("GET", "/v1/vehicles", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != 200 {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var body struct {
		Vehicles []domain.VehicleProfile `json:"vehicles"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Vehicles) != 3 {
		t.Fatalf("vehicles = %d, want default fleet of 3", len(body.Vehicles))
	}
}

func TestHealthAndReady(t *testing.T) {
	app := testApp(t, okGeocode)

	resp, err := app.Test(httptest.NewRequest("GET", "/v1/health", nil))
	if err != nil {
		t.Fatalf("health: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("health status = %d, want 200", resp.StatusCode)
	}
	resp.Body.Close()

	// Cache and NATS not configured: still ready, nothing errored.
	resp, err = app.Test(httptest.NewRequest("GET", "/v1/ready", nil))
	if err != nil {
		t.Fatalf("ready: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != 200 {
		t.Fatalf("ready status = %d, want 200", resp.StatusCode)
	}
}

func TestAccessLogCarriesPostcodeAndRequestID(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	app := testApp(t, okGeocode)
	status, _ := postAssessment(t, app, `{"postcode": "SW1A 1AA"}`)
	if status != 201 {
		t.Fatalf("status = %d, want 201", status)
	}

	logged := buf.String()
	if !strings.Contains(logged, `"postcode":"SW1A 1AA"`) {
		t.Errorf("access log missing postcode: %s", logged)
	}
	if !strings.Contains(logged, `"request_id"`) {
		t.Errorf("access log missing request_id: %s", logged)
	}
	if !strings.Contains(logged, `"status":201`) {
		t.Errorf("access log missing status: %s", logged)
	}
}
