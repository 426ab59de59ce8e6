// Package openelevation serves SRTM-derived elevations from free public
// APIs when no LiDAR tiles are available. Open-Meteo is tried first;
// gaps are back-filled from the Open-Elevation API when fewer than half
// the points resolve. ~30 m resolution, coarse but good enough to tell
// a steep approach from a flat one.
package openelevation

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Hamza-Xoho/digital-surveyor/internal/core/domain"
	"github.com/Hamza-Xoho/digital-surveyor/internal/core/ports"
	"github.com/Hamza-Xoho/digital-surveyor/internal/pkg/logging"
	"github.com/Hamza-Xoho/digital-surveyor/internal/pkg/metrics"
)

const (
	defaultOpenMeteoURL     = "https://api.open-meteo.com/v1/elevation"
	defaultOpenElevationURL = "https://api.open-elevation.com/api/v1/lookup"
)

// Provider implements ports.ElevationProvider over the two public APIs.
type Provider struct {
	openMeteoURL     string
	openElevationURL string
	httpClient       *http.Client
	log              *slog.Logger
}

// New creates the provider. Empty URLs select the public endpoints.
func New(openMeteoURL, openElevationURL string) *Provider {
	if openMeteoURL == "" {
		openMeteoURL = defaultOpenMeteoURL
	}
	if openElevationURL == "" {
		openElevationURL = defaultOpenElevationURL
	}
	return &Provider{
		openMeteoURL:     openMeteoURL,
		openElevationURL: openElevationURL,
		httpClient:       &http.Client{Timeout: 15 * time.Second},
		log:              logging.Component("openelevation"),
	}
}

func (p *Provider) Name() string { return "elevation_api" }

func (p *Provider) Resolution() string { return "~30m (SRTM)" }

// Configured always holds: neither API needs a key.
func (p *Provider) Configured() bool { return true }

// ElevationAt samples a single point.
func (p *Provider) ElevationAt(ctx context.Context, pt domain.PathPoint) (domain.Elevation, error) {
	elevs, err := p.ElevationsAlong(ctx, []domain.PathPoint{pt})
	if err != nil {
		return domain.Elevation{}, err
	}
	return elevs[0], nil
}

// ElevationsAlong samples each point of a path. Unresolved points come
// back invalid rather than fabricated.
func (p *Provider) ElevationsAlong(ctx context.Context, path []domain.PathPoint) ([]domain.Elevation, error) {
	if len(path) == 0 {
		return nil, nil
	}

	elevs := p.fromOpenMeteo(ctx, path)

	valid := 0
	for _, e := range elevs {
		if e.Valid {
			valid++
		}
	}
	if valid < len(path)/2 {
		p.log.Info("open-meteo resolved too few points, trying open-elevation",
			"resolved", valid, "total", len(path))
		backup := p.fromOpenElevation(ctx, path)
		for i := range elevs {
			if !elevs[i].Valid && i < len(backup) && backup[i].Valid {
				elevs[i] = backup[i]
			}
		}
	}
	return elevs, nil
}

type openMeteoResponse struct {
	Elevation []*float64 `json:"elevation"`
}

func (p *Provider) fromOpenMeteo(ctx context.Context, path []domain.PathPoint) []domain.Elevation {
	out := make([]domain.Elevation, len(path))

	lats := make([]string, len(path))
	lons := make([]string, len(path))
	for i, pt := range path {
		lats[i] = strconv.FormatFloat(pt.Geo.Lat, 'f', 6, 64)
		lons[i] = strconv.FormatFloat(pt.Geo.Lon, 'f', 6, 64)
	}
	params := url.Values{
		"latitude":  {strings.Join(lats, ",")},
		"longitude": {strings.Join(lons, ",")},
	}

	metrics.ProviderRequests.WithLabelValues("open_meteo").Inc()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		p.openMeteoURL+"?"+params.Encode(), nil)
	if err != nil {
		return out
	}
	resp, err := p.httpClient.Do(req)
	if err != nil {
		metrics.ProviderErrors.WithLabelValues("open_meteo").Inc()
		p.log.Warn("open-meteo unavailable", "error", err)
		return out
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		metrics.ProviderErrors.WithLabelValues("open_meteo").Inc()
		p.log.Warn("open-meteo error status", "status", resp.StatusCode)
		return out
	}

	var body openMeteoResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		metrics.ProviderErrors.WithLabelValues("open_meteo").Inc()
		p.log.Warn("open-meteo decode failed", "error", err)
		return out
	}
	for i := range out {
		if i < len(body.Elevation) && body.Elevation[i] != nil {
			out[i] = domain.Elevation{Value: *body.Elevation[i], Valid: true}
		}
	}
	return out
}

type openElevationResponse struct {
	Results []struct {
		Elevation float64 `json:"elevation"`
	} `json:"results"`
}

func (p *Provider) fromOpenElevation(ctx context.Context, path []domain.PathPoint) []domain.Elevation {
	out := make([]domain.Elevation, len(path))

	type loc struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	}
	locations := make([]loc, len(path))
	for i, pt := range path {
		locations[i] = loc{Latitude: pt.Geo.Lat, Longitude: pt.Geo.Lon}
	}
	payload, err := json.Marshal(map[string]any{"locations": locations})
	if err != nil {
		return out
	}

	metrics.ProviderRequests.WithLabelValues("open_elevation").Inc()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		p.openElevationURL, bytes.NewReader(payload))
	if err != nil {
		return out
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		metrics.ProviderErrors.WithLabelValues("open_elevation").Inc()
		p.log.Warn("open-elevation unavailable", "error", err)
		return out
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		metrics.ProviderErrors.WithLabelValues("open_elevation").Inc()
		p.log.Warn("open-elevation error status", "status", resp.StatusCode)
		return out
	}

	var body openElevationResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		metrics.ProviderErrors.WithLabelValues("open_elevation").Inc()
		p.log.Warn("open-elevation decode failed", "error", err)
		return out
	}
	for i := range out {
		if i < len(body.Results) {
			out[i] = domain.Elevation{Value: body.Results[i].Elevation, Valid: true}
		}
	}
	return out
}

var _ ports.ElevationProvider = (*Provider)(nil)
