// Package osdatahub fetches OS MasterMap topography features (road
// edges, building footprints) from the OS Data Hub Features API.
package osdatahub

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/paulmach/orb/geojson"

	"github.com/Hamza-Xoho/digital-surveyor/internal/core/domain"
	"github.com/Hamza-Xoho/digital-surveyor/internal/core/ports"
	"github.com/Hamza-Xoho/digital-surveyor/internal/pkg/geocache"
	"github.com/Hamza-Xoho/digital-surveyor/internal/pkg/logging"
	"github.com/Hamza-Xoho/digital-surveyor/internal/pkg/metrics"
)

const defaultBaseURL = "https://api.os.uk/features/v1/wfs"

const (
	typeNameArea = "Topography_TopographicArea"
	typeNameLine = "Topography_TopographicLine"

	featuresPerPage = 100
	maxPages        = 10 // safety cap on runaway pagination
)

var areaGroups = map[string]bool{
	domain.GroupRoadOrTrack:    true,
	domain.GroupBuilding:       true,
	domain.GroupPath:           true,
	domain.GroupGeneralSurface: true,
}

var lineGroups = map[string]bool{
	domain.GroupRoadOrTrack: true,
	domain.GroupPath:        true,
}

// Client implements ports.FeatureProvider against the OS Features WFS.
// Geometry comes back in EPSG:27700, already in grid coordinates.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	cache      ports.GeoCache
	log        *slog.Logger
}

// New creates an OS Data Hub client. An empty baseURL selects the
// public API endpoint; an empty apiKey leaves the provider unconfigured.
func New(apiKey, baseURL string, cache ports.GeoCache) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		apiKey:     apiKey,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		cache:      cache,
		log:        logging.Component("osdatahub"),
	}
}

func (c *Client) Name() string { return "os_mastermap" }

func (c *Client) Kind() domain.FeatureSourceKind { return domain.SourceSurveyEdges }

func (c *Client) Configured() bool { return c.apiKey != "" }

// FetchAreaFeatures returns topographic polygons (roads, buildings,
// paths, surfaces) around the location.
func (c *Client) FetchAreaFeatures(ctx context.Context, loc domain.Location, radius float64) (*geojson.FeatureCollection, error) {
	return c.fetch(ctx, "area", typeNameArea, areaGroups, loc, radius)
}

// FetchLineFeatures returns road-edge and kerb lines around the location.
func (c *Client) FetchLineFeatures(ctx context.Context, loc domain.Location, radius float64) (*geojson.FeatureCollection, error) {
	return c.fetch(ctx, "line", typeNameLine, lineGroups, loc, radius)
}

func (c *Client) fetch(ctx context.Context, kind, typeName string, keep map[string]bool, loc domain.Location, radius float64) (*geojson.FeatureCollection, error) {
	if !c.Configured() {
		return geojson.NewFeatureCollection(), nil
	}

	key := geocache.FeatureKey(kind, loc.Grid.Easting, loc.Grid.Northing, radius)
	if c.cache != nil {
		cached := geojson.NewFeatureCollection()
		if found, _ := c.cache.Get(ctx, key, cached); found {
			return cached, nil
		}
	}

	bbox := domain.BoundingBoxAround(loc.Grid, radius)

	out := geojson.NewFeatureCollection()
	startIndex := 0
	for page := 0; page < maxPages; page++ {
		fc, err := c.fetchPage(ctx, typeName, bbox, startIndex)
		if err != nil {
			return nil, err
		}
		if len(fc.Features) == 0 {
			break
		}

		for _, f := range fc.Features {
			if group, _ := f.Properties[domain.DescriptiveGroupKey].(string); keep[group] {
				out.Append(f)
			}
		}

		startIndex += len(fc.Features)
		if len(fc.Features) < featuresPerPage {
			break
		}
	}

	if c.cache != nil {
		if err := c.cache.Put(ctx, key, out, geocache.TTLSurveyFeatures); err != nil {
			c.log.Warn("cache feature result", "error", err)
		}
	}
	return out, nil
}

func (c *Client) fetchPage(ctx context.Context, typeName string, bbox domain.BoundingBox, startIndex int) (*geojson.FeatureCollection, error) {
	metrics.ProviderRequests.WithLabelValues(c.Name()).Inc()

	params := url.Values{}
	params.Set("service", "WFS")
	params.Set("version", "2.0.0")
	params.Set("request", "GetFeature")
	params.Set("typeNames", typeName)
	params.Set("outputFormat", "GEOJSON")
	params.Set("srsName", "EPSG:27700")
	params.Set("bbox", fmt.Sprintf("%s,%s,%s,%s,EPSG:27700",
		gridCoord(bbox.MinEasting), gridCoord(bbox.MinNorthing),
		gridCoord(bbox.MaxEasting), gridCoord(bbox.MaxNorthing)))
	params.Set("count", strconv.Itoa(featuresPerPage))
	params.Set("startIndex", strconv.Itoa(startIndex))
	params.Set("key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build wfs request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.ProviderErrors.WithLabelValues(c.Name()).Inc()
		return nil, fmt.Errorf("wfs %s: %w", typeName, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.ProviderErrors.WithLabelValues(c.Name()).Inc()
		return nil, fmt.Errorf("wfs %s: unexpected status %d", typeName, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.ProviderErrors.WithLabelValues(c.Name()).Inc()
		return nil, fmt.Errorf("read wfs %s response: %w", typeName, err)
	}
	fc, err := geojson.UnmarshalFeatureCollection(body)
	if err != nil {
		metrics.ProviderErrors.WithLabelValues(c.Name()).Inc()
		return nil, fmt.Errorf("decode wfs %s: %w", typeName, err)
	}
	return fc, nil
}

func gridCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

var _ ports.FeatureProvider = (*Client)(nil)
