// Package overpass fetches road centrelines and building footprints
// from the OpenStreetMap Overpass API. It is the keyless fallback when
// no OS Data Hub key is configured: roads come back as centrelines with
// estimated widths rather than surveyed kerb edges.
package overpass

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/Hamza-Xoho/digital-surveyor/internal/core/domain"
	"github.com/Hamza-Xoho/digital-surveyor/internal/core/ports"
	"github.com/Hamza-Xoho/digital-surveyor/internal/pkg/geocache"
	"github.com/Hamza-Xoho/digital-surveyor/internal/pkg/logging"
	"github.com/Hamza-Xoho/digital-surveyor/internal/pkg/metrics"
	"github.com/Hamza-Xoho/digital-surveyor/internal/pkg/osgrid"
)

const defaultBaseURL = "https://overpass-api.de/api/interpreter"

// Typical UK carriageway widths in metres by OSM highway class, from
// Manual for Streets and DMRB guidance. Used when a way has no width tag.
var widthEstimates = map[string]float64{
	"motorway":       11.0,
	"motorway_link":  7.3,
	"trunk":          7.3,
	"trunk_link":     6.5,
	"primary":        6.7,
	"primary_link":   6.0,
	"secondary":      6.1,
	"secondary_link": 5.5,
	"tertiary":       5.5,
	"tertiary_link":  5.0,
	"residential":    5.5,
	"living_street":  4.8,
	"unclassified":   5.0,
	"service":        3.7,
	"track":          3.0,
	"path":           1.5,
	"footway":        1.5,
	"cycleway":       2.0,
	"pedestrian":     3.0,
}

const fallbackWidthM = 5.0

// Client implements ports.FeatureProvider against Overpass.
type Client struct {
	baseURL    string
	httpClient *http.Client
	cache      ports.GeoCache
	log        *slog.Logger
}

// New creates an Overpass client. An empty baseURL selects the public
// interpreter endpoint.
func New(baseURL string, cache ports.GeoCache) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		cache:      cache,
		log:        logging.Component("overpass"),
	}
}

func (c *Client) Name() string { return "overpass" }

func (c *Client) Kind() domain.FeatureSourceKind { return domain.SourceCrowdCentrelines }

// Configured always holds: Overpass needs no credentials.
func (c *Client) Configured() bool { return true }

type element struct {
	Type  string            `json:"type"`
	ID    int64             `json:"id"`
	Lat   float64           `json:"lat"`
	Lon   float64           `json:"lon"`
	Nodes []int64           `json:"nodes"`
	Tags  map[string]string `json:"tags"`
}

type overpassResponse struct {
	Elements []element `json:"elements"`
}

// FetchLineFeatures returns highway centrelines around the location as
// grid-coordinate LineStrings with tagged or estimated widths.
func (c *Client) FetchLineFeatures(ctx context.Context, loc domain.Location, radius float64) (*geojson.FeatureCollection, error) {
	key := geocache.CrowdFeatureKey("roads", loc.Geo.Lat, loc.Geo.Lon, radius)
	if c.cache != nil {
		cached := geojson.NewFeatureCollection()
		if found, _ := c.cache.Get(ctx, key, cached); found {
			return cached, nil
		}
	}

	elements, err := c.query(ctx, wayQuery("highway", loc.Geo, radius))
	if err != nil {
		return nil, err
	}

	nodes := nodeIndex(elements)
	out := geojson.NewFeatureCollection()
	for _, el := range elements {
		if el.Type != "way" || el.Tags["highway"] == "" {
			continue
		}
		line := wayLine(el, nodes)
		if len(line) < 2 {
			continue
		}

		f := geojson.NewFeature(line)
		f.Properties = geojson.Properties{
			domain.DescriptiveGroupKey: domain.GroupRoadOrTrack,
			"highway":                  el.Tags["highway"],
			"name":                     el.Tags["name"],
			"width_m":                  wayWidth(el.Tags),
			"surface":                  el.Tags["surface"],
			"source":                   "osm",
		}
		out.Append(f)
	}

	if c.cache != nil {
		if err := c.cache.Put(ctx, key, out, geocache.TTLCrowdFeatures); err != nil {
			c.log.Warn("cache road features", "error", err)
		}
	}
	return out, nil
}

// FetchAreaFeatures returns building footprints around the location as
// grid-coordinate Polygons.
func (c *Client) FetchAreaFeatures(ctx context.Context, loc domain.Location, radius float64) (*geojson.FeatureCollection, error) {
	key := geocache.CrowdFeatureKey("areas", loc.Geo.Lat, loc.Geo.Lon, radius)
	if c.cache != nil {
		cached := geojson.NewFeatureCollection()
		if found, _ := c.cache.Get(ctx, key, cached); found {
			return cached, nil
		}
	}

	elements, err := c.query(ctx, wayQuery("building", loc.Geo, radius))
	if err != nil {
		return nil, err
	}

	nodes := nodeIndex(elements)
	out := geojson.NewFeatureCollection()
	for _, el := range elements {
		if el.Type != "way" || el.Tags["building"] == "" {
			continue
		}
		// Only closed ways form footprints.
		if len(el.Nodes) < 4 || el.Nodes[0] != el.Nodes[len(el.Nodes)-1] {
			continue
		}
		ring := orb.Ring(wayLine(el, nodes))
		if len(ring) < 4 {
			continue
		}

		f := geojson.NewFeature(orb.Polygon{ring})
		f.Properties = geojson.Properties{
			domain.DescriptiveGroupKey: domain.GroupBuilding,
			"building":                 el.Tags["building"],
			"name":                     el.Tags["name"],
			"source":                   "osm",
		}
		out.Append(f)
	}

	if c.cache != nil {
		if err := c.cache.Put(ctx, key, out, geocache.TTLCrowdFeatures); err != nil {
			c.log.Warn("cache building features", "error", err)
		}
	}
	return out, nil
}

func (c *Client) query(ctx context.Context, ql string) ([]element, error) {
	metrics.ProviderRequests.WithLabelValues(c.Name()).Inc()

	form := url.Values{"data": {ql}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL,
		strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("build overpass request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.ProviderErrors.WithLabelValues(c.Name()).Inc()
		return nil, fmt.Errorf("overpass query: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.ProviderErrors.WithLabelValues(c.Name()).Inc()
		return nil, fmt.Errorf("overpass query: unexpected status %d", resp.StatusCode)
	}

	var body overpassResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		metrics.ProviderErrors.WithLabelValues(c.Name()).Inc()
		return nil, fmt.Errorf("decode overpass response: %w", err)
	}
	return body.Elements, nil
}

func wayQuery(tag string, at domain.GeoPoint, radius float64) string {
	return fmt.Sprintf(
		"[out:json][timeout:25];(way[%q](around:%d,%.6f,%.6f););out body;>;out skel qt;",
		tag, int(radius), at.Lat, at.Lon)
}

func nodeIndex(elements []element) map[int64]domain.GeoPoint {
	nodes := make(map[int64]domain.GeoPoint)
	for _, el := range elements {
		if el.Type == "node" {
			nodes[el.ID] = domain.GeoPoint{Lat: el.Lat, Lon: el.Lon}
		}
	}
	return nodes
}

// wayLine resolves a way's node refs into a grid-coordinate line,
// skipping nodes that are missing or outside the National Grid.
func wayLine(el element, nodes map[int64]domain.GeoPoint) orb.LineString {
	var line orb.LineString
	for _, nid := range el.Nodes {
		pt, ok := nodes[nid]
		if !ok {
			continue
		}
		grid, err := osgrid.ToGrid(pt)
		if err != nil {
			continue
		}
		line = append(line, orb.Point{grid.Easting, grid.Northing})
	}
	return line
}

// wayWidth reads the width tag in metres, falling back to the typical
// width for the highway class.
func wayWidth(tags map[string]string) float64 {
	raw := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(tags["width"]), "m"))
	if raw != "" {
		if w, err := strconv.ParseFloat(raw, 64); err == nil {
			return w
		}
	}
	if w, ok := widthEstimates[tags["highway"]]; ok {
		return w
	}
	return fallbackWidthM
}

var _ ports.FeatureProvider = (*Client)(nil)
