// Package postcodesio geocodes UK postcodes through the free
// postcodes.io API.
package postcodesio

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/Hamza-Xoho/digital-surveyor/internal/core/domain"
	"github.com/Hamza-Xoho/digital-surveyor/internal/core/ports"
	"github.com/Hamza-Xoho/digital-surveyor/internal/pkg/geocache"
	"github.com/Hamza-Xoho/digital-surveyor/internal/pkg/logging"
	"github.com/Hamza-Xoho/digital-surveyor/internal/pkg/metrics"
)

var postcodeRE = regexp.MustCompile(`^[A-Z]{1,2}\d[A-Z\d]?\s*\d[A-Z]{2}$`)

// Normalise upper-cases a postcode and inserts the single space before
// the three-character inward code.
func Normalise(postcode string) string {
	clean := strings.ToUpper(strings.TrimSpace(postcode))
	clean = strings.ReplaceAll(clean, " ", "")
	if len(clean) < 5 {
		return clean
	}
	return clean[:len(clean)-3] + " " + clean[len(clean)-3:]
}

// Valid reports whether a string looks like a UK postcode.
func Valid(postcode string) bool {
	return postcodeRE.MatchString(strings.TrimSpace(postcode))
}

// Client implements ports.Geocoder against postcodes.io.
type Client struct {
	baseURL    string
	httpClient *http.Client
	cache      ports.GeoCache
	log        *slog.Logger
}

// New creates a geocoder. cache may be nil to disable caching.
func New(baseURL string, cache ports.GeoCache) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
		cache:      cache,
		log:        logging.Component("postcodesio"),
	}
}

type postcodeResponse struct {
	Result struct {
		Postcode  string  `json:"postcode"`
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
		Eastings  float64 `json:"eastings"`
		Northings float64 `json:"northings"`
	} `json:"result"`
}

// Geocode resolves a postcode to coordinates.
func (c *Client) Geocode(ctx context.Context, postcode string) (*domain.Location, error) {
	normalised := Normalise(postcode)
	if !Valid(normalised) {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidPostcode, postcode)
	}

	key := geocache.GeocodeKey(normalised)
	if c.cache != nil {
		var loc domain.Location
		if found, _ := c.cache.Get(ctx, key, &loc); found {
			return &loc, nil
		}
	}

	metrics.ProviderRequests.WithLabelValues("postcodesio").Inc()

	reqURL := c.baseURL + "/postcodes/" + url.PathEscape(normalised)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build geocode request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.ProviderErrors.WithLabelValues("postcodesio").Inc()
		return nil, fmt.Errorf("geocode %s: %w", normalised, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", domain.ErrPostcodeNotFound, normalised)
	}
	if resp.StatusCode != http.StatusOK {
		metrics.ProviderErrors.WithLabelValues("postcodesio").Inc()
		return nil, fmt.Errorf("geocode %s: unexpected status %d", normalised, resp.StatusCode)
	}

	var body postcodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		metrics.ProviderErrors.WithLabelValues("postcodesio").Inc()
		return nil, fmt.Errorf("decode geocode response: %w", err)
	}

	loc := &domain.Location{
		Postcode: body.Result.Postcode,
		Geo: domain.GeoPoint{
			Lat: body.Result.Latitude,
			Lon: body.Result.Longitude,
		},
		Grid: domain.GridPoint{
			Easting:  body.Result.Eastings,
			Northing: body.Result.Northings,
		},
	}

	if c.cache != nil {
		if err := c.cache.Put(ctx, key, loc, geocache.TTLGeocode); err != nil {
			c.log.Warn("cache geocode result", "error", err)
		}
	}
	return loc, nil
}

var _ ports.Geocoder = (*Client)(nil)
