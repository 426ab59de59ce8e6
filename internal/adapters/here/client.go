// Package here checks truck routing restrictions via the HERE Router
// v8 API. A missing key skips the check entirely; transport failures
// degrade to an AMBER warning rather than failing the assessment.
package here

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

	"github.com/Hamza-Xoho/digital-surveyor/internal/core/domain"
	"github.com/Hamza-Xoho/digital-surveyor/internal/core/ports"
	"github.com/Hamza-Xoho/digital-surveyor/internal/pkg/geocache"
	"github.com/Hamza-Xoho/digital-surveyor/internal/pkg/logging"
	"github.com/Hamza-Xoho/digital-surveyor/internal/pkg/metrics"
)

const defaultBaseURL = "https://router.hereapi.com/v8/routes"

// Client implements ports.RoutingProvider against HERE Router v8.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	cache      ports.GeoCache
	log        *slog.Logger
}

// New creates a routing client. An empty apiKey leaves the provider
// unconfigured; an empty baseURL selects the public endpoint.
func New(apiKey, baseURL string, cache ports.GeoCache) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		apiKey:     apiKey,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		cache:      cache,
		log:        logging.Component("here"),
	}
}

func (c *Client) Name() string { return "here_routing" }

func (c *Client) Configured() bool { return c.apiKey != "" }

type hereResponse struct {
	Routes []struct {
		Sections []struct {
			Notices []struct {
				Title string `json:"title"`
				Code  string `json:"code"`
			} `json:"notices"`
		} `json:"sections"`
	} `json:"routes"`
}

// CheckRestrictions routes a truck with the vehicle's envelope from
// origin to destination and buckets any notices into restriction
// categories.
func (c *Client) CheckRestrictions(ctx context.Context, origin, destination domain.GeoPoint, vehicle domain.VehicleProfile) (*domain.RestrictionResult, error) {
	if !c.Configured() {
		return &domain.RestrictionResult{
			RouteFound: false,
			Warnings:   []string{"routing API key not configured, restriction check skipped"},
			Rating:     domain.RatingAmber,
		}, nil
	}

	heightCm := int(vehicle.HeightM * 100)
	widthCm := int(vehicle.WidthM * 100)
	key := geocache.RoutingKey(origin.Lat, origin.Lon, destination.Lat, destination.Lon,
		heightCm, widthCm, vehicle.WeightKg)
	if c.cache != nil {
		var cached domain.RestrictionResult
		if found, _ := c.cache.Get(ctx, key, &cached); found {
			return &cached, nil
		}
	}

	metrics.ProviderRequests.WithLabelValues(c.Name()).Inc()

	params := url.Values{}
	params.Set("transportMode", "truck")
	params.Set("origin", fmt.Sprintf("%f,%f", origin.Lat, origin.Lon))
	params.Set("destination", fmt.Sprintf("%f,%f", destination.Lat, destination.Lon))
	params.Set("truck[height]", strconv.Itoa(heightCm))
	params.Set("truck[width]", strconv.Itoa(widthCm))
	params.Set("truck[grossWeight]", strconv.Itoa(vehicle.WeightKg))
	params.Set("return", "summary,notices")
	params.Set("apiKey", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build routing request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.ProviderErrors.WithLabelValues(c.Name()).Inc()
		c.log.Warn("routing API unavailable", "error", err)
		return &domain.RestrictionResult{
			RouteFound: false,
			Warnings:   []string{fmt.Sprintf("routing service unavailable: %v", err)},
			Rating:     domain.RatingAmber,
		}, nil
	}
	defer resp.Body.Close()

	// The router answers 400 when no route satisfies the truck profile.
	if resp.StatusCode == http.StatusBadRequest {
		result := &domain.RestrictionResult{
			RouteFound: false,
			Warnings:   []string{"no viable truck route found"},
			Rating:     domain.RatingRed,
		}
		c.cachePut(ctx, key, result)
		return result, nil
	}
	if resp.StatusCode != http.StatusOK {
		metrics.ProviderErrors.WithLabelValues(c.Name()).Inc()
		c.log.Warn("routing API error status", "status", resp.StatusCode)
		return &domain.RestrictionResult{
			RouteFound: false,
			Warnings:   []string{fmt.Sprintf("routing API returned status %d", resp.StatusCode)},
			Rating:     domain.RatingAmber,
		}, nil
	}

	var body hereResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		metrics.ProviderErrors.WithLabelValues(c.Name()).Inc()
		return nil, fmt.Errorf("decode routing response: %w", err)
	}

	if len(body.Routes) == 0 {
		result := &domain.RestrictionResult{
			RouteFound: false,
			Warnings:   []string{"no route found"},
			Rating:     domain.RatingRed,
		}
		c.cachePut(ctx, key, result)
		return result, nil
	}

	var warnings []string
	var restrictions []domain.Restriction
	for _, section := range body.Routes[0].Sections {
		for _, notice := range section.Notices {
			text := notice.Title
			if text == "" {
				text = notice.Code
			}
			if text == "" {
				text = "unknown restriction"
			}
			warnings = append(warnings, text)

			if r, ok := bucketNotice(text); ok {
				restrictions = append(restrictions, r)
			}
		}
	}

	rating := domain.RatingGreen
	if len(restrictions) > 0 {
		rating = domain.RatingRed
	}
	result := &domain.RestrictionResult{
		RouteFound:   true,
		Restrictions: restrictions,
		Warnings:     warnings,
		Rating:       rating,
	}
	c.cachePut(ctx, key, result)
	return result, nil
}

func (c *Client) cachePut(ctx context.Context, key string, result *domain.RestrictionResult) {
	if c.cache == nil {
		return
	}
	if err := c.cache.Put(ctx, key, result, geocache.TTLRouting); err != nil {
		c.log.Warn("cache restriction result", "error", err)
	}
}

// bucketNotice classifies a routing notice by keyword.
func bucketNotice(text string) (domain.Restriction, bool) {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "height") || strings.Contains(lower, "bridge"):
		return domain.Restriction{Type: domain.RestrictionHeight, Detail: text}, true
	case strings.Contains(lower, "weight"):
		return domain.Restriction{Type: domain.RestrictionWeight, Detail: text}, true
	case strings.Contains(lower, "width"):
		return domain.Restriction{Type: domain.RestrictionWidth, Detail: text}, true
	}
	return domain.Restriction{}, false
}

var _ ports.RoutingProvider = (*Client)(nil)
