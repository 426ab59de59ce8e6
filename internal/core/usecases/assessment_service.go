package usecases

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/Hamza-Xoho/digital-surveyor/internal/core/domain"
	"github.com/Hamza-Xoho/digital-surveyor/internal/core/ports"
	"github.com/Hamza-Xoho/digital-surveyor/internal/pkg/metrics"
	"github.com/Hamza-Xoho/digital-surveyor/internal/pkg/telemetry"
)

const (
	// approachLengthM is how far north of the property the gradient
	// profile extends.
	approachLengthM = 100.0
	// approachLatDelta is the same distance expressed in degrees of
	// latitude for providers that work geographically.
	approachLatDelta = 0.0009
	// approachPoints is the number of path vertices sampled.
	approachPoints = 11
	// restrictionOriginLatDelta places the routing origin about 1 km
	// north of the destination.
	restrictionOriginLatDelta = 0.009
)

// AssessmentDeps wires the orchestrator's collaborators. Feature and
// elevation providers are ordered fallback chains: the first configured
// provider that yields data wins.
type AssessmentDeps struct {
	Geocoder  ports.Geocoder
	Features  []ports.FeatureProvider
	Elevation []ports.ElevationProvider
	Routing   ports.RoutingProvider
	Catalog   ports.VehicleCatalog
	Publisher ports.EventPublisher

	Width    *WidthService
	Gradient *GradientService
	Turning  *TurningService
	Scoring  *ScoringService

	SearchRadiusM    float64
	RestrictionLimit int
	StageTimeout     time.Duration

	Log *slog.Logger
}

// AssessmentService runs the full pipeline: postcode to a Green, Amber
// or Red verdict per vehicle. Provider failures degrade individual
// checks; only a failed geocode aborts the run.
type AssessmentService struct {
	deps AssessmentDeps
}

func NewAssessmentService(deps AssessmentDeps) *AssessmentService {
	if deps.SearchRadiusM <= 0 {
		deps.SearchRadiusM = 200
	}
	if deps.RestrictionLimit <= 0 {
		deps.RestrictionLimit = 4
	}
	if deps.Log == nil {
		deps.Log = slog.Default()
	}
	return &AssessmentService{deps: deps}
}

// Run assesses one postcode for the requested vehicle classes (all
// catalog vehicles when classes is empty).
func (s *AssessmentService) Run(ctx context.Context, postcode string, classes []string) (*domain.AssessmentResult, error) {
	started := time.Now()
	ctx, span := telemetry.Tracer().Start(ctx, "assessment.run",
		trace.WithAttributes(attribute.String("postcode", postcode)))
	defer span.End()

	provenance := make(map[string]domain.Provenance)

	geocodeCtx, geocodeSpan := telemetry.Tracer().Start(ctx, "assessment.geocode")
	loc, err := s.deps.Geocoder.Geocode(geocodeCtx, postcode)
	if err != nil {
		geocodeSpan.RecordError(err)
		geocodeSpan.SetStatus(codes.Error, "geocode failed")
		geocodeSpan.End()
		span.SetStatus(codes.Error, "geocode failed")
		return nil, err
	}
	geocodeSpan.End()
	provenance[domain.StageGeocoding] = domain.Provenance{Source: "postcodes.io", Status: domain.StatusOK}

	areas, lines, kind, roadProv := s.fetchFeatures(ctx, *loc)
	provenance[domain.StageRoadGeometry] = roadProv

	gradient, elevProv := s.gradientProfile(ctx, *loc)
	provenance[domain.StageElevation] = elevProv

	width, widthProv := s.widthAnalysis(lines, kind, roadProv.Source)
	provenance[domain.StageWidth] = widthProv

	vehicles := s.deps.Catalog.ListVehicles(classes)

	turnings := make(map[string]*domain.TurningAssessment, len(vehicles))
	for _, v := range vehicles {
		turnings[v.Class] = s.deps.Turning.Assess(areas, loc.Grid, v)
	}

	restrictions, restrProv := s.checkRestrictions(ctx, *loc, vehicles)
	provenance[domain.StageRestrictions] = restrProv

	assessments := make([]domain.VehicleAssessment, 0, len(vehicles))
	ratings := make([]domain.Rating, 0, len(vehicles))
	for _, v := range vehicles {
		va := s.deps.Scoring.ScoreVehicle(v, width, gradient, turnings[v.Class], restrictions[v.Class])
		assessments = append(assessments, va)
		ratings = append(ratings, va.OverallRating)
	}
	overall := domain.WorstRating(ratings...)
	span.SetAttributes(
		attribute.String("overall_rating", string(overall)),
		attribute.Int("vehicle_count", len(vehicles)),
	)

	for stage, p := range provenance {
		if p.Status != domain.StatusOK {
			metrics.StageDegraded.WithLabelValues(stage).Inc()
		}
	}

	result := &domain.AssessmentResult{
		ID:                 uuid.New(),
		Postcode:           loc.Postcode,
		Location:           *loc,
		OverallRating:      overall,
		VehicleAssessments: assessments,
		Width:              width,
		Gradient:           gradient,
		DataSources:        provenance,
		Overlays:           s.buildOverlays(areas, lines, width, gradient, vehicles, turnings),
		CreatedAt:          time.Now().UTC(),
	}

	metrics.AssessmentDuration.Observe(time.Since(started).Seconds())
	metrics.AssessmentsTotal.WithLabelValues(string(overall)).Inc()

	if s.deps.Publisher != nil {
		if err := s.deps.Publisher.PublishAssessmentCompleted(ctx, result); err != nil {
			s.deps.Log.Warn("assessment event publish failed", "postcode", loc.Postcode, "err", err)
		}
	}
	return result, nil
}

// fetchFeatures walks the feature provider chain and returns the first
// configured provider's non-empty result. Empty results from every
// provider are returned degraded rather than failing the run.
func (s *AssessmentService) fetchFeatures(ctx context.Context, loc domain.Location) (*geojson.FeatureCollection, *geojson.FeatureCollection, domain.FeatureSourceKind, domain.Provenance) {
	ctx, span := telemetry.Tracer().Start(ctx, "assessment.road_geometry")
	defer span.End()

	areas := geojson.NewFeatureCollection()
	lines := geojson.NewFeatureCollection()
	kind := domain.SourceSurveyEdges
	lastName := ""

	for _, provider := range s.deps.Features {
		if !provider.Configured() {
			continue
		}
		lastName = provider.Name()

		stageCtx, cancel := s.stageContext(ctx)
		provCtx, provSpan := telemetry.Tracer().Start(stageCtx, "provider.fetch_features",
			trace.WithAttributes(attribute.String("provider", provider.Name())))
		a, l, err := fetchBoth(provCtx, provider, loc, s.deps.SearchRadiusM)
		if err != nil {
			provSpan.RecordError(err)
			provSpan.SetStatus(codes.Error, "feature fetch failed")
		}
		provSpan.End()
		cancel()
		if err != nil {
			s.deps.Log.Warn("feature fetch failed", "provider", provider.Name(), "err", err)
			continue
		}
		if len(a.Features) == 0 && len(l.Features) == 0 {
			s.deps.Log.Info("feature provider returned no data", "provider", provider.Name())
			areas, lines, kind = a, l, provider.Kind()
			continue
		}
		span.SetAttributes(attribute.String("winning_provider", provider.Name()))
		return a, l, provider.Kind(), domain.Provenance{Source: provider.Name(), Status: domain.StatusOK}
	}

	if lastName == "" {
		return areas, lines, kind, domain.Provenance{
			Source: "none",
			Status: domain.StatusUnavailable,
			Note:   "no feature provider configured",
		}
	}
	return areas, lines, kind, domain.Provenance{
		Source: lastName,
		Status: domain.StatusDegraded,
		Note:   "no road features returned for this area",
	}
}

func fetchBoth(ctx context.Context, provider ports.FeatureProvider, loc domain.Location, radius float64) (*geojson.FeatureCollection, *geojson.FeatureCollection, error) {
	var areas, lines *geojson.FeatureCollection
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		areas, err = provider.FetchAreaFeatures(ctx, loc, radius)
		return err
	})
	g.Go(func() error {
		var err error
		lines, err = provider.FetchLineFeatures(ctx, loc, radius)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return areas, lines, nil
}

// gradientProfile samples the approach path against the elevation
// provider chain and builds a profile from the first usable response.
func (s *AssessmentService) gradientProfile(ctx context.Context, loc domain.Location) (*domain.GradientAnalysis, domain.Provenance) {
	ctx, span := telemetry.Tracer().Start(ctx, "assessment.elevation")
	defer span.End()

	path := approachPath(loc)

	for _, provider := range s.deps.Elevation {
		if !provider.Configured() {
			continue
		}
		stageCtx, cancel := s.stageContext(ctx)
		provCtx, provSpan := telemetry.Tracer().Start(stageCtx, "provider.sample_elevations",
			trace.WithAttributes(attribute.String("provider", provider.Name())))
		elevations, err := provider.ElevationsAlong(provCtx, path)
		if err != nil {
			provSpan.RecordError(err)
			provSpan.SetStatus(codes.Error, "elevation sampling failed")
		}
		provSpan.End()
		cancel()
		if err != nil {
			s.deps.Log.Warn("elevation sampling failed", "provider", provider.Name(), "err", err)
			continue
		}
		profile := s.deps.Gradient.BuildProfile(path, elevations)
		if !profile.Measured() {
			s.deps.Log.Info("elevation provider returned insufficient data",
				"provider", provider.Name(), "reason", profile.Reason)
			continue
		}
		span.SetAttributes(attribute.String("winning_provider", provider.Name()))
		return profile, domain.Provenance{
			Source: provider.Name(),
			Status: domain.StatusOK,
			Note:   "resolution " + provider.Resolution(),
		}
	}
	return nil, domain.Provenance{
		Source: "none",
		Status: domain.StatusUnavailable,
		Note:   "no elevation data available for approach path",
	}
}

// approachPath builds the path heading due north of the property in
// both coordinate systems.
func approachPath(loc domain.Location) []domain.PathPoint {
	path := make([]domain.PathPoint, approachPoints)
	for i := range path {
		frac := float64(i) / float64(approachPoints-1)
		path[i] = domain.PathPoint{
			Geo: domain.GeoPoint{
				Lat: loc.Geo.Lat + frac*approachLatDelta,
				Lon: loc.Geo.Lon,
			},
			Grid: domain.GridPoint{
				Easting:  loc.Grid.Easting,
				Northing: loc.Grid.Northing + frac*approachLengthM,
			},
		}
	}
	return path
}

// widthAnalysis picks the measurement strategy matching how the chosen
// provider represents roads.
func (s *AssessmentService) widthAnalysis(lines *geojson.FeatureCollection, kind domain.FeatureSourceKind, source string) (*domain.WidthAnalysis, domain.Provenance) {
	if kind == domain.SourceCrowdCentrelines {
		width := s.deps.Width.AnalyzeCentrelines(lines)
		prov := domain.Provenance{
			Source: "osm_estimates",
			Status: domain.StatusOK,
			Note:   "widths estimated from road classification",
		}
		if !width.Measured() {
			prov.Status = domain.StatusDegraded
			prov.Note = width.Reason
		}
		return width, prov
	}

	width := s.deps.Width.AnalyzeEdges(lines)
	prov := domain.Provenance{Source: source, Status: domain.StatusOK}
	if !width.Measured() {
		prov.Status = domain.StatusDegraded
		prov.Note = width.Reason
	}
	return width, prov
}

// checkRestrictions fans out per-vehicle routing checks with a bounded
// worker count. A failed check leaves a nil entry so scoring degrades
// that vehicle's check instead of the whole run.
func (s *AssessmentService) checkRestrictions(ctx context.Context, loc domain.Location, vehicles []domain.VehicleProfile) (map[string]*domain.RestrictionResult, domain.Provenance) {
	ctx, span := telemetry.Tracer().Start(ctx, "assessment.restrictions")
	defer span.End()

	results := make(map[string]*domain.RestrictionResult, len(vehicles))

	if s.deps.Routing == nil || !s.deps.Routing.Configured() {
		return results, domain.Provenance{
			Source: "none",
			Status: domain.StatusUnavailable,
			Note:   "routing provider not configured",
		}
	}

	origin := domain.GeoPoint{Lat: loc.Geo.Lat + restrictionOriginLatDelta, Lon: loc.Geo.Lon}
	out := make([]*domain.RestrictionResult, len(vehicles))

	stageCtx, cancel := s.stageContext(ctx)
	defer cancel()

	g := new(errgroup.Group)
	g.SetLimit(s.deps.RestrictionLimit)
	for i, v := range vehicles {
		i, v := i, v
		g.Go(func() error {
			vehicleCtx, vehicleSpan := telemetry.Tracer().Start(stageCtx, "provider.check_restrictions",
				trace.WithAttributes(attribute.String("vehicle_class", v.Class)))
			defer vehicleSpan.End()

			res, err := s.deps.Routing.CheckRestrictions(vehicleCtx, origin, loc.Geo, v)
			if err != nil {
				vehicleSpan.RecordError(err)
				vehicleSpan.SetStatus(codes.Error, "restriction check failed")
				s.deps.Log.Warn("restriction check failed", "vehicle", v.Class, "err", err)
				return nil
			}
			out[i] = res
			return nil
		})
	}
	g.Wait()

	for i, v := range vehicles {
		results[v.Class] = out[i]
	}
	return results, domain.Provenance{Source: s.deps.Routing.Name(), Status: domain.StatusOK}
}

// buildOverlays assembles the map overlay bundle in geographic
// coordinates. Area features are split into road surface and building
// layers by their classification.
func (s *AssessmentService) buildOverlays(
	areas, lines *geojson.FeatureCollection,
	width *domain.WidthAnalysis,
	gradient *domain.GradientAnalysis,
	vehicles []domain.VehicleProfile,
	turnings map[string]*domain.TurningAssessment,
) domain.OverlayBundle {
	areaGeo := s.collectionToGeo(areas)
	roads := geojson.NewFeatureCollection()
	buildings := geojson.NewFeatureCollection()
	for _, f := range areaGeo.Features {
		switch f.Properties[domain.DescriptiveGroupKey] {
		case domain.GroupBuilding:
			buildings.Append(f)
		case domain.GroupRoadOrTrack:
			roads.Append(f)
		}
	}

	circles := geojson.NewFeatureCollection()
	for _, v := range vehicles {
		t := turnings[v.Class]
		if t == nil || t.TurningCircle == nil {
			continue
		}
		c := t.TurningCircle
		c.Properties["vehicle_class"] = v.Class
		circles.Append(c)
	}

	bundle := domain.OverlayBundle{
		Roads:             roads,
		Buildings:         buildings,
		RoadLines:         s.collectionToGeo(lines),
		WidthMeasurements: s.deps.Width.MeasurementLines(width),
	}
	if gradient.Measured() {
		bundle.GradientProfile = s.deps.Gradient.ProfileOverlay(gradient)
	}
	if len(circles.Features) > 0 {
		bundle.TurningCircles = circles
	}
	return bundle
}

// collectionToGeo reprojects a grid-coordinate feature collection to
// geographic coordinates. Features that fall outside the grid's valid
// range are dropped.
func (s *AssessmentService) collectionToGeo(fc *geojson.FeatureCollection) *geojson.FeatureCollection {
	out := geojson.NewFeatureCollection()
	if fc == nil {
		return out
	}
	for _, f := range fc.Features {
		geom, err := geometryToGeo(f.Geometry)
		if err != nil {
			s.deps.Log.Warn("overlay reprojection failed", "err", err)
			continue
		}
		nf := geojson.NewFeature(geom)
		nf.Properties = f.Properties
		out.Append(nf)
	}
	return out
}

func geometryToGeo(g orb.Geometry) (orb.Geometry, error) {
	switch geom := g.(type) {
	case orb.Point:
		return pointToGeo(geom)
	case orb.LineString:
		out := make(orb.LineString, len(geom))
		for i, pt := range geom {
			p, err := pointToGeo(pt)
			if err != nil {
				return nil, err
			}
			out[i] = p
		}
		return out, nil
	case orb.Polygon:
		out := make(orb.Polygon, len(geom))
		for i, ring := range geom {
			r := make(orb.Ring, len(ring))
			for j, pt := range ring {
				p, err := pointToGeo(pt)
				if err != nil {
					return nil, err
				}
				r[j] = p
			}
			out[i] = r
		}
		return out, nil
	case orb.MultiPolygon:
		out := make(orb.MultiPolygon, len(geom))
		for i, poly := range geom {
			converted, err := geometryToGeo(poly)
			if err != nil {
				return nil, err
			}
			out[i] = converted.(orb.Polygon)
		}
		return out, nil
	}
	return g, nil
}

func pointToGeo(pt orb.Point) (orb.Point, error) {
	return gridToGeo(domain.GridPoint{Easting: pt[0], Northing: pt[1]})
}

func (s *AssessmentService) stageContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.deps.StageTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.deps.StageTimeout)
}
