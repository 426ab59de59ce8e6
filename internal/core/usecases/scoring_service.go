package usecases

import (
	"fmt"
	"math"
	"strings"

	"github.com/Hamza-Xoho/digital-surveyor/internal/core/domain"
)

// ScoringService aggregates the four access checks into a per-vehicle
// verdict. The overall rating is the worst individual check; confidence
// is the fraction of checks backed by real data.
type ScoringService struct {
	width    *WidthService
	gradient *GradientService
}

func NewScoringService(width *WidthService, gradient *GradientService) *ScoringService {
	return &ScoringService{width: width, gradient: gradient}
}

// ScoreVehicle evaluates the fixed check sequence for one vehicle. Any
// nil analysis becomes a data-unavailable stand-in; a missing turning
// assessment means the road is not a dead-end and counts as a pass.
func (s *ScoringService) ScoreVehicle(
	vehicle domain.VehicleProfile,
	width *domain.WidthAnalysis,
	gradient *domain.GradientAnalysis,
	turning *domain.TurningAssessment,
	restrictions *domain.RestrictionResult,
) domain.VehicleAssessment {
	checks := []domain.CheckResult{
		s.widthCheck(vehicle, width),
		s.gradientCheck(vehicle, gradient),
		turningCheck(turning),
		restrictionsCheck(restrictions),
	}

	ratings := make([]domain.Rating, len(checks))
	evidenced := 0
	for i, c := range checks {
		ratings[i] = c.Rating
		if c.Evidenced {
			evidenced++
		}
	}
	overall := domain.WorstRating(ratings...)
	confidence := math.Round(float64(evidenced)/float64(len(checks))*100) / 100

	return domain.VehicleAssessment{
		VehicleName:    vehicle.Name,
		VehicleClass:   vehicle.Class,
		OverallRating:  overall,
		Confidence:     confidence,
		Checks:         checks,
		Recommendation: recommendation(vehicle.Name, overall, checks),
	}
}

func (s *ScoringService) widthCheck(vehicle domain.VehicleProfile, width *domain.WidthAnalysis) domain.CheckResult {
	if !width.Measured() {
		return domain.CheckResult{
			Name:   domain.CheckRoadWidth,
			Rating: domain.RatingAmber,
			Detail: "Width data unavailable — manual check recommended",
		}
	}
	fit := s.width.CheckFit(width.MinWidthM, vehicle)
	return domain.CheckResult{
		Name:   domain.CheckRoadWidth,
		Rating: fit.Rating,
		Detail: fmt.Sprintf("%.2fm available, %.2fm vehicle width, %.2fm clearance",
			fit.AvailableWidthM, fit.TotalVehicleM, fit.ClearanceM),
		Value:     f64ptr(fit.AvailableWidthM),
		Threshold: f64ptr(fit.TotalVehicleM),
		Evidenced: true,
	}
}

func (s *ScoringService) gradientCheck(vehicle domain.VehicleProfile, gradient *domain.GradientAnalysis) domain.CheckResult {
	if !gradient.Measured() {
		return domain.CheckResult{
			Name:   domain.CheckGradient,
			Rating: domain.RatingAmber,
			Detail: "Elevation data unavailable — gradient not assessed",
		}
	}
	return domain.CheckResult{
		Name:   domain.CheckGradient,
		Rating: s.gradient.Classify(gradient, vehicle.Class),
		Detail: fmt.Sprintf("Max %.2f%% gradient, mean %.2f%%",
			gradient.MaxGradientPct, gradient.MeanGradientPct),
		Value:     f64ptr(gradient.MaxGradientPct),
		Threshold: f64ptr(steepThresholdPct),
		Evidenced: true,
	}
}

func turningCheck(turning *domain.TurningAssessment) domain.CheckResult {
	if turning == nil || !turning.Assessed {
		// Not a dead-end: nothing to check, and that certainty counts
		// toward confidence.
		return domain.CheckResult{
			Name:      domain.CheckTurningSpace,
			Rating:    domain.RatingGreen,
			Detail:    "Not a dead-end — turning space not required",
			Evidenced: true,
		}
	}
	return domain.CheckResult{
		Name:      domain.CheckTurningSpace,
		Rating:    turning.Rating,
		Detail:    turning.Detail,
		Value:     f64ptr(turning.AvailableRadiusM),
		Threshold: f64ptr(turning.RequiredRadiusM),
		Evidenced: true,
	}
}

func restrictionsCheck(restrictions *domain.RestrictionResult) domain.CheckResult {
	if restrictions == nil {
		return domain.CheckResult{
			Name:   domain.CheckRouteRestrictions,
			Rating: domain.RatingAmber,
			Detail: "Routing check unavailable — check for low bridges manually",
		}
	}
	detail := "No restrictions found on route"
	if len(restrictions.Warnings) > 0 {
		detail = strings.Join(restrictions.Warnings, "; ")
	}
	return domain.CheckResult{
		Name:      domain.CheckRouteRestrictions,
		Rating:    restrictions.Rating,
		Detail:    detail,
		Evidenced: true,
	}
}

func recommendation(vehicleName string, overall domain.Rating, checks []domain.CheckResult) string {
	switch overall {
	case domain.RatingGreen:
		return fmt.Sprintf("Access clear for %s — all checks passed", vehicleName)
	case domain.RatingRed:
		return fmt.Sprintf("%s CANNOT access this property — failed: %s",
			vehicleName, strings.Join(checkNames(checks, domain.RatingRed), ", "))
	default:
		return fmt.Sprintf("%s access possible with caution — concerns: %s",
			vehicleName, strings.Join(checkNames(checks, domain.RatingAmber), ", "))
	}
}

func checkNames(checks []domain.CheckResult, rating domain.Rating) []string {
	var names []string
	for _, c := range checks {
		if c.Rating == rating {
			names = append(names, c.Name)
		}
	}
	return names
}

func f64ptr(v float64) *float64 { return &v }
