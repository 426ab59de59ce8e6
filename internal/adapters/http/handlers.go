package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/Hamza-Xoho/digital-surveyor/internal/core/domain"
)

// AssessmentRequest is the body of POST /v1/assessments. An empty
// vehicle_classes list assesses the whole fleet.
type AssessmentRequest struct {
	Postcode       string   `json:"postcode"`
	VehicleClasses []string `json:"vehicle_classes"`
}

// CreateAssessmentHandler runs the full access assessment for a postcode.
func CreateAssessmentHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req AssessmentRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if req.Postcode == "" {
			return errBadRequest(c, "postcode is required")
		}
		c.Locals(postcodeLocal, req.Postcode)

		result, err := deps.Assessments.Run(c.UserContext(), req.Postcode, req.VehicleClasses)
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrInvalidPostcode):
				return errBadRequest(c, "invalid UK postcode: "+req.Postcode)
			case errors.Is(err, domain.ErrPostcodeNotFound):
				return errNotFound(c, "postcode not found: "+req.Postcode)
			default:
				return errBadGateway(c, err.Error())
			}
		}
		return c.Status(fiber.StatusCreated).JSON(result)
	}
}

// ListVehiclesHandler returns the vehicle fleet available for assessment.
func ListVehiclesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		vehicles := deps.Catalog.ListVehicles(nil)
		return c.JSON(fiber.Map{"vehicles": vehicles})
	}
}
