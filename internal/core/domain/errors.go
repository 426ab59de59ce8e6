package domain

import "errors"

// Sentinel errors for conditions that terminate an assessment before a
// result is produced. Every other failure degrades the pipeline instead.
var (
	// ErrInvalidPostcode means the postcode failed format validation.
	ErrInvalidPostcode = errors.New("invalid UK postcode")

	// ErrPostcodeNotFound means the postcode is well formed but unknown.
	ErrPostcodeNotFound = errors.New("postcode not found")

	// ErrProjectionOutOfRange means a coordinate lies outside the extent
	// supported by the grid projection.
	ErrProjectionOutOfRange = errors.New("coordinate outside National Grid extent")
)
