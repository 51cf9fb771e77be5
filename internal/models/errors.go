package models

import (
	"errors"
)

var (
	ErrNoEligibleModel  = errors.New("no eligible vision model")
	ErrBudgetExceeded   = errors.New("api usage budget exceeded")
	ErrExtractionFailed = errors.New("graph extraction failed")
	ErrUserDeclined     = errors.New("operation declined by user")

	ErrMissingAPIKey = errors.New("api key is not configured")
)
