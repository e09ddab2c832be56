package service

import "errors"

var (
	ErrValidationNoResourceID   = errors.New("no resource id provided")
	ErrValidationInvalidPayload = errors.New("payload is not valid JSON")
	ErrValidationNegativeCount  = errors.New("object count must not be negative")
)
