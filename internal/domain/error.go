package domain

import "errors"

var (
	// Common domain errors
	ErrInvalidReport = errors.New("invalid report")
	ErrNotConfigured = errors.New("relay not configured")
	ErrRelayFailed   = errors.New("relay failed")
)
