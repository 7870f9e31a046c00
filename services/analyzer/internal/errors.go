package internal

import (
	"errors"
	"net/http"
)

// ValidationError is a client input problem; it maps to HTTP 400 unless
// Status says otherwise. Anything else reaching writeError is an upstream
// failure (*llm.UpstreamError) and maps to 500.
type ValidationError struct {
	Message string
	Status  int
}

func (e *ValidationError) Error() string { return e.Message }

var (
	errNoText          = &ValidationError{Message: "No text provided"}
	errContentTooShort = &ValidationError{Message: "Content too short for analysis"}
	errInvalidBody     = &ValidationError{Message: "invalid body"}
	errBodyTooLarge    = &ValidationError{Message: "request body too large", Status: http.StatusRequestEntityTooLarge}
)

func statusFor(err error) int {
	var verr *ValidationError
	if errors.As(err, &verr) {
		if verr.Status != 0 {
			return verr.Status
		}
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
