package services

import (
	"errors"

	"github.com/diewo77/plombicrm/validation"
)

// Sentinel errors carry the message code shown to the operator.
var (
	ErrNotFound         = errors.New("not_found")
	ErrClientNotFound   = errors.New("client_not_found")
	ErrServiceNotFound  = errors.New("service_not_found")
	ErrMaterialNotFound = errors.New("material_not_found")
	ErrQuoteNotFound    = errors.New("quote_not_found")
	ErrDocumentNotFound = errors.New("document_not_found")
	ErrProjectNotFound  = errors.New("project_not_found")
	ErrInvalidLink      = errors.New("invalid_link")
	ErrInvalidDuration  = errors.New("invalid_duration")
	ErrInvalidStatus    = errors.New("invalid_status")
	ErrNoRecipient      = errors.New("client_no_email")
)

// ValidationError wraps field violations of a rejected input.
type ValidationError struct {
	Violations validation.Violations
}

func (e *ValidationError) Error() string { return "validation_failed" }

func invalid(v validation.Violations) error {
	if v.Empty() {
		return nil
	}
	return &ValidationError{Violations: v}
}
