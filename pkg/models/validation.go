package models

import "fmt"

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

func ValidateAlertRequest(req *AlertRequest) error {
	if req == nil {
		return &ValidationError{
			Field:   "request",
			Message: "alert request cannot be nil",
		}
	}

	if !req.Severity.Valid() {
		return &ValidationError{
			Field:   "severity",
			Message: fmt.Sprintf("unknown severity %q", req.Severity),
		}
	}

	if req.Title == "" {
		return &ValidationError{
			Field:   "title",
			Message: "alert title is required",
		}
	}

	if req.TenantID == "" {
		return &ValidationError{
			Field:   "tenant_id",
			Message: "tenant ID is required",
		}
	}

	return nil
}
