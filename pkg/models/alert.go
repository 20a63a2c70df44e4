package models

import "time"

// Severity determines both the notification channel and the delivery policy
// applied to an alert.
type Severity string

const (
	SeverityCritical Severity = "CRITICAL"
	SeverityWarning  Severity = "WARNING"
	SeverityInfo     Severity = "INFO"
)

// Valid reports whether s is one of the known severities.
func (s Severity) Valid() bool {
	switch s {
	case SeverityCritical, SeverityWarning, SeverityInfo:
		return true
	}
	return false
}

// AlertRequest is the caller-supplied input to the dispatch engine. It is
// treated as immutable; redaction produces a separate SanitizedAlert.
type AlertRequest struct {
	Severity      Severity          `json:"severity"`
	Title         string            `json:"title"`
	Message       string            `json:"message"`
	TenantID      string            `json:"tenant_id"`
	CorrelationID string            `json:"correlation_id,omitempty"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

// DedupKey is the suppression identity: tenant, severity and title
// concatenated in that order, case-sensitive.
func (r AlertRequest) DedupKey() string {
	return r.TenantID + string(r.Severity) + r.Title
}

// SanitizedAlert is the redacted, timestamped form of an AlertRequest. It
// exists only for the duration of one dispatch call and is the only shape a
// notification channel ever sees.
type SanitizedAlert struct {
	Severity      Severity          `json:"severity"`
	Title         string            `json:"title"`
	Message       string            `json:"message"`
	TenantID      string            `json:"tenant_id"`
	CorrelationID string            `json:"correlation_id,omitempty"`
	Metadata      map[string]string `json:"metadata,omitempty"`
	Timestamp     time.Time         `json:"timestamp"`
}
