package models

// AlertRequestBuilder assembles an AlertRequest field by field. Mostly
// useful in tests and at ingestion boundaries.
type AlertRequestBuilder struct {
	req *AlertRequest
}

func NewAlertRequestBuilder() *AlertRequestBuilder {
	return &AlertRequestBuilder{
		req: &AlertRequest{
			Metadata: make(map[string]string),
		},
	}
}

func (b *AlertRequestBuilder) WithSeverity(severity Severity) *AlertRequestBuilder {
	b.req.Severity = severity
	return b
}

func (b *AlertRequestBuilder) WithTitle(title string) *AlertRequestBuilder {
	b.req.Title = title
	return b
}

func (b *AlertRequestBuilder) WithMessage(message string) *AlertRequestBuilder {
	b.req.Message = message
	return b
}

func (b *AlertRequestBuilder) WithTenantID(tenantID string) *AlertRequestBuilder {
	b.req.TenantID = tenantID
	return b
}

func (b *AlertRequestBuilder) WithCorrelationID(correlationID string) *AlertRequestBuilder {
	b.req.CorrelationID = correlationID
	return b
}

func (b *AlertRequestBuilder) WithMetadata(key, value string) *AlertRequestBuilder {
	if b.req.Metadata == nil {
		b.req.Metadata = make(map[string]string)
	}
	b.req.Metadata[key] = value
	return b
}

func (b *AlertRequestBuilder) Build() *AlertRequest {
	return b.req
}
