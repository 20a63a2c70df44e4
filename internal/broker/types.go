package broker

import (
	"context"

	"beacon/pkg/models"
)

type Producer interface {
	// PublishAlert writes a sanitized alert to a topic (email queue).
	PublishAlert(ctx context.Context, topic string, alert models.SanitizedAlert) error
	// PublishRequest writes a raw alert request to a topic (DLQ).
	PublishRequest(ctx context.Context, topic string, req models.AlertRequest) error
	Close() error
}

type Consumer interface {
	Consume(ctx context.Context, topic string, handler HandlerFunc) error
	Close() error
	SetServiceName(name string)
}

type HandlerFunc func(ctx context.Context, req models.AlertRequest) error
