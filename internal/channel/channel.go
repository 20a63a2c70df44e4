package channel

import (
	"context"

	"beacon/pkg/models"
)

// Channel is a black-box notification transport. Implementations must be
// safe for concurrent use; a nil error means the alert was handed off.
type Channel interface {
	Name() string
	Send(ctx context.Context, alert models.SanitizedAlert) error
}
