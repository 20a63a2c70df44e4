package dispatch

import (
	"context"
	"time"

	"beacon/internal/channel"
	"beacon/internal/logger"
	"beacon/pkg/errors"
	"beacon/pkg/metrics"
	"beacon/pkg/models"
	"beacon/pkg/retry"
)

// Router maps severity to a channel and a delivery policy. Higher severity
// buys more delivery guarantees at the cost of caller-visible failure:
//
//	CRITICAL -> paging, retried; exhaustion propagates to the caller
//	WARNING  -> chat, one best-effort fallback to email, never surfaces
//	INFO     -> email, fire-and-forget
type Router struct {
	paging      channel.Channel
	chat        channel.Channel
	email       channel.Channel
	retryPolicy retry.Policy
	logger      logger.Logger
}

func NewRouter(paging, chat, email channel.Channel, retryPolicy retry.Policy, log logger.Logger) *Router {
	return &Router{
		paging:      paging,
		chat:        chat,
		email:       email,
		retryPolicy: retryPolicy,
		logger:      log,
	}
}

func (r *Router) Route(ctx context.Context, alert models.SanitizedAlert) error {
	switch alert.Severity {
	case models.SeverityCritical:
		return r.routeCritical(ctx, alert)
	case models.SeverityWarning:
		r.routeWarning(ctx, alert)
		return nil
	default:
		r.routeInfo(ctx, alert)
		return nil
	}
}

func (r *Router) routeCritical(ctx context.Context, alert models.SanitizedAlert) error {
	err := retry.RetryWithCallback(ctx, r.retryPolicy, func() error {
		return r.paging.Send(ctx, alert)
	}, func(attempt int, err error, nextDelay time.Duration) {
		metrics.RetryAttemptsTotal.WithLabelValues(r.paging.Name()).Inc()
		r.logger.WarnwCtx(ctx, "Retrying critical alert delivery",
			"attempt", attempt,
			"max_attempts", r.retryPolicy.MaxAttempts,
			"next_delay", nextDelay,
			"error", err,
			"title", alert.Title,
		)
	})
	if err != nil {
		return errors.ErrDispatchFailed.
			WithCause(err).
			WithDetail("channel", r.paging.Name()).
			WithDetail("attempts", r.retryPolicy.MaxAttempts)
	}
	return nil
}

// routeWarning tries chat once and falls back to email once. Neither
// failure surfaces to the caller.
func (r *Router) routeWarning(ctx context.Context, alert models.SanitizedAlert) {
	err := r.chat.Send(ctx, alert)
	if err == nil {
		return
	}

	r.logger.WarnwCtx(ctx, "Chat delivery failed, falling back to email",
		"error", err,
		"title", alert.Title,
	)
	metrics.ChannelFallbackTotal.WithLabelValues(r.chat.Name(), r.email.Name()).Inc()

	if err := r.email.Send(ctx, alert); err != nil {
		r.logger.ErrorwCtx(ctx, "Email fallback delivery failed",
			"error", err,
			"title", alert.Title,
		)
	}
}

func (r *Router) routeInfo(ctx context.Context, alert models.SanitizedAlert) {
	if err := r.email.Send(ctx, alert); err != nil {
		r.logger.WarnwCtx(ctx, "Info alert delivery failed",
			"error", err,
			"title", alert.Title,
		)
	}
}
