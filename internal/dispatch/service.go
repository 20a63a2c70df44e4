package dispatch

import (
	"context"
	"time"

	"beacon/internal/config"
	"beacon/internal/constants"
	"beacon/internal/dedup"
	"beacon/internal/logger"
	"beacon/internal/quota"
	"beacon/internal/redact"
	"beacon/internal/suppress"
	"beacon/pkg/errors"
	"beacon/pkg/logging"
	"beacon/pkg/metrics"
	"beacon/pkg/models"
)

// Service is the single entry point for raising an alert. It owns the
// deduplication ledger and the tenant quota for its process lifetime; no
// other component mutates them.
type Service struct {
	ledger       dedup.Ledger
	quota        quota.Limiter
	redactor     *redact.Redactor
	suppressor   *suppress.Evaluator
	router       *Router
	ruleFallback string
	logger       logger.Logger
	now          func() time.Time
}

func NewService(ledger dedup.Ledger, limiter quota.Limiter, suppressor *suppress.Evaluator, router *Router, cfg config.DispatchConfig, log logger.Logger) *Service {
	ruleFallback := cfg.RuleFallback
	if ruleFallback == "" {
		ruleFallback = constants.FallbackAllow
	}

	return &Service{
		ledger:       ledger,
		quota:        limiter,
		redactor:     redact.NewRedactor(),
		suppressor:   suppressor,
		router:       router,
		ruleFallback: ruleFallback,
		logger:       log,
		now:          time.Now,
	}
}

// Dispatch runs the pipeline in strict order: suppression rules, dedup
// check, quota check, redact, route, record. The ledger mark and quota
// consume happen unconditionally once the alert clears the checks, whether
// or not routing succeeded: a CRITICAL alert that exhausts its retries was
// attempted, not skipped, and still counts.
//
// Only the CRITICAL path can return a delivery error; everything below it
// is recovered or swallowed by policy.
func (s *Service) Dispatch(ctx context.Context, req models.AlertRequest) error {
	if err := models.ValidateAlertRequest(&req); err != nil {
		return errors.Wrap(err, errors.ErrValidation)
	}

	ctx = logging.WithTenantID(ctx, req.TenantID)
	if req.CorrelationID != "" {
		ctx = logging.WithCorrelationID(ctx, req.CorrelationID)
	}

	if suppressed := s.suppressedByRule(ctx, req); suppressed {
		return nil
	}

	key := req.DedupKey()
	if s.isDuplicate(ctx, key, req) {
		return nil
	}

	if !s.withinQuota(ctx, req) {
		return nil
	}

	alert := models.SanitizedAlert{
		Severity:      req.Severity,
		Title:         req.Title,
		Message:       s.redactor.Redact(req.Message),
		TenantID:      req.TenantID,
		CorrelationID: req.CorrelationID,
		Metadata:      s.redactor.RedactMetadata(req.Metadata),
		Timestamp:     s.now(),
	}

	routeErr := s.router.Route(ctx, alert)

	if err := s.ledger.MarkSent(ctx, key); err != nil {
		s.logger.WarnwCtx(ctx, "Failed to record alert in dedup ledger",
			"error", err,
		)
	}
	if err := s.quota.Consume(ctx, req.TenantID); err != nil {
		s.logger.WarnwCtx(ctx, "Failed to consume tenant quota",
			"error", err,
		)
	}

	status := "delivered"
	if routeErr != nil {
		status = "failed"
	}
	metrics.AlertsDispatchedTotal.WithLabelValues(string(req.Severity), status).Inc()

	return routeErr
}

func (s *Service) suppressedByRule(ctx context.Context, req models.AlertRequest) bool {
	if s.suppressor == nil || s.suppressor.RuleCount() == 0 {
		return false
	}

	ruleID, err := s.suppressor.Match(ctx, req)
	if err != nil {
		if s.ruleFallback == constants.FallbackDeny {
			s.logger.WarnwCtx(ctx, "Suppression rule evaluation failed, dropping alert (fallback: deny)",
				"error", err,
			)
			return true
		}
		s.logger.WarnwCtx(ctx, "Suppression rule evaluation failed, allowing alert (fallback: allow)",
			"error", err,
		)
		return false
	}

	if ruleID != "" {
		metrics.SuppressionRuleMatchesTotal.WithLabelValues(ruleID).Inc()
		s.logger.DebugwCtx(ctx, "Alert suppressed by rule",
			"rule_id", ruleID,
			"title", req.Title,
		)
		return true
	}

	return false
}

// isDuplicate treats ledger failures as not-duplicate: losing a window is
// better than losing an alert.
func (s *Service) isDuplicate(ctx context.Context, key string, req models.AlertRequest) bool {
	dup, err := s.ledger.IsDuplicate(ctx, key)
	if err != nil {
		s.logger.WarnwCtx(ctx, "Dedup ledger check failed, allowing alert",
			"error", err,
		)
		return false
	}

	if dup {
		s.logger.DebugwCtx(ctx, "Duplicate alert suppressed",
			"title", req.Title,
			"severity", req.Severity,
		)
	}
	return dup
}

// withinQuota drops silently on exhaustion: queuing or raising here would
// loop rate-limit failures back into the alert pipeline.
func (s *Service) withinQuota(ctx context.Context, req models.AlertRequest) bool {
	ok, err := s.quota.Allow(ctx, req.TenantID)
	if err != nil {
		s.logger.WarnwCtx(ctx, "Quota check failed, allowing alert",
			"error", err,
		)
		return true
	}

	if !ok {
		s.logger.DebugwCtx(ctx, "Tenant quota exhausted, alert dropped",
			"title", req.Title,
			"severity", req.Severity,
		)
	}
	return ok
}

// SetNowFunc overrides the clock. Tests only.
func (s *Service) SetNowFunc(now func() time.Time) {
	s.now = now
}
