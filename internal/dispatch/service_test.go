package dispatch

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"beacon/internal/config"
	"beacon/internal/dedup"
	"beacon/internal/logger"
	"beacon/internal/quota"
	"beacon/internal/suppress"
	"beacon/pkg/models"
	"beacon/pkg/retry"
)

// fakeChannel records send calls and fails for the first failN of them.
type fakeChannel struct {
	name  string
	mu    sync.Mutex
	calls []models.SanitizedAlert
	failN int
	err   error
}

func newFakeChannel(name string) *fakeChannel {
	return &fakeChannel{name: name, err: errors.New("transport failure")}
}

func (c *fakeChannel) Name() string {
	return c.name
}

func (c *fakeChannel) Send(_ context.Context, alert models.SanitizedAlert) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, alert)
	if c.failN != 0 {
		if c.failN > 0 {
			c.failN--
		}
		return c.err
	}
	return nil
}

func (c *fakeChannel) callCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.calls)
}

func (c *fakeChannel) lastCall() models.SanitizedAlert {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[len(c.calls)-1]
}

type fixture struct {
	service *Service
	ledger  *dedup.MemoryLedger
	limiter *quota.MemoryLimiter
	paging  *fakeChannel
	chat    *fakeChannel
	email   *fakeChannel
}

func newFixture(t *testing.T, cfg config.DispatchConfig) *fixture {
	t.Helper()

	if cfg.DedupWindow == 0 {
		cfg.DedupWindow = 5 * time.Minute
	}
	if cfg.TenantQuota == 0 {
		cfg.TenantQuota = 100
	}
	if cfg.QuotaWindow == 0 {
		cfg.QuotaWindow = time.Hour
	}
	if cfg.MaxAttempts == 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.RetryInterval == 0 {
		cfg.RetryInterval = 5 * time.Millisecond
	}

	f := &fixture{
		ledger:  dedup.NewMemoryLedger(cfg.DedupWindow, cfg.DedupMaxEntries),
		limiter: quota.NewMemoryLimiter(cfg.TenantQuota, cfg.QuotaWindow),
		paging:  newFakeChannel("paging"),
		chat:    newFakeChannel("chat"),
		email:   newFakeChannel("email"),
	}

	suppressor, err := suppress.NewEvaluator(cfg.SuppressionRules)
	require.NoError(t, err)

	router := NewRouter(f.paging, f.chat, f.email, retry.Policy{
		MaxAttempts: cfg.MaxAttempts,
		Interval:    cfg.RetryInterval,
	}, logger.NopLogger())

	f.service = NewService(f.ledger, f.limiter, suppressor, router, cfg, logger.NopLogger())
	return f
}

func criticalAlert() models.AlertRequest {
	return models.AlertRequest{
		Severity: models.SeverityCritical,
		Title:    "DB down",
		Message:  "conn failed",
		TenantID: "T1",
	}
}

func TestDispatchCriticalRetriesThenFails(t *testing.T) {
	f := newFixture(t, config.DispatchConfig{})
	f.paging.failN = -1 // fail every attempt

	err := f.service.Dispatch(context.Background(), criticalAlert())

	require.Error(t, err)
	assert.Equal(t, 3, f.paging.callCount())
	assert.Zero(t, f.chat.callCount())
	assert.Zero(t, f.email.callCount())
}

func TestDispatchCriticalRetryBackoffIsLinear(t *testing.T) {
	interval := 20 * time.Millisecond
	f := newFixture(t, config.DispatchConfig{RetryInterval: interval})
	f.paging.failN = -1

	start := time.Now()
	err := f.service.Dispatch(context.Background(), criticalAlert())
	elapsed := time.Since(start)

	require.Error(t, err)
	// waits are 1x then 2x the interval
	assert.GreaterOrEqual(t, elapsed, 3*interval)
	assert.Less(t, elapsed, 10*interval)
}

func TestDispatchCriticalSucceedsAfterTransientFailure(t *testing.T) {
	f := newFixture(t, config.DispatchConfig{})
	f.paging.failN = 2

	err := f.service.Dispatch(context.Background(), criticalAlert())

	require.NoError(t, err)
	assert.Equal(t, 3, f.paging.callCount())
}

func TestDispatchWarningFallsBackToEmail(t *testing.T) {
	f := newFixture(t, config.DispatchConfig{})
	f.chat.failN = 1

	err := f.service.Dispatch(context.Background(), models.AlertRequest{
		Severity: models.SeverityWarning,
		Title:    "Queue growing",
		Message:  "depth=500",
		TenantID: "T1",
	})

	require.NoError(t, err)
	assert.Equal(t, 1, f.chat.callCount())
	assert.Equal(t, 1, f.email.callCount())
	assert.Equal(t, "Queue growing", f.email.lastCall().Title)
	assert.Equal(t, "depth=500", f.email.lastCall().Message)
}

func TestDispatchWarningFallbackFailureNeverSurfaces(t *testing.T) {
	f := newFixture(t, config.DispatchConfig{})
	f.chat.failN = -1
	f.email.failN = -1

	err := f.service.Dispatch(context.Background(), models.AlertRequest{
		Severity: models.SeverityWarning,
		Title:    "Queue growing",
		Message:  "depth=500",
		TenantID: "T1",
	})

	require.NoError(t, err)
}

func TestDispatchInfoFailureIsSwallowed(t *testing.T) {
	f := newFixture(t, config.DispatchConfig{})
	f.email.failN = -1

	err := f.service.Dispatch(context.Background(), models.AlertRequest{
		Severity: models.SeverityInfo,
		Title:    "Cache warmed",
		TenantID: "T1",
	})

	require.NoError(t, err)
	assert.Equal(t, 1, f.email.callCount())
}

func TestDispatchSuppressesDuplicateWithinWindow(t *testing.T) {
	f := newFixture(t, config.DispatchConfig{})

	require.NoError(t, f.service.Dispatch(context.Background(), criticalAlert()))
	require.NoError(t, f.service.Dispatch(context.Background(), criticalAlert()))

	assert.Equal(t, 1, f.paging.callCount())
}

func TestDispatchResendsAfterWindowElapsed(t *testing.T) {
	f := newFixture(t, config.DispatchConfig{})

	now := time.Now()
	f.ledger.SetNowFunc(func() time.Time { return now })

	require.NoError(t, f.service.Dispatch(context.Background(), criticalAlert()))

	now = now.Add(5*time.Minute + time.Second)
	require.NoError(t, f.service.Dispatch(context.Background(), criticalAlert()))

	assert.Equal(t, 2, f.paging.callCount())
}

func TestDispatchDedupKeyIsTenantSeverityTitle(t *testing.T) {
	f := newFixture(t, config.DispatchConfig{})

	base := criticalAlert()
	require.NoError(t, f.service.Dispatch(context.Background(), base))

	otherTenant := base
	otherTenant.TenantID = "T2"
	require.NoError(t, f.service.Dispatch(context.Background(), otherTenant))

	otherSeverity := base
	otherSeverity.Severity = models.SeverityWarning
	require.NoError(t, f.service.Dispatch(context.Background(), otherSeverity))

	assert.Equal(t, 2, f.paging.callCount())
	assert.Equal(t, 1, f.chat.callCount())
}

func TestDispatchFailedCriticalStillCountsAgainstDedupAndQuota(t *testing.T) {
	f := newFixture(t, config.DispatchConfig{TenantQuota: 1})
	f.paging.failN = -1

	require.Error(t, f.service.Dispatch(context.Background(), criticalAlert()))
	assert.Equal(t, 3, f.paging.callCount())
	assert.Equal(t, 1, f.ledger.Len())

	// attempted, not skipped: the retry-exhausted send still holds the
	// dedup window and the quota slot
	require.NoError(t, f.service.Dispatch(context.Background(), criticalAlert()))
	assert.Equal(t, 3, f.paging.callCount())

	other := criticalAlert()
	other.Title = "DB still down"
	require.NoError(t, f.service.Dispatch(context.Background(), other))
	assert.Equal(t, 3, f.paging.callCount())
}

func TestDispatchDropsSilentlyWhenQuotaExhausted(t *testing.T) {
	f := newFixture(t, config.DispatchConfig{TenantQuota: 100})

	for i := 0; i < 101; i++ {
		req := models.AlertRequest{
			Severity: models.SeverityWarning,
			Title:    "Queue growing",
			Message:  "depth=500",
			TenantID: "T1",
		}
		// distinct titles keep dedup out of the picture
		req.Title = req.Title + string(rune('A'+i%26)) + string(rune('a'+i/26))
		require.NoError(t, f.service.Dispatch(context.Background(), req))
	}

	assert.Equal(t, 100, f.chat.callCount()+f.email.callCount())
}

func TestDispatchQuotaIsPerTenant(t *testing.T) {
	f := newFixture(t, config.DispatchConfig{TenantQuota: 1})

	a := criticalAlert()
	require.NoError(t, f.service.Dispatch(context.Background(), a))

	b := criticalAlert()
	b.Title = "DB down again"
	require.NoError(t, f.service.Dispatch(context.Background(), b)) // dropped, T1 exhausted

	c := criticalAlert()
	c.TenantID = "T2"
	require.NoError(t, f.service.Dispatch(context.Background(), c))

	assert.Equal(t, 2, f.paging.callCount())
}

func TestDispatchRedactsMessageAndMetadata(t *testing.T) {
	f := newFixture(t, config.DispatchConfig{})

	err := f.service.Dispatch(context.Background(), models.AlertRequest{
		Severity: models.SeverityInfo,
		Title:    "Webhook registration failed",
		Message:  "failed with token=abc123xyz",
		TenantID: "T1",
		Metadata: map[string]string{
			"apiKey": "sk-12345",
			"region": "eu-west-1",
		},
	})

	require.NoError(t, err)
	require.Equal(t, 1, f.email.callCount())

	delivered := f.email.lastCall()
	assert.NotContains(t, delivered.Message, "abc123xyz")
	assert.Contains(t, delivered.Message, "[REDACTED]")
	assert.NotContains(t, delivered.Metadata, "apiKey")
	assert.Equal(t, "eu-west-1", delivered.Metadata["region"])
}

func TestDispatchRejectsInvalidRequest(t *testing.T) {
	f := newFixture(t, config.DispatchConfig{})

	err := f.service.Dispatch(context.Background(), models.AlertRequest{
		Severity: "FATAL",
		Title:    "whatever",
		TenantID: "T1",
	})

	require.Error(t, err)
	assert.Zero(t, f.paging.callCount())
	assert.Zero(t, f.chat.callCount())
	assert.Zero(t, f.email.callCount())
}

func TestDispatchSuppressionRuleDropsAlert(t *testing.T) {
	f := newFixture(t, config.DispatchConfig{
		SuppressionRules: []config.SuppressionRule{
			{ID: "mute-staging", Expression: `tenant_id == "staging"`},
		},
	})

	muted := criticalAlert()
	muted.TenantID = "staging"
	require.NoError(t, f.service.Dispatch(context.Background(), muted))
	require.NoError(t, f.service.Dispatch(context.Background(), criticalAlert()))

	assert.Equal(t, 1, f.paging.callCount())
	assert.Equal(t, "T1", f.paging.lastCall().TenantID)
}
