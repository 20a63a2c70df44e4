package channel

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"beacon/internal/constants"
	"beacon/pkg/circuitbreaker"
	"beacon/pkg/metrics"
	"beacon/pkg/models"
)

// WebhookChannel delivers alerts as a JSON POST to a fixed URL. Both the
// paging and chat transports are webhook-shaped; only the endpoint differs.
type WebhookChannel struct {
	name    string
	url     string
	client  *http.Client
	breaker *circuitbreaker.Wrapper
}

func NewWebhookChannel(name, url string, timeout time.Duration) *WebhookChannel {
	if timeout <= 0 {
		timeout = constants.DefaultChannelTimeout
	}
	return &WebhookChannel{
		name:    name,
		url:     url,
		client:  &http.Client{Timeout: timeout},
		breaker: circuitbreaker.NewWrapper(circuitbreaker.DefaultConfig(name)),
	}
}

func (c *WebhookChannel) Name() string {
	return c.name
}

func (c *WebhookChannel) Send(ctx context.Context, alert models.SanitizedAlert) error {
	start := time.Now()
	err := c.breaker.Execute(ctx, func(ctx context.Context) error {
		return c.post(ctx, alert)
	})
	metrics.ObserveChannelSend(c.name, time.Since(start), err)
	return err
}

func (c *WebhookChannel) post(ctx context.Context, alert models.SanitizedAlert) error {
	body, err := json.Marshal(alert)
	if err != nil {
		return fmt.Errorf("failed to marshal alert: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook request to %s channel failed: %w", c.name, err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%s channel returned status %d", c.name, resp.StatusCode)
	}

	return nil
}

var _ Channel = (*WebhookChannel)(nil)
