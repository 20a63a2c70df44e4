package channel

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"beacon/pkg/models"
)

func TestWebhookChannelPostsAlert(t *testing.T) {
	var received models.SanitizedAlert
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewWebhookChannel("paging", srv.URL, 2*time.Second)

	err := c.Send(context.Background(), models.SanitizedAlert{
		Severity: models.SeverityCritical,
		Title:    "DB down",
		Message:  "conn failed",
		TenantID: "T1",
	})

	require.NoError(t, err)
	assert.Equal(t, "DB down", received.Title)
	assert.Equal(t, models.SeverityCritical, received.Severity)
}

func TestWebhookChannelNon2xxIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewWebhookChannel("chat", srv.URL, 2*time.Second)

	err := c.Send(context.Background(), models.SanitizedAlert{Severity: models.SeverityWarning})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestWebhookChannelUnreachableEndpoint(t *testing.T) {
	c := NewWebhookChannel("chat", "http://127.0.0.1:1", 200*time.Millisecond)

	err := c.Send(context.Background(), models.SanitizedAlert{Severity: models.SeverityWarning})
	require.Error(t, err)
}

func TestWebhookChannelBreakerSurvivesRetrySequence(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewWebhookChannel("paging", srv.URL, 2*time.Second)

	// a full CRITICAL retry sequence must reach the transport every time
	for i := 0; i < 3; i++ {
		err := c.Send(context.Background(), models.SanitizedAlert{Severity: models.SeverityCritical})
		require.Error(t, err)
		assert.NotContains(t, err.Error(), "circuit breaker is open")
	}
}
