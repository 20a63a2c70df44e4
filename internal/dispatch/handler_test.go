package dispatch

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"beacon/internal/config"
	"beacon/internal/logger"
)

func setupRouter(t *testing.T, f *fixture) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	NewHandler(f.service, logger.NopLogger()).RegisterRoutes(router)
	return router
}

func postAlert(router *gin.Engine, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/alerts", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func TestCreateAlertAccepted(t *testing.T) {
	f := newFixture(t, config.DispatchConfig{})
	router := setupRouter(t, f)

	w := postAlert(router, `{"severity":"INFO","title":"Cache warmed","message":"ok","tenant_id":"T1"}`)

	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, 1, f.email.callCount())
}

func TestCreateAlertSuppressedStillAccepted(t *testing.T) {
	f := newFixture(t, config.DispatchConfig{})
	router := setupRouter(t, f)

	body := `{"severity":"WARNING","title":"Queue growing","message":"depth=500","tenant_id":"T1"}`
	require.Equal(t, http.StatusAccepted, postAlert(router, body).Code)
	require.Equal(t, http.StatusAccepted, postAlert(router, body).Code)

	assert.Equal(t, 1, f.chat.callCount())
}

func TestCreateAlertInvalidBody(t *testing.T) {
	f := newFixture(t, config.DispatchConfig{})
	router := setupRouter(t, f)

	w := postAlert(router, `{not json`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateAlertValidationFailure(t *testing.T) {
	f := newFixture(t, config.DispatchConfig{})
	router := setupRouter(t, f)

	w := postAlert(router, `{"severity":"FATAL","title":"x","tenant_id":"T1"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "VALIDATION_ERROR")
}

func TestCreateAlertCriticalDeliveryFailure(t *testing.T) {
	f := newFixture(t, config.DispatchConfig{})
	f.paging.failN = -1
	router := setupRouter(t, f)

	w := postAlert(router, `{"severity":"CRITICAL","title":"DB down","message":"conn failed","tenant_id":"T1"}`)

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "DISPATCH_FAILED")
	assert.Equal(t, 3, f.paging.callCount())
}
