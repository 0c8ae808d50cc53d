package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heart-risk-predictor/internal/domain"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	router.Use(handlers...)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"correlation_id": c.GetString(CorrelationIDKey)})
	})
	return router
}

func get(router *gin.Engine, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestSecurityHeaders(t *testing.T) {
	w := get(newRouter(SecurityHeaders()), nil)

	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
	assert.Empty(t, w.Header().Get("Strict-Transport-Security"))
}

func TestCorrelationID(t *testing.T) {
	router := newRouter(CorrelationID())

	t.Run("Generated", func(t *testing.T) {
		w := get(router, nil)

		id := w.Header().Get("X-Correlation-ID")
		assert.Len(t, id, 36)
		assert.Contains(t, w.Body.String(), id)
	})

	t.Run("Propagated", func(t *testing.T) {
		w := get(router, map[string]string{"X-Correlation-ID": "abc-123"})

		assert.Equal(t, "abc-123", w.Header().Get("X-Correlation-ID"))
	})
}

func TestRateLimit(t *testing.T) {
	t.Run("Rejects_Over_Burst", func(t *testing.T) {
		router := newRouter(CorrelationID(), RateLimit(domain.RateLimitConfig{
			Enabled:           true,
			RequestsPerSecond: 0.001,
			Burst:             2,
		}))

		assert.Equal(t, http.StatusOK, get(router, nil).Code)
		assert.Equal(t, http.StatusOK, get(router, nil).Code)

		w := get(router, nil)
		require.Equal(t, http.StatusTooManyRequests, w.Code)

		var apiErr domain.APIError
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &apiErr))
		assert.Equal(t, domain.ErrCodeRateLimit, apiErr.Code)
		assert.NotEmpty(t, apiErr.RequestID)
	})

	t.Run("Disabled", func(t *testing.T) {
		router := newRouter(RateLimit(domain.RateLimitConfig{Enabled: false}))

		for i := 0; i < 10; i++ {
			assert.Equal(t, http.StatusOK, get(router, nil).Code)
		}
	})
}

func TestAuditLogger(t *testing.T) {
	logger, hook := test.NewNullLogger()
	router := newRouter(CorrelationID(), AuditLogger(logger))

	get(router, map[string]string{"X-Correlation-ID": "audit-1"})

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.InfoLevel, entry.Level)
	assert.Equal(t, "audit-1", entry.Data["correlation_id"])
	assert.Equal(t, "/ping", entry.Data["path"])
	assert.Equal(t, http.StatusOK, entry.Data["status"])
}
