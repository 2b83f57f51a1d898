package observability

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"alcyxob/training-engine/internal/config"
	"alcyxob/training-engine/internal/domain"
)

func TestNewLoggerLevelsAndFile(t *testing.T) {
	var buf bytes.Buffer
	file := filepath.Join(t.TempDir(), "engine.log")
	logger := NewLogger(config.LoggerConfig{Level: "warn", Format: "json", LogFile: file, MaxSize: 1}, zapcore.AddSync(&buf))

	logger.Info("hidden")
	logger.Warn("plan revised")
	require.NoError(t, logger.Sync())

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"plan revised"`)

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(data), "plan revised")
}

func TestNewLoggerDefaults(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(config.LoggerConfig{Level: "nonsense"}, zapcore.AddSync(&buf))
	logger.Debug("quiet")
	logger.Info("loud")
	assert.NotContains(t, buf.String(), "quiet")
	assert.Contains(t, buf.String(), "loud")
}

func TestMetricsRecorder(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	m.PlanBuilt(domain.ModelBlock)
	m.PlanBuilt(domain.ModelBlock)
	m.Recommendation(domain.RecommendDeload)
	m.AdaptationApplied(domain.JournalSystemAdjustment)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.PlansBuilt.WithLabelValues("block")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Recommendations.WithLabelValues("deload")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AdaptationsApplied.WithLabelValues("system_adjustment")))
}

func TestMetricsMiddlewareAndHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := NewMetrics(prometheus.NewRegistry())
	r := gin.New()
	r.Use(m.MetricsMiddleware())
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	r.GET("/metrics", m.Handler())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestCounter.WithLabelValues("GET", "/ping", "200")))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "http_requests_total")
}
