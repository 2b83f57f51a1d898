package tracing

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

func TestGinMiddlewareRecordsRouteSpan(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(GinMiddleware())
	var inHandler trace.SpanContext
	r.GET("/athletes/:id/plan", func(c *gin.Context) {
		inHandler = trace.SpanContextFromContext(c.Request.Context())
		_, child := Start(c.Request.Context(), "plan.get")
		child.End()
		c.Status(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/athletes/a1/plan", nil))
	require.Equal(t, http.StatusNoContent, w.Code)

	spans := exporter.GetSpans()
	require.Len(t, spans, 2)
	assert.Equal(t, "plan.get", spans[0].Name)
	assert.Equal(t, "GET /athletes/:id/plan", spans[1].Name)
	assert.True(t, inHandler.IsValid())
	assert.Equal(t, spans[1].SpanContext.SpanID(), spans[0].Parent.SpanID())
}
