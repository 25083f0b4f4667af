package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/ty-credit-api/internal/service"
)

func requestCount(t *testing.T, metrics *service.MetricsService, path string) float64 {
	t.Helper()
	families, err := metrics.Registry().Gather()
	require.NoError(t, err)
	var total float64
	for _, family := range families {
		if family.GetName() != "http_requests_total" {
			continue
		}
		for _, metric := range family.GetMetric() {
			for _, label := range metric.GetLabel() {
				if label.GetName() == "path" && label.GetValue() == path {
					total += metric.GetCounter().GetValue()
				}
			}
		}
	}
	return total
}

func TestMetricsMiddlewareUsesRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	metrics := service.NewMetricsService()

	router := gin.New()
	router.Use(Metrics(metrics, "/metrics"))
	router.GET("/students/:id/credits", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/metrics", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, path := range []string{"/students/a/credits", "/students/b/credits", "/metrics", "/nope"} {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, float64(2), requestCount(t, metrics, "/students/:id/credits"))
	assert.Equal(t, float64(0), requestCount(t, metrics, "/metrics"))
	assert.Equal(t, float64(1), requestCount(t, metrics, "unmatched"))
}
