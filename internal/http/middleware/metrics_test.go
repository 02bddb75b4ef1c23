package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tbourn/go-cafe-api/internal/ratelimit"
)

func TestMetrics_Counters_InflightAndUnmatchedLabel(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(Metrics())
	r.GET("/search", func(c *gin.Context) { c.String(http.StatusOK, "hello") })
	r.DELETE("/delete/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	baseOK := testutil.ToFloat64(httpReqs.WithLabelValues("GET", "/search", "200"))
	base404 := testutil.ToFloat64(httpReqs.WithLabelValues("GET", unmatchedPath, "404"))
	baseDel := testutil.ToFloat64(httpReqs.WithLabelValues("DELETE", "/delete/:id", "204"))

	for _, tc := range []struct {
		method, path string
		code         int
	}{
		{http.MethodGet, "/search", http.StatusOK},
		{http.MethodGet, "/does-not-exist", http.StatusNotFound},
		{http.MethodGet, "/another/random/path", http.StatusNotFound},
		{http.MethodDelete, "/delete/7", http.StatusNoContent},
	} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(tc.method, tc.path, nil))
		if w.Code != tc.code {
			t.Fatalf("%s %s -> %d; want %d", tc.method, tc.path, w.Code, tc.code)
		}
	}

	if got := testutil.ToFloat64(httpReqs.WithLabelValues("GET", "/search", "200")); got != baseOK+1 {
		t.Fatalf("counter /search 200 = %v; want %v", got, baseOK+1)
	}
	if got := testutil.ToFloat64(httpReqs.WithLabelValues("GET", unmatchedPath, "404")); got != base404+2 {
		t.Fatalf("unmatched 404 = %v; want %v", got, base404+2)
	}
	if got := testutil.ToFloat64(httpReqs.WithLabelValues("DELETE", "/delete/:id", "204")); got != baseDel+1 {
		t.Fatalf("route pattern label = %v; want %v", got, baseDel+1)
	}
	if inFlight := testutil.ToFloat64(httpInflight); inFlight != 0 {
		t.Fatalf("httpInflight = %v; want 0", inFlight)
	}
}

func TestMetrics_QuotaDecisions(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rl := NewQuotaLimiter(ratelimit.NewMemory(1, time.Hour), nil)

	r := gin.New()
	r.GET("/all", rl.Handler(time.Hour), func(c *gin.Context) { c.Status(http.StatusOK) })

	baseAllowed := testutil.ToFloat64(quotaDecisions.WithLabelValues("/all", "allowed"))
	baseRejected := testutil.ToFloat64(quotaDecisions.WithLabelValues("/all", "rejected"))

	for i := 0; i < 3; i++ {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/all", nil))
	}

	if got := testutil.ToFloat64(quotaDecisions.WithLabelValues("/all", "allowed")); got != baseAllowed+1 {
		t.Fatalf("allowed = %v; want %v", got, baseAllowed+1)
	}
	if got := testutil.ToFloat64(quotaDecisions.WithLabelValues("/all", "rejected")); got != baseRejected+2 {
		t.Fatalf("rejected = %v; want %v", got, baseRejected+2)
	}
}
