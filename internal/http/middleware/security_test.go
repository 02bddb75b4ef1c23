package middleware

import (
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

const allExposed = "X-Request-ID, X-RateLimit-Limit, X-RateLimit-Remaining, Retry-After"

func serveSecurity(t *testing.T, opt SecurityOptions, pre gin.HandlerFunc, req *http.Request) http.Header {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	if pre != nil {
		r.Use(pre)
	}
	r.Use(SecurityHeaders(opt))
	r.Any("/x", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Header()
}

func TestSecurityHeaders_Baseline_And_ExposeHeader(t *testing.T) {
	t.Run("baseline headers", func(t *testing.T) {
		h := serveSecurity(t, SecurityOptions{}, nil, httptest.NewRequest(http.MethodGet, "/x", nil))

		if h.Get("X-Content-Type-Options") != "nosniff" ||
			h.Get("X-Frame-Options") != "DENY" ||
			h.Get("Referrer-Policy") != "no-referrer" {
			t.Fatalf("baseline headers missing: %#v", h)
		}
		if h.Get("Permissions-Policy") != "" || h.Get("X-Permitted-Cross-Domain-Policies") != "" {
			t.Fatalf("unexpected policy headers: %#v", h)
		}
		if h.Get("Cache-Control") != "" || h.Get("Pragma") != "" || h.Get("Expires") != "" {
			t.Fatalf("unexpected cache headers: %#v", h)
		}
		if h.Get("Strict-Transport-Security") != "" {
			t.Fatalf("unexpected HSTS: %#v", h)
		}
		if got := h.Get("Access-Control-Expose-Headers"); got != allExposed {
			t.Fatalf("expose headers = %q", got)
		}
	})

	t.Run("merge with existing expose header", func(t *testing.T) {
		pre := func(c *gin.Context) {
			c.Header("Access-Control-Expose-Headers", "Content-Length, x-request-id")
			c.Next()
		}
		h := serveSecurity(t, SecurityOptions{}, pre, httptest.NewRequest(http.MethodGet, "/x", nil))
		want := "Content-Length, x-request-id, X-RateLimit-Limit, X-RateLimit-Remaining, Retry-After"
		if got := h.Get("Access-Control-Expose-Headers"); got != want {
			t.Fatalf("expose headers = %q; want %q", got, want)
		}
	})

	t.Run("already complete expose header untouched", func(t *testing.T) {
		pre := func(c *gin.Context) {
			c.Header("Access-Control-Expose-Headers", allExposed)
			c.Next()
		}
		h := serveSecurity(t, SecurityOptions{}, pre, httptest.NewRequest(http.MethodGet, "/x", nil))
		if got := h.Get("Access-Control-Expose-Headers"); got != allExposed {
			t.Fatalf("expose headers = %q", got)
		}
	})
}

func TestSecurityHeaders_WithPolicy_NoStore_HSTS_TLS(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.TLS = &tls.ConnectionState{}
	h := serveSecurity(t, SecurityOptions{
		EnableHSTS:   true,
		HSTSMaxAge:   24 * time.Hour,
		NoStore:      true,
		EnablePolicy: true,
	}, nil, req)

	if h.Get("Permissions-Policy") == "" || h.Get("X-Permitted-Cross-Domain-Policies") != "none" {
		t.Fatalf("policy headers missing: %#v", h)
	}
	if h.Get("Cache-Control") != "no-store" || h.Get("Pragma") != "no-cache" || h.Get("Expires") != "0" {
		t.Fatalf("no-store headers missing: %#v", h)
	}
	want := "max-age=" + strconv.Itoa(86400) + "; includeSubDomains; preload"
	if got := h.Get("Strict-Transport-Security"); got != want {
		t.Fatalf("HSTS = %q; want %q", got, want)
	}
}

func TestSecurityHeaders_NoStoreMethods(t *testing.T) {
	opt := SecurityOptions{NoStoreMethods: []string{"post", " DELETE "}}

	if h := serveSecurity(t, opt, nil, httptest.NewRequest(http.MethodGet, "/x", nil)); h.Get("Cache-Control") != "" {
		t.Fatalf("GET should stay cacheable: %#v", h)
	}
	for _, m := range []string{http.MethodPost, http.MethodDelete} {
		if h := serveSecurity(t, opt, nil, httptest.NewRequest(m, "/x", nil)); h.Get("Cache-Control") != "no-store" {
			t.Fatalf("%s should be no-store: %#v", m, h)
		}
	}
}

func TestSecurityHeaders_HSTS_XForwardedProto_DefaultMaxAge(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-Forwarded-Proto", "HTTPS")
	h := serveSecurity(t, SecurityOptions{EnableHSTS: true}, nil, req)

	want := "max-age=" + strconv.Itoa(180*24*3600) + "; includeSubDomains; preload"
	if got := h.Get("Strict-Transport-Security"); got != want {
		t.Fatalf("HSTS = %q; want %q", got, want)
	}

	// Plain HTTP never gets HSTS.
	h = serveSecurity(t, SecurityOptions{EnableHSTS: true}, nil, httptest.NewRequest(http.MethodGet, "/x", nil))
	if h.Get("Strict-Transport-Security") != "" {
		t.Fatalf("HSTS over HTTP: %#v", h)
	}
}

func Test_isHTTPS(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	if isHTTPS(r) {
		t.Fatalf("plain request should not be HTTPS")
	}
	r.Header.Set("X-Forwarded-Proto", "https")
	if !isHTTPS(r) {
		t.Fatalf("forwarded https should be HTTPS")
	}
	r2 := httptest.NewRequest(http.MethodGet, "/", nil)
	r2.TLS = &tls.ConnectionState{}
	if !isHTTPS(r2) {
		t.Fatalf("TLS request should be HTTPS")
	}
}
