// Package httpapi wires the HTTP transport (Gin) to the cafe service,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, logging/redaction, panic recovery, compression,
// metrics, idempotency, CORS, security headers, and the /all quota.
//
// Design goals:
//   - Put observability first (OTel + Prometheus)
//   - Safe-by-default middleware ordering (RequestID → logging → recovery)
//   - Deterministic, minimal router setup; all dependencies injected
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	_ "github.com/tbourn/go-cafe-api/docs" // registers the swagger docs
	"github.com/tbourn/go-cafe-api/internal/config"
	"github.com/tbourn/go-cafe-api/internal/domain"
	"github.com/tbourn/go-cafe-api/internal/http/handlers"
	"github.com/tbourn/go-cafe-api/internal/http/middleware"
	"github.com/tbourn/go-cafe-api/internal/ratelimit"
	"github.com/tbourn/go-cafe-api/internal/repo"
	"github.com/tbourn/go-cafe-api/internal/services"
)

const defaultIdempotencyTTL = 24 * time.Hour

// cafeRepoShim adapts the repository free functions to the services.CafeRepo
// interface expected by the CafeService.
type cafeRepoShim struct{}

// ListCafes proxies repo.ListCafes.
func (cafeRepoShim) ListCafes(ctx context.Context, db *gorm.DB) ([]domain.Cafe, error) {
	return repo.ListCafes(ctx, db)
}

// FindCafesByLocation proxies repo.FindCafesByLocation.
func (cafeRepoShim) FindCafesByLocation(ctx context.Context, db *gorm.DB, loc string) ([]domain.Cafe, error) {
	return repo.FindCafesByLocation(ctx, db, loc)
}

// GetCafe proxies repo.GetCafe.
func (cafeRepoShim) GetCafe(ctx context.Context, db *gorm.DB, id uint) (*domain.Cafe, error) {
	return repo.GetCafe(ctx, db, id)
}

// CountCafes proxies repo.CountCafes (random selection support).
func (cafeRepoShim) CountCafes(ctx context.Context, db *gorm.DB) (int64, error) {
	return repo.CountCafes(ctx, db)
}

// CafeAt proxies repo.CafeAt (random selection support).
func (cafeRepoShim) CafeAt(ctx context.Context, db *gorm.DB, offset int) (*domain.Cafe, error) {
	return repo.CafeAt(ctx, db, offset)
}

// CreateCafe proxies repo.CreateCafe.
func (cafeRepoShim) CreateCafe(ctx context.Context, db *gorm.DB, in domain.CafeInput) (*domain.Cafe, error) {
	return repo.CreateCafe(ctx, db, in)
}

// UpdateCoffeePrice proxies repo.UpdateCoffeePrice.
func (cafeRepoShim) UpdateCoffeePrice(ctx context.Context, db *gorm.DB, id uint, price string) error {
	return repo.UpdateCoffeePrice(ctx, db, id, price)
}

// DeleteCafe proxies repo.DeleteCafe.
func (cafeRepoShim) DeleteCafe(ctx context.Context, db *gorm.DB, id uint) error {
	return repo.DeleteCafe(ctx, db, id)
}

// idemStore implements handlers.IdempotencyStore on the idempotency table.
type idemStore struct {
	db  *gorm.DB
	ttl time.Duration
}

func (s idemStore) Seen(ctx context.Context, client, key string) (bool, error) {
	_, err := repo.GetIdempotency(ctx, s.db, client, key, time.Now().UTC())
	if errors.Is(err, repo.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

// Record treats an existing record as success: a concurrent retry got there first.
func (s idemStore) Record(ctx context.Context, client, key string, cafeID uint) error {
	ttl := s.ttl
	if ttl <= 0 {
		ttl = defaultIdempotencyTTL
	}
	_, err := repo.CreateIdempotency(ctx, s.db, client, key, cafeID, ttl)
	if errors.Is(err, repo.ErrDuplicate) {
		return nil
	}
	return err
}

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine. quota backs the daily limit on GET /all.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. RedactingLogger: structured logs with api_key scrubbing
//  4. Recovery: capture panics after logger
//  5. Body size limiter
//  6. Gzip
//  7. Metrics
//  8. Idempotency validator
//  9. CORS and Security headers
func RegisterRoutes(r *gin.Engine, db *gorm.DB, quota ratelimit.Quota, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Structured logging with redaction
	r.Use(middleware.RedactingLogger(middleware.RedactOptions{}))

	// 4) Panic recovery to JSON 500 (with request id)
	r.Use(middleware.Recovery())

	// 5) Global body size limit (1 MiB)
	r.Use(limitBody(1 << 20))

	// 6) Compression; /metrics is scraped uncompressed
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics"})))

	// 7) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 8) Idempotency-Key validation and replay detection
	r.Use(middleware.IdempotencyValidator(
		middleware.IdempotencyOptions{MaxLen: 200},
		func(ctx context.Context, client, key string, now time.Time) (bool, error) {
			rec, err := repo.GetIdempotency(ctx, db, client, key, now)
			if errors.Is(err, repo.ErrNotFound) {
				return false, nil
			}
			if err != nil {
				return false, err
			}
			return rec != nil, nil
		},
	))

	// 9) CORS posture (safe defaults: allow all if none configured)
	allowHeaders := []string{"Origin", "Content-Type", "Accept", "X-API-Key", middleware.HeaderIdempotencyKey}
	exposeHeaders := []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining", "Retry-After", handlers.HeaderErrorCode}
	allowMethods := []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"}
	if len(cfg.CORS.AllowedOrigins) == 0 {
		// Force ACAO: * even for requests without an Origin header (simple clients, health checks).
		r.Use(func(c *gin.Context) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowAllOrigins:  true,
			AllowMethods:     allowMethods,
			AllowHeaders:     allowHeaders,
			ExposeHeaders:    exposeHeaders,
			AllowCredentials: false, // must remain false with AllowAllOrigins
			MaxAge:           12 * time.Hour,
		}))
	} else {
		// Echo ACAO with the request Origin when it is in the allowlist (in addition to gin-contrib/cors).
		allowed := make(map[string]struct{}, len(cfg.CORS.AllowedOrigins))
		for _, o := range cfg.CORS.AllowedOrigins {
			allowed[o] = struct{}{}
		}
		r.Use(func(c *gin.Context) {
			if origin := c.GetHeader("Origin"); origin != "" {
				if _, ok := allowed[origin]; ok {
					h := c.Writer.Header()
					h.Set("Access-Control-Allow-Origin", origin)
					h.Add("Vary", "Origin")
				}
			}
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORS.AllowedOrigins,
			AllowMethods:     allowMethods,
			AllowHeaders:     allowHeaders,
			ExposeHeaders:    exposeHeaders,
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}))
	}

	// Security headers (HSTS only when enabled and request is HTTPS)
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:     cfg.Security.EnableHSTS,
		HSTSMaxAge:     cfg.Security.HSTSMaxAge,
		NoStoreMethods: []string{http.MethodPost, http.MethodPatch, http.MethodDelete},
		EnablePolicy:   true,
	}))

	// Fallbacks
	r.NoRoute(handlers.RouteNotFound)
	r.NoMethod(handlers.MethodNotAllowed)

	// Liveness/health. The quota store fails open, so its breaker state is
	// reported without affecting the status code.
	r.GET("/health", func(c *gin.Context) {
		body := gin.H{"status": "ok"}
		if sr, ok := quota.(ratelimit.StateReporter); ok {
			body["quota_store"] = sr.State()
		}
		if err := ping(c.Request.Context(), db); err != nil {
			middleware.LoggerFrom(c).Error().Err(err).Msg("health check failed")
			body["status"] = "unavailable"
			c.JSON(http.StatusServiceUnavailable, body)
			return
		}
		c.JSON(http.StatusOK, body)
	})

	if cfg.SwaggerEnabled {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Dependency injection: service ← repo/db
	svc := services.NewCafeService(db, cafeRepoShim{}, cfg.APIKey)
	h := handlers.New(svc, idemStore{db: db, ttl: cfg.IdempotencyTTL})
	limiter := middleware.NewQuotaLimiter(quota, middleware.KeyByIP())

	r.GET("/", h.Home)
	r.GET("/all", limiter.Handler(cfg.Quota.Window), h.AllCafes)
	r.GET("/random", h.RandomCafe)
	r.GET("/search", h.SearchCafes)
	r.POST("/add", h.AddCafe)
	r.PATCH("/update/:id", h.UpdatePrice)
	r.DELETE("/delete/:id", h.DeleteCafe)
}

// limitBody returns a Gin middleware that caps the request body size for all
// endpoints to maxBytes using http.MaxBytesReader. Requests exceeding the cap
// will cause downstream body reads to error.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// ping checks that the database answers within two seconds.
func ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return sqlDB.PingContext(ctx)
}
