// Package httpapi wires the gin engine: middleware, service construction and
// the versioned promo API.
package httpapi

import (
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

	"github.com/tbourn/go-promo-backend/docs"
	"github.com/tbourn/go-promo-backend/internal/config"
	"github.com/tbourn/go-promo-backend/internal/http/handlers"
	"github.com/tbourn/go-promo-backend/internal/http/middleware"
	"github.com/tbourn/go-promo-backend/internal/services"
)

var (
	corsMethods = []string{"GET", "POST", "OPTIONS"}
	corsHeaders = []string{"Origin", "Content-Type", "Accept", "If-None-Match", "X-Request-ID"}
	corsExpose  = []string{"X-Request-ID", "ETag", "Location", "Content-Length"}
)

// RegisterRoutes installs middleware and mounts the API under
// cfg.APIBasePath. archive may be nil.
//
// Middleware order:
//  1. otelgin
//  2. RequestID
//  3. Logger
//  4. Recovery
//  5. body limit
//  6. gzip
//  7. Metrics
//  8. rate limiter (health and metrics exempt)
//  9. CORS, security headers
func RegisterRoutes(r *gin.Engine, db *gorm.DB, archive services.Archiver, cfg config.Config) error {
	r.HandleMethodNotAllowed = true

	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(limitBody(cfg.MaxBodyBytes))
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics"})))
	r.Use(middleware.Metrics())

	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByClientIP(), "/health", "/metrics")
	r.Use(rl.Handler())

	r.Use(corsMiddleware(cfg.CORS.AllowedOrigins)...)
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		EnablePolicy: true,
	}))

	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	r.GET("/health", health(db))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	if cfg.SwaggerEnabled {
		docs.SwaggerInfo.BasePath = cfg.APIBasePath
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	keySvc := services.NewKeyService(cfg.MaxBatch)
	snapSvc, err := services.NewSnapshotService(db, archive, cfg.MaxBatch, cfg.CacheSize)
	if err != nil {
		return err
	}
	h := handlers.New(keySvc, snapSvc)

	api := groupWithPrefix(r, cfg.APIBasePath)
	{
		api.POST("/keys", h.BuildKeys)
		api.POST("/keys/validate", h.ValidateKeys)
		api.GET("/keys/:key", h.ParseKey)
		api.POST("/diff", h.Diff)
		api.POST("/analysis", h.Analyze)

		src := api.Group("/sources/:source")
		src.POST("/snapshots", h.IngestSnapshot)
		src.GET("/snapshots", h.ListSnapshots)
		src.GET("/snapshots/:id", h.GetSnapshot)
		src.GET("/reports", h.ListReports)
		src.GET("/stability", h.Stability)
	}
	return nil
}

// health pings the database; a failing ping reports 503.
func health(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "db": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

// corsMiddleware allows every origin when allowed is empty, otherwise only
// the listed ones. ACAO is also set on non-preflight requests so simple
// clients see it without sending a preflight.
func corsMiddleware(allowed []string) []gin.HandlerFunc {
	base := cors.Config{
		AllowMethods:     corsMethods,
		AllowHeaders:     corsHeaders,
		ExposeHeaders:    corsExpose,
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}

	if len(allowed) == 0 {
		base.AllowAllOrigins = true
		return []gin.HandlerFunc{
			func(c *gin.Context) {
				c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
				c.Next()
			},
			cors.New(base),
		}
	}

	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		set[o] = struct{}{}
	}
	base.AllowOrigins = allowed
	return []gin.HandlerFunc{
		func(c *gin.Context) {
			if origin := c.GetHeader("Origin"); origin != "" {
				if _, ok := set[origin]; ok {
					h := c.Writer.Header()
					h.Set("Access-Control-Allow-Origin", origin)
					h.Add("Vary", "Origin")
				}
			}
			c.Next()
		},
		cors.New(base),
	}
}

// limitBody caps request bodies at maxBytes; <= 0 disables the cap.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if maxBytes > 0 && c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
