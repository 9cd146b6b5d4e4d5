package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/utafrali/storefront/internal/service"
	"github.com/utafrali/storefront/pkg/health"
	"github.com/utafrali/storefront/pkg/middleware"
)

// ServiceName labels HTTP metrics and spans emitted by the API server.
const ServiceName = "storefront-api"

// authRealm is the HTTP Basic realm advertised on review submission.
const authRealm = "storefront"

const requestTimeout = 30 * time.Second

// productCacheMaxAge is how long clients and proxies may reuse catalog reads, in seconds.
const productCacheMaxAge = 60

// RouterOptions holds the transport-level settings for NewRouter.
type RouterOptions struct {
	CORS              middleware.CORSConfig
	PprofAllowedCIDRs []string
}

// NewRouter creates a chi router with all storefront API routes registered.
func NewRouter(
	userService *service.UserService,
	productService *service.ProductService,
	reviewService *service.ReviewService,
	healthHandler *health.Handler,
	opts RouterOptions,
	logger *slog.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.CORS(opts.CORS))
	r.Use(middleware.Recovery(logger))
	r.Use(chimw.Timeout(requestTimeout))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.Tracing(ServiceName))
	r.Use(middleware.PrometheusMetrics(ServiceName))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())

	r.Handle("/metrics", promhttp.Handler())

	middleware.RegisterPprof(r, opts.PprofAllowedCIDRs, logger)

	productHandler := NewProductHandler(productService, logger)

	r.Route("/api/product", func(r chi.Router) {
		r.Use(middleware.CacheControl(productCacheMaxAge))
		r.Get("/", productHandler.ListProducts)
		r.Get("/select/{id}", productHandler.GetProduct)
	})

	reviewHandler := NewReviewHandler(reviewService, logger)

	r.Route("/api/review", func(r chi.Router) {
		r.Get("/{productId}", reviewHandler.ListReviews)
		r.Get("/{productId}/summary", reviewHandler.GetSummary)

		r.Group(func(r chi.Router) {
			r.Use(middleware.BasicAuth(authRealm, userService.Authenticate, logger))
			r.Post("/", reviewHandler.CreateReview)
		})
	})

	userHandler := NewUserHandler(userService, logger)

	r.Route("/api/user", func(r chi.Router) {
		r.Get("/", userHandler.ListUsers)
		r.Post("/", userHandler.Register)
		r.Get("/select/{username}", userHandler.GetUser)

		r.Route("/login", func(r chi.Router) {
			r.Use(middleware.NoStore)
			r.Get("/", userHandler.LegacyLogin)
			r.Post("/", userHandler.Login)
		})
	})

	return r
}
