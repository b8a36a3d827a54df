package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"geostrat/app/observability/metrics"
	"geostrat/internal/api"
	"geostrat/internal/api/analysis"
	"geostrat/internal/api/auth"
	"geostrat/internal/api/item"
)

// Config contains the dependencies needed for the router setup. Handlers and
// middleware are injected explicitly; the router owns no live state.
type Config struct {
	AuthHandler        *auth.Handler
	ItemHandler        *item.Handler
	AnalysisHandler    *analysis.Handler
	IdentityMiddleware func(http.Handler) http.Handler
	Metrics            *metrics.AppMetrics
	AllowedOrigins     []string
}

// SetupRouter wires the external surface. Server-wide middleware (request id,
// logger, recoverer) is applied by the caller before mounting this router.
func SetupRouter(cfg *Config) chi.Router {
	r := chi.NewRouter()

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:5173", "http://localhost:3000"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if cfg.Metrics != nil {
		r.Use(requestMetrics(cfg.Metrics))
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		api.WriteJSONResponse(w, r, http.StatusOK, map[string]string{
			"status":  "OK",
			"message": "API is running",
		})
	})

	r.Post("/auth/login", cfg.AuthHandler.Login)
	r.Post("/auth/logout", cfg.AuthHandler.Logout)
	r.Get("/auth/me", cfg.AuthHandler.Me)

	// Item routes are open; a valid identity cookie only attributes writes.
	r.Group(func(r chi.Router) {
		if cfg.IdentityMiddleware != nil {
			r.Use(cfg.IdentityMiddleware)
		}
		r.Get("/items", cfg.ItemHandler.ListItems)
		r.Post("/items", cfg.ItemHandler.CreateItem)
		r.Get("/items/{id}", cfg.ItemHandler.GetItem)
		r.Put("/items/{id}", cfg.ItemHandler.UpdateItem)
		r.Delete("/items/{id}", cfg.ItemHandler.DeleteItem)
		r.Get("/creators", cfg.ItemHandler.ListCreators)
	})

	r.Get("/analysis", cfg.AnalysisHandler.GetSeries)

	return r
}

func requestMetrics(m *metrics.AppMetrics) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			attrs := metric.WithAttributes(
				attribute.String("method", r.Method),
				attribute.Int("status", ww.Status()),
			)
			m.RequestsTotal.Add(r.Context(), 1, attrs)
			m.RequestDurationSeconds.Record(r.Context(), time.Since(start).Seconds(), attrs)
		})
	}
}
