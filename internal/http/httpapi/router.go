package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"stockstudio/internal/http/handlers"
	"stockstudio/internal/infra"
	"stockstudio/internal/middleware"
)

// RouterOptions carries the cross-cutting pieces the middleware chain needs.
type RouterOptions struct {
	Logger          infra.Logger
	AllowedOrigins  []string
	RateLimitPerMin int
	Country         middleware.CountryLookup
}

func NewRouter(app *handlers.App, opts RouterOptions) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.Geo(opts.Country),
		middleware.Logger(opts.Logger),
		middleware.CORS(opts.AllowedOrigins),
	)
	if opts.RateLimitPerMin > 0 {
		r.Use(middleware.RateLimit(opts.RateLimitPerMin, time.Minute))
	}

	r.Get("/v1/healthz", app.Health)

	r.Route("/v1/batch", func(r chi.Router) {
		r.Get("/", app.BatchState)
		r.Post("/items", app.EnqueueItems)
		r.Delete("/items", app.ClearItems)
		r.Delete("/items/{id}", app.RemoveItem)
		r.Post("/items/{id}/retry", app.RetryItem)
		r.Post("/start", app.StartBatch)
		r.Post("/stop", app.StopBatch)
		r.Get("/export", app.ExportCSV)
	})

	r.Route("/v1/trends", func(r chi.Router) {
		r.Get("/", app.Trends)
		r.Post("/analyze", app.AnalyzeTopic)
		r.Post("/battle", app.BattleNiches)
	})

	r.Post("/v1/prompts/bulk", app.BulkPrompts)

	return r
}
