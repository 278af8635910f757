package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"rateio/internal/log"
	"rateio/internal/metrics"
	"rateio/internal/middleware/ratelimit"
	"rateio/internal/middleware/security"
)

// Options tunes the router around the handlers.
type Options struct {
	AllowedOrigins []string
	// Mutating requests per minute per client; 0 disables limiting
	WriteRateLimit int
	Metrics        *metrics.Metrics
	Logger         *log.Logger
}

// Server is the API server. Shutdown also stops the rate limiter.
type Server struct {
	http.Server
	limiter      *ratelimit.Limiter
	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run
// server.
func NewServer(addr string, h *Handler, opts Options) *Server {
	s := &Server{}
	if opts.WriteRateLimit > 0 {
		s.limiter = ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.WriteRateLimit})
	}
	s.Server = http.Server{
		Addr:              addr,
		Handler:           newRouter(h, s.limiter, opts),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}
	return s
}

func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		if s.limiter != nil {
			s.limiter.Stop()
		}
		err = s.Server.Shutdown(ctx)
	})
	return err
}

func newRouter(h *Handler, limiter *ratelimit.Limiter, opts Options) chi.Router {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	logger = logger.WithComponent(log.ComponentHTTP)
	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(log.Middleware(logger))
	r.Use(middleware.Recoverer)
	r.Use(observe(opts.Metrics))
	r.Use(security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}))
	if limiter != nil {
		ips := security.NewClientIPResolver()
		r.Use(limiter.WriteMiddleware(ips.ClientIP, func(w http.ResponseWriter, r *http.Request) {
			writeError(w, r, http.StatusTooManyRequests, "rate limit exceeded", nil)
		}))
	}

	r.Get("/", handleHealth)
	r.Method(http.MethodGet, "/metrics", opts.Metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Route("/people", func(r chi.Router) {
			r.Get("/", h.ListPeople)
			r.Post("/", h.CreatePerson)
			r.Get("/{id}", h.GetPerson)
			r.Put("/{id}", h.UpdatePerson)
			r.Patch("/{id}", h.UpdatePerson)
			r.Delete("/{id}", h.DeletePerson)
		})

		r.Route("/accounts", func(r chi.Router) {
			r.Get("/", h.ListAccounts)
			r.Post("/", h.CreateAccount)
			r.Get("/{id}", h.GetAccount)
			r.Put("/{id}", h.UpdateAccount)
			r.Patch("/{id}", h.UpdateAccount)
			r.Delete("/{id}", h.DeleteAccount)
		})

		r.Route("/expenses", func(r chi.Router) {
			r.Get("/", h.ListExpenses)
			r.Post("/", h.CreateExpense)
			r.Get("/{id}", h.GetExpense)
			r.Put("/{id}", h.UpdateExpense)
			r.Patch("/{id}", h.UpdateExpense)
			r.Delete("/{id}", h.DeleteExpense)
		})

		r.Route("/recurrences", func(r chi.Router) {
			r.Get("/", h.ListRules)
			r.Post("/", h.CreateRule)
			r.Post("/run-due", h.RunDue)
			r.Get("/{id}", h.GetRule)
			r.Put("/{id}", h.UpdateRule)
			r.Patch("/{id}", h.UpdateRule)
			r.Delete("/{id}", h.DeleteRule)
			r.Post("/{id}/generate", h.GenerateOccurrence)
		})

		r.Get("/dashboard/summary", h.DashboardSummary)
	})

	return r
}

// observe records request counts and latency by route pattern, keeping
// label cardinality bounded.
func observe(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			route := "unmatched"
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				route = rctx.RoutePattern()
			}
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			m.ObserveHTTP(r.Method, route, status, time.Since(start))
		})
	}
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "app": "rateio"})
}
