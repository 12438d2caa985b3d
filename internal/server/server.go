package server

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/hongminglow/refer-web/internal/config"
	"github.com/hongminglow/refer-web/internal/http/handlers"
	"github.com/hongminglow/refer-web/internal/middleware"
	"github.com/hongminglow/refer-web/internal/monitoring"
	"github.com/hongminglow/refer-web/internal/session"
	"github.com/hongminglow/refer-web/internal/storage"
)

// Deps are the collaborators the routes are built from.
type Deps struct {
	Backend   handlers.Backend
	Gate      *session.Gate
	Products  handlers.Products
	Orders    storage.OrderStore
	Processor handlers.OrderProcessor
	Log       *zap.Logger
	// Metrics is optional; when set, requests are recorded and /metrics is served.
	Metrics *monitoring.Metrics
}

// Server wraps an http.Server with configured routes.
type Server struct {
	inner *http.Server
}

// NewHandler wires every route and the middleware chain.
func NewHandler(cfg config.Config, deps Deps) http.Handler {
	mux := http.NewServeMux()
	handlers.NewHealthHandler(time.Now()).Register(mux)
	handlers.NewAuthHandler(deps.Backend, deps.Gate, deps.Log).Register(mux)
	handlers.NewDashboardHandler(deps.Backend, deps.Gate, cfg.SiteBaseURL, deps.Log).Register(mux)
	handlers.NewProfileHandler(deps.Backend, deps.Gate, deps.Log).Register(mux)
	handlers.NewStoreHandler(deps.Products, deps.Orders, deps.Processor, deps.Backend, deps.Gate, deps.Log).Register(mux)

	var h http.Handler = mux
	if deps.Metrics != nil {
		mux.Handle("GET /metrics", deps.Metrics.Handler())
		h = middleware.Metrics(deps.Metrics, h)
	}
	return middleware.Recover(deps.Log, middleware.CORS(cfg.CORSOrigins, middleware.Logging(deps.Log, h)))
}

// New wires up middleware, routes, and returns a ready server.
func New(cfg config.Config, deps Deps) *Server {
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddress(),
		Handler:           NewHandler(cfg, deps),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		// Checkout holds the response open for the simulated processing delay.
		WriteTimeout: cfg.APITimeout + cfg.CheckoutWait + 10*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return &Server{inner: httpServer}
}

// Start begins serving HTTP traffic.
func (s *Server) Start() error {
	return s.inner.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.inner.Shutdown(ctx)
}
