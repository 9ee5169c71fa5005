package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"gastos/internal/ledger"
	"gastos/internal/log"
	"gastos/internal/middleware/auth"
	"gastos/internal/middleware/ratelimit"
	"gastos/internal/middleware/security"
	"gastos/internal/middleware/trace"
	"gastos/internal/services"
)

// Deps are the collaborators the handlers work against.
type Deps struct {
	Processor *services.MessageProcessor
	Store     ledger.Store
	Reader    ledger.Reader
	Pinger    ledger.Pinger
	Clock     ledger.Clock
	Logger    *log.Logger
}

// Options tune the HTTP surface. Empty secrets disable the matching check.
type Options struct {
	TwilioAuthToken   string
	PublicBaseURL     string
	APIJWTSecret      string
	RequestsPerMinute int
}

type Server struct {
	http.Server

	processor *services.MessageProcessor
	store     ledger.Store
	reader    ledger.Reader
	pinger    ledger.Pinger
	clock     ledger.Clock
	logger    *log.Logger
	opts      Options

	rateLimiter     *ratelimit.Limiter
	traceMiddleware *trace.Middleware
	clientIP        *security.ClientIPResolver
	started         time.Time

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, deps Deps, opts Options) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	clock := deps.Clock
	if clock == nil {
		clock = ledger.SystemClock{}
	}

	s := &Server{
		processor:   deps.Processor,
		store:       deps.Store,
		reader:      deps.Reader,
		pinger:      deps.Pinger,
		clock:       clock,
		logger:      logger.WithComponent(log.ComponentHTTP),
		opts:        opts,
		rateLimiter: ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RequestsPerMinute}),
		clientIP:    security.NewClientIPResolver(),
		started:     time.Now(),
	}
	s.traceMiddleware = trace.NewMiddleware(logger, s.clientIP.ClientIP)

	r := mux.NewRouter()
	r.Use(s.traceMiddleware.Middleware)
	r.Use(security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware)
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		NotFoundError("not found").Write(w)
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ErrorResponse(http.StatusMethodNotAllowed, "method not allowed").Write(w)
	})

	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/readyz", s.handleReady).Methods(http.MethodGet)
	r.HandleFunc("/metrics", s.handleMetrics).Methods(http.MethodGet)

	webhook := r.PathPrefix("/webhook").Subrouter()
	webhook.Use(s.rateLimiter.Middleware(s.clientIP.ClientIP, func(w http.ResponseWriter, r *http.Request) {
		s.logger.WarnContext(r.Context(), "Rate limit exceeded", log.FieldClientIP, s.clientIP.ClientIP(r))
		ErrorResponse(http.StatusTooManyRequests, "rate limit exceeded").Header("Retry-After", "60").Write(w)
	}))
	webhook.HandleFunc("/whatsapp", s.handleWhatsApp).Methods(http.MethodPost)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(auth.Middleware(opts.APIJWTSecret))
	api.HandleFunc("/gastos", s.handleListExpenses).Methods(http.MethodGet)
	api.HandleFunc("/gastos/{id:[0-9]+}", s.handleGetExpense).Methods(http.MethodGet)
	api.HandleFunc("/resumen", s.handleSummary).Methods(http.MethodGet)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Shutdown gracefully shuts down the server and its background routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
