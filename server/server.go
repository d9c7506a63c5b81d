// Package server exposes the payment gateway over HTTP: health probes, the
// payment endpoint, prometheus metrics, and a permissive CORS policy so
// browser frontends can call the API directly.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/merakinexus/payment-gateway/logger"
	"github.com/merakinexus/payment-gateway/metrics"
	gwtypes "github.com/merakinexus/payment-gateway/types"
)

// PaymentProcessor is the server's view of the gateway.
type PaymentProcessor interface {
	ProcessPayment(ctx context.Context, req *gwtypes.PaymentRequest) (*gwtypes.PaymentReceipt, error)
}

// HealthInfo feeds the health endpoint. Values report configuration
// presence, never secrets.
type HealthInfo struct {
	RPCURL          string
	ContractAddress string
	Environment     string
	SigningKeySet   bool
}

// Server routes HTTP traffic to the gateway.
type Server struct {
	processor PaymentProcessor
	health    HealthInfo

	// production withholds raw error details from 500 responses.
	production bool

	log     logger.Logger
	metrics metrics.Recorder

	callbackClient *http.Client
	router         *mux.Router
}

type Option func(*Server)

func WithLogger(l logger.Logger) Option {
	return func(s *Server) { s.log = l }
}

func WithMetrics(r metrics.Recorder) Option {
	return func(s *Server) { s.metrics = r }
}

// WithProduction hides underlying error text from API responses.
func WithProduction(production bool) Option {
	return func(s *Server) { s.production = production }
}

// WithCallbackTimeout bounds each best-effort callback delivery.
func WithCallbackTimeout(d time.Duration) Option {
	return func(s *Server) { s.callbackClient = &http.Client{Timeout: d} }
}

func New(processor PaymentProcessor, health HealthInfo, opts ...Option) *Server {
	s := &Server{
		processor:      processor,
		health:         health,
		log:            logger.NoopLogger{},
		metrics:        metrics.NoopRecorder{},
		callbackClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(s)
	}

	router := mux.NewRouter()
	router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	router.HandleFunc("/api/health", s.handleHealth).Methods(http.MethodGet)
	router.HandleFunc("/payment", s.handlePayment).Methods(http.MethodPost)
	router.HandleFunc("/api/payment", s.handlePayment).Methods(http.MethodPost)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	router.NotFoundHandler = http.HandlerFunc(s.handleNotFound)
	router.MethodNotAllowedHandler = http.HandlerFunc(s.handleMethodNotAllowed)
	s.router = router

	return s
}

// Handler returns the router wrapped with the open CORS policy; OPTIONS
// preflights answer 200 with no body.
func (s *Server) Handler() http.Handler {
	return handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type"}),
	)(s.router)
}

// ListenAndServe runs the server until ctx is cancelled, then drains
// in-flight requests.
func (s *Server) ListenAndServe(ctx context.Context, port int) error {
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: s.Handler(),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
