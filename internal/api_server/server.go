package apiserver

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kubev2v/assessment-report-exporter/internal/config"
	"github.com/kubev2v/assessment-report-exporter/pkg/metrics"
	"github.com/kubev2v/assessment-report-exporter/pkg/middleware"
)

const (
	gracefulShutdownTimeout = 5 * time.Second
	// exports render a browser page, so writes get more room than a regular API call
	writeTimeout = 5 * time.Minute
)

type Server struct {
	cfg      *config.Config
	listener net.Listener
	exporter Exporter
}

// New returns a new instance of the export server.
func New(cfg *config.Config, listener net.Listener, exporter Exporter) *Server {
	return &Server{
		cfg:      cfg,
		listener: listener,
		exporter: exporter,
	}
}

// Router builds the export API router with its middleware stack.
func (s *Server) Router() (chi.Router, error) {
	router := chi.NewRouter()

	metricMiddleware := metrics.NewMiddleware("api_server")
	if err := metricMiddleware.Register(prometheus.DefaultRegisterer); err != nil {
		return nil, err
	}

	router.Use(
		metricMiddleware.Handler,
		cors.Handler(cors.Options{
			AllowedOrigins:   s.cfg.Service.CorsAllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"*"},
			ExposedHeaders:   []string{"Content-Disposition"},
			AllowCredentials: false,
			MaxAge:           300,
		}),
		middleware.RequestID,
		middleware.Logger(),
		chiMiddleware.Recoverer,
	)

	RegisterApi(router, s.exporter, s.cfg.Service.MaxBodyBytes)
	return router, nil
}

func (s *Server) Run(ctx context.Context) error {
	zap.S().Named("api_server").Info("Initializing API server")

	router, err := s.Router()
	if err != nil {
		return err
	}

	srv := http.Server{
		Addr:              s.cfg.Service.Address,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      writeTimeout,
	}

	go func() {
		<-ctx.Done()
		zap.S().Named("api_server").Infof("Shutdown signal received: %s", ctx.Err())
		ctxTimeout, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
		defer cancel()

		srv.SetKeepAlivesEnabled(false)
		_ = srv.Shutdown(ctxTimeout)
		zap.S().Named("api_server").Info("api server terminated")
	}()

	zap.S().Named("api_server").Infof("Listening on %s...", s.listener.Addr().String())
	if err := srv.Serve(s.listener); err != nil && !errors.Is(err, net.ErrClosed) && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
