package apiserver

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/salestream/ingest/internal/config"
	v1 "github.com/salestream/ingest/internal/handlers/v1"
	"github.com/salestream/ingest/internal/service"
	"github.com/salestream/ingest/pkg/metrics"
	"github.com/salestream/ingest/pkg/middleware"
)

const (
	gracefulShutdownTimeout = 5 * time.Second
)

type Server struct {
	cfg      *config.Config
	svc      *service.IngestService
	listener net.Listener
}

// New returns a new instance of the ingest API server.
func New(cfg *config.Config, svc *service.IngestService, listener net.Listener) *Server {
	return &Server{
		cfg:      cfg,
		svc:      svc,
		listener: listener,
	}
}

func (s *Server) Run(ctx context.Context) error {
	zap.S().Named("api_server").Info("Initializing API server")

	router := chi.NewRouter()

	metricMiddleware := metrics.NewMiddleware("api_server")
	metricMiddleware.MustRegisterDefault()

	router.Use(
		metricMiddleware.Handler,
		middleware.RequestID,
		middleware.Logger(),
		chiMiddleware.Recoverer,
	)

	notificationHandler := v1.NewNotificationHandler(s.svc)
	router.Post("/api/v1/notifications", notificationHandler.Handle)
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	srv := &http.Server{
		Addr:    s.cfg.Service.Address,
		Handler: router,
	}

	go func() {
		<-ctx.Done()
		ctxTimeout, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
		defer cancel()

		srv.SetKeepAlivesEnabled(false)
		_ = srv.Shutdown(ctxTimeout)
		zap.S().Named("api_server").Info("api server terminated")
	}()

	zap.S().Named("api_server").Infof("serving notifications: %s", s.cfg.Service.Address)
	if err := srv.Serve(s.listener); err != nil && !errors.Is(err, net.ErrClosed) {
		return err
	}
	return nil
}
