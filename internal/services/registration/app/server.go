package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/louisbranch/rawcn/internal/platform/timeouts"
	"github.com/louisbranch/rawcn/internal/services/registration/account"
	registrationservice "github.com/louisbranch/rawcn/internal/services/registration/api/grpc/registration"
	"github.com/louisbranch/rawcn/internal/services/registration/api/httpapi"
	"github.com/louisbranch/rawcn/internal/services/registration/flow"
	regsqlite "github.com/louisbranch/rawcn/internal/services/registration/storage/sqlite"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	grpc_health_v1 "google.golang.org/grpc/health/grpc_health_v1"
)

// Config holds everything the registration server needs to start.
type Config struct {
	Port     int
	HTTPAddr string
	DBPath   string
	Auth     account.Config
	Images   ImageHostConfig
	Logger   *zap.Logger
	// ImageHTTPClient overrides the client used to reach the image host.
	ImageHTTPClient *http.Client
}

// Server hosts the registration service.
type Server struct {
	listener     net.Listener
	grpcServer   *grpc.Server
	health       *health.Server
	store        *regsqlite.Store
	httpListener net.Listener
	httpServer   *http.Server
	logger       *zap.Logger
}

// New creates a configured registration server listening on cfg.Port.
func New(cfg Config) (*Server, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	store, err := openStore(cfg.DBPath)
	if err != nil {
		return nil, err
	}
	provider, err := account.NewProvider(store, cfg.Auth)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("create account provider: %w", err)
	}
	host, err := newImageHost(cfg.Images, cfg.ImageHTTPClient)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("create image host: %w", err)
	}
	var uploader flow.ImageUploader
	if host != nil {
		uploader = host
	} else {
		logger.Warn("image host not configured; submissions with a profile image will fail")
	}
	submitter, err := flow.NewSubmitter(uploader, provider, store,
		flow.WithUploadPreset(cfg.Images.UploadPreset),
		flow.WithLogger(logger.Named("flow")),
	)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("create submitter: %w", err)
	}

	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.Port))
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("listen on port %d: %w", cfg.Port, err)
	}

	var httpListener net.Listener
	var httpServer *http.Server
	if strings.TrimSpace(cfg.HTTPAddr) != "" {
		httpListener, err = net.Listen("tcp", cfg.HTTPAddr)
		if err != nil {
			_ = listener.Close()
			_ = store.Close()
			return nil, fmt.Errorf("listen on http addr %s: %w", cfg.HTTPAddr, err)
		}
		mux := http.NewServeMux()
		httpapi.NewHandler(submitter, logger.Named("http")).RegisterRoutes(mux)
		httpServer = &http.Server{
			Handler:           mux,
			ReadHeaderTimeout: timeouts.ReadHeader,
		}
	}

	grpcServer := grpc.NewServer(grpc.StatsHandler(otelgrpc.NewServerHandler()))
	healthServer := health.NewServer()
	registrationservice.RegisterServer(grpcServer, registrationservice.NewService(submitter, logger.Named("grpc")))
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(registrationservice.ServiceName, grpc_health_v1.HealthCheckResponse_SERVING)

	return &Server{
		listener:     listener,
		grpcServer:   grpcServer,
		health:       healthServer,
		store:        store,
		httpListener: httpListener,
		httpServer:   httpServer,
		logger:       logger,
	}, nil
}

// Addr returns the gRPC listener address.
func (s *Server) Addr() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// HTTPAddr returns the HTTP listener address, empty when HTTP is disabled.
func (s *Server) HTTPAddr() string {
	if s == nil || s.httpListener == nil {
		return ""
	}
	return s.httpListener.Addr().String()
}

// Run creates and serves a registration server until the context ends.
func Run(ctx context.Context, cfg Config) error {
	server, err := New(cfg)
	if err != nil {
		return err
	}
	return server.Serve(ctx)
}

// Serve starts the registration server and blocks until it stops or the
// context ends.
func (s *Server) Serve(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	defer s.closeStore()

	s.logger.Info("registration server listening", zap.String("addr", s.listener.Addr().String()))
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- s.grpcServer.Serve(s.listener)
	}()

	httpErr := make(chan error, 1)
	if s.httpServer != nil && s.httpListener != nil {
		s.logger.Info("registration HTTP server listening", zap.String("addr", s.httpListener.Addr().String()))
		go func() {
			httpErr <- s.httpServer.Serve(s.httpListener)
		}()
	}

	handleErr := func(err error) error {
		if err == nil || errors.Is(err, grpc.ErrServerStopped) {
			return nil
		}
		return fmt.Errorf("serve gRPC: %w", err)
	}

	shutdownGRPC := func() {
		if s.health != nil {
			s.health.Shutdown()
		}
		s.grpcServer.GracefulStop()
	}
	shutdownHTTP := func() {
		if s.httpServer != nil {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
			defer cancel()
			if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
				s.logger.Warn("shutdown HTTP server", zap.Error(err))
			}
		}
	}

	select {
	case <-ctx.Done():
		shutdownGRPC()
		shutdownHTTP()
		err := <-serveErr
		return handleErr(err)
	case err := <-serveErr:
		shutdownHTTP()
		return handleErr(err)
	case err := <-httpErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		shutdownGRPC()
		grpcErr := <-serveErr
		if handled := handleErr(grpcErr); handled != nil {
			return handled
		}
		return fmt.Errorf("serve HTTP: %w", err)
	}
}

func openStore(path string) (*regsqlite.Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		path = filepath.Join("data", "registration.db")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage dir: %w", err)
		}
	}

	store, err := regsqlite.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open registration sqlite store: %w", err)
	}
	return store, nil
}

func (s *Server) closeStore() {
	if s == nil || s.store == nil {
		return
	}
	if err := s.store.Close(); err != nil {
		s.logger.Warn("close registration store", zap.Error(err))
	}
}
