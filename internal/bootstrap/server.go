package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/Domenick1991/flightsearch/config"
	flightsapi "github.com/Domenick1991/flightsearch/internal/api/flights_service_api"
	"github.com/Domenick1991/flightsearch/internal/service/flights"
	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

const shutdownTimeout = 5 * time.Second

type Servers struct {
	grpcServer *grpc.Server
	httpServer *http.Server
	health     *health.Server
}

// Run starts the gRPC and HTTP servers and blocks until ctx is cancelled or a server fails.
func Run(
	ctx context.Context,
	cfg *config.Config,
	log logrus.FieldLogger,
	router http.Handler,
	flightSvc flights.FlightUseCase,
	authn flightsapi.Authenticator,
) error {
	s := newServers(cfg, log, router, flightSvc, authn)

	lis, err := net.Listen("tcp", cfg.GRPC.Address)
	if err != nil {
		return fmt.Errorf("listen gRPC %s: %w", cfg.GRPC.Address, err)
	}
	return s.serve(ctx, lis, log)
}

func newServers(
	cfg *config.Config,
	log logrus.FieldLogger,
	router http.Handler,
	flightSvc flights.FlightUseCase,
	authn flightsapi.Authenticator,
) *Servers {
	grpcSrv := grpc.NewServer(grpc.ChainUnaryInterceptor(
		flightsapi.LoggingInterceptor(log),
		flightsapi.AuthInterceptor(authn),
	))

	flightsapi.RegisterFlightsServiceServer(grpcSrv, flightsapi.NewServer(flightSvc))

	healthSrv := health.NewServer()
	healthSrv.SetServingStatus(flightsapi.ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(grpcSrv, healthSrv)
	reflection.Register(grpcSrv)

	return &Servers{
		grpcServer: grpcSrv,
		health:     healthSrv,
		httpServer: &http.Server{
			Addr:              cfg.HTTP.Address,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

func (s *Servers) serve(ctx context.Context, grpcLis net.Listener, log logrus.FieldLogger) error {
	errCh := make(chan error, 2)

	go func() {
		log.WithField("address", grpcLis.Addr().String()).Info("gRPC server listening")
		errCh <- s.grpcServer.Serve(grpcLis)
	}()

	go func() {
		log.WithField("address", s.httpServer.Addr).Info("HTTP server listening")
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		s.grpcServer.Stop()
		_ = s.httpServer.Close()
		return err
	case <-ctx.Done():
		log.Info("shutting down servers")
		s.health.Shutdown()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		s.grpcServer.GracefulStop()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	}
}
