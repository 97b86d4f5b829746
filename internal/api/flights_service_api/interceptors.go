package flights_service_api

import (
	"context"
	"strings"
	"time"

	"github.com/Domenick1991/flightsearch/internal/apperr"
	"github.com/Domenick1991/flightsearch/internal/domain"
	"github.com/Domenick1991/flightsearch/internal/metrics"
	"github.com/Domenick1991/flightsearch/internal/security"
	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

const healthPrefix = "/grpc.health.v1.Health/"

type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*security.Principal, error)
}

// AuthInterceptor requires a bearer token in the authorization metadata for every
// call except the health service.
func AuthInterceptor(authn Authenticator) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if strings.HasPrefix(info.FullMethod, healthPrefix) {
			return handler(ctx, req)
		}

		md, _ := metadata.FromIncomingContext(ctx)
		var header string
		if values := md.Get("authorization"); len(values) > 0 {
			header = values[0]
		}
		token, ok := security.BearerToken(header)
		if !ok {
			return nil, apperr.GRPCError(domain.Detailed(domain.ErrUnauthenticated, "missing bearer token"))
		}

		principal, err := authn.Authenticate(ctx, token)
		if err != nil {
			return nil, apperr.GRPCError(err)
		}
		if !principal.HasAuthority(security.AuthorityUser) {
			return nil, status.Error(codes.PermissionDenied, "access denied")
		}
		return handler(security.WithPrincipal(ctx, principal), req)
	}
}

// LoggingInterceptor logs every call with the underlying error and converts that
// error into a gRPC status. Internal causes are logged here and masked for the client.
func LoggingInterceptor(log logrus.FieldLogger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, cause := handler(ctx, req)
		err := apperr.GRPCError(cause)
		code := status.Code(err)

		metrics.GRPCRequests.WithLabelValues(info.FullMethod, code.String()).Inc()
		entry := log.WithFields(logrus.Fields{
			"method":   info.FullMethod,
			"code":     code.String(),
			"duration": time.Since(start),
		})
		switch code {
		case codes.OK:
			entry.Info("grpc request")
		case codes.Internal, codes.Unknown:
			entry.WithError(cause).Error("grpc request")
		default:
			entry.Warn("grpc request")
		}
		return resp, err
	}
}
