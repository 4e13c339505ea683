// Package grpc exposes the job tracker over gRPC with the JSON codec from
// internal/proto.
package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/applylog/internal/logging"
	pb "github.com/dmitrijs2005/applylog/internal/proto"
	"github.com/dmitrijs2005/applylog/internal/server/models"
	"github.com/dmitrijs2005/applylog/internal/server/ratelimit"
	"github.com/dmitrijs2005/applylog/internal/server/services"
	"github.com/dmitrijs2005/applylog/internal/validation"
	"google.golang.org/grpc"
)

type UserService interface {
	Register(ctx context.Context, username, password string) (*models.User, error)
	Login(ctx context.Context, username, password string) (*services.TokenPair, error)
	RefreshToken(ctx context.Context, refreshToken string) (*services.TokenPair, error)
	UserIDFromAccessToken(token string) (string, error)
}

type JobService interface {
	Create(ctx context.Context, userID, idempotencyKey string, in validation.Job, meta models.TagMeta) (*models.Job, error)
	Update(ctx context.Context, userID, id string, p validation.Patch, meta models.TagMeta) (*models.Job, error)
	Delete(ctx context.Context, userID, id string) error
	List(ctx context.Context, userID string, q validation.Query) (*models.JobPage, error)
}

type TagService interface {
	ListDefaults(ctx context.Context, kind string) ([]models.Tag, error)
	ListCustom(ctx context.Context, userID, kind string) ([]models.Tag, error)
	Create(ctx context.Context, userID, kind, key, name string) (*models.Tag, error)
	Delete(ctx context.Context, userID, kind, key string) error
}

type StatsService interface {
	Get(ctx context.Context, userID string) (*models.Stats, error)
}

type ExportService interface {
	Publish(ctx context.Context, userID, format string) (*models.ExportLink, error)
}

// Services groups the handlers' dependencies.
type Services struct {
	Users   UserService
	Jobs    JobService
	Tags    TagService
	Stats   StatsService
	Exports ExportService
}

type GRPCServer struct {
	pb.UnimplementedJobTrackerServer
	address string
	users   UserService
	jobs    JobService
	tags    TagService
	stats   StatsService
	exports ExportService
	limiter *ratelimit.Limiter
	logger  logging.Logger
}

func NewGRPCServer(a string, l logging.Logger, svc Services, limiter *ratelimit.Limiter) *GRPCServer {
	return &GRPCServer{
		address: a,
		logger:  l.With("module", "grpc_server"),
		users:   svc.Users,
		jobs:    svc.Jobs,
		tags:    svc.Tags,
		stats:   svc.Stats,
		exports: svc.Exports,
		limiter: limiter,
	}
}

// newServer builds the grpc.Server with every interceptor and the service
// registered.
func (s *GRPCServer) newServer() *grpc.Server {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(
		s.loggingInterceptor,
		s.accessTokenInterceptor,
		s.rateLimitInterceptor,
	))
	pb.RegisterJobTrackerServer(srv, s)
	return srv
}

// Run serves until ctx is cancelled, then stops gracefully.
func (s *GRPCServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.serve(ctx, listen)
}

func (s *GRPCServer) serve(ctx context.Context, listen net.Listener) error {
	srv := s.newServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil {
		return err
	}
	return nil
}
