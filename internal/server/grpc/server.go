// Package grpc exposes the access core over gRPC using google.protobuf.Struct
// messages.
package grpc

import (
	"context"
	"net"
	"time"

	"github.com/dmitrijs2005/convokeeper/internal/logging"
	"github.com/dmitrijs2005/convokeeper/internal/server/models"
	"google.golang.org/grpc"
)

type CredentialService interface {
	Register(ctx context.Context, mail, password string) (*models.Account, error)
	Authenticate(ctx context.Context, mail, password string) (*models.Account, error)
	SetPassword(ctx context.Context, accountID, password string) error
}

type AccessService interface {
	HasRole(ctx context.Context, userID, conversationID string, role models.Role) (bool, error)
	HasAtLeast(ctx context.Context, userID, conversationID string, role models.Role) (bool, error)
}

type RoleService interface {
	CreateCollaboration(ctx context.Context, actingAdminID, conversationID, targetUserID, role string) (*models.Collaboration, error)
	ChangeRole(ctx context.Context, actingAdminID, conversationID, targetUserID, newRole string) (*models.Collaboration, error)
	DeleteCollaborator(ctx context.Context, actingAdminID, conversationID, targetUserID string) (bool, error)
}

type JoinService interface {
	JoinByToken(ctx context.Context, conversationID, token, userID string) (*models.Collaboration, error)
}

// Services bundles the dependencies served by GRPCServer.
type Services struct {
	Credentials CredentialService
	Access      AccessService
	Roles       RoleService
	Join        JoinService
}

// rateLimitedMethods are the unauthenticated entry points worth hammering.
var rateLimitedMethods = map[string]bool{
	fullMethod("Register"):     true,
	fullMethod("Authenticate"): true,
}

type GRPCServer struct {
	address     string
	logger      logging.Logger
	credentials CredentialService
	access      AccessService
	roles       RoleService
	join        JoinService
	limiter     *LimiterStore
}

// NewGRPCServer builds a server listening on a. limiter may be nil to disable
// transport rate limiting.
func NewGRPCServer(a string, l logging.Logger, svc Services, limiter *LimiterStore) (*GRPCServer, error) {
	return &GRPCServer{
		address:     a,
		logger:      l.With("module", "grpc_server"),
		credentials: svc.Credentials,
		access:      svc.Access,
		roles:       svc.Roles,
		join:        svc.Join,
		limiter:     limiter,
	}, nil
}

func (s *GRPCServer) interceptors() []grpc.UnaryServerInterceptor {
	var chain []grpc.UnaryServerInterceptor
	if s.limiter != nil {
		chain = append(chain, RateLimitUnaryInterceptor(s.limiter, rateLimitedMethods))
	}
	return append(chain, s.identityInterceptor)
}

// Run serves until ctx is cancelled, then stops gracefully.
func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.interceptors()...))
	RegisterAccessServer(srv, s)

	if s.limiter != nil {
		go s.limiter.RunCleanup(ctx, time.Minute)
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", s.address)

	if err := srv.Serve(listen); err != nil {
		return err
	}

	return nil
}
