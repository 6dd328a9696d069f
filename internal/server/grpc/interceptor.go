package grpc

import (
	"context"

	"github.com/dmitrijs2005/convokeeper/internal/common"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type ctxKey string

const UserIDKey ctxKey = "userID"

// publicMethods are reachable without an acting user.
var publicMethods = map[string]bool{
	fullMethod("Register"):     true,
	fullMethod("Authenticate"): true,
}

// identityInterceptor copies the acting user id, set by the fronting gateway
// after it has authenticated the caller, from metadata into the context.
func (s *GRPCServer) identityInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	if publicMethods[info.FullMethod] {
		return handler(ctx, req)
	}

	var userID string
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if values := md.Get(common.UserIDMetadataKey); len(values) > 0 {
			userID = values[0]
		}
	}
	if userID == "" {
		return nil, status.Error(codes.Unauthenticated, "missing user id")
	}

	return handler(context.WithValue(ctx, UserIDKey, userID), req)
}

// userIDFromContext returns the acting user set by identityInterceptor.
func userIDFromContext(ctx context.Context) (string, error) {
	id, ok := ctx.Value(UserIDKey).(string)
	if !ok || id == "" {
		return "", status.Error(codes.Unauthenticated, "missing user id")
	}
	return id, nil
}
