package grpc

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/convokeeper/internal/common"
	"github.com/dmitrijs2005/convokeeper/internal/logging"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

func newTestServer() *GRPCServer {
	return &GRPCServer{logger: logging.Nop{}}
}

func TestInterceptor_PublicMethod_AllowsWithoutUser(t *testing.T) {
	s := newTestServer()

	info := &grpc.UnaryServerInfo{FullMethod: fullMethod("Authenticate")}
	handlerCalled := false
	h := func(ctx context.Context, req any) (any, error) {
		handlerCalled = true
		return "ok", nil
	}

	resp, err := s.identityInterceptor(context.Background(), nil, info, h)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !handlerCalled || resp != "ok" {
		t.Fatalf("handler not called properly: called=%v resp=%v", handlerCalled, resp)
	}
}

func TestInterceptor_MissingUser(t *testing.T) {
	s := newTestServer()

	info := &grpc.UnaryServerInfo{FullMethod: fullMethod("ChangeRole")}
	h := func(ctx context.Context, req any) (any, error) {
		t.Fatal("handler should not be called without a user id")
		return nil, nil
	}

	for _, ctx := range []context.Context{
		context.Background(),
		metadata.NewIncomingContext(context.Background(), metadata.Pairs(common.UserIDMetadataKey, "")),
	} {
		_, err := s.identityInterceptor(ctx, nil, info, h)
		if status.Code(err) != codes.Unauthenticated {
			t.Fatalf("expected Unauthenticated, got %v", err)
		}
	}
}

func TestInterceptor_SetsUserID(t *testing.T) {
	s := newTestServer()

	md := metadata.Pairs(common.UserIDMetadataKey, "user-123")
	ctx := metadata.NewIncomingContext(context.Background(), md)
	info := &grpc.UnaryServerInfo{FullMethod: fullMethod("JoinByToken")}

	var got string
	h := func(ctx context.Context, req any) (any, error) {
		id, err := userIDFromContext(ctx)
		if err != nil {
			return nil, err
		}
		got = id
		return "ok", nil
	}

	if _, err := s.identityInterceptor(ctx, nil, info, h); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "user-123" {
		t.Fatalf("user id not propagated: got %q", got)
	}
}

func TestUserIDFromContext_Missing(t *testing.T) {
	if _, err := userIDFromContext(context.Background()); status.Code(err) != codes.Unauthenticated {
		t.Fatalf("expected Unauthenticated, got %v", err)
	}
}
