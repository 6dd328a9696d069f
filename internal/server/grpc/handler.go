package grpc

import (
	"context"
	"time"

	"github.com/dmitrijs2005/convokeeper/internal/server/models"
	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// Register: {mail, password} -> {account_id, mail}
func (s *GRPCServer) Register(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	f, err := fields(in, "mail", "password")
	if err != nil {
		return nil, err
	}

	account, err := s.credentials.Register(ctx, f["mail"], f["password"])
	if err != nil {
		s.logger.Warn(ctx, "registration failed", "error", err)
		return nil, toStatus(err)
	}

	s.logger.Info(ctx, "Registered", "account_id", account.ID)
	return encode(accountFields(account))
}

// Authenticate: {mail, password} -> {account_id, mail, last_login}
func (s *GRPCServer) Authenticate(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	// Missing fields go through the service so they fail like any other bad login.
	account, err := s.credentials.Authenticate(ctx, optional(in, "mail"), optional(in, "password"))
	if err != nil {
		return nil, toStatus(err)
	}
	return encode(accountFields(account))
}

// SetPassword: {password} -> {} for the acting user.
func (s *GRPCServer) SetPassword(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	f, err := fields(in, "password")
	if err != nil {
		return nil, err
	}

	if err := s.credentials.SetPassword(ctx, userID, f["password"]); err != nil {
		return nil, toStatus(err)
	}
	return &structpb.Struct{}, nil
}

// HasRole: {conversation_id, role, user_id?} -> {has_role}. user_id defaults
// to the acting user; asking about someone else requires the acting user to
// be at least a viewer of the conversation.
func (s *GRPCServer) HasRole(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	f, err := fields(in, "conversation_id", "role")
	if err != nil {
		return nil, err
	}
	if other := optional(in, "user_id"); other != "" {
		if err := uuid.Validate(other); err != nil {
			return nil, status.Error(codes.InvalidArgument, "user_id must be a UUID")
		}
		if other != userID {
			member, err := s.access.HasAtLeast(ctx, userID, f["conversation_id"], models.RoleViewer)
			if err != nil {
				return nil, toStatus(err)
			}
			if !member {
				return nil, status.Error(codes.PermissionDenied, "not a collaborator of this conversation")
			}
		}
		userID = other
	}

	ok, err := s.access.HasRole(ctx, userID, f["conversation_id"], models.Role(f["role"]))
	if err != nil {
		return nil, toStatus(err)
	}
	return encode(map[string]any{"has_role": ok})
}

// CreateCollaboration: {conversation_id, user_id, role} -> collaboration
func (s *GRPCServer) CreateCollaboration(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	actingID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	f, err := fields(in, "conversation_id", "user_id", "role")
	if err != nil {
		return nil, err
	}

	c, err := s.roles.CreateCollaboration(ctx, actingID, f["conversation_id"], f["user_id"], f["role"])
	if err != nil {
		return nil, toStatus(err)
	}
	return encode(collaborationFields(c))
}

// ChangeRole: {conversation_id, user_id, role} -> collaboration
func (s *GRPCServer) ChangeRole(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	actingID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	f, err := fields(in, "conversation_id", "user_id", "role")
	if err != nil {
		return nil, err
	}

	c, err := s.roles.ChangeRole(ctx, actingID, f["conversation_id"], f["user_id"], f["role"])
	if err != nil {
		return nil, toStatus(err)
	}
	return encode(collaborationFields(c))
}

// DeleteCollaborator: {conversation_id, user_id} -> {removed}
func (s *GRPCServer) DeleteCollaborator(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	actingID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	f, err := fields(in, "conversation_id", "user_id")
	if err != nil {
		return nil, err
	}

	removed, err := s.roles.DeleteCollaborator(ctx, actingID, f["conversation_id"], f["user_id"])
	if err != nil {
		return nil, toStatus(err)
	}
	return encode(map[string]any{"removed": removed})
}

// JoinByToken: {conversation_id, token} -> collaboration for the acting user.
func (s *GRPCServer) JoinByToken(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	f, err := fields(in, "conversation_id", "token")
	if err != nil {
		return nil, err
	}

	c, err := s.join.JoinByToken(ctx, f["conversation_id"], f["token"], userID)
	if err != nil {
		return nil, toStatus(err)
	}
	return encode(collaborationFields(c))
}

// --- helpers below ---

// uuidFields must hold UUIDs; the store would reject anything else.
var uuidFields = map[string]bool{
	"conversation_id": true,
	"user_id":         true,
}

// fields extracts the named string fields, all of which must be non-empty.
func fields(in *structpb.Struct, names ...string) (map[string]string, error) {
	out := make(map[string]string, len(names))
	for _, n := range names {
		v := optional(in, n)
		if v == "" {
			return nil, status.Errorf(codes.InvalidArgument, "%s is required", n)
		}
		if uuidFields[n] && uuid.Validate(v) != nil {
			return nil, status.Errorf(codes.InvalidArgument, "%s must be a UUID", n)
		}
		out[n] = v
	}
	return out, nil
}

func optional(in *structpb.Struct, name string) string {
	return in.GetFields()[name].GetStringValue()
}

func encode(m map[string]any) (*structpb.Struct, error) {
	out, err := structpb.NewStruct(m)
	if err != nil {
		return nil, status.Error(codes.Internal, "internal error")
	}
	return out, nil
}

func accountFields(a *models.Account) map[string]any {
	m := map[string]any{
		"account_id": a.ID,
		"mail":       a.Mail,
	}
	if a.LastLogin != nil {
		m["last_login"] = a.LastLogin.UTC().Format(time.RFC3339)
	}
	return m
}

func collaborationFields(c *models.Collaboration) map[string]any {
	return map[string]any{
		"id":              c.ID,
		"conversation_id": c.ConversationID,
		"user_id":         c.UserID,
		"role":            string(c.Role),
	}
}
