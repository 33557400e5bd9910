package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/harborlabs/contact-directory/internal/application"
)

type DirectoryInternalService interface {
	ValidateToken(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetPublicKeys(context.Context, *emptypb.Empty) (*structpb.Struct, error)
}

// DirectoryInternalServer lets sibling services verify bearer tokens and
// fetch the current verification keys without sharing the private key.
type DirectoryInternalServer struct {
	service *application.Service
}

func NewDirectoryInternalServer(service *application.Service) *DirectoryInternalServer {
	return &DirectoryInternalServer{service: service}
}

func Register(server grpc.ServiceRegistrar, svc DirectoryInternalService) {
	server.RegisterService(&grpc.ServiceDesc{
		ServiceName: "harborlabs.directory.v1.DirectoryInternalService",
		HandlerType: (*DirectoryInternalService)(nil),
		Methods: []grpc.MethodDesc{
			{
				MethodName: "ValidateToken",
				Handler:    validateTokenHandler(svc),
			},
			{
				MethodName: "GetPublicKeys",
				Handler:    getPublicKeysHandler(svc),
			},
		},
		Streams:  []grpc.StreamDesc{},
		Metadata: "proto/directory/v1/directory_internal.proto",
	}, svc)
}

func (s *DirectoryInternalServer) ValidateToken(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	tokenVal := req.GetFields()["token"]
	if tokenVal == nil {
		return nil, status.Error(codes.InvalidArgument, "missing token")
	}
	token := tokenVal.GetStringValue()
	if token == "" {
		return nil, status.Error(codes.InvalidArgument, "missing token")
	}

	claims, err := s.service.ValidateToken(ctx, token)
	if err != nil {
		return nil, status.Error(codes.Unauthenticated, "invalid token")
	}

	claimMap := map[string]any{}
	for _, c := range claims.Claims {
		claimMap[c.Type] = c.Value
	}
	resp, err := structpb.NewStruct(map[string]any{
		"valid":      true,
		"subject":    claims.SubjectEmail,
		"claims":     claimMap,
		"expires_at": claims.ExpiresAt.Unix(),
	})
	if err != nil {
		return nil, status.Errorf(codes.Internal, "build response: %v", err)
	}
	return resp, nil
}

func (s *DirectoryInternalServer) GetPublicKeys(_ context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	keys, err := s.service.PublicJWKs()
	if err != nil {
		return nil, status.Errorf(codes.Internal, "get keys: %v", err)
	}
	keyList := make([]any, 0, len(keys))
	for _, k := range keys {
		entry := map[string]any{}
		for field, value := range k {
			entry[field] = value
		}
		keyList = append(keyList, entry)
	}
	resp, err := structpb.NewStruct(map[string]any{
		"keys": keyList,
	})
	if err != nil {
		return nil, status.Errorf(codes.Internal, "build response: %v", err)
	}
	return resp, nil
}

func validateTokenHandler(svc DirectoryInternalService) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		req := &structpb.Struct{}
		if err := dec(req); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return svc.ValidateToken(ctx, req)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: "/harborlabs.directory.v1.DirectoryInternalService/ValidateToken",
		}
		handler := func(ctx context.Context, req any) (any, error) {
			typed, ok := req.(*structpb.Struct)
			if !ok {
				return nil, status.Error(codes.InvalidArgument, "invalid request type")
			}
			return svc.ValidateToken(ctx, typed)
		}
		return interceptor(ctx, req, info, handler)
	}
}

func getPublicKeysHandler(svc DirectoryInternalService) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		req := &emptypb.Empty{}
		if err := dec(req); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return svc.GetPublicKeys(ctx, req)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: "/harborlabs.directory.v1.DirectoryInternalService/GetPublicKeys",
		}
		handler := func(ctx context.Context, req any) (any, error) {
			typed, ok := req.(*emptypb.Empty)
			if !ok {
				return nil, status.Error(codes.InvalidArgument, "invalid request type")
			}
			return svc.GetPublicKeys(ctx, typed)
		}
		return interceptor(ctx, req, info, handler)
	}
}
