package mintrpc

import (
	"context"

	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"xdao.co/cnftmint/mint"
)

// Server exposes a mint.Submitter over the Signer gRPC service.
type Server struct {
	UnimplementedSignerServer
	Submitter mint.Submitter
	// Name is reported by Backend.
	Name   string
	Logger *zap.Logger
}

func (s *Server) Submit(ctx context.Context, in *structpb.Struct) (*structpb.Value, error) {
	if s == nil || s.Submitter == nil {
		return nil, status.Error(codes.FailedPrecondition, "missing submitter")
	}
	req, err := decodeRequest(in)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	if err := req.Validate(); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	res, err := s.Submitter.Submit(ctx, req)
	if err != nil {
		s.log().Warn("submit failed",
			zap.String("shape", string(req.Shape)),
			zap.String("owner", req.LeafOwner.String()),
			zap.Error(err))
		return nil, mapErr(err)
	}
	s.log().Info("submitted",
		zap.String("shape", string(req.Shape)),
		zap.String("owner", req.LeafOwner.String()),
		zap.Stringer("result", res.Kind()))
	return encodeResult(res), nil
}

func (s *Server) Backend(context.Context, *wrapperspb.StringValue) (*wrapperspb.StringValue, error) {
	if s == nil {
		return nil, status.Error(codes.FailedPrecondition, "missing submitter")
	}
	return wrapperspb.String(s.Name), nil
}

func (s *Server) log() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}
