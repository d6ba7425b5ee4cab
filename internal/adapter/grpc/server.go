package grpc

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/simaogato/portfoliosim-backend/internal/domain"
	"github.com/simaogato/portfoliosim-backend/internal/usecase/simulation"
)

// Server implements the SimulationService gRPC server
type Server struct {
	Manager *simulation.Manager
}

var _ SimulationServiceServer = (*Server)(nil)

// NewServer creates a new gRPC server instance
func NewServer(manager *simulation.Manager) *Server {
	return &Server{Manager: manager}
}

// StartSession handles the StartSession RPC. An empty request means no
// allocation was submitted and is rejected with FailedPrecondition.
func (s *Server) StartSession(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var input *domain.AllocationRequest
	if _, ok := req.GetFields()["assets"]; ok {
		input = &domain.AllocationRequest{}
		if err := fromStruct(req, input); err != nil {
			return nil, status.Errorf(codes.InvalidArgument, "invalid allocation request: %v", err)
		}
	}

	session, err := s.Manager.StartSession(ctx, input)
	if err != nil {
		return nil, mapError(err)
	}

	return snapshotResponse(session.Snapshot())
}

// PauseSession handles the PauseSession RPC
func (s *Server) PauseSession(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	id, err := parseSessionID(req)
	if err != nil {
		return nil, err
	}

	snap, err := s.Manager.Pause(ctx, id)
	if err != nil {
		return nil, mapError(err)
	}
	return snapshotResponse(snap)
}

// ResumeSession handles the ResumeSession RPC
func (s *Server) ResumeSession(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	id, err := parseSessionID(req)
	if err != nil {
		return nil, err
	}

	snap, err := s.Manager.Resume(ctx, id)
	if err != nil {
		return nil, mapError(err)
	}
	return snapshotResponse(snap)
}

// ResetSession handles the ResetSession RPC
func (s *Server) ResetSession(ctx context.Context, req *wrapperspb.StringValue) (*emptypb.Empty, error) {
	id, err := parseSessionID(req)
	if err != nil {
		return nil, err
	}

	if err := s.Manager.Reset(ctx, id); err != nil {
		return nil, mapError(err)
	}
	return &emptypb.Empty{}, nil
}

// GetSnapshot handles the GetSnapshot RPC
func (s *Server) GetSnapshot(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	id, err := parseSessionID(req)
	if err != nil {
		return nil, err
	}

	snap, err := s.Manager.Snapshot(ctx, id)
	if err != nil {
		return nil, mapError(err)
	}
	return snapshotResponse(snap)
}

func parseSessionID(req *wrapperspb.StringValue) (uuid.UUID, error) {
	id, err := uuid.Parse(req.GetValue())
	if err != nil {
		return uuid.Nil, status.Errorf(codes.InvalidArgument, "invalid session_id format: %v", err)
	}
	return id, nil
}

func snapshotResponse(snap domain.SessionSnapshot) (*structpb.Struct, error) {
	out, err := toStruct(snap)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "%v", err)
	}
	return out, nil
}

// mapError converts domain errors to gRPC status errors
func mapError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, domain.ErrInvalidAllocation),
		errors.Is(err, domain.ErrEmptyPortfolio),
		errors.Is(err, domain.ErrInvalidInvestment),
		errors.Is(err, domain.ErrInvalidRiskPreference),
		errors.Is(err, domain.ErrInvalidMarket),
		errors.Is(err, domain.ErrInvalidSymbol),
		errors.Is(err, domain.ErrDuplicateSymbol):
		return status.Errorf(codes.InvalidArgument, "%s", err)

	case errors.Is(err, domain.ErrMissingSessionState),
		errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrSessionTerminated):
		return status.Errorf(codes.FailedPrecondition, "%s", err)

	case errors.Is(err, domain.ErrSessionNotFound):
		return status.Errorf(codes.NotFound, "%s", err)

	case errors.Is(err, domain.ErrTooManySessions):
		return status.Errorf(codes.ResourceExhausted, "%s", err)

	case errors.Is(err, context.Canceled):
		return status.Errorf(codes.Canceled, "%s", err)

	case errors.Is(err, context.DeadlineExceeded):
		return status.Errorf(codes.DeadlineExceeded, "%s", err)
	}

	// Default to Internal error for unknown errors
	return status.Errorf(codes.Internal, "%s", err)
}
