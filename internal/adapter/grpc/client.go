package grpc

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/simaogato/portfoliosim-backend/internal/domain"
)

// Client calls a remote SimulationService
type Client struct {
	cc grpc.ClientConnInterface
}

// NewClient wraps an established connection
func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

// StartSession submits req and returns the first snapshot of the new session.
// A nil req is sent as an empty message.
func (c *Client) StartSession(ctx context.Context, req *domain.AllocationRequest) (domain.SessionSnapshot, error) {
	in := &structpb.Struct{}
	if req != nil {
		var err error
		if in, err = toStruct(req); err != nil {
			return domain.SessionSnapshot{}, err
		}
	}
	return c.snapshotCall(ctx, MethodStartSession, in)
}

// PauseSession pauses a session
func (c *Client) PauseSession(ctx context.Context, id uuid.UUID) (domain.SessionSnapshot, error) {
	return c.snapshotCall(ctx, MethodPauseSession, wrapperspb.String(id.String()))
}

// ResumeSession resumes a session
func (c *Client) ResumeSession(ctx context.Context, id uuid.UUID) (domain.SessionSnapshot, error) {
	return c.snapshotCall(ctx, MethodResumeSession, wrapperspb.String(id.String()))
}

// ResetSession terminates a session
func (c *Client) ResetSession(ctx context.Context, id uuid.UUID) error {
	return c.cc.Invoke(ctx, MethodResetSession, wrapperspb.String(id.String()), &emptypb.Empty{})
}

// GetSnapshot fetches the current snapshot of a session
func (c *Client) GetSnapshot(ctx context.Context, id uuid.UUID) (domain.SessionSnapshot, error) {
	return c.snapshotCall(ctx, MethodGetSnapshot, wrapperspb.String(id.String()))
}

func (c *Client) snapshotCall(ctx context.Context, method string, in interface{}) (domain.SessionSnapshot, error) {
	out := &structpb.Struct{}
	if err := c.cc.Invoke(ctx, method, in, out); err != nil {
		return domain.SessionSnapshot{}, err
	}

	var snap domain.SessionSnapshot
	if err := fromStruct(out, &snap); err != nil {
		return domain.SessionSnapshot{}, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return snap, nil
}
