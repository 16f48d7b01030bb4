package grpcserver

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"eventcounter/domain/eventtree"
	"eventcounter/infra/logutil"
	"eventcounter/service"
)

// Counter is what the gRPC server needs from the service layer.
type Counter interface {
	Increase(ctx context.Context, id, delta int64) (int64, error)
	Reduce(ctx context.Context, id, delta int64) (int64, error)
	Count(ctx context.Context, id int64) (int64, error)
	InRange(ctx context.Context, lo, hi int64) (int64, error)
	Next(ctx context.Context, id int64) (eventtree.Event, error)
	Prev(ctx context.Context, id int64) (eventtree.Event, error)
}

// Server adapts the counter service to gRPC.
type Server struct {
	svc Counter
}

func NewServer(svc Counter) *Server {
	return &Server{svc: svc}
}

// NewGRPCServer returns a grpc.Server with the counter service registered
// and requests logged at debug level.
func NewGRPCServer(svc Counter, logger *zap.Logger, opts ...grpc.ServerOption) *grpc.Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	opts = append(opts, grpc.ChainUnaryInterceptor(logRequests(logutil.Component(logger, "grpc"))))
	s := grpc.NewServer(opts...)
	RegisterCounterServer(s, NewServer(svc))
	return s
}

// -------------------- Commands --------------------

func (s *Server) Increase(ctx context.Context, req *MutateRequest) (*CountResponse, error) {
	c, err := s.svc.Increase(ctx, req.ID, req.Delta)
	if err != nil {
		return nil, toStatus(err)
	}
	return &CountResponse{Count: c}, nil
}

func (s *Server) Reduce(ctx context.Context, req *MutateRequest) (*CountResponse, error) {
	c, err := s.svc.Reduce(ctx, req.ID, req.Delta)
	if err != nil {
		return nil, toStatus(err)
	}
	return &CountResponse{Count: c}, nil
}

// -------------------- Queries --------------------

func (s *Server) Count(ctx context.Context, req *IDRequest) (*CountResponse, error) {
	c, err := s.svc.Count(ctx, req.ID)
	if err != nil {
		return nil, toStatus(err)
	}
	return &CountResponse{Count: c}, nil
}

func (s *Server) InRange(ctx context.Context, req *RangeRequest) (*CountResponse, error) {
	c, err := s.svc.InRange(ctx, req.Lo, req.Hi)
	if err != nil {
		return nil, toStatus(err)
	}
	return &CountResponse{Count: c}, nil
}

func (s *Server) Next(ctx context.Context, req *IDRequest) (*EventResponse, error) {
	ev, err := s.svc.Next(ctx, req.ID)
	if err != nil {
		return nil, toStatus(err)
	}
	return &EventResponse{ID: ev.ID, Count: ev.Count}, nil
}

func (s *Server) Previous(ctx context.Context, req *IDRequest) (*EventResponse, error) {
	ev, err := s.svc.Prev(ctx, req.ID)
	if err != nil {
		return nil, toStatus(err)
	}
	return &EventResponse{ID: ev.ID, Count: ev.Count}, nil
}

// -------------------- Converters --------------------

func toStatus(err error) error {
	switch {
	case errors.Is(err, service.ErrNegativeDelta):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}

func logRequests(logger *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		logger.Debug("request",
			zap.String("method", info.FullMethod),
			zap.Any("req", req),
			zap.Duration("took", time.Since(start)),
			zap.Error(err))
		return resp, err
	}
}
