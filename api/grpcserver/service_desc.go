package grpcserver

import (
	"context"

	"google.golang.org/grpc"
)

const serviceName = "eventcounter.Counter"

// CounterServer is the server API of the eventcounter.Counter service.
type CounterServer interface {
	Increase(context.Context, *MutateRequest) (*CountResponse, error)
	Reduce(context.Context, *MutateRequest) (*CountResponse, error)
	Count(context.Context, *IDRequest) (*CountResponse, error)
	InRange(context.Context, *RangeRequest) (*CountResponse, error)
	Next(context.Context, *IDRequest) (*EventResponse, error)
	Previous(context.Context, *IDRequest) (*EventResponse, error)
}

func RegisterCounterServer(s grpc.ServiceRegistrar, srv CounterServer) {
	s.RegisterService(&counterServiceDesc, srv)
}

// unary adapts a typed method to a grpc.MethodDesc handler.
func unary[Req any, Resp any](
	method string,
	call func(CounterServer, context.Context, *Req) (*Resp, error),
) grpc.MethodDesc {
	fullMethod := "/" + serviceName + "/" + method
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(CounterServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(CounterServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

var counterServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*CounterServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("Increase", CounterServer.Increase),
		unary("Reduce", CounterServer.Reduce),
		unary("Count", CounterServer.Count),
		unary("InRange", CounterServer.InRange),
		unary("Next", CounterServer.Next),
		unary("Previous", CounterServer.Previous),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "eventcounter",
}
