package grpcserver

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"eventcounter/domain/eventtree"
)

// Client calls a remote counter service. It satisfies the same method set
// as the in-process service, so the shell can drive either.
type Client struct {
	conn *grpc.ClientConn
}

// Dial connects to addr without transport security.
func Dial(addr string, opts ...grpc.DialOption) (*Client, error) {
	opts = append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	}, opts...)
	opts = append(opts, grpc.WithDefaultCallOptions(grpc.CallContentSubtype(codecName)))

	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, err
	}
	return &Client{conn: conn}, nil
}

func (c *Client) Close() error {
	return c.conn.Close()
}

func (c *Client) invoke(ctx context.Context, method string, in, out any) error {
	return c.conn.Invoke(ctx, "/"+serviceName+"/"+method, in, out)
}

func (c *Client) Increase(ctx context.Context, id, delta int64) (int64, error) {
	out := new(CountResponse)
	if err := c.invoke(ctx, "Increase", &MutateRequest{ID: id, Delta: delta}, out); err != nil {
		return 0, err
	}
	return out.Count, nil
}

func (c *Client) Reduce(ctx context.Context, id, delta int64) (int64, error) {
	out := new(CountResponse)
	if err := c.invoke(ctx, "Reduce", &MutateRequest{ID: id, Delta: delta}, out); err != nil {
		return 0, err
	}
	return out.Count, nil
}

func (c *Client) Count(ctx context.Context, id int64) (int64, error) {
	out := new(CountResponse)
	if err := c.invoke(ctx, "Count", &IDRequest{ID: id}, out); err != nil {
		return 0, err
	}
	return out.Count, nil
}

func (c *Client) InRange(ctx context.Context, lo, hi int64) (int64, error) {
	out := new(CountResponse)
	if err := c.invoke(ctx, "InRange", &RangeRequest{Lo: lo, Hi: hi}, out); err != nil {
		return 0, err
	}
	return out.Count, nil
}

func (c *Client) Next(ctx context.Context, id int64) (eventtree.Event, error) {
	out := new(EventResponse)
	if err := c.invoke(ctx, "Next", &IDRequest{ID: id}, out); err != nil {
		return eventtree.Event{}, err
	}
	return eventtree.Event{ID: out.ID, Count: out.Count}, nil
}

func (c *Client) Prev(ctx context.Context, id int64) (eventtree.Event, error) {
	out := new(EventResponse)
	if err := c.invoke(ctx, "Previous", &IDRequest{ID: id}, out); err != nil {
		return eventtree.Event{}, err
	}
	return eventtree.Event{ID: out.ID, Count: out.Count}, nil
}
