package grpcserver

import (
	"context"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"eventcounter/domain/eventtree"
	"eventcounter/infra/metrics"
	"eventcounter/infra/sequence"
	"eventcounter/service"
)

func startServer(t *testing.T, events []eventtree.Event) *Client {
	t.Helper()

	svc := service.NewCounterService(eventtree.New(), sequence.New(0), nil, nil, metrics.New(), nil)
	svc.Bootstrap(events)

	lis := bufconn.Listen(1 << 20)
	srv := NewGRPCServer(svc, nil)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	client, err := Dial("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestClientServerRoundTrip(t *testing.T) {
	ctx := context.Background()
	c := startServer(t, []eventtree.Event{{ID: 1, Count: 10}, {ID: 5, Count: 3}, {ID: 9, Count: 7}})

	got, err := c.Increase(ctx, 5, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(5), got)

	got, err = c.Reduce(ctx, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(0), got)

	got, err = c.Count(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(0), got)

	got, err = c.InRange(ctx, 0, 100)
	require.NoError(t, err)
	assert.Equal(t, int64(12), got)

	ev, err := c.Next(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, eventtree.Event{ID: 9, Count: 7}, ev)

	ev, err = c.Prev(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, eventtree.Event{}, ev, "id 1 was removed")

	ev, err = c.Next(ctx, 9)
	require.NoError(t, err)
	assert.Equal(t, eventtree.Event{}, ev)
}

func TestNegativeDeltaIsInvalidArgument(t *testing.T) {
	c := startServer(t, nil)

	_, err := c.Increase(context.Background(), 1, -1)
	require.Error(t, err)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestToStatus(t *testing.T) {
	assert.Equal(t, codes.Canceled, status.Code(toStatus(context.Canceled)))
	assert.Equal(t, codes.Internal, status.Code(toStatus(assert.AnError)))
}
