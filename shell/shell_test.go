package shell

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventcounter/domain/eventtree"
	"eventcounter/infra/sequence"
	"eventcounter/service"
)

func newCounter(events []eventtree.Event) Counter {
	svc := service.NewCounterService(eventtree.New(), sequence.New(0), nil, nil, nil, nil)
	svc.Bootstrap(events)
	return svc
}

func run(t *testing.T, c Counter, input string) string {
	t.Helper()
	var out bytes.Buffer
	require.NoError(t, New(c, &out, nil).Run(context.Background(), strings.NewReader(input)))
	return out.String()
}

func TestSessionTranscript(t *testing.T) {
	c := newCounter([]eventtree.Event{
		{ID: 0, Count: 5}, {ID: 1, Count: 4}, {ID: 5, Count: 3}, {ID: 9, Count: 7}, {ID: 350, Count: 2},
	})

	input := `increase 350 100
reduce 1 5
count 350
inrange 0 9
next 5
previous 5
next 350
previous 0
quit
count 0
`
	want := `102
0
102
15
9 7
0 5
0 0
0 0
`
	assert.Equal(t, want, run(t, c, input))
}

func TestMalformedLinesPrintNothing(t *testing.T) {
	c := newCounter([]eventtree.Event{{ID: 3, Count: 1}})

	input := "frobnicate 1\nincrease 3\ncount x\nincrease 3 -2\nreduce 3 -1\n\ncount 3\n"
	assert.Equal(t, "1\n", run(t, c, input))
}

func TestEOFEndsSession(t *testing.T) {
	c := newCounter(nil)
	assert.Equal(t, "2\n", run(t, c, "increase 7 2"))
}

type failing struct{ Counter }

func (failing) Count(context.Context, int64) (int64, error) {
	return 0, errors.New("backend down")
}

func TestCounterErrorStopsLoop(t *testing.T) {
	var out bytes.Buffer
	err := New(failing{newCounter(nil)}, &out, nil).Run(context.Background(), strings.NewReader("count 1\ncount 2\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "backend down")
	assert.Empty(t, out.String())
}
