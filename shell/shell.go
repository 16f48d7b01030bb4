// Package shell runs the line-oriented event counter command loop.
package shell

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"eventcounter/domain/eventtree"
	"eventcounter/infra/logutil"
)

// Counter is the operation set the shell drives. It is satisfied by both
// the in-process service and the gRPC client.
type Counter interface {
	Increase(ctx context.Context, id, delta int64) (int64, error)
	Reduce(ctx context.Context, id, delta int64) (int64, error)
	Count(ctx context.Context, id int64) (int64, error)
	InRange(ctx context.Context, lo, hi int64) (int64, error)
	Next(ctx context.Context, id int64) (eventtree.Event, error)
	Prev(ctx context.Context, id int64) (eventtree.Event, error)
}

var errUsage = errors.New("shell: malformed command")

type Shell struct {
	counter Counter
	out     io.Writer
	log     *zap.Logger
}

func New(counter Counter, out io.Writer, logger *zap.Logger) *Shell {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Shell{counter: counter, out: out, log: logutil.Component(logger, "shell")}
}

// Run reads commands from in until a "quit" line or EOF. Malformed and
// unknown commands produce no output. Errors from the counter abort the
// loop.
func (s *Shell) Run(ctx context.Context, in io.Reader) error {
	sc := bufio.NewScanner(in)
	w := bufio.NewWriter(s.out)
	defer w.Flush()

	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "quit" {
			return nil
		}
		if line == "" {
			continue
		}

		res, err := s.exec(ctx, strings.Fields(line))
		switch {
		case errors.Is(err, errUsage):
			s.log.Debug("ignored command", zap.String("line", line), zap.Error(err))
			continue
		case err != nil:
			return errors.Wrapf(err, "shell: %q", line)
		}
		if _, err := fmt.Fprintln(w, res); err != nil {
			return err
		}
		// Flush per command so an interactive user sees the answer.
		if err := w.Flush(); err != nil {
			return err
		}
	}
	return sc.Err()
}

func (s *Shell) exec(ctx context.Context, f []string) (string, error) {
	cmd, args := f[0], f[1:]
	switch cmd {
	case "increase", "reduce", "inrange":
		a, b, err := two(args)
		if err != nil {
			return "", err
		}
		if b < 0 && cmd != "inrange" {
			return "", errors.Wrapf(errUsage, "negative count %d", b)
		}
		var n int64
		switch cmd {
		case "increase":
			n, err = s.counter.Increase(ctx, a, b)
		case "reduce":
			n, err = s.counter.Reduce(ctx, a, b)
		default:
			n, err = s.counter.InRange(ctx, a, b)
		}
		if err != nil {
			return "", err
		}
		return strconv.FormatInt(n, 10), nil

	case "count", "next", "previous":
		id, err := one(args)
		if err != nil {
			return "", err
		}
		if cmd == "count" {
			n, err := s.counter.Count(ctx, id)
			if err != nil {
				return "", err
			}
			return strconv.FormatInt(n, 10), nil
		}
		var ev eventtree.Event
		if cmd == "next" {
			ev, err = s.counter.Next(ctx, id)
		} else {
			ev, err = s.counter.Prev(ctx, id)
		}
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%d %d", ev.ID, ev.Count), nil
	}
	return "", errors.Wrapf(errUsage, "unknown command %q", cmd)
}

func one(args []string) (int64, error) {
	if len(args) < 1 {
		return 0, errors.Wrap(errUsage, "want 1 argument")
	}
	return parse(args[0])
}

func two(args []string) (int64, int64, error) {
	if len(args) < 2 {
		return 0, 0, errors.Wrap(errUsage, "want 2 arguments")
	}
	a, err := parse(args[0])
	if err != nil {
		return 0, 0, err
	}
	b, err := parse(args[1])
	if err != nil {
		return 0, 0, err
	}
	return a, b, nil
}

func parse(s string) (int64, error) {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, errors.Wrapf(errUsage, "bad integer %q", s)
	}
	return v, nil
}
