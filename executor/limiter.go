package executor

import (
	"context"

	"github.com/go-extras/errx"
)

// ErrQueueFull is returned by a limited Executor when the configured queue
// limit is already saturated. It exists so callers can distinguish
// backpressure from a genuine statement failure.
var ErrQueueFull = errx.NewSentinel("statement queue is full")

// limited wraps an Executor with a bounded slot count: at most queueLimit
// statements may be in flight through it at once, counting both those
// executing and those still waiting inside next for a connection. A
// statement that would exceed the limit fails immediately with
// ErrQueueFull instead of blocking indefinitely, since an unbounded wait
// queue in front of a connection pool just moves the problem from "query
// error" to "goroutine pileup".
type limited struct {
	next  Executor
	queue chan struct{}
}

// NewLimited bounds the number of statements that may be in flight through
// next at once; a slot is held from the start of a call until next returns.
// queueLimit <= 0 disables the bound and returns next unchanged.
func NewLimited(next Executor, queueLimit int) Executor {
	if queueLimit <= 0 {
		return next
	}
	return &limited{next: next, queue: make(chan struct{}, queueLimit)}
}

func (l *limited) acquire() error {
	select {
	case l.queue <- struct{}{}:
		return nil
	default:
		return ErrQueueFull
	}
}

func (l *limited) release() { <-l.queue }

func (l *limited) Query(ctx context.Context, sqlText string, params []any) (*QueryResult, error) {
	if err := l.acquire(); err != nil {
		return nil, err
	}
	defer l.release()
	return l.next.Query(ctx, sqlText, params)
}

func (l *limited) Mutate(ctx context.Context, sqlText string, params []any) (*MutateResult, error) {
	if err := l.acquire(); err != nil {
		return nil, err
	}
	defer l.release()
	return l.next.Mutate(ctx, sqlText, params)
}
