package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"
)

// ErrGateFailed wraps the initialization error a gate was opened with.
var ErrGateFailed = errors.New("gate failed")

// Gate is a one-shot readiness future for a single asynchronous
// initialization. It is opened exactly once; later calls to Open are ignored.
type Gate struct {
	name string
	once sync.Once
	done chan struct{}
	err  error
}

// NewGate creates an unopened gate.
func NewGate(name string) *Gate {
	return &Gate{
		name: name,
		done: make(chan struct{}),
	}
}

// Name returns the gate's name.
func (g *Gate) Name() string {
	return g.name
}

// Open resolves the gate. A nil err marks the subsystem ready.
func (g *Gate) Open(err error) {
	g.once.Do(func() {
		if err != nil {
			g.err = fmt.Errorf("%w: %s: %w", ErrGateFailed, g.name, err)
		}
		close(g.done)
	})
}

// Done returns a channel closed when the gate is resolved.
func (g *Gate) Done() <-chan struct{} {
	return g.done
}

// Resolved reports whether Open has been called.
func (g *Gate) Resolved() bool {
	select {
	case <-g.done:
		return true
	default:
		return false
	}
}

// Ready reports whether the gate resolved without error.
func (g *Gate) Ready() bool {
	return g.Resolved() && g.err == nil
}

// Err returns the resolution error, or nil while unresolved.
func (g *Gate) Err() error {
	if !g.Resolved() {
		return nil
	}
	return g.err
}

// Wait blocks until the gate resolves or ctx is done.
func (g *Gate) Wait(ctx context.Context) error {
	select {
	case <-g.done:
		return g.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Join returns a gate that opens once every gate has opened, or as soon as
// any of them fails.
func Join(name string, gates ...*Gate) *Gate {
	joined := NewGate(name)

	go func() {
		eg, ctx := errgroup.WithContext(context.Background())
		for _, g := range gates {
			eg.Go(func() error {
				return g.Wait(ctx)
			})
		}

		if err := eg.Wait(); err != nil {
			joined.once.Do(func() {
				joined.err = err
				close(joined.done)
			})
			return
		}
		joined.Open(nil)
	}()

	return joined
}
