package loader

import (
	"context"
	"sync"

	"github.com/psidex/visualizer/internal/elements"
)

// Deferred is the pending result of a Load. It is resolved exactly once and every
// Wait returns the same value and error.
type Deferred struct {
	done chan struct{}
	once sync.Once
	list elements.List
	err  error
}

// Start begins loading urlStr in its own goroutine and returns immediately.
func (l *Loader) Start(ctx context.Context, urlStr string) *Deferred {
	d := newDeferred()
	go func() {
		d.resolve(l.Load(ctx, urlStr))
	}()
	return d
}

func newDeferred() *Deferred {
	return &Deferred{done: make(chan struct{})}
}

func (d *Deferred) resolve(list elements.List, err error) {
	d.once.Do(func() {
		d.list, d.err = list, err
		close(d.done)
	})
}

// Done is closed once the result is available.
func (d *Deferred) Done() <-chan struct{} {
	return d.done
}

// Wait blocks until the result is available or ctx is done. Giving up on the wait does
// not cancel the load itself; that is governed by the context passed to Start.
func (d *Deferred) Wait(ctx context.Context) (elements.List, error) {
	select {
	case <-d.done:
		return d.list, d.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
