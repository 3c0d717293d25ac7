package audit

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"
)

// DefaultPublishTimeout bounds how long a single sink may take per event.
const DefaultPublishTimeout = 5 * time.Second

// Fanout delivers each audit event to every sink concurrently. A slow sink is cut
// off at the publish timeout and never delays the others.
type Fanout struct {
	publishers []Publisher
	timeout    time.Duration
}

// FanoutOption customises a Fanout.
type FanoutOption func(*Fanout)

// WithPublishTimeout sets the per-sink deadline. Zero or negative disables it.
func WithPublishTimeout(d time.Duration) FanoutOption {
	return func(f *Fanout) { f.timeout = d }
}

// NewFanout builds a fan-out over pubs, skipping nil entries.
func NewFanout(pubs []Publisher, opts ...FanoutOption) *Fanout {
	f := &Fanout{
		publishers: make([]Publisher, 0, len(pubs)),
		timeout:    DefaultPublishTimeout,
	}
	for _, p := range pubs {
		if p != nil {
			f.publishers = append(f.publishers, p)
		}
	}
	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}
	return f
}

// Publish sends evt to every sink and waits for all of them. It returns the number
// of sinks that accepted the event and the joined errors of the rest, in sink order.
func (f *Fanout) Publish(ctx context.Context, evt Event) (int, error) {
	if f == nil || len(f.publishers) == 0 {
		return 0, nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	errs := make([]error, len(f.publishers))
	var wg sync.WaitGroup
	for i, p := range f.publishers {
		wg.Add(1)
		go func(i int, p Publisher) {
			defer wg.Done()
			pctx := ctx
			if f.timeout > 0 {
				var cancel context.CancelFunc
				pctx, cancel = context.WithTimeout(ctx, f.timeout)
				defer cancel()
			}
			if err := p.Publish(pctx, evt); err != nil {
				errs[i] = fmt.Errorf("%s sink[%s] event %s: %w", p.Type(), p.ID(), evt.ContextID, err)
			}
		}(i, p)
	}
	wg.Wait()

	accepted := 0
	for _, err := range errs {
		if err == nil {
			accepted++
		}
	}
	return accepted, errors.Join(errs...)
}

// Size returns the number of active sinks.
func (f *Fanout) Size() int {
	if f == nil {
		return 0
	}
	return len(f.publishers)
}

// SinkIDs lists the active sinks in delivery order.
func (f *Fanout) SinkIDs() []string {
	if f == nil {
		return nil
	}
	ids := make([]string, 0, len(f.publishers))
	for _, p := range f.publishers {
		ids = append(ids, p.ID())
	}
	return ids
}

// Close releases sinks that hold connections.
func (f *Fanout) Close() error {
	if f == nil {
		return nil
	}
	return closeAll(f.publishers)
}

func closeAll(pubs []Publisher) error {
	var errs []error
	for _, p := range pubs {
		if c, ok := p.(io.Closer); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close sink[%s]: %w", p.ID(), err))
			}
		}
	}
	return errors.Join(errs...)
}
