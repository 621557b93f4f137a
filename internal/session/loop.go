package session

import (
	"context"
	"sync"
)

// Loop is a dispatcher for headless use: functions queued from any goroutine
// run one at a time on the goroutine that calls Run.
type Loop struct {
	queue chan func()
	done  chan struct{}
	once  sync.Once
}

// NewLoop creates a Loop with a queue of the given size
func NewLoop(buffer int) *Loop {
	if buffer <= 0 {
		buffer = 64
	}
	return &Loop{
		queue: make(chan func(), buffer),
		done:  make(chan struct{}),
	}
}

// Dispatch queues fn. Calls after Close are dropped.
func (l *Loop) Dispatch(fn func()) {
	select {
	case <-l.done:
		return
	default:
	}
	select {
	case l.queue <- fn:
	case <-l.done:
	}
}

// Run executes queued functions until Close is called or ctx is done.
// Work already queued when Close is called still runs.
func (l *Loop) Run(ctx context.Context) error {
	for {
		select {
		case fn := <-l.queue:
			fn()
		case <-l.done:
			for {
				select {
				case fn := <-l.queue:
					fn()
				default:
					return nil
				}
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Close stops the loop once the queue is drained
func (l *Loop) Close() {
	l.once.Do(func() { close(l.done) })
}
