// Package events forwards notifications to an external sink without blocking
// the goroutine that emitted them.
package events

import (
	"context"
	"sync"
	"time"

	"violet-client/internal/model"
	"violet-client/internal/pkg/logger"
)

const logModule = "Events"

const publishTimeout = 3 * time.Second

type Sink interface {
	Publish(ctx context.Context, n model.Notification) error
}

// Relay queues notifications and publishes them in order on one goroutine.
// When the buffer is full new notifications are dropped.
type Relay struct {
	sink   Sink
	logger logger.ILogger
	queue  chan model.Notification

	mu     sync.Mutex
	closed bool
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewRelay(sink Sink, buffer int, log logger.ILogger) *Relay {
	if buffer <= 0 {
		buffer = 64
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Relay{sink: sink, logger: log, queue: make(chan model.Notification, buffer)}
}

func (r *Relay) Start(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil || r.closed {
		return
	}
	workerCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		for n := range r.queue {
			r.publish(workerCtx, n)
		}
	}()
}

// Observe matches notify.Observer.
func (r *Relay) Observe(n model.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	select {
	case r.queue <- n:
	default:
		r.logger.Warn(logModule, "notification relay full, dropping", map[string]interface{}{"id": n.ID})
	}
}

func (r *Relay) publish(ctx context.Context, n model.Notification) {
	pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	if err := r.sink.Publish(pubCtx, n); err != nil {
		r.logger.Warn(logModule, "publish notification failed", map[string]interface{}{"id": n.ID, "error": err})
	}
}

// Close stops accepting notifications and waits for queued ones to be
// published.
func (r *Relay) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	close(r.queue)
	cancel := r.cancel
	r.mu.Unlock()

	r.wg.Wait()
	if cancel != nil {
		cancel()
	}
}
