// Package worker runs notification fanout outside the request path. Ticket
// mutations publish an event and return; the worker loop consumes the queue
// and performs the inserts, so fanout latency and fanout failures never
// reach the triggering caller.
package worker

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/dagim-hg/Astu-Steam-dev-project-sub000/internal/events"
)

// Fanout performs the per-event recipient resolution and inserts.
type Fanout interface {
	Fanout(ctx context.Context, event events.Event) error
}

const fanoutTimeout = 10 * time.Second

// NotificationWorker is an in-process queue plus a single consumer loop.
// It implements events.Publisher.
type NotificationWorker struct {
	queue  chan events.Event
	fanout Fanout
	logger *zap.Logger

	wg     sync.WaitGroup
	mu     sync.RWMutex
	closed bool
}

// NewNotificationWorker builds the worker with a bounded queue.
func NewNotificationWorker(fanout Fanout, logger *zap.Logger, queueSize int) *NotificationWorker {
	if queueSize <= 0 {
		queueSize = 256
	}
	return &NotificationWorker{
		queue:  make(chan events.Event, queueSize),
		fanout: fanout,
		logger: logger,
	}
}

// Publish enqueues the event without blocking. A full queue drops the
// event: fanout is best-effort and must never delay the caller.
func (w *NotificationWorker) Publish(event events.Event) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		return false
	}
	select {
	case w.queue <- event:
		return true
	default:
		w.logger.Warn("notification queue full, dropping event",
			zap.String("event", string(event.Type)),
			zap.String("ticket_id", event.Ticket.TicketID))
		return false
	}
}

// Start launches the consumer loop. Events already queued are processed
// even after Shutdown is called.
func (w *NotificationWorker) Start() {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		for event := range w.queue {
			ctx, cancel := context.WithTimeout(context.Background(), fanoutTimeout)
			if err := w.fanout.Fanout(ctx, event); err != nil {
				// Best-effort by contract: log and move on.
				w.logger.Error("notification fanout failed",
					zap.String("event", string(event.Type)),
					zap.String("ticket_id", event.Ticket.TicketID),
					zap.Error(err))
			}
			cancel()
		}
	}()
}

// Shutdown stops accepting events and waits for the queue to drain.
func (w *NotificationWorker) Shutdown() {
	w.mu.Lock()
	if !w.closed {
		w.closed = true
		close(w.queue)
	}
	w.mu.Unlock()
	w.wg.Wait()
}
