package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/dagim-hg/Astu-Steam-dev-project-sub000/internal/events"
)

type recordingFanout struct {
	mu      sync.Mutex
	block   chan struct{}
	err     error
	handled []events.Event
}

func (r *recordingFanout) Fanout(ctx context.Context, event events.Event) error {
	if r.block != nil {
		<-r.block
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.handled = append(r.handled, event)
	return nil
}

func (r *recordingFanout) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.handled)
}

func TestWorkerProcessesPublishedEvents(t *testing.T) {
	fanout := &recordingFanout{}
	w := NewNotificationWorker(fanout, zap.NewNop(), 8)
	w.Start()

	for i := 0; i < 5; i++ {
		if !w.Publish(events.Event{Type: events.EventTicketCreated}) {
			t.Fatalf("publish %d rejected", i)
		}
	}
	w.Shutdown()

	if got := fanout.count(); got != 5 {
		t.Fatalf("handled = %d, want 5", got)
	}
}

func TestPublishNeverBlocksWhenQueueIsFull(t *testing.T) {
	fanout := &recordingFanout{block: make(chan struct{})}
	w := NewNotificationWorker(fanout, zap.NewNop(), 2)
	w.Start()

	// One event is stuck in the consumer, two fill the queue. Everything
	// past that must be dropped immediately rather than waiting.
	deadline := time.After(2 * time.Second)
	accepted := 0
	for i := 0; i < 10; i++ {
		done := make(chan bool, 1)
		go func() {
			done <- w.Publish(events.Event{Type: events.EventTicketUpdated})
		}()
		select {
		case ok := <-done:
			if ok {
				accepted++
			}
		case <-deadline:
			t.Fatal("Publish blocked on a full queue")
		}
	}
	if accepted > 3 {
		t.Errorf("accepted = %d events into a queue of 2", accepted)
	}

	close(fanout.block)
	w.Shutdown()
}

func TestPublishAfterShutdownIsRejected(t *testing.T) {
	fanout := &recordingFanout{}
	w := NewNotificationWorker(fanout, zap.NewNop(), 4)
	w.Start()
	w.Shutdown()

	if w.Publish(events.Event{Type: events.EventTicketCreated}) {
		t.Fatal("publish after shutdown must be rejected")
	}
}

func TestShutdownDrainsQueuedEvents(t *testing.T) {
	release := make(chan struct{})
	fanout := &recordingFanout{block: release}
	w := NewNotificationWorker(fanout, zap.NewNop(), 8)
	w.Start()

	for i := 0; i < 4; i++ {
		w.Publish(events.Event{Type: events.EventTicketCreated})
	}
	close(release)
	w.Shutdown()

	if got := fanout.count(); got != 4 {
		t.Fatalf("handled = %d after drain, want 4", got)
	}
}

func TestFanoutErrorsAreSwallowed(t *testing.T) {
	fanout := &recordingFanout{err: errors.New("insert failed")}
	w := NewNotificationWorker(fanout, zap.NewNop(), 4)
	w.Start()

	w.Publish(events.Event{Type: events.EventTicketCreated})
	// Shutdown returning proves the loop survived the error.
	w.Shutdown()
}
