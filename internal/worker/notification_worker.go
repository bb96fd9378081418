package worker

import (
	"context"

	"go.uber.org/zap"

	"github.com/teamhub/team-service/internal/events"
)

const defaultQueueSize = 256

// NotificationWorker moves notification delivery off the request path.
// Services publish on the application dispatcher; the worker queues those
// events and replays them on its own dispatcher, where notification handlers
// are subscribed.
type NotificationWorker struct {
	local  events.Dispatcher
	queue  chan events.Event
	logger *zap.Logger
	done   chan struct{}
}

// NewNotificationWorker creates a worker with a queue of queueSize events.
func NewNotificationWorker(logger *zap.Logger, queueSize int) *NotificationWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}
	return &NotificationWorker{
		local:  events.NewInMemoryDispatcher(),
		queue:  make(chan events.Event, queueSize),
		logger: logger,
		done:   make(chan struct{}),
	}
}

// Dispatcher is where notification handlers subscribe.
func (w *NotificationWorker) Dispatcher() events.Dispatcher {
	return w.local
}

// Attach queues every event of the given types published on source.
func (w *NotificationWorker) Attach(source events.Dispatcher, types ...events.EventType) {
	for _, eventType := range types {
		source.Subscribe(eventType, w.enqueue)
	}
}

// enqueue never blocks the publisher; a full queue drops the event.
func (w *NotificationWorker) enqueue(_ context.Context, event events.Event) error {
	select {
	case w.queue <- event:
	default:
		w.logger.Warn("notification queue full, dropping event",
			zap.String("event_id", event.ID),
			zap.String("type", string(event.Type)))
	}
	return nil
}

// Run delivers queued events until ctx is cancelled, then drains what is left.
func (w *NotificationWorker) Run(ctx context.Context) {
	defer close(w.done)
	for {
		select {
		case event := <-w.queue:
			w.deliver(ctx, event)
		case <-ctx.Done():
			w.drain()
			return
		}
	}
}

// Wait blocks until Run has returned.
func (w *NotificationWorker) Wait() {
	<-w.done
}

func (w *NotificationWorker) drain() {
	ctx := context.Background()
	for {
		select {
		case event := <-w.queue:
			w.deliver(ctx, event)
		default:
			return
		}
	}
}

func (w *NotificationWorker) deliver(ctx context.Context, event events.Event) {
	if err := w.local.Publish(ctx, event); err != nil {
		w.logger.Warn("notification delivery failed",
			zap.String("event_id", event.ID),
			zap.String("type", string(event.Type)),
			zap.Error(err))
	}
}
