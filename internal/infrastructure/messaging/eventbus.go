// Package messaging implements the in-process event bus that wires schedule
// and notice commands to their side effects: cache invalidation and
// notification dispatch.
package messaging

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Theunkillabledemonking/GSC-Portal-sub000/internal/domain/shared"
	"github.com/Theunkillabledemonking/GSC-Portal-sub000/pkg/logger"
)

// ErrEventBusClosed is returned when publishing to a closed bus.
var ErrEventBusClosed = errors.New("messaging: event bus is closed")

// ═══════════════════════════════════════════════════════════════════════════
// IN-MEMORY EVENT BUS
// ═══════════════════════════════════════════════════════════════════════════

// EventBus is a simple in-memory publisher suitable for single-instance
// deployments. Handlers run asynchronously on a bounded worker pool; a slow
// notification dispatch never blocks the command that triggered it.
type EventBus struct {
	mu       sync.RWMutex
	handlers map[shared.EventType][]shared.EventHandler

	workerPool chan struct{}
	timeout    time.Duration
	log        *logger.Logger
	closed     bool
	closeCh    chan struct{}
	wg         sync.WaitGroup
}

// Config contains event bus configuration.
type Config struct {
	// WorkerPoolSize bounds the number of concurrently running handlers.
	WorkerPoolSize int

	// HandlerTimeout bounds one handler invocation.
	HandlerTimeout time.Duration
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		WorkerPoolSize: 10,
		HandlerTimeout: 30 * time.Second,
	}
}

// NewEventBus creates a new in-memory event bus.
func NewEventBus(cfg Config, log *logger.Logger) *EventBus {
	if cfg.WorkerPoolSize <= 0 {
		cfg.WorkerPoolSize = 10
	}
	if cfg.HandlerTimeout <= 0 {
		cfg.HandlerTimeout = 30 * time.Second
	}
	if log == nil {
		log = logger.Default()
	}

	return &EventBus{
		handlers:   make(map[shared.EventType][]shared.EventHandler),
		workerPool: make(chan struct{}, cfg.WorkerPoolSize),
		log:        log.With(logger.Component("messaging.eventbus")),
		closeCh:    make(chan struct{}),
		timeout:    cfg.HandlerTimeout,
	}
}

// Subscribe registers a handler for a specific event type.
func (b *EventBus) Subscribe(eventType shared.EventType, handler shared.EventHandler) error {
	if handler == nil {
		return errors.New("messaging: handler cannot be nil")
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrEventBusClosed
	}

	b.handlers[eventType] = append(b.handlers[eventType], handler)
	b.log.Debug("subscribed handler", logger.String("event_type", string(eventType)))

	return nil
}

// Publish sends an event to all subscribed handlers. Handler errors are
// logged, never returned: the publishing command already succeeded.
func (b *EventBus) Publish(ctx context.Context, event shared.Event) error {
	if event == nil {
		return errors.New("messaging: event cannot be nil")
	}

	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return ErrEventBusClosed
	}
	handlers := make([]shared.EventHandler, len(b.handlers[event.EventType()]))
	copy(handlers, b.handlers[event.EventType()])
	b.mu.RUnlock()

	if len(handlers) == 0 {
		b.log.Debug("no handlers for event", logger.String("event_type", string(event.EventType())))
		return nil
	}

	for _, handler := range handlers {
		b.executeAsync(event, handler)
	}

	return nil
}

// executeAsync runs one handler on the worker pool. The handler gets its
// own context: the publisher's request context may already be done by the
// time the handler runs.
func (b *EventBus) executeAsync(event shared.Event, handler shared.EventHandler) {
	b.wg.Add(1)

	go func() {
		defer b.wg.Done()

		select {
		case b.workerPool <- struct{}{}:
			defer func() { <-b.workerPool }()
		case <-b.closeCh:
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), b.timeout)
		defer cancel()

		start := time.Now()
		err := handler(ctx, event)
		if err != nil {
			b.log.Error("event handler failed",
				logger.String("event_type", string(event.EventType())),
				logger.String("aggregate_id", event.AggregateID()),
				logger.Latency(time.Since(start)),
				logger.Err(err))
		}
	}()
}

// Close shuts the bus down and waits for in-flight handlers.
func (b *EventBus) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	close(b.closeCh)
	b.mu.Unlock()

	b.wg.Wait()
	b.log.Info("event bus closed")
	return nil
}
