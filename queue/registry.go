package queue

import (
	"context"
	"fmt"
	"sync"

	"github.com/calexandrepcjr/go-sqs/events"
	"github.com/calexandrepcjr/go-sqs/log"
	"github.com/calexandrepcjr/go-sqs/queue/types"
	"github.com/calexandrepcjr/go-sqs/utils"
)

// MessageHandler processes a single received message. Returning an error
// leaves the message on the queue for redelivery.
type MessageHandler func(ctx context.Context, msg *types.Message) error

// EventHandler observes a lifecycle event. Handlers for the same
// (queue, kind) pair run synchronously in registration order.
type EventHandler func(ctx context.Context, event events.Event)

// Registry maps queue names to their message handler and lifecycle event
// handlers. All registration happens before the runtime starts; reads after
// that are lock-protected but uncontended.
type Registry struct {
	mu            sync.RWMutex
	handlers      map[string]MessageHandler
	eventHandlers map[string]map[events.Kind][]EventHandler
}

func NewRegistry() *Registry {
	return &Registry{
		handlers:      make(map[string]MessageHandler),
		eventHandlers: make(map[string]map[events.Kind][]EventHandler),
	}
}

// Register binds the message handler for a queue name. Exactly one handler is
// allowed per queue; a second registration fails fast.
func (r *Registry) Register(queueName string, handler MessageHandler) error {

	if handler == nil {
		return fmt.Errorf("nil message handler for queue %q", queueName)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.handlers[queueName]; ok {
		return fmt.Errorf("%w: queue %q", ErrDuplicateHandler, queueName)
	}

	r.handlers[queueName] = handler
	return nil
}

// RegisterEvent appends a lifecycle event handler for the queue. Multiple
// handlers per (queue, kind) are allowed.
func (r *Registry) RegisterEvent(queueName string, kind events.Kind, handler EventHandler) {

	if handler == nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.eventHandlers[queueName] == nil {
		r.eventHandlers[queueName] = make(map[events.Kind][]EventHandler)
	}

	r.eventHandlers[queueName][kind] = append(r.eventHandlers[queueName][kind], handler)
}

func (r *Registry) Lookup(queueName string) (MessageHandler, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	handler, ok := r.handlers[queueName]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownQueue, queueName)
	}
	return handler, nil
}

func (r *Registry) Has(queueName string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.handlers[queueName]
	return ok
}

// Emit invokes the handlers registered for the event's queue and kind, in
// registration order. A panicking listener is logged and skipped so the
// consumer loop is never taken down by an observer.
func (r *Registry) Emit(ctx context.Context, event events.Event) {
	r.mu.RLock()
	handlers := r.eventHandlers[event.Queue][event.Kind]
	r.mu.RUnlock()

	for _, handler := range handlers {
		utils.TryCatch(func() {
			handler(ctx, event)
		}, func(e error, stack string) {
			log.FromContext(ctx).ErrorStack(stack, "event handler panic on %s/%s: %v", event.Queue, event.Kind, e)
		})
	}
}
