package queue

import "errors"

var (
	// ErrDuplicateHandler is returned when a second message handler is
	// registered for a queue name. Registration is strict, not last-write-wins.
	ErrDuplicateHandler = errors.New("message handler already registered")

	// ErrDuplicateProducer is returned when a second producer is registered
	// for a queue name.
	ErrDuplicateProducer = errors.New("producer already registered")

	// ErrUnknownQueue is returned when looking up a queue name that was never
	// registered.
	ErrUnknownQueue = errors.New("queue not registered")

	// ErrMissingGroupId is returned when sending to a FIFO queue without a
	// message group id.
	ErrMissingGroupId = errors.New("group id is required for fifo queues")

	// ErrSend wraps transport failures while sending. Sends are not retried
	// internally; the caller decides.
	ErrSend = errors.New("failed to send message")

	// ErrRuntimeStarted is returned when registering after Start.
	ErrRuntimeStarted = errors.New("runtime already started")
)
