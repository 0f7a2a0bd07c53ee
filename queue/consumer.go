package queue

import (
	"context"
	"fmt"
	"sync"
	"time"

	channels "github.com/calexandrepcjr/go-sqs/channel"
	"github.com/calexandrepcjr/go-sqs/events"
	"github.com/calexandrepcjr/go-sqs/log"
	"github.com/calexandrepcjr/go-sqs/metrics"
	"github.com/calexandrepcjr/go-sqs/queue/types"
	"github.com/calexandrepcjr/go-sqs/utils"
)

const (
	defaultWaitTimeSeconds   = 10
	defaultBatchSize         = 1
	defaultReceiveErrorDelay = 5 * time.Second

	// SQS caps a single receive at 10 messages.
	maxBatchSize = 10
)

type ConsumerOptions struct {
	Name                       string
	QueueUrl                   string
	Client                     Client
	WaitTimeSeconds            int
	BatchSize                  int
	TerminateVisibilityTimeout bool
	MessageAttributeNames      []string

	// ParallelDispatch opts into concurrent dispatch within a received batch.
	// Ignored for FIFO queues, where receipt order must be preserved.
	ParallelDispatch bool

	// ReceiveErrorDelay is slept after a failed poll before trying again.
	ReceiveErrorDelay time.Duration
}

// Consumer long-polls a single queue and dispatches each received message to
// the handler registered under its name. Handler failures never stop the
// loop; the message is simply not deleted, so the queue service redelivers it
// and eventually moves it to the configured dead-letter queue.
type Consumer struct {
	opts      ConsumerOptions
	registry  *Registry
	collector metrics.Collector
}

func newConsumer(opts ConsumerOptions, registry *Registry, collector metrics.Collector) (*Consumer, error) {

	if opts.Name == "" {
		return nil, fmt.Errorf("consumer name is required")
	}

	if opts.Client == nil {
		return nil, fmt.Errorf("no queue client for consumer %q", opts.Name)
	}

	if opts.QueueUrl == "" {
		return nil, fmt.Errorf("no queue url for consumer %q", opts.Name)
	}

	if opts.WaitTimeSeconds < 0 {
		return nil, fmt.Errorf("wait time must not be negative for consumer %q", opts.Name)
	}

	if opts.WaitTimeSeconds == 0 {
		opts.WaitTimeSeconds = defaultWaitTimeSeconds
	}

	if opts.BatchSize == 0 {
		opts.BatchSize = defaultBatchSize
	}

	if opts.BatchSize < 1 || opts.BatchSize > maxBatchSize {
		return nil, fmt.Errorf("batch size must be between 1 and %d for consumer %q", maxBatchSize, opts.Name)
	}

	if opts.ReceiveErrorDelay == 0 {
		opts.ReceiveErrorDelay = defaultReceiveErrorDelay
	}

	return &Consumer{opts: opts, registry: registry, collector: collector}, nil
}

// Run polls until the context is cancelled. In-flight dispatches complete
// before it returns; the pending long poll is cancelled through the context.
func (c *Consumer) Run(ctx context.Context) error {

	logger := log.FromContext(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		start := time.Now()

		messages, err := c.opts.Client.ReceiveMessages(ctx, c.opts.QueueUrl, types.ReceiveOptions{
			MaxMessages:           c.opts.BatchSize,
			WaitTimeSeconds:       c.opts.WaitTimeSeconds,
			MessageAttributeNames: c.opts.MessageAttributeNames,
		})

		c.observe(ctx, "poll_duration_seconds", time.Since(start).Seconds())

		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}

			logger.Errorf("failed to receive messages for %s: %s", c.opts.Name, err)
			c.count(ctx, "receive_errors_total")
			c.registry.Emit(ctx, events.Event{Queue: c.opts.Name, Kind: events.Error, Err: err})

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.opts.ReceiveErrorDelay):
			}
			continue
		}

		if len(messages) == 0 {
			continue
		}

		if c.opts.ParallelDispatch && !isFifoQueue(c.opts.QueueUrl) {
			c.dispatchParallel(ctx, messages)
		} else {
			for i := range messages {
				c.dispatch(ctx, &messages[i])
			}
		}
	}
}

// dispatchParallel fans a batch out to one worker per message slot. Only used
// for non-FIFO queues where within-batch order carries no guarantee.
func (c *Consumer) dispatchParallel(ctx context.Context, messages []types.Message) {

	// Per-batch context so the channel's close watcher does not outlive the
	// batch.
	batchCtx, done := context.WithCancel(ctx)
	defer done()

	jobs := channels.New[*types.Message](batchCtx, len(messages))

	wg := sync.WaitGroup{}
	wg.Add(c.opts.BatchSize)

	for i := 0; i < c.opts.BatchSize; i++ {
		go func() {
			defer wg.Done()
			for msg := range jobs.Read() {
				c.dispatch(ctx, msg)
			}
		}()
	}

	for i := range messages {
		if err := jobs.Write(&messages[i]); err != nil {
			// Channel closed by cancellation; undispatched messages stay on
			// the queue and come back after the visibility timeout.
			break
		}
	}

	jobs.Close()
	wg.Wait()
}

func (c *Consumer) dispatch(ctx context.Context, msg *types.Message) {

	logger := log.FromContext(ctx)

	c.count(ctx, "messages_received_total")
	c.registry.Emit(ctx, events.Event{Queue: c.opts.Name, Kind: events.MessageReceived, Message: msg})

	if err := c.invokeHandler(ctx, msg); err != nil {
		logger.Errorf("failed to process message %s on %s: %s", msg.Id, c.opts.Name, err)
		c.count(ctx, "processing_errors_total")
		c.registry.Emit(ctx, events.Event{Queue: c.opts.Name, Kind: events.ProcessingError, Message: msg, Err: err})

		if c.opts.TerminateVisibilityTimeout {
			// Make the message eligible for redelivery immediately instead of
			// waiting out the queue's visibility timeout.
			if verr := c.opts.Client.ChangeMessageVisibility(context.Background(), c.opts.QueueUrl, msg.ReceiptHandle, 0); verr != nil {
				logger.Errorf("failed to reset visibility for message %s: %s", msg.Id, verr)
			}
		}
		return
	}

	// Use a background context so a shutdown mid-dispatch cannot leave a
	// successfully handled message undeleted.
	if err := c.opts.Client.DeleteMessage(context.Background(), c.opts.QueueUrl, msg.ReceiptHandle); err != nil {
		logger.Errorf("failed to delete message %s on %s: %s", msg.Id, c.opts.Name, err)
		c.registry.Emit(ctx, events.Event{Queue: c.opts.Name, Kind: events.Error, Message: msg, Err: err})
		return
	}

	c.count(ctx, "messages_processed_total")
	c.registry.Emit(ctx, events.Event{Queue: c.opts.Name, Kind: events.MessageProcessed, Message: msg})
}

// invokeHandler runs the registered handler, converting a panic into an error
// so a misbehaving handler cannot take down the loop.
func (c *Consumer) invokeHandler(ctx context.Context, msg *types.Message) error {

	handler, err := c.registry.Lookup(c.opts.Name)
	if err != nil {
		return err
	}

	var handlerErr error

	utils.TryCatch(func() {
		handlerErr = handler(ctx, msg)
	}, func(e error, stack string) {
		log.FromContext(ctx).ErrorStack(stack, "handler panic on message %s: %v", msg.Id, e)
		handlerErr = e
	})

	return handlerErr
}

func (c *Consumer) count(ctx context.Context, name string) {
	if c.collector == nil {
		return
	}
	c.collector.IncrementCounter(ctx, name, map[string]string{"queue": c.opts.Name}, 1)
}

func (c *Consumer) observe(ctx context.Context, name string, value float64) {
	if c.collector == nil {
		return
	}
	c.collector.ObserveHistogram(ctx, name, map[string]string{"queue": c.opts.Name}, value)
}
