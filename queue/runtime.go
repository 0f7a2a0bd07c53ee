package queue

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/calexandrepcjr/go-sqs/events"
	"github.com/calexandrepcjr/go-sqs/log"
	"github.com/calexandrepcjr/go-sqs/metrics"
	"github.com/calexandrepcjr/go-sqs/queue/types"
	"github.com/calexandrepcjr/go-sqs/utils"
)

// Runtime is the composition root: it owns the handler registry, runs one
// consumer loop per registered consumer and routes sends to the registered
// producers. All registration happens before Start.
type Runtime struct {
	registry  *Registry
	collector metrics.Collector

	mu        sync.Mutex
	consumers map[string]*Consumer
	producers map[string]*Producer
	started   bool
	cancel    context.CancelFunc
	wg        sync.WaitGroup
}

func New() *Runtime {
	return &Runtime{
		registry:  NewRegistry(),
		collector: newCollector(),
		consumers: make(map[string]*Consumer),
		producers: make(map[string]*Producer),
	}
}

func newCollector() metrics.Collector {

	collector := metrics.NewPrometheusCollector("sqs")

	err := collector.RegisterCustomMetrics(
		metrics.CustomMetric{Name: "messages_received_total", Description: "Messages received from the queue", Type: metrics.Counter, Labels: []string{"queue"}},
		metrics.CustomMetric{Name: "messages_processed_total", Description: "Messages handled and deleted", Type: metrics.Counter, Labels: []string{"queue"}},
		metrics.CustomMetric{Name: "processing_errors_total", Description: "Handler failures", Type: metrics.Counter, Labels: []string{"queue"}},
		metrics.CustomMetric{Name: "receive_errors_total", Description: "Failed receive calls", Type: metrics.Counter, Labels: []string{"queue"}},
		metrics.CustomMetric{Name: "poll_duration_seconds", Description: "Duration of a single poll", Type: metrics.Histogram, Labels: []string{"queue"}},
	)

	if err != nil {
		log.Errorf("failed to register queue metrics: %s", err)
	}

	return collector
}

// RegisterConsumer binds a message handler to a queue name and prepares a
// consumer loop for it. Fails fast on duplicate names and invalid options.
func (r *Runtime) RegisterConsumer(opts ConsumerOptions, handler MessageHandler) error {

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.started {
		return fmt.Errorf("%w: cannot register consumer %q", ErrRuntimeStarted, opts.Name)
	}

	if err := r.registry.Register(opts.Name, handler); err != nil {
		return err
	}

	consumer, err := newConsumer(opts, r.registry, r.collector)
	if err != nil {
		return err
	}

	r.consumers[opts.Name] = consumer
	return nil
}

// RegisterProducer binds a producer to a queue name.
func (r *Runtime) RegisterProducer(opts ProducerOptions) error {

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.started {
		return fmt.Errorf("%w: cannot register producer %q", ErrRuntimeStarted, opts.Name)
	}

	if _, ok := r.producers[opts.Name]; ok {
		return fmt.Errorf("%w: queue %q", ErrDuplicateProducer, opts.Name)
	}

	producer, err := newProducer(opts)
	if err != nil {
		return err
	}

	r.producers[opts.Name] = producer
	return nil
}

// RegisterEventHandler subscribes to a lifecycle event for a queue name.
func (r *Runtime) RegisterEventHandler(queueName string, kind events.Kind, handler EventHandler) error {

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.started {
		return fmt.Errorf("%w: cannot register event handler for %q", ErrRuntimeStarted, queueName)
	}

	r.registry.RegisterEvent(queueName, kind, handler)
	return nil
}

// Start launches one polling goroutine per registered consumer. A failing or
// panicking loop never halts the others.
func (r *Runtime) Start(ctx context.Context) error {

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.started {
		return ErrRuntimeStarted
	}

	ctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.started = true

	for name, consumer := range r.consumers {
		r.wg.Add(1)

		go func(name string, consumer *Consumer) {
			defer r.wg.Done()

			utils.TryCatch(func() {
				if err := consumer.Run(ctx); err != nil && ctx.Err() == nil {
					log.Errorf("consumer %s stopped: %s", name, err)
				}
			}, func(e error, stack string) {
				log.FromContext(ctx).ErrorStack(stack, "consumer %s panicked: %v", name, e)
			})
		}(name, consumer)
	}

	return nil
}

// Stop cancels all consumer loops and waits for in-flight dispatches to
// finish. Safe to call more than once.
func (r *Runtime) Stop() {

	r.mu.Lock()
	cancel := r.cancel
	r.cancel = nil
	r.mu.Unlock()

	if cancel != nil {
		cancel()
	}

	r.wg.Wait()
}

// Send routes a message to the producer registered under queueName.
func (r *Runtime) Send(ctx context.Context, queueName string, msg types.OutboundMessage) (string, error) {

	producer, err := r.producer(queueName)
	if err != nil {
		return "", err
	}

	return producer.Send(ctx, msg)
}

// Purge empties the queue registered under queueName.
func (r *Runtime) Purge(ctx context.Context, queueName string) error {

	producer, err := r.producer(queueName)
	if err != nil {
		return err
	}

	return producer.Purge(ctx)
}

// Count returns the approximate backlog of the queue registered under
// queueName.
func (r *Runtime) Count(ctx context.Context, queueName string) (int, error) {

	producer, err := r.producer(queueName)
	if err != nil {
		return 0, err
	}

	return producer.Count(ctx)
}

func (r *Runtime) producer(queueName string) (*Producer, error) {

	r.mu.Lock()
	defer r.mu.Unlock()

	producer, ok := r.producers[queueName]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownQueue, queueName)
	}

	return producer, nil
}

// Consumers returns the registered consumer queue names, sorted.
func (r *Runtime) Consumers() []string {

	r.mu.Lock()
	defer r.mu.Unlock()

	names := make([]string, 0, len(r.consumers))
	for name := range r.consumers {
		names = append(names, name)
	}

	sort.Strings(names)
	return names
}

// Producers returns the registered producer queue names, sorted.
func (r *Runtime) Producers() []string {

	r.mu.Lock()
	defer r.mu.Unlock()

	names := make([]string, 0, len(r.producers))
	for name := range r.producers {
		names = append(names, name)
	}

	sort.Strings(names)
	return names
}

func (r *Runtime) HasConsumer(queueName string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.consumers[queueName]
	return ok
}

func (r *Runtime) HasProducer(queueName string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.producers[queueName]
	return ok
}

// MetricsHandler exposes the prometheus scrape handler for the runtime's
// queue metrics.
func (r *Runtime) MetricsHandler() interface{} {
	return r.collector.GetMetricsHandler()
}
