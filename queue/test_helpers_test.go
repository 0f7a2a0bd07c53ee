package queue

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/calexandrepcjr/go-sqs/events"
	"github.com/calexandrepcjr/go-sqs/queue/types"
)

// fakeMessage is a message held by the fake queue service.
type fakeMessage struct {
	id           string
	body         string
	groupId      string
	dedupId      string
	receiveCount int
}

// fakeClient is an in-memory queue service used by the consumer, producer and
// runtime tests. It tracks in-flight receipts so delete-on-success is
// observable, and emulates the service-side dead-letter redrive when
// maxReceiveCount is set.
type fakeClient struct {
	mu       sync.Mutex
	waiting  map[string][]fakeMessage
	inflight map[string]map[string]fakeMessage

	maxReceiveCount int
	dlq             map[string]string

	receiveErrs []error
	sendErr     error
	nextId      int
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		waiting:  make(map[string][]fakeMessage),
		inflight: make(map[string]map[string]fakeMessage),
		dlq:      make(map[string]string),
	}
}

func (f *fakeClient) ReceiveMessages(ctx context.Context, queueUrl string, options ...types.ReceiveOptions) ([]types.Message, error) {
	f.mu.Lock()

	if len(f.receiveErrs) > 0 {
		err := f.receiveErrs[0]
		f.receiveErrs = f.receiveErrs[1:]
		f.mu.Unlock()
		return nil, err
	}

	batchSize := 1
	if len(options) > 0 && options[0].MaxMessages > 0 {
		batchSize = options[0].MaxMessages
	}

	var received []types.Message

	for len(received) < batchSize && len(f.waiting[queueUrl]) > 0 {
		msg := f.waiting[queueUrl][0]
		f.waiting[queueUrl] = f.waiting[queueUrl][1:]

		msg.receiveCount++

		// Service-side redrive: past the maximum receive count the message
		// goes to the dead-letter queue instead of being delivered.
		if f.maxReceiveCount > 0 && msg.receiveCount > f.maxReceiveCount {
			if dlqUrl, ok := f.dlq[queueUrl]; ok {
				msg.receiveCount = 0
				f.waiting[dlqUrl] = append(f.waiting[dlqUrl], msg)
				continue
			}
		}

		f.nextId++
		receipt := fmt.Sprintf("receipt-%d", f.nextId)

		if f.inflight[queueUrl] == nil {
			f.inflight[queueUrl] = make(map[string]fakeMessage)
		}
		f.inflight[queueUrl][receipt] = msg

		received = append(received, types.Message{
			Id:                      msg.id,
			Body:                    msg.body,
			ReceiptHandle:           receipt,
			ReceivedAt:              time.Now(),
			ApproximateReceiveCount: msg.receiveCount,
		})
	}

	f.mu.Unlock()

	if len(received) == 0 {
		// Keep polling tests from spinning hot.
		time.Sleep(time.Millisecond)
	}

	return received, nil
}

func (f *fakeClient) DeleteMessage(ctx context.Context, queueUrl string, receiptHandle string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	delete(f.inflight[queueUrl], receiptHandle)
	return nil
}

func (f *fakeClient) ChangeMessageVisibility(ctx context.Context, queueUrl string, receiptHandle string, timeoutSeconds int) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if timeoutSeconds != 0 {
		return nil
	}

	msg, ok := f.inflight[queueUrl][receiptHandle]
	if !ok {
		return nil
	}

	delete(f.inflight[queueUrl], receiptHandle)
	f.waiting[queueUrl] = append(f.waiting[queueUrl], msg)
	return nil
}

func (f *fakeClient) SendMessage(ctx context.Context, queueUrl string, body string, options ...types.SendOptions) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.sendErr != nil {
		return "", f.sendErr
	}

	opts := types.SendOptions{}
	if len(options) > 0 {
		opts = options[0]
	}

	// FIFO deduplication by deduplication id.
	if opts.DeduplicationId != "" {
		for _, msg := range f.waiting[queueUrl] {
			if msg.dedupId == opts.DeduplicationId {
				return msg.id, nil
			}
		}
	}

	f.nextId++
	id := fmt.Sprintf("msg-%d", f.nextId)

	f.waiting[queueUrl] = append(f.waiting[queueUrl], fakeMessage{
		id:      id,
		body:    body,
		groupId: opts.GroupId,
		dedupId: opts.DeduplicationId,
	})

	return id, nil
}

func (f *fakeClient) PurgeQueue(ctx context.Context, queueUrl string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.waiting[queueUrl] = nil
	return nil
}

func (f *fakeClient) Count(ctx context.Context, queueUrl string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.waiting[queueUrl]), nil
}

func (f *fakeClient) waitingCount(queueUrl string) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.waiting[queueUrl])
}

func (f *fakeClient) inflightCount(queueUrl string) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.inflight[queueUrl])
}

// eventRecorder collects lifecycle events for assertions.
type eventRecorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *eventRecorder) handler(ctx context.Context, event events.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events = append(r.events, event)
}

func (r *eventRecorder) kinds() []events.Kind {
	r.mu.Lock()
	defer r.mu.Unlock()

	kinds := make([]events.Kind, len(r.events))
	for i, event := range r.events {
		kinds[i] = event.Kind
	}
	return kinds
}

func (r *eventRecorder) countKind(kind events.Kind) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for _, event := range r.events {
		if event.Kind == kind {
			n++
		}
	}
	return n
}

func (r *eventRecorder) firstOfKind(kind events.Kind) (events.Event, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, event := range r.events {
		if event.Kind == kind {
			return event, true
		}
	}
	return events.Event{}, false
}

func waitUntil(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}

	t.Fatal("condition not met within timeout")
}
