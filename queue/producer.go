package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/calexandrepcjr/go-sqs/queue/types"
)

type ProducerOptions struct {
	Name     string
	QueueUrl string
	Client   Client
}

// Producer sends messages to a single named queue.
type Producer struct {
	opts ProducerOptions
}

func newProducer(opts ProducerOptions) (*Producer, error) {

	if opts.Name == "" {
		return nil, fmt.Errorf("producer name is required")
	}

	if opts.Client == nil {
		return nil, fmt.Errorf("no queue client for producer %q", opts.Name)
	}

	if opts.QueueUrl == "" {
		return nil, fmt.Errorf("no queue url for producer %q", opts.Name)
	}

	return &Producer{opts: opts}, nil
}

// Send serializes the message body to JSON (string bodies pass through) and
// forwards it to the queue. Transport failures are wrapped in ErrSend and not
// retried; the caller owns the retry decision.
func (p *Producer) Send(ctx context.Context, msg types.OutboundMessage) (string, error) {

	if isFifoQueue(p.opts.QueueUrl) && msg.GroupId == "" {
		return "", fmt.Errorf("%w: queue %q", ErrMissingGroupId, p.opts.Name)
	}

	body, err := serializeBody(msg.Body)
	if err != nil {
		return "", fmt.Errorf("failed to marshal message body to json: %s", err)
	}

	id, err := p.opts.Client.SendMessage(ctx, p.opts.QueueUrl, body, types.SendOptions{
		DelaySeconds:    msg.DelaySeconds,
		GroupId:         msg.GroupId,
		DeduplicationId: msg.DeduplicationId,
	})

	if err != nil {
		return "", fmt.Errorf("%w: queue %q: %s", ErrSend, p.opts.Name, err)
	}

	return id, nil
}

// Purge empties the queue. Purging an already-empty queue is not an error.
func (p *Producer) Purge(ctx context.Context) error {

	if err := p.opts.Client.PurgeQueue(ctx, p.opts.QueueUrl); err != nil {
		return fmt.Errorf("failed to purge queue %q: %s", p.opts.Name, err)
	}

	return nil
}

// Count returns the approximate number of messages waiting on the queue.
func (p *Producer) Count(ctx context.Context) (int, error) {
	return p.opts.Client.Count(ctx, p.opts.QueueUrl)
}

func serializeBody(body any) (string, error) {

	switch v := body.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	}

	jsonBytes, err := json.Marshal(body)
	if err != nil {
		return "", err
	}

	return string(jsonBytes), nil
}
