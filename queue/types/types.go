package types

import "time"

// Message is a single message received from a queue. It is owned by the
// consumer for the duration of one dispatch; handlers must not hold on to it
// after returning.
type Message struct {
	Id                      string
	Body                    string
	ReceiptHandle           string
	Attributes              map[string]string
	MessageAttributes       map[string]string
	ReceivedAt              time.Time
	ApproximateReceiveCount int
}

// OutboundMessage is a message to be sent to a queue. Body is marshalled to
// JSON before sending. GroupId is required for FIFO queues.
type OutboundMessage struct {
	Id              string
	Body            any
	DelaySeconds    int
	GroupId         string
	DeduplicationId string
}

type ReceiveOptions struct {
	MaxMessages           int
	WaitTimeSeconds       int
	MessageAttributeNames []string
}

type SendOptions struct {
	DelaySeconds    int
	GroupId         string
	DeduplicationId string
}
