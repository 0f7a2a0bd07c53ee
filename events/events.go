package events

import "github.com/calexandrepcjr/go-sqs/queue/types"

type Kind string

const (
	MessageReceived  Kind = "message_received"
	MessageProcessed Kind = "message_processed"
	ProcessingError  Kind = "processing_error"
	Error            Kind = "error"
)

// Event is the payload handed to lifecycle event handlers. Message is nil for
// poll-level errors; Err is nil for the success kinds.
type Event struct {
	Queue   string
	Kind    Kind
	Message *types.Message
	Err     error
}
