package sqs

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/calexandrepcjr/go-sqs/queue/types"
)

type Config struct {
	Region   string
	Endpoint string
}

// SQSClient implements the queue.Client interface on AWS SQS.
type SQSClient struct {
	client *sqs.Client
	config Config
}

// New initializes an SQS-backed queue client. Endpoint overrides the service
// endpoint for local stacks.
func New(cfg Config) (*SQSClient, error) {

	awsCfg, err := config.LoadDefaultConfig(context.TODO(), config.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("unable to load AWS SDK config: %w", err)
	}

	client := sqs.NewFromConfig(awsCfg, func(o *sqs.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})

	return &SQSClient{client: client, config: cfg}, nil
}

func getReceiveOptions(options []types.ReceiveOptions) types.ReceiveOptions {
	if len(options) == 0 {
		return types.ReceiveOptions{
			MaxMessages:     1,
			WaitTimeSeconds: 10,
		}
	}
	return options[0]
}

// ReceiveMessages long-polls the queue for up to MaxMessages messages.
func (q *SQSClient) ReceiveMessages(ctx context.Context, queueUrl string, options ...types.ReceiveOptions) ([]types.Message, error) {
	opts := getReceiveOptions(options)

	input := &sqs.ReceiveMessageInput{
		QueueUrl:            aws.String(queueUrl),
		MaxNumberOfMessages: int32(opts.MaxMessages),
		WaitTimeSeconds:     int32(opts.WaitTimeSeconds),
		AttributeNames: []sqstypes.QueueAttributeName{
			sqstypes.QueueAttributeNameAll,
		},
	}

	if len(opts.MessageAttributeNames) > 0 {
		input.MessageAttributeNames = opts.MessageAttributeNames
	} else {
		input.MessageAttributeNames = []string{string(sqstypes.QueueAttributeNameAll)}
	}

	resp, err := q.client.ReceiveMessage(ctx, input)

	if err != nil {
		return nil, fmt.Errorf("failed to receive messages: %w", err)
	}

	if len(resp.Messages) == 0 {
		return nil, nil
	}

	messages := make([]types.Message, len(resp.Messages))
	for i, message := range resp.Messages {
		approximateReceiveCount := 0
		if message.Attributes != nil {
			if countStr, ok := message.Attributes["ApproximateReceiveCount"]; ok {
				if count, err := strconv.Atoi(countStr); err == nil {
					approximateReceiveCount = count
				}
			}
		}

		messageAttributes := make(map[string]string, len(message.MessageAttributes))
		for name, attr := range message.MessageAttributes {
			messageAttributes[name] = aws.ToString(attr.StringValue)
		}

		messages[i] = types.Message{
			Id:                      aws.ToString(message.MessageId),
			Body:                    aws.ToString(message.Body),
			ReceiptHandle:           aws.ToString(message.ReceiptHandle),
			Attributes:              message.Attributes,
			MessageAttributes:       messageAttributes,
			ReceivedAt:              time.Now(),
			ApproximateReceiveCount: approximateReceiveCount,
		}
	}

	return messages, nil
}

// DeleteMessage acknowledges a message so it will not be redelivered.
func (q *SQSClient) DeleteMessage(ctx context.Context, queueUrl string, receiptHandle string) error {
	_, err := q.client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(queueUrl),
		ReceiptHandle: aws.String(receiptHandle),
	})

	if err != nil {
		return fmt.Errorf("failed to delete message: %w", err)
	}
	return nil
}

// ChangeMessageVisibility resets the visibility timeout of a received
// message. A timeout of zero makes it eligible for redelivery immediately.
func (q *SQSClient) ChangeMessageVisibility(ctx context.Context, queueUrl string, receiptHandle string, timeoutSeconds int) error {
	_, err := q.client.ChangeMessageVisibility(ctx, &sqs.ChangeMessageVisibilityInput{
		QueueUrl:          aws.String(queueUrl),
		ReceiptHandle:     aws.String(receiptHandle),
		VisibilityTimeout: int32(timeoutSeconds),
	})

	if err != nil {
		return fmt.Errorf("failed to change message visibility: %w", err)
	}
	return nil
}

func getSendOptions(options []types.SendOptions) types.SendOptions {
	if len(options) == 0 {
		return types.SendOptions{}
	}
	return options[0]
}

// SendMessage sends a message body to the queue and returns the id assigned
// by SQS.
func (q *SQSClient) SendMessage(ctx context.Context, queueUrl string, body string, options ...types.SendOptions) (string, error) {
	opts := getSendOptions(options)

	input := &sqs.SendMessageInput{
		QueueUrl:    aws.String(queueUrl),
		MessageBody: aws.String(body),
	}

	if opts.DelaySeconds > 0 {
		input.DelaySeconds = int32(opts.DelaySeconds)
	}

	if opts.GroupId != "" {
		input.MessageGroupId = aws.String(opts.GroupId)
	}

	if opts.DeduplicationId != "" {
		input.MessageDeduplicationId = aws.String(opts.DeduplicationId)
	}

	resp, err := q.client.SendMessage(ctx, input)

	if err != nil {
		return "", fmt.Errorf("failed to send message: %w", err)
	}

	return aws.ToString(resp.MessageId), nil
}

// PurgeQueue deletes every message on the queue. Purging an empty queue
// succeeds.
func (q *SQSClient) PurgeQueue(ctx context.Context, queueUrl string) error {
	_, err := q.client.PurgeQueue(ctx, &sqs.PurgeQueueInput{
		QueueUrl: aws.String(queueUrl),
	})

	if err != nil {
		return fmt.Errorf("failed to purge queue: %w", err)
	}
	return nil
}

// Count returns the approximate number of messages in the queue.
func (q *SQSClient) Count(ctx context.Context, queueUrl string) (int, error) {
	resp, err := q.client.GetQueueAttributes(ctx, &sqs.GetQueueAttributesInput{
		QueueUrl: aws.String(queueUrl),
		AttributeNames: []sqstypes.QueueAttributeName{
			sqstypes.QueueAttributeNameApproximateNumberOfMessages,
		},
	})

	if err != nil {
		return 0, fmt.Errorf("failed to get queue attributes: %w", err)
	}

	countStr := resp.Attributes[string(sqstypes.QueueAttributeNameApproximateNumberOfMessages)]
	if countStr == "" {
		return 0, errors.New("queue attribute not found")
	}

	var count int
	fmt.Sscanf(countStr, "%d", &count)
	return count, nil
}
