package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/calexandrepcjr/go-sqs/adapters"
	"github.com/calexandrepcjr/go-sqs/queue/types"
	"github.com/google/uuid"

	"github.com/redis/go-redis/v9"
)

// RedisClient is a list-backed queue client for local development. Received
// messages are parked in a per-queue processing hash until deleted, so the
// delete-on-success contract is observable; visibility timeouts are not
// emulated beyond an explicit reset to zero, which requeues the message.
type RedisClient struct {
	rdb *redis.Client
}

func New(db int) *RedisClient {
	return &RedisClient{
		rdb: adapters.GetRedisClient(db),
	}
}

func processingKey(queueUrl string) string {
	return queueUrl + ":processing"
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

// ReceiveMessages pops up to MaxMessages items, polling until WaitTimeSeconds
// elapses when the queue is empty.
func (q *RedisClient) ReceiveMessages(ctx context.Context, queueUrl string, options ...types.ReceiveOptions) ([]types.Message, error) {
	opts := getReceiveOptions(options)

	deadline := time.Now().Add(time.Duration(opts.WaitTimeSeconds) * time.Second)

	for {
		messages, err := q.popBatch(ctx, queueUrl, opts.MaxMessages)

		if err != nil || len(messages) > 0 || time.Now().After(deadline) {
			return messages, err
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(250 * time.Millisecond):
		}
	}
}

func (q *RedisClient) popBatch(ctx context.Context, queueUrl string, batchSize int) ([]types.Message, error) {

	items := []types.Message{}

	for i := 0; i < batchSize; i++ {
		body, err := q.rdb.RPop(ctx, queueUrl).Result()

		if err == redis.Nil {
			break
		} else if err != nil {
			return nil, fmt.Errorf("failed to pop item from queue: %s", err)
		}

		receipt := uuid.New().String()

		if err := q.rdb.HSet(ctx, processingKey(queueUrl), receipt, body).Err(); err != nil {
			return nil, fmt.Errorf("failed to park message for processing: %s", err)
		}

		items = append(items, types.Message{
			Id:            uuid.New().String(),
			Body:          body,
			ReceiptHandle: receipt,
			ReceivedAt:    time.Now(),
		})
	}

	return items, nil
}

// DeleteMessage acknowledges a received message by dropping it from the
// processing hash.
func (q *RedisClient) DeleteMessage(ctx context.Context, queueUrl string, receiptHandle string) error {

	if err := q.rdb.HDel(ctx, processingKey(queueUrl), receiptHandle).Err(); err != nil {
		return fmt.Errorf("failed to delete message: %s", err)
	}

	return nil
}

// ChangeMessageVisibility with a zero timeout moves the message back onto the
// queue for immediate redelivery. Non-zero timeouts are not emulated.
func (q *RedisClient) ChangeMessageVisibility(ctx context.Context, queueUrl string, receiptHandle string, timeoutSeconds int) error {

	if timeoutSeconds != 0 {
		return nil
	}

	body, err := q.rdb.HGet(ctx, processingKey(queueUrl), receiptHandle).Result()

	if err == redis.Nil {
		return nil
	} else if err != nil {
		return fmt.Errorf("failed to look up message %s: %s", receiptHandle, err)
	}

	pipe := q.rdb.TxPipeline()
	pipe.HDel(ctx, processingKey(queueUrl), receiptHandle)
	pipe.LPush(ctx, queueUrl, body)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to requeue message %s: %s", receiptHandle, err)
	}

	return nil
}

func getSendOptions(options []types.SendOptions) types.SendOptions {
	if len(options) == 0 {
		return types.SendOptions{}
	}
	return options[0]
}

// SendMessage pushes the body onto the queue list. Delay, group ids and
// deduplication ids are accepted but not emulated.
func (q *RedisClient) SendMessage(ctx context.Context, queueUrl string, body string, options ...types.SendOptions) (string, error) {
	_ = getSendOptions(options)

	if err := q.rdb.LPush(ctx, queueUrl, body).Err(); err != nil {
		return "", fmt.Errorf("failed to push to the queue: %s", err)
	}

	return uuid.New().String(), nil
}

// PurgeQueue drops the queue list and its processing hash.
func (q *RedisClient) PurgeQueue(ctx context.Context, queueUrl string) error {

	if err := q.rdb.Del(ctx, queueUrl, processingKey(queueUrl)).Err(); err != nil {
		return fmt.Errorf("failed to purge queue: %s", err)
	}

	return nil
}

// Count returns the number of messages waiting on the queue.
func (q *RedisClient) Count(ctx context.Context, queueUrl string) (int, error) {
	count := q.rdb.LLen(ctx, queueUrl).Val()
	return int(count), nil
}
