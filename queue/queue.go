package queue

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/calexandrepcjr/go-sqs/queue/redis"
	"github.com/calexandrepcjr/go-sqs/queue/sqs"
	"github.com/calexandrepcjr/go-sqs/queue/types"
	"github.com/calexandrepcjr/go-sqs/utils"
)

// Client is the narrow queue-service surface the runtime depends on. Drivers
// live in the sqs and redis subpackages; tests supply in-memory fakes.
type Client interface {
	ReceiveMessages(ctx context.Context, queueUrl string, options ...types.ReceiveOptions) ([]types.Message, error)
	DeleteMessage(ctx context.Context, queueUrl string, receiptHandle string) error
	ChangeMessageVisibility(ctx context.Context, queueUrl string, receiptHandle string, timeoutSeconds int) error
	SendMessage(ctx context.Context, queueUrl string, body string, options ...types.SendOptions) (string, error)
	PurgeQueue(ctx context.Context, queueUrl string) error
	Count(ctx context.Context, queueUrl string) (int, error)
}

type Driver string

const (
	DriverRedis Driver = "redis"
	DriverSQS   Driver = "sqs"
)

type ClientConfig struct {
	Driver   Driver
	Region   string
	Endpoint string
	RedisDb  *int
}

// NewClient builds a queue client for the configured driver. With no config
// the driver is taken from the QUEUE_DRIVER environment variable.
func NewClient(config ...ClientConfig) (Client, error) {

	cfg := ClientConfig{}

	if len(config) > 0 {
		cfg = config[0]
	}

	if cfg.Driver == "" {
		cfg.Driver = Driver(os.Getenv("QUEUE_DRIVER"))
	}

	if cfg.Region == "" {
		cfg.Region = utils.StringOrDefault(os.Getenv("AWS_REGION"), "af-south-1")
	}

	switch cfg.Driver {
	case DriverRedis:
		redisDb := 4 //queue db
		if cfg.RedisDb != nil {
			redisDb = *cfg.RedisDb
		}
		return redis.New(redisDb), nil
	case DriverSQS:
		client, err := sqs.New(sqs.Config{
			Region:   cfg.Region,
			Endpoint: cfg.Endpoint,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create sqs client: %s", err)
		}
		return client, nil
	default:
		return nil, fmt.Errorf("no valid queue driver specified")
	}
}

// isFifoQueue reports whether the queue requires group ids and preserves
// per-group ordering. SQS encodes this in the queue name suffix.
func isFifoQueue(queueUrl string) bool {
	return strings.HasSuffix(queueUrl, ".fifo")
}
