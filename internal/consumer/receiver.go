package consumer

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awssqs "github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"go.uber.org/zap"

	"github.com/BarkinBalci/socials-sync-service/internal/queue"
)

type ReceiverConfig struct {
	MaxMessages     int32
	WaitTimeSeconds int32
	// ErrorDelay is the pause after a failed receive
	ErrorDelay time.Duration
}

// Receiver long-polls the activity queue
type Receiver struct {
	consumer queue.QueueConsumer
	config   ReceiverConfig
	log      *zap.Logger
}

func NewReceiver(consumer queue.QueueConsumer, config ReceiverConfig, log *zap.Logger) *Receiver {
	if config.ErrorDelay <= 0 {
		config.ErrorDelay = time.Second
	}
	return &Receiver{
		consumer: consumer,
		config:   config,
		log:      log,
	}
}

// Start forwards received messages to out until ctx is done, then closes out
func (r *Receiver) Start(ctx context.Context, out chan<- types.Message) {
	defer close(out)

	for ctx.Err() == nil {
		result, err := r.consumer.ReceiveMessages(ctx, &awssqs.ReceiveMessageInput{
			QueueUrl:              aws.String(r.consumer.QueueURL()),
			MaxNumberOfMessages:   r.config.MaxMessages,
			WaitTimeSeconds:       r.config.WaitTimeSeconds,
			MessageAttributeNames: []string{"All"},
		})
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			receiveErrors.Inc()
			r.log.Error("Failed to receive activity messages",
				zap.Duration("retry_in", r.config.ErrorDelay),
				zap.Error(err))
			select {
			case <-ctx.Done():
			case <-time.After(r.config.ErrorDelay):
			}
			continue
		}

		if len(result.Messages) == 0 {
			continue
		}

		r.log.Debug("Received activity messages", zap.Int("message_count", len(result.Messages)))

		for _, msg := range result.Messages {
			select {
			case <-ctx.Done():
				r.log.Info("Receiver stopped with undelivered messages")
				return
			case out <- msg:
			}
		}
	}

	r.log.Info("Receiver stopped")
}
