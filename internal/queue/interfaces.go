package queue

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/sqs"

	"github.com/BarkinBalci/socials-sync-service/internal/domain"
)

// ActivityPublisher hands committed-mutation activities to the queue
type ActivityPublisher interface {
	PublishActivity(ctx context.Context, activity *domain.Activity) error
}

// QueueConsumer defines the interface for consuming activity messages from a queue
type QueueConsumer interface {
	ReceiveMessages(ctx context.Context, input *sqs.ReceiveMessageInput) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, input *sqs.DeleteMessageInput) (*sqs.DeleteMessageOutput, error)
	QueueURL() string
}
