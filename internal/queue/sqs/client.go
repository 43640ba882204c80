package sqs

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"go.uber.org/zap"

	envConfig "github.com/BarkinBalci/socials-sync-service/internal/config"
	"github.com/BarkinBalci/socials-sync-service/internal/domain"
	"github.com/BarkinBalci/socials-sync-service/internal/queue"
)

// API is the subset of the SQS client used by Client
type API interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

// Client publishes and consumes activity messages
type Client struct {
	api      API
	queueURL string
	log      *zap.Logger
}

// NewClient builds an SQS client from the environment; a non-empty endpoint switches to
// static credentials for a local ElasticMQ
func NewClient(ctx context.Context, cfg envConfig.SQS, log *zap.Logger) (*Client, error) {
	loadOpts := []func(*config.LoadOptions) error{
		config.WithRegion(cfg.Region),
	}

	var clientOpts []func(*sqs.Options)

	if cfg.Endpoint != "" {
		log.Info("Using local SQS endpoint",
			zap.String("endpoint", cfg.Endpoint))
		loadOpts = append(loadOpts,
			config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider("local", "local", "")))

		clientOpts = append(clientOpts, func(o *sqs.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		})
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	log.Info("Activity queue configured",
		zap.String("region", cfg.Region),
		zap.String("queue_url", cfg.QueueURL))

	return NewClientWithAPI(sqs.NewFromConfig(awsCfg, clientOpts...), cfg.QueueURL, log), nil
}

// NewClientWithAPI wraps an existing SQS API implementation
func NewClientWithAPI(api API, queueURL string, log *zap.Logger) *Client {
	return &Client{
		api:      api,
		queueURL: queueURL,
		log:      log,
	}
}

// ReceiveMessages long-polls the queue
func (c *Client) ReceiveMessages(ctx context.Context, input *sqs.ReceiveMessageInput) (*sqs.ReceiveMessageOutput, error) {
	return c.api.ReceiveMessage(ctx, input)
}

// DeleteMessage acknowledges a message
func (c *Client) DeleteMessage(ctx context.Context, input *sqs.DeleteMessageInput) (*sqs.DeleteMessageOutput, error) {
	return c.api.DeleteMessage(ctx, input)
}

func (c *Client) QueueURL() string {
	return c.queueURL
}

// PublishActivity sends one activity as a JSON message; kind and social id are duplicated
// into message attributes so queue-side filters need not parse the body
func (c *Client) PublishActivity(ctx context.Context, activity *domain.Activity) error {
	body, err := json.Marshal(activity)
	if err != nil {
		return fmt.Errorf("failed to marshal activity: %w", err)
	}

	_, err = c.api.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(c.queueURL),
		MessageBody: aws.String(string(body)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"Kind": {
				DataType:    aws.String("String"),
				StringValue: aws.String(string(activity.Kind)),
			},
			"SocialID": {
				DataType:    aws.String("String"),
				StringValue: aws.String(activity.SocialID),
			},
		},
	})
	if err != nil {
		c.log.Error("Failed to send activity",
			zap.String("activity_id", activity.ActivityID),
			zap.String("kind", string(activity.Kind)),
			zap.Error(err))
		return fmt.Errorf("failed to send activity to SQS: %w", err)
	}

	c.log.Debug("Activity published",
		zap.String("activity_id", activity.ActivityID),
		zap.String("social_id", activity.SocialID))

	return nil
}

var (
	_ queue.ActivityPublisher = (*Client)(nil)
	_ queue.QueueConsumer     = (*Client)(nil)
)
