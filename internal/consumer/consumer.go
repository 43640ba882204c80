package consumer

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/BarkinBalci/socials-sync-service/internal/config"
	"github.com/BarkinBalci/socials-sync-service/internal/queue"
	"github.com/BarkinBalci/socials-sync-service/internal/repository"
)

const stageBuffer = 100

// Consumer runs the activity ingestion pipeline: receiver -> parser -> batch writer
type Consumer struct {
	receiver    *Receiver
	parser      *ParserStage
	batchWriter *BatchWriter
}

func NewConsumer(cfg config.Consumer, queueConsumer queue.QueueConsumer, repo repository.ActivityRepository, log *zap.Logger) *Consumer {
	return &Consumer{
		receiver: NewReceiver(queueConsumer, ReceiverConfig{
			MaxMessages:     10,
			WaitTimeSeconds: 20,
		}, log),
		parser: NewParserStage(queueConsumer, NewJSONActivityParser(), log),
		batchWriter: NewBatchWriter(repo, BatchWriterConfig{
			MaxBatchSize: cfg.BatchSizeMax,
			FlushTimeout: time.Duration(cfg.BatchTimeoutSec) * time.Second,
		}, log),
	}
}

// Start blocks until ctx is done and every stage has drained
func (c *Consumer) Start(ctx context.Context) error {
	messages := make(chan types.Message, stageBuffer)
	envelopes := make(chan *Envelope, stageBuffer)

	var g errgroup.Group

	g.Go(func() error {
		c.receiver.Start(ctx, messages)
		return nil
	})
	g.Go(func() error {
		c.parser.Start(ctx, messages, envelopes)
		return nil
	})
	g.Go(func() error {
		c.batchWriter.Start(ctx, envelopes)
		return nil
	})

	return g.Wait()
}
