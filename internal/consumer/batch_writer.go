package consumer

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/BarkinBalci/socials-sync-service/internal/domain"
	"github.com/BarkinBalci/socials-sync-service/internal/repository"
)

// defaultFlushTimeout replaces a non-positive FlushTimeout, which time.NewTicker rejects
const defaultFlushTimeout = 10 * time.Second

type BatchWriterConfig struct {
	MaxBatchSize int
	FlushTimeout time.Duration
}

// BatchWriter collects envelopes and writes them to the activity repository when the
// batch is full or the flush timeout passes
type BatchWriter struct {
	repository repository.ActivityRepository
	config     BatchWriterConfig
	log        *zap.Logger
}

func NewBatchWriter(repo repository.ActivityRepository, config BatchWriterConfig, log *zap.Logger) *BatchWriter {
	if config.MaxBatchSize < 1 {
		config.MaxBatchSize = 1
	}
	if config.FlushTimeout <= 0 {
		config.FlushTimeout = defaultFlushTimeout
	}
	return &BatchWriter{
		repository: repo,
		config:     config,
		log:        log,
	}
}

func (w *BatchWriter) Start(ctx context.Context, in <-chan *Envelope) {
	ticker := time.NewTicker(w.config.FlushTimeout)
	defer ticker.Stop()

	batch := make([]*Envelope, 0, w.config.MaxBatchSize)
	flush := func(ctx context.Context) {
		if len(batch) == 0 {
			return
		}
		w.write(ctx, batch)
		batch = make([]*Envelope, 0, w.config.MaxBatchSize)
	}

	for {
		select {
		case <-ctx.Done():
			// the pipeline context is gone; the last flush gets its own
			final, cancel := context.WithTimeout(context.WithoutCancel(ctx), w.config.FlushTimeout)
			flush(final)
			cancel()
			return

		case envelope, ok := <-in:
			if !ok {
				flush(ctx)
				return
			}

			batch = append(batch, envelope)
			if len(batch) >= w.config.MaxBatchSize {
				flush(ctx)
				ticker.Reset(w.config.FlushTimeout)
			}

		case <-ticker.C:
			flush(ctx)
		}
	}
}

// write inserts the batch and acknowledges its messages only when every activity landed
func (w *BatchWriter) write(ctx context.Context, envelopes []*Envelope) {
	activities := make([]*domain.Activity, len(envelopes))
	for i, env := range envelopes {
		activities[i] = env.Activity
	}

	inserted, err := w.repository.InsertBatch(ctx, activities)
	if err != nil || inserted != len(activities) {
		insertFailures.Inc()
		w.log.Error("Failed to insert activity batch",
			zap.Int("inserted", inserted),
			zap.Int("expected", len(activities)),
			zap.Error(err))
		return
	}

	activitiesIngested.Add(float64(inserted))
	w.log.Info("Inserted activity batch", zap.Int("count", inserted))

	for _, env := range envelopes {
		if err := env.Ack(ctx); err != nil {
			w.log.Error("Failed to ack activity message",
				zap.String("activity_id", env.Activity.ActivityID),
				zap.Error(err))
		}
	}
}
