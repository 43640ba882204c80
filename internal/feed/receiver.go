package feed

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/BarkinBalci/socials-sync-service/internal/domain"
	"github.com/BarkinBalci/socials-sync-service/internal/store"
)

// inbound is one upstream batch, or the error that ended the upstream subscription
type inbound struct {
	batch store.RawBatch
	err   error
}

// Receiver forwards batches from one upstream subscription into the pipeline
type Receiver struct {
	upstream   store.Subscription
	collection string
	log        *zap.Logger
}

// NewReceiver creates a receiver that owns the given upstream subscription
func NewReceiver(upstream store.Subscription, collection string, log *zap.Logger) *Receiver {
	return &Receiver{
		upstream:   upstream,
		collection: collection,
		log:        log,
	}
}

// Start forwards batches until ctx is done or the upstream ends. An abnormal end is
// forwarded as a SyncFailure before out is closed.
func (r *Receiver) Start(ctx context.Context, out chan<- inbound) {
	defer close(out)
	defer r.upstream.Close()

	for {
		select {
		case <-ctx.Done():
			r.log.Debug("Receiver shutting down")
			return
		case batch, ok := <-r.upstream.Batches():
			if !ok {
				err := r.upstream.Err()
				if err == nil {
					r.log.Info("Upstream subscription closed")
					return
				}
				var syncErr *domain.SyncFailure
				if !errors.As(err, &syncErr) {
					err = &domain.SyncFailure{Collection: r.collection, Err: err}
				}
				r.log.Error("Upstream subscription failed", zap.Error(err))
				select {
				case <-ctx.Done():
				case out <- inbound{err: err}:
				}
				return
			}

			select {
			case <-ctx.Done():
				return
			case out <- inbound{batch: batch}:
			}
		}
	}
}
