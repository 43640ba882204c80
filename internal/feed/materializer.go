package feed

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/BarkinBalci/socials-sync-service/internal/domain"
)

// Materializer applies decoded batches to a View, one update per batch
type Materializer struct {
	view *View
	log  *zap.Logger
}

// NewMaterializer creates a materializer over an empty view
func NewMaterializer(direction domain.Direction, log *zap.Logger) *Materializer {
	return &Materializer{
		view: NewView(direction),
		log:  log,
	}
}

// Start applies batches strictly in order. A SyncFailure is emitted with the last
// good snapshot and ends the stage.
func (m *Materializer) Start(ctx context.Context, in <-chan parsed, out chan<- Update) {
	defer close(out)

	for {
		select {
		case <-ctx.Done():
			m.log.Debug("Materializer shutting down")
			return
		case msg, ok := <-in:
			if !ok {
				return
			}

			update, terminal := m.apply(msg)

			select {
			case <-ctx.Done():
				return
			case out <- update:
			}

			if terminal {
				return
			}
		}
	}
}

func (m *Materializer) apply(msg parsed) (Update, bool) {
	if msg.err != nil {
		var syncErr *domain.SyncFailure
		if errors.As(msg.err, &syncErr) {
			return Update{Snapshot: m.view.Snapshot(), Err: msg.err}, true
		}
		applyFailures.Inc()
		return Update{Snapshot: m.view.Snapshot(), Err: msg.err}, false
	}

	snapshot, err := m.view.Apply(msg.batch)
	if err != nil {
		applyFailures.Inc()
		m.log.Warn("Rejected change batch", zap.Error(err))
		return Update{Snapshot: snapshot, Err: err}, false
	}

	batchesApplied.Inc()
	return Update{Snapshot: snapshot}, false
}
