package feed

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/BarkinBalci/socials-sync-service/internal/domain"
	"github.com/BarkinBalci/socials-sync-service/internal/store"
)

// Feed opens materialized subscriptions on one collection
type Feed struct {
	changes    store.ChangeFeed
	collection string
	parser     RecordParser
	log        *zap.Logger
}

// NewFeed creates a feed over the given change feed
func NewFeed(changes store.ChangeFeed, collection string, parser RecordParser, log *zap.Logger) *Feed {
	return &Feed{
		changes:    changes,
		collection: collection,
		parser:     parser,
		log:        log,
	}
}

// Subscribe opens exactly one upstream subscription and starts the
// receiver -> parser -> materializer pipeline for it
func (f *Feed) Subscribe(ctx context.Context, orderKey string, direction domain.Direction) (*Subscription, error) {
	pipelineCtx, cancel := context.WithCancel(ctx)

	upstream, err := f.changes.SubscribeCollection(pipelineCtx, f.collection, orderKey, direction)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to subscribe to %s: %w", f.collection, err)
	}

	log := f.log.With(
		zap.String("collection", f.collection),
		zap.String("direction", string(direction)))

	receiver := NewReceiver(upstream, f.collection, log)
	parser := NewParserStage(f.parser, log)
	materializer := NewMaterializer(direction, log)

	rawChan := make(chan inbound)
	parsedChan := make(chan parsed)
	updateChan := make(chan Update)

	go receiver.Start(pipelineCtx, rawChan)
	go parser.Start(pipelineCtx, rawChan, parsedChan)
	go materializer.Start(pipelineCtx, parsedChan, updateChan)

	sub := newSubscription(upstream, cancel)
	go sub.pump(updateChan)

	log.Info("Feed subscription started")
	return sub, nil
}
