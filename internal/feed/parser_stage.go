package feed

import (
	"context"

	"go.uber.org/zap"

	"github.com/BarkinBalci/socials-sync-service/internal/domain"
)

// parsed is a decoded batch or the error the batch (or the upstream) produced
type parsed struct {
	batch domain.ChangeBatch
	err   error
}

// ParserStage decodes raw batches into change batches
type ParserStage struct {
	parser RecordParser
	log    *zap.Logger
}

// NewParserStage creates a new parser stage
func NewParserStage(parser RecordParser, log *zap.Logger) *ParserStage {
	return &ParserStage{
		parser: parser,
		log:    log,
	}
}

// Start decodes batches in arrival order
func (p *ParserStage) Start(ctx context.Context, in <-chan inbound, out chan<- parsed) {
	defer close(out)

	for {
		select {
		case <-ctx.Done():
			p.log.Debug("Parser stage shutting down")
			return
		case msg, ok := <-in:
			if !ok {
				return
			}

			result := parsed{err: msg.err}
			if msg.err == nil {
				batch, err := decodeBatch(p.parser, msg.batch)
				if err != nil {
					p.log.Warn("Failed to decode batch",
						zap.Int("change_count", len(msg.batch)),
						zap.Error(err))
				}
				result = parsed{batch: batch, err: err}
			}

			select {
			case <-ctx.Done():
				return
			case out <- result:
			}
		}
	}
}
