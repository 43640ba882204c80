package feed

import (
	"encoding/json"
	"fmt"

	"github.com/BarkinBalci/socials-sync-service/internal/domain"
	"github.com/BarkinBalci/socials-sync-service/internal/store"
)

// RecordParser decodes raw change-feed documents into socials
type RecordParser interface {
	Parse(data []byte) (*domain.Social, error)
}

// JSONRecordParser implements RecordParser for JSON documents
type JSONRecordParser struct{}

// NewJSONRecordParser creates a new JSON record parser
func NewJSONRecordParser() *JSONRecordParser {
	return &JSONRecordParser{}
}

// Parse parses a JSON document into a Social
func (p *JSONRecordParser) Parse(data []byte) (*domain.Social, error) {
	var social domain.Social
	if err := json.Unmarshal(data, &social); err != nil {
		return nil, fmt.Errorf("failed to unmarshal social: %w", err)
	}
	if social.UsersLiked == nil {
		social.UsersLiked = []string{}
	}
	return &social, nil
}

// decodeBatch decodes every change of a raw batch; any failure rejects the whole batch
func decodeBatch(parser RecordParser, raw store.RawBatch) (domain.ChangeBatch, error) {
	batch := make(domain.ChangeBatch, 0, len(raw))
	for _, rc := range raw {
		change := domain.Change{Kind: rc.Kind, ID: rc.ID}
		if rc.Data != nil && rc.Kind != domain.ChangeRemoved {
			social, err := parser.Parse(rc.Data)
			if err != nil {
				return nil, &domain.ApplyFailure{ChangeID: rc.ID, Err: err}
			}
			change.Social = social
		}
		batch = append(batch, change)
	}
	return batch, nil
}
