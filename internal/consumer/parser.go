package consumer

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/BarkinBalci/socials-sync-service/internal/domain"
)

var errIncompleteActivity = errors.New("incomplete activity")

// JSONActivityParser decodes activities published by the mutation coordinator
type JSONActivityParser struct{}

func NewJSONActivityParser() *JSONActivityParser {
	return &JSONActivityParser{}
}

func (p *JSONActivityParser) Parse(body []byte) (*domain.Activity, error) {
	var activity domain.Activity
	if err := json.Unmarshal(body, &activity); err != nil {
		return nil, fmt.Errorf("failed to unmarshal activity: %w", err)
	}

	switch {
	case activity.ActivityID == "":
		return nil, fmt.Errorf("%w: missing activity_id", errIncompleteActivity)
	case activity.SocialID == "":
		return nil, fmt.Errorf("%w: missing social_id", errIncompleteActivity)
	case activity.OccurredAt.IsZero():
		return nil, fmt.Errorf("%w: missing occurred_at", errIncompleteActivity)
	}

	switch activity.Kind {
	case domain.ActivityInterestAdded, domain.ActivityInterestRemoved, domain.ActivitySocialDeleted:
	default:
		return nil, fmt.Errorf("%w: unknown kind %q", errIncompleteActivity, activity.Kind)
	}

	return &activity, nil
}
