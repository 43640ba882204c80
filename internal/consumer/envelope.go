package consumer

import (
	"context"

	"github.com/BarkinBalci/socials-sync-service/internal/domain"
)

// Envelope carries an activity together with the acknowledgement of its queue message
type Envelope struct {
	Activity *domain.Activity
	ack      func(context.Context) error
}

func NewEnvelope(activity *domain.Activity, ack func(context.Context) error) *Envelope {
	return &Envelope{
		Activity: activity,
		ack:      ack,
	}
}

// Ack removes the message from the queue. Unacknowledged messages reappear after
// their visibility timeout.
func (e *Envelope) Ack(ctx context.Context) error {
	if e.ack == nil {
		return nil
	}
	return e.ack(ctx)
}
