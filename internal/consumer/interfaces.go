package consumer

import (
	"github.com/BarkinBalci/socials-sync-service/internal/domain"
)

// MessageParser turns a raw queue message body into an activity
type MessageParser interface {
	Parse(body []byte) (*domain.Activity, error)
}
