package sqlite

import (
	"time"

	"github.com/BarkinBalci/socials-sync-service/internal/domain"
	"github.com/BarkinBalci/socials-sync-service/internal/store"
)

// socialDocument is the persisted row of one social
type socialDocument struct {
	Collection       string `gorm:"primaryKey;type:text"`
	ID               string `gorm:"primaryKey;type:text"`
	EventDate        int64  `gorm:"index;not null"`
	EventName        string
	EventDescription string
	EventLocation    string
	EventImage       string
	Owner            string `gorm:"not null"`
	UsersLiked       string `gorm:"type:text;not null"`
	Version          uint64 `gorm:"not null"`
	CreatedAt        time.Time
}

func (socialDocument) TableName() string {
	return "social_documents"
}

func (d *socialDocument) toSocial() (*domain.Social, error) {
	users, err := store.DecodeUsers([]byte(d.UsersLiked))
	if err != nil {
		return nil, err
	}
	return &domain.Social{
		ID:               d.ID,
		EventDate:        d.EventDate,
		EventName:        d.EventName,
		EventDescription: d.EventDescription,
		EventLocation:    d.EventLocation,
		EventImage:       d.EventImage,
		Owner:            d.Owner,
		UsersLiked:       users,
	}, nil
}

func (d *socialDocument) rawChange(kind domain.ChangeKind) (store.RawChange, error) {
	social, err := d.toSocial()
	if err != nil {
		return store.RawChange{}, err
	}
	data, err := store.EncodeSocial(social)
	if err != nil {
		return store.RawChange{}, err
	}
	return store.RawChange{Kind: kind, ID: d.ID, Data: data}, nil
}
