package service

import (
	"context"

	"github.com/BarkinBalci/socials-sync-service/internal/domain"
	"github.com/BarkinBalci/socials-sync-service/internal/dto"
	"github.com/BarkinBalci/socials-sync-service/internal/feed"
	"github.com/BarkinBalci/socials-sync-service/internal/mutation"
	"github.com/BarkinBalci/socials-sync-service/internal/store"
)

// SocialServicer defines the operations offered to the presentation layer
type SocialServicer interface {
	OpenFeed(ctx context.Context) (*feed.Subscription, error)
	CurrentSnapshot(ctx context.Context) (*feed.Snapshot, error)
	ToggleInterest(ctx context.Context, recordID string) (*dto.ToggleInterestResponse, error)
	DeleteRecord(ctx context.Context, recordID string) error
	CreateSocial(ctx context.Context, req *dto.CreateSocialRequest) (*dto.CreateSocialResponse, error)
}

// Subscriber opens materialized views of the collection
type Subscriber interface {
	Subscribe(ctx context.Context, orderKey string, direction domain.Direction) (*feed.Subscription, error)
}

// Mutator performs mutations on behalf of an explicit user
type Mutator interface {
	ToggleInterest(ctx context.Context, recordID, userID string) (mutation.ToggleResult, error)
	DeleteRecord(ctx context.Context, recordID, userID string) error
}

// Creator writes new socials
type Creator interface {
	CreateDocument(ctx context.Context, collection string, social *domain.Social) (string, store.Version, error)
}
