package store

import (
	"context"

	"github.com/BarkinBalci/socials-sync-service/internal/domain"
)

// Version is a per-document revision; every committed write bumps it
type Version uint64

// Patch carries the fields a conditional update replaces
type Patch struct {
	UsersLiked []string
}

// RawChange is one undecoded change as delivered by a change feed. Data is nil for removals.
type RawChange struct {
	Kind domain.ChangeKind
	ID   string
	Data []byte
}

// RawBatch is the set of changes delivered by one change-feed notification
type RawBatch []RawChange

// DocumentStore defines the remote document operations used by the mutation path
type DocumentStore interface {
	// GetDocument reads a social together with its current version
	GetDocument(ctx context.Context, collection, id string) (*domain.Social, Version, error)

	// ConditionalUpdate applies the patch only if the stored version equals expected.
	// It returns domain.ErrVersionConflict when a concurrent writer won and domain.ErrNotFound when absent.
	ConditionalUpdate(ctx context.Context, collection, id string, patch Patch, expected Version) (Version, error)

	// DeleteDocument removes a social, returning domain.ErrNotFound when absent
	DeleteDocument(ctx context.Context, collection, id string) error

	// CreateDocument writes a full new social and returns the id the store assigned
	CreateDocument(ctx context.Context, collection string, social *domain.Social) (string, Version, error)

	// Ping checks if the store is reachable
	Ping(ctx context.Context) error

	// Close releases resources
	Close() error
}

// ChangeFeed opens live subscriptions to a collection
type ChangeFeed interface {
	// SubscribeCollection opens one upstream subscription. The first batch holds every
	// existing document as added, in subscription order.
	SubscribeCollection(ctx context.Context, collection, orderKey string, direction domain.Direction) (Subscription, error)
}

// Subscription is a single open change-feed subscription
type Subscription interface {
	// Batches is closed when the subscription ends
	Batches() <-chan RawBatch

	// Err reports why Batches was closed; nil after a regular Close
	Err() error

	// Close releases the subscription. It is safe to call more than once.
	Close()
}

// Backend is a store offering both the document and the change-feed side
type Backend interface {
	DocumentStore
	ChangeFeed
}
