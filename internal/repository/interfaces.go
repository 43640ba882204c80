package repository

import (
	"context"

	"github.com/BarkinBalci/socials-sync-service/internal/domain"
)

// InterestCounts aggregates the interest activity recorded for one social
type InterestCounts struct {
	SocialID    string
	Added       uint64
	Removed     uint64
	UniqueUsers uint64
}

// Net is the interest balance implied by the recorded activity
func (c InterestCounts) Net() int64 {
	return int64(c.Added) - int64(c.Removed)
}

// ActivityRepository stores mutation activities for analytics
type ActivityRepository interface {
	// InsertBatch stores the activities and returns how many were written
	InsertBatch(ctx context.Context, activities []*domain.Activity) (int, error)

	// InitSchema creates the activity table if it does not exist
	InitSchema(ctx context.Context) error

	Ping(ctx context.Context) error

	Close() error

	// InterestCounts aggregates interest activity for one social
	InterestCounts(ctx context.Context, socialID string) (*InterestCounts, error)
}
