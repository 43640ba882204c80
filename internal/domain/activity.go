package domain

import "time"

// ActivityKind describes a committed mutation
type ActivityKind string

const (
	ActivityInterestAdded   ActivityKind = "interest_added"
	ActivityInterestRemoved ActivityKind = "interest_removed"
	ActivitySocialDeleted   ActivityKind = "social_deleted"
)

// Activity is an audit record of a committed mutation, stored in ClickHouse
type Activity struct {
	ActivityID string       `json:"activity_id" ch:"activity_id"`
	Kind       ActivityKind `json:"kind" ch:"kind"`
	SocialID   string       `json:"social_id" ch:"social_id"`
	UserID     string       `json:"user_id" ch:"user_id"`
	Attempts   int          `json:"attempts" ch:"attempts"`
	OccurredAt time.Time    `json:"occurred_at" ch:"occurred_at"`
}
