package consumer

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/stretchr/testify/mock"

	"github.com/BarkinBalci/socials-sync-service/internal/domain"
	"github.com/BarkinBalci/socials-sync-service/internal/repository"
)

const testQueueURL = "https://sqs.eu-central-1.amazonaws.com/123/socials-activity"

var testOccurredAt = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// MockQueueConsumer is a mock implementation of queue.QueueConsumer
type MockQueueConsumer struct {
	mock.Mock
}

func (m *MockQueueConsumer) ReceiveMessages(ctx context.Context, input *sqs.ReceiveMessageInput) (*sqs.ReceiveMessageOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sqs.ReceiveMessageOutput), args.Error(1)
}

func (m *MockQueueConsumer) DeleteMessage(ctx context.Context, input *sqs.DeleteMessageInput) (*sqs.DeleteMessageOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sqs.DeleteMessageOutput), args.Error(1)
}

func (m *MockQueueConsumer) QueueURL() string {
	args := m.Called()
	return args.String(0)
}

// MockActivityRepository is a mock implementation of repository.ActivityRepository
type MockActivityRepository struct {
	mock.Mock
}

func (m *MockActivityRepository) InsertBatch(ctx context.Context, activities []*domain.Activity) (int, error) {
	args := m.Called(ctx, activities)
	return args.Int(0), args.Error(1)
}

func (m *MockActivityRepository) InitSchema(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockActivityRepository) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockActivityRepository) Close() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockActivityRepository) InterestCounts(ctx context.Context, socialID string) (*repository.InterestCounts, error) {
	args := m.Called(ctx, socialID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.InterestCounts), args.Error(1)
}

func testActivity(id string) *domain.Activity {
	return &domain.Activity{
		ActivityID: id,
		Kind:       domain.ActivityInterestAdded,
		SocialID:   "social-1",
		UserID:     "bob@example.com",
		Attempts:   1,
		OccurredAt: testOccurredAt,
	}
}

func activityBody(id string) string {
	return `{"activity_id":"` + id + `","kind":"interest_added","social_id":"social-1","user_id":"bob@example.com","attempts":1,"occurred_at":"2026-03-01T12:00:00Z"}`
}
