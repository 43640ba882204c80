package consumer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestParserStage_Start_WrapsActivity(t *testing.T) {
	mockConsumer := new(MockQueueConsumer)
	stage := NewParserStage(mockConsumer, NewJSONActivityParser(), zap.NewNop())

	mockConsumer.On("QueueURL").Return(testQueueURL)
	mockConsumer.On("DeleteMessage", mock.Anything, mock.MatchedBy(func(in *sqs.DeleteMessageInput) bool {
		return aws.ToString(in.ReceiptHandle) == "receipt-1"
	})).Return(&sqs.DeleteMessageOutput{}, nil).Once()

	in := make(chan types.Message, 1)
	out := make(chan *Envelope, 1)
	go stage.Start(context.Background(), in, out)

	in <- types.Message{
		MessageId:     aws.String("msg-1"),
		Body:          aws.String(activityBody("a-1")),
		ReceiptHandle: aws.String("receipt-1"),
	}
	close(in)

	envelope, ok := <-out
	require.True(t, ok)
	assert.Equal(t, "a-1", envelope.Activity.ActivityID)

	// acknowledgement is deferred to the writer
	mockConsumer.AssertNotCalled(t, "DeleteMessage", mock.Anything, mock.Anything)
	require.NoError(t, envelope.Ack(context.Background()))
	mockConsumer.AssertExpectations(t)

	_, ok = <-out
	assert.False(t, ok)
}

func TestParserStage_Start_DeletesMalformed(t *testing.T) {
	mockConsumer := new(MockQueueConsumer)
	stage := NewParserStage(mockConsumer, NewJSONActivityParser(), zap.NewNop())

	mockConsumer.On("QueueURL").Return(testQueueURL)
	mockConsumer.On("DeleteMessage", mock.Anything, mock.Anything).
		Return(nil, errors.New("delete failed")).Once()

	in := make(chan types.Message, 2)
	out := make(chan *Envelope, 2)

	in <- types.Message{MessageId: aws.String("bad"), Body: aws.String(`not json`), ReceiptHandle: aws.String("r-bad")}
	in <- types.Message{MessageId: aws.String("good"), Body: aws.String(activityBody("a-2")), ReceiptHandle: aws.String("r-good")}
	close(in)

	stage.Start(context.Background(), in, out)

	var envelopes []*Envelope
	for env := range out {
		envelopes = append(envelopes, env)
	}

	require.Len(t, envelopes, 1)
	assert.Equal(t, "a-2", envelopes[0].Activity.ActivityID)
	mockConsumer.AssertNumberOfCalls(t, "DeleteMessage", 1)
}

func TestParserStage_Start_StopsOnCancel(t *testing.T) {
	stage := NewParserStage(new(MockQueueConsumer), NewJSONActivityParser(), zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	in := make(chan types.Message)
	out := make(chan *Envelope)

	done := make(chan struct{})
	go func() {
		stage.Start(ctx, in, out)
		close(done)
	}()

	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("parser stage did not stop")
	}
	_, ok := <-out
	assert.False(t, ok)
}
