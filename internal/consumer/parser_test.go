package consumer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BarkinBalci/socials-sync-service/internal/domain"
)

func TestJSONActivityParser_Parse(t *testing.T) {
	parser := NewJSONActivityParser()

	activity, err := parser.Parse([]byte(activityBody("a-1")))
	require.NoError(t, err)
	assert.Equal(t, testActivity("a-1"), activity)
}

func TestJSONActivityParser_Rejects(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", `{"activity_id": `},
		{"missing id", `{"kind":"interest_added","social_id":"s","occurred_at":"2026-03-01T12:00:00Z"}`},
		{"missing social", `{"activity_id":"a","kind":"interest_added","occurred_at":"2026-03-01T12:00:00Z"}`},
		{"missing time", `{"activity_id":"a","kind":"interest_added","social_id":"s"}`},
		{"unknown kind", `{"activity_id":"a","kind":"shared","social_id":"s","occurred_at":"2026-03-01T12:00:00Z"}`},
	}

	parser := NewJSONActivityParser()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			activity, err := parser.Parse([]byte(tt.body))
			assert.Error(t, err)
			assert.Nil(t, activity)
		})
	}
}

func TestJSONActivityParser_AcceptsEveryKind(t *testing.T) {
	parser := NewJSONActivityParser()
	for _, kind := range []domain.ActivityKind{domain.ActivityInterestAdded, domain.ActivityInterestRemoved, domain.ActivitySocialDeleted} {
		body := `{"activity_id":"a","kind":"` + string(kind) + `","social_id":"s","occurred_at":"2026-03-01T12:00:00Z"}`
		activity, err := parser.Parse([]byte(body))
		require.NoError(t, err, kind)
		assert.Equal(t, kind, activity.Kind)
	}
}
