package consumer

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BarkinBalci/socials-sync-service/internal/dto"
	"github.com/BarkinBalci/socials-sync-service/internal/repository"
)

func serve(router http.Handler, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestStatusRouter_Health(t *testing.T) {
	mockRepo := new(MockActivityRepository)
	mockRepo.On("Ping", mock.Anything).Return(nil).Once()
	mockRepo.On("Ping", mock.Anything).Return(errors.New("connection refused")).Once()
	router := NewStatusRouter(mockRepo, zap.NewNop())

	assert.Equal(t, http.StatusOK, serve(router, "/health").Code)
	assert.Equal(t, http.StatusServiceUnavailable, serve(router, "/health").Code)
	mockRepo.AssertExpectations(t)
}

func TestStatusRouter_Metrics(t *testing.T) {
	router := NewStatusRouter(new(MockActivityRepository), zap.NewNop())

	w := serve(router, "/metrics")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go_goroutines")
}

func TestStatusRouter_Activity(t *testing.T) {
	mockRepo := new(MockActivityRepository)
	mockRepo.On("InterestCounts", mock.Anything, "social-1").Return(&repository.InterestCounts{
		SocialID:    "social-1",
		Added:       5,
		Removed:     2,
		UniqueUsers: 4,
	}, nil)
	router := NewStatusRouter(mockRepo, zap.NewNop())

	w := serve(router, "/socials/social-1/activity")

	require.Equal(t, http.StatusOK, w.Code)
	var response dto.ActivityStatsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, dto.ActivityStatsResponse{
		SocialID:        "social-1",
		InterestAdded:   5,
		InterestRemoved: 2,
		UniqueUsers:     4,
		Net:             3,
	}, response)
	mockRepo.AssertExpectations(t)
}

func TestStatusRouter_Activity_RepositoryError(t *testing.T) {
	mockRepo := new(MockActivityRepository)
	mockRepo.On("InterestCounts", mock.Anything, "social-1").Return(nil, errors.New("clickhouse down"))
	router := NewStatusRouter(mockRepo, zap.NewNop())

	w := serve(router, "/socials/social-1/activity")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	var response dto.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "internal_error", response.Error)
}
