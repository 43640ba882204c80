package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/BarkinBalci/socials-sync-service/internal/auth"
	"github.com/BarkinBalci/socials-sync-service/internal/domain"
	"github.com/BarkinBalci/socials-sync-service/internal/dto"
	"github.com/BarkinBalci/socials-sync-service/internal/feed"
)

var (
	// ErrUnauthenticated reports a call without an identity in its context
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrInvalidSocial reports a rejected new social
	ErrInvalidSocial = errors.New("invalid social")
)

// FeedConfig selects the collection and its subscription order
type FeedConfig struct {
	Collection string
	OrderKey   string
	Direction  domain.Direction
}

// SocialService binds the current identity to feed and mutation operations
type SocialService struct {
	subscriber Subscriber
	mutator    Mutator
	creator    Creator
	config     FeedConfig
	log        *zap.Logger
}

// NewSocialService creates a new social service
func NewSocialService(subscriber Subscriber, mutator Mutator, creator Creator, config FeedConfig, log *zap.Logger) *SocialService {
	return &SocialService{
		subscriber: subscriber,
		mutator:    mutator,
		creator:    creator,
		config:     config,
		log:        log,
	}
}

// OpenFeed opens a subscription with the configured order
func (s *SocialService) OpenFeed(ctx context.Context) (*feed.Subscription, error) {
	return s.subscriber.Subscribe(ctx, s.config.OrderKey, s.config.Direction)
}

// CurrentSnapshot opens a short-lived subscription and returns its first snapshot,
// which holds the whole collection
func (s *SocialService) CurrentSnapshot(ctx context.Context) (*feed.Snapshot, error) {
	sub, err := s.OpenFeed(ctx)
	if err != nil {
		return nil, err
	}
	defer sub.Cancel()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case update, ok := <-sub.Updates():
		if !ok {
			if err := sub.Err(); err != nil {
				return nil, err
			}
			return nil, fmt.Errorf("subscription closed before the first snapshot")
		}
		if update.Err != nil {
			return nil, update.Err
		}
		return update.Snapshot, nil
	}
}

// ToggleInterest toggles the caller's interest in a social
func (s *SocialService) ToggleInterest(ctx context.Context, recordID string) (*dto.ToggleInterestResponse, error) {
	user, ok := auth.CurrentUser(ctx)
	if !ok {
		return nil, ErrUnauthenticated
	}

	result, err := s.mutator.ToggleInterest(ctx, recordID, user.Key())
	if err != nil {
		return nil, fmt.Errorf("failed to toggle interest on %s: %w", recordID, err)
	}

	return &dto.ToggleInterestResponse{
		ID:         recordID,
		Interested: result.Interested,
		Count:      result.Count,
		LikeLabel:  InterestLabel(result.Count),
		Attempts:   result.Attempts,
	}, nil
}

// DeleteRecord deletes a social owned by the caller
func (s *SocialService) DeleteRecord(ctx context.Context, recordID string) error {
	user, ok := auth.CurrentUser(ctx)
	if !ok {
		return ErrUnauthenticated
	}

	if err := s.mutator.DeleteRecord(ctx, recordID, user.Key()); err != nil {
		return fmt.Errorf("failed to delete %s: %w", recordID, err)
	}
	return nil
}

// CreateSocial writes a new social owned by the caller with no interested users
func (s *SocialService) CreateSocial(ctx context.Context, req *dto.CreateSocialRequest) (*dto.CreateSocialResponse, error) {
	user, ok := auth.CurrentUser(ctx)
	if !ok {
		return nil, ErrUnauthenticated
	}

	if err := validateNewSocial(req); err != nil {
		s.log.Warn("New social validation failed",
			zap.String("owner", user.Key()),
			zap.Error(err))
		return nil, err
	}

	id, _, err := s.creator.CreateDocument(ctx, s.config.Collection, &domain.Social{
		EventDate:        req.EventDate,
		EventName:        strings.TrimSpace(req.EventName),
		EventDescription: req.EventDescription,
		EventLocation:    strings.TrimSpace(req.EventLocation),
		EventImage:       req.EventImage,
		Owner:            user.Key(),
		UsersLiked:       []string{},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create social: %w", err)
	}

	s.log.Info("Social created",
		zap.String("record_id", id),
		zap.String("owner", user.Key()))

	return &dto.CreateSocialResponse{ID: id, Status: "created"}, nil
}

func validateNewSocial(req *dto.CreateSocialRequest) error {
	switch {
	case strings.TrimSpace(req.EventName) == "":
		return fmt.Errorf("%w: event name is required", ErrInvalidSocial)
	case strings.TrimSpace(req.EventLocation) == "":
		return fmt.Errorf("%w: event location is required", ErrInvalidSocial)
	case strings.TrimSpace(req.EventImage) == "":
		return fmt.Errorf("%w: event image is required", ErrInvalidSocial)
	case req.EventDate <= 0:
		return fmt.Errorf("%w: event date must be positive", ErrInvalidSocial)
	}
	return nil
}

// InterestLabel renders an interest count the way the feed shows it
func InterestLabel(count int) string {
	if count == 1 {
		return "1 like"
	}
	return fmt.Sprintf("%d likes", count)
}

// BuildSnapshotResponse renders a snapshot for viewer; updateErr is the rejected batch's error, if any
func BuildSnapshotResponse(snapshot *feed.Snapshot, viewer string, updateErr error) dto.SnapshotResponse {
	resp := dto.SnapshotResponse{
		Version: snapshot.Version,
		Socials: make([]dto.SocialResponse, 0, snapshot.Len()),
	}
	if updateErr != nil {
		resp.Error = updateErr.Error()
	}

	for _, r := range snapshot.Records() {
		resp.Socials = append(resp.Socials, dto.SocialResponse{
			ID:               r.ID,
			EventDate:        r.EventDate,
			EventName:        r.EventName,
			EventDescription: r.EventDescription,
			EventLocation:    r.EventLocation,
			EventImage:       r.EventImage,
			Owner:            r.Owner,
			UsersLiked:       r.UsersLiked,
			Interested:       r.IsInterested(viewer),
			LikeLabel:        InterestLabel(len(r.UsersLiked)),
		})
	}
	return resp
}
