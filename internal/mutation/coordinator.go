package mutation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/BarkinBalci/socials-sync-service/internal/domain"
	"github.com/BarkinBalci/socials-sync-service/internal/store"
)

// ActivityPublisher receives an activity for every committed mutation
type ActivityPublisher interface {
	PublishActivity(ctx context.Context, activity *domain.Activity) error
}

// Config configures the coordinator's retry budget
type Config struct {
	Collection  string
	MaxAttempts int
	Backoff     Backoff
}

// ToggleResult describes a committed toggle
type ToggleResult struct {
	Interested bool
	Count      int
	Attempts   int
}

// Coordinator performs read-modify-write mutations with optimistic concurrency
type Coordinator struct {
	docs      store.DocumentStore
	publisher ActivityPublisher
	config    Config
	gate      *gate
	log       *zap.Logger
}

// NewCoordinator creates a coordinator; publisher may be nil
func NewCoordinator(docs store.DocumentStore, publisher ActivityPublisher, config Config, log *zap.Logger) *Coordinator {
	if config.MaxAttempts < 1 {
		config.MaxAttempts = 1
	}
	return &Coordinator{
		docs:      docs,
		publisher: publisher,
		config:    config,
		gate:      newGate(),
		log:       log,
	}
}

// ToggleInterest adds userID to the record's interested users, or removes it if present.
// Every attempt re-reads the persisted document, so a retry never reapplies a stale diff.
func (c *Coordinator) ToggleInterest(ctx context.Context, recordID, userID string) (ToggleResult, error) {
	release, err := c.gate.acquire(ctx, gateKey{recordID: recordID, userID: userID})
	if err != nil {
		return ToggleResult{}, err
	}
	defer release()

	var result ToggleResult
	attempts, err := c.retry(ctx, opToggle, recordID, func(ctx context.Context) error {
		social, version, err := c.docs.GetDocument(ctx, c.config.Collection, recordID)
		if err != nil {
			return err
		}

		users, interested := domain.ToggleMembership(social.UsersLiked, userID)
		if _, err := c.docs.ConditionalUpdate(ctx, c.config.Collection, recordID, store.Patch{UsersLiked: users}, version); err != nil {
			return err
		}

		result = ToggleResult{Interested: interested, Count: len(users)}
		return nil
	})
	if err != nil {
		c.recordFailure(opToggle, err)
		return ToggleResult{}, err
	}

	result.Attempts = attempts
	mutationResults.WithLabelValues(opToggle, resultCommitted).Inc()

	kind := domain.ActivityInterestRemoved
	if result.Interested {
		kind = domain.ActivityInterestAdded
	}
	c.publish(ctx, kind, recordID, userID, attempts)

	c.log.Info("Interest toggled",
		zap.String("record_id", recordID),
		zap.String("user_id", userID),
		zap.Bool("interested", result.Interested),
		zap.Int("attempts", attempts))

	return result, nil
}

// DeleteRecord removes the record if userID owns it. A record that is already gone
// counts as deleted.
func (c *Coordinator) DeleteRecord(ctx context.Context, recordID, userID string) error {
	release, err := c.gate.acquire(ctx, gateKey{recordID: recordID, userID: userID})
	if err != nil {
		return err
	}
	defer release()

	deleted := false
	attempts, err := c.retry(ctx, opDelete, recordID, func(ctx context.Context) error {
		social, _, err := c.docs.GetDocument(ctx, c.config.Collection, recordID)
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		if social.Owner != userID {
			return domain.ErrUnauthorized
		}

		err = c.docs.DeleteDocument(ctx, c.config.Collection, recordID)
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		deleted = true
		return nil
	})
	if err != nil {
		c.recordFailure(opDelete, err)
		if errors.Is(err, domain.ErrUnauthorized) {
			c.log.Warn("Delete rejected for non-owner",
				zap.String("record_id", recordID),
				zap.String("user_id", userID))
		}
		return err
	}

	if !deleted {
		mutationResults.WithLabelValues(opDelete, resultAlreadyGone).Inc()
		c.log.Info("Record already deleted", zap.String("record_id", recordID))
		return nil
	}

	mutationResults.WithLabelValues(opDelete, resultCommitted).Inc()
	c.publish(ctx, domain.ActivitySocialDeleted, recordID, userID, attempts)
	c.log.Info("Record deleted",
		zap.String("record_id", recordID),
		zap.String("user_id", userID))
	return nil
}

// retry runs fn until it commits, fails terminally or the attempt budget is spent.
// Version conflicts and transient store errors consume attempts; not-found,
// authorization and context errors end the call immediately.
func (c *Coordinator) retry(ctx context.Context, op, recordID string, fn func(ctx context.Context) error) (int, error) {
	var lastErr error

	for attempt := 1; attempt <= c.config.MaxAttempts; attempt++ {
		mutationAttempts.WithLabelValues(op).Inc()

		err := fn(ctx)
		if err == nil {
			return attempt, nil
		}
		if isTerminal(ctx, err) {
			return attempt, err
		}

		lastErr = err
		if errors.Is(err, domain.ErrVersionConflict) {
			mutationConflicts.WithLabelValues(op).Inc()
			c.log.Debug("Version conflict, retrying",
				zap.String("op", op),
				zap.String("record_id", recordID),
				zap.Int("attempt", attempt))
		} else {
			c.log.Warn("Store error, retrying",
				zap.String("op", op),
				zap.String("record_id", recordID),
				zap.Int("attempt", attempt),
				zap.Error(err))
		}

		if attempt == c.config.MaxAttempts {
			break
		}
		if err := sleep(ctx, c.config.Backoff.Delay(attempt)); err != nil {
			return attempt, err
		}
	}

	if errors.Is(lastErr, domain.ErrVersionConflict) {
		return c.config.MaxAttempts, domain.ErrConcurrentModification
	}
	return c.config.MaxAttempts, fmt.Errorf("%s on %s failed after %d attempts: %w", op, recordID, c.config.MaxAttempts, lastErr)
}

func isTerminal(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return true
	}
	return errors.Is(err, domain.ErrNotFound) ||
		errors.Is(err, domain.ErrUnauthorized) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}

func (c *Coordinator) recordFailure(op string, err error) {
	result := resultError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		result = resultNotFound
	case errors.Is(err, domain.ErrUnauthorized):
		result = resultUnauthorized
	case errors.Is(err, domain.ErrConcurrentModification):
		result = resultConcurrentMod
	}
	mutationResults.WithLabelValues(op, result).Inc()
}

// publishTimeout bounds a publish that outlives the caller's context
const publishTimeout = 5 * time.Second

// publish hands the activity to the publisher; failures never fail the mutation.
// The mutation is already committed, so the caller going away does not drop the activity.
func (c *Coordinator) publish(ctx context.Context, kind domain.ActivityKind, recordID, userID string, attempts int) {
	if c.publisher == nil {
		return
	}

	activity := &domain.Activity{
		ActivityID: ulid.Make().String(),
		Kind:       kind,
		SocialID:   recordID,
		UserID:     userID,
		Attempts:   attempts,
		OccurredAt: time.Now().UTC(),
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err := c.publisher.PublishActivity(ctx, activity); err != nil {
		c.log.Error("Failed to publish activity",
			zap.String("activity_id", activity.ActivityID),
			zap.String("kind", string(kind)),
			zap.String("record_id", recordID),
			zap.Error(err))
	}
}
