package sqlite

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/BarkinBalci/socials-sync-service/internal/domain"
	"github.com/BarkinBalci/socials-sync-service/internal/store"
)

// Store implements store.Backend on an embedded sqlite database
type Store struct {
	db  *gorm.DB
	hub *hub
	log *zap.Logger

	// writeMu orders commits and their broadcast so every subscriber sees one history
	writeMu sync.Mutex
}

// NewStore creates a sqlite-backed store; bufferSize bounds each subscription's queue
func NewStore(db *gorm.DB, bufferSize int, log *zap.Logger) *Store {
	return &Store{
		db:  db,
		hub: newHub(bufferSize),
		log: log,
	}
}

// GetDocument reads a social together with its current version
func (s *Store) GetDocument(ctx context.Context, collection, id string) (*domain.Social, store.Version, error) {
	var doc socialDocument
	err := s.db.WithContext(ctx).
		Where("collection = ? AND id = ?", collection, id).
		First(&doc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, 0, domain.ErrNotFound
	}
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read social %s: %w", id, err)
	}

	social, err := doc.toSocial()
	if err != nil {
		return nil, 0, err
	}
	return social, store.Version(doc.Version), nil
}

// ConditionalUpdate replaces usersLiked only when the stored version still equals expected
func (s *Store) ConditionalUpdate(ctx context.Context, collection, id string, patch store.Patch, expected store.Version) (store.Version, error) {
	users, err := store.EncodeUsers(patch.UsersLiked)
	if err != nil {
		return 0, err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	var updated socialDocument
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&socialDocument{}).
			Where("collection = ? AND id = ? AND version = ?", collection, id, uint64(expected)).
			Updates(map[string]interface{}{
				"users_liked": string(users),
				"version":     gorm.Expr("version + 1"),
			})
		if result.Error != nil {
			return result.Error
		}

		if result.RowsAffected == 0 {
			var count int64
			if err := tx.Model(&socialDocument{}).
				Where("collection = ? AND id = ?", collection, id).
				Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return domain.ErrNotFound
			}
			return domain.ErrVersionConflict
		}

		return tx.Where("collection = ? AND id = ?", collection, id).First(&updated).Error
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrVersionConflict) {
			return 0, err
		}
		return 0, fmt.Errorf("failed to update social %s: %w", id, err)
	}

	s.broadcast(collection, &updated, domain.ChangeModified)
	return store.Version(updated.Version), nil
}

// DeleteDocument removes a social, returning domain.ErrNotFound when absent
func (s *Store) DeleteDocument(ctx context.Context, collection, id string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	result := s.db.WithContext(ctx).
		Where("collection = ? AND id = ?", collection, id).
		Delete(&socialDocument{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete social %s: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}

	s.hub.publish(collection, store.RawBatch{{Kind: domain.ChangeRemoved, ID: id}})
	return nil
}

// CreateDocument stores a new social under a freshly assigned id
func (s *Store) CreateDocument(ctx context.Context, collection string, social *domain.Social) (string, store.Version, error) {
	users, err := store.EncodeUsers(social.UsersLiked)
	if err != nil {
		return "", 0, err
	}

	doc := socialDocument{
		Collection:       collection,
		ID:               uuid.NewString(),
		EventDate:        social.EventDate,
		EventName:        social.EventName,
		EventDescription: social.EventDescription,
		EventLocation:    social.EventLocation,
		EventImage:       social.EventImage,
		Owner:            social.Owner,
		UsersLiked:       string(users),
		Version:          1,
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.db.WithContext(ctx).Create(&doc).Error; err != nil {
		return "", 0, fmt.Errorf("failed to create social: %w", err)
	}

	s.broadcast(collection, &doc, domain.ChangeAdded)
	return doc.ID, store.Version(doc.Version), nil
}

// SubscribeCollection registers a subscriber and queues the current collection as its first batch
func (s *Store) SubscribeCollection(ctx context.Context, collection, orderKey string, direction domain.Direction) (store.Subscription, error) {
	if orderKey != domain.OrderKeyEventDate {
		return nil, fmt.Errorf("unsupported order key: %s", orderKey)
	}
	order := "event_date ASC, created_at ASC"
	if direction == domain.Descending {
		order = "event_date DESC, created_at ASC"
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	var docs []socialDocument
	if err := s.db.WithContext(ctx).
		Where("collection = ?", collection).
		Order(order).
		Find(&docs).Error; err != nil {
		return nil, fmt.Errorf("failed to load collection %s: %w", collection, err)
	}

	initial := make(store.RawBatch, 0, len(docs))
	for i := range docs {
		change, err := docs[i].rawChange(domain.ChangeAdded)
		if err != nil {
			return nil, err
		}
		initial = append(initial, change)
	}

	sub := s.hub.add(collection)
	sub.deliver(initial)

	go func() {
		select {
		case <-ctx.Done():
			sub.Close()
		case <-sub.done:
		}
	}()

	s.log.Info("Subscription opened",
		zap.String("collection", collection),
		zap.String("direction", string(direction)),
		zap.Int("initial_count", len(initial)))

	return sub, nil
}

// Ping checks if the database connection is alive
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close terminates open subscriptions and closes the database
func (s *Store) Close() error {
	s.hub.closeAll(ErrStoreClosed)

	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	s.log.Info("Closing sqlite document store")
	return sqlDB.Close()
}

func (s *Store) broadcast(collection string, doc *socialDocument, kind domain.ChangeKind) {
	change, err := doc.rawChange(kind)
	if err != nil {
		s.log.Error("Failed to encode change",
			zap.String("record_id", doc.ID),
			zap.Error(err))
		return
	}
	s.hub.publish(collection, store.RawBatch{change})
}
