package postgres

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/BarkinBalci/socials-sync-service/internal/domain"
	"github.com/BarkinBalci/socials-sync-service/internal/store"
)

// querier is satisfied by *pgxpool.Pool, *pgxpool.Conn and pgx.Tx
type querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const selectColumns = `id, event_date, event_name, event_description, event_location,
	event_image, owner, users_liked, version`

// ErrStoreClosed terminates subscriptions still open when the store closes
var ErrStoreClosed = errors.New("postgres store closed")

// Store implements store.Backend on PostgreSQL
type Store struct {
	pool       *pgxpool.Pool
	bufferSize int
	log        *zap.Logger

	mu     sync.Mutex
	subs   map[*subscription]struct{}
	closed bool
}

// NewStore creates a postgres-backed store
func NewStore(pool *pgxpool.Pool, bufferSize int, log *zap.Logger) *Store {
	if bufferSize < 1 {
		bufferSize = 1
	}
	return &Store{
		pool:       pool,
		bufferSize: bufferSize,
		log:        log,
		subs:       make(map[*subscription]struct{}),
	}
}

// GetDocument reads a social together with its current version
func (s *Store) GetDocument(ctx context.Context, collection, id string) (*domain.Social, store.Version, error) {
	social, version, err := getDocument(ctx, s.pool, collection, id)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, 0, fmt.Errorf("failed to read social %s: %w", id, err)
	}
	return social, version, err
}

// ConditionalUpdate replaces usersLiked only when the stored version still equals expected
func (s *Store) ConditionalUpdate(ctx context.Context, collection, id string, patch store.Patch, expected store.Version) (store.Version, error) {
	users, err := store.EncodeUsers(patch.UsersLiked)
	if err != nil {
		return 0, err
	}

	var next int64
	err = s.pool.QueryRow(ctx, `
		UPDATE social_documents
		SET users_liked = $1, version = version + 1
		WHERE collection = $2 AND id = $3 AND version = $4
		RETURNING version`,
		users, collection, id, int64(expected),
	).Scan(&next)
	if err == nil {
		return store.Version(next), nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("failed to update social %s: %w", id, err)
	}

	var exists bool
	if err := s.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM social_documents WHERE collection = $1 AND id = $2)`,
		collection, id,
	).Scan(&exists); err != nil {
		return 0, fmt.Errorf("failed to check social %s: %w", id, err)
	}
	if !exists {
		return 0, domain.ErrNotFound
	}
	return 0, domain.ErrVersionConflict
}

// DeleteDocument removes a social, returning domain.ErrNotFound when absent
func (s *Store) DeleteDocument(ctx context.Context, collection, id string) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM social_documents WHERE collection = $1 AND id = $2`,
		collection, id)
	if err != nil {
		return fmt.Errorf("failed to delete social %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// CreateDocument stores a new social under a freshly assigned id
func (s *Store) CreateDocument(ctx context.Context, collection string, social *domain.Social) (string, store.Version, error) {
	users, err := store.EncodeUsers(social.UsersLiked)
	if err != nil {
		return "", 0, err
	}

	id := uuid.NewString()
	_, err = s.pool.Exec(ctx, `
		INSERT INTO social_documents
			(collection, id, event_date, event_name, event_description, event_location,
			 event_image, owner, users_liked, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, 1)`,
		collection, id, social.EventDate, social.EventName, social.EventDescription,
		social.EventLocation, social.EventImage, social.Owner, users,
	)
	if err != nil {
		return "", 0, fmt.Errorf("failed to create social: %w", err)
	}
	return id, 1, nil
}

// Ping checks if the pool can reach the database
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close fails open subscriptions with ErrStoreClosed, which releases their
// connections, then closes the pool
func (s *Store) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	open := make([]*subscription, 0, len(s.subs))
	for sub := range s.subs {
		open = append(open, sub)
	}
	s.mu.Unlock()

	for _, sub := range open {
		sub.terminate(ErrStoreClosed)
	}

	s.log.Info("Closing postgres document store", zap.Int("open_subscriptions", len(open)))
	s.pool.Close()
	return nil
}

func (s *Store) track(sub *subscription) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.subs[sub] = struct{}{}
	return true
}

func (s *Store) untrack(sub *subscription) {
	s.mu.Lock()
	delete(s.subs, sub)
	s.mu.Unlock()
}

func getDocument(ctx context.Context, q querier, collection, id string) (*domain.Social, store.Version, error) {
	row := q.QueryRow(ctx,
		`SELECT `+selectColumns+` FROM social_documents WHERE collection = $1 AND id = $2`,
		collection, id)

	social, version, err := scanSocial(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, 0, domain.ErrNotFound
	}
	return social, version, err
}

func scanSocial(row pgx.Row) (*domain.Social, store.Version, error) {
	var (
		social  domain.Social
		users   []byte
		version int64
	)
	if err := row.Scan(
		&social.ID,
		&social.EventDate,
		&social.EventName,
		&social.EventDescription,
		&social.EventLocation,
		&social.EventImage,
		&social.Owner,
		&users,
		&version,
	); err != nil {
		return nil, 0, err
	}

	decoded, err := store.DecodeUsers(users)
	if err != nil {
		return nil, 0, err
	}
	social.UsersLiked = decoded
	return &social, store.Version(version), nil
}
