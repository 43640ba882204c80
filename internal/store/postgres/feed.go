package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/BarkinBalci/socials-sync-service/internal/domain"
	"github.com/BarkinBalci/socials-sync-service/internal/store"
)

// notification is the payload written by notify_social_change()
type notification struct {
	Op         string `json:"op"`
	Collection string `json:"collection"`
	ID         string `json:"id"`
}

func parseNotification(payload string) (notification, error) {
	var n notification
	if err := json.Unmarshal([]byte(payload), &n); err != nil {
		return n, fmt.Errorf("failed to decode notification: %w", err)
	}
	if n.ID == "" || n.Collection == "" {
		return n, fmt.Errorf("incomplete notification: %q", payload)
	}
	return n, nil
}

// kindFor maps the trigger operation onto a change kind
func kindFor(op string) domain.ChangeKind {
	switch op {
	case "INSERT":
		return domain.ChangeAdded
	case "DELETE":
		return domain.ChangeRemoved
	default:
		return domain.ChangeModified
	}
}

// SubscribeCollection holds a dedicated connection that LISTENs for changes, then
// queues the current collection as the first batch
func (s *Store) SubscribeCollection(ctx context.Context, collection, orderKey string, direction domain.Direction) (store.Subscription, error) {
	if orderKey != domain.OrderKeyEventDate {
		return nil, fmt.Errorf("unsupported order key: %s", orderKey)
	}

	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire listen connection: %w", err)
	}

	if _, err := conn.Exec(ctx, "LISTEN "+notifyChannel); err != nil {
		conn.Release()
		return nil, fmt.Errorf("failed to listen for changes: %w", err)
	}

	initial, err := loadCollection(ctx, conn, collection, direction)
	if err != nil {
		conn.Release()
		return nil, err
	}

	subCtx, cancel := context.WithCancel(ctx)
	sub := &subscription{
		collection: collection,
		batches:    make(chan store.RawBatch, s.bufferSize),
		cancel:     cancel,
		done:       make(chan struct{}),
		log:        s.log,
	}
	if !s.track(sub) {
		cancel()
		conn.Release()
		return nil, ErrStoreClosed
	}
	sub.batches <- initial

	go func() {
		defer s.untrack(sub)
		sub.listen(subCtx, conn)
	}()

	s.log.Info("Subscription opened",
		zap.String("collection", collection),
		zap.String("direction", string(direction)),
		zap.Int("initial_count", len(initial)))

	return sub, nil
}

func loadCollection(ctx context.Context, q querier, collection string, direction domain.Direction) (store.RawBatch, error) {
	order := "ASC"
	if direction == domain.Descending {
		order = "DESC"
	}

	rows, err := q.Query(ctx,
		`SELECT `+selectColumns+` FROM social_documents WHERE collection = $1
		ORDER BY event_date `+order+`, created_at ASC`,
		collection)
	if err != nil {
		return nil, fmt.Errorf("failed to load collection %s: %w", collection, err)
	}
	defer rows.Close()

	batch := store.RawBatch{}
	for rows.Next() {
		social, _, err := scanSocial(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan social: %w", err)
		}
		data, err := store.EncodeSocial(social)
		if err != nil {
			return nil, err
		}
		batch = append(batch, store.RawChange{Kind: domain.ChangeAdded, ID: social.ID, Data: data})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate collection %s: %w", collection, err)
	}
	return batch, nil
}

// subscription implements store.Subscription over a LISTEN connection
type subscription struct {
	collection string
	batches    chan store.RawBatch
	cancel     context.CancelFunc
	done       chan struct{}
	log        *zap.Logger

	mu  sync.Mutex
	err error
}

func (s *subscription) Batches() <-chan store.RawBatch {
	return s.batches
}

func (s *subscription) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Close stops listening and waits for the listener to release its connection
func (s *subscription) Close() {
	s.cancel()
	<-s.done
}

// terminate ends the subscription with err as its SyncFailure cause
func (s *subscription) terminate(err error) {
	s.mu.Lock()
	if s.err == nil {
		s.err = &domain.SyncFailure{Collection: s.collection, Err: err}
	}
	s.mu.Unlock()
	s.Close()
}

func (s *subscription) listen(ctx context.Context, conn *pgxpool.Conn) {
	defer close(s.done)
	defer close(s.batches)
	defer conn.Release()

	for {
		n, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			s.fail(ctx, err)
			return
		}

		change, ok, err := s.resolve(ctx, conn, n.Payload)
		if err != nil {
			s.fail(ctx, err)
			return
		}
		if !ok {
			continue
		}

		select {
		case <-ctx.Done():
			return
		case s.batches <- store.RawBatch{change}:
		}
	}
}

// resolve turns a notification into a change carrying the current row
func (s *subscription) resolve(ctx context.Context, conn *pgxpool.Conn, payload string) (store.RawChange, bool, error) {
	n, err := parseNotification(payload)
	if err != nil {
		s.log.Warn("Ignoring malformed notification", zap.String("payload", payload), zap.Error(err))
		return store.RawChange{}, false, nil
	}
	if n.Collection != s.collection {
		return store.RawChange{}, false, nil
	}

	kind := kindFor(n.Op)
	if kind == domain.ChangeRemoved {
		return store.RawChange{Kind: kind, ID: n.ID}, true, nil
	}

	social, _, err := getDocument(ctx, conn, n.Collection, n.ID)
	if errors.Is(err, domain.ErrNotFound) {
		// deleted before we could read it; the DELETE notification follows
		return store.RawChange{Kind: domain.ChangeRemoved, ID: n.ID}, true, nil
	}
	if err != nil {
		return store.RawChange{}, false, err
	}

	data, err := store.EncodeSocial(social)
	if err != nil {
		return store.RawChange{}, false, err
	}
	return store.RawChange{Kind: kind, ID: n.ID, Data: data}, true, nil
}

func (s *subscription) fail(ctx context.Context, err error) {
	if ctx.Err() != nil {
		return
	}
	s.log.Error("Subscription failed", zap.String("collection", s.collection), zap.Error(err))
	s.mu.Lock()
	s.err = &domain.SyncFailure{Collection: s.collection, Err: err}
	s.mu.Unlock()
}
