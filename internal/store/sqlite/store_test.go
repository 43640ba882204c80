package sqlite

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BarkinBalci/socials-sync-service/internal/domain"
	"github.com/BarkinBalci/socials-sync-service/internal/store"
)

const testCollection = "socials"

func newTestStore(t *testing.T, bufferSize int) *Store {
	t.Helper()
	log := zap.NewNop()
	db, err := Open(filepath.Join(t.TempDir(), "socials.db"), log)
	require.NoError(t, err)

	s := NewStore(db, bufferSize, log)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func createSocial(t *testing.T, s *Store, date int64, owner string) string {
	t.Helper()
	id, version, err := s.CreateDocument(context.Background(), testCollection, &domain.Social{
		EventDate: date,
		EventName: "meetup",
		Owner:     owner,
	})
	require.NoError(t, err)
	assert.Equal(t, store.Version(1), version)
	return id
}

func receive(t *testing.T, sub store.Subscription) store.RawBatch {
	t.Helper()
	select {
	case batch, ok := <-sub.Batches():
		require.True(t, ok, "subscription closed unexpectedly")
		return batch
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for batch")
		return nil
	}
}

func TestStore_CreateAndGet(t *testing.T) {
	s := newTestStore(t, 8)
	ctx := context.Background()

	id := createSocial(t, s, 1000, "alice@example.com")

	social, version, err := s.GetDocument(ctx, testCollection, id)
	require.NoError(t, err)
	assert.Equal(t, store.Version(1), version)
	assert.Equal(t, id, social.ID)
	assert.Equal(t, "alice@example.com", social.Owner)
	assert.Equal(t, []string{}, social.UsersLiked)
}

func TestStore_GetDocument_NotFound(t *testing.T) {
	s := newTestStore(t, 8)

	_, _, err := s.GetDocument(context.Background(), testCollection, "missing")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_ConditionalUpdate(t *testing.T) {
	s := newTestStore(t, 8)
	ctx := context.Background()
	id := createSocial(t, s, 1000, "alice")

	version, err := s.ConditionalUpdate(ctx, testCollection, id, store.Patch{UsersLiked: []string{"bob"}}, 1)
	require.NoError(t, err)
	assert.Equal(t, store.Version(2), version)

	// stale version loses
	_, err = s.ConditionalUpdate(ctx, testCollection, id, store.Patch{UsersLiked: []string{"carol"}}, 1)
	assert.ErrorIs(t, err, domain.ErrVersionConflict)

	social, version, err := s.GetDocument(ctx, testCollection, id)
	require.NoError(t, err)
	assert.Equal(t, store.Version(2), version)
	assert.Equal(t, []string{"bob"}, social.UsersLiked)

	_, err = s.ConditionalUpdate(ctx, testCollection, "missing", store.Patch{}, 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_DeleteDocument(t *testing.T) {
	s := newTestStore(t, 8)
	ctx := context.Background()
	id := createSocial(t, s, 1000, "alice")

	require.NoError(t, s.DeleteDocument(ctx, testCollection, id))
	assert.ErrorIs(t, s.DeleteDocument(ctx, testCollection, id), domain.ErrNotFound)
}

func TestStore_SubscribeCollection_InitialSnapshotOrdered(t *testing.T) {
	s := newTestStore(t, 8)
	late := createSocial(t, s, 3000, "alice")
	early := createSocial(t, s, 1000, "alice")

	sub, err := s.SubscribeCollection(context.Background(), testCollection, domain.OrderKeyEventDate, domain.Ascending)
	require.NoError(t, err)
	defer sub.Close()

	batch := receive(t, sub)
	require.Len(t, batch, 2)
	assert.Equal(t, early, batch[0].ID)
	assert.Equal(t, late, batch[1].ID)
	for _, change := range batch {
		assert.Equal(t, domain.ChangeAdded, change.Kind)
	}

	var social domain.Social
	require.NoError(t, json.Unmarshal(batch[0].Data, &social))
	assert.Equal(t, int64(1000), social.EventDate)
}

func TestStore_SubscribeCollection_Descending(t *testing.T) {
	s := newTestStore(t, 8)
	early := createSocial(t, s, 1000, "alice")
	late := createSocial(t, s, 3000, "alice")

	sub, err := s.SubscribeCollection(context.Background(), testCollection, domain.OrderKeyEventDate, domain.Descending)
	require.NoError(t, err)
	defer sub.Close()

	batch := receive(t, sub)
	require.Len(t, batch, 2)
	assert.Equal(t, late, batch[0].ID)
	assert.Equal(t, early, batch[1].ID)
}

func TestStore_SubscribeCollection_StreamsWrites(t *testing.T) {
	s := newTestStore(t, 8)
	ctx := context.Background()

	sub, err := s.SubscribeCollection(ctx, testCollection, domain.OrderKeyEventDate, domain.Ascending)
	require.NoError(t, err)
	defer sub.Close()
	assert.Empty(t, receive(t, sub))

	id := createSocial(t, s, 1000, "alice")
	added := receive(t, sub)
	require.Len(t, added, 1)
	assert.Equal(t, domain.ChangeAdded, added[0].Kind)
	assert.Equal(t, id, added[0].ID)

	_, err = s.ConditionalUpdate(ctx, testCollection, id, store.Patch{UsersLiked: []string{"bob"}}, 1)
	require.NoError(t, err)
	modified := receive(t, sub)
	require.Len(t, modified, 1)
	assert.Equal(t, domain.ChangeModified, modified[0].Kind)
	assert.Contains(t, string(modified[0].Data), `"usersLiked":["bob"]`)

	require.NoError(t, s.DeleteDocument(ctx, testCollection, id))
	removed := receive(t, sub)
	require.Len(t, removed, 1)
	assert.Equal(t, domain.ChangeRemoved, removed[0].Kind)
	assert.Nil(t, removed[0].Data)
}

func TestStore_SubscribeCollection_IsolatedByCollection(t *testing.T) {
	s := newTestStore(t, 8)
	ctx := context.Background()

	sub, err := s.SubscribeCollection(ctx, "other", domain.OrderKeyEventDate, domain.Ascending)
	require.NoError(t, err)
	defer sub.Close()
	receive(t, sub)

	createSocial(t, s, 1000, "alice")

	select {
	case batch := <-sub.Batches():
		t.Fatalf("unexpected batch from another collection: %v", batch)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestStore_Subscription_OverflowTerminates(t *testing.T) {
	s := newTestStore(t, 1)
	ctx := context.Background()

	sub, err := s.SubscribeCollection(ctx, testCollection, domain.OrderKeyEventDate, domain.Ascending)
	require.NoError(t, err)

	// initial batch fills the queue; the next write overflows it
	createSocial(t, s, 1000, "alice")

	_, ok := <-sub.Batches()
	assert.True(t, ok)
	_, ok = <-sub.Batches()
	assert.False(t, ok)

	var syncErr *domain.SyncFailure
	require.ErrorAs(t, sub.Err(), &syncErr)
	assert.ErrorIs(t, sub.Err(), ErrSubscriberOverflow)
}

func TestStore_Subscription_CloseIsIdempotent(t *testing.T) {
	s := newTestStore(t, 8)

	sub, err := s.SubscribeCollection(context.Background(), testCollection, domain.OrderKeyEventDate, domain.Ascending)
	require.NoError(t, err)

	sub.Close()
	sub.Close()

	receive(t, sub)
	_, ok := <-sub.Batches()
	assert.False(t, ok)
	assert.NoError(t, sub.Err())
}

func TestStore_Subscription_ContextCancelCloses(t *testing.T) {
	s := newTestStore(t, 8)
	ctx, cancel := context.WithCancel(context.Background())

	sub, err := s.SubscribeCollection(ctx, testCollection, domain.OrderKeyEventDate, domain.Ascending)
	require.NoError(t, err)
	receive(t, sub)

	cancel()

	select {
	case _, ok := <-sub.Batches():
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("subscription not closed after context cancel")
	}
}

func TestStore_Close_FailsSubscriptions(t *testing.T) {
	log := zap.NewNop()
	db, err := Open(filepath.Join(t.TempDir(), "socials.db"), log)
	require.NoError(t, err)
	s := NewStore(db, 8, log)

	sub, err := s.SubscribeCollection(context.Background(), testCollection, domain.OrderKeyEventDate, domain.Ascending)
	require.NoError(t, err)
	receive(t, sub)

	require.NoError(t, s.Close())

	_, ok := <-sub.Batches()
	assert.False(t, ok)
	assert.ErrorIs(t, sub.Err(), ErrStoreClosed)
}

func TestStore_SubscribeCollection_RejectsUnknownOrderKey(t *testing.T) {
	s := newTestStore(t, 8)

	_, err := s.SubscribeCollection(context.Background(), testCollection, "eventName", domain.Ascending)

	assert.Error(t, err)
}
