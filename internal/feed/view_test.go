package feed

import (
	"math/rand"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BarkinBalci/socials-sync-service/internal/domain"
)

func social(id string, date int64, users ...string) *domain.Social {
	if users == nil {
		users = []string{}
	}
	return &domain.Social{ID: id, EventDate: date, Owner: "alice", UsersLiked: users}
}

func added(s *domain.Social) domain.Change {
	return domain.Change{Kind: domain.ChangeAdded, ID: s.ID, Social: s}
}

func modified(s *domain.Social) domain.Change {
	return domain.Change{Kind: domain.ChangeModified, ID: s.ID, Social: s}
}

func removed(id string) domain.Change {
	return domain.Change{Kind: domain.ChangeRemoved, ID: id}
}

func ids(snapshot *Snapshot) []string {
	out := make([]string, 0, snapshot.Len())
	for _, r := range snapshot.Records() {
		out = append(out, r.ID)
	}
	return out
}

func TestView_Apply_OrdersByEventDate(t *testing.T) {
	v := NewView(domain.Ascending)

	snapshot, err := v.Apply(domain.ChangeBatch{
		added(social("c", 3000)),
		added(social("a", 1000)),
		added(social("b", 2000)),
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, ids(snapshot))
	assert.Equal(t, uint64(1), snapshot.Version)
}

func TestView_Apply_Descending(t *testing.T) {
	v := NewView(domain.Descending)

	snapshot, err := v.Apply(domain.ChangeBatch{
		added(social("a", 1000)),
		added(social("c", 3000)),
		added(social("b", 2000)),
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"c", "b", "a"}, ids(snapshot))
}

func TestView_Apply_TiesKeepArrivalOrder(t *testing.T) {
	v := NewView(domain.Ascending)

	_, err := v.Apply(domain.ChangeBatch{added(social("y", 1000)), added(social("x", 1000))})
	require.NoError(t, err)

	// modifying the earlier arrival must not move it behind the later one
	snapshot, err := v.Apply(domain.ChangeBatch{modified(social("y", 1000, "bob"))})
	require.NoError(t, err)
	assert.Equal(t, []string{"y", "x"}, ids(snapshot))
}

func TestView_Apply_ModifyMovesOnDateChange(t *testing.T) {
	v := NewView(domain.Ascending)
	_, err := v.Apply(domain.ChangeBatch{added(social("a", 1000)), added(social("b", 2000))})
	require.NoError(t, err)

	snapshot, err := v.Apply(domain.ChangeBatch{modified(social("a", 5000))})

	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, ids(snapshot))
}

func TestView_Apply_RemoveUnknownIgnored(t *testing.T) {
	v := NewView(domain.Ascending)
	_, err := v.Apply(domain.ChangeBatch{added(social("a", 1000))})
	require.NoError(t, err)

	snapshot, err := v.Apply(domain.ChangeBatch{removed("ghost"), removed("a")})

	require.NoError(t, err)
	assert.Equal(t, 0, snapshot.Len())

	snapshot, err = v.Apply(domain.ChangeBatch{removed("a")})
	require.NoError(t, err)
	assert.Equal(t, 0, snapshot.Len())
}

func TestView_Apply_Idempotent(t *testing.T) {
	batch := domain.ChangeBatch{
		added(social("a", 2000)),
		modified(social("b", 1000, "bob")),
		removed("c"),
	}

	v := NewView(domain.Ascending)
	_, err := v.Apply(domain.ChangeBatch{added(social("c", 500))})
	require.NoError(t, err)

	once, err := v.Apply(batch)
	require.NoError(t, err)
	twice, err := v.Apply(batch)
	require.NoError(t, err)

	assert.Equal(t, once.Records(), twice.Records())
}

func TestView_Apply_RejectsWholeBatch(t *testing.T) {
	tests := []struct {
		name   string
		change domain.Change
	}{
		{"missing document", domain.Change{Kind: domain.ChangeModified, ID: "a"}},
		{"id mismatch", domain.Change{Kind: domain.ChangeAdded, ID: "a", Social: social("b", 1)}},
		{"duplicate users", modified(social("a", 1, "bob", "bob"))},
		{"empty id", domain.Change{Kind: domain.ChangeRemoved}},
		{"unknown kind", domain.Change{Kind: "renamed", ID: "a", Social: social("a", 1)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewView(domain.Ascending)
			good, err := v.Apply(domain.ChangeBatch{added(social("keep", 1000))})
			require.NoError(t, err)

			// the valid first change must not be applied either
			snapshot, err := v.Apply(domain.ChangeBatch{removed("keep"), tt.change})

			var applyErr *domain.ApplyFailure
			require.ErrorAs(t, err, &applyErr)
			assert.Same(t, good, snapshot)
			assert.Same(t, good, v.Snapshot())
			assert.Equal(t, []string{"keep"}, ids(v.Snapshot()))
		})
	}
}

func TestView_Apply_UnknownKindReportedBeforeDocumentChecks(t *testing.T) {
	v := NewView(domain.Ascending)

	_, err := v.Apply(domain.ChangeBatch{{Kind: "renamed", ID: "a"}})

	var applyErr *domain.ApplyFailure
	require.ErrorAs(t, err, &applyErr)
	assert.Equal(t, "a", applyErr.ChangeID)
	assert.ErrorIs(t, err, errUnknownKind)
	assert.NotErrorIs(t, err, errMissingDocument)
}

func TestView_Snapshot_IsImmutable(t *testing.T) {
	v := NewView(domain.Ascending)
	source := social("a", 1000, "bob")
	snapshot, err := v.Apply(domain.ChangeBatch{added(source)})
	require.NoError(t, err)

	source.UsersLiked[0] = "mallory"
	records := snapshot.Records()
	records[0].UsersLiked = append(records[0].UsersLiked, "eve")

	got, ok := snapshot.Get("a")
	require.True(t, ok)
	assert.Equal(t, []string{"bob"}, got.UsersLiked)

	_, ok = snapshot.Get("missing")
	assert.False(t, ok)
}

func TestView_Apply_OrderInvariantHoldsForRandomBatches(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	v := NewView(domain.Ascending)

	for step := 0; step < 200; step++ {
		batch := domain.ChangeBatch{}
		for n := rng.Intn(5) + 1; n > 0; n-- {
			id := strconv.Itoa(rng.Intn(20))
			switch rng.Intn(3) {
			case 0:
				batch = append(batch, added(social(id, int64(rng.Intn(10)))))
			case 1:
				batch = append(batch, modified(social(id, int64(rng.Intn(10)))))
			default:
				batch = append(batch, removed(id))
			}
		}

		snapshot, err := v.Apply(batch)
		require.NoError(t, err)

		records := snapshot.Records()
		for i := 1; i < len(records); i++ {
			require.LessOrEqual(t, records[i-1].EventDate, records[i].EventDate, "step %d", step)
		}
	}
}
