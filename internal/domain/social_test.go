package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToggleMembership(t *testing.T) {
	tests := []struct {
		name       string
		users      []string
		user       string
		want       []string
		interested bool
	}{
		{"add to empty", nil, "bob", []string{"bob"}, true},
		{"add keeps order", []string{"alice"}, "bob", []string{"alice", "bob"}, true},
		{"remove", []string{"alice", "bob", "carol"}, "bob", []string{"alice", "carol"}, false},
		{"remove collapses duplicates of the user", []string{"bob", "alice", "bob"}, "bob", []string{"alice"}, false},
		{"collapses other duplicates", []string{"alice", "alice"}, "bob", []string{"alice", "bob"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, interested := ToggleMembership(tt.users, tt.user)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.interested, interested)
		})
	}
}

func TestToggleMembership_DoesNotAliasInput(t *testing.T) {
	users := []string{"alice", "bob"}
	got, _ := ToggleMembership(users, "carol")
	got[0] = "mallory"
	assert.Equal(t, []string{"alice", "bob"}, users)
}

func TestSocial_Interest(t *testing.T) {
	s := &Social{UsersLiked: []string{"alice", "bob"}}
	assert.True(t, s.IsInterested("bob"))
	assert.False(t, s.IsInterested("carol"))
	assert.False(t, s.HasDuplicateInterest())

	s.UsersLiked = append(s.UsersLiked, "alice")
	assert.True(t, s.HasDuplicateInterest())
}

func TestSocial_Clone(t *testing.T) {
	s := &Social{ID: "a", UsersLiked: []string{"bob"}}
	c := s.Clone()
	c.UsersLiked[0] = "eve"
	assert.Equal(t, "bob", s.UsersLiked[0])

	assert.Equal(t, []string{}, (&Social{}).Clone().UsersLiked)
	assert.Nil(t, (*Social)(nil).Clone())
}

func TestParseDirection(t *testing.T) {
	d, err := ParseDirection("")
	require.NoError(t, err)
	assert.Equal(t, Ascending, d)

	d, err = ParseDirection("desc")
	require.NoError(t, err)
	assert.Equal(t, Descending, d)

	_, err = ParseDirection("sideways")
	assert.EqualError(t, err, "unsupported order direction: sideways (supported: asc, desc)")
}

func TestChangeKind_Valid(t *testing.T) {
	for _, k := range []ChangeKind{ChangeAdded, ChangeModified, ChangeRemoved} {
		assert.True(t, k.Valid(), k)
	}
	assert.False(t, ChangeKind("renamed").Valid())
}

func TestFailures_Unwrap(t *testing.T) {
	cause := errors.New("connection reset")

	var syncErr *SyncFailure
	err := error(&SyncFailure{Collection: "socials", Err: cause})
	require.True(t, errors.As(err, &syncErr))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "sync failure on collection socials: connection reset", err.Error())

	err = &ApplyFailure{ChangeID: "r1", Err: cause}
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "apply failure on change r1: connection reset", err.Error())
	assert.Equal(t, "apply failure: connection reset", (&ApplyFailure{Err: cause}).Error())
}
