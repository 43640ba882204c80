package feed

import (
	"errors"
	"fmt"
	"sort"

	"github.com/BarkinBalci/socials-sync-service/internal/domain"
)

var (
	errMissingDocument = errors.New("change carries no document")
	errIDMismatch      = errors.New("document id does not match change id")
	errDuplicateUsers  = errors.New("usersLiked contains duplicate users")
	errEmptyID         = errors.New("change has empty id")
	errUnknownKind     = errors.New("unknown change kind")
)

type entry struct {
	social *domain.Social
	seq    uint64
}

// View is the keyed, ordered state behind a subscription. It is owned by a single
// materializer goroutine and is not safe for concurrent use.
type View struct {
	direction domain.Direction
	entries   map[string]entry
	nextSeq   uint64
	current   *Snapshot
}

// NewView creates an empty view ordered by eventDate in the given direction
func NewView(direction domain.Direction) *View {
	return &View{
		direction: direction,
		entries:   make(map[string]entry),
		current:   newSnapshot(0, nil),
	}
}

// Snapshot returns the last successfully applied snapshot
func (v *View) Snapshot() *Snapshot {
	return v.current
}

// Apply validates the whole batch and applies it atomically. On failure the view is
// left untouched and an *domain.ApplyFailure is returned with the last good snapshot.
func (v *View) Apply(batch domain.ChangeBatch) (*Snapshot, error) {
	if err := validate(batch); err != nil {
		return v.current, err
	}

	next := make(map[string]entry, len(v.entries)+len(batch))
	for id, e := range v.entries {
		next[id] = e
	}
	seq := v.nextSeq

	for _, change := range batch {
		switch change.Kind {
		case domain.ChangeAdded, domain.ChangeModified:
			e, ok := next[change.ID]
			if !ok {
				e.seq = seq
				seq++
			}
			e.social = change.Social.Clone()
			next[change.ID] = e
		case domain.ChangeRemoved:
			delete(next, change.ID)
		}
	}

	v.entries = next
	v.nextSeq = seq
	v.current = newSnapshot(v.current.Version+1, v.sorted())
	return v.current, nil
}

func (v *View) sorted() []*domain.Social {
	entries := make([]entry, 0, len(v.entries))
	for _, e := range v.entries {
		entries = append(entries, e)
	}

	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.social.EventDate != b.social.EventDate {
			if v.direction == domain.Descending {
				return a.social.EventDate > b.social.EventDate
			}
			return a.social.EventDate < b.social.EventDate
		}
		return a.seq < b.seq
	})

	records := make([]*domain.Social, len(entries))
	for i, e := range entries {
		records[i] = e.social
	}
	return records
}

func validate(batch domain.ChangeBatch) error {
	for _, change := range batch {
		if change.ID == "" {
			return &domain.ApplyFailure{Err: errEmptyID}
		}
		if !change.Kind.Valid() {
			return &domain.ApplyFailure{
				ChangeID: change.ID,
				Err:      fmt.Errorf("%w: %q", errUnknownKind, change.Kind),
			}
		}
		if change.Kind == domain.ChangeRemoved {
			continue
		}

		if change.Social == nil {
			return &domain.ApplyFailure{ChangeID: change.ID, Err: errMissingDocument}
		}
		if change.Social.ID != change.ID {
			return &domain.ApplyFailure{
				ChangeID: change.ID,
				Err:      fmt.Errorf("%w: %q", errIDMismatch, change.Social.ID),
			}
		}
		if change.Social.HasDuplicateInterest() {
			return &domain.ApplyFailure{ChangeID: change.ID, Err: errDuplicateUsers}
		}
	}
	return nil
}
