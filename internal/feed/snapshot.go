package feed

import "github.com/BarkinBalci/socials-sync-service/internal/domain"

// Snapshot is an immutable ordered view of the collection after a batch
type Snapshot struct {
	// Version counts the batches applied so far
	Version uint64

	records []*domain.Social
	index   map[string]int
}

func newSnapshot(version uint64, records []*domain.Social) *Snapshot {
	index := make(map[string]int, len(records))
	for i, r := range records {
		index[r.ID] = i
	}
	return &Snapshot{Version: version, records: records, index: index}
}

// Records returns a copy of the ordered records
func (s *Snapshot) Records() []*domain.Social {
	out := make([]*domain.Social, len(s.records))
	for i, r := range s.records {
		out[i] = r.Clone()
	}
	return out
}

// Len returns the number of records without copying them
func (s *Snapshot) Len() int {
	return len(s.records)
}

// Get returns a copy of the record with the given id
func (s *Snapshot) Get(id string) (*domain.Social, bool) {
	i, ok := s.index[id]
	if !ok {
		return nil, false
	}
	return s.records[i].Clone(), true
}

// Update is one emission of a subscription. Err is an *domain.ApplyFailure when the
// batch was rejected (Snapshot is then the last good one) or the terminal *domain.SyncFailure.
type Update struct {
	Snapshot *Snapshot
	Err      error
}
