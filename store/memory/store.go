package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/cameronkarthik/synapse-mind-vault-main/store"
)

type memoryStore struct {
	options  store.Options
	thoughts map[int64]store.Thought
	nextId   int64
	mtx      sync.RWMutex
}

func (s *memoryStore) Save(ctx context.Context, thought store.Thought) (int64, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	s.nextId++

	rec := thought.Clone()
	rec.Id = s.nextId

	s.thoughts[rec.Id] = rec

	return rec.Id, nil
}

func (s *memoryStore) GetAll(ctx context.Context) ([]store.Thought, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	all := s.snapshot()

	sort.Slice(all, func(i, j int) bool {
		return all[i].Timestamp.Before(all[j].Timestamp)
	})

	return all, nil
}

func (s *memoryStore) GetByTag(ctx context.Context, tag string) ([]store.Thought, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	var matched []store.Thought

	for _, rec := range s.snapshot() {
		if rec.HasTag(tag) {
			matched = append(matched, rec)
		}
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].Id < matched[j].Id
	})

	return matched, nil
}

func (s *memoryStore) SearchByContent(ctx context.Context, query string) ([]store.Thought, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	var matched []store.Thought

	for _, rec := range s.snapshot() {
		if rec.MatchesContent(query) {
			matched = append(matched, rec)
		}
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].Id < matched[j].Id
	})

	return matched, nil
}

func (s *memoryStore) GetRecent(ctx context.Context, limit int) ([]store.Thought, error) {
	if limit < 1 {
		return nil, nil
	}

	s.mtx.RLock()
	defer s.mtx.RUnlock()

	all := s.snapshot()

	sort.Slice(all, func(i, j int) bool {
		return all[i].Timestamp.After(all[j].Timestamp)
	})

	if len(all) > limit {
		all = all[:limit]
	}

	return all, nil
}

func (s *memoryStore) ClearAll(ctx context.Context) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	s.thoughts = map[int64]store.Thought{}

	return nil
}

func (s *memoryStore) Close() error {
	return nil
}

// snapshot copies every record; callers must hold at least a read lock.
func (s *memoryStore) snapshot() []store.Thought {
	all := make([]store.Thought, 0, len(s.thoughts))
	for _, rec := range s.thoughts {
		all = append(all, rec.Clone())
	}
	return all
}

func NewStore(opts ...store.Option) store.Store {
	options := store.NewOptions(opts...)

	s := &memoryStore{
		options:  options,
		thoughts: map[int64]store.Thought{},
		mtx:      sync.RWMutex{},
	}

	return s
}
