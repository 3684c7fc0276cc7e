package store

import (
	"context"
	"sort"
	"sync"

	"github.com/jobradar/job-radar/internal/posting"
)

// Memory is an in-memory Store for tests and one-shot runs.
type Memory struct {
	mu    sync.RWMutex
	items map[string]*posting.Posting
}

func NewMemory() *Memory {
	return &Memory{items: make(map[string]*posting.Posting)}
}

func (m *Memory) UpsertPostings(_ context.Context, items []*posting.Posting) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, item := range items {
		m.items[item.ID] = item
	}
	return nil
}

func (m *Memory) ListPostings(_ context.Context) (*posting.Postings, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]string, 0, len(m.items))
	for id := range m.items {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := &posting.Postings{Items: make([]*posting.Posting, 0, len(ids))}
	for _, id := range ids {
		out.Items = append(out.Items, m.items[id])
	}
	return out, nil
}

func (m *Memory) Stats(ctx context.Context) (*Stats, error) {
	postings, err := m.ListPostings(ctx)
	if err != nil {
		return nil, err
	}
	return buildStats(postings), nil
}

func (m *Memory) Close() error { return nil }
