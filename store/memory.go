package store

import (
	"container/list"
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/isdmx/codescore/scoring"
)

type memoryEntry struct {
	id        string
	report    scoring.Report
	expiresAt time.Time
}

// MemoryStore is an in-process LRU with a per-entry TTL, for development
// and single-instance stdio deployments.
type MemoryStore struct {
	mu      sync.Mutex
	items   map[string]*list.Element
	order   *list.List
	maxSize int
	ttl     time.Duration
	now     func() time.Time
}

// NewMemoryStore creates a MemoryStore holding at most maxSize reports.
func NewMemoryStore(maxSize int, ttl time.Duration) *MemoryStore {
	if maxSize <= 0 {
		maxSize = 1024
	}
	return &MemoryStore{
		items:   make(map[string]*list.Element, maxSize),
		order:   list.New(),
		maxSize: maxSize,
		ttl:     ttl,
		now:     time.Now,
	}
}

func (m *MemoryStore) Save(_ context.Context, id string, report scoring.Report) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	exp := time.Time{}
	if m.ttl > 0 {
		exp = m.now().Add(m.ttl)
	}

	if elem, ok := m.items[id]; ok {
		entry := elem.Value.(*memoryEntry)
		if !m.expired(entry) {
			return fmt.Errorf("%w: %s", ErrExists, id)
		}
		entry.report = report
		entry.expiresAt = exp
		m.order.MoveToFront(elem)
		return nil
	}

	elem := m.order.PushFront(&memoryEntry{id: id, report: report, expiresAt: exp})
	m.items[id] = elem
	if len(m.items) > m.maxSize {
		m.removeElement(m.order.Back())
	}
	return nil
}

func (m *MemoryStore) Load(_ context.Context, id string) (scoring.Report, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	elem, ok := m.items[id]
	if !ok {
		return scoring.Report{}, ErrNotFound
	}
	entry := elem.Value.(*memoryEntry)
	if m.expired(entry) {
		m.removeElement(elem)
		return scoring.Report{}, ErrNotFound
	}
	m.order.MoveToFront(elem)
	return entry.report, nil
}

// Len returns the number of entries held, expired ones included.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

func (m *MemoryStore) Close() error {
	return nil
}

func (m *MemoryStore) expired(entry *memoryEntry) bool {
	return !entry.expiresAt.IsZero() && m.now().After(entry.expiresAt)
}

func (m *MemoryStore) removeElement(elem *list.Element) {
	if elem == nil {
		return
	}
	entry := elem.Value.(*memoryEntry)
	delete(m.items, entry.id)
	m.order.Remove(elem)
}
