package store

import (
	"sort"
	"sync"

	blink "github.com/blinkmojo/blink/pkg"
)

// interface guard ensures Mock implements blink.Store
var _ blink.Store = &Mock{}

type Mock struct {
	mu      sync.Mutex
	bundles map[blink.Bytes32]blink.BundleRecord
	order   []blink.Bytes32 // insertion order
}

// NewMock returns a blink.Store implementor that keeps bundles in memory
func NewMock() *Mock {
	return &Mock{
		bundles: make(map[blink.Bytes32]blink.BundleRecord, 10),
	}
}

func (m *Mock) StoreSpendBundle(rec blink.BundleRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.bundles[rec.Name]; exists {
		return blink.NewErr(blink.AlreadyExists, "spend bundle already exists: %v", rec.Name)
	}
	m.bundles[rec.Name] = rec
	m.order = append(m.order, rec.Name)
	return nil
}

func (m *Mock) GetSpendBundle(name blink.Bytes32) (blink.BundleRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.bundles[name]
	if !ok {
		return blink.BundleRecord{}, blink.NewErr(blink.NotFound, "spend bundle not found: %v", name)
	}
	return v, nil
}

// ListSpendBundles pages newest first; cursor is an index into insertion order plus one.
func (m *Mock) ListSpendBundles(cursor int, limit int) (items []blink.BundleRecord, next_cursor int, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	idx := make([]int, 0, len(m.order))
	for i := range m.order {
		if cursor == 0 || i+1 < cursor {
			idx = append(idx, i)
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(idx)))
	for _, i := range idx {
		if len(items) == limit {
			break
		}
		items = append(items, m.bundles[m.order[i]])
		next_cursor = i + 1
	}
	if len(items) < limit || next_cursor == 1 {
		next_cursor = 0
	}
	return items, next_cursor, nil
}

func (m *Mock) Close() {}
