package content

import (
	"sync"

	"wds-go/internal/wds"
)

// MemoryStore is an in-memory implementation of wds.ContentStore, useful
// for testing. Safe for concurrent use.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string][]byte // owner-prefixed record id -> snapshot
	blobs   map[wds.BlobID][]byte
}

// NewMemoryStore creates an empty in-memory content store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string][]byte),
		blobs:   make(map[wds.BlobID][]byte),
	}
}

func recordKey(owner wds.DID, id wds.RecordID) string {
	return string(owner) + "/" + string(id)
}

func (m *MemoryStore) WriteRecord(owner wds.DID, id wds.RecordID, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[recordKey(owner, id)] = cloneBytes(data)
	return nil
}

func (m *MemoryStore) ReadRecord(owner wds.DID, id wds.RecordID) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.records[recordKey(owner, id)]
	if !ok {
		return nil, nil
	}
	return cloneBytes(data), nil
}

func (m *MemoryStore) DeleteRecord(owner wds.DID, id wds.RecordID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, recordKey(owner, id))
	return nil
}

func (m *MemoryStore) WriteBlob(id wds.BlobID, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	// Idempotent: identical content, identical key.
	m.blobs[id] = cloneBytes(data)
	return nil
}

func (m *MemoryStore) ReadBlob(id wds.BlobID) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.blobs[id]
	if !ok {
		return nil, nil
	}
	return cloneBytes(data), nil
}

func (m *MemoryStore) DeleteBlob(id wds.BlobID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.blobs, id)
	return nil
}

func cloneBytes(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

// Compile-time check that MemoryStore implements wds.ContentStore
var _ wds.ContentStore = (*MemoryStore)(nil)
