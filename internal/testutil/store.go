package testutil

import (
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"wds-go/internal/content"
	"wds-go/internal/index"
	"wds-go/internal/wds"
)

// DefaultTestQuota is the byte budget given to every owner in tests unless
// a test overrides it with SetQuotaLimit.
const DefaultTestQuota = 1 << 20 // 1 MiB

// NewTestIndex creates an in-memory SQLite index with migrations applied.
// Closed automatically when the test finishes.
func NewTestIndex(t *testing.T) *index.SQLiteIndex {
	t.Helper()
	idx, err := index.NewSQLiteIndex(":memory:", DefaultTestQuota)
	if err != nil {
		t.Fatalf("creating test index: %v", err)
	}
	t.Cleanup(func() { idx.Close() })
	return idx
}

// TestStore bundles a fully wired in-memory DataStore with the stubs
// backing it, so tests can advance time or inspect stored bytes directly.
type TestStore struct {
	Store   *wds.DataStore
	Index   *index.SQLiteIndex
	Content *content.MemoryStore
	Clock   *StubClock
	IDGen   *StubIDGenerator
}

// NewTestStore assembles a DataStore over an in-memory index and content
// store, with a fixed clock and sequential pin ids.
func NewTestStore(t *testing.T) *TestStore {
	t.Helper()

	idx, err := index.NewSQLiteIndex(":memory:", DefaultTestQuota)
	if err != nil {
		t.Fatalf("creating test index: %v", err)
	}

	cs := content.NewMemoryStore()
	clock := FixedClock()
	idgen := NewStubIDGenerator()

	store := wds.NewDataStore(idx, cs, nil, clock, idgen)
	t.Cleanup(func() { store.Close() })

	return &TestStore{
		Store:   store,
		Index:   idx,
		Content: cs,
		Clock:   clock,
		IDGen:   idgen,
	}
}

// View returns a DataStoreView for the given owner, failing the test on an
// invalid DID.
func (ts *TestStore) View(t *testing.T, owner string) *wds.DataStoreView {
	t.Helper()
	v, err := ts.Store.ViewForUser(wds.DID(owner))
	if err != nil {
		t.Fatalf("creating view for %q: %v", owner, err)
	}
	return v
}

// SHA256Hex returns the SHA-256 checksum of data as a lowercase hex string.
// Matches the content-address format used for record and blob ids.
func SHA256Hex(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}
