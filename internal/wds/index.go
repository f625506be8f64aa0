package wds

import "time"

// RecordRow is the index's view of a stored record: everything except the
// snapshot bytes, which live in the content store.
type RecordRow struct {
	ID      RecordID
	Owner   DID
	Genesis Genesis
	Size    int64
	Version uint64
}

// ExpiredPin identifies a pin removed by a GC sweep.
type ExpiredPin struct {
	PinID    PinID
	RecordID RecordID
	Owner    DID
}

// DeadRecord identifies a record row removed by a GC sweep because no pin
// from any owner protected it.
type DeadRecord struct {
	ID    RecordID
	Owner DID
}

// GcResult reports what a single sweep transaction removed. The caller is
// responsible for deleting the corresponding snapshot files and emitting
// Deleted events.
type GcResult struct {
	ExpiredPins []ExpiredPin
	DeadRecords []DeadRecord
}

// Index is the single source of truth for existence, ownership, size,
// pin/peer relationships and quota. Every method that touches user_quotas
// runs co-transactionally with the row mutation it accounts for, so quota
// checks are linearizable per owner and partial effects are never
// observable.
//
// Read methods report absence with a nil result; mutations against absent
// rows return ErrNotFound.
type Index interface {
	// CreateRecord inserts a record row for its owner. The caller checks
	// for an existing row first; duplicate inserts fail.
	CreateRecord(row *RecordRow) error

	// GetRecord returns the owner's row for id, or nil when absent.
	GetRecord(owner DID, id RecordID) (*RecordRow, error)

	// UpdateRecordSnapshot records a snapshot rewrite: verifies the stored
	// version equals fromVersion (ErrVersionConflict otherwise), applies
	// the size delta to the owner's quota iff the owner currently holds a
	// pin on the record (ErrQuotaExceeded on overflow), and stores the new
	// size and version. All in one transaction.
	UpdateRecordSnapshot(owner DID, id RecordID, newSize int64, fromVersion, newVersion uint64) error

	// DeleteRecord removes the owner's record row together with the
	// owner's pins and sync peers for it, releasing any quota charge.
	// Returns false when the owner has no such row. Other owners' pins and
	// accounting are untouched.
	DeleteRecord(owner DID, id RecordID) (bool, error)

	// CreatePin inserts a pin row. When this is the owner's first pin for
	// the record it charges the owner's quota by the record's size with an
	// atomic limit check. Pinning a record no owner has returns
	// ErrNotFound.
	CreatePin(pin *Pin) error

	// DeletePin removes one of the owner's pins. When it was the owner's
	// last pin for the record, the quota charge is released and the
	// owner's sync peers for the record are cascaded away.
	DeletePin(owner DID, id PinID) error

	// AddBlobRef records that owner references blob id, charging their
	// quota on first reference. Re-adding an existing reference is a
	// no-op.
	AddBlobRef(owner DID, id BlobID, size int64, created time.Time) error

	// HasBlobRef reports whether owner references blob id.
	HasBlobRef(owner DID, id BlobID) (bool, error)

	// BlobRefCount returns how many owners reference blob id.
	BlobRefCount(id BlobID) (int64, error)

	// DeleteBlobRef removes the owner's reference, releasing their quota
	// charge, and returns how many other owners still reference the blob.
	DeleteBlobRef(owner DID, id BlobID) (remaining int64, err error)

	// AddSyncPeer registers a peer for the owner's pin on a record. The
	// owner must hold a pin on the record.
	AddSyncPeer(owner DID, id RecordID, peer SyncPeer) error

	// RemoveSyncPeer removes a peer registration; no-op when absent.
	RemoveSyncPeer(owner DID, id RecordID, peer SyncPeer) error

	// SetSyncPeers atomically replaces the owner's peer set for a record.
	// Concurrent readers never observe a partial replacement. A non-empty
	// set requires the owner to hold a pin on the record.
	SetSyncPeers(owner DID, id RecordID, peers []SyncPeer) error

	// ListSyncPeers returns the owner's peer set for a record, sorted by
	// key bytes.
	ListSyncPeers(owner DID, id RecordID) ([]SyncPeer, error)

	// Quota returns the owner's accounting row, creating it with the
	// default limit on first use.
	Quota(owner DID) (*UserQuota, error)

	// SetQuotaLimit adjusts the owner's byte budget.
	SetQuotaLimit(owner DID, quotaBytes int64) error

	// Sweep runs one GC transaction at the given instant: deletes expired
	// pins (releasing quota and cascading sync peers), then deletes every
	// record row left with zero pins across all owners. Expired-pin
	// removal strictly precedes the zero-pin scan, so a record losing its
	// last pin in this sweep is collected by this sweep.
	Sweep(now time.Time) (*GcResult, error)

	Close() error
}
