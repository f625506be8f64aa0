package wds

import "time"

// Record is a stored CRDT document snapshot together with its creation
// metadata. Records are immutable at the content level except through
// UpdateRecord, which replaces the snapshot wholesale.
type Record struct {
	ID       RecordID
	Genesis  Genesis
	Snapshot []byte
	Version  uint64
}

// Pin is a retention claim by one owner on one record. A record with zero
// pins across all owners is eligible for garbage collection. Pins are
// reference-counted per (record, owner): quota is charged when the pair's
// pin count goes from zero to one and released when it returns to zero.
type Pin struct {
	ID       PinID
	RecordID RecordID
	Owner    DID
	Created  time.Time
	Expires  *time.Time // nil = unbounded
}

// Expired reports whether the pin's TTL has elapsed at the given instant.
func (p *Pin) Expired(now time.Time) bool {
	return p.Expires != nil && p.Expires.Before(now)
}

// UserQuota is an owner's byte budget. BytesUsed tracks the sum of record
// and blob sizes currently charged to the owner and never goes negative.
type UserQuota struct {
	Owner      DID
	BytesUsed  int64
	QuotaBytes int64
}

// Document is the contract this store consumes from the external CRDT
// library. The store treats documents as opaque snapshot exporters; merge
// semantics live entirely on the other side of this interface.
type Document interface {
	// ExportSnapshot serializes the document's full current state.
	ExportSnapshot() ([]byte, error)

	// ImportSnapshot replaces the document's state from serialized form.
	ImportSnapshot(data []byte) error

	// Version returns the document's oplog version, used for optimistic
	// concurrency in UpdateRecord.
	Version() uint64
}
