package wds

import (
	"errors"
	"fmt"
	"time"
)

// DataStoreView is the per-owner façade over the shared content store and
// index. Every operation is scoped to the view's DID; a view never sees
// another owner's records, quota or peers.
type DataStoreView struct {
	store *DataStore
	owner DID
}

// Owner returns the DID this view is scoped to.
func (v *DataStoreView) Owner() DID { return v.owner }

// CreateRecord derives the record id from the genesis descriptor, writes
// the initial snapshot (the canonical genesis encoding) and indexes it,
// then emits a Created event. Creation does not pin and does not charge
// quota: an unpinned record is eligible for immediate garbage collection
// until the caller pins it.
//
// Creating an id this owner already holds returns the existing id without
// rewriting — identical genesis means identical content by construction.
func (v *DataStoreView) CreateRecord(genesis Genesis) (RecordID, error) {
	if err := genesis.Validate(); err != nil {
		return "", err
	}
	id := genesis.RecordID()

	existing, err := v.store.index.GetRecord(v.owner, id)
	if err != nil {
		return "", fmt.Errorf("checking for existing record: %w", err)
	}
	if existing != nil {
		return id, nil
	}

	// File first, index second: a crash between the two orphans a file
	// but never leaves an index row pointing at missing bytes.
	snapshot := genesis.Encode()
	if err := v.store.content.WriteRecord(v.owner, id, snapshot); err != nil {
		return "", fmt.Errorf("writing snapshot: %w", err)
	}

	row := &RecordRow{
		ID:      id,
		Owner:   v.owner,
		Genesis: genesis,
		Size:    int64(len(snapshot)),
		Version: 0,
	}
	if err := v.store.index.CreateRecord(row); err != nil {
		return "", fmt.Errorf("indexing record: %w", err)
	}

	v.store.events.publish(SyncEvent{
		RecordID:  id,
		Owner:     v.owner,
		Type:      EventCreated,
		Timestamp: v.store.clock.Now(),
	})
	v.store.logger.Debug("record created", "record", id, "owner", v.owner)
	return id, nil
}

// GetRecord returns the owner's record, or nil when either the index row
// or the snapshot bytes are missing. A missing half is not-found, not a
// partial-data error.
func (v *DataStoreView) GetRecord(id RecordID) (*Record, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	row, err := v.store.index.GetRecord(v.owner, id)
	if err != nil {
		return nil, fmt.Errorf("reading index: %w", err)
	}
	if row == nil {
		return nil, nil
	}

	snapshot, err := v.store.content.ReadRecord(v.owner, id)
	if err != nil {
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}
	if snapshot == nil {
		return nil, nil
	}

	return &Record{ID: id, Genesis: row.Genesis, Snapshot: snapshot, Version: row.Version}, nil
}

// UpdateRecord re-exports the document's state and replaces the stored
// snapshot. The caller passes the version it read the record at; a
// mismatch with the stored version fails with ErrVersionConflict. The size
// delta is applied to the owner's quota atomically iff the owner holds a
// pin on the record, rejecting with ErrQuotaExceeded before any mutation.
//
// The index mutation runs before the file rewrite so a quota or version
// rejection never destroys the previous snapshot bytes.
func (v *DataStoreView) UpdateRecord(id RecordID, doc Document, fromVersion uint64) error {
	if err := id.Validate(); err != nil {
		return err
	}
	if doc == nil {
		return fmt.Errorf("%w: nil document", ErrInvalidInput)
	}

	snapshot, err := doc.ExportSnapshot()
	if err != nil {
		return fmt.Errorf("exporting snapshot: %w", err)
	}

	newVersion := doc.Version()
	if newVersion <= fromVersion {
		newVersion = fromVersion + 1
	}

	err = v.store.index.UpdateRecordSnapshot(v.owner, id, int64(len(snapshot)), fromVersion, newVersion)
	if err != nil {
		return err
	}

	if err := v.store.content.WriteRecord(v.owner, id, snapshot); err != nil {
		return fmt.Errorf("rewriting snapshot: %w", err)
	}

	v.store.logger.Debug("record updated", "record", id, "owner", v.owner, "version", newVersion)
	return nil
}

// DeleteRecord removes the owner's record: index row, the owner's pins
// (releasing quota) and sync peers in one transaction, then the snapshot
// file, then a Deleted event. No-op when absent. Other owners' pins on the
// same content keep their charge until they unpin.
func (v *DataStoreView) DeleteRecord(id RecordID) error {
	if err := id.Validate(); err != nil {
		return err
	}

	removed, err := v.store.index.DeleteRecord(v.owner, id)
	if err != nil {
		return fmt.Errorf("deleting index row: %w", err)
	}
	if !removed {
		return nil
	}

	// Index committed; a failed unlink leaks a file, never breaks the
	// index.
	if err := v.store.content.DeleteRecord(v.owner, id); err != nil {
		v.store.logger.Warn("leaking snapshot file after index delete", "record", id, "owner", v.owner, "error", err)
	}

	v.store.events.publish(SyncEvent{
		RecordID:  id,
		Owner:     v.owner,
		Type:      EventDeleted,
		Timestamp: v.store.clock.Now(),
	})
	v.store.logger.Debug("record deleted", "record", id, "owner", v.owner)
	return nil
}

// PinRecord creates a retention claim on a record. ttl of nil pins
// unbounded; otherwise the pin expires at now+ttl and becomes GC-eligible.
// The owner's first pin on a record charges their quota by the record's
// size; the charge and its limit check run in the same transaction as the
// pin insert.
func (v *DataStoreView) PinRecord(id RecordID, ttl *time.Duration) (PinID, error) {
	if err := id.Validate(); err != nil {
		return "", err
	}

	now := v.store.clock.Now()
	pin := &Pin{
		ID:       PinID(v.store.idgen.New()),
		RecordID: id,
		Owner:    v.owner,
		Created:  now,
	}
	if ttl != nil {
		expires := now.Add(*ttl)
		pin.Expires = &expires
	}

	if err := v.store.index.CreatePin(pin); err != nil {
		return "", err
	}

	v.store.logger.Debug("record pinned", "record", id, "owner", v.owner, "pin", pin.ID)
	return pin.ID, nil
}

// UnpinRecord revokes a retention claim. Removing the owner's last pin for
// a record releases their quota charge and cascades their sync peers for
// it. The record itself survives until a GC pass finds it with zero pins
// across all owners.
func (v *DataStoreView) UnpinRecord(id PinID) error {
	if id == "" {
		return fmt.Errorf("%w: empty pin id", ErrInvalidInput)
	}
	return v.store.index.DeletePin(v.owner, id)
}

// StoreBlob writes bytes into the shared content-addressed blob area and
// records the owner's reference, charging their quota on first reference.
// Identical bytes from any owner share one stored copy; each referencing
// owner pays full price in their own quota.
func (v *DataStoreView) StoreBlob(data []byte) (BlobID, error) {
	id := BlobIDForBytes(data)

	has, err := v.store.index.HasBlobRef(v.owner, id)
	if err != nil {
		return "", fmt.Errorf("checking blob reference: %w", err)
	}
	if has {
		return id, nil
	}

	if err := v.store.content.WriteBlob(id, data); err != nil {
		return "", fmt.Errorf("writing blob: %w", err)
	}

	err = v.store.index.AddBlobRef(v.owner, id, int64(len(data)), v.store.clock.Now())
	if err != nil {
		if errors.Is(err, ErrQuotaExceeded) {
			// Roll back freshly orphaned bytes; shared bytes someone
			// else references stay.
			if count, countErr := v.store.index.BlobRefCount(id); countErr == nil && count == 0 {
				if delErr := v.store.content.DeleteBlob(id); delErr != nil {
					v.store.logger.Warn("leaking blob after quota rejection", "blob", id, "error", delErr)
				}
			}
		}
		return "", err
	}

	v.store.logger.Debug("blob stored", "blob", id, "owner", v.owner, "size", len(data))
	return id, nil
}

// GetBlob returns the blob bytes, or nil when this owner holds no
// reference or the bytes are missing.
func (v *DataStoreView) GetBlob(id BlobID) ([]byte, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	has, err := v.store.index.HasBlobRef(v.owner, id)
	if err != nil {
		return nil, fmt.Errorf("checking blob reference: %w", err)
	}
	if !has {
		return nil, nil
	}
	return v.store.content.ReadBlob(id)
}

// DeleteBlob drops the owner's reference and releases their quota charge.
// The shared bytes are removed only when the last reference goes away.
func (v *DataStoreView) DeleteBlob(id BlobID) error {
	if err := id.Validate(); err != nil {
		return err
	}

	remaining, err := v.store.index.DeleteBlobRef(v.owner, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return err
	}
	if remaining == 0 {
		if err := v.store.content.DeleteBlob(id); err != nil {
			v.store.logger.Warn("leaking blob after last reference removed", "blob", id, "error", err)
		}
	}
	return nil
}

// AddSyncPeer registers a peer for the owner's pin on a record.
func (v *DataStoreView) AddSyncPeer(id RecordID, peer SyncPeer) error {
	if err := id.Validate(); err != nil {
		return err
	}
	return v.store.index.AddSyncPeer(v.owner, id, peer)
}

// RemoveSyncPeer removes a peer registration; no-op when absent.
func (v *DataStoreView) RemoveSyncPeer(id RecordID, peer SyncPeer) error {
	if err := id.Validate(); err != nil {
		return err
	}
	return v.store.index.RemoveSyncPeer(v.owner, id, peer)
}

// SetSyncPeers atomically replaces the owner's peer set for a record; a
// concurrent ListSyncPeers observes either the old set or the new set,
// never a mix.
func (v *DataStoreView) SetSyncPeers(id RecordID, peers []SyncPeer) error {
	if err := id.Validate(); err != nil {
		return err
	}
	return v.store.index.SetSyncPeers(v.owner, id, peers)
}

// ListSyncPeers returns the owner's peer set for a record.
func (v *DataStoreView) ListSyncPeers(id RecordID) ([]SyncPeer, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}
	return v.store.index.ListSyncPeers(v.owner, id)
}

// Quota returns the owner's current accounting row.
func (v *DataStoreView) Quota() (*UserQuota, error) {
	return v.store.index.Quota(v.owner)
}
