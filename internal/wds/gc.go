package wds

// GcStats reports what one garbage collection pass reclaimed.
type GcStats struct {
	PinsRemoved    int
	RecordsRemoved int
}

// GarbageCollect runs one reclamation pass: expired pins are deleted (and
// their quota charges released, sync peers cascaded) strictly before
// records are scanned for zero remaining pins, so a record losing its last
// pin in this very pass is collected by it. A record keeps living as long
// as any owner holds an active pin, even when the requesting owner's pin
// expired — shared-cost semantics.
//
// The index transaction commits first; snapshot files are then removed
// best-effort. A failed unlink is logged and leaks a file rather than
// breaking the index, and re-running the pass is always safe. With no
// intervening mutations a second pass reports zeros.
func (s *DataStore) GarbageCollect() (GcStats, error) {
	now := s.clock.Now()

	result, err := s.index.Sweep(now)
	if err != nil {
		return GcStats{}, err
	}

	for _, rec := range result.DeadRecords {
		if err := s.content.DeleteRecord(rec.Owner, rec.ID); err != nil {
			s.logger.Warn("gc leaking snapshot file", "record", rec.ID, "owner", rec.Owner, "error", err)
		}
		s.events.publish(SyncEvent{
			RecordID:  rec.ID,
			Owner:     rec.Owner,
			Type:      EventDeleted,
			Timestamp: now,
		})
	}

	stats := GcStats{
		PinsRemoved:    len(result.ExpiredPins),
		RecordsRemoved: len(result.DeadRecords),
	}
	if stats.PinsRemoved > 0 || stats.RecordsRemoved > 0 {
		s.logger.Info("gc pass complete", "pins_removed", stats.PinsRemoved, "records_removed", stats.RecordsRemoved)
	}
	return stats, nil
}
