package index

import (
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"wds-go/internal/index/migrations"
	"wds-go/internal/wds"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteIndex implements wds.Index on a single SQLite database. Every
// mutation that touches user_quotas runs in the same transaction as the
// row change it accounts for, so quota checks are linearizable per owner.
type SQLiteIndex struct {
	db           *sql.DB
	path         string
	defaultQuota int64
}

// NewSQLiteIndex opens (or creates) the index at path and migrates it to
// the latest schema. path can be ":memory:" for tests. defaultQuota is the
// quota_bytes assigned to owners on first use.
func NewSQLiteIndex(path string, defaultQuota int64) (*SQLiteIndex, error) {
	db, err := OpenConnection(path)
	if err != nil {
		return nil, err
	}

	if err := migrations.MigrateUp(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating index: %w", err)
	}

	return &SQLiteIndex{db: db, path: path, defaultQuota: defaultQuota}, nil
}

// NewSQLiteIndexFromDB wraps an existing, already migrated connection.
func NewSQLiteIndexFromDB(db *sql.DB, defaultQuota int64) *SQLiteIndex {
	return &SQLiteIndex{db: db, defaultQuota: defaultQuota}
}

// OpenConnection opens and configures a SQLite connection with the
// PRAGMAs the index relies on. Exported for tools and tests.
func OpenConnection(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open index: %w", err)
	}

	// Conflicting writers serialize on the connection rather than
	// failing immediately with SQLITE_BUSY.
	for _, pragma := range []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}
	return db, nil
}

// Record operations

func (s *SQLiteIndex) CreateRecord(row *wds.RecordRow) error {
	_, err := s.db.Exec(
		`INSERT INTO records (id, owner_did, creator, schema, created, nonce, size, version)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		string(row.ID), string(row.Owner), string(row.Genesis.Creator), row.Genesis.Schema,
		int64(row.Genesis.Created), row.Genesis.Nonce[:], row.Size, int64(row.Version),
	)
	if err != nil {
		return fmt.Errorf("inserting record: %w", err)
	}
	return nil
}

func (s *SQLiteIndex) GetRecord(owner wds.DID, id wds.RecordID) (*wds.RecordRow, error) {
	row := &wds.RecordRow{ID: id, Owner: owner}
	var creator, schema string
	var created, version int64
	var nonce []byte

	err := s.db.QueryRow(
		`SELECT creator, schema, created, nonce, size, version
		 FROM records WHERE id = ? AND owner_did = ?`,
		string(id), string(owner),
	).Scan(&creator, &schema, &created, &nonce, &row.Size, &version)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("finding record: %w", err)
	}

	row.Genesis = wds.Genesis{Creator: wds.DID(creator), Created: uint64(created), Schema: schema}
	copy(row.Genesis.Nonce[:], nonce)
	row.Version = uint64(version)
	return row, nil
}

func (s *SQLiteIndex) UpdateRecordSnapshot(owner wds.DID, id wds.RecordID, newSize int64, fromVersion, newVersion uint64) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	var oldSize, storedVersion int64
	err = tx.QueryRow(
		`SELECT size, version FROM records WHERE id = ? AND owner_did = ?`,
		string(id), string(owner),
	).Scan(&oldSize, &storedVersion)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: record %s", wds.ErrNotFound, id)
	} else if err != nil {
		return fmt.Errorf("finding record: %w", err)
	}

	if uint64(storedVersion) != fromVersion {
		return fmt.Errorf("%w: record %s is at version %d, update is from version %d",
			wds.ErrVersionConflict, id, storedVersion, fromVersion)
	}

	// The size delta is charged only while the owner holds a pin; an
	// unpinned record was never charged in the first place.
	pinned, err := pairPinCount(tx, owner, id)
	if err != nil {
		return err
	}
	if pinned > 0 {
		delta := newSize - oldSize
		if err := chargeQuota(tx, owner, delta, s.defaultQuota); err != nil {
			return err
		}
		// Keep the pair's recorded charge in step with the new size so a
		// later release returns exactly what was charged.
		if _, err := tx.Exec(
			`UPDATE pins SET charged_bytes = charged_bytes + ?
			 WHERE record_id = ? AND owner_did = ? AND charged_bytes > 0`,
			delta, string(id), string(owner),
		); err != nil {
			return fmt.Errorf("adjusting pin charge: %w", err)
		}
	}

	if _, err := tx.Exec(
		`UPDATE records SET size = ?, version = ? WHERE id = ? AND owner_did = ?`,
		newSize, int64(newVersion), string(id), string(owner),
	); err != nil {
		return fmt.Errorf("updating record: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

func (s *SQLiteIndex) DeleteRecord(owner wds.DID, id wds.RecordID) (bool, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return false, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	var size int64
	err = tx.QueryRow(
		`SELECT size FROM records WHERE id = ? AND owner_did = ?`,
		string(id), string(owner),
	).Scan(&size)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	} else if err != nil {
		return false, fmt.Errorf("finding record: %w", err)
	}

	// Release whatever this owner's pins charged, then drop pins, peers
	// and the row itself. Other owners' pins are left alone.
	var charged int64
	if err := tx.QueryRow(
		`SELECT COALESCE(SUM(charged_bytes), 0) FROM pins WHERE record_id = ? AND owner_did = ?`,
		string(id), string(owner),
	).Scan(&charged); err != nil {
		return false, fmt.Errorf("summing pin charges: %w", err)
	}
	if charged > 0 {
		if err := chargeQuota(tx, owner, -charged, s.defaultQuota); err != nil {
			return false, err
		}
	}

	for _, stmt := range []string{
		`DELETE FROM pins WHERE record_id = ? AND owner_did = ?`,
		`DELETE FROM sync_peers WHERE record_id = ? AND owner_did = ?`,
		`DELETE FROM records WHERE id = ? AND owner_did = ?`,
	} {
		if _, err := tx.Exec(stmt, string(id), string(owner)); err != nil {
			return false, fmt.Errorf("deleting record rows: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("committing transaction: %w", err)
	}
	return true, nil
}

// Pin operations

func (s *SQLiteIndex) CreatePin(pin *wds.Pin) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	// The record must exist under some owner; pins are cross-owner
	// retention claims. Prefer the pinning owner's own copy for sizing.
	var size int64
	err = tx.QueryRow(
		`SELECT size FROM records WHERE id = ? ORDER BY owner_did = ? DESC LIMIT 1`,
		string(pin.RecordID), string(pin.Owner),
	).Scan(&size)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: record %s", wds.ErrNotFound, pin.RecordID)
	} else if err != nil {
		return fmt.Errorf("finding record: %w", err)
	}

	existing, err := pairPinCount(tx, pin.Owner, pin.RecordID)
	if err != nil {
		return err
	}

	// First pin by this owner carries the pair's quota charge; later
	// pins ride along for free.
	var charged int64
	if existing == 0 {
		if err := chargeQuota(tx, pin.Owner, size, s.defaultQuota); err != nil {
			return err
		}
		charged = size
	}

	var expires sql.NullInt64
	if pin.Expires != nil {
		expires = sql.NullInt64{Int64: pin.Expires.Unix(), Valid: true}
	}
	if _, err := tx.Exec(
		`INSERT INTO pins (id, record_id, owner_did, created, expires, charged_bytes)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		string(pin.ID), string(pin.RecordID), string(pin.Owner), pin.Created.Unix(), expires, charged,
	); err != nil {
		return fmt.Errorf("inserting pin: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

func (s *SQLiteIndex) DeletePin(owner wds.DID, id wds.PinID) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	var recordID string
	var charged int64
	err = tx.QueryRow(
		`SELECT record_id, charged_bytes FROM pins WHERE id = ? AND owner_did = ?`,
		string(id), string(owner),
	).Scan(&recordID, &charged)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: pin %s", wds.ErrNotFound, id)
	} else if err != nil {
		return fmt.Errorf("finding pin: %w", err)
	}

	if _, err := tx.Exec(`DELETE FROM pins WHERE id = ?`, string(id)); err != nil {
		return fmt.Errorf("deleting pin: %w", err)
	}

	if err := settlePairCharge(tx, owner, wds.RecordID(recordID), charged, s.defaultQuota); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// settlePairCharge runs after pins of a (record, owner) pair were deleted
// inside tx. When pins remain, a removed charge moves onto one of them;
// when the pair emptied, the charge is released and the owner's sync peers
// for the record cascade away.
func settlePairCharge(tx *sql.Tx, owner wds.DID, recordID wds.RecordID, removedCharge int64, defaultQuota int64) error {
	var survivor string
	err := tx.QueryRow(
		`SELECT id FROM pins WHERE record_id = ? AND owner_did = ? ORDER BY created LIMIT 1`,
		string(recordID), string(owner),
	).Scan(&survivor)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if removedCharge > 0 {
			if err := chargeQuota(tx, owner, -removedCharge, defaultQuota); err != nil {
				return err
			}
		}
		if _, err := tx.Exec(
			`DELETE FROM sync_peers WHERE record_id = ? AND owner_did = ?`,
			string(recordID), string(owner),
		); err != nil {
			return fmt.Errorf("cascading sync peers: %w", err)
		}
	case err != nil:
		return fmt.Errorf("finding surviving pin: %w", err)
	default:
		if removedCharge > 0 {
			if _, err := tx.Exec(
				`UPDATE pins SET charged_bytes = charged_bytes + ? WHERE id = ?`,
				removedCharge, survivor,
			); err != nil {
				return fmt.Errorf("transferring pin charge: %w", err)
			}
		}
	}
	return nil
}

// Blob operations

func (s *SQLiteIndex) AddBlobRef(owner wds.DID, id wds.BlobID, size int64, created time.Time) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRow(
		`SELECT 1 FROM blobs WHERE id = ? AND owner_did = ?`,
		string(id), string(owner),
	).Scan(&exists)
	if err == nil {
		return nil // Already referenced and charged
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("checking blob reference: %w", err)
	}

	if err := chargeQuota(tx, owner, size, s.defaultQuota); err != nil {
		return err
	}

	if _, err := tx.Exec(
		`INSERT INTO blobs (id, owner_did, size, created) VALUES (?, ?, ?, ?)`,
		string(id), string(owner), size, created.Unix(),
	); err != nil {
		return fmt.Errorf("inserting blob reference: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

func (s *SQLiteIndex) HasBlobRef(owner wds.DID, id wds.BlobID) (bool, error) {
	var exists int
	err := s.db.QueryRow(
		`SELECT 1 FROM blobs WHERE id = ? AND owner_did = ?`,
		string(id), string(owner),
	).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	} else if err != nil {
		return false, fmt.Errorf("checking blob reference: %w", err)
	}
	return true, nil
}

func (s *SQLiteIndex) BlobRefCount(id wds.BlobID) (int64, error) {
	var count int64
	err := s.db.QueryRow(`SELECT COUNT(*) FROM blobs WHERE id = ?`, string(id)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting blob references: %w", err)
	}
	return count, nil
}

func (s *SQLiteIndex) DeleteBlobRef(owner wds.DID, id wds.BlobID) (int64, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	var size int64
	err = tx.QueryRow(
		`SELECT size FROM blobs WHERE id = ? AND owner_did = ?`,
		string(id), string(owner),
	).Scan(&size)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("%w: blob %s", wds.ErrNotFound, id)
	} else if err != nil {
		return 0, fmt.Errorf("finding blob reference: %w", err)
	}

	if _, err := tx.Exec(
		`DELETE FROM blobs WHERE id = ? AND owner_did = ?`,
		string(id), string(owner),
	); err != nil {
		return 0, fmt.Errorf("deleting blob reference: %w", err)
	}

	if err := chargeQuota(tx, owner, -size, s.defaultQuota); err != nil {
		return 0, err
	}

	var remaining int64
	if err := tx.QueryRow(
		`SELECT COUNT(*) FROM blobs WHERE id = ?`, string(id),
	).Scan(&remaining); err != nil {
		return 0, fmt.Errorf("counting remaining references: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing transaction: %w", err)
	}
	return remaining, nil
}

// Sync peer operations

func (s *SQLiteIndex) AddSyncPeer(owner wds.DID, id wds.RecordID, peer wds.SyncPeer) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	if err := requirePair(tx, owner, id); err != nil {
		return err
	}

	if _, err := tx.Exec(
		`INSERT OR IGNORE INTO sync_peers (record_id, owner_did, peer_pubkey) VALUES (?, ?, ?)`,
		string(id), string(owner), peer.Bytes(),
	); err != nil {
		return fmt.Errorf("inserting sync peer: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

func (s *SQLiteIndex) RemoveSyncPeer(owner wds.DID, id wds.RecordID, peer wds.SyncPeer) error {
	_, err := s.db.Exec(
		`DELETE FROM sync_peers WHERE record_id = ? AND owner_did = ? AND peer_pubkey = ?`,
		string(id), string(owner), peer.Bytes(),
	)
	if err != nil {
		return fmt.Errorf("deleting sync peer: %w", err)
	}
	return nil
}

func (s *SQLiteIndex) SetSyncPeers(owner wds.DID, id wds.RecordID, peers []wds.SyncPeer) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	if len(peers) > 0 {
		if err := requirePair(tx, owner, id); err != nil {
			return err
		}
	}

	if _, err := tx.Exec(
		`DELETE FROM sync_peers WHERE record_id = ? AND owner_did = ?`,
		string(id), string(owner),
	); err != nil {
		return fmt.Errorf("clearing sync peers: %w", err)
	}

	for _, peer := range peers {
		if _, err := tx.Exec(
			`INSERT OR IGNORE INTO sync_peers (record_id, owner_did, peer_pubkey) VALUES (?, ?, ?)`,
			string(id), string(owner), peer.Bytes(),
		); err != nil {
			return fmt.Errorf("inserting sync peer: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

func (s *SQLiteIndex) ListSyncPeers(owner wds.DID, id wds.RecordID) ([]wds.SyncPeer, error) {
	rows, err := s.db.Query(
		`SELECT peer_pubkey FROM sync_peers WHERE record_id = ? AND owner_did = ?`,
		string(id), string(owner),
	)
	if err != nil {
		return nil, fmt.Errorf("listing sync peers: %w", err)
	}
	defer rows.Close()

	var peers []wds.SyncPeer
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scanning sync peer: %w", err)
		}
		peer, err := wds.SyncPeerFromBytes(raw)
		if err != nil {
			return nil, fmt.Errorf("decoding sync peer: %w", err)
		}
		peers = append(peers, peer)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing sync peers: %w", err)
	}

	sort.Slice(peers, func(i, j int) bool {
		return string(peers[i][:]) < string(peers[j][:])
	})
	return peers, nil
}

// requirePair verifies the owner holds a pin on the record; peers hang off
// pins and cascade with them.
func requirePair(tx *sql.Tx, owner wds.DID, id wds.RecordID) error {
	count, err := pairPinCount(tx, owner, id)
	if err != nil {
		return err
	}
	if count == 0 {
		return fmt.Errorf("%w: owner %s has no pin on record %s", wds.ErrNotFound, owner, id)
	}
	return nil
}

func pairPinCount(tx *sql.Tx, owner wds.DID, id wds.RecordID) (int64, error) {
	var count int64
	err := tx.QueryRow(
		`SELECT COUNT(*) FROM pins WHERE record_id = ? AND owner_did = ?`,
		string(id), string(owner),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting pins: %w", err)
	}
	return count, nil
}

// Quota operations

func (s *SQLiteIndex) Quota(owner wds.DID) (*wds.UserQuota, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	if err := ensureQuotaRow(tx, owner, s.defaultQuota); err != nil {
		return nil, err
	}

	quota := &wds.UserQuota{Owner: owner}
	if err := tx.QueryRow(
		`SELECT bytes_used, quota_bytes FROM user_quotas WHERE owner_did = ?`,
		string(owner),
	).Scan(&quota.BytesUsed, &quota.QuotaBytes); err != nil {
		return nil, fmt.Errorf("reading quota: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing transaction: %w", err)
	}
	return quota, nil
}

func (s *SQLiteIndex) SetQuotaLimit(owner wds.DID, quotaBytes int64) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	if err := ensureQuotaRow(tx, owner, s.defaultQuota); err != nil {
		return err
	}
	if _, err := tx.Exec(
		`UPDATE user_quotas SET quota_bytes = ? WHERE owner_did = ?`,
		quotaBytes, string(owner),
	); err != nil {
		return fmt.Errorf("updating quota limit: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

func ensureQuotaRow(tx *sql.Tx, owner wds.DID, defaultQuota int64) error {
	_, err := tx.Exec(
		`INSERT INTO user_quotas (owner_did, bytes_used, quota_bytes) VALUES (?, 0, ?)
		 ON CONFLICT (owner_did) DO NOTHING`,
		string(owner), defaultQuota,
	)
	if err != nil {
		return fmt.Errorf("ensuring quota row: %w", err)
	}
	return nil
}

// chargeQuota applies a byte delta to the owner's accounting row. Positive
// deltas are check-then-act in a single statement so concurrent writers
// for the same owner cannot both slip under the limit; negative deltas
// floor at zero.
func chargeQuota(tx *sql.Tx, owner wds.DID, delta int64, defaultQuota int64) error {
	if err := ensureQuotaRow(tx, owner, defaultQuota); err != nil {
		return err
	}

	if delta <= 0 {
		_, err := tx.Exec(
			`UPDATE user_quotas SET bytes_used = MAX(bytes_used + ?, 0) WHERE owner_did = ?`,
			delta, string(owner),
		)
		if err != nil {
			return fmt.Errorf("releasing quota: %w", err)
		}
		return nil
	}

	res, err := tx.Exec(
		`UPDATE user_quotas SET bytes_used = bytes_used + ?1
		 WHERE owner_did = ?2 AND bytes_used + ?1 <= quota_bytes`,
		delta, string(owner),
	)
	if err != nil {
		return fmt.Errorf("charging quota: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("charging quota: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: owner %s needs %d more bytes", wds.ErrQuotaExceeded, owner, delta)
	}
	return nil
}

// Garbage collection

func (s *SQLiteIndex) Sweep(now time.Time) (*wds.GcResult, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	result := &wds.GcResult{}

	// Phase 1: expired pins. Collected before deletion so pair charges
	// can be settled exactly once per (record, owner).
	type pairKey struct {
		record wds.RecordID
		owner  wds.DID
	}
	pairCharges := make(map[pairKey]int64)

	rows, err := tx.Query(
		`SELECT id, record_id, owner_did, charged_bytes FROM pins
		 WHERE expires IS NOT NULL AND expires < ?`,
		now.Unix(),
	)
	if err != nil {
		return nil, fmt.Errorf("finding expired pins: %w", err)
	}
	for rows.Next() {
		var pinID, recordID, owner string
		var charged int64
		if err := rows.Scan(&pinID, &recordID, &owner, &charged); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning expired pin: %w", err)
		}
		result.ExpiredPins = append(result.ExpiredPins, wds.ExpiredPin{
			PinID:    wds.PinID(pinID),
			RecordID: wds.RecordID(recordID),
			Owner:    wds.DID(owner),
		})
		pairCharges[pairKey{wds.RecordID(recordID), wds.DID(owner)}] += charged
	}
	if err := rows.Close(); err != nil {
		return nil, fmt.Errorf("reading expired pins: %w", err)
	}

	if len(result.ExpiredPins) > 0 {
		if _, err := tx.Exec(
			`DELETE FROM pins WHERE expires IS NOT NULL AND expires < ?`, now.Unix(),
		); err != nil {
			return nil, fmt.Errorf("deleting expired pins: %w", err)
		}
		for pair, charged := range pairCharges {
			if err := settlePairCharge(tx, pair.owner, pair.record, charged, s.defaultQuota); err != nil {
				return nil, err
			}
		}
	}

	// Phase 2: records left with zero pins from any owner. Runs after the
	// expiry deletions in the same transaction, so a record losing its
	// last pin above is collected here, and a pin committed concurrently
	// keeps its record alive.
	deadRows, err := tx.Query(
		`SELECT r.id, r.owner_did FROM records r
		 WHERE NOT EXISTS (SELECT 1 FROM pins p WHERE p.record_id = r.id)`,
	)
	if err != nil {
		return nil, fmt.Errorf("finding unpinned records: %w", err)
	}
	for deadRows.Next() {
		var id, owner string
		if err := deadRows.Scan(&id, &owner); err != nil {
			deadRows.Close()
			return nil, fmt.Errorf("scanning unpinned record: %w", err)
		}
		result.DeadRecords = append(result.DeadRecords, wds.DeadRecord{
			ID:    wds.RecordID(id),
			Owner: wds.DID(owner),
		})
	}
	if err := deadRows.Close(); err != nil {
		return nil, fmt.Errorf("reading unpinned records: %w", err)
	}

	for _, dead := range result.DeadRecords {
		if _, err := tx.Exec(
			`DELETE FROM records WHERE id = ? AND owner_did = ?`,
			string(dead.ID), string(dead.Owner),
		); err != nil {
			return nil, fmt.Errorf("deleting record row: %w", err)
		}
		if _, err := tx.Exec(
			`DELETE FROM sync_peers WHERE record_id = ?`, string(dead.ID),
		); err != nil {
			return nil, fmt.Errorf("cascading sync peers: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing transaction: %w", err)
	}
	return result, nil
}

// Path returns the index file path (or ":memory:").
func (s *SQLiteIndex) Path() string {
	return s.path
}

// CheckMigrations verifies the index schema is up-to-date.
func (s *SQLiteIndex) CheckMigrations() error {
	return migrations.CheckDBMigrationStatus(s.db)
}

// Close closes the index connection.
func (s *SQLiteIndex) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Compile-time check that SQLiteIndex implements wds.Index
var _ wds.Index = (*SQLiteIndex)(nil)
