package wds

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// DID is an opaque decentralized identifier naming the owner of records,
// pins and quota. The store never interprets it beyond equality.
type DID string

// Validate rejects DIDs that cannot serve as owner keys. The store does not
// enforce any DID method syntax; it only refuses values that would break
// filesystem or index keying.
func (d DID) Validate() error {
	if d == "" {
		return fmt.Errorf("%w: empty DID", ErrInvalidInput)
	}
	if strings.ContainsAny(string(d), "/\\\x00") {
		return fmt.Errorf("%w: DID contains forbidden characters", ErrInvalidInput)
	}
	return nil
}

// DirPrefix returns the 16-hex-character directory name for this owner's
// record storage. This is path shortening, not an access control boundary;
// access control lives in the DataStoreView API.
func (d DID) DirPrefix() string {
	sum := sha256.Sum256([]byte(d))
	return hex.EncodeToString(sum[:])[:16]
}

// RecordID identifies a record. It is derived from the record's genesis
// descriptor, so two records with identical genesis content collide by
// design; callers vary the nonce for uniqueness.
type RecordID string

// BlobID is the content address of a blob: the hex SHA-256 of its bytes.
// Identical bytes always map to the same id, deduplicating storage across
// owners.
type BlobID string

// PinID identifies a single pin row.
type PinID string

// idHexLen is the length of a hex-encoded SHA-256 digest.
const idHexLen = sha256.Size * 2

func (id RecordID) Validate() error { return validateHexID(string(id), "record id") }
func (id BlobID) Validate() error   { return validateHexID(string(id), "blob id") }

func validateHexID(s, kind string) error {
	if len(s) != idHexLen {
		return fmt.Errorf("%w: %s must be %d hex characters, got %d", ErrInvalidInput, kind, idHexLen, len(s))
	}
	if _, err := hex.DecodeString(s); err != nil {
		return fmt.Errorf("%w: %s is not hex", ErrInvalidInput, kind)
	}
	return nil
}

// BlobIDForBytes computes the content address of data.
func BlobIDForBytes(data []byte) BlobID {
	sum := sha256.Sum256(data)
	return BlobID(hex.EncodeToString(sum[:]))
}

// Shard returns the two-character fan-out directory for an id.
func Shard(id string) string {
	return id[:2]
}
