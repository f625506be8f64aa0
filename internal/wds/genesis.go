package wds

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math"
)

// NonceSize is the length of a genesis nonce.
const NonceSize = 16

// Genesis is the immutable creation descriptor of a record. The record id
// is derived from its canonical encoding, and that same encoding doubles as
// the record's initial snapshot.
type Genesis struct {
	Creator DID
	Created uint64 // unix seconds
	Nonce   [NonceSize]byte
	Schema  string
}

// Validate rejects descriptors that cannot be encoded canonically.
func (g Genesis) Validate() error {
	if err := g.Creator.Validate(); err != nil {
		return err
	}
	if g.Schema == "" {
		return fmt.Errorf("%w: empty schema", ErrInvalidInput)
	}
	if len(g.Creator) > math.MaxUint16 || len(g.Schema) > math.MaxUint16 {
		return fmt.Errorf("%w: genesis field too long", ErrInvalidInput)
	}
	return nil
}

// Encode returns the canonical byte form of the descriptor:
// u16 creator length, creator, u64 created, 16 nonce bytes,
// u16 schema length, schema. All integers big-endian.
func (g Genesis) Encode() []byte {
	buf := make([]byte, 0, 2+len(g.Creator)+8+NonceSize+2+len(g.Schema))
	buf = binary.BigEndian.AppendUint16(buf, uint16(len(g.Creator)))
	buf = append(buf, g.Creator...)
	buf = binary.BigEndian.AppendUint64(buf, g.Created)
	buf = append(buf, g.Nonce[:]...)
	buf = binary.BigEndian.AppendUint16(buf, uint16(len(g.Schema)))
	buf = append(buf, g.Schema...)
	return buf
}

// RecordID derives the record id from the canonical encoding.
func (g Genesis) RecordID() RecordID {
	sum := sha256.Sum256(g.Encode())
	return RecordID(hex.EncodeToString(sum[:]))
}
