package wds

import (
	"encoding/hex"
	"fmt"
)

// SyncPeerSize is the length of a peer public key.
const SyncPeerSize = 32

// SyncPeer is a remote node's public identity, registered against a
// (record, owner) pin so the external sync transport knows which peers
// receive traffic for that record.
type SyncPeer [SyncPeerSize]byte

// SyncPeerFromBytes builds a SyncPeer from a raw 32-byte public key.
func SyncPeerFromBytes(b []byte) (SyncPeer, error) {
	var p SyncPeer
	if len(b) != SyncPeerSize {
		return p, fmt.Errorf("%w: sync peer key must be %d bytes, got %d", ErrInvalidInput, SyncPeerSize, len(b))
	}
	copy(p[:], b)
	return p, nil
}

// Bytes returns the raw public key.
func (p SyncPeer) Bytes() []byte {
	b := make([]byte, SyncPeerSize)
	copy(b, p[:])
	return b
}

func (p SyncPeer) String() string {
	return hex.EncodeToString(p[:])
}
