package wds

// ContentStore is durable byte-level persistence for record snapshots and
// blobs. Records are stored per owner; blobs live in a shared
// content-addressed area. Implementations report a missing object with a
// nil byte slice, not an error, so callers can distinguish not-found from
// an I/O failure. No retries happen at this layer.
type ContentStore interface {
	// WriteRecord persists snapshot bytes for the owner's record,
	// creating parent directories as needed. An existing snapshot is
	// replaced atomically.
	WriteRecord(owner DID, id RecordID, data []byte) error

	// ReadRecord returns the snapshot bytes, or nil when absent.
	ReadRecord(owner DID, id RecordID) ([]byte, error)

	// DeleteRecord removes the snapshot; no-op when absent.
	DeleteRecord(owner DID, id RecordID) error

	// WriteBlob persists blob bytes under their content address.
	// Idempotent: concurrent writers of identical content must not error.
	WriteBlob(id BlobID, data []byte) error

	// ReadBlob returns the blob bytes, or nil when absent.
	ReadBlob(id BlobID) ([]byte, error)

	// DeleteBlob removes the blob; no-op when absent.
	DeleteBlob(id BlobID) error
}

// Encryptor transforms stored bytes at rest. Content ids and quota sizes
// are always computed over plaintext; only the persisted form is
// transformed.
type Encryptor interface {
	Encrypt(plaintext []byte) ([]byte, error)
	Decrypt(ciphertext []byte) ([]byte, error)
}
