package content

import (
	"fmt"
	"os"
	"path/filepath"

	"wds-go/internal/wds"
)

// FileSystemStore is a filesystem-based implementation of
// wds.ContentStore. It lays data out as:
//
//	<root>/
//	  <hash(owner)[0:16]>/
//	    records/
//	      <id[0:2]>/<id>.snapshot    (per-owner record snapshots)
//	  blobs/
//	    <id[0:2]>/<id>               (shared content-addressed blobs)
//
// The two-character shard directories keep fan-out bounded. Writes go
// through a temp file and rename so readers never observe partial bytes.
type FileSystemStore struct {
	root string
	enc  wds.Encryptor
}

// NewFileSystemStore creates a store rooted at the given path. enc
// transforms bytes at rest; pass a null encryptor for plaintext storage.
func NewFileSystemStore(root string, enc wds.Encryptor) (*FileSystemStore, error) {
	if err := os.MkdirAll(filepath.Join(root, "blobs"), 0755); err != nil {
		return nil, fmt.Errorf("failed to create blob directory: %w", err)
	}
	return &FileSystemStore{root: root, enc: enc}, nil
}

func (s *FileSystemStore) recordPath(owner wds.DID, id wds.RecordID) string {
	return filepath.Join(s.root, owner.DirPrefix(), "records", wds.Shard(string(id)), string(id)+".snapshot")
}

func (s *FileSystemStore) blobPath(id wds.BlobID) string {
	return filepath.Join(s.root, "blobs", wds.Shard(string(id)), string(id))
}

func (s *FileSystemStore) WriteRecord(owner wds.DID, id wds.RecordID, data []byte) error {
	stored, err := s.enc.Encrypt(data)
	if err != nil {
		return fmt.Errorf("encrypting snapshot: %w", err)
	}
	return writeFileAtomic(s.recordPath(owner, id), stored)
}

func (s *FileSystemStore) ReadRecord(owner wds.DID, id wds.RecordID) ([]byte, error) {
	return s.readFile(s.recordPath(owner, id))
}

func (s *FileSystemStore) DeleteRecord(owner wds.DID, id wds.RecordID) error {
	return removeIfPresent(s.recordPath(owner, id))
}

func (s *FileSystemStore) WriteBlob(id wds.BlobID, data []byte) error {
	destPath := s.blobPath(id)

	// Content-addressed: an existing file already holds these bytes.
	if _, err := os.Stat(destPath); err == nil {
		return nil
	}

	stored, err := s.enc.Encrypt(data)
	if err != nil {
		return fmt.Errorf("encrypting blob: %w", err)
	}
	return writeFileAtomic(destPath, stored)
}

func (s *FileSystemStore) ReadBlob(id wds.BlobID) ([]byte, error) {
	return s.readFile(s.blobPath(id))
}

func (s *FileSystemStore) DeleteBlob(id wds.BlobID) error {
	return removeIfPresent(s.blobPath(id))
}

func (s *FileSystemStore) readFile(path string) ([]byte, error) {
	stored, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	data, err := s.enc.Decrypt(stored)
	if err != nil {
		return nil, fmt.Errorf("decrypting content: %w", err)
	}
	return data, nil
}

// writeFileAtomic writes data to destPath via a temp file and rename,
// creating parent directories as needed.
func writeFileAtomic(destPath string, data []byte) error {
	dir := filepath.Dir(destPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	// Temp file in the same directory so the rename stays atomic.
	tmpFile, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to write data: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	success = true
	return nil
}

func removeIfPresent(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// Compile-time check that FileSystemStore implements wds.ContentStore
var _ wds.ContentStore = (*FileSystemStore)(nil)
