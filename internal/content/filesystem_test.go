package content

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"wds-go/internal/config"
	"wds-go/internal/encryption"
	"wds-go/internal/wds"
)

func newAgeConfig(keyDir string) config.EncryptionConfig {
	return config.EncryptionConfig{
		Type:           "age",
		PublicKeyPath:  filepath.Join(keyDir, "wds.pub"),
		PrivateKeyPath: filepath.Join(keyDir, "wds.key"),
	}
}

const testOwner = wds.DID("did:key:z6MkAlice")

func testRecordID() wds.RecordID {
	g := wds.Genesis{Creator: testOwner, Created: 1770000000, Schema: "notes/v1"}
	return g.RecordID()
}

func newFSStore(t *testing.T) (*FileSystemStore, string) {
	t.Helper()
	root := t.TempDir()
	s, err := NewFileSystemStore(root, encryption.NewNullEncryptor())
	if err != nil {
		t.Fatalf("NewFileSystemStore() error = %v", err)
	}
	return s, root
}

func TestFileSystemStore_Records(t *testing.T) {
	t.Run("write read delete", func(t *testing.T) {
		s, _ := newFSStore(t)
		id := testRecordID()
		data := []byte("snapshot bytes")

		if err := s.WriteRecord(testOwner, id, data); err != nil {
			t.Fatalf("WriteRecord() error = %v", err)
		}
		got, err := s.ReadRecord(testOwner, id)
		if err != nil {
			t.Fatalf("ReadRecord() error = %v", err)
		}
		if !bytes.Equal(got, data) {
			t.Errorf("ReadRecord() = %q, want %q", got, data)
		}

		if err := s.DeleteRecord(testOwner, id); err != nil {
			t.Fatalf("DeleteRecord() error = %v", err)
		}
		got, err = s.ReadRecord(testOwner, id)
		if err != nil {
			t.Fatalf("ReadRecord() after delete error = %v", err)
		}
		if got != nil {
			t.Error("record still readable after delete")
		}
	})

	t.Run("missing record is nil, not an error", func(t *testing.T) {
		s, _ := newFSStore(t)
		got, err := s.ReadRecord(testOwner, testRecordID())
		if err != nil {
			t.Fatalf("ReadRecord() error = %v", err)
		}
		if got != nil {
			t.Errorf("ReadRecord() = %q, want nil", got)
		}
	})

	t.Run("deleting a missing record is a no-op", func(t *testing.T) {
		s, _ := newFSStore(t)
		if err := s.DeleteRecord(testOwner, testRecordID()); err != nil {
			t.Errorf("DeleteRecord() error = %v", err)
		}
	})

	t.Run("overwrite replaces content", func(t *testing.T) {
		s, _ := newFSStore(t)
		id := testRecordID()

		if err := s.WriteRecord(testOwner, id, []byte("v1")); err != nil {
			t.Fatalf("WriteRecord() error = %v", err)
		}
		if err := s.WriteRecord(testOwner, id, []byte("v2")); err != nil {
			t.Fatalf("second WriteRecord() error = %v", err)
		}
		got, _ := s.ReadRecord(testOwner, id)
		if !bytes.Equal(got, []byte("v2")) {
			t.Errorf("ReadRecord() = %q, want v2", got)
		}
	})

	t.Run("layout shards by owner hash and id prefix", func(t *testing.T) {
		s, root := newFSStore(t)
		id := testRecordID()

		if err := s.WriteRecord(testOwner, id, []byte("x")); err != nil {
			t.Fatalf("WriteRecord() error = %v", err)
		}

		want := filepath.Join(root, testOwner.DirPrefix(), "records", string(id)[:2], string(id)+".snapshot")
		if _, err := os.Stat(want); err != nil {
			t.Errorf("expected snapshot at %s: %v", want, err)
		}
	})

	t.Run("owners do not share record space", func(t *testing.T) {
		s, _ := newFSStore(t)
		id := testRecordID()
		other := wds.DID("did:key:z6MkBob")

		if err := s.WriteRecord(testOwner, id, []byte("mine")); err != nil {
			t.Fatalf("WriteRecord() error = %v", err)
		}
		got, err := s.ReadRecord(other, id)
		if err != nil {
			t.Fatalf("ReadRecord() error = %v", err)
		}
		if got != nil {
			t.Error("one owner's snapshot visible under another owner's path")
		}
	})

	t.Run("no temp files left behind", func(t *testing.T) {
		s, root := newFSStore(t)
		id := testRecordID()
		if err := s.WriteRecord(testOwner, id, []byte("x")); err != nil {
			t.Fatalf("WriteRecord() error = %v", err)
		}

		err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if !info.IsDir() && filepath.Base(path)[0] == '.' {
				t.Errorf("leftover temp file: %s", path)
			}
			return nil
		})
		if err != nil {
			t.Fatalf("walking store: %v", err)
		}
	})
}

func TestFileSystemStore_Blobs(t *testing.T) {
	t.Run("write read delete", func(t *testing.T) {
		s, _ := newFSStore(t)
		data := []byte("blob payload")
		id := wds.BlobIDForBytes(data)

		if err := s.WriteBlob(id, data); err != nil {
			t.Fatalf("WriteBlob() error = %v", err)
		}
		got, err := s.ReadBlob(id)
		if err != nil {
			t.Fatalf("ReadBlob() error = %v", err)
		}
		if !bytes.Equal(got, data) {
			t.Errorf("ReadBlob() = %q, want %q", got, data)
		}

		if err := s.DeleteBlob(id); err != nil {
			t.Fatalf("DeleteBlob() error = %v", err)
		}
		got, _ = s.ReadBlob(id)
		if got != nil {
			t.Error("blob still readable after delete")
		}
	})

	t.Run("rewrite of existing blob is a cheap no-op", func(t *testing.T) {
		s, root := newFSStore(t)
		data := []byte("stable bytes")
		id := wds.BlobIDForBytes(data)

		if err := s.WriteBlob(id, data); err != nil {
			t.Fatalf("WriteBlob() error = %v", err)
		}
		path := filepath.Join(root, "blobs", string(id)[:2], string(id))
		before, err := os.Stat(path)
		if err != nil {
			t.Fatalf("stat blob: %v", err)
		}

		if err := s.WriteBlob(id, data); err != nil {
			t.Fatalf("second WriteBlob() error = %v", err)
		}
		after, err := os.Stat(path)
		if err != nil {
			t.Fatalf("stat blob: %v", err)
		}
		if !after.ModTime().Equal(before.ModTime()) {
			t.Error("idempotent blob write rewrote the file")
		}
	})

	t.Run("missing blob is nil, not an error", func(t *testing.T) {
		s, _ := newFSStore(t)
		got, err := s.ReadBlob(wds.BlobIDForBytes([]byte("never written")))
		if err != nil {
			t.Fatalf("ReadBlob() error = %v", err)
		}
		if got != nil {
			t.Errorf("ReadBlob() = %q, want nil", got)
		}
	})
}

func TestFileSystemStore_Encryption(t *testing.T) {
	root := t.TempDir()
	keyDir := t.TempDir()

	enc := encryption.NewAgeEncryptor(newAgeConfig(keyDir))
	if err := enc.Setup(); err != nil {
		t.Fatalf("Setup() error = %v", err)
	}

	s, err := NewFileSystemStore(root, enc)
	if err != nil {
		t.Fatalf("NewFileSystemStore() error = %v", err)
	}

	id := testRecordID()
	plaintext := []byte("secret snapshot contents")
	if err := s.WriteRecord(testOwner, id, plaintext); err != nil {
		t.Fatalf("WriteRecord() error = %v", err)
	}

	// Bytes at rest must not be the plaintext.
	raw, err := os.ReadFile(filepath.Join(root, testOwner.DirPrefix(), "records", string(id)[:2], string(id)+".snapshot"))
	if err != nil {
		t.Fatalf("reading stored file: %v", err)
	}
	if bytes.Contains(raw, plaintext) {
		t.Error("stored file contains plaintext")
	}

	got, err := s.ReadRecord(testOwner, id)
	if err != nil {
		t.Fatalf("ReadRecord() error = %v", err)
	}
	if !bytes.Equal(got, plaintext) {
		t.Errorf("round trip = %q, want %q", got, plaintext)
	}
}
