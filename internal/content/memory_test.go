package content

import (
	"bytes"
	"testing"

	"wds-go/internal/wds"
)

func TestMemoryStore(t *testing.T) {
	t.Run("record round trip", func(t *testing.T) {
		s := NewMemoryStore()
		id := testRecordID()

		if err := s.WriteRecord(testOwner, id, []byte("snap")); err != nil {
			t.Fatalf("WriteRecord() error = %v", err)
		}
		got, err := s.ReadRecord(testOwner, id)
		if err != nil {
			t.Fatalf("ReadRecord() error = %v", err)
		}
		if !bytes.Equal(got, []byte("snap")) {
			t.Errorf("ReadRecord() = %q, want snap", got)
		}

		// Scoped by owner.
		got, _ = s.ReadRecord("did:key:z6MkBob", id)
		if got != nil {
			t.Error("snapshot visible to another owner")
		}

		if err := s.DeleteRecord(testOwner, id); err != nil {
			t.Fatalf("DeleteRecord() error = %v", err)
		}
		got, _ = s.ReadRecord(testOwner, id)
		if got != nil {
			t.Error("record still readable after delete")
		}
	})

	t.Run("blob round trip", func(t *testing.T) {
		s := NewMemoryStore()
		data := []byte("blob")
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

	t.Run("missing reads are nil", func(t *testing.T) {
		s := NewMemoryStore()
		if got, err := s.ReadRecord(testOwner, testRecordID()); err != nil || got != nil {
			t.Errorf("ReadRecord() = %q, %v, want nil, nil", got, err)
		}
		if got, err := s.ReadBlob(wds.BlobIDForBytes([]byte("x"))); err != nil || got != nil {
			t.Errorf("ReadBlob() = %q, %v, want nil, nil", got, err)
		}
	})

	t.Run("stored bytes do not alias the caller's slice", func(t *testing.T) {
		s := NewMemoryStore()
		id := testRecordID()
		data := []byte("original")

		if err := s.WriteRecord(testOwner, id, data); err != nil {
			t.Fatalf("WriteRecord() error = %v", err)
		}
		data[0] = 'X'

		got, _ := s.ReadRecord(testOwner, id)
		if !bytes.Equal(got, []byte("original")) {
			t.Error("mutating the input slice changed stored bytes")
		}

		got[0] = 'Y'
		again, _ := s.ReadRecord(testOwner, id)
		if !bytes.Equal(again, []byte("original")) {
			t.Error("mutating a read result changed stored bytes")
		}
	})
}
