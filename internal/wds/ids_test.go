package wds

import (
	"errors"
	"strings"
	"testing"
)

func TestDIDValidate(t *testing.T) {
	tests := []struct {
		name    string
		did     DID
		wantErr bool
	}{
		{name: "valid did", did: "did:key:z6MkAlice"},
		{name: "empty", did: "", wantErr: true},
		{name: "forward slash", did: "did:key/evil", wantErr: true},
		{name: "backslash", did: `did:key\evil`, wantErr: true},
		{name: "nul byte", did: DID("did:key:\x00"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.did.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidInput) {
				t.Errorf("error should wrap ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestDIDDirPrefix(t *testing.T) {
	p := DID("did:key:z6MkAlice").DirPrefix()
	if len(p) != 16 {
		t.Errorf("DirPrefix() length = %d, want 16", len(p))
	}
	if p != DID("did:key:z6MkAlice").DirPrefix() {
		t.Error("DirPrefix() not deterministic")
	}
	if p == DID("did:key:z6MkBob").DirPrefix() {
		t.Error("different DIDs produced the same prefix")
	}
	if strings.ToLower(p) != p {
		t.Errorf("DirPrefix() = %q, want lowercase hex", p)
	}
}

func TestBlobIDForBytes(t *testing.T) {
	// SHA-256 of the empty input is a well-known constant.
	got := BlobIDForBytes(nil)
	want := BlobID("e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855")
	if got != want {
		t.Errorf("BlobIDForBytes(nil) = %s, want %s", got, want)
	}

	if BlobIDForBytes([]byte("a")) == BlobIDForBytes([]byte("b")) {
		t.Error("different bytes produced the same blob id")
	}
	if err := got.Validate(); err != nil {
		t.Errorf("derived blob id failed validation: %v", err)
	}
}

func TestHexIDValidate(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		wantErr bool
	}{
		{name: "valid", id: strings.Repeat("ab", 32)},
		{name: "too short", id: "abcd", wantErr: true},
		{name: "too long", id: strings.Repeat("ab", 33), wantErr: true},
		{name: "not hex", id: strings.Repeat("zz", 32), wantErr: true},
		{name: "empty", id: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := RecordID(tt.id).Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("RecordID.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			err = BlobID(tt.id).Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("BlobID.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestShard(t *testing.T) {
	if got := Shard("ab12cd"); got != "ab" {
		t.Errorf("Shard() = %q, want %q", got, "ab")
	}
}
