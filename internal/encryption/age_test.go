package encryption

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"wds-go/internal/config"
)

func newTestAgeEncryptor(t *testing.T) *AgeEncryptor {
	t.Helper()
	dir := t.TempDir()
	return NewAgeEncryptor(config.EncryptionConfig{
		Type:           "age",
		PublicKeyPath:  filepath.Join(dir, "wds.pub"),
		PrivateKeyPath: filepath.Join(dir, "wds.key"),
	})
}

func TestAgeEncryptor_Setup(t *testing.T) {
	enc := newTestAgeEncryptor(t)

	if enc.IsConfigured() {
		t.Fatal("IsConfigured() = true before Setup")
	}

	if err := enc.Setup(); err != nil {
		t.Fatalf("Setup() error = %v", err)
	}

	if !enc.IsConfigured() {
		t.Error("IsConfigured() = false after Setup")
	}

	// The private key must not be world readable.
	info, err := os.Stat(enc.privateKeyPath)
	if err != nil {
		t.Fatalf("stat private key: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("private key mode = %o, want 0600", perm)
	}
}

func TestAgeEncryptor_RoundTrip(t *testing.T) {
	enc := newTestAgeEncryptor(t)
	if err := enc.Setup(); err != nil {
		t.Fatalf("Setup() error = %v", err)
	}

	plaintext := []byte("snapshot bytes to protect")
	ciphertext, err := enc.Encrypt(plaintext)
	if err != nil {
		t.Fatalf("Encrypt() error = %v", err)
	}
	if bytes.Contains(ciphertext, plaintext) {
		t.Error("ciphertext contains the plaintext")
	}

	got, err := enc.Decrypt(ciphertext)
	if err != nil {
		t.Fatalf("Decrypt() error = %v", err)
	}
	if !bytes.Equal(got, plaintext) {
		t.Errorf("round trip = %q, want %q", got, plaintext)
	}
}

func TestAgeEncryptor_DecryptWithWrongKey(t *testing.T) {
	enc1 := newTestAgeEncryptor(t)
	enc2 := newTestAgeEncryptor(t)
	if err := enc1.Setup(); err != nil {
		t.Fatalf("Setup() error = %v", err)
	}
	if err := enc2.Setup(); err != nil {
		t.Fatalf("Setup() error = %v", err)
	}

	ciphertext, err := enc1.Encrypt([]byte("secret"))
	if err != nil {
		t.Fatalf("Encrypt() error = %v", err)
	}

	if _, err := enc2.Decrypt(ciphertext); err == nil {
		t.Error("Decrypt() with the wrong identity succeeded")
	}
}

func TestAgeEncryptor_MissingKeys(t *testing.T) {
	enc := newTestAgeEncryptor(t)

	if _, err := enc.Encrypt([]byte("x")); err == nil {
		t.Error("Encrypt() without keys succeeded")
	}
	if _, err := enc.Decrypt([]byte("x")); err == nil {
		t.Error("Decrypt() without keys succeeded")
	}
}

func TestNullEncryptor(t *testing.T) {
	enc := NewNullEncryptor()
	data := []byte("pass through")

	ct, err := enc.Encrypt(data)
	if err != nil {
		t.Fatalf("Encrypt() error = %v", err)
	}
	if !bytes.Equal(ct, data) {
		t.Errorf("Encrypt() = %q, want unchanged %q", ct, data)
	}

	pt, err := enc.Decrypt(ct)
	if err != nil {
		t.Fatalf("Decrypt() error = %v", err)
	}
	if !bytes.Equal(pt, data) {
		t.Errorf("Decrypt() = %q, want unchanged %q", pt, data)
	}
}

func TestNewEncryptorFromConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.EncryptionConfig
		wantErr bool
	}{
		{name: "empty type is null", cfg: config.EncryptionConfig{}},
		{name: "none", cfg: config.EncryptionConfig{Type: "none"}},
		{name: "age with keys", cfg: config.EncryptionConfig{Type: "age", PublicKeyPath: "/k.pub", PrivateKeyPath: "/k.key"}},
		{name: "age without keys", cfg: config.EncryptionConfig{Type: "age"}, wantErr: true},
		{name: "unknown type", cfg: config.EncryptionConfig{Type: "rot13"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enc, err := NewEncryptorFromConfig(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && enc == nil {
				t.Error("returned nil encryptor without error")
			}
		})
	}
}
