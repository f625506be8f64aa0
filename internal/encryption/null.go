package encryption

import "wds-go/internal/wds"

// NullEncryptor stores bytes as-is. This is the default: at-rest
// encryption is opt-in per deployment.
type NullEncryptor struct{}

func NewNullEncryptor() *NullEncryptor { return &NullEncryptor{} }

func (*NullEncryptor) Encrypt(plaintext []byte) ([]byte, error)  { return plaintext, nil }
func (*NullEncryptor) Decrypt(ciphertext []byte) ([]byte, error) { return ciphertext, nil }

// Compile-time check that NullEncryptor implements wds.Encryptor
var _ wds.Encryptor = (*NullEncryptor)(nil)
