package encryption

import (
	"fmt"

	"wds-go/internal/config"
	"wds-go/internal/wds"
)

// NewEncryptorFromConfig creates an Encryptor implementation based on the
// encryption config type. An empty type means no at-rest encryption.
func NewEncryptorFromConfig(cfg config.EncryptionConfig) (wds.Encryptor, error) {
	switch cfg.Type {
	case "", "none":
		return NewNullEncryptor(), nil
	case "age":
		if cfg.PublicKeyPath == "" || cfg.PrivateKeyPath == "" {
			return nil, fmt.Errorf("age encryption requires public_key_path and private_key_path")
		}
		return NewAgeEncryptor(cfg), nil
	default:
		return nil, fmt.Errorf("unknown encryption type: %s", cfg.Type)
	}
}
