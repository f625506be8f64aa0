package content

import (
	"context"
	"fmt"

	"wds-go/internal/config"
	"wds-go/internal/wds"
)

// NewContentStoreFromConfig creates a ContentStore implementation based on
// the content config type.
func NewContentStoreFromConfig(cfg config.ContentConfig, dataDir string, enc wds.Encryptor) (wds.ContentStore, error) {
	switch cfg.Type {
	case "filesystem":
		if dataDir == "" {
			return nil, fmt.Errorf("data_dir required for filesystem content store")
		}
		return NewFileSystemStore(dataDir, enc)
	case "memory":
		return NewMemoryStore(), nil
	case "s3":
		return NewS3Store(context.Background(), cfg, enc)
	default:
		return nil, fmt.Errorf("unknown content store type: %s", cfg.Type)
	}
}
