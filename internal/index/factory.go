package index

import (
	"fmt"
	"path/filepath"

	"wds-go/internal/config"
	"wds-go/internal/wds"
)

// IndexFileName is the index database file inside the data directory.
const IndexFileName = "index.db"

// NewIndexFromConfig creates an Index implementation based on the index
// config type.
func NewIndexFromConfig(cfg config.IndexConfig, dataDir string, defaultQuota int64) (wds.Index, error) {
	switch cfg.Type {
	case "sqlite":
		if dataDir == "" {
			return nil, fmt.Errorf("data_dir required for sqlite index")
		}
		return NewSQLiteIndex(filepath.Join(dataDir, IndexFileName), defaultQuota)
	case "memory":
		return NewSQLiteIndex(":memory:", defaultQuota)
	default:
		return nil, fmt.Errorf("unknown index type: %s", cfg.Type)
	}
}
