package app

import (
	"fmt"
	"os"
	"time"

	"wds-go/internal/config"
	"wds-go/internal/content"
	"wds-go/internal/encryption"
	"wds-go/internal/index"
	"wds-go/internal/wds"
)

// WDSApp is the application layer between the CLI (or a host process) and
// the DataStore. It constructs all dependencies from config and manages
// their lifecycle on Close.
type WDSApp struct {
	cfg     *config.Config
	idx     wds.Index
	store   *wds.DataStore
	logFile *os.File
}

// NewWDSApp creates a fully wired WDSApp from the given config.
// The caller must call Close when done.
func NewWDSApp(cfg *config.Config) (*WDSApp, error) {
	enc, err := encryption.NewEncryptorFromConfig(cfg.Encryption)
	if err != nil {
		return nil, fmt.Errorf("creating encryptor: %w", err)
	}

	cs, err := content.NewContentStoreFromConfig(cfg.Content, cfg.DataDir, enc)
	if err != nil {
		return nil, fmt.Errorf("creating content store: %w", err)
	}

	idx, err := index.NewIndexFromConfig(cfg.Index, cfg.DataDir, cfg.DefaultQuotaBytes)
	if err != nil {
		return nil, fmt.Errorf("creating index: %w", err)
	}

	instanceID := time.Now().UTC().Format("20060102T150405Z")
	logger, logFile, err := newLogger(cfg.LogDir, instanceID)
	if err != nil {
		idx.Close()
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	store := wds.NewDataStore(idx, cs, &slogAdapter{l: logger}, wds.RealClock{}, wds.UUIDGenerator{})

	return &WDSApp{
		cfg:     cfg,
		idx:     idx,
		store:   store,
		logFile: logFile,
	}, nil
}

// Store returns the wired DataStore.
func (a *WDSApp) Store() *wds.DataStore {
	return a.store
}

// GarbageCollect runs one collection pass.
func (a *WDSApp) GarbageCollect() (wds.GcStats, error) {
	return a.store.GarbageCollect()
}

// Usage returns the quota accounting row for one owner.
func (a *WDSApp) Usage(owner string) (*wds.UserQuota, error) {
	return a.store.QuotaForUser(wds.DID(owner))
}

// SetQuotaLimit adjusts an owner's byte budget.
func (a *WDSApp) SetQuotaLimit(owner string, quotaBytes int64) error {
	return a.store.SetQuotaLimit(wds.DID(owner), quotaBytes)
}

// Close closes the DataStore (which closes the index) and the log file.
func (a *WDSApp) Close() error {
	err := a.store.Close()

	if a.logFile != nil {
		a.logFile.Close()
	}

	return err
}
