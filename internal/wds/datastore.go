package wds

// DataStore owns the shared infrastructure of the store: the content
// store, the index and the sync-event broadcaster. Callers obtain a
// DataStoreView scoped to one owner for all data operations; the DataStore
// itself only exposes cross-owner concerns (GC, quota administration,
// event subscription).
type DataStore struct {
	index   Index
	content ContentStore
	events  *broadcaster
	logger  Logger
	clock   Clock
	idgen   IDGenerator
}

// NewDataStore assembles a DataStore from its dependencies. Pass nil for
// logger, clock or idgen to get the production defaults.
func NewDataStore(index Index, content ContentStore, logger Logger, clock Clock, idgen IDGenerator) *DataStore {
	if logger == nil {
		logger = NewNopLogger()
	}
	if clock == nil {
		clock = RealClock{}
	}
	if idgen == nil {
		idgen = UUIDGenerator{}
	}
	return &DataStore{
		index:   index,
		content: content,
		events:  newBroadcaster(),
		logger:  logger,
		clock:   clock,
		idgen:   idgen,
	}
}

// ViewForUser returns a view scoping every operation to the given owner.
func (s *DataStore) ViewForUser(owner DID) (*DataStoreView, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}
	return &DataStoreView{store: s, owner: owner}, nil
}

// Subscribe registers a sync-event consumer. Multiple subscribers are
// permitted; each gets an independently buffered channel. Events are
// fire-and-forget: a subscriber that falls behind loses events, and events
// published before subscription are never replayed.
func (s *DataStore) Subscribe() (<-chan SyncEvent, func()) {
	return s.events.subscribe()
}

// SetQuotaLimit adjusts an owner's byte budget.
func (s *DataStore) SetQuotaLimit(owner DID, quotaBytes int64) error {
	if err := owner.Validate(); err != nil {
		return err
	}
	return s.index.SetQuotaLimit(owner, quotaBytes)
}

// QuotaForUser returns an owner's current accounting row.
func (s *DataStore) QuotaForUser(owner DID) (*UserQuota, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}
	return s.index.Quota(owner)
}

// Close tears down the event broadcaster and the index connection.
func (s *DataStore) Close() error {
	s.events.close()
	return s.index.Close()
}
