package vault

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"yieldvault/crypto"
	"yieldvault/storage"
)

var positionKeyPrefix = []byte("vault/position/")

// Registry resolves persisted adapter names back to live adapter references.
// The daemon registers its configured farms here so bindings survive restarts.
type Registry struct {
	mu       sync.RWMutex
	adapters map[string]RewardAdapter
}

func NewRegistry() *Registry {
	return &Registry{adapters: make(map[string]RewardAdapter)}
}

// Register installs an adapter under its name, replacing any previous entry.
func (r *Registry) Register(adapter RewardAdapter) {
	if r == nil || adapter == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.adapters[adapterName(adapter)] = adapter
}

// Resolve looks up a live adapter by its registered name.
func (r *Registry) Resolve(name string) (RewardAdapter, bool) {
	if r == nil {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	adapter, ok := r.adapters[name]
	return adapter, ok
}

// Names lists the registered adapter names for diagnostics.
func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.adapters))
	for name := range r.adapters {
		names = append(names, name)
	}
	return names
}

type positionRecord struct {
	Owner   string `json:"owner"`
	Bound   bool   `json:"bound,omitempty"`
	Adapter string `json:"adapter,omitempty"`
	RefTag  uint64 `json:"refTag,omitempty"`
}

// PositionStore persists positions and their adapter bindings in a key-value
// database. Adapter references are stored by registered name and resolved
// through the registry on load.
type PositionStore struct {
	db       storage.Database
	registry *Registry
}

func NewPositionStore(db storage.Database, registry *Registry) *PositionStore {
	return &PositionStore{db: db, registry: registry}
}

func positionKey(id PositionID) []byte {
	return append(append([]byte(nil), positionKeyPrefix...), id.Bytes()...)
}

// GetPosition loads a position, returning nil with no error when the handle
// was never registered.
func (s *PositionStore) GetPosition(id PositionID) (*Position, error) {
	if s == nil || s.db == nil {
		return nil, errNilState
	}
	raw, err := s.db.Get(positionKey(id))
	if errors.Is(err, storage.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var record positionRecord
	if err := json.Unmarshal(raw, &record); err != nil {
		return nil, fmt.Errorf("vault store: decode position %s: %w", id, err)
	}
	owner, err := crypto.DecodeAddress(record.Owner)
	if err != nil {
		return nil, fmt.Errorf("vault store: decode owner for position %s: %w", id, err)
	}
	position := &Position{ID: id, Owner: owner}
	if record.Bound {
		adapter, ok := s.registry.Resolve(record.Adapter)
		if !ok {
			return nil, fmt.Errorf("vault store: adapter %q not registered", record.Adapter)
		}
		position.Binding = &AdapterBinding{
			Adapter:     adapter,
			AdapterName: record.Adapter,
			RefTag:      record.RefTag,
		}
	}
	return position, nil
}

// PutPosition writes the position record, replacing any previous revision in
// one write.
func (s *PositionStore) PutPosition(position *Position) error {
	if s == nil || s.db == nil {
		return errNilState
	}
	if position == nil {
		return nil
	}
	record := positionRecord{Owner: position.Owner.String()}
	if position.Binding != nil {
		record.Bound = true
		record.Adapter = position.Binding.AdapterName
		record.RefTag = position.Binding.RefTag
	}
	raw, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("vault store: encode position %s: %w", position.ID, err)
	}
	return s.db.Put(positionKey(position.ID), raw)
}
