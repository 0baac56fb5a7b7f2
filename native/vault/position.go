package vault

import (
	"math/big"

	"github.com/google/uuid"

	"yieldvault/crypto"
)

// PositionID is the opaque handle issued when a position is opened.
type PositionID uuid.UUID

// NewPositionID mints a fresh random handle.
func NewPositionID() PositionID { return PositionID(uuid.New()) }

// ParsePositionID decodes the canonical string form of a handle.
func ParsePositionID(s string) (PositionID, error) {
	parsed, err := uuid.Parse(s)
	if err != nil {
		return PositionID{}, err
	}
	return PositionID(parsed), nil
}

func (id PositionID) String() string { return uuid.UUID(id).String() }

// Bytes returns the raw 16-byte handle, used as the storage key suffix.
func (id PositionID) Bytes() []byte {
	raw := uuid.UUID(id)
	return raw[:]
}

// AdapterBinding records the reward adapter a position is currently routed
// through. RefTag is the adapter-side pool identifier; the engine records it
// on the binding and in events but never interprets it.
type AdapterBinding struct {
	Adapter     RewardAdapter
	AdapterName string
	RefTag      uint64
}

// Position is one user's collateral lockup tracked by the engine. A position
// persists after liquidation; only its adapter interaction runs during unwind
// and no position is ever deleted.
type Position struct {
	ID      PositionID
	Owner   crypto.Address
	Binding *AdapterBinding
}

// Clone returns a deep copy so binding replacements never expose a revision in
// progress to concurrent readers.
func (p *Position) Clone() *Position {
	if p == nil {
		return nil
	}
	clone := &Position{ID: p.ID, Owner: p.Owner}
	if p.Binding != nil {
		binding := *p.Binding
		clone.Binding = &binding
	}
	return clone
}

// Unwind pulls the position's funds back out of the supplied reward adapter
// and reports exactly what the adapter reports. No retry, no recovery: the
// caller sees the adapter's outcome unchanged.
func (p *Position) Unwind(adapter RewardAdapter, amount *big.Int) error {
	if adapter == nil {
		return errNilAdapter
	}
	return adapter.Withdraw(amount)
}
