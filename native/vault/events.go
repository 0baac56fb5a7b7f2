package vault

import (
	"math/big"
	"strconv"

	"yieldvault/crypto"
)

const (
	// TypePositionOpened is emitted when a new position is registered.
	TypePositionOpened = "vault.position.opened"
	// TypeAdapterSelected is emitted when a position's adapter binding is
	// replaced.
	TypeAdapterSelected = "vault.adapter.selected"
	// TypeLiquidationTriggered is emitted when a trigger completes, including
	// the no-op path for unbound positions.
	TypeLiquidationTriggered = "vault.liquidation.triggered"
	// TypeLiquidationBlocked is emitted when the bound adapter refuses the
	// unwind and the trigger fails.
	TypeLiquidationBlocked = "vault.liquidation.blocked"
)

// Event is a structured state change emitted by the vault engine.
type Event interface {
	EventType() string
}

// Emitter broadcasts events to downstream subscribers (RPC, indexers).
type Emitter interface {
	Emit(Event)
}

// NoopEmitter satisfies Emitter while discarding all events.
type NoopEmitter struct{}

// Emit implements the Emitter interface.
func (NoopEmitter) Emit(Event) {}

// PositionOpened captures a freshly registered position.
type PositionOpened struct {
	Position PositionID
	Owner    crypto.Address
}

func (PositionOpened) EventType() string { return TypePositionOpened }

// Attributes flattens the payload for broadcast sinks.
func (e PositionOpened) Attributes() map[string]string {
	return map[string]string{
		"position": e.Position.String(),
		"owner":    e.Owner.String(),
	}
}

// AdapterSelected captures an adapter binding replacement.
type AdapterSelected struct {
	Position PositionID
	Adapter  string
	RefTag   uint64
}

func (AdapterSelected) EventType() string { return TypeAdapterSelected }

// Attributes flattens the payload for broadcast sinks.
func (e AdapterSelected) Attributes() map[string]string {
	return map[string]string{
		"position": e.Position.String(),
		"adapter":  e.Adapter,
		"refTag":   strconv.FormatUint(e.RefTag, 10),
	}
}

// LiquidationTriggered captures a successful trigger. Adapter is empty on the
// unbound no-op path.
type LiquidationTriggered struct {
	Position   PositionID
	Liquidator crypto.Address
	Amount     *big.Int
	Adapter    string
}

func (LiquidationTriggered) EventType() string { return TypeLiquidationTriggered }

// Attributes flattens the payload for broadcast sinks.
func (e LiquidationTriggered) Attributes() map[string]string {
	attrs := map[string]string{
		"position":   e.Position.String(),
		"liquidator": e.Liquidator.String(),
		"amount":     formatAmount(e.Amount),
	}
	if e.Adapter != "" {
		attrs["adapter"] = e.Adapter
	}
	return attrs
}

// LiquidationBlocked captures a trigger halted by the bound adapter. Reason is
// the adapter's own failure message, unchanged.
type LiquidationBlocked struct {
	Position   PositionID
	Liquidator crypto.Address
	Amount     *big.Int
	Adapter    string
	Reason     string
}

func (LiquidationBlocked) EventType() string { return TypeLiquidationBlocked }

// Attributes flattens the payload for broadcast sinks.
func (e LiquidationBlocked) Attributes() map[string]string {
	return map[string]string{
		"position":   e.Position.String(),
		"liquidator": e.Liquidator.String(),
		"amount":     formatAmount(e.Amount),
		"adapter":    e.Adapter,
		"reason":     e.Reason,
	}
}

func formatAmount(amount *big.Int) string {
	if amount == nil {
		return "0"
	}
	return amount.String()
}
