package vault

import (
	"math/big"
	"sync"

	"yieldvault/crypto"
	nativecommon "yieldvault/native/common"
)

const moduleName = "vault"

type engineState interface {
	GetPosition(id PositionID) (*Position, error)
	PutPosition(position *Position) error
}

// Authorizer answers whether a caller may rebind the adapter for a position.
// The policy lives outside the engine so deployments and tests can swap it.
type Authorizer interface {
	MayRebind(caller crypto.Address, position *Position) bool
}

// Engine orchestrates position lifecycle and the liquidation trigger. The
// trigger path has a hard synchronous dependency on whatever adapter the
// position is bound to: the engine performs no recovery, no retry, and no
// compensating bookkeeping around the adapter call, so the adapter's outcome
// is the trigger's outcome.
type Engine struct {
	mu         sync.RWMutex
	state      engineState
	authorizer Authorizer
	pauses     nativecommon.PauseView
	emitter    Emitter
}

// NewEngine constructs an engine with no collaborators wired. SetState must be
// called before any operation.
func NewEngine() *Engine {
	return &Engine{}
}

// SetState wires the engine to the external persistence layer.
func (e *Engine) SetState(state engineState) {
	if e == nil {
		return
	}
	e.state = state
}

// SetAuthorizer installs the rebind capability check. When none is installed
// the engine falls back to an owner-equality policy.
func (e *Engine) SetAuthorizer(authorizer Authorizer) {
	if e == nil {
		return
	}
	e.authorizer = authorizer
}

func (e *Engine) SetPauses(p nativecommon.PauseView) {
	if e == nil {
		return
	}
	e.pauses = p
}

// SetEmitter wires the event sink used for position and liquidation events.
func (e *Engine) SetEmitter(emitter Emitter) {
	if e == nil {
		return
	}
	e.emitter = emitter
}

func (e *Engine) emit(event Event) {
	if e == nil || e.emitter == nil {
		return
	}
	e.emitter.Emit(event)
}

func (e *Engine) mayRebind(caller crypto.Address, position *Position) bool {
	if e.authorizer != nil {
		return e.authorizer.MayRebind(caller, position)
	}
	return caller.Equal(position.Owner)
}

// OpenPosition registers a new position owned by the caller with no adapter
// bound. The returned handle is the position's identity for all later calls.
func (e *Engine) OpenPosition(owner crypto.Address) (PositionID, error) {
	if e == nil || e.state == nil {
		return PositionID{}, errNilState
	}
	if err := nativecommon.Guard(e.pauses, moduleName); err != nil {
		return PositionID{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	position := &Position{ID: NewPositionID(), Owner: owner}
	if err := e.state.PutPosition(position); err != nil {
		return PositionID{}, err
	}
	e.emit(PositionOpened{Position: position.ID, Owner: owner})
	return position.ID, nil
}

// SelectAdapter atomically replaces the position's adapter binding. The
// capability check runs before any mutation, so an unauthorized call leaves
// the prior binding untouched.
func (e *Engine) SelectAdapter(caller crypto.Address, id PositionID, adapter RewardAdapter, refTag uint64) error {
	if e == nil || e.state == nil {
		return errNilState
	}
	if err := nativecommon.Guard(e.pauses, moduleName); err != nil {
		return err
	}
	if adapter == nil {
		return errNilAdapter
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	position, err := e.state.GetPosition(id)
	if err != nil {
		return err
	}
	if position == nil {
		return ErrPositionNotFound
	}
	if !e.mayRebind(caller, position) {
		return ErrUnauthorized
	}

	updated := position.Clone()
	updated.Binding = &AdapterBinding{
		Adapter:     adapter,
		AdapterName: adapterName(adapter),
		RefTag:      refTag,
	}
	if err := e.state.PutPosition(updated); err != nil {
		return err
	}
	e.emit(AdapterSelected{Position: id, Adapter: updated.Binding.AdapterName, RefTag: refTag})
	return nil
}

// Position returns a copy of the stored position for read-only surfaces.
func (e *Engine) Position(id PositionID) (*Position, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	e.mu.RLock()
	position, err := e.state.GetPosition(id)
	e.mu.RUnlock()
	if err != nil {
		return nil, err
	}
	if position == nil {
		return nil, ErrPositionNotFound
	}
	return position.Clone(), nil
}

// Trigger is the liquidation entry point invoked by a trusted external
// liquidator. A position with no bound adapter completes as a no-op success;
// a bound position's outcome is the adapter's outcome, propagated verbatim
// with the original failure identity intact.
func (e *Engine) Trigger(liquidator crypto.Address, id PositionID, amount *big.Int) error {
	if e == nil || e.state == nil {
		return errNilState
	}
	if err := nativecommon.Guard(e.pauses, moduleName); err != nil {
		return err
	}
	if amount == nil || amount.Sign() < 0 {
		return errInvalidAmount
	}

	// Snapshot the binding under the read lock and invoke the adapter outside
	// it. SelectAdapter writes a cloned position under the write lock, so a
	// trigger never observes a rebind in progress.
	e.mu.RLock()
	position, err := e.state.GetPosition(id)
	e.mu.RUnlock()
	if err != nil {
		return err
	}
	if position == nil {
		return ErrPositionNotFound
	}
	position = position.Clone()

	if position.Binding == nil {
		e.emit(LiquidationTriggered{Position: id, Liquidator: liquidator, Amount: amount})
		return nil
	}

	if err := position.Unwind(position.Binding.Adapter, amount); err != nil {
		e.emit(LiquidationBlocked{
			Position:   id,
			Liquidator: liquidator,
			Amount:     amount,
			Adapter:    position.Binding.AdapterName,
			Reason:     err.Error(),
		})
		return err
	}

	e.emit(LiquidationTriggered{
		Position:   id,
		Liquidator: liquidator,
		Amount:     amount,
		Adapter:    position.Binding.AdapterName,
	})
	return nil
}
