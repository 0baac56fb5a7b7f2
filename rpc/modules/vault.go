package modules

import (
	"errors"
	"math/big"
	"net/http"
	"strings"

	"yieldvault/crypto"
	nativecommon "yieldvault/native/common"
	"yieldvault/native/vault"
	"yieldvault/observability/metrics"
)

// Adapter failure kinds surfaced in RPC error data.
const (
	adapterKindGeneric = "Generic"
)

// VaultModule adapts the vault engine for the JSON-RPC surface. It owns the
// string-level decoding of addresses, handles, and amounts, and keeps adapter
// failure identity intact on the way out.
type VaultModule struct {
	engine   *vault.Engine
	registry *vault.Registry
	metrics  *metrics.VaultMetrics
}

func NewVaultModule(engine *vault.Engine, registry *vault.Registry) *VaultModule {
	return &VaultModule{engine: engine, registry: registry, metrics: metrics.Vault()}
}

func (m *VaultModule) moduleUnavailable() *ModuleError {
	return &ModuleError{HTTPStatus: http.StatusInternalServerError, Code: codeServerError, Message: "vault module not available"}
}

func (m *VaultModule) invalidParams(message string) *ModuleError {
	return &ModuleError{HTTPStatus: http.StatusBadRequest, Code: codeInvalidParams, Message: message}
}

// OpenPosition opens a position for the given bech32 owner address and
// returns the new handle.
func (m *VaultModule) OpenPosition(owner string) (string, *ModuleError) {
	if m == nil || m.engine == nil {
		return "", m.moduleUnavailable()
	}
	ownerAddr, err := crypto.DecodeAddress(strings.TrimSpace(owner))
	if err != nil {
		return "", m.invalidParams("invalid owner address: " + err.Error())
	}
	id, err := m.engine.OpenPosition(ownerAddr)
	if err != nil {
		return "", m.wrapLocalError(err)
	}
	m.metrics.ObservePositionOpened()
	return id.String(), nil
}

// SelectAdapter rebinds a position to the named registered adapter.
func (m *VaultModule) SelectAdapter(caller, positionID, adapter string, refTag uint64) *ModuleError {
	if m == nil || m.engine == nil {
		return m.moduleUnavailable()
	}
	callerAddr, err := crypto.DecodeAddress(strings.TrimSpace(caller))
	if err != nil {
		return m.invalidParams("invalid caller address: " + err.Error())
	}
	id, err := vault.ParsePositionID(strings.TrimSpace(positionID))
	if err != nil {
		return m.invalidParams("invalid position id: " + err.Error())
	}
	ref, ok := m.registry.Resolve(strings.TrimSpace(adapter))
	if !ok {
		return m.invalidParams("unknown adapter: " + adapter)
	}
	if err := m.engine.SelectAdapter(callerAddr, id, ref, refTag); err != nil {
		return m.wrapLocalError(err)
	}
	m.metrics.ObserveAdapterRebind(adapter)
	return nil
}

// Trigger invokes the liquidation entry point. Adapter failures come back
// with the adapter's own message as the RPC error message and the failure
// kind in the error data.
func (m *VaultModule) Trigger(liquidator, positionID, amount string) *ModuleError {
	if m == nil || m.engine == nil {
		return m.moduleUnavailable()
	}
	liquidatorAddr, err := crypto.DecodeAddress(strings.TrimSpace(liquidator))
	if err != nil {
		return m.invalidParams("invalid liquidator address: " + err.Error())
	}
	id, err := vault.ParsePositionID(strings.TrimSpace(positionID))
	if err != nil {
		return m.invalidParams("invalid position id: " + err.Error())
	}
	value, ok := new(big.Int).SetString(strings.TrimSpace(amount), 10)
	if !ok || value.Sign() < 0 {
		return m.invalidParams("invalid amount: " + amount)
	}

	if err := m.engine.Trigger(liquidatorAddr, id, value); err != nil {
		if local := m.localError(err); local != nil {
			return local
		}
		kind := adapterKindGeneric
		var adapterErr *vault.AdapterError
		if errors.As(err, &adapterErr) {
			kind = adapterErr.Kind
		}
		m.metrics.ObserveTrigger(metrics.TriggerOutcomeFailure, kind)
		return &ModuleError{
			HTTPStatus: http.StatusConflict,
			Code:       codeAdapterFailure,
			Message:    err.Error(),
			Data:       map[string]string{"kind": kind},
		}
	}
	m.metrics.ObserveTrigger(metrics.TriggerOutcomeSuccess, "")
	return nil
}

// PositionResult is the read model returned by GetPosition.
type PositionResult struct {
	ID      string `json:"id"`
	Owner   string `json:"owner"`
	Bound   bool   `json:"bound"`
	Adapter string `json:"adapter,omitempty"`
	RefTag  uint64 `json:"refTag,omitempty"`
}

// GetPosition returns the stored position and its current binding.
func (m *VaultModule) GetPosition(positionID string) (*PositionResult, *ModuleError) {
	if m == nil || m.engine == nil {
		return nil, m.moduleUnavailable()
	}
	id, err := vault.ParsePositionID(strings.TrimSpace(positionID))
	if err != nil {
		return nil, m.invalidParams("invalid position id: " + err.Error())
	}
	position, err := m.engine.Position(id)
	if err != nil {
		return nil, m.wrapLocalError(err)
	}
	result := &PositionResult{ID: position.ID.String(), Owner: position.Owner.String()}
	if position.Binding != nil {
		result.Bound = true
		result.Adapter = position.Binding.AdapterName
		result.RefTag = position.Binding.RefTag
	}
	return result, nil
}

// localError maps engine-local failures; it returns nil for anything that
// originated in an adapter.
func (m *VaultModule) localError(err error) *ModuleError {
	switch {
	case errors.Is(err, vault.ErrUnauthorized):
		return &ModuleError{HTTPStatus: http.StatusForbidden, Code: codeUnauthorized, Message: err.Error()}
	case errors.Is(err, vault.ErrPositionNotFound):
		return &ModuleError{HTTPStatus: http.StatusNotFound, Code: codeInvalidParams, Message: err.Error()}
	case errors.Is(err, nativecommon.ErrModulePaused):
		return &ModuleError{HTTPStatus: http.StatusServiceUnavailable, Code: codeServerError, Message: err.Error()}
	}
	return nil
}

func (m *VaultModule) wrapLocalError(err error) *ModuleError {
	if local := m.localError(err); local != nil {
		return local
	}
	return &ModuleError{HTTPStatus: http.StatusInternalServerError, Code: codeServerError, Message: err.Error()}
}
