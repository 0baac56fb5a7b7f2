package common

import "errors"

// ErrModulePaused is returned when a mutating operation is attempted against a
// module that operations has switched off.
var ErrModulePaused = errors.New("module paused")

// PauseView reports the pause switch for a named module.
type PauseView interface {
	IsPaused(module string) bool
}

// Guard rejects mutations for paused modules. A nil view or empty module name
// leaves the operation unguarded.
func Guard(p PauseView, module string) error {
	if p == nil || module == "" {
		return nil
	}
	if p.IsPaused(module) {
		return ErrModulePaused
	}
	return nil
}
