package vault

import (
	"errors"
	"fmt"
	"math/big"

	"yieldvault/crypto"
)

// RewardAdapter is the capability surface a position can be bound to for
// yield-bearing deposits. Implementations are supplied by third parties; the
// engine only exercises Withdraw on the liquidation path but the full surface
// is required so an adapter is a believable drop-in for a real farm
// integration.
type RewardAdapter interface {
	Stake(amount *big.Int) error
	Withdraw(amount *big.Int) error
	ClaimReward() error
	BalanceOf(owner crypto.Address) *big.Int
}

// namedAdapter lets adapter implementations report a stable registry name used
// for persistence and event payloads.
type namedAdapter interface {
	AdapterName() string
}

func adapterName(a RewardAdapter) string {
	if named, ok := a.(namedAdapter); ok {
		return named.AdapterName()
	}
	return fmt.Sprintf("%T", a)
}

// NullFarm is the compliant reference adapter: every operation succeeds and
// holds no state, so repeated triggers against it each independently succeed.
type NullFarm struct{}

func (NullFarm) AdapterName() string { return "null-farm" }

func (NullFarm) Stake(*big.Int) error { return nil }

func (NullFarm) Withdraw(*big.Int) error { return nil }

func (NullFarm) ClaimReward() error { return nil }

func (NullFarm) BalanceOf(crypto.Address) *big.Int { return big.NewInt(0) }

// BlockedFarm refuses every withdrawal with the structured Blocked failure.
// The refusal is amount and state independent so scenarios replay
// deterministically.
type BlockedFarm struct{}

func (BlockedFarm) AdapterName() string { return "blocked-farm" }

func (BlockedFarm) Stake(*big.Int) error { return nil }

func (BlockedFarm) Withdraw(*big.Int) error { return ErrWithdrawBlocked }

func (BlockedFarm) ClaimReward() error { return nil }

func (BlockedFarm) BalanceOf(crypto.Address) *big.Int { return big.NewInt(0) }

// errExternalCallFailed is the opaque, message-only failure produced by
// FailingFarm. It carries no structure on purpose.
var errExternalCallFailed = errors.New("DoS: External Call Failed")

// FailingFarm refuses every withdrawal with an unstructured, message-only
// failure. Like BlockedFarm the refusal is amount and state independent.
type FailingFarm struct{}

func (FailingFarm) AdapterName() string { return "failing-farm" }

func (FailingFarm) Stake(*big.Int) error { return nil }

func (FailingFarm) Withdraw(*big.Int) error { return errExternalCallFailed }

func (FailingFarm) ClaimReward() error { return nil }

func (FailingFarm) BalanceOf(crypto.Address) *big.Int { return big.NewInt(0) }
