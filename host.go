package matching

import (
	"github.com/ryancwalsh/donation-matching/coin"
)

// TransferHandle identifies a single fund transfer requested from the host.
type TransferHandle uint64

// TransferOutcome is the terminal state of a transfer as reported by the
// host to the callback scheduled for it.
type TransferOutcome struct {
	Handle     TransferHandle
	Successful bool
	// Info describes the reason of a failure.
	Info string
}

// Host is the capability of the runtime that executes the contract. Funds
// are only ever moved by the host, and the result of a transfer is only
// known once the host invokes the callback scheduled for it.
type Host interface {
	// Identity returns the identifier of the account invoking the
	// current call.
	Identity(ctx Context) (AccountID, error)

	// SelfIdentity returns the identifier of the contract account.
	SelfIdentity() AccountID

	// Transfer requests that amount is moved from the contract account
	// to the destination. The transfer is asynchronous.
	Transfer(ctx Context, db KVStore, destination AccountID, amount coin.Amount) (TransferHandle, error)

	// ScheduleCallback requests that once the transfer is resolved, given
	// message is delivered to the contract with the contract as the
	// caller and the transfer outcome attached to the context. Gas is
	// the fee budget for the callback execution.
	ScheduleCallback(ctx Context, db KVStore, handle TransferHandle, callback Msg, gas int64) error

	// TransferOutcome returns the outcomes attached to the current
	// callback.
	TransferOutcome(ctx Context) []TransferOutcome
}
