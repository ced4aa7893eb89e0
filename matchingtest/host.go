package matchingtest

import (
	matching "github.com/ryancwalsh/donation-matching"
	"github.com/ryancwalsh/donation-matching/coin"
	"github.com/ryancwalsh/donation-matching/errors"
)

// IssuedTransfer is a transfer requested from the Host.
type IssuedTransfer struct {
	Handle      matching.TransferHandle
	Destination matching.AccountID
	Amount      coin.Amount
	Callback    matching.Msg
	CallbackGas int64
}

// Host is a scripted matching.Host implementation. Transfers are only
// recorded, never settled. Use ConfirmCtx to build the context of a
// confirmation callback.
type Host struct {
	Self matching.AccountID
	// TransferErr if set is returned by every Transfer call.
	TransferErr error

	Transfers []*IssuedTransfer
}

var _ matching.Host = (*Host)(nil)

// Identity returns the caller set in the context.
func (h *Host) Identity(ctx matching.Context) (matching.AccountID, error) {
	caller, ok := matching.GetCaller(ctx)
	if !ok {
		return "", errors.Wrap(errors.ErrUnauthorized, "no caller")
	}
	return caller, nil
}

// SelfIdentity returns the configured contract account.
func (h *Host) SelfIdentity() matching.AccountID {
	return h.Self
}

// Transfer records the transfer and returns its handle. Handles start at 1.
func (h *Host) Transfer(ctx matching.Context, db matching.KVStore, destination matching.AccountID, amount coin.Amount) (matching.TransferHandle, error) {
	if h.TransferErr != nil {
		return 0, h.TransferErr
	}
	t := &IssuedTransfer{
		Handle:      matching.TransferHandle(len(h.Transfers) + 1),
		Destination: destination,
		Amount:      amount,
	}
	h.Transfers = append(h.Transfers, t)
	return t.Handle, nil
}

// ScheduleCallback attaches the callback to a recorded transfer.
func (h *Host) ScheduleCallback(ctx matching.Context, db matching.KVStore, handle matching.TransferHandle, callback matching.Msg, gas int64) error {
	t := h.Get(handle)
	if t == nil {
		return errors.Wrapf(errors.ErrNotFound, "transfer %d", handle)
	}
	if t.Callback != nil {
		return errors.Wrapf(errors.ErrDuplicate, "transfer %d", handle)
	}
	t.Callback = callback
	t.CallbackGas = gas
	return nil
}

// TransferOutcome returns the outcomes set in the context.
func (h *Host) TransferOutcome(ctx matching.Context) []matching.TransferOutcome {
	return matching.GetTransferOutcomes(ctx)
}

// Get returns the recorded transfer or nil.
func (h *Host) Get(handle matching.TransferHandle) *IssuedTransfer {
	i := int(handle) - 1
	if i < 0 || i >= len(h.Transfers) {
		return nil
	}
	return h.Transfers[i]
}

// ConfirmCtx returns a context of a callback invoked by the contract on
// itself, reporting a single outcome of given transfer.
func (h *Host) ConfirmCtx(handle matching.TransferHandle, successful bool) matching.Context {
	ctx := CallerCtx(h.Self)
	outcome := matching.TransferOutcome{Handle: handle, Successful: successful}
	if !successful {
		outcome.Info = "transfer rejected"
	}
	return matching.WithTransferOutcomes(ctx, []matching.TransferOutcome{outcome})
}
