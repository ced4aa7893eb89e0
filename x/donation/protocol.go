package donation

import (
	matching "github.com/ryancwalsh/donation-matching"
	"github.com/ryancwalsh/donation-matching/errors"
	"github.com/ryancwalsh/donation-matching/orm"
)

// CallbackBuilder returns the confirmation message for a transfer once
// its handle is known.
type CallbackBuilder func(matching.TransferHandle) matching.Msg

// Protocol issues transfers out of escrow and verifies their
// confirmations.
//
// Every issued transfer is recorded as a PendingTransfer. The record is
// consumed by the first valid confirmation, so a replayed confirmation is
// rejected.
type Protocol struct {
	host    matching.Host
	pending orm.Bucket
}

// NewProtocol returns a protocol issuing transfers through given host.
func NewProtocol(host matching.Host) Protocol {
	return Protocol{
		host:    host,
		pending: orm.NewBucket("pend"),
	}
}

func pendingKey(h matching.TransferHandle) []byte {
	return orm.EncodeSequence(uint64(h))
}

// Issue requests a transfer of p.Amount from escrow to p.Destination and
// schedules the confirmation built by callback. The transfer identifier is
// written to p.ID. Zero transfers are rejected before anything is issued.
func (p Protocol) Issue(ctx matching.Context, db matching.KVStore, t *PendingTransfer, callback CallbackBuilder) (matching.TransferHandle, error) {
	if !t.Amount.IsPositive() {
		return 0, errors.Wrap(errors.ErrAmount, "transfer amount must be greater than zero")
	}
	conf, err := loadConf(db)
	if err != nil {
		return 0, err
	}
	handle, err := p.host.Transfer(ctx, db, t.Destination, t.Amount)
	if err != nil {
		return 0, errors.Wrap(err, "cannot transfer")
	}
	t.ID = uint64(handle)
	if err := p.pending.Put(db, pendingKey(handle), t); err != nil {
		return 0, err
	}
	if err := p.host.ScheduleCallback(ctx, db, handle, callback(handle), conf.CallbackGas); err != nil {
		return 0, errors.Wrap(err, "cannot schedule confirmation")
	}
	return handle, nil
}

// Pending returns the record of an unconfirmed transfer. ErrNotFound is
// returned if there is no such transfer or it was already confirmed.
func (p Protocol) Pending(db matching.ReadOnlyKVStore, h matching.TransferHandle) (*PendingTransfer, error) {
	var t PendingTransfer
	if err := p.pending.One(db, pendingKey(h), &t); err != nil {
		return nil, errors.Wrapf(err, "transfer %d is not pending, it may be already settled", h)
	}
	return &t, nil
}

// Confirm verifies a confirmation call and consumes the pending record of
// the confirmed transfer. It returns the pending record and whether the
// transfer succeeded.
//
// The caller must be the contract itself and exactly one transfer outcome,
// for the expected transfer, must be present. The expected function
// compares the confirmation arguments with the pending record.
func (p Protocol) Confirm(ctx matching.Context, db matching.KVStore, h matching.TransferHandle, expected func(*PendingTransfer) error) (*PendingTransfer, bool, error) {
	caller, err := p.host.Identity(ctx)
	if err != nil {
		return nil, false, err
	}
	if self := p.host.SelfIdentity(); !caller.Equals(self) {
		return nil, false, errors.Wrapf(errors.ErrUnauthorized, "only %s may confirm transfers, not %s", self, caller)
	}

	outcomes := p.host.TransferOutcome(ctx)
	if len(outcomes) != 1 {
		return nil, false, errors.Wrapf(errors.ErrState, "expected exactly one transfer outcome, got %d", len(outcomes))
	}
	outcome := outcomes[0]
	if outcome.Handle != h {
		return nil, false, errors.Wrapf(errors.ErrState, "outcome of transfer %d delivered for transfer %d", outcome.Handle, h)
	}

	t, err := p.Pending(db, h)
	if err != nil {
		return nil, false, err
	}
	if err := expected(t); err != nil {
		return nil, false, errors.Wrap(errors.ErrState, err.Error())
	}
	if err := p.pending.Delete(db, pendingKey(h)); err != nil {
		return nil, false, err
	}

	if !outcome.Successful {
		matching.GetLogger(ctx).Error("transfer not confirmed",
			"transfer", t.ID, "kind", t.Kind, "destination", t.Destination, "amount", t.Amount,
			"err", errors.Wrap(errors.ErrTransferFailed, outcome.Info))
	}
	return t, outcome.Successful, nil
}
