package host

import (
	matching "github.com/ryancwalsh/donation-matching"
	"github.com/ryancwalsh/donation-matching/coin"
	"github.com/ryancwalsh/donation-matching/errors"
	"github.com/ryancwalsh/donation-matching/x/cash"
	amino "github.com/tendermint/go-amino"
)

// TransferPolicy can reject a transfer at settlement time. A rejected
// transfer fails without moving any funds.
type TransferPolicy func(*Transfer) error

// Option configures a Runtime.
type Option func(*Runtime)

// WithTransferPolicy sets the policy consulted before every transfer is
// settled.
func WithTransferPolicy(p TransferPolicy) Option {
	return func(r *Runtime) {
		r.policy = p
	}
}

// Runtime executes a contract handler on behalf of a single contract
// account.
type Runtime struct {
	self        matching.AccountID
	bank        cash.Controller
	handler     matching.Handler
	cdc         *amino.Codec
	policy      TransferPolicy
	transfers   TransferBucket
	settlements SettlementBucket
}

var _ matching.Host = (*Runtime)(nil)

// NewRuntime returns a runtime for the contract account self. The codec
// must have all callback messages registered.
func NewRuntime(self matching.AccountID, bank cash.Controller, h matching.Handler, cdc *amino.Codec, opts ...Option) *Runtime {
	r := &Runtime{
		self:        self,
		bank:        bank,
		handler:     h,
		cdc:         cdc,
		transfers:   NewTransferBucket(),
		settlements: NewSettlementBucket(),
	}
	for _, fn := range opts {
		fn(r)
	}
	return r
}

// Identity returns the account that invoked the currently executing entry
// point.
func (r *Runtime) Identity(ctx matching.Context) (matching.AccountID, error) {
	caller, ok := matching.GetCaller(ctx)
	if !ok {
		return "", errors.Wrap(errors.ErrUnauthorized, "no caller")
	}
	return caller, nil
}

// SelfIdentity returns the contract account.
func (r *Runtime) SelfIdentity() matching.AccountID {
	return r.self
}

// TransferOutcome returns the outcomes delivered to the currently executing
// callback. It is empty outside of a callback.
func (r *Runtime) TransferOutcome(ctx matching.Context) []matching.TransferOutcome {
	return matching.GetTransferOutcomes(ctx)
}

// Transfer queues a transfer of given amount from the contract account.
// Funds move only when the transfer is settled.
func (r *Runtime) Transfer(ctx matching.Context, db matching.KVStore, destination matching.AccountID, amount coin.Amount) (matching.TransferHandle, error) {
	t := Transfer{
		Source:      r.self,
		Destination: destination,
		Amount:      amount,
	}
	if err := r.transfers.Create(db, &t); err != nil {
		return 0, errors.Wrap(err, "cannot issue transfer")
	}
	matching.GetLogger(ctx).Debug("transfer issued",
		"transfer", t.ID, "destination", destination, "amount", amount)
	return t.Handle(), nil
}

// ScheduleCallback attaches a message to a pending transfer. The message
// is delivered once the transfer is settled. Only one callback can be
// attached to a transfer.
func (r *Runtime) ScheduleCallback(ctx matching.Context, db matching.KVStore, h matching.TransferHandle, callback matching.Msg, gas int64) error {
	conf, err := loadConf(db)
	if err != nil {
		return errors.Wrap(err, "host configuration")
	}
	if gas < conf.MinCallbackGas {
		return errors.Wrapf(errors.ErrInput, "callback gas %d below minimum %d", gas, conf.MinCallbackGas)
	}
	t, err := r.transfers.Get(db, h)
	if err != nil {
		return err
	}
	if len(t.Callback) != 0 {
		return errors.Wrapf(errors.ErrDuplicate, "transfer %d already has a callback", h)
	}
	raw, err := r.cdc.MarshalBinaryBare(callback)
	if err != nil {
		return errors.Wrapf(errors.ErrMsg, "cannot serialize callback: %s", err)
	}
	t.Callback = raw
	t.CallbackGas = gas
	return r.transfers.Save(db, t)
}

// Call executes an entry point. A positive attached deposit is moved from
// the caller to the contract account before the handler runs. Nothing is
// persisted if the call fails. The contract account is the caller only of
// the callbacks delivered by Settle, never of a Call.
func (r *Runtime) Call(ctx matching.Context, db matching.CacheableKVStore, caller matching.AccountID, attached coin.Amount, msg matching.Msg) (*matching.DeliverResult, error) {
	if err := caller.Validate(); err != nil {
		return nil, errors.Wrap(err, "caller")
	}
	if caller.Equals(r.self) {
		return nil, errors.Wrapf(errors.ErrUnauthorized, "%s cannot call itself", caller)
	}
	cache := db.CacheWrap()
	if attached.IsPositive() {
		if err := r.bank.MoveCoins(cache, caller, r.self, attached); err != nil {
			cache.Discard()
			return nil, errors.Wrap(err, "attached deposit")
		}
	}

	ctx = matching.WithCaller(ctx, caller)
	ctx = matching.WithAttachedDeposit(ctx, attached)
	ctx = matching.WithLogInfo(ctx, "caller", caller, "path", msg.Path())

	res, err := r.handler.Deliver(ctx, cache, msg)
	if err != nil {
		cache.Discard()
		return nil, err
	}
	if err := cache.Write(); err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, err.Error())
	}
	return res, nil
}

// Settlement describes what happened when a transfer was settled.
type Settlement struct {
	Record *SettlementRecord
	// CallbackResult is set if the callback was delivered successfully.
	CallbackResult *matching.DeliverResult
	// CallbackErr is set if the callback failed. Changes made by a failed
	// callback are discarded.
	CallbackErr error
}

// Settle resolves a single pending transfer. Transfers may be settled in
// any order. Settling an unknown or already settled transfer returns
// ErrNotFound.
func (r *Runtime) Settle(ctx matching.Context, db matching.CacheableKVStore, h matching.TransferHandle) (*Settlement, error) {
	t, err := r.transfers.Get(db, h)
	if err != nil {
		return nil, err
	}
	log := matching.GetLogger(ctx).With("transfer", t.ID)

	record := &SettlementRecord{Transfer: *t, Successful: true}
	funds := db.CacheWrap()
	if err := r.move(funds, t); err != nil {
		funds.Discard()
		record.Successful = false
		record.Info = err.Error()
		log.Error("transfer failed", "destination", t.Destination, "amount", t.Amount, "err", err)
	} else {
		if err := funds.Write(); err != nil {
			return nil, errors.Wrap(errors.ErrDatabase, err.Error())
		}
		log.Info("transfer settled", "destination", t.Destination, "amount", t.Amount)
	}

	if err := r.transfers.Remove(db, h); err != nil {
		return nil, errors.Wrap(err, "cannot remove settled transfer")
	}

	settlement := &Settlement{Record: record}
	if len(t.Callback) != 0 {
		record.CallbackExecuted = true
		res, err := r.deliverCallback(ctx, db, t, record.Outcome())
		if err != nil {
			record.CallbackFailed = true
			record.CallbackInfo = err.Error()
			settlement.CallbackErr = err
			log.Error("callback failed", "err", err)
		} else {
			settlement.CallbackResult = res
		}
	}

	if err := r.settlements.Save(db, record); err != nil {
		return nil, errors.Wrap(err, "cannot store settlement")
	}
	return settlement, nil
}

func (r *Runtime) move(db matching.KVStore, t *Transfer) error {
	if r.policy != nil {
		if err := r.policy(t); err != nil {
			return errors.Wrap(errors.ErrTransferFailed, err.Error())
		}
	}
	if err := r.bank.MoveCoins(db, t.Source, t.Destination, t.Amount); err != nil {
		return errors.Wrap(errors.ErrTransferFailed, err.Error())
	}
	return nil
}

// deliverCallback runs the callback of a settled transfer in its own cache
// so that a failing callback leaves no trace.
func (r *Runtime) deliverCallback(ctx matching.Context, db matching.CacheableKVStore, t *Transfer, outcome matching.TransferOutcome) (res *matching.DeliverResult, err error) {
	defer errors.Recover(&err)

	var msg matching.Msg
	if err := r.cdc.UnmarshalBinaryBare(t.Callback, &msg); err != nil {
		return nil, errors.Wrapf(errors.ErrMsg, "cannot deserialize callback: %s", err)
	}

	ctx = matching.WithCaller(ctx, r.self)
	ctx = matching.WithAttachedDeposit(ctx, coin.NewAmount(0))
	ctx = matching.WithTransferOutcomes(ctx, []matching.TransferOutcome{outcome})
	ctx = matching.WithLogInfo(ctx, "callback", msg.Path(), "callback_transfer", t.ID)

	cache := db.CacheWrap()
	res, err = r.handler.Deliver(ctx, cache, msg)
	if err != nil {
		cache.Discard()
		return nil, err
	}
	if err := cache.Write(); err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, err.Error())
	}
	return res, nil
}

// Step settles the oldest pending transfer. ErrEmpty is returned if there
// is nothing to settle.
func (r *Runtime) Step(ctx matching.Context, db matching.CacheableKVStore) (*Settlement, error) {
	t, err := r.transfers.Oldest(db)
	if err != nil {
		return nil, err
	}
	return r.Settle(ctx, db, t.Handle())
}

// Tick settles pending transfers, oldest first, until the queue is empty.
// Transfers issued by callbacks are settled within the same tick.
func (r *Runtime) Tick(ctx matching.Context, db matching.CacheableKVStore) ([]*Settlement, error) {
	var res []*Settlement
	for {
		s, err := r.Step(ctx, db)
		switch {
		case err == nil:
			res = append(res, s)
		case errors.ErrEmpty.Is(err):
			return res, nil
		default:
			return res, err
		}
	}
}

// Pending returns all transfers that are not settled yet, oldest first.
func (r *Runtime) Pending(db matching.ReadOnlyKVStore) ([]*Transfer, error) {
	return r.transfers.Pending(db)
}

// SettlementOf returns the settlement record of given transfer.
func (r *Runtime) SettlementOf(db matching.ReadOnlyKVStore, h matching.TransferHandle) (*SettlementRecord, error) {
	return r.settlements.Get(db, h)
}
