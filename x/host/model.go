package host

import (
	matching "github.com/ryancwalsh/donation-matching"
	"github.com/ryancwalsh/donation-matching/coin"
	"github.com/ryancwalsh/donation-matching/errors"
	"github.com/ryancwalsh/donation-matching/orm"
	amino "github.com/tendermint/go-amino"
)

var cdc = amino.NewCodec()

// Transfer is an outbound transfer issued by the contract that is not
// settled yet.
type Transfer struct {
	ID          uint64             `json:"id"`
	Source      matching.AccountID `json:"source"`
	Destination matching.AccountID `json:"destination"`
	Amount      coin.Amount        `json:"amount"`
	// Callback is the serialized message delivered once the transfer
	// is settled. Empty if no callback was scheduled.
	Callback    []byte `json:"callback,omitempty"`
	CallbackGas int64  `json:"callback_gas,omitempty"`
}

var _ matching.Persistent = (*Transfer)(nil)

// Handle returns the identifier handed out to the contract.
func (t *Transfer) Handle() matching.TransferHandle {
	return matching.TransferHandle(t.ID)
}

// Marshal implements matching.Persistent.
func (t *Transfer) Marshal() ([]byte, error) {
	return cdc.MarshalBinaryBare(t)
}

// Unmarshal implements matching.Persistent.
func (t *Transfer) Unmarshal(raw []byte) error {
	return cdc.UnmarshalBinaryBare(raw, t)
}

// Validate returns an error if the transfer state is invalid.
func (t *Transfer) Validate() error {
	var errs error
	if t.ID == 0 {
		errs = errors.Append(errs, errors.Wrap(errors.ErrEmpty, "id"))
	}
	if err := t.Source.Validate(); err != nil {
		errs = errors.Append(errs, errors.Wrap(err, "source"))
	}
	if err := t.Destination.Validate(); err != nil {
		errs = errors.Append(errs, errors.Wrap(err, "destination"))
	}
	if !t.Amount.IsPositive() {
		errs = errors.Append(errs, errors.Wrap(errors.ErrAmount, "amount must be positive"))
	}
	if t.CallbackGas < 0 {
		errs = errors.Append(errs, errors.Wrap(errors.ErrInput, "negative callback gas"))
	}
	return errs
}

// TransferBucket is the queue of transfers waiting to be settled,
// ordered by their identifier.
type TransferBucket struct {
	orm.Bucket
	seq orm.Sequence
}

// NewTransferBucket returns a bucket for managing pending transfers.
func NewTransferBucket() TransferBucket {
	b := orm.NewBucket("xfer")
	return TransferBucket{
		Bucket: b,
		seq:    b.Sequence("id"),
	}
}

func transferKey(h matching.TransferHandle) []byte {
	return orm.EncodeSequence(uint64(h))
}

// Create assigns the next identifier to the transfer and stores it.
func (b TransferBucket) Create(db matching.KVStore, t *Transfer) error {
	id, err := b.seq.NextInt(db)
	if err != nil {
		return errors.Wrap(err, "transfer sequence")
	}
	t.ID = id
	return b.Save(db, t)
}

// Save stores an existing transfer.
func (b TransferBucket) Save(db matching.KVStore, t *Transfer) error {
	return b.Put(db, transferKey(t.Handle()), t)
}

// Get loads a pending transfer. ErrNotFound is returned if the transfer
// does not exist or was already settled.
func (b TransferBucket) Get(db matching.ReadOnlyKVStore, h matching.TransferHandle) (*Transfer, error) {
	var t Transfer
	if err := b.One(db, transferKey(h), &t); err != nil {
		return nil, errors.Wrapf(err, "transfer %d", h)
	}
	return &t, nil
}

// Remove deletes a pending transfer.
func (b TransferBucket) Remove(db matching.KVStore, h matching.TransferHandle) error {
	return b.Delete(db, transferKey(h))
}

// Pending returns all transfers waiting for settlement, oldest first.
func (b TransferBucket) Pending(db matching.ReadOnlyKVStore) ([]*Transfer, error) {
	it, err := b.Iterate(db, nil)
	if err != nil {
		return nil, err
	}
	defer it.Release()

	var res []*Transfer
	for {
		_, raw, err := it.Next()
		if errors.ErrIteratorDone.Is(err) {
			return res, nil
		}
		if err != nil {
			return nil, err
		}
		var t Transfer
		if err := t.Unmarshal(raw); err != nil {
			return nil, errors.Wrap(errors.ErrModel, err.Error())
		}
		res = append(res, &t)
	}
}

// Oldest returns the pending transfer with the lowest identifier.
// ErrEmpty is returned if there is nothing to settle.
func (b TransferBucket) Oldest(db matching.ReadOnlyKVStore) (*Transfer, error) {
	it, err := b.Iterate(db, nil)
	if err != nil {
		return nil, err
	}
	defer it.Release()

	_, raw, err := it.Next()
	if errors.ErrIteratorDone.Is(err) {
		return nil, errors.Wrap(errors.ErrEmpty, "no pending transfers")
	}
	if err != nil {
		return nil, err
	}
	var t Transfer
	if err := t.Unmarshal(raw); err != nil {
		return nil, errors.Wrap(errors.ErrModel, err.Error())
	}
	return &t, nil
}

// SettlementRecord is the stored result of a settled transfer.
type SettlementRecord struct {
	Transfer   Transfer `json:"transfer"`
	Successful bool     `json:"successful"`
	Info       string   `json:"info,omitempty"`
	// CallbackExecuted is false when no callback was scheduled.
	CallbackExecuted bool   `json:"callback_executed"`
	CallbackFailed   bool   `json:"callback_failed"`
	CallbackInfo     string `json:"callback_info,omitempty"`
}

var _ matching.Persistent = (*SettlementRecord)(nil)

// Marshal implements matching.Persistent.
func (s *SettlementRecord) Marshal() ([]byte, error) {
	return cdc.MarshalBinaryBare(s)
}

// Unmarshal implements matching.Persistent.
func (s *SettlementRecord) Unmarshal(raw []byte) error {
	return cdc.UnmarshalBinaryBare(raw, s)
}

// Outcome returns the transfer outcome as seen by the contract.
func (s *SettlementRecord) Outcome() matching.TransferOutcome {
	return matching.TransferOutcome{
		Handle:     s.Transfer.Handle(),
		Successful: s.Successful,
		Info:       s.Info,
	}
}

// SettlementBucket keeps the results of all settled transfers.
type SettlementBucket struct {
	orm.Bucket
}

// NewSettlementBucket returns a bucket for managing settlement records.
func NewSettlementBucket() SettlementBucket {
	return SettlementBucket{Bucket: orm.NewBucket("settle")}
}

// Save stores the record under the transfer identifier.
func (b SettlementBucket) Save(db matching.KVStore, s *SettlementRecord) error {
	return b.Put(db, transferKey(s.Transfer.Handle()), s)
}

// Get loads the settlement record of given transfer.
func (b SettlementBucket) Get(db matching.ReadOnlyKVStore, h matching.TransferHandle) (*SettlementRecord, error) {
	var s SettlementRecord
	if err := b.One(db, transferKey(h), &s); err != nil {
		return nil, errors.Wrapf(err, "settlement %d", h)
	}
	return &s, nil
}
