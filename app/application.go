package app

import (
	"context"
	"encoding/json"

	matching "github.com/ryancwalsh/donation-matching"
	"github.com/ryancwalsh/donation-matching/coin"
	"github.com/ryancwalsh/donation-matching/errors"
	"github.com/ryancwalsh/donation-matching/x/cash"
	"github.com/ryancwalsh/donation-matching/x/donation"
	"github.com/ryancwalsh/donation-matching/x/host"
	amino "github.com/tendermint/go-amino"
	"github.com/tendermint/tendermint/libs/log"
)

// Options configure an Application.
type Options struct {
	// Self is the account of the contract. It holds all escrowed funds.
	Self matching.AccountID
	// Logger defaults to a nop logger.
	Logger log.Logger
	// HostOptions are passed to the host runtime.
	HostOptions []host.Option
}

// Application is the matching donation contract running on top of a
// committed store.
type Application struct {
	logger  log.Logger
	store   matching.CommitKVStore
	router  *Router
	runtime *host.Runtime
	bank    cash.Controller
	init    matching.Initializer
}

// NewApplication wires all extensions together. State is read from and
// written to given store.
func NewApplication(store matching.CommitKVStore, opts Options) (*Application, error) {
	if err := opts.Self.Validate(); err != nil {
		return nil, errors.Wrap(err, "contract account")
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.NewNopLogger()
	}

	cdc := amino.NewCodec()
	matching.RegisterCodec(cdc)
	donation.RegisterCodec(cdc)

	bank := cash.NewController()
	router := NewRouter()
	runtime := host.NewRuntime(opts.Self, bank, router, cdc, opts.HostOptions...)
	donation.RegisterRoutes(router, runtime)

	return &Application{
		logger:  logger.With("module", "app"),
		store:   store,
		router:  router,
		runtime: runtime,
		bank:    bank,
		init: matching.ChainInitializers(
			cash.Initializer{},
			host.Initializer{},
			donation.Initializer{},
		),
	}, nil
}

func (a *Application) context() matching.Context {
	return matching.WithLogger(context.Background(), a.logger)
}

// Runtime returns the host runtime of the contract.
func (a *Application) Runtime() *host.Runtime {
	return a.runtime
}

// InitChain loads the application state from the genesis. It can be done
// only once.
func (a *Application) InitChain(gen *Genesis) error {
	cache := a.store.CacheWrap()
	defer cache.Discard()

	switch ok, err := isInitialized(cache); {
	case err != nil:
		return err
	case ok:
		return errors.Wrap(errors.ErrState, "genesis already loaded")
	}
	if err := a.init.FromGenesis(gen.AppState, cache); err != nil {
		return errors.Wrap(err, "genesis")
	}
	if err := markInitialized(cache); err != nil {
		return err
	}
	if err := cache.Write(); err != nil {
		return errors.Wrap(errors.ErrDatabase, err.Error())
	}
	a.logger.Info("genesis loaded", "version", matching.Version())
	return nil
}

// Call executes a contract entry point on behalf of caller, with deposit
// attached.
func (a *Application) Call(caller matching.AccountID, deposit coin.Amount, msg matching.Msg) (*matching.DeliverResult, error) {
	if err := msg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid message")
	}
	res, err := a.runtime.Call(a.context(), a.store, caller, deposit, msg)
	if err != nil {
		a.logger.Debug("call failed", "path", msg.Path(), "caller", caller, "err", errors.Redact(err))
		return nil, err
	}
	return res, nil
}

// Tick settles all pending transfers.
func (a *Application) Tick() ([]*host.Settlement, error) {
	return a.runtime.Tick(a.context(), a.store)
}

// Commit persists the state and returns its new version.
func (a *Application) Commit() (matching.CommitID, error) {
	id, err := a.store.Commit()
	if err != nil {
		return id, err
	}
	a.logger.Info("committed", "version", id.Version)
	return id, nil
}

// Balance returns the funds held by given account.
func (a *Application) Balance(acct matching.AccountID) (coin.Amount, error) {
	return a.bank.Balance(a.store, acct)
}

// Commitments returns the report of everyone matching donations to
// recipient.
func (a *Application) Commitments(recipient matching.AccountID) (*donation.CommitmentsReport, error) {
	return donation.GetCommitments(a.store, recipient)
}

// Query paths supported by Query.
const (
	QueryCommitments = "/commitments"
	QueryBalance     = "/balance"
	QueryPending     = "/transfers/pending"
)

// Query answers read only requests with JSON. The data is the account
// identifier the query is about.
func (a *Application) Query(path string, data []byte) ([]byte, error) {
	var res interface{}
	switch path {
	case QueryCommitments:
		report, err := a.Commitments(matching.AccountID(data))
		if err != nil {
			return nil, err
		}
		res = report
	case QueryBalance:
		b, err := a.Balance(matching.AccountID(data))
		if err != nil {
			return nil, err
		}
		res = b
	case QueryPending:
		pending, err := a.runtime.Pending(a.store)
		if err != nil {
			return nil, err
		}
		res = pending
	default:
		return nil, errors.Wrapf(errors.ErrNotFound, "unknown query path %q", path)
	}
	raw, err := json.Marshal(res)
	if err != nil {
		return nil, errors.Wrap(errors.ErrHuman, err.Error())
	}
	return raw, nil
}
