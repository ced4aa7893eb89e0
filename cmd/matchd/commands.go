package main

import (
	"encoding/json"
	"fmt"
	"io"

	matching "github.com/ryancwalsh/donation-matching"
	"github.com/ryancwalsh/donation-matching/app"
	"github.com/ryancwalsh/donation-matching/coin"
	"github.com/ryancwalsh/donation-matching/errors"
	"github.com/ryancwalsh/donation-matching/store/iavl"
	"github.com/ryancwalsh/donation-matching/x/donation"
	dbm "github.com/tendermint/tendermint/libs/db"
	"github.com/tendermint/tendermint/libs/log"
)

const dbName = "state"

// Env is shared by all commands.
type Env struct {
	Home   string
	Self   matching.AccountID
	Logger log.Logger
	Out    io.Writer
}

// withApp opens the state stored under home, runs fn and closes the
// database.
func withApp(env *Env, fn func(*app.Application) error) error {
	db, err := dbm.NewGoLevelDB(dbName, env.Home)
	if err != nil {
		return errors.Wrapf(errors.ErrDatabase, "cannot open %s: %s", env.Home, err)
	}
	defer db.Close()

	cs, err := iavl.NewCommitStoreFromDB(db)
	if err != nil {
		return err
	}
	a, err := app.NewApplication(cs, app.Options{
		Self:   env.Self,
		Logger: env.Logger,
	})
	if err != nil {
		return err
	}
	return fn(a)
}

// InitCmd loads the genesis file given as the only argument and commits
// the first version of the state.
func InitCmd(env *Env, args []string) error {
	if len(args) != 1 {
		return errors.Wrap(errors.ErrInput, "usage: init GENESIS_FILE")
	}
	gen, err := app.LoadGenesis(args[0])
	if err != nil {
		return err
	}
	return withApp(env, func(a *app.Application) error {
		if err := a.InitChain(gen); err != nil {
			return err
		}
		id, err := a.Commit()
		if err != nil {
			return err
		}
		fmt.Fprintf(env.Out, "initialized at version %d\n", id.Version)
		return nil
	})
}

// CallCmd executes a public entry point. Transfers it requests stay
// pending until TickCmd runs.
func CallCmd(env *Env, args []string) error {
	if len(args) != 4 {
		return errors.Wrap(errors.ErrInput, "usage: call CALLER DEPOSIT PATH JSON")
	}
	caller := matching.AccountID(args[0])
	deposit, err := coin.ParseAmount(args[1])
	if err != nil {
		return errors.Wrap(err, "deposit")
	}
	msg, err := decodeMsg(args[2], []byte(args[3]))
	if err != nil {
		return err
	}
	return withApp(env, func(a *app.Application) error {
		res, err := a.Call(caller, deposit, msg)
		if err != nil {
			return err
		}
		if _, err := a.Commit(); err != nil {
			return err
		}
		fmt.Fprintln(env.Out, res.Log)
		return nil
	})
}

// TickCmd settles every pending transfer and prints the callback result
// of each.
func TickCmd(env *Env, args []string) error {
	if len(args) != 0 {
		return errors.Wrap(errors.ErrInput, "usage: tick")
	}
	return withApp(env, func(a *app.Application) error {
		settled, err := a.Tick()
		if err != nil {
			return err
		}
		if _, err := a.Commit(); err != nil {
			return err
		}
		for _, s := range settled {
			status := "succeeded"
			if out := s.Record.Outcome(); !out.Successful {
				status = "failed: " + out.Info
			}
			fmt.Fprintf(env.Out, "transfer %d to %s %s\n",
				s.Record.Transfer.ID, s.Record.Transfer.Destination, status)
			if s.CallbackResult != nil && s.CallbackResult.Log != "" {
				fmt.Fprintln(env.Out, s.CallbackResult.Log)
			}
		}
		return nil
	})
}

// QueryCmd prints the JSON answer of a read only request.
func QueryCmd(env *Env, args []string) error {
	if len(args) != 2 {
		return errors.Wrap(errors.ErrInput, "usage: query PATH DATA")
	}
	return withApp(env, func(a *app.Application) error {
		raw, err := a.Query(args[0], []byte(args[1]))
		if err != nil {
			return err
		}
		fmt.Fprintln(env.Out, string(raw))
		return nil
	})
}

// decodeMsg builds the message of a public entry point from its JSON
// representation. Callbacks cannot be invoked this way.
func decodeMsg(path string, raw []byte) (matching.Msg, error) {
	var msg matching.Msg
	switch path {
	case "offer":
		msg = &donation.OfferMatchingFundsMsg{}
	case "rescind":
		msg = &donation.RescindMatchingFundsMsg{}
	case "donate":
		msg = &donation.DonateMsg{}
	default:
		return nil, errors.Wrapf(errors.ErrInput, "unknown entry point %q", path)
	}
	if err := json.Unmarshal(raw, msg); err != nil {
		return nil, errors.Wrap(errors.ErrInput, err.Error())
	}
	return msg, nil
}
