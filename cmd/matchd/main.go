package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	matching "github.com/ryancwalsh/donation-matching"
	"github.com/tendermint/tendermint/libs/log"
)

var (
	varHome *string
	varSelf *string
)

func init() {
	defaultHome := filepath.Join(os.ExpandEnv("$HOME"), ".matchd")
	varHome = flag.String("home", defaultHome, "directory to store files under")
	varSelf = flag.String("self", "escrow", "account of the contract")

	flag.CommandLine.Usage = helpMessage
}

func helpMessage() {
	fmt.Println("matchd")
	fmt.Println("        Matching donations escrow")
	fmt.Println("")
	fmt.Println("help    Print this message")
	fmt.Println("init    Load the genesis file into a fresh state")
	fmt.Println("call    Execute an entry point: call CALLER DEPOSIT PATH JSON")
	fmt.Println("tick    Settle all pending transfers")
	fmt.Println("query   Read state: query PATH DATA")
	fmt.Println("version Print the app version")
	fmt.Println(`
  -home string
        directory to store files under (default "$HOME/.matchd")
  -self string
        account of the contract (default "escrow")`)
}

func main() {
	logger := log.NewTMLogger(log.NewSyncWriter(os.Stdout)).
		With("module", "matchd")

	flag.Parse()
	if flag.NArg() == 0 {
		fmt.Println("Missing command:")
		helpMessage()
		os.Exit(1)
	}

	cmd := flag.Arg(0)
	rest := flag.Args()[1:]
	env := &Env{
		Home:   *varHome,
		Self:   matching.AccountID(*varSelf),
		Logger: logger,
		Out:    os.Stdout,
	}

	var err error
	switch cmd {
	case "help":
		helpMessage()
	case "init":
		err = InitCmd(env, rest)
	case "call":
		err = CallCmd(env, rest)
	case "tick":
		err = TickCmd(env, rest)
	case "query":
		err = QueryCmd(env, rest)
	case "version":
		fmt.Println(matching.Version())
	default:
		err = fmt.Errorf("unknown command: %s", cmd)
	}

	if err != nil {
		fmt.Printf("Error: %+v\n\n", err)
		helpMessage()
		os.Exit(1)
	}
}
