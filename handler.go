package matching

import (
	"encoding/json"

	"github.com/tendermint/tendermint/libs/common"
)

// Handler is a core engine that can process a few specific messages.
// This could represent "offer matching funds", or "confirm a transfer".
type Handler interface {
	Deliver(ctx Context, db KVStore, msg Msg) (*DeliverResult, error)
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(ctx Context, db KVStore, msg Msg) (*DeliverResult, error)

// Deliver implements Handler interface.
func (fn HandlerFunc) Deliver(ctx Context, db KVStore, msg Msg) (*DeliverResult, error) {
	return fn(ctx, db, msg)
}

// DeliverResult captures any non-error result of a call.
type DeliverResult struct {
	// Data is a machine readable result of the call.
	Data []byte
	// Log is a human readable report of what happened.
	Log string
	// Tags contain key/value pairs describing the call, used for
	// indexing and observability.
	Tags []common.KVPair
}

// Registry is an interface to register your handler,
// the setup side of a Router
type Registry interface {
	// Handle assigns given handler to process all messages with the same
	// path as the given message.
	Handle(Msg, Handler)
}

// Options are the app options
// Each extension can look up it's key and parse the json as desired
type Options map[string]json.RawMessage

// ReadOptions reads the values stored under a given key,
// and parses the json into the given obj.
// Returns an error if it cannot parse.
// Noop and no error if key is missing
func (o Options) ReadOptions(key string, obj interface{}) error {
	msg := o[key]
	if len(msg) == 0 {
		return nil
	}
	return json.Unmarshal(msg, obj)
}

// Initializer implementations are used to initialize
// extensions from genesis file contents
type Initializer interface {
	FromGenesis(Options, KVStore) error
}

// ChainInitializers lets you initialize many extensions with one function
func ChainInitializers(inits ...Initializer) Initializer {
	return chainInitializer(inits)
}

type chainInitializer []Initializer

// FromGenesis will pass the options to all extensions in order.
func (c chainInitializer) FromGenesis(opts Options, kv KVStore) error {
	for _, i := range c {
		if err := i.FromGenesis(opts, kv); err != nil {
			return err
		}
	}
	return nil
}

// Tag returns a KVPair for the result tags.
func Tag(key, value string) common.KVPair {
	return common.KVPair{Key: []byte(key), Value: []byte(value)}
}
