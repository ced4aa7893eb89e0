package matching

import (
	amino "github.com/tendermint/go-amino"
)

// Msg is message for the contract to take an action
// (Make a state transition). It is just the request, and
// must be validated by the Handlers.
type Msg interface {
	// Return the message path.
	// This is used by the Router to locate the proper Handler.
	// Msg should be created alongside the Handler that corresponds to them.
	//
	// Must be alphanumeric [0-9A-Za-z_\-/]+
	Path() string

	// Validate performs a sanity check of the message content that does
	// not require access to the state.
	Validate() error
}

// Persistent supports Marshal and Unmarshal
//
// This is separated from Marshal, as this almost always requires
// a pointer, and functions that only need to marshal bytes can
// use the Marshaller interface to access non-pointers.
type Persistent interface {
	Marshal() ([]byte, error)
	Unmarshal([]byte) error
}

// RegisterCodec registers the Msg interface so that concrete messages,
// registered by each extension, can be serialized as an interface value.
// This is how a callback continuation is stored until the host executes it.
func RegisterCodec(cdc *amino.Codec) {
	cdc.RegisterInterface((*Msg)(nil), nil)
}
