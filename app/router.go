package app

import (
	"fmt"
	"regexp"

	matching "github.com/ryancwalsh/donation-matching"
	"github.com/ryancwalsh/donation-matching/errors"
)

var isPath = regexp.MustCompile(`^[0-9A-Za-z_\-/]+$`).MatchString

// Router allows us to register many handlers with different paths and then
// direct each message to the proper handler.
//
// Minimal interface modeled after net/http.ServeMux
type Router struct {
	routes map[string]matching.Handler
}

var _ matching.Registry = (*Router)(nil)
var _ matching.Handler = (*Router)(nil)

// NewRouter returns a new empty router instance.
func NewRouter() *Router {
	return &Router{
		routes: make(map[string]matching.Handler),
	}
}

// Handle adds a new Handler for the given message path. It panics if the
// path is invalid or already registered.
func (r *Router) Handle(msg matching.Msg, h matching.Handler) {
	path := msg.Path()
	if !isPath(path) {
		panic(fmt.Sprintf("invalid path: %q", path))
	}
	if _, ok := r.routes[path]; ok {
		panic(fmt.Sprintf("re-registering route: %s", path))
	}
	r.routes[path] = h
}

// handler returns the registered Handler for this path. If no path is
// found, returns a noSuchPath Handler. Always returns a non-nil Handler.
func (r *Router) handler(m matching.Msg) matching.Handler {
	path := m.Path()
	if h, ok := r.routes[path]; ok {
		return h
	}
	return notFoundHandler(path)
}

// Deliver dispatches the message to the handler registered for its path.
// A panic inside the handler is returned as an error.
func (r *Router) Deliver(ctx matching.Context, db matching.KVStore, msg matching.Msg) (res *matching.DeliverResult, err error) {
	defer errors.Recover(&err)
	return r.handler(msg).Deliver(ctx, db, msg)
}

// notFoundHandler always returns ErrNotFound error regardless of the
// arguments.
type notFoundHandler string

func (path notFoundHandler) Deliver(matching.Context, matching.KVStore, matching.Msg) (*matching.DeliverResult, error) {
	return nil, errors.Wrapf(errors.ErrNotFound, "no handler for message path %q", string(path))
}
