/*
Package matching defines interfaces used throughout the donation matching
ledger, such as: storage, messages, handlers and the host runtime
capability. It also contains helpers to work with the call context.
Look into this package to get a brief overview of design decisions made
around interfaces and extension building blocks.

We pass context through context.Context between the host, the router and
handlers. There exist two functions for every XYZ of type T that we want to
support in Context:

	WithXYZ(Context, T) Context
	GetXYZ(Context) (val T, ok bool)
*/
package matching
