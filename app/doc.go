/*
Package app wires the extensions into a runnable application.

The Application owns the committed state, routes every message to the
handler registered for its path and exposes the host runtime that settles
transfers between calls.
*/
package app
