/*
Package host implements the runtime that contract handlers are executed in.

A Runtime owns the contract account. Entry point calls move the attached
deposit to that account before the handler runs. Transfers issued by the
handler are queued and settled later, one at a time, each in its own cache.
Once a transfer is settled the scheduled callback message (if any) is
delivered with the runtime's own account as the caller and the transfer
outcome available through the context.
*/
package host
