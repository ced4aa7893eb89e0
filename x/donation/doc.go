/*
Package donation implements a matching donation ledger.

A matcher escrows funds with the contract and commits them to a recipient.
Whenever a donor sends money to that recipient, every committed matcher
sends an additional matching donation out of escrow, capped by the donation
size and the matcher's remaining commitment.

All transfers out of escrow are asynchronous. A transfer is issued first
and the ledger is updated only once the host confirms that the transfer
succeeded, through a confirmation message the contract sends to itself.
Until then the transferred amount is held so it cannot be promised twice.
*/
package donation
