/*
Package coin provides the money type of the ledger.

There is a single currency, so an amount is just a non negative integer of
arbitrary size. Arithmetic never silently goes below zero: Subtract fails
and SaturatingSubtract stops at zero.
*/
package coin
