// Package matchingtest provides helpers for testing the ledger extensions.
package matchingtest
