/*
Package cash keeps the balances of all accounts and moves the ledger
currency between them. It is the asset primitive of the host: attached
deposits and outbound transfers are settled through the Controller.
*/
package cash
