// Package stageexec runs a single stage handler with the logging and ledger
// bookkeeping every stage shares.
package stageexec
