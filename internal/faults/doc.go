// Package faults classifies pipeline errors.
//
// Stages wrap failures with one of the exported sentinel markers so callers
// can branch with errors.Is while the message still names the stage and the
// operation that failed. FailureStatus maps a classified error to the status
// the ledger records for the failed stage and run.
package faults
