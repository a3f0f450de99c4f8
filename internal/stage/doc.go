// Package stage defines the contract every pipeline stage implements and the
// health record stages report to the check command.
package stage
