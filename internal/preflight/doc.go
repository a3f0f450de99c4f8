// Package preflight provides readiness checks for the filesystem paths a
// dataset run depends on.
//
// These checks run in two contexts:
//   - The workflow manager calls RunAll before the first stage of a full run.
//     If any check fails, the run stops before anything is written.
//   - The CLI "dataprep check" command prints every result.
package preflight
