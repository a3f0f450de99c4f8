// Package ledger persists the history of preparation runs in SQLite.
//
// Each run gets a row keyed by its UUID, each stage transition is appended to
// stage_events, and every placement a stage reports (which split and class a
// file landed in) is stored so a seeded split can be audited or compared
// across runs. The database lives in the layout's state directory, outside
// the data tree the pipeline rewrites.
package ledger
