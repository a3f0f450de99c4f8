// Package workflow runs the dataset preparation pipeline.
//
// The Manager owns the ordered stage list, the per-root run lock, and the run
// lifecycle recorded in the ledger. Each stage invocation goes through
// stageexec so logging and persistence look the same whether the CLI runs the
// whole pipeline or a single stage.
package workflow
