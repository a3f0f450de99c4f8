// Package dataset describes the on-disk shape of a preparation run.
//
// A Layout is resolved once from configuration and the deployment context and
// is handed to every stage, so no stage has to rediscover the project root.
// Run carries the per-run identifier and the placements each stage reports,
// and Tally counts images per split and class for summaries and checks.
package dataset
