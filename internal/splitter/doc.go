// Package splitter partitions class directories into train, val and test sets
// by ratio with a reproducible shuffle.
package splitter
