// Command dataprep prepares an image dataset for a binary classifier.
//
// It unpacks data.zip, splits the images into train/val/test sets, sorts them
// into two classes by file name and rewrites every image with a fixed
// grayscale, threshold and crop transform. Each run is recorded in a SQLite
// ledger under the root's state directory.
//
// Usage:
//
//	dataprep run local
//	dataprep stage split colab
//	dataprep check local
//	dataprep summary local
//	dataprep history local
//	dataprep config init
package main
