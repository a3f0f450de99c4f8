// Package classify assigns binary class labels from file names and sorts the
// files of each split directory into per-class subdirectories.
package classify
