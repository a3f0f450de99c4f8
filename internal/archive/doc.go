// Package archive unpacks the source zip into the unsplit data directory.
//
// Extract is the plain operation; Extractor adapts it to the stage contract so
// the workflow can run it as the first pipeline step.
package archive
