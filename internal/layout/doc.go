// Package layout reshapes the split output tree: it lifts files out of the
// nested directory the splitter creates, removes that directory, and finally
// promotes the output tree to replace the unsplit data directory.
//
// Each operation has a matching stage handler (Flattener, Cleaner, Promoter).
package layout
