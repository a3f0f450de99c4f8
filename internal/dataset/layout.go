package dataset

import "path/filepath"

// Deployment contexts accepted by the CLI.
const (
	EnvLocal = "local"
	EnvColab = "colab"
)

// Split names produced by the splitter, in ratio order.
const (
	SplitTrain = "train"
	SplitVal   = "val"
	SplitTest  = "test"
)

// Splits returns the split names in the order their ratios are applied.
func Splits() []string {
	return []string{SplitTrain, SplitVal, SplitTest}
}

// Layout holds every path a run touches. All fields are absolute.
type Layout struct {
	Environment string
	Root        string
	Archive     string
	DataDir     string
	OutputDir   string
	StateDir    string
}

// LockPath is the file guarding a root against concurrent runs.
func (l Layout) LockPath() string {
	return filepath.Join(l.StateDir, "run.lock")
}

// LedgerPath is the SQLite database recording runs for this root.
func (l Layout) LedgerPath() string {
	return filepath.Join(l.StateDir, "ledger.db")
}

// LogPath is the log file appended to by every run against this root.
func (l Layout) LogPath() string {
	return filepath.Join(l.StateDir, "dataprep.log")
}
