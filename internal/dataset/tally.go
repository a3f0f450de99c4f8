package dataset

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Tally maps split -> label -> file count.
type Tally map[string]map[string]int

// Total sums every count in the tally.
func (t Tally) Total() int {
	total := 0
	for _, labels := range t {
		for _, n := range labels {
			total += n
		}
	}
	return total
}

// SplitTotal sums the counts of a single split.
func (t Tally) SplitTotal(split string) int {
	total := 0
	for _, n := range t[split] {
		total += n
	}
	return total
}

// SplitNames returns the splits present in the tally, sorted.
func (t Tally) SplitNames() []string {
	names := make([]string, 0, len(t))
	for name := range t {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LabelNames returns every label seen in any split, sorted.
func (t Tally) LabelNames() []string {
	seen := map[string]struct{}{}
	for _, labels := range t {
		for label := range labels {
			seen[label] = struct{}{}
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Count walks root/<split>/<label>/... and counts regular files below each
// label directory. Files sitting directly in a split directory are counted
// under the empty label. A missing root yields an empty tally.
func Count(root string) (Tally, error) {
	tally := Tally{}
	splits, err := os.ReadDir(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return tally, nil
		}
		return nil, err
	}
	for _, split := range splits {
		if !split.IsDir() || hidden(split.Name()) {
			continue
		}
		splitDir := filepath.Join(root, split.Name())
		labels := map[string]int{}
		entries, err := os.ReadDir(splitDir)
		if err != nil {
			return nil, err
		}
		for _, entry := range entries {
			if hidden(entry.Name()) {
				continue
			}
			if !entry.IsDir() {
				if entry.Type().IsRegular() {
					labels[""]++
				}
				continue
			}
			n, err := countFiles(filepath.Join(splitDir, entry.Name()))
			if err != nil {
				return nil, err
			}
			labels[entry.Name()] += n
		}
		tally[split.Name()] = labels
	}
	return tally, nil
}

func countFiles(dir string) (int, error) {
	n := 0
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() && !hidden(d.Name()) {
			n++
		}
		return nil
	})
	return n, err
}

func hidden(name string) bool {
	return strings.HasPrefix(name, ".")
}
