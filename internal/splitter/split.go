package splitter

import (
	"context"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"

	"dataprep/internal/config"
	"dataprep/internal/dataset"
	"dataprep/internal/faults"
	"dataprep/internal/fileutil"
)

// Ratios holds the fraction of each class sent to every split.
type Ratios struct {
	Train float64
	Val   float64
	Test  float64
}

// Validate applies the ratio policy: no negatives, not all zero, sum of 1.
func (r Ratios) Validate() error {
	if err := config.ValidateRatios(r.Train, r.Val, r.Test); err != nil {
		return faults.Wrap(faults.ErrValidation, StageName, "validate ratios", "", err)
	}
	return nil
}

// Options controls a Split call.
type Options struct {
	Ratios Ratios
	Seed   int64
	// Move relocates files instead of copying them.
	Move bool
}

// Counts returns how many of n files land in train, val and test.
func (r Ratios) Counts(n int) (train, val, test int) {
	train = int(r.Train * float64(n))
	val = int(r.Val * float64(n))
	if train+val > n {
		val = n - train
	}
	return train, val, n - train - val
}

// Split distributes the regular files of every class directory under src into
// dest/<split>/<class>/. Classes are visited in name order and the files of
// each class are sorted before being shuffled by a single generator seeded
// once, so equal inputs always produce equal splits.
func Split(ctx context.Context, src, dest string, opts Options) ([]dataset.Placement, error) {
	if err := opts.Ratios.Validate(); err != nil {
		return nil, err
	}

	classes, err := fileutil.Subdirectories(src)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, faults.Wrap(faults.ErrNotFound, StageName, "list classes", src, err)
		}
		return nil, faults.Wrap(faults.ErrIO, StageName, "list classes", src, err)
	}
	if len(classes) == 0 {
		return nil, faults.Wrap(faults.ErrValidation, StageName, "list classes",
			fmt.Sprintf("no class directories under %s", src), nil)
	}

	rng := rand.New(rand.NewPCG(uint64(opts.Seed), 0))
	splits := dataset.Splits()

	var placements []dataset.Placement
	for _, class := range classes {
		files, err := fileutil.RegularFiles(filepath.Join(src, class))
		if err != nil {
			return placements, faults.Wrap(faults.ErrIO, StageName, "list files", class, err)
		}
		rng.Shuffle(len(files), func(i, j int) { files[i], files[j] = files[j], files[i] })

		train, val, _ := opts.Ratios.Counts(len(files))
		bounds := []int{0, train, train + val, len(files)}

		for i, split := range splits {
			target := filepath.Join(dest, split, class)
			if err := os.MkdirAll(target, 0o755); err != nil {
				return placements, faults.Wrap(faults.ErrIO, StageName, "create split directory", target, err)
			}
			for _, name := range files[bounds[i]:bounds[i+1]] {
				if err := ctx.Err(); err != nil {
					return placements, err
				}
				if err := transfer(filepath.Join(src, class, name), filepath.Join(target, name), opts.Move); err != nil {
					return placements, faults.Wrap(faults.ErrIO, StageName, "place file", name, err)
				}
				placements = append(placements, dataset.Placement{
					Stage: StageName,
					Split: split,
					Label: class,
					File:  name,
				})
			}
		}
	}
	return placements, nil
}

func transfer(src, dst string, move bool) error {
	if move {
		return fileutil.MoveFile(src, dst, true)
	}
	return fileutil.CopyFile(src, dst)
}
