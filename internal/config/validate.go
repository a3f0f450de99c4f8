package config

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"dataprep/internal/faults"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateSplit(); err != nil {
		return err
	}
	if err := c.validateClasses(); err != nil {
		return err
	}
	if err := c.validatePreprocess(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	names := map[string]string{
		"paths.data_dir":   c.Paths.DataDir,
		"paths.output_dir": c.Paths.OutputDir,
		"paths.state_dir":  c.Paths.StateDir,
	}
	seen := make(map[string]string, len(names))
	for key, value := range names {
		if value == "." || value == ".." {
			return invalid("%s must name a directory below the root, got %q", key, value)
		}
		if other, dup := seen[value]; dup {
			return invalid("%s and %s must differ (both %q)", key, other, value)
		}
		seen[value] = key
	}
	if strings.ContainsRune(c.Environments.ColabSubdir, filepath.Separator) {
		return invalid("environments.colab_subdir must be a single directory name")
	}
	return nil
}

func (c *Config) validateSplit() error {
	return ValidateRatios(c.Split.TrainRatio, c.Split.ValRatio, c.Split.TestRatio)
}

// ValidateRatios rejects negative ratios, an all-zero triple, and triples
// whose sum is not 1.0.
func ValidateRatios(train, val, test float64) error {
	for _, r := range []struct {
		key   string
		value float64
	}{
		{"split.train_ratio", train},
		{"split.val_ratio", val},
		{"split.test_ratio", test},
	} {
		if math.IsNaN(r.value) || r.value < 0 || r.value > 1 {
			return invalid("%s must be between 0 and 1, got %v", r.key, r.value)
		}
	}
	sum := train + val + test
	if sum == 0 {
		return invalid("split ratios must not all be zero")
	}
	if math.Abs(sum-1) > ratioSumTolerance {
		return invalid("split ratios must sum to 1.0, got %v", sum)
	}
	return nil
}

func (c *Config) validateClasses() error {
	if c.Classes.ClassA == c.Classes.ClassB {
		return invalid("classes.class_a and classes.class_b must differ (both %q)", c.Classes.ClassA)
	}
	for key, name := range map[string]string{
		"classes.class_a": c.Classes.ClassA,
		"classes.class_b": c.Classes.ClassB,
	} {
		if strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
			return invalid("%s must be a plain directory name, got %q", key, name)
		}
	}
	if c.Classes.ClassA == c.Layout.NestedDir || c.Classes.ClassB == c.Layout.NestedDir {
		return invalid("class directory names must differ from layout.nested_dir %q", c.Layout.NestedDir)
	}
	return nil
}

func (c *Config) validatePreprocess() error {
	if c.Preprocess.Threshold < 0 || c.Preprocess.Threshold > maxPreprocessThreshold {
		return invalid("preprocess.threshold must be between 0 and %d", maxPreprocessThreshold)
	}
	if c.Preprocess.MaxValue < 0 {
		return invalid("preprocess.max_value must be >= 0")
	}
	if c.Preprocess.CropTop < 0 {
		return invalid("preprocess.crop_top must be >= 0")
	}
	if c.Preprocess.CropLeft < 0 {
		return invalid("preprocess.crop_left must be >= 0")
	}
	if c.Preprocess.JPEGQuality < 1 || c.Preprocess.JPEGQuality > 100 {
		return invalid("preprocess.jpeg_quality must be between 1 and 100")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return invalid("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return invalid("logging.level must be debug, info, warn or error, got %q", c.Logging.Level)
	}
	return nil
}

func invalid(format string, args ...any) error {
	return faults.Wrap(faults.ErrConfiguration, "config", "validate", fmt.Sprintf(format, args...), nil)
}
