package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"dataprep/internal/dataset"
	"dataprep/internal/faults"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains the base directory and the names resolved against the root.
type Paths struct {
	BaseDir   string `toml:"base_dir"`
	Archive   string `toml:"archive"`
	DataDir   string `toml:"data_dir"`
	OutputDir string `toml:"output_dir"`
	StateDir  string `toml:"state_dir"`
}

// Environments contains per deployment context adjustments.
type Environments struct {
	// ColabSubdir is appended to the base directory when running on Colab.
	ColabSubdir string `toml:"colab_subdir"`
}

// Split contains the ratio splitter settings.
type Split struct {
	TrainRatio float64 `toml:"train_ratio"`
	ValRatio   float64 `toml:"val_ratio"`
	TestRatio  float64 `toml:"test_ratio"`
	Seed       int64   `toml:"seed"`
	MoveFiles  bool    `toml:"move_files"`
}

// Classes contains the filename rule used to assign binary labels.
type Classes struct {
	ClassA       string `toml:"class_a"`
	ClassB       string `toml:"class_b"`
	ClassASuffix string `toml:"class_a_suffix"`
}

// Layout contains directory reshaping settings.
type Layout struct {
	// NestedDir is the level created by the splitter that gets flattened away.
	NestedDir       string `toml:"nested_dir"`
	OverwriteOnMove bool   `toml:"overwrite_on_move"`
}

// Preprocess contains the fixed image transform constants.
type Preprocess struct {
	Threshold   int `toml:"threshold"`
	MaxValue    int `toml:"max_value"`
	CropTop     int `toml:"crop_top"`
	CropLeft    int `toml:"crop_left"`
	JPEGQuality int `toml:"jpeg_quality"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for dataprep.
//
// Configuration sections by subsystem:
//   - Paths: base directory and names of the archive and working directories
//   - Environments: deployment context offsets
//   - Split: ratios and seed for the train/val/test splitter
//   - Classes: class directory names and the filename rule
//   - Layout: flattening behaviour
//   - Preprocess: threshold and crop constants
//   - Logging: log format and level
type Config struct {
	Paths        Paths        `toml:"paths"`
	Environments Environments `toml:"environments"`
	Split        Split        `toml:"split"`
	Classes      Classes      `toml:"classes"`
	Layout       Layout       `toml:"layout"`
	Preprocess   Preprocess   `toml:"preprocess"`
	Logging      Logging      `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/dataprep/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, faults.Wrap(faults.ErrConfiguration, "config", "parse", resolvedPath, err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("dataprep.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// ResolveLayout turns the deployment context into absolute dataset paths.
// Only "local" and "colab" are accepted.
func (c *Config) ResolveLayout(env string) (dataset.Layout, error) {
	env = strings.ToLower(strings.TrimSpace(env))
	root := c.Paths.BaseDir
	switch env {
	case dataset.EnvLocal:
	case dataset.EnvColab:
		root = filepath.Join(root, c.Environments.ColabSubdir)
	default:
		return dataset.Layout{}, faults.Wrap(faults.ErrConfiguration, "config", "resolve layout",
			fmt.Sprintf("environment %q invalid (want %s or %s)", env, dataset.EnvLocal, dataset.EnvColab), nil)
	}

	return dataset.Layout{
		Environment: env,
		Root:        root,
		Archive:     underRoot(root, c.Paths.Archive),
		DataDir:     underRoot(root, c.Paths.DataDir),
		OutputDir:   underRoot(root, c.Paths.OutputDir),
		StateDir:    underRoot(root, c.Paths.StateDir),
	}, nil
}

// Ratios returns the configured split ratios in train/val/test order.
func (c *Config) Ratios() [3]float64 {
	return [3]float64{c.Split.TrainRatio, c.Split.ValRatio, c.Split.TestRatio}
}

// EnsureStateDir creates the directory holding the ledger, lock and log file.
func EnsureStateDir(layout dataset.Layout) error {
	if err := os.MkdirAll(layout.StateDir, 0o755); err != nil {
		return fmt.Errorf("create state directory %q: %w", layout.StateDir, err)
	}
	return nil
}

func underRoot(root, name string) string {
	if filepath.IsAbs(name) {
		return filepath.Clean(name)
	}
	return filepath.Join(root, name)
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
