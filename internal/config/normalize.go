package config

import (
	"fmt"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeClasses()
	c.normalizeLayout()
	c.normalizePreprocess()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.BaseDir) == "" {
		c.Paths.BaseDir = defaultBaseDir
	}
	if c.Paths.BaseDir, err = expandPath(strings.TrimSpace(c.Paths.BaseDir)); err != nil {
		return fmt.Errorf("paths.base_dir: %w", err)
	}
	c.Paths.Archive = cleanName(c.Paths.Archive, defaultArchive)
	c.Paths.DataDir = cleanName(c.Paths.DataDir, defaultDataDir)
	c.Paths.OutputDir = cleanName(c.Paths.OutputDir, defaultOutputDir)
	c.Paths.StateDir = cleanName(c.Paths.StateDir, defaultStateDir)
	c.Environments.ColabSubdir = cleanName(c.Environments.ColabSubdir, defaultColabSubdir)
	return nil
}

func (c *Config) normalizeClasses() {
	c.Classes.ClassA = strings.TrimSpace(c.Classes.ClassA)
	if c.Classes.ClassA == "" {
		c.Classes.ClassA = defaultClassA
	}
	c.Classes.ClassB = strings.TrimSpace(c.Classes.ClassB)
	if c.Classes.ClassB == "" {
		c.Classes.ClassB = defaultClassB
	}
	c.Classes.ClassASuffix = strings.TrimSpace(c.Classes.ClassASuffix)
	if c.Classes.ClassASuffix == "" {
		c.Classes.ClassASuffix = defaultClassASuffix
	}
}

func (c *Config) normalizeLayout() {
	c.Layout.NestedDir = strings.TrimSpace(c.Layout.NestedDir)
	if c.Layout.NestedDir == "" {
		c.Layout.NestedDir = defaultNestedDir
	}
}

func (c *Config) normalizePreprocess() {
	if c.Preprocess.JPEGQuality <= 0 {
		c.Preprocess.JPEGQuality = defaultJPEGQuality
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func cleanName(value, fallback string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback
	}
	return filepath.Clean(value)
}
