package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"dataprep/internal/config"
	"dataprep/internal/dataset"
	"dataprep/internal/ledger"
	"dataprep/internal/logging"
	"dataprep/internal/workflow"
)

type commandContext struct {
	configFlag    *string
	logLevelFlag  *string
	logFormatFlag *string

	configOnce sync.Once
	config     *config.Config
	configPath string
	configSeen bool
	configErr  error
}

func newCommandContext(configFlag, logLevelFlag, logFormatFlag *string) *commandContext {
	return &commandContext{
		configFlag:    configFlag,
		logLevelFlag:  logLevelFlag,
		logFormatFlag: logFormatFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, path, exists, err := config.Load(flagValue(c.configFlag))
		if err != nil {
			c.configErr = err
			return
		}
		if level := flagValue(c.logLevelFlag); level != "" {
			cfg.Logging.Level = strings.ToLower(level)
		}
		if format := flagValue(c.logFormatFlag); format != "" {
			cfg.Logging.Format = strings.ToLower(format)
		}
		if err := cfg.Validate(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = path
		c.configSeen = exists
	})
	return c.config, c.configErr
}

func (c *commandContext) layout(env string) (*config.Config, dataset.Layout, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, dataset.Layout{}, err
	}
	layout, err := cfg.ResolveLayout(env)
	if err != nil {
		return nil, dataset.Layout{}, err
	}
	return cfg, layout, nil
}

// session bundles what a mutating command needs: the ledger, a logger that
// also appends to the root's log file, and a workflow manager.
type session struct {
	layout  dataset.Layout
	store   *ledger.Store
	logger  *slog.Logger
	manager *workflow.Manager
}

func (c *commandContext) openSession(ctx context.Context, env string) (*session, error) {
	cfg, layout, err := c.layout(env)
	if err != nil {
		return nil, err
	}
	if err := config.EnsureStateDir(layout); err != nil {
		return nil, err
	}
	logger, err := logging.NewFromConfig(cfg, layout.LogPath())
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	store, err := ledger.Open(ctx, layout.LedgerPath())
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	return &session{
		layout:  layout,
		store:   store,
		logger:  logger,
		manager: workflow.NewManager(cfg, store, layout, logger),
	}, nil
}

func (s *session) Close() error {
	return s.store.Close()
}

func flagValue(p *string) string {
	if p == nil {
		return ""
	}
	return strings.TrimSpace(*p)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func environmentArgs(cmd *cobra.Command, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("expected exactly one environment argument (%s or %s)", dataset.EnvLocal, dataset.EnvColab)
	}
	return nil
}
