package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"aaxconv/internal/config"
	"aaxconv/internal/deps"
	"aaxconv/internal/logging"
	"aaxconv/internal/toolexec"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configPath string
	configFile bool
	configErr  error

	newRunner    func(*slog.Logger) toolexec.Runner
	resolveTools func(config.Tools) (deps.Tools, []deps.Status, error)
}

// contextOption replaces a collaborator; tests swap in a fake runner.
type contextOption func(*commandContext)

func newCommandContext(configFlag *string, opts ...contextOption) *commandContext {
	c := &commandContext{
		configFlag: configFlag,
		newRunner: func(logger *slog.Logger) toolexec.Runner {
			return toolexec.NewCommandRunner(logger)
		},
		resolveTools: deps.Resolve,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolved, exists, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = resolved
		c.configFile = exists
	})
	return c.config, c.configErr
}

// configCopy returns a private copy that a command may overlay flags onto.
func (c *commandContext) configCopy() (*config.Config, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	clone := *cfg
	return &clone, nil
}

func newLogger(cfg *config.Config, stderr io.Writer) (*slog.Logger, error) {
	opts := logging.OptionsForVerbosity(cfg.Logging.Verbosity, cfg.Logging.Format, cfg.Logging.File)
	opts.Writer = stderr
	logger, err := logging.New(opts)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return logger, nil
}

// acquireLock takes the single-instance lock without waiting.
func acquireLock(cfg *config.Config) (*flock.Flock, error) {
	lock := flock.New(cfg.LockPath())
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock %s: %w", cfg.LockPath(), err)
	}
	if !ok {
		return nil, fmt.Errorf("another aaxconv conversion is running (lock %s)", cfg.LockPath())
	}
	return lock, nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
