package main

import (
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"elatprep/internal/config"
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

// ensureConfig loads the config file and environment once, then layers the
// flags that were set on cmd.
func (c *commandContext) ensureConfig(cmd *cobra.Command, run *runFlags) (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolved, exists, err := config.LoadWithOverrides(path, c.overrides(cmd, run))
		if err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = resolved
		c.configSeen = exists
	})
	return c.config, c.configErr
}

func (c *commandContext) overrides(cmd *cobra.Command, run *runFlags) config.Overrides {
	o := config.Overrides{
		LogLevel:  deref(c.logLevelFlag),
		LogFormat: deref(c.logFormatFlag),
	}
	if run != nil {
		o.Input = run.input
		o.Output = run.output
		o.VideoDir = run.videoDir
		if cmd != nil && cmd.Flags().Changed("history") {
			enabled := run.history
			o.History = &enabled
		}
	}
	return o
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
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
