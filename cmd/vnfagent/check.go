package main

import (
	"context"
	"os"

	"github.com/vinayprograms/vnfagent/internal/config"
	"github.com/vinayprograms/vnfagent/internal/executor"
	"github.com/vinayprograms/vnfagent/internal/logging"
	"github.com/vinayprograms/vnfagent/internal/planner"
)

// Run executes every check on the file name without contacting a model.
func (c *CheckCmd) Run(g *Globals) error {
	renderer, err := newRenderer(g, os.Stdout)
	if err != nil {
		return err
	}
	logger, err := newLogger(config.LoggingConfig{Level: g.LogLevel})
	if err != nil {
		return err
	}

	outputs := checkLocal(context.Background(), logger, c.File)
	return renderer.Local(c.File, outputs)
}

// checkLocal runs all checks against fileName.
func checkLocal(ctx context.Context, logger *logging.Logger, fileName string) []executor.ToolOutput {
	return executor.New(logger, nil).Execute(ctx, planner.ForFile(fileName))
}
