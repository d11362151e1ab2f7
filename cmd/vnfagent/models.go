package main

import (
	"context"
	"os"
	"time"

	"github.com/vinayprograms/vnfagent/internal/llm"
)

// Run lists catalog models.
func (c *ModelsCmd) Run(g *Globals) error {
	renderer, err := newRenderer(g, os.Stdout)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	models, err := llm.ListModels(ctx, c.Provider)
	if err != nil {
		return err
	}
	return renderer.Models(models)
}
