// Package main is the entry point for the VNF package pre-validation agent.
package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
)

// Build-time variables (set via ldflags)
var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
)

func init() {
	// Load .env without overriding variables already set
	_ = godotenv.Load()
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("vnfagent"),
		kong.Description("LLM-driven pre-validation of VNF packages."),
		kong.UsageOnError(),
		kongVars(),
	)
	if err := ctx.Run(&cli.Globals); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// Run prints version information.
func (c *VersionCmd) Run(g *Globals) error {
	fmt.Printf("vnfagent version %s (commit: %s, built: %s)\n", version, commit, buildTime)
	return nil
}
