// Package main defines the CLI structure using kong.
package main

import (
	"github.com/alecthomas/kong"

	"github.com/vinayprograms/vnfagent/internal/config"
)

// Example goals run by `vnfagent examples` and by `vnfagent run` without arguments.
var exampleGoals = []string{
	"Please perform a pre-check on the VNF package named 'cisco_firewall_v2.1.zip'",
	"I need to validate a new package from a new vendor. The file is 'newvendor_router_highcpu.rar'",
}

// CLI defines the command-line interface.
type CLI struct {
	Globals

	Run      RunCmd      `cmd:"" help:"Validate the packages named in one or more goals"`
	Examples ExamplesCmd `cmd:"" help:"Run the built-in example goals"`
	Check    CheckCmd    `cmd:"" help:"Run the checks on a file name without a model"`
	Models   ModelsCmd   `cmd:"" help:"List models known to the catalog"`
	Version  VersionCmd  `cmd:"" help:"Show version information"`
}

// Globals are flags shared by every command.
type Globals struct {
	Config   string `help:"Config file path (default: ./vnfagent.toml if present)"`
	Format   string `short:"o" enum:"text,json,yaml" default:"text" help:"Report format (text, json, yaml)"`
	Provider string `help:"LLM provider (openai, azure, ollama)"`
	Model    string `short:"m" help:"Model name or deployment"`
	Tools    string `help:"Tool calling mode (auto, on, off)"`
	LogLevel string `help:"Log level (debug, info, warn, error)"`
	Width    int    `default:"80" help:"Wrap width for text reports"`
}

// overrides converts the flags into config overrides.
func (g *Globals) overrides() config.Overrides {
	return config.Overrides{
		Provider: g.Provider,
		Model:    g.Model,
		Tools:    g.Tools,
		LogLevel: g.LogLevel,
	}
}

// RunCmd validates the packages named in free-form goals.
type RunCmd struct {
	Goals     []string `arg:"" optional:"" help:"Goals naming a package file (default: the example goals)"`
	GoalsFile string   `short:"f" help:"YAML file with a list of goals, run after any given as arguments"`
}

// ExamplesCmd runs the example goals.
type ExamplesCmd struct{}

// CheckCmd runs the checks locally.
type CheckCmd struct {
	File string `arg:"" help:"Package file name (e.g. vendor_product_version.zip)"`
}

// ModelsCmd lists catalog models.
type ModelsCmd struct {
	Provider string `arg:"" optional:"" help:"Only list models of this catalog provider"`
}

// VersionCmd shows version information.
type VersionCmd struct{}

// kongVars returns variables for kong (version info).
func kongVars() kong.Vars {
	return kong.Vars{
		"version": version,
	}
}
