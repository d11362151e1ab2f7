package main

import (
	"context"
	"fmt"
	"time"

	"github.com/vinayprograms/vnfagent/internal/agent"
	"github.com/vinayprograms/vnfagent/internal/config"
	"github.com/vinayprograms/vnfagent/internal/llm"
	"github.com/vinayprograms/vnfagent/internal/logging"
	"github.com/vinayprograms/vnfagent/internal/telemetry"
)

// catalogTimeout bounds the model catalog lookup done at startup.
const catalogTimeout = 5 * time.Second

// runtime holds everything a run needs, built once per invocation.
type runtime struct {
	cfg      *config.Config
	logger   *logging.Logger
	metrics  *telemetry.Metrics
	shutdown telemetry.ShutdownFunc
}

// loadConfig resolves file, environment and flags, in that order of precedence.
func loadConfig(g *Globals) (*config.Config, error) {
	cfg, err := config.Load(g.Config)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv()
	cfg.ApplyOverrides(g.overrides())
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// newLogger builds the stderr logger described by cfg.
func newLogger(cfg config.LoggingConfig) (*logging.Logger, error) {
	logger := logging.New()
	if cfg.Level != "" {
		level, err := logging.ParseLevel(cfg.Level)
		if err != nil {
			return nil, err
		}
		logger.SetLevel(level)
	}
	if cfg.Format == string(logging.FormatJSON) {
		logger.SetFormat(logging.FormatJSON)
	}
	return logger, nil
}

// setupRuntime loads configuration and installs logging and telemetry.
func setupRuntime(ctx context.Context, g *Globals) (*runtime, error) {
	cfg, err := loadConfig(g)
	if err != nil {
		return nil, err
	}
	logger, err := newLogger(cfg.Logging)
	if err != nil {
		return nil, err
	}

	shutdown, err := telemetry.Init(ctx, cfg.Telemetry)
	if err != nil {
		return nil, err
	}
	metrics, err := telemetry.NewMetrics()
	if err != nil {
		logger.Warn("metrics disabled", map[string]interface{}{"error": err.Error()})
	}

	return &runtime{cfg: cfg, logger: logger, metrics: metrics, shutdown: shutdown}, nil
}

// close flushes telemetry.
func (rt *runtime) close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rt.shutdown(ctx); err != nil {
		rt.logger.Warn("telemetry shutdown failed", map[string]interface{}{"error": err.Error()})
	}
}

// newAgent connects to the configured backend and builds the agent.
func (rt *runtime) newAgent(ctx context.Context) (*agent.Agent, error) {
	provider, err := llm.NewProvider(ctx, llm.Config{
		Provider:  rt.cfg.LLM.Provider,
		Model:     rt.cfg.LLM.Model,
		APIKey:    rt.cfg.GetAPIKey(),
		BaseURL:   rt.cfg.LLM.BaseURL,
		MaxTokens: rt.cfg.LLM.MaxTokens,
	})
	if err != nil {
		return nil, err
	}
	rt.warnUnknownModel(ctx)

	return agent.New(agent.Options{
		Provider:     provider,
		ProviderName: rt.cfg.LLM.Provider,
		Model:        rt.cfg.LLM.Model,
		ToolsEnabled: rt.cfg.ToolsEnabled(),
		Logger:       rt.logger,
		Metrics:      rt.metrics,
	})
}

// warnUnknownModel logs when the catalog does not list the configured model.
// Ollama models are local and never in the catalog; lookup failures are ignored.
func (rt *runtime) warnUnknownModel(ctx context.Context) {
	if rt.cfg.LLM.Provider == llm.ProviderOllama {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, catalogTimeout)
	defer cancel()

	models, err := llm.ListModels(ctx, rt.cfg.LLM.Provider)
	if err != nil {
		rt.logger.Debug("model catalog unavailable", map[string]interface{}{"error": err.Error()})
		return
	}
	if !modelKnown(models, rt.cfg.LLM.Model) {
		rt.logger.Warn("model not in catalog", map[string]interface{}{
			"provider": rt.cfg.LLM.Provider,
			"model":    rt.cfg.LLM.Model,
		})
	}
}

func modelKnown(models []llm.ModelInfo, id string) bool {
	for _, m := range models {
		if m.ID == id {
			return true
		}
	}
	return false
}
