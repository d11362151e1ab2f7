package llm

import (
	"context"
	"fmt"
	"strings"

	"charm.land/fantasy"
	"charm.land/fantasy/providers/openai"
	"charm.land/fantasy/providers/openaicompat"
)

// Supported backend providers.
const (
	ProviderOpenAI = "openai"
	ProviderAzure  = "azure"
	ProviderOllama = "ollama"
)

// azureDeploymentsPath is appended to the Azure OpenAI endpoint.
const azureDeploymentsPath = "/openai/deployments"

// Config holds the connection parameters for one backend.
type Config struct {
	Provider  string
	Model     string
	APIKey    string
	BaseURL   string // OpenAI override, Ollama URL or Azure endpoint
	MaxTokens int
}

// FantasyAdapter wraps a fantasy.LanguageModel to implement Provider.
type FantasyAdapter struct {
	model     fantasy.LanguageModel
	maxTokens int
}

// NewFantasyAdapter creates a new adapter wrapping a fantasy LanguageModel.
func NewFantasyAdapter(model fantasy.LanguageModel, maxTokens int) *FantasyAdapter {
	return &FantasyAdapter{
		model:     model,
		maxTokens: maxTokens,
	}
}

// Chat implements Provider using fantasy's Generate method.
// A single attempt is made; callers decide how to degrade on error.
func (a *FantasyAdapter) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	call := fantasy.Call{
		Prompt: toPrompt(req.Messages),
	}

	for _, t := range req.Tools {
		call.Tools = append(call.Tools, fantasy.FunctionTool{
			Name:        t.Name,
			Description: t.Description,
			InputSchema: t.Parameters,
		})
	}

	maxTokens := int64(a.maxTokens)
	if req.MaxTokens > 0 {
		maxTokens = int64(req.MaxTokens)
	}
	if maxTokens > 0 {
		call.MaxOutputTokens = &maxTokens
	}

	resp, err := a.model.Generate(ctx, call)
	if err != nil {
		return nil, fmt.Errorf("fantasy generate failed: %w", err)
	}

	result := &ChatResponse{
		StopReason:   string(resp.FinishReason),
		InputTokens:  int(resp.Usage.InputTokens),
		OutputTokens: int(resp.Usage.OutputTokens),
		Model:        a.model.Model(),
	}

	for _, content := range resp.Content {
		switch c := content.(type) {
		case *fantasy.TextContent:
			result.Content += c.Text
		case fantasy.TextContent:
			result.Content += c.Text
		case *fantasy.ToolCallContent:
			result.ToolCalls = append(result.ToolCalls, ToolCall{
				ID:        c.ToolCallID,
				Name:      c.ToolName,
				Arguments: c.Input,
			})
		case fantasy.ToolCallContent:
			result.ToolCalls = append(result.ToolCalls, ToolCall{
				ID:        c.ToolCallID,
				Name:      c.ToolName,
				Arguments: c.Input,
			})
		}
	}

	return result, nil
}

// toPrompt converts role-tagged messages into a fantasy prompt.
func toPrompt(messages []Message) fantasy.Prompt {
	var prompt fantasy.Prompt
	for _, m := range messages {
		switch m.Role {
		case RoleSystem:
			prompt = append(prompt, fantasy.NewSystemMessage(m.Content))
		case RoleUser:
			prompt = append(prompt, fantasy.NewUserMessage(m.Content))
		case RoleAssistant:
			var parts []fantasy.MessagePart
			if m.Content != "" {
				parts = append(parts, fantasy.TextPart{Text: m.Content})
			}
			for _, tc := range m.ToolCalls {
				input := tc.Arguments
				if strings.TrimSpace(input) == "" {
					input = "{}"
				}
				parts = append(parts, fantasy.ToolCallPart{
					ToolCallID: tc.ID,
					ToolName:   tc.Name,
					Input:      input,
				})
			}
			if len(parts) == 0 {
				continue
			}
			prompt = append(prompt, fantasy.Message{
				Role:    fantasy.MessageRoleAssistant,
				Content: parts,
			})
		case RoleTool:
			prompt = append(prompt, fantasy.Message{
				Role: fantasy.MessageRoleTool,
				Content: []fantasy.MessagePart{
					fantasy.ToolResultPart{
						ToolCallID: m.ToolCallID,
						Output:     fantasy.ToolResultOutputContentText{Text: m.Content},
					},
				},
			})
		}
	}
	return prompt
}

// createFantasyProvider creates a fantasy provider for the configured backend.
func createFantasyProvider(cfg Config) (fantasy.Provider, error) {
	switch cfg.Provider {
	case ProviderOpenAI:
		if cfg.BaseURL != "" {
			return openaicompat.New(
				openaicompat.WithBaseURL(cfg.BaseURL),
				openaicompat.WithAPIKey(cfg.APIKey),
				openaicompat.WithName(ProviderOpenAI),
			)
		}
		return openai.New(openai.WithAPIKey(cfg.APIKey))
	case ProviderAzure:
		if cfg.BaseURL == "" {
			return nil, fmt.Errorf("endpoint is required for provider %s", cfg.Provider)
		}
		return openaicompat.New(
			openaicompat.WithBaseURL(AzureBaseURL(cfg.BaseURL)),
			openaicompat.WithAPIKey(cfg.APIKey),
			openaicompat.WithName(ProviderAzure),
		)
	case ProviderOllama:
		if cfg.BaseURL == "" {
			return nil, fmt.Errorf("base_url is required for provider %s", cfg.Provider)
		}
		return openaicompat.New(
			openaicompat.WithBaseURL(cfg.BaseURL),
			openaicompat.WithAPIKey(cfg.APIKey),
			openaicompat.WithName(ProviderOllama),
		)
	default:
		return nil, fmt.Errorf("unsupported provider: %s", cfg.Provider)
	}
}

// AzureBaseURL derives the OpenAI-compatible base URL from an Azure endpoint.
func AzureBaseURL(endpoint string) string {
	return strings.TrimRight(endpoint, "/") + azureDeploymentsPath
}

// NewProvider creates a Provider for the configured backend.
func NewProvider(ctx context.Context, cfg Config) (Provider, error) {
	if cfg.Model == "" {
		return nil, fmt.Errorf("model is required")
	}

	fantasyProvider, err := createFantasyProvider(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s provider: %w", cfg.Provider, err)
	}

	model, err := fantasyProvider.LanguageModel(ctx, cfg.Model)
	if err != nil {
		return nil, fmt.Errorf("failed to get model %s: %w", cfg.Model, err)
	}

	return NewFantasyAdapter(model, cfg.MaxTokens), nil
}
