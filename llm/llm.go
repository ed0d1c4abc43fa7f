package llm

import (
	"context"
	"fmt"

	"github.com/mridul249/legalbot-backend/config"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Client generates an answer from an ordered conversation. Implementations
// return a typed error on provider failure and never substitute a fabricated
// answer string.
type Client interface {
	Generate(ctx context.Context, messages []Message) (string, error)
}

type Options struct {
	Provider    string
	Model       string
	MaxTokens   int
	Temperature float32

	OllamaHost    string
	OpenAIAPIKey  string
	OpenAIBaseURL string
	AzureAPIKey   string
	AzureEndpoint string
}

func NewClient(cfg config.Config) (Client, error) {
	opts := Options{
		Provider:      cfg.LLM.Provider,
		Model:         cfg.LLM.Model,
		MaxTokens:     cfg.LLM.MaxTokens,
		Temperature:   cfg.LLM.Temperature,
		OllamaHost:    cfg.OllamaHost,
		OpenAIAPIKey:  cfg.OpenAIAPIKey,
		OpenAIBaseURL: cfg.OpenAIBaseURL,
		AzureAPIKey:   cfg.AzureAPIKey,
		AzureEndpoint: cfg.AzureEndpoint,
	}

	switch opts.Provider {
	case config.ProviderOllama:
		return NewOllamaClient(opts), nil
	case config.ProviderOpenAI:
		if opts.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("openai provider selected but OPENAI_API_KEY not set")
		}
		return NewOpenAIClient(opts), nil
	case config.ProviderAzure:
		if opts.AzureAPIKey == "" || opts.AzureEndpoint == "" {
			return nil, fmt.Errorf("azure provider selected but AZURE_API_KEY or AZURE_OPENAI_ENDPOINT not set")
		}
		return NewAzureClient(opts), nil
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", opts.Provider)
	}
}

// ValidateConversation enforces the completion contract: at least one
// message, and the final message must come from the user.
func ValidateConversation(messages []Message) error {
	if len(messages) == 0 {
		return fmt.Errorf("conversation is empty")
	}
	if last := messages[len(messages)-1]; last.Role != RoleUser {
		return fmt.Errorf("conversation must end with a user message, got %q", last.Role)
	}
	return nil
}
