package llm_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mridul249/legalbot-backend/config"
	"github.com/mridul249/legalbot-backend/llm"
)

func TestNewClientOllama(t *testing.T) {
	cfg := config.Config{
		OllamaHost: "http://localhost:11434",
		LLM: config.LLMConfig{
			Provider: config.ProviderOllama,
			Model:    "llama3.1:8b",
		},
	}

	client, err := llm.NewClient(cfg)
	require.NoError(t, err)
	assert.NotNil(t, client)
}

func TestNewClientOpenAIRequiresAPIKey(t *testing.T) {
	cfg := config.Config{
		LLM: config.LLMConfig{
			Provider: config.ProviderOpenAI,
			Model:    "gpt-4o",
		},
	}

	_, err := llm.NewClient(cfg)
	require.Error(t, err)
}

func TestNewClientAzureRequiresEndpointAndKey(t *testing.T) {
	cfg := config.Config{
		AzureAPIKey: "key",
		LLM: config.LLMConfig{
			Provider: config.ProviderAzure,
			Model:    "gpt-4",
		},
	}

	_, err := llm.NewClient(cfg)
	require.Error(t, err)

	cfg.AzureEndpoint = "https://example.openai.azure.com/"
	client, err := llm.NewClient(cfg)
	require.NoError(t, err)
	assert.NotNil(t, client)
}

func TestNewClientUnknownProvider(t *testing.T) {
	cfg := config.Config{LLM: config.LLMConfig{Provider: "anthropic"}}

	_, err := llm.NewClient(cfg)
	require.Error(t, err)
}

func TestValidateConversation(t *testing.T) {
	assert.Error(t, llm.ValidateConversation(nil))

	assert.Error(t, llm.ValidateConversation([]llm.Message{
		{Role: llm.RoleUser, Content: "q"},
		{Role: llm.RoleAssistant, Content: "a"},
	}), "conversation must end with a user message")

	assert.NoError(t, llm.ValidateConversation([]llm.Message{
		{Role: llm.RoleSystem, Content: "persona"},
		{Role: llm.RoleUser, Content: "q"},
	}))
}
