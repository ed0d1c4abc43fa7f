package llm

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

type openAIClient struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float32
}

func NewOpenAIClient(opts Options) Client {
	cfg := openai.DefaultConfig(opts.OpenAIAPIKey)
	if opts.OpenAIBaseURL != "" {
		cfg.BaseURL = opts.OpenAIBaseURL
	}
	return newOpenAIClient(cfg, opts)
}

// NewAzureClient targets an Azure OpenAI deployment. The model name doubles
// as the deployment name, matching the default Azure config mapping.
func NewAzureClient(opts Options) Client {
	cfg := openai.DefaultAzureConfig(opts.AzureAPIKey, opts.AzureEndpoint)
	return newOpenAIClient(cfg, opts)
}

func newOpenAIClient(cfg openai.ClientConfig, opts Options) Client {
	return &openAIClient{
		client:      openai.NewClientWithConfig(cfg),
		model:       opts.Model,
		maxTokens:   opts.MaxTokens,
		temperature: opts.Temperature,
	}
}

func (c *openAIClient) Generate(ctx context.Context, messages []Message) (string, error) {
	if err := ValidateConversation(messages); err != nil {
		return "", err
	}

	req := openai.ChatCompletionRequest{
		Model:       c.model,
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
	}

	req.Messages = make([]openai.ChatCompletionMessage, len(messages))
	for i, msg := range messages {
		req.Messages[i] = openai.ChatCompletionMessage{
			Role:    msg.Role,
			Content: msg.Content,
		}
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("create chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}

	return resp.Choices[0].Message.Content, nil
}
