package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/ppiankov/trustie/internal/model"
	"github.com/ppiankov/trustie/internal/util"
)

// OpenAIBackend implements Backend over the Chat Completions API.
// It has no web search tool, so WebSearch requests are answered from the model alone.
type OpenAIBackend struct {
	client *openai.Client
	config Config
}

// NewOpenAIBackend creates a new OpenAI backend
func NewOpenAIBackend(config Config) (*OpenAIBackend, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("%w: OpenAI API key is required", model.ErrConfiguration)
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}
	clientConfig.HTTPClient = &http.Client{
		Timeout: config.timeout(60 * time.Second),
		Transport: &http.Transport{
			Proxy: util.NewProxyFunc(config.HTTPProxy, config.HTTPSProxy),
		},
	}

	return &OpenAIBackend{
		client: openai.NewClientWithConfig(clientConfig),
		config: config,
	}, nil
}

// Name returns the provider name
func (b *OpenAIBackend) Name() string {
	return "openai"
}

// Complete sends one chat completion request
func (b *OpenAIBackend) Complete(ctx context.Context, req Request) (*Response, error) {
	modelName := pickModel(req, b.config, openai.GPT4oMini)

	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.Prompt,
	})

	resp, err := b.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       modelName,
		Messages:    messages,
		MaxTokens:   pickMaxTokens(req, b.config),
		Temperature: 0.2,
	})
	if err != nil {
		return nil, fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from OpenAI")
	}

	return &Response{
		Text:       strings.TrimSpace(resp.Choices[0].Message.Content),
		Model:      modelName,
		TokensUsed: resp.Usage.TotalTokens,
	}, nil
}
