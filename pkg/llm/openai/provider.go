package openai

import (
	"context"
	"fmt"

	"guideline-agent-be/pkg/llm"

	goopenai "github.com/sashabaranov/go-openai"
)

// OpenAIProvider talks to the chat completions API, or to any compatible endpoint via baseURL.
type OpenAIProvider struct {
	client   *goopenai.Client
	model    string
	defaults llm.Options
}

var _ llm.LLMProvider = &OpenAIProvider{}

func NewOpenAIProvider(apiKey, baseURL, model string, defaults ...llm.Option) *OpenAIProvider {
	cfg := goopenai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if model == "" {
		model = "gpt-4o-mini"
	}

	opts := llm.Options{Temperature: 0.7, MaxTokens: 500}
	for _, opt := range defaults {
		opt(&opts)
	}

	return &OpenAIProvider{
		client:   goopenai.NewClientWithConfig(cfg),
		model:    model,
		defaults: opts,
	}
}

func toChatMessages(history []llm.Message) []goopenai.ChatCompletionMessage {
	messages := make([]goopenai.ChatCompletionMessage, 0, len(history))
	for _, msg := range history {
		role := goopenai.ChatMessageRoleUser
		switch msg.Role {
		case llm.RoleSystem:
			role = goopenai.ChatMessageRoleSystem
		case llm.RoleAssistant:
			role = goopenai.ChatMessageRoleAssistant
		}
		messages = append(messages, goopenai.ChatCompletionMessage{
			Role:    role,
			Content: msg.Content,
		})
	}
	return messages
}

func (p *OpenAIProvider) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	options := p.defaults
	for _, opt := range opts {
		opt(&options)
	}

	model := p.model
	if options.Model != "" {
		model = options.Model
	}

	resp, err := p.client.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model:       model,
		Messages:    toChatMessages(history),
		MaxTokens:   options.MaxTokens,
		Temperature: float32(options.Temperature),
	})
	if err != nil {
		return "", fmt.Errorf("openai complete: %w", err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", llm.ErrEmptyResponse
	}

	return resp.Choices[0].Message.Content, nil
}

func (p *OpenAIProvider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return p.Chat(ctx, []llm.Message{{Role: llm.RoleUser, Content: prompt}}, opts...)
}
