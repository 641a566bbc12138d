package engine

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// openAIProvider serves gpt/o-family models.
type openAIProvider struct {
	client openai.Client
}

func newOpenAIProvider(apiKey string) *openAIProvider {
	return &openAIProvider{
		client: openai.NewClient(option.WithAPIKey(apiKey)),
	}
}

func (p *openAIProvider) Name() string {
	return providerOpenAI
}

func (p *openAIProvider) Complete(ctx context.Context, req completionRequest) (string, error) {
	messages := []openai.ChatCompletionMessageParamUnion{}
	if req.System != "" {
		messages = append(messages, openai.SystemMessage(req.System))
	}
	messages = append(messages, openai.UserMessage(req.Prompt))

	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(req.Model),
		Messages: messages,
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.MaxTokens))
	}

	response, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openai call failed: %w", err)
	}
	if len(response.Choices) == 0 {
		return "", fmt.Errorf("openai returned no choices")
	}
	return response.Choices[0].Message.Content, nil
}
