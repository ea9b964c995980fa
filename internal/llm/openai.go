package llm

import (
	"context"
	"errors"
	"net/http"

	openai "github.com/sashabaranov/go-openai"
)

const openRouterBaseURL = "https://openrouter.ai/api/v1"

// chatCompletions serves every OpenAI-compatible API. name labels errors
// and recorded events.
type chatCompletions struct {
	name   string
	client *openai.Client
	model  string
}

// NewOpenAIProvider builds a Provider on the OpenAI chat completions API.
func NewOpenAIProvider(ep Endpoint) (Provider, error) {
	return newChatCompletions(ProviderOpenAI, ep, nil)
}

// NewOpenRouterProvider builds a Provider on OpenRouter, which speaks the
// OpenAI protocol. An empty BaseURL uses the public endpoint.
func NewOpenRouterProvider(ep Endpoint) (Provider, error) {
	if ep.BaseURL == "" {
		ep.BaseURL = openRouterBaseURL
	}
	return newChatCompletions(ProviderOpenRouter, ep, nil)
}

func newChatCompletions(name string, ep Endpoint, hc *http.Client) (*chatCompletions, error) {
	if ep.APIKey == "" {
		return nil, errors.New(name + ": missing API key")
	}
	cfg := openai.DefaultConfig(ep.APIKey)
	if ep.BaseURL != "" {
		cfg.BaseURL = ep.BaseURL
	}
	if hc != nil {
		cfg.HTTPClient = hc
	}
	return &chatCompletions{name: name, client: openai.NewClientWithConfig(cfg), model: ep.Model}, nil
}

func (p *chatCompletions) ModelID() string { return p.model }

func (p *chatCompletions) Generate(ctx context.Context, req Request) (*Response, error) {
	msgs := make([]openai.ChatCompletionMessage, 0, len(req.Messages)+1)
	if req.System != "" {
		msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: req.System})
	}
	for _, m := range req.Messages {
		role := openai.ChatMessageRoleUser
		if m.Role == RoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		msgs = append(msgs, openai.ChatCompletionMessage{Role: role, Content: m.Content})
	}

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:               p.model,
		Messages:            msgs,
		MaxCompletionTokens: req.MaxTokens,
		Temperature:         float32(req.Temperature),
	})
	if err != nil {
		return nil, p.classify(err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return nil, emptyReply(p.name)
	}

	choice := resp.Choices[0]
	stop := StopEnd
	if choice.FinishReason == openai.FinishReasonLength {
		stop = StopMaxTokens
	}
	return &Response{
		Text:  choice.Message.Content,
		Model: resp.Model,
		Stop:  stop,
		Usage: Usage{
			InputTokens:  resp.Usage.PromptTokens,
			OutputTokens: resp.Usage.CompletionTokens,
		},
	}, nil
}

func (p *chatCompletions) classify(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fromStatus(p.name, apiErr.HTTPStatusCode, err)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return fromStatus(p.name, reqErr.HTTPStatusCode, err)
	}
	return &Error{Kind: KindUnavailable, Provider: p.name, Err: err}
}
