package llm

import (
	"context"
	"errors"
	"io"

	"github.com/rotisserie/eris"
	openai "github.com/sashabaranov/go-openai"
)

// openAIClient implements Client against any OpenAI-compatible
// chat-completions endpoint.
type openAIClient struct {
	inner *openai.Client
	model string
}

// OpenAIOption configures the OpenAI-compatible client.
type OpenAIOption func(*openai.ClientConfig)

// WithBaseURL points the client at a non-default API host.
func WithBaseURL(url string) OpenAIOption {
	return func(cfg *openai.ClientConfig) {
		cfg.BaseURL = url
	}
}

// NewOpenAI creates a Client backed by an OpenAI-compatible endpoint.
func NewOpenAI(apiKey, model string, opts ...OpenAIOption) Client {
	cfg := openai.DefaultConfig(apiKey)
	for _, o := range opts {
		o(&cfg)
	}
	return &openAIClient{
		inner: openai.NewClientWithConfig(cfg),
		model: model,
	}
}

func (c *openAIClient) buildRequest(req Request) openai.ChatCompletionRequest {
	model := req.Model
	if model == "" {
		model = c.model
	}
	out := openai.ChatCompletionRequest{
		Model:     model,
		MaxTokens: req.MaxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: req.System},
			{Role: openai.ChatMessageRoleUser, Content: req.Prompt},
		},
	}
	if req.Temperature != nil {
		out.Temperature = float32(*req.Temperature)
	}
	return out
}

func (c *openAIClient) Complete(ctx context.Context, req Request) (string, error) {
	resp, err := c.inner.CreateChatCompletion(ctx, c.buildRequest(req))
	if err != nil {
		return "", eris.Wrap(err, "llm: create chat completion")
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

func (c *openAIClient) CompleteStream(ctx context.Context, req Request, onDelta func(string)) (string, error) {
	r := c.buildRequest(req)
	r.Stream = true

	stream, err := c.inner.CreateChatCompletionStream(ctx, r)
	if err != nil {
		return "", eris.Wrap(err, "llm: create chat completion stream")
	}
	defer stream.Close()

	var acc []byte
	for {
		chunk, recvErr := stream.Recv()
		if errors.Is(recvErr, io.EOF) {
			break
		}
		if recvErr != nil {
			return "", eris.Wrap(recvErr, "llm: receive stream chunk")
		}
		if len(chunk.Choices) == 0 {
			continue
		}
		delta := chunk.Choices[0].Delta.Content
		if delta == "" {
			continue
		}
		acc = append(acc, delta...)
		if onDelta != nil {
			onDelta(delta)
		}
	}
	return string(acc), nil
}
