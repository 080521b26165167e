package llm

import (
	"context"
	"strings"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rotisserie/eris"
)

// defaultMaxTokens applies when the request does not set a budget; the
// Anthropic API requires an explicit value.
const defaultMaxTokens = 4096

// anthropicClient implements Client using the official anthropic-sdk-go.
type anthropicClient struct {
	inner sdk.Client
	model string
}

// NewAnthropic creates a Client backed by the Anthropic Messages API.
func NewAnthropic(apiKey, model string) Client {
	return &anthropicClient{
		inner: sdk.NewClient(option.WithAPIKey(apiKey)),
		model: model,
	}
}

func (c *anthropicClient) Complete(ctx context.Context, req Request) (string, error) {
	model := req.Model
	if model == "" {
		model = c.model
	}
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	params := sdk.MessageNewParams{
		Model:     sdk.Model(model),
		MaxTokens: int64(maxTokens),
		Messages: []sdk.MessageParam{
			sdk.NewUserMessage(sdk.NewTextBlock(req.Prompt)),
		},
	}
	if req.System != "" {
		params.System = []sdk.TextBlockParam{{Text: req.System}}
	}
	if req.Temperature != nil {
		params.Temperature = sdk.Float(*req.Temperature)
	}

	msg, err := c.inner.Messages.New(ctx, params)
	if err != nil {
		return "", eris.Wrap(err, "llm: anthropic create message")
	}

	var b strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	return b.String(), nil
}

// CompleteStream degrades to one blocking completion delivered as a single
// delta. The caller still receives the full accumulated text to parse.
func (c *anthropicClient) CompleteStream(ctx context.Context, req Request, onDelta func(string)) (string, error) {
	text, err := c.Complete(ctx, req)
	if err != nil {
		return "", err
	}
	if onDelta != nil && text != "" {
		onDelta(text)
	}
	return text, nil
}
