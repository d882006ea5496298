package intelligence

import (
	"context"
	"errors"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const DefaultClaudeModel = string(anthropic.ModelClaudeSonnet4_20250514)

// ClaudeCompleter talks to the Anthropic Messages API.
type ClaudeCompleter struct {
	client anthropic.Client
	model  string
}

func NewClaudeCompleter(apiKey, model string, opts ...option.RequestOption) (*ClaudeCompleter, error) {
	if apiKey == "" {
		return nil, ErrNotConfigured
	}
	if model == "" {
		model = DefaultClaudeModel
	}
	opts = append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	return &ClaudeCompleter{client: anthropic.NewClient(opts...), model: model}, nil
}

func (c *ClaudeCompleter) Name() string {
	return "claude"
}

func (c *ClaudeCompleter) Complete(ctx context.Context, p Prompt) (string, error) {
	msgs := make([]anthropic.MessageParam, 0, len(p.Messages))
	for _, m := range p.Messages {
		block := anthropic.NewTextBlock(m.Content)
		if m.Role == RoleAssistant {
			msgs = append(msgs, anthropic.NewAssistantMessage(block))
		} else {
			msgs = append(msgs, anthropic.NewUserMessage(block))
		}
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: int64(p.MaxTokens),
		Messages:  msgs,
	}
	if p.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: p.System}}
	}

	resp, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if sb.Len() == 0 {
		return "", errors.New("empty response from Claude")
	}
	return sb.String(), nil
}
