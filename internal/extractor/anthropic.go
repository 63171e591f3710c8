package extractor

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/skiplogic/pkg/anthropic"
)

const defaultAnthropicModel = "claude-sonnet-4-5-20250929"

// Anthropic extracts skip schemas with a Claude model at temperature 0.
type Anthropic struct {
	client    anthropic.Client
	model     string
	maxTokens int64
	opts      options
}

// NewAnthropic creates an Anthropic extractor.
func NewAnthropic(client anthropic.Client, model string, maxTokens int64, opts ...Option) *Anthropic {
	if model == "" {
		model = defaultAnthropicModel
	}
	if maxTokens <= 0 {
		maxTokens = 8192
	}
	return &Anthropic{
		client:    client,
		model:     model,
		maxTokens: maxTokens,
		opts:      buildOptions(opts),
	}
}

// Extract sends the blocks text and parses the reply.
func (a *Anthropic) Extract(ctx context.Context, blocksText string) (*Result, error) {
	if err := a.opts.wait(ctx); err != nil {
		return nil, err
	}

	temp := 0.0
	resp, err := a.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:       a.model,
		MaxTokens:   a.maxTokens,
		System:      anthropic.BuildCachedSystemBlocks(SystemPrompt()),
		Messages:    []anthropic.Message{{Role: "user", Content: blocksText}},
		Temperature: &temp,
	})
	if err != nil {
		return nil, eris.Wrap(err, "extractor: anthropic call")
	}
	resp.Usage.LogCost(a.model, "extract")

	if resp.StopReason == "max_tokens" {
		raw := resp.Text()
		if err := a.opts.saveRaw(ctx, raw); err != nil {
			return nil, err
		}
		return nil, &SchemaError{Raw: raw, Err: eris.New("response truncated at max_tokens")}
	}
	return a.opts.finish(ctx, resp.Text(), a.model, resp.Usage)
}
