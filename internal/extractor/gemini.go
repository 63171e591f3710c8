package extractor

import (
	"context"

	"github.com/rotisserie/eris"
	"google.golang.org/genai"

	"github.com/sells-group/skiplogic/pkg/anthropic"
)

const defaultGeminiModel = "gemini-2.5-flash"

// Generator is the subset of genai.Models the Gemini extractor calls.
type Generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Gemini extracts skip schemas with a Gemini model in JSON response mode.
type Gemini struct {
	gen       Generator
	model     string
	maxTokens int64
	opts      options
}

// NewGemini creates a Gemini extractor over gen.
func NewGemini(gen Generator, model string, maxTokens int64, opts ...Option) *Gemini {
	if model == "" {
		model = defaultGeminiModel
	}
	if maxTokens <= 0 {
		maxTokens = 8192
	}
	return &Gemini{gen: gen, model: model, maxTokens: maxTokens, opts: buildOptions(opts)}
}

// NewGeminiFromKey creates a Gemini extractor backed by the genai client.
func NewGeminiFromKey(ctx context.Context, apiKey, model string, maxTokens int64, opts ...Option) (*Gemini, error) {
	c, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey, Backend: genai.BackendGeminiAPI})
	if err != nil {
		return nil, eris.Wrap(err, "extractor: create gemini client")
	}
	return NewGemini(c.Models, model, maxTokens, opts...), nil
}

// Extract sends the blocks text and parses the reply.
func (g *Gemini) Extract(ctx context.Context, blocksText string) (*Result, error) {
	if err := g.opts.wait(ctx); err != nil {
		return nil, err
	}

	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(SystemPrompt(), genai.RoleUser),
		Temperature:       genai.Ptr[float32](0),
		MaxOutputTokens:   int32(g.maxTokens),
		ResponseMIMEType:  "application/json",
	}
	res, err := g.gen.GenerateContent(ctx, g.model, []*genai.Content{
		genai.NewContentFromText(blocksText, genai.RoleUser),
	}, cfg)
	if err != nil {
		return nil, eris.Wrap(err, "extractor: gemini call")
	}

	var usage anthropic.TokenUsage
	if m := res.UsageMetadata; m != nil {
		usage.InputTokens = int64(m.PromptTokenCount)
		usage.OutputTokens = int64(m.CandidatesTokenCount)
		usage.CacheReadInputTokens = int64(m.CachedContentTokenCount)
	}
	usage.LogCost(g.model, "extract")

	return g.opts.finish(ctx, res.Text(), g.model, usage)
}
