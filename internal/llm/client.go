// Package llm provides the text-completion gateway used by every agent
// stage. It wraps Google Gemini behind a small interface so pipeline code
// and tests never touch the provider SDK directly.
package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Usage carries token counts and the provisional cost of a single call.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
	CostEstimate     float64
}

// Response is the result of a completion call.
type Response struct {
	Text         string
	Model        string
	GenerationID string
	Usage        Usage
}

// Client is an abstraction over LLM providers.
type Client interface {
	// Complete sends a system + user prompt and returns the response text
	// with usage metadata. When jsonMode is set the provider is asked for a
	// JSON object and markdown fences are stripped from the reply.
	Complete(ctx context.Context, system, user string, jsonMode bool) (Response, error)
	// Close releases any resources held by the client.
	Close() error
}

// Options configures the Gemini client.
type Options struct {
	Model          string
	FallbackModels []string
	MaxTokens      int
}

// GeminiClient implements Client for Google Gemini.
type GeminiClient struct {
	client *genai.Client
	opts   Options
}

// NewGeminiClient creates a new Gemini-backed client.
func NewGeminiClient(ctx context.Context, apiKey string, opts Options) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if opts.Model == "" {
		opts.Model = "gemini-2.5-flash"
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiClient{client: client, opts: opts}, nil
}

// Complete sends the prompt to the configured model, falling back to the
// configured alternates when the primary fails with a transient error.
func (c *GeminiClient) Complete(ctx context.Context, system, user string, jsonMode bool) (Response, error) {
	models := make([]string, 0, 1+len(c.opts.FallbackModels))
	models = append(models, c.opts.Model)
	for _, m := range c.opts.FallbackModels {
		if m != c.opts.Model {
			models = append(models, m)
		}
	}

	var lastErr error
	for i, name := range models {
		resp, err := c.generate(ctx, name, system, user, jsonMode)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if !IsTransient(err) || i == len(models)-1 {
			return Response{}, err
		}
	}
	return Response{}, lastErr
}

func (c *GeminiClient) generate(ctx context.Context, modelName, system, user string, jsonMode bool) (Response, error) {
	model := c.client.GenerativeModel(modelName)
	model.SetTemperature(0.2)
	if c.opts.MaxTokens > 0 {
		model.SetMaxOutputTokens(int32(c.opts.MaxTokens))
	}
	if system != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}
	}
	if jsonMode {
		model.ResponseMIMEType = "application/json"
	}

	resp, err := model.GenerateContent(ctx, genai.Text(user))
	if err != nil {
		return Response{}, fmt.Errorf("model %s: %w", modelName, err)
	}

	text, err := extractText(resp)
	if err != nil {
		return Response{}, fmt.Errorf("model %s: %w", modelName, err)
	}
	if jsonMode {
		text = CleanJSONBlock(text)
	}

	return Response{
		Text: text,
		// The SDK exposes no billing generation ID; the deferred cost
		// resolver keys off model + usage instead.
		Model: modelName,
		Usage: usageFromResponse(resp),
	}, nil
}

// Close releases resources held by the client.
func (c *GeminiClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// placeholderCostPerToken approximates OpenRouter-style pricing until the
// deferred cost resolver patches the true figure.
const placeholderCostPerToken = 0.00001

func usageFromResponse(resp *genai.GenerateContentResponse) Usage {
	var u Usage
	if resp.UsageMetadata != nil {
		u.PromptTokens = int(resp.UsageMetadata.PromptTokenCount)
		u.CompletionTokens = int(resp.UsageMetadata.CandidatesTokenCount)
		u.TotalTokens = int(resp.UsageMetadata.TotalTokenCount)
	}
	if u.TotalTokens == 0 {
		u.TotalTokens = u.PromptTokens + u.CompletionTokens
	}
	u.CostEstimate = float64(u.TotalTokens) * placeholderCostPerToken
	return u
}


func extractText(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates in response")
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("no content in response")
	}

	var parts []string
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			parts = append(parts, string(text))
		}
	}
	if len(parts) == 0 {
		return "", fmt.Errorf("no text parts in response")
	}
	return strings.Join(parts, ""), nil
}
