package insight

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// DefaultModelName is the Gemini model used when none is configured.
const DefaultModelName = "gemini-2.5-flash"

// Generator provides an interface for text generation.
// This interface enables mocking and testing of the AI call.
type Generator interface {
	// Generate sends prompt to a model and returns its text answer.
	Generate(ctx context.Context, prompt string) (string, error)
}

// GeminiGenerator is the concrete implementation of Generator that uses Gemini.
type GeminiGenerator struct {
	client *genai.Client
	model  string
}

// GeminiOptions selects the model and credentials. With VertexAI set the
// client authenticates through Application Default Credentials against
// Project and Location; otherwise APIKey is used.
type GeminiOptions struct {
	Model    string
	APIKey   string
	VertexAI bool
	Project  string
	Location string
}

// NewGeminiGenerator creates a Gemini client.
func NewGeminiGenerator(ctx context.Context, opts GeminiOptions) (*GeminiGenerator, error) {
	model := opts.Model
	if model == "" {
		model = DefaultModelName
	}
	cc := &genai.ClientConfig{
		APIKey:      opts.APIKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	}
	if opts.VertexAI {
		cc.APIKey = ""
		cc.Backend = genai.BackendVertexAI
		cc.Project = opts.Project
		cc.Location = opts.Location
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("NewGeminiGenerator: create genai client: %w", err)
	}
	return &GeminiGenerator{client: client, model: model}, nil
}

// Generate implements Generator.
func (g *GeminiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	contents := []*genai.Content{
		{
			Role:  "user",
			Parts: []*genai.Part{{Text: prompt}},
		},
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("Generate: generate content: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("Generate: empty response from model %s", g.model)
	}
	return text, nil
}

var _ Generator = (*GeminiGenerator)(nil)
