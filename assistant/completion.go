package assistant

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

// DefaultModel is the Gemini model used when none is configured.
const DefaultModel = "gemini-2.5-flash"

// Completer turns a prompt into the text of the model answer.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// CompleterFunc adapts a function to the Completer interface.
type CompleterFunc func(ctx context.Context, prompt string) (string, error)

func (f CompleterFunc) Complete(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// Gemini completes prompts with a Gemini model.
type Gemini struct {
	client *genai.Client
	Model  string
	Config *genai.GenerateContentConfig
}

// NewGemini creates a Gemini completer using the Gemini API backend.
func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	if apiKey == "" {
		return nil, errors.New("missing Gemini API key")
	}
	if model == "" {
		model = DefaultModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create Gemini client: %w", err)
	}
	return &Gemini{
		client: client,
		Model:  model,
		Config: &genai.GenerateContentConfig{Temperature: genai.Ptr[float32](0.2)},
	}, nil
}

// Complete sends prompt as a single user turn and returns the answer text.
func (g *Gemini) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.Model, genai.Text(prompt), g.Config)
	if err != nil {
		return "", err
	}
	return resp.Text(), nil
}
