package generator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/lalith-99/threadstream/internal/errs"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// Gemini calls Google's Generative Language API. One attempt per turn;
// the caller owns the timeout through ctx.
type Gemini struct {
	client *genai.Client
	model  string
}

func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &Gemini{client: client, model: model}, nil
}

func (g *Gemini) Close() error {
	return g.client.Close()
}

func (g *Gemini) Generate(ctx context.Context, prompt string) (string, error) {
	model := g.client.GenerativeModel(g.model)

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", providerError(err)
	}

	text := extractText(resp)
	if text == "" {
		return "", &errs.ProviderError{Detail: "empty candidate in generator response"}
	}
	return text, nil
}

// providerError maps transport failures to the ProviderError taxonomy,
// keeping the upstream HTTP status when the API supplied one.
func providerError(err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return &errs.ProviderError{Status: apiErr.Code, Detail: apiErr.Message}
	}
	return &errs.ProviderError{Detail: err.Error()}
}

func extractText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	return b.String()
}
