// Package reports turns extracted document text into structured reports.
package reports

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"google.golang.org/genai"
)

// Generator produces a report from document text and a display name.
type Generator interface {
	Generate(ctx context.Context, text, name string) (string, error)
}

// Gemini generates reports with the Gemini API.
type Gemini struct {
	client *genai.Client
	model  string
	config *genai.GenerateContentConfig
	prompt *Prompt
	logger *slog.Logger
}

// NewGemini creates a Gemini generator from configuration.
func NewGemini(ctx context.Context, cfg *Config, logger *slog.Logger) (*Gemini, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	prompt, err := NewPrompt(cfg.PromptFile, cfg.MaxInputChars, cfg.Language)
	if err != nil {
		return nil, err
	}

	temperature := cfg.Temperature
	return &Gemini{
		client: client,
		model:  cfg.Model,
		config: &genai.GenerateContentConfig{
			Temperature:     &temperature,
			MaxOutputTokens: cfg.MaxOutputTokens,
		},
		prompt: prompt,
		logger: logger.With("system", "reports", "model", cfg.Model),
	}, nil
}

func (g *Gemini) Generate(ctx context.Context, text, name string) (string, error) {
	prompt, err := g.prompt.Render(name, text)
	if err != nil {
		return "", err
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), g.config)
	if err != nil {
		g.logger.ErrorContext(ctx, "generate content failed", "name", name, "error", err)
		return "", fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}

	report, err := reportText(resp)
	if err != nil {
		g.logger.WarnContext(ctx, "unusable model response", "name", name, "error", err)
		return "", fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}

	g.logger.InfoContext(ctx, "report generated", "name", name, "chars", len(report))
	return report, nil
}

func reportText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil {
		return "", ErrInvalidResponse
	}
	if len(resp.Candidates) == 0 {
		if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
			return "", fmt.Errorf("%w: %s", ErrContentBlocked, resp.PromptFeedback.BlockReason)
		}
		return "", ErrInvalidResponse
	}

	candidate := resp.Candidates[0]
	if candidate.FinishReason == genai.FinishReasonSafety {
		return "", ErrContentBlocked
	}
	if candidate.Content == nil {
		return "", ErrInvalidResponse
	}

	var sb strings.Builder
	for _, part := range candidate.Content.Parts {
		if part == nil || part.Thought {
			continue
		}
		sb.WriteString(part.Text)
	}

	report := strings.TrimSpace(sb.String())
	if report == "" {
		return "", ErrInvalidResponse
	}
	return report, nil
}
