package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/spigell/skill-mapper/internal/ai"
)

const (
	defaultModel       = "gemini-2.5-flash"
	defaultTemperature = 0.1
	jsonMIMEType       = "application/json"
)

// models is the subset of genai.Models used by the generator.
type models interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Generator wraps the Google GenAI client to provide simple prompt-based interactions.
type Generator struct {
	models      models
	modelName   string
	temperature float32
	logger      *zap.Logger
}

// NewGenerator creates a new Generator configured for the Gemini API backend.
func NewGenerator(ctx context.Context, apiKey, model string, logger *zap.Logger) (*Generator, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return newGenerator(client.Models, model, logger), nil
}

func newGenerator(m models, model string, logger *zap.Logger) *Generator {
	if model = strings.TrimSpace(model); model == "" {
		model = defaultModel
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Generator{
		models:      m,
		modelName:   model,
		temperature: defaultTemperature,
		logger:      logger,
	}
}

// GenerateContent sends the prompt with optional inline media and returns the textual response.
func (g *Generator) GenerateContent(ctx context.Context, prompt string, media ...ai.Media) (string, error) {
	return g.generateContent(ctx, prompt, media, "")
}

// GenerateJSON is like GenerateContent but asks the model for a JSON document.
func (g *Generator) GenerateJSON(ctx context.Context, prompt string, media ...ai.Media) (string, error) {
	return g.generateContent(ctx, prompt, media, jsonMIMEType)
}

func (g *Generator) generateContent(ctx context.Context, prompt string, media []ai.Media, responseMIMEType string) (string, error) {
	if g == nil || g.models == nil {
		return "", errors.New("gemini generator is not initialized")
	}
	config := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(g.temperature),
		ResponseMIMEType: responseMIMEType,
	}

	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", errors.New("prompt must not be empty")
	}

	parts := []*genai.Part{{Text: prompt}}
	for _, m := range media {
		if len(m.Data) == 0 {
			return "", errors.New("media attachment is empty")
		}
		parts = append(parts, &genai.Part{
			InlineData: &genai.Blob{MIMEType: m.MIMEType, Data: m.Data},
		})
	}

	contents := []*genai.Content{{Role: genai.RoleUser, Parts: parts}}

	g.logger.Debug("gemini generate content",
		zap.String("model", g.modelName),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.Int("attachments", len(media)),
	)

	resp, err := g.models.GenerateContent(ctx, g.modelName, contents, config)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	if resp == nil {
		return "", errors.New("gemini api returned empty response")
	}

	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil {
				continue
			}
			text := strings.TrimSpace(part.Text)
			if text == "" {
				continue
			}
			if builder.Len() > 0 {
				builder.WriteString("\n")
			}
			builder.WriteString(text)
		}
	}

	output := strings.TrimSpace(builder.String())
	if output == "" {
		return "", errors.New("gemini api returned empty response")
	}

	return output, nil
}

func (g *Generator) Model() string {
	if g == nil {
		return ""
	}
	return g.modelName
}

// WithTemperature returns a copy of g that samples with temperature t.
func (g *Generator) WithTemperature(t float32) *Generator {
	if g == nil {
		return nil
	}
	c := *g
	c.temperature = t
	return &c
}
