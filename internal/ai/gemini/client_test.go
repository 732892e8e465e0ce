package gemini

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/spigell/skill-mapper/internal/ai"
)

type modelCall struct {
	model    string
	contents []*genai.Content
	config   *genai.GenerateContentConfig
}

type fakeModels struct {
	resp  *genai.GenerateContentResponse
	err   error
	calls []modelCall
}

func (f *fakeModels) GenerateContent(_ context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.calls = append(f.calls, modelCall{model: model, contents: contents, config: config})
	return f.resp, f.err
}

func textResponse(parts ...string) *genai.GenerateContentResponse {
	content := &genai.Content{}
	for _, p := range parts {
		content.Parts = append(content.Parts, &genai.Part{Text: p})
	}
	return &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{Content: content}}}
}

func TestGeneratorJoinsCandidateParts(t *testing.T) {
	models := &fakeModels{resp: textResponse("  first ", "", "second")}
	g := newGenerator(models, "", zap.NewNop())

	out, err := g.GenerateContent(context.Background(), "  hello  ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "first\nsecond" {
		t.Fatalf("unexpected output: %q", out)
	}

	if g.Model() != defaultModel {
		t.Fatalf("expected default model, got %q", g.Model())
	}

	call := models.calls[0]
	if call.model != defaultModel {
		t.Fatalf("unexpected model in call: %q", call.model)
	}
	if got := call.contents[0].Parts[0].Text; got != "hello" {
		t.Fatalf("expected trimmed prompt, got %q", got)
	}
	if call.config.ResponseMIMEType != "" {
		t.Fatalf("plain generation must not force a mime type")
	}
	if call.config.Temperature == nil || *call.config.Temperature != defaultTemperature {
		t.Fatalf("expected default temperature")
	}
}

func TestGeneratorJSONWithMedia(t *testing.T) {
	models := &fakeModels{resp: textResponse(`{"summary": "ok"}`)}
	g := newGenerator(models, "gemini-test", zap.NewNop())

	image := ai.Media{MIMEType: "image/jpeg", Data: []byte{0xff, 0xd8}}
	if _, err := g.GenerateJSON(context.Background(), "describe", image); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	call := models.calls[0]
	if call.config.ResponseMIMEType != jsonMIMEType {
		t.Fatalf("expected json mime type, got %q", call.config.ResponseMIMEType)
	}

	parts := call.contents[0].Parts
	if len(parts) != 2 {
		t.Fatalf("expected prompt and image parts, got %d", len(parts))
	}
	if parts[1].InlineData == nil || parts[1].InlineData.MIMEType != "image/jpeg" {
		t.Fatalf("unexpected inline data: %+v", parts[1].InlineData)
	}
}

func TestGeneratorErrors(t *testing.T) {
	tests := []struct {
		name   string
		models *fakeModels
		prompt string
		media  []ai.Media
	}{
		{name: "empty prompt", models: &fakeModels{resp: textResponse("x")}, prompt: "   "},
		{name: "empty media", models: &fakeModels{resp: textResponse("x")}, prompt: "p", media: []ai.Media{{MIMEType: "audio/mp4"}}},
		{name: "api error", models: &fakeModels{err: genai.APIError{Code: http.StatusTooManyRequests, Status: "RESOURCE_EXHAUSTED"}}, prompt: "p"},
		{name: "nil response", models: &fakeModels{}, prompt: "p"},
		{name: "blank response", models: &fakeModels{resp: textResponse("  ")}, prompt: "p"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newGenerator(tt.models, "m", nil)
			if _, err := g.GenerateContent(context.Background(), tt.prompt, tt.media...); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestGeneratorWrapsAPIError(t *testing.T) {
	apiErr := genai.APIError{Code: http.StatusForbidden, Status: "PERMISSION_DENIED"}
	g := newGenerator(&fakeModels{err: apiErr}, "m", nil)

	_, err := g.GenerateContent(context.Background(), "p")

	var target genai.APIError
	if !errors.As(err, &target) || target.Code != http.StatusForbidden {
		t.Fatalf("expected wrapped api error, got %v", err)
	}
}

func TestNilGenerator(t *testing.T) {
	var g *Generator
	if _, err := g.GenerateContent(context.Background(), "p"); err == nil {
		t.Fatal("expected error from nil generator")
	}
	if _, err := g.GenerateJSON(context.Background(), "p"); err == nil {
		t.Fatal("expected error from nil generator")
	}
	if _, err := (&Generator{}).GenerateJSON(context.Background(), "p"); err == nil {
		t.Fatal("expected error from generator without models")
	}
	if g.Model() != "" {
		t.Fatal("expected empty model from nil generator")
	}
}

func TestNewGeneratorRequiresAPIKey(t *testing.T) {
	if _, err := NewGenerator(context.Background(), "  ", "", nil); err == nil {
		t.Fatal("expected error for empty api key")
	}
}

func TestGeneratorWithTemperature(t *testing.T) {
	models := &fakeModels{resp: textResponse("ok")}
	g := newGenerator(models, "m", nil)
	warm := g.WithTemperature(QuestionTemperature)

	if _, err := warm.GenerateContent(context.Background(), "p"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := g.GenerateContent(context.Background(), "p"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := *models.calls[0].config.Temperature; got != QuestionTemperature {
		t.Fatalf("expected temperature %v, got %v", QuestionTemperature, got)
	}
	if got := *models.calls[1].config.Temperature; got != defaultTemperature {
		t.Fatalf("original generator must keep its temperature, got %v", got)
	}

	var nilGen *Generator
	if nilGen.WithTemperature(1) != nil {
		t.Fatal("expected nil copy of nil generator")
	}
}
