package gemini

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"

	"github.com/spigell/skill-mapper/internal/ai"
	"github.com/spigell/skill-mapper/internal/logger"
	"github.com/spigell/skill-mapper/internal/matcher"
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, prompt string, media ...ai.Media) (string, error)
	GenerateJSON(ctx context.Context, prompt string, media ...ai.Media) (string, error)
}

//go:embed prompt.md
var promptTemplate string

const (
	defaultMaxLogLength = 200
	imagePlaceholder    = "(the activity is shown in the attached image)"
	transcribePrompt    = "Please transcribe the following audio file. Return only the transcribed text."
)

// Classifier asks Gemini which taxonomy skills an activity shows and maps the
// answer back onto canonical names.
type Classifier struct {
	generator contentGenerator
	matcher   *matcher.Matcher
	logger    *zap.Logger
	maxLogLen int
}

var _ ai.Classifier = (*Classifier)(nil)

func NewClassifier(generator contentGenerator, m *matcher.Matcher, maxLogLength int, log *zap.Logger) *Classifier {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &Classifier{
		generator: generator,
		matcher:   m,
		logger:    log,
		maxLogLen: maxLogLength,
	}
}

func (c *Classifier) Classify(ctx context.Context, in ai.Input) (*ai.Classification, error) {
	text := strings.TrimSpace(in.Text)
	var media []ai.Media

	switch in.Source {
	case ai.SourceText, ai.SourceVoice:
		if text == "" {
			return nil, fmt.Errorf("%s input requires text", in.Source)
		}
	case ai.SourceImage:
		if in.Media == nil || len(in.Media.Data) == 0 {
			return nil, errors.New("image input requires media")
		}
		media = append(media, *in.Media)
		if text == "" {
			text = imagePlaceholder
		}
	default:
		return nil, fmt.Errorf("unsupported source %q", in.Source)
	}

	prompt := buildPrompt(c.matcher.Taxonomy().PromptString(), string(in.Source), text)

	c.logger.Debug("gemini classify request",
		zap.String("source", string(in.Source)),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", logger.TruncateForLog(prompt, c.maxLogLen)),
	)

	raw, err := c.generator.GenerateJSON(ctx, prompt, media...)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("gemini classify response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", logger.TruncateForLog(raw, c.maxLogLen)),
	)

	parsed, err := parseResponse(raw)
	if err != nil {
		return nil, err
	}

	// weak matches are kept; the confidence filter decides on them
	skills := c.matcher.MapAll(parsed.PrimarySkills)
	for _, r := range skills {
		if r.Confidence < matcher.MinConfidence {
			c.logger.Debug("weak skill in response", logger.MatchFields(r)...)
		}
	}

	return &ai.Classification{
		Summary:        parsed.Summary,
		Skills:         skills,
		OriginalSkills: parsed.PrimarySkills,
		Raw:            raw,
	}, nil
}

// Transcriber turns a voice recording into text.
type Transcriber struct {
	generator contentGenerator
	logger    *zap.Logger
}

var _ ai.Transcriber = (*Transcriber)(nil)

func NewTranscriber(generator contentGenerator, log *zap.Logger) *Transcriber {
	if log == nil {
		log = zap.NewNop()
	}
	return &Transcriber{generator: generator, logger: log}
}

func (t *Transcriber) Transcribe(ctx context.Context, audio ai.Media) (string, error) {
	if len(audio.Data) == 0 {
		return "", errors.New("audio recording is empty")
	}

	text, err := t.generator.GenerateContent(ctx, transcribePrompt, audio)
	if err != nil {
		return "", fmt.Errorf("transcribe audio: %w", err)
	}

	t.logger.Debug("audio transcribed",
		zap.String("mime_type", audio.MIMEType),
		zap.Int("transcript_length", utf8.RuneCountInString(text)),
	)
	return strings.TrimSpace(text), nil
}

func buildPrompt(taxonomy, source, input string) string {
	template := promptTemplate
	if strings.TrimSpace(template) == "" {
		template = "Taxonomy:\n{{TAXONOMY}}\n\nSource: {{SOURCE}}\n\nInput:\n{{INPUT}}\n\nJSON Response:"
	}
	prompt := strings.ReplaceAll(template, "{{TAXONOMY}}", taxonomy)
	prompt = strings.ReplaceAll(prompt, "{{SOURCE}}", source)
	prompt = strings.ReplaceAll(prompt, "{{INPUT}}", input)
	return prompt
}

type classifyResponse struct {
	Summary       string   `mapstructure:"summary"`
	PrimarySkills []string `mapstructure:"primary_skills"`
	Skills        []string `mapstructure:"skills"`
}

func parseResponse(raw string) (*classifyResponse, error) {
	cleaned := extractJSON(raw)

	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return nil, fmt.Errorf("parse gemini response: %w", err)
	}

	var out classifyResponse
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToSliceHookFunc(","),
		WeaklyTypedInput: true,
		Result:           &out,
	})
	if err != nil {
		return nil, fmt.Errorf("build response decoder: %w", err)
	}
	if err := decoder.Decode(data); err != nil {
		return nil, fmt.Errorf("decode gemini response: %w", err)
	}

	// some models answer with "skills" instead of "primary_skills"
	if len(out.PrimarySkills) == 0 {
		out.PrimarySkills = out.Skills
	}
	out.Skills = nil

	skills := make([]string, 0, len(out.PrimarySkills))
	for _, s := range out.PrimarySkills {
		if s = strings.TrimSpace(s); s != "" {
			skills = append(skills, s)
		}
	}
	out.PrimarySkills = skills
	out.Summary = strings.TrimSpace(out.Summary)

	return &out, nil
}

// extractJSON strips markdown fences and any prose around the outermost object.
func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")

	start, end := strings.Index(raw, "{"), strings.LastIndex(raw, "}")
	if start != -1 && end > start {
		raw = raw[start : end+1]
	}
	return strings.TrimSpace(raw)
}
