package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"

	"github.com/spigell/skill-mapper/internal/dialogue"
	"github.com/spigell/skill-mapper/internal/logger"
)

const (
	// MapTemperature and QuestionTemperature are the generator temperatures
	// the dialogue command uses for mapping answers and writing questions.
	MapTemperature      float32 = 0.5
	QuestionTemperature float32 = 0.9

	mapInstruction = `You are a sophisticated trait mapper and question generator.
1. Map the answer to the taxonomy. Use '` + dialogue.WeakFit + `' if the fit is weak.
2. Generate a follow-up question.
Respond with JSON: {"category": "...", "justification": "...", "nextQuestion": "..."}`

	questionInstruction = `Based on all our interactions so far, the taxonomy (including the ` + dialogue.WeakFit + ` category as a mapping option), and the categories mapped to me so far, synthesize a new question that might help tease out which additional categories might map to me. You may (optionally) use what you've learned about me in previous answers as context in the question if it helps.`
)

// DialogueMapper maps session answers onto dialogue categories with Gemini.
type DialogueMapper struct {
	mapper    contentGenerator
	questions contentGenerator
	logger    *zap.Logger
	maxLogLen int
}

var _ dialogue.Mapper = (*DialogueMapper)(nil)

// NewDialogueMapper uses mapper for answer mapping and questions for new
// questions, so the two can run with different temperatures.
func NewDialogueMapper(mapper, questions contentGenerator, maxLogLength int, log *zap.Logger) *DialogueMapper {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &DialogueMapper{mapper: mapper, questions: questions, logger: log, maxLogLen: maxLogLength}
}

func (d *DialogueMapper) MapAnswer(ctx context.Context, req dialogue.MapRequest) (*dialogue.Mapping, error) {
	if strings.TrimSpace(req.Answer) == "" {
		return nil, errors.New("answer must not be empty")
	}

	var b strings.Builder
	b.WriteString(mapInstruction)
	b.WriteString("\n\n")
	if req.Initial {
		b.WriteString("This is the first answer of the session.\n")
	}
	fmt.Fprintf(&b, "QUESTION: %s\nANSWER: %s\nHISTORY: %s\nTAXONOMY: %s",
		strings.TrimSpace(req.Question),
		strings.TrimSpace(req.Answer),
		formatHistory(req.History),
		dialogue.TaxonomyString(),
	)
	prompt := b.String()

	d.logger.Debug("gemini map answer request",
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("answer_preview", logger.TruncateForLog(req.Answer, d.maxLogLen)),
	)

	raw, err := d.mapper.GenerateJSON(ctx, prompt)
	if err != nil {
		return nil, err
	}

	d.logger.Debug("gemini map answer response",
		zap.String("response_preview", logger.TruncateForLog(raw, d.maxLogLen)),
	)

	return parseMapping(raw)
}

func (d *DialogueMapper) NextQuestion(ctx context.Context, history []dialogue.Interaction, mapped []dialogue.MappedCategory) (string, error) {
	names := make([]string, 0, len(mapped))
	for _, m := range mapped {
		names = append(names, m.Category)
	}

	prompt := fmt.Sprintf("%s\n\nHISTORY:\n%s\n\nTAXONOMY:\n%s\n\nCATEGORIES MAPPED: %s\n\nRESPOND ONLY with the text of the new question. Do not include any other text, explanation, or formatting.",
		questionInstruction,
		formatHistory(history),
		dialogue.TaxonomyString(),
		strings.Join(names, ", "),
	)

	raw, err := d.questions.GenerateContent(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("synthesize question: %w", err)
	}

	question := strings.Trim(strings.TrimSpace(raw), "\"`")
	question = strings.TrimSpace(question)
	if question == "" {
		return "", errors.New("gemini returned no question")
	}

	d.logger.Debug("question synthesized", zap.String("question", logger.TruncateForLog(question, d.maxLogLen)))
	return question, nil
}

func formatHistory(history []dialogue.Interaction) string {
	lines := make([]string, 0, len(history))
	for _, in := range history {
		lines = append(lines, fmt.Sprintf("Q: %s | A: %s | Mapped: %s", in.Question, in.Answer, in.MappedCategory))
	}
	return strings.Join(lines, "\n")
}

func parseMapping(raw string) (*dialogue.Mapping, error) {
	var data map[string]any
	if err := json.Unmarshal([]byte(extractJSON(raw)), &data); err != nil {
		return nil, fmt.Errorf("parse gemini response: %w", err)
	}

	var out dialogue.Mapping
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &out,
	})
	if err != nil {
		return nil, fmt.Errorf("build response decoder: %w", err)
	}
	if err := decoder.Decode(data); err != nil {
		return nil, fmt.Errorf("decode gemini response: %w", err)
	}

	out.Category = strings.TrimSpace(out.Category)
	out.Justification = strings.TrimSpace(out.Justification)
	out.NextQuestion = strings.TrimSpace(out.NextQuestion)
	return &out, nil
}
