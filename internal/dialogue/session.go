package dialogue

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// ErrComplete is returned once every category is mapped.
var ErrComplete = errors.New("every category is mapped")

// MapRequest carries one answer together with what the session knows so far.
type MapRequest struct {
	Question string
	Answer   string
	// Initial is set while nothing is mapped yet.
	Initial bool
	History []Interaction
	Mapped  []MappedCategory
}

// Mapping is a model's verdict on one answer. NextQuestion may be empty.
type Mapping struct {
	Category      string `mapstructure:"category"`
	Justification string `mapstructure:"justification"`
	NextQuestion  string `mapstructure:"nextQuestion"`
}

// Mapper maps answers onto categories and comes up with questions.
type Mapper interface {
	MapAnswer(ctx context.Context, req MapRequest) (*Mapping, error)
	NextQuestion(ctx context.Context, history []Interaction, mapped []MappedCategory) (string, error)
}

type Status string

const (
	StatusMapped        Status = "mapped"
	StatusWeakFit       Status = "weak_fit"
	StatusAlreadyMapped Status = "already_mapped"
	StatusFailed        Status = "failed"
)

// Outcome describes what an answer did to the session.
type Outcome struct {
	Status Status `json:"status"`
	// Category is the resolved name, or the raw model answer when it did not resolve.
	Category      string `json:"category,omitempty"`
	Justification string `json:"justification,omitempty"`
	// NextQuestion is empty on a weak fit, the same question is asked again,
	// and once the session is complete.
	NextQuestion string `json:"nextQuestion,omitempty"`
	Completion   int    `json:"completionPercentage"`
	Complete     bool   `json:"complete"`
}

type Session struct {
	mapper  Mapper
	history *History
	logger  *zap.Logger
}

func NewSession(mapper Mapper, history *History, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{mapper: mapper, history: history, logger: logger}
}

func (s *Session) Complete() bool {
	return len(s.history.MappedNames()) >= Total
}

// Question returns the question to ask next: the one remembered from the last
// answer, the opening question while nothing is mapped, or a new one from the
// mapper.
func (s *Session) Question(ctx context.Context) (string, error) {
	if s.Complete() {
		return "", ErrComplete
	}

	if q := s.history.NextQuestion(); q != "" {
		return q, nil
	}

	mapped := s.history.Mapped()
	if len(mapped) == 0 {
		return InitialQuestion, nil
	}

	s.logger.Debug("synthesizing question", zap.Int("mapped", len(mapped)))
	q, err := s.mapper.NextQuestion(ctx, s.history.Interactions(), mapped)
	if err != nil {
		return "", fmt.Errorf("next question: %w", err)
	}
	if err := s.history.SetNextQuestion(q); err != nil {
		return "", err
	}
	return q, nil
}

// Answer maps answer to question, records the interaction and picks the next
// question.
func (s *Session) Answer(ctx context.Context, question, answer string) (*Outcome, error) {
	question = strings.TrimSpace(question)
	answer = strings.TrimSpace(answer)
	if question == "" {
		return nil, errors.New("question must not be empty")
	}
	if answer == "" {
		return nil, errors.New("answer must not be empty")
	}
	if s.Complete() {
		return nil, ErrComplete
	}

	mapped := s.history.Mapped()
	m, err := s.mapper.MapAnswer(ctx, MapRequest{
		Question: question,
		Answer:   answer,
		Initial:  len(mapped) == 0,
		History:  s.history.Interactions(),
		Mapped:   mapped,
	})
	if err != nil {
		return nil, fmt.Errorf("map answer: %w", err)
	}

	out := &Outcome{Category: strings.TrimSpace(m.Category), Justification: strings.TrimSpace(m.Justification)}
	def, ok := FindCategory(out.Category)
	if ok {
		out.Category = def.Name
	}

	label := out.Category
	switch {
	case ok && def.Name == WeakFit:
		out.Status = StatusWeakFit
		label = LabelWeakFit
	case ok && !s.history.IsMapped(def.Name):
		out.Status = StatusMapped
		if _, err := s.history.SaveMapped(MappedCategory{Category: def.Name, Justification: out.Justification}); err != nil {
			return nil, err
		}
	case s.history.IsMapped(out.Category):
		out.Status = StatusAlreadyMapped
		label = LabelAlreadyMapped
	default:
		out.Status = StatusFailed
		label = LabelFailed
	}

	if err := s.history.AddInteraction(Interaction{Question: question, Answer: answer, MappedCategory: label}); err != nil {
		return nil, err
	}

	s.logger.Info("answer mapped",
		zap.String("status", string(out.Status)),
		zap.String("category", out.Category),
	)

	out.Completion = CompletionPercentage(len(s.history.MappedNames()))
	out.Complete = s.Complete()

	next := ""
	switch {
	case out.Complete, out.Status == StatusWeakFit:
	case strings.TrimSpace(m.NextQuestion) != "":
		next = strings.TrimSpace(m.NextQuestion)
	default:
		s.logger.Debug("no next question in mapping, synthesizing one")
		next, err = s.mapper.NextQuestion(ctx, s.history.Interactions(), s.history.Mapped())
		if err != nil {
			return nil, fmt.Errorf("next question: %w", err)
		}
	}
	out.NextQuestion = next

	remembered := next
	if out.Status == StatusWeakFit {
		remembered = question
	}
	if err := s.history.SetNextQuestion(remembered); err != nil {
		return nil, err
	}

	return out, nil
}
