package dialogue

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeMapper struct {
	mappings  []Mapping
	questions []string
	err       error

	requests []MapRequest
	asked    int
}

func (f *fakeMapper) MapAnswer(_ context.Context, req MapRequest) (*Mapping, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	m := f.mappings[0]
	f.mappings = f.mappings[1:]
	return &m, nil
}

func (f *fakeMapper) NextQuestion(_ context.Context, _ []Interaction, _ []MappedCategory) (string, error) {
	f.asked++
	if f.err != nil {
		return "", f.err
	}
	q := f.questions[0]
	f.questions = f.questions[1:]
	return q, nil
}

func newTestSession(t *testing.T, mapper *fakeMapper) (*Session, *History) {
	t.Helper()
	h, _ := openTestHistory(t)
	return NewSession(mapper, h, zap.NewNop()), h
}

func TestSessionOpensWithInitialQuestion(t *testing.T) {
	mapper := &fakeMapper{}
	s, _ := newTestSession(t, mapper)

	q, err := s.Question(context.Background())
	require.NoError(t, err)
	assert.Equal(t, InitialQuestion, q)
	assert.Zero(t, mapper.asked)
}

func TestSessionAnswerMapsCategory(t *testing.T) {
	mapper := &fakeMapper{mappings: []Mapping{{
		Category:      "maker & builder",
		Justification: " builds robots ",
		NextQuestion:  "What do you do for others?",
	}}}
	s, h := newTestSession(t, mapper)

	out, err := s.Answer(context.Background(), InitialQuestion, "  I build robots  ")
	require.NoError(t, err)

	assert.Equal(t, StatusMapped, out.Status)
	assert.Equal(t, "Maker & Builder Skills", out.Category)
	assert.Equal(t, "builds robots", out.Justification)
	assert.Equal(t, "What do you do for others?", out.NextQuestion)
	assert.Equal(t, 13, out.Completion)
	assert.False(t, out.Complete)

	require.Len(t, mapper.requests, 1)
	assert.True(t, mapper.requests[0].Initial)
	assert.Equal(t, "I build robots", mapper.requests[0].Answer)

	assert.Equal(t, []string{"Maker & Builder Skills"}, h.MappedNames())
	interactions := h.Interactions()
	require.Len(t, interactions, 1)
	assert.Equal(t, "Maker & Builder Skills", interactions[0].MappedCategory)

	q, err := s.Question(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "What do you do for others?", q, "the next question is remembered")
}

func TestSessionAnswerOutcomes(t *testing.T) {
	tests := []struct {
		name     string
		mapping  Mapping
		status   Status
		label    string
		next     string
		category string
	}{
		{
			name:     "weak fit repeats the question",
			mapping:  Mapping{Category: WeakFit, Justification: "too short", NextQuestion: "ignored"},
			status:   StatusWeakFit,
			label:    LabelWeakFit,
			category: WeakFit,
		},
		{
			name:     "already mapped",
			mapping:  Mapping{Category: "Human Skills (Durable)", NextQuestion: "next"},
			status:   StatusAlreadyMapped,
			label:    LabelAlreadyMapped,
			next:     "next",
			category: "Human Skills (Durable)",
		},
		{
			name:     "unknown category",
			mapping:  Mapping{Category: "Gardening", NextQuestion: "next"},
			status:   StatusFailed,
			label:    LabelFailed,
			next:     "next",
			category: "Gardening",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mapper := &fakeMapper{mappings: []Mapping{tt.mapping}}
			s, h := newTestSession(t, mapper)
			_, err := h.SaveMapped(MappedCategory{Category: "Human Skills (Durable)"})
			require.NoError(t, err)

			out, err := s.Answer(context.Background(), "question", "answer")
			require.NoError(t, err)

			assert.Equal(t, tt.status, out.Status)
			assert.Equal(t, tt.category, out.Category)
			assert.Equal(t, tt.next, out.NextQuestion)
			assert.Equal(t, []string{"Human Skills (Durable)"}, h.MappedNames())
			assert.False(t, mapper.requests[0].Initial)

			interactions := h.Interactions()
			require.Len(t, interactions, 1)
			assert.Equal(t, tt.label, interactions[0].MappedCategory)

			want := tt.next
			if tt.status == StatusWeakFit {
				want = "question"
			}
			assert.Equal(t, want, h.NextQuestion())
		})
	}
}

func TestSessionSynthesizesMissingQuestion(t *testing.T) {
	mapper := &fakeMapper{
		mappings:  []Mapping{{Category: "Civic & Community Impact"}},
		questions: []string{"Tell me about your work"},
	}
	s, h := newTestSession(t, mapper)

	out, err := s.Answer(context.Background(), InitialQuestion, "I volunteer")
	require.NoError(t, err)
	assert.Equal(t, "Tell me about your work", out.NextQuestion)
	assert.Equal(t, 1, mapper.asked)
	assert.Equal(t, "Tell me about your work", h.NextQuestion())
}

func TestSessionQuestionAfterMapping(t *testing.T) {
	mapper := &fakeMapper{questions: []string{"What drives you?"}}
	s, h := newTestSession(t, mapper)
	_, err := h.SaveMapped(MappedCategory{Category: "Civic & Community Impact"})
	require.NoError(t, err)

	q, err := s.Question(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "What drives you?", q)

	// asked once, then remembered
	q, err = s.Question(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "What drives you?", q)
	assert.Equal(t, 1, mapper.asked)
}

func TestSessionCompletes(t *testing.T) {
	defs := Categories()
	last := defs[len(defs)-1]

	mapper := &fakeMapper{mappings: []Mapping{{Category: last.Name, NextQuestion: "never asked"}}}
	s, h := newTestSession(t, mapper)
	for _, d := range defs[:len(defs)-1] {
		_, err := h.SaveMapped(MappedCategory{Category: d.Name})
		require.NoError(t, err)
	}

	out, err := s.Answer(context.Background(), "question", "answer")
	require.NoError(t, err)
	assert.True(t, out.Complete)
	assert.Equal(t, 100, out.Completion)
	assert.Empty(t, out.NextQuestion)

	_, err = s.Question(context.Background())
	assert.ErrorIs(t, err, ErrComplete)
	_, err = s.Answer(context.Background(), "question", "answer")
	assert.ErrorIs(t, err, ErrComplete)
}

func TestSessionAnswerErrors(t *testing.T) {
	mapper := &fakeMapper{err: errors.New("quota")}
	s, h := newTestSession(t, mapper)

	_, err := s.Answer(context.Background(), "question", "  ")
	assert.Error(t, err)
	_, err = s.Answer(context.Background(), " ", "answer")
	assert.Error(t, err)
	assert.Empty(t, mapper.requests)

	_, err = s.Answer(context.Background(), "question", "answer")
	assert.ErrorContains(t, err, "quota")
	assert.Empty(t, h.Interactions(), "failed calls are not recorded")
}
