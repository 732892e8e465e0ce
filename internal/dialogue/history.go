package dialogue

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/spigell/skill-mapper/internal/store"
)

// Labels recorded for answers that did not map a new category.
const (
	LabelWeakFit       = "NO-OP (WEAK FIT)"
	LabelAlreadyMapped = "ALREADY MAPPED (IGNORED)"
	LabelFailed        = "MAPPING FAILED"
)

type MappedCategory struct {
	Category       string    `json:"category"`
	Justification  string    `json:"justification"`
	DateIdentified time.Time `json:"dateIdentified"`
}

// Interaction is one answered question. MappedCategory holds the category
// name or one of the Label values.
type Interaction struct {
	Question       string    `json:"question"`
	Answer         string    `json:"answer"`
	MappedCategory string    `json:"mappedCategory"`
	Timestamp      time.Time `json:"timestamp"`
}

type historyDocument struct {
	MappedCategories []MappedCategory `json:"mappedCategories"`
	Interactions     []Interaction    `json:"interactions"`
	NextQuestion     string           `json:"nextQuestion,omitempty"`
}

// History persists mapped categories and the conversation in one JSON file.
// It is safe for concurrent use within one process.
type History struct {
	mu   sync.Mutex
	path string
	doc  historyDocument
	now  func() time.Time
}

// OpenHistory loads the history at path. A missing or empty file is an empty
// history.
func OpenHistory(path string) (*History, error) {
	h := &History{path: path, now: func() time.Time { return time.Now().UTC() }}
	if _, err := store.ReadJSON(path, &h.doc); err != nil {
		return nil, err
	}
	if h.doc.MappedCategories == nil {
		h.doc.MappedCategories = []MappedCategory{}
	}
	if h.doc.Interactions == nil {
		h.doc.Interactions = []Interaction{}
	}
	return h, nil
}

func (h *History) Path() string { return h.path }

// Mapped returns a copy of the mapped categories in the order they were mapped.
func (h *History) Mapped() []MappedCategory {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]MappedCategory{}, h.doc.MappedCategories...)
}

func (h *History) MappedNames() []string {
	h.mu.Lock()
	defer h.mu.Unlock()

	names := make([]string, 0, len(h.doc.MappedCategories))
	for _, m := range h.doc.MappedCategories {
		names = append(names, m.Category)
	}
	return names
}

// Interactions returns a copy of the conversation, oldest first.
func (h *History) Interactions() []Interaction {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]Interaction{}, h.doc.Interactions...)
}

// IsMapped compares names exactly.
func (h *History) IsMapped(category string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.isMapped(category)
}

func (h *History) isMapped(category string) bool {
	for _, m := range h.doc.MappedCategories {
		if m.Category == category {
			return true
		}
	}
	return false
}

// SaveMapped stores category unless it is mapped already and reports whether
// it was added. A zero DateIdentified is set to now.
func (h *History) SaveMapped(category MappedCategory) (bool, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.isMapped(category.Category) {
		return false, nil
	}
	if category.DateIdentified.IsZero() {
		category.DateIdentified = h.now()
	}

	h.doc.MappedCategories = append(h.doc.MappedCategories, category)
	if err := h.flush(); err != nil {
		h.doc.MappedCategories = h.doc.MappedCategories[:len(h.doc.MappedCategories)-1]
		return false, err
	}
	return true, nil
}

// AddInteraction appends to the conversation. A zero Timestamp is set to now.
func (h *History) AddInteraction(in Interaction) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if in.Timestamp.IsZero() {
		in.Timestamp = h.now()
	}

	h.doc.Interactions = append(h.doc.Interactions, in)
	if err := h.flush(); err != nil {
		h.doc.Interactions = h.doc.Interactions[:len(h.doc.Interactions)-1]
		return err
	}
	return nil
}

// NextQuestion is the question to ask when the session resumes.
func (h *History) NextQuestion() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.doc.NextQuestion
}

func (h *History) SetNextQuestion(question string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	prev := h.doc.NextQuestion
	h.doc.NextQuestion = question
	if err := h.flush(); err != nil {
		h.doc.NextQuestion = prev
		return err
	}
	return nil
}

// Clear drops the whole history together with its file.
func (h *History) Clear() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := os.Remove(h.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("clear dialogue history: %w", err)
	}
	h.doc = historyDocument{MappedCategories: []MappedCategory{}, Interactions: []Interaction{}}
	return nil
}

type Stats struct {
	TotalMapped       int        `json:"totalMapped"`
	TotalInteractions int        `json:"totalInteractions"`
	Completion        int        `json:"completionPercentage"`
	LastInteraction   *time.Time `json:"lastInteractionDate,omitempty"`
	Unmapped          []string   `json:"unmappedCategories"`
}

func (h *History) Stats() Stats {
	mapped := h.Mapped()
	interactions := h.Interactions()

	stats := Stats{
		TotalMapped:       len(mapped),
		TotalInteractions: len(interactions),
		Completion:        CompletionPercentage(len(mapped)),
		Unmapped:          Unmapped(mapped),
	}
	if n := len(interactions); n > 0 {
		last := interactions[n-1].Timestamp
		stats.LastInteraction = &last
	}
	return stats
}

// flush needs mu held.
func (h *History) flush() error {
	return store.WriteJSON(h.path, h.doc)
}
