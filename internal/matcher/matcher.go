// Package matcher resolves free-text skill phrases to canonical taxonomy
// skills with a confidence score.
package matcher

import (
	"strings"
	"unicode/utf8"

	"github.com/spigell/skill-mapper/internal/taxonomy"
)

const (
	// MinConfidence is the floor a match must reach to be kept by Normalize
	// and the level below which Map runs the partial word scan.
	MinConfidence = 0.5

	partialWordScore = 0.6
	minPartialWord   = 3
)

// Result is the canonical skill a phrase resolved to.
type Result struct {
	// Input is the phrase that produced this result.
	Input      string            `json:"input,omitempty"`
	Skill      string            `json:"skill"`
	Category   taxonomy.Category `json:"category"`
	Confidence float64           `json:"confidence"`
}

type entry struct {
	category taxonomy.Category
	skill    string
	folded   string
	synonyms []string
}

// Matcher is safe for concurrent use; it never mutates after New.
type Matcher struct {
	taxonomy *taxonomy.Taxonomy
	entries  []entry
}

// New returns a matcher over t. A nil taxonomy behaves as an empty one.
func New(t *taxonomy.Taxonomy) *Matcher {
	m := &Matcher{taxonomy: t}
	t.Each(func(c taxonomy.Category, skill string) bool {
		m.entries = append(m.entries, entry{
			category: c,
			skill:    skill,
			folded:   fold(skill),
			synonyms: t.Synonyms(skill),
		})
		return true
	})
	return m
}

// Taxonomy returns the taxonomy the matcher was built with.
func (m *Matcher) Taxonomy() *taxonomy.Taxonomy {
	return m.taxonomy
}

// Map returns the best canonical skill for input. Ties keep the earlier
// taxonomy entry. When no entry reaches MinConfidence, every input word of
// at least three characters is checked for containment against skill names
// and the first hit is reported at 0.6. With an empty taxonomy the zero
// Result is returned.
func (m *Matcher) Map(input string) Result {
	if len(m.entries) == 0 {
		return Result{}
	}

	query := fold(input)

	var best Result
	for i, e := range m.entries {
		score := similarity(query, e.folded)
		for _, phrase := range e.synonyms {
			score = max(score, similarity(query, phrase))
		}

		if i == 0 || score > best.Confidence {
			best = Result{Input: input, Skill: e.skill, Category: e.category, Confidence: score}
		}
	}

	if best.Confidence >= MinConfidence {
		return best
	}

	if hit, ok := m.partialWord(query); ok && partialWordScore > best.Confidence {
		hit.Input = input
		best = hit
	}

	return best
}

func (m *Matcher) partialWord(query string) (Result, bool) {
	for _, word := range strings.Fields(query) {
		if utf8.RuneCountInString(word) < minPartialWord {
			continue
		}
		for _, e := range m.entries {
			if strings.Contains(e.folded, word) || strings.Contains(word, e.folded) {
				return Result{Skill: e.skill, Category: e.category, Confidence: partialWordScore}, true
			}
		}
	}
	return Result{}, false
}

// MapAll maps every input and keeps one result per canonical skill: the one
// with the highest confidence, or the first seen on equal confidence. Results
// come back in the order their skill was first produced; callers should not
// depend on it.
func (m *Matcher) MapAll(inputs []string) []Result {
	order := make([]string, 0, len(inputs))
	best := make(map[string]Result, len(inputs))

	for _, in := range inputs {
		r := m.Map(in)
		existing, ok := best[r.Skill]
		if !ok {
			order = append(order, r.Skill)
			best[r.Skill] = r
			continue
		}
		if r.Confidence > existing.Confidence {
			best[r.Skill] = r
		}
	}

	out := make([]Result, 0, len(order))
	for _, skill := range order {
		out = append(out, best[skill])
	}
	return out
}

// Normalize maps inputs, drops matches under MinConfidence and returns the
// canonical names that remain.
func (m *Matcher) Normalize(inputs []string) []string {
	mapped := m.MapAll(inputs)
	out := make([]string, 0, len(mapped))
	for _, r := range mapped {
		if r.Confidence >= MinConfidence {
			out = append(out, r.Skill)
		}
	}
	return out
}

// Complete returns taxonomy skills containing prefix, case insensitive, in
// taxonomy order without repeats. limit <= 0 returns every hit.
func (m *Matcher) Complete(prefix string, limit int) []string {
	needle := fold(prefix)
	seen := make(map[string]struct{})
	out := make([]string, 0)

	for _, e := range m.entries {
		if limit > 0 && len(out) >= limit {
			break
		}
		if !strings.Contains(e.folded, needle) {
			continue
		}
		if _, ok := seen[e.skill]; ok {
			continue
		}
		seen[e.skill] = struct{}{}
		out = append(out, e.skill)
	}
	return out
}
