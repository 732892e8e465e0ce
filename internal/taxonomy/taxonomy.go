// Package taxonomy holds the fixed category to skill mapping and the synonym
// table used to resolve free-text skill phrases.
package taxonomy

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEmpty is returned when a taxonomy source defines no categories.
var ErrEmpty = errors.New("taxonomy has no categories")

// Category is a taxonomy category name.
type Category string

func (c Category) String() string { return string(c) }

// Group is one category with its canonical skills in definition order.
type Group struct {
	Category Category `json:"category"`
	Skills   []string `json:"skills"`
}

// Taxonomy is an immutable category/skill/synonym table. The zero value is an
// empty taxonomy. All accessors return copies and are safe for concurrent use.
type Taxonomy struct {
	groups   []Group
	synonyms map[string][]string
	// skill -> first category that lists it
	owner map[string]Category
	index map[Category]int
}

// New validates the groups and synonyms and returns a taxonomy holding
// private copies of both.
func New(groups []Group, synonyms map[string][]string) (*Taxonomy, error) {
	t := &Taxonomy{
		groups:   make([]Group, 0, len(groups)),
		synonyms: make(map[string][]string, len(synonyms)),
		owner:    make(map[string]Category),
		index:    make(map[Category]int, len(groups)),
	}

	for i, g := range groups {
		name := Category(strings.TrimSpace(string(g.Category)))
		if name == "" {
			return nil, fmt.Errorf("category #%d: name is empty", i)
		}
		if _, ok := t.index[name]; ok {
			return nil, fmt.Errorf("category %q: defined twice", name)
		}

		skills := make([]string, 0, len(g.Skills))
		for _, s := range g.Skills {
			s = strings.TrimSpace(s)
			if s == "" {
				return nil, fmt.Errorf("category %q: empty skill name", name)
			}
			skills = append(skills, s)
			if _, ok := t.owner[s]; !ok {
				t.owner[s] = name
			}
		}

		t.index[name] = len(t.groups)
		t.groups = append(t.groups, Group{Category: name, Skills: skills})
	}

	for skill, phrases := range synonyms {
		skill = strings.TrimSpace(skill)
		if skill == "" {
			return nil, errors.New("synonyms: empty skill name")
		}
		cleaned := make([]string, 0, len(phrases))
		for _, p := range phrases {
			if p = strings.ToLower(strings.TrimSpace(p)); p != "" {
				cleaned = append(cleaned, p)
			}
		}
		t.synonyms[skill] = append(t.synonyms[skill], cleaned...)
	}

	return t, nil
}

// Len returns the total number of skill entries across all categories.
func (t *Taxonomy) Len() int {
	if t == nil {
		return 0
	}
	n := 0
	for _, g := range t.groups {
		n += len(g.Skills)
	}
	return n
}

// Categories returns category names in definition order.
func (t *Taxonomy) Categories() []Category {
	if t == nil {
		return nil
	}
	out := make([]Category, 0, len(t.groups))
	for _, g := range t.groups {
		out = append(out, g.Category)
	}
	return out
}

// Groups returns a deep copy of the category groups.
func (t *Taxonomy) Groups() []Group {
	if t == nil {
		return nil
	}
	out := make([]Group, 0, len(t.groups))
	for _, g := range t.groups {
		out = append(out, Group{Category: g.Category, Skills: append([]string(nil), g.Skills...)})
	}
	return out
}

// AllSkills flattens the taxonomy, category order then skill order. A skill
// listed under two categories appears twice.
func (t *Taxonomy) AllSkills() []string {
	out := make([]string, 0, t.Len())
	t.Each(func(_ Category, skill string) bool {
		out = append(out, skill)
		return true
	})
	return out
}

// SkillsByCategory returns the skills of category, or an empty slice when the
// category is unknown.
func (t *Taxonomy) SkillsByCategory(category string) []string {
	skills, ok := t.Lookup(category)
	if !ok {
		return []string{}
	}
	return skills
}

// Lookup returns the skills of the exactly named category and whether it exists.
func (t *Taxonomy) Lookup(category string) ([]string, bool) {
	if t == nil {
		return nil, false
	}
	i, ok := t.index[Category(category)]
	if !ok {
		return nil, false
	}
	return append([]string(nil), t.groups[i].Skills...), true
}

// ParseCategory resolves a loosely written category name. An exact match wins,
// then the first category whose lowercased name contains the input or is
// contained by it.
func (t *Taxonomy) ParseCategory(name string) (Category, bool) {
	if t == nil {
		return "", false
	}
	if _, ok := t.index[Category(name)]; ok {
		return Category(name), true
	}

	needle := strings.ToLower(strings.TrimSpace(name))
	if needle == "" {
		return "", false
	}
	for _, g := range t.groups {
		hay := strings.ToLower(string(g.Category))
		if strings.Contains(hay, needle) || strings.Contains(needle, hay) {
			return g.Category, true
		}
	}
	return "", false
}

// FindSkillCategory returns the first category listing the exact canonical
// skill name. The boolean is false when no category does.
func (t *Taxonomy) FindSkillCategory(skill string) (Category, bool) {
	if t == nil {
		return "", false
	}
	c, ok := t.owner[skill]
	return c, ok
}

// Synonyms returns the alternative phrasings registered for skill.
func (t *Taxonomy) Synonyms(skill string) []string {
	if t == nil {
		return nil
	}
	return append([]string(nil), t.synonyms[skill]...)
}

// Each walks every (category, skill) pair in definition order until fn
// returns false.
func (t *Taxonomy) Each(fn func(category Category, skill string) bool) {
	if t == nil {
		return
	}
	for _, g := range t.groups {
		for _, s := range g.Skills {
			if !fn(g.Category, s) {
				return
			}
		}
	}
}

// PromptString renders the taxonomy as "Category: skill, skill" lines.
func (t *Taxonomy) PromptString() string {
	if t == nil {
		return ""
	}
	var b strings.Builder
	for i, g := range t.groups {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(string(g.Category))
		b.WriteString(": ")
		b.WriteString(strings.Join(g.Skills, ", "))
	}
	return b.String()
}
