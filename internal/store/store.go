// Package store keeps the skills a user confirmed in a single JSON file,
// keyed by canonical skill name.
package store

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/spigell/skill-mapper/internal/ai"
	"github.com/spigell/skill-mapper/internal/matcher"
	"github.com/spigell/skill-mapper/internal/taxonomy"
)

// ErrNotFound is returned when a skill is not stored.
var ErrNotFound = errors.New("skill not found")

const recentLimit = 5

type IdentifiedSkill struct {
	Skill          string            `json:"skill"`
	Category       taxonomy.Category `json:"category"`
	DateIdentified time.Time         `json:"dateIdentified"`
	Source         ai.Source         `json:"source"`
	Confidence     *float64          `json:"confidence,omitempty"`
}

type document struct {
	Skills      []IdentifiedSkill `json:"skills"`
	LastUpdated time.Time         `json:"lastUpdated"`
}

// Store is safe for concurrent use within one process.
type Store struct {
	mu   sync.Mutex
	path string
	doc  document
	now  func() time.Time
}

// Open loads the store at path. A missing or empty file is an empty store;
// the file is only created on the first write.
func Open(path string) (*Store, error) {
	s := &Store{path: path, now: func() time.Time { return time.Now().UTC() }}

	found, err := ReadJSON(path, &s.doc)
	if err != nil {
		return nil, err
	}
	if !found {
		s.doc.LastUpdated = s.now()
	}
	if s.doc.Skills == nil {
		s.doc.Skills = []IdentifiedSkill{}
	}
	return s, nil
}

func (s *Store) Path() string { return s.path }

// Save records skill unless a skill with the same canonical name is stored.
// It reports whether the skill was added.
func (s *Store) Save(skill string, category taxonomy.Category, source ai.Source, confidence *float64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexOf(skill) != -1 {
		return false, nil
	}

	now := s.now()
	s.doc.Skills = append(s.doc.Skills, IdentifiedSkill{
		Skill:          skill,
		Category:       category,
		DateIdentified: now,
		Source:         source,
		Confidence:     confidence,
	})
	s.doc.LastUpdated = now

	if err := s.flush(); err != nil {
		s.doc.Skills = s.doc.Skills[:len(s.doc.Skills)-1]
		return false, err
	}
	return true, nil
}

// SaveAll records every result not stored yet with a single write and
// returns the names that were added. Results without a category are stored
// as "Unknown".
func (s *Store) SaveAll(results []matcher.Result, source ai.Source) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	before := len(s.doc.Skills)
	now := s.now()
	added := make([]string, 0, len(results))

	for _, r := range results {
		if r.Skill == "" || s.indexOf(r.Skill) != -1 {
			continue
		}
		category := r.Category
		if category == "" {
			category = "Unknown"
		}
		s.doc.Skills = append(s.doc.Skills, IdentifiedSkill{
			Skill:          r.Skill,
			Category:       category,
			DateIdentified: now,
			Source:         source,
		})
		added = append(added, r.Skill)
	}

	s.doc.LastUpdated = now
	if err := s.flush(); err != nil {
		s.doc.Skills = s.doc.Skills[:before]
		return nil, err
	}
	return added, nil
}

// List returns a copy of the stored skills in insertion order.
func (s *Store) List() []IdentifiedSkill {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]IdentifiedSkill, len(s.doc.Skills))
	copy(out, s.doc.Skills)
	return out
}

func (s *Store) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := make([]string, 0, len(s.doc.Skills))
	for _, sk := range s.doc.Skills {
		names = append(names, sk.Skill)
	}
	return names
}

// Has reports whether skill is stored. Names are compared exactly.
func (s *Store) Has(skill string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.indexOf(skill) != -1
}

func (s *Store) ByCategory(category taxonomy.Category) []IdentifiedSkill {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]IdentifiedSkill, 0)
	for _, sk := range s.doc.Skills {
		if sk.Category == category {
			out = append(out, sk)
		}
	}
	return out
}

// Remove deletes skill, returning ErrNotFound when it is not stored.
func (s *Store) Remove(skill string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(skill)
	if idx == -1 {
		return fmt.Errorf("%w: %q", ErrNotFound, skill)
	}

	prev := s.doc
	skills := make([]IdentifiedSkill, 0, len(s.doc.Skills)-1)
	skills = append(skills, s.doc.Skills[:idx]...)
	skills = append(skills, s.doc.Skills[idx+1:]...)
	s.doc = document{Skills: skills, LastUpdated: s.now()}

	if err := s.flush(); err != nil {
		s.doc = prev
		return err
	}
	return nil
}

// Clear deletes every stored skill together with the backing file.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("clear store: %w", err)
	}
	s.doc = document{Skills: []IdentifiedSkill{}, LastUpdated: s.now()}
	return nil
}

type Stats struct {
	Total       int                       `json:"totalSkills"`
	ByCategory  map[taxonomy.Category]int `json:"skillsByCategory"`
	BySource    map[ai.Source]int         `json:"skillsBySource"`
	Recent      []IdentifiedSkill         `json:"recentSkills"`
	LastUpdated time.Time                 `json:"lastUpdated"`
}

// Stats counts skills per category and source and lists the five most
// recently identified ones, newest first.
func (s *Store) Stats() Stats {
	s.mu.Lock()
	skills := make([]IdentifiedSkill, len(s.doc.Skills))
	copy(skills, s.doc.Skills)
	lastUpdated := s.doc.LastUpdated
	s.mu.Unlock()

	stats := Stats{
		Total:       len(skills),
		ByCategory:  make(map[taxonomy.Category]int),
		BySource:    make(map[ai.Source]int),
		LastUpdated: lastUpdated,
	}
	for _, sk := range skills {
		stats.ByCategory[sk.Category]++
		stats.BySource[sk.Source]++
	}

	sort.SliceStable(skills, func(i, j int) bool {
		return skills[i].DateIdentified.After(skills[j].DateIdentified)
	})
	if len(skills) > recentLimit {
		skills = skills[:recentLimit]
	}
	stats.Recent = skills

	return stats
}

type SkillStatus struct {
	Name           string     `json:"name"`
	Identified     bool       `json:"identified"`
	DateIdentified *time.Time `json:"dateIdentified,omitempty"`
}

type CategoryStatus struct {
	Category taxonomy.Category `json:"category"`
	Skills   []SkillStatus     `json:"skills"`
}

// TaxonomyStatus lists every skill of t per category and whether it is stored.
func (s *Store) TaxonomyStatus(t *taxonomy.Taxonomy) []CategoryStatus {
	dates := make(map[string]time.Time)
	for _, sk := range s.List() {
		if _, ok := dates[sk.Skill]; !ok {
			dates[sk.Skill] = sk.DateIdentified
		}
	}

	groups := t.Groups()
	out := make([]CategoryStatus, 0, len(groups))
	for _, g := range groups {
		status := CategoryStatus{Category: g.Category, Skills: make([]SkillStatus, 0, len(g.Skills))}
		for _, name := range g.Skills {
			st := SkillStatus{Name: name}
			if date, ok := dates[name]; ok {
				st.Identified = true
				st.DateIdentified = &date
			}
			status.Skills = append(status.Skills, st)
		}
		out = append(out, status)
	}
	return out
}

func (s *Store) indexOf(skill string) int {
	for i, sk := range s.doc.Skills {
		if sk.Skill == skill {
			return i
		}
	}
	return -1
}

// flush writes the document. Callers hold mu.
func (s *Store) flush() error {
	return WriteJSON(s.path, s.doc)
}
