package filtering

import (
	"context"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spigell/skill-mapper/internal/matcher"
	"github.com/spigell/skill-mapper/internal/taxonomy"
)

type savedSet map[string]bool

func (s savedSet) Has(skill string) bool { return s[skill] }

func sample() []matcher.Result {
	return []matcher.Result{
		{Input: "teamwork", Skill: "Collaboration", Category: taxonomy.HumanSkills, Confidence: 1},
		{Input: "Empathie", Skill: "Empathy", Category: taxonomy.HumanSkills, Confidence: 0.75},
		{Input: "music lessons", Skill: "Music", Category: taxonomy.CreativeExpression, Confidence: 0.9},
		{Input: "zz qq xx", Skill: "Project Management", Category: taxonomy.MakerBuilder, Confidence: 0.13},
		{Input: "prototyp", Skill: "Prototyping", Category: taxonomy.MakerBuilder, Confidence: 0.5},
	}
}

func skills(results []matcher.Result) string {
	names := make([]string, 0, len(results))
	for _, r := range results {
		names = append(names, r.Skill)
	}
	return strings.Join(names, ",")
}

func TestFilters(t *testing.T) {
	tests := []struct {
		name    string
		filter  Filter
		cfg     *Config
		deps    Deps
		want    string
		dropped int
	}{
		{
			name:    "confidence default floor keeps 0.5",
			filter:  NewConfidence(),
			want:    "Collaboration,Empathy,Music,Prototyping",
			dropped: 1,
		},
		{
			name:    "confidence custom floor",
			filter:  NewConfidence(),
			cfg:     &Config{MinConfidence: 0.8},
			want:    "Collaboration,Music",
			dropped: 3,
		},
		{
			name:   "confidence floor below the matcher default",
			filter: NewConfidence(),
			cfg:    &Config{MinConfidence: 0.1},
			want:   "Collaboration,Empathy,Music,Project Management,Prototyping",
		},
		{
			name:    "excluded skills ignore case",
			filter:  NewExcludedSkills(),
			cfg:     &Config{ExcludedSkills: []string{"empathy", " music ", ""}},
			want:    "Collaboration,Project Management,Prototyping",
			dropped: 2,
		},
		{
			name:   "excluded skills without config",
			filter: NewExcludedSkills(),
			want:   "Collaboration,Empathy,Music,Project Management,Prototyping",
		},
		{
			name:    "categories",
			filter:  NewCategories(),
			cfg:     &Config{Categories: []string{"maker & builder"}},
			want:    "Project Management,Prototyping",
			dropped: 3,
		},
		{
			name:   "categories empty keeps all",
			filter: NewCategories(),
			cfg:    &Config{},
			want:   "Collaboration,Empathy,Music,Project Management,Prototyping",
		},
		{
			name:    "already saved",
			filter:  NewAlreadySaved(false),
			deps:    Deps{Store: savedSet{"Music": true, "Empathy": true}},
			want:    "Collaboration,Project Management,Prototyping",
			dropped: 2,
		},
		{
			name:   "already saved ignored",
			filter: NewAlreadySaved(true),
			want:   "Collaboration,Empathy,Music,Project Management,Prototyping",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.filter.Validate(tt.cfg); err != nil {
				t.Fatalf("validate: %v", err)
			}
			got, step, err := tt.filter.Apply(context.Background(), tt.deps, sample())
			if err != nil {
				t.Fatalf("apply: %v", err)
			}
			if skills(got) != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, skills(got))
			}
			if step.Initial != 5 || step.Dropped != tt.dropped || step.Left != 5-tt.dropped {
				t.Fatalf("unexpected step: %+v", step)
			}
		})
	}
}

func TestConfidenceRejectsOutOfRange(t *testing.T) {
	if err := NewConfidence().Validate(&Config{MinConfidence: 1.5}); err == nil {
		t.Fatal("expected error for floor above 1")
	}
}

func TestAlreadySavedRequiresStore(t *testing.T) {
	if _, _, err := NewAlreadySaved(false).Apply(context.Background(), Deps{}, sample()); err == nil {
		t.Fatal("expected error without store")
	}
}

func TestRunPipeline(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	deps := Deps{Logger: zap.New(core), Store: savedSet{"Collaboration": true}}

	steps := Defaults(false)
	DisableByName(steps, "confidence", "testing")

	got, err := Run(context.Background(), &Config{Categories: []string{"Human Skills", "Maker & Builder"}}, deps, steps, sample())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if skills(got) != "Empathy,Project Management,Prototyping" {
		t.Fatalf("unexpected results: %q", skills(got))
	}

	if n := logs.FilterMessage("filter disabled").Len(); n != 1 {
		t.Fatalf("expected one disabled log, got %d", n)
	}
	stepLogs := logs.FilterMessage("filter step").All()
	if len(stepLogs) != 3 {
		t.Fatalf("expected 3 step logs, got %d", len(stepLogs))
	}
	last := stepLogs[2].ContextMap()
	if last["name"] != "already_saved" || last["dropped"] != int64(1) || last["left"] != int64(3) {
		t.Fatalf("unexpected last step log: %v", last)
	}
}

func TestRunStopsOnInvalidConfig(t *testing.T) {
	_, err := Run(context.Background(), &Config{MinConfidence: -1}, Deps{}, Defaults(true), sample())
	if err == nil || !strings.HasPrefix(err.Error(), "confidence:") {
		t.Fatalf("expected confidence validation error, got %v", err)
	}
}

func TestDescribe(t *testing.T) {
	steps := Defaults(true)
	DisableByName(steps, "confidence", "not needed")
	if err := steps[1].Validate(&Config{ExcludedSkills: []string{"Logic", "Music"}}); err != nil {
		t.Fatalf("validate: %v", err)
	}

	statuses := Describe(steps)
	if len(statuses) != 4 {
		t.Fatalf("expected 4 statuses, got %d", len(statuses))
	}
	if statuses[0].Enabled || statuses[0].Reason != "not needed" {
		t.Fatalf("unexpected confidence status: %+v", statuses[0])
	}
	if statuses[1].Details["skills"] != "Logic,Music" {
		t.Fatalf("unexpected excluded skills status: %+v", statuses[1])
	}
	if statuses[3].Details["exclude_saved"] != "false" || statuses[3].Reason == "" {
		t.Fatalf("unexpected already saved status: %+v", statuses[3])
	}
}
