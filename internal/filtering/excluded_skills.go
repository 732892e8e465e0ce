package filtering

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/skill-mapper/internal/matcher"
)

type excludedSkillsFilter struct {
	skills []string
}

// NewExcludedSkills creates a filter that removes skills listed in the config.
func NewExcludedSkills() Filter {
	return &excludedSkillsFilter{}
}

func (f *excludedSkillsFilter) Name() string { return "excluded_skills" }

func (f *excludedSkillsFilter) Disable(string) {}

func (f *excludedSkillsFilter) IsEnabled() bool { return true }

func (f *excludedSkillsFilter) Validate(cfg *Config) error {
	f.skills = nil
	if cfg == nil {
		return nil
	}
	for _, s := range cfg.ExcludedSkills {
		if s = strings.TrimSpace(s); s != "" {
			f.skills = append(f.skills, s)
		}
	}
	return nil
}

func (f *excludedSkillsFilter) Apply(_ context.Context, deps Deps, results []matcher.Result) ([]matcher.Result, Step, error) {
	initial := len(results)
	if len(f.skills) == 0 {
		return results, Step{Initial: initial, Dropped: 0, Left: initial}, nil
	}

	kept, dropped := keep(results, func(r matcher.Result) bool {
		for _, s := range f.skills {
			if strings.EqualFold(s, r.Skill) {
				return false
			}
		}
		return true
	})

	if deps.Logger != nil && len(dropped) > 0 {
		deps.Logger.Info("excluding skills by config",
			zap.Strings("excluded_skills", dropped),
			zap.Int("skills_left", len(kept)),
		)
	}

	return kept, Step{Initial: initial, Dropped: len(dropped), Left: len(kept)}, nil
}

func (f *excludedSkillsFilter) Status() Status {
	details := map[string]string{}
	if len(f.skills) > 0 {
		details["skills"] = strings.Join(f.skills, ",")
	}
	return Status{Name: f.Name(), Enabled: true, Details: details}
}
