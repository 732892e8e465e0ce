package filtering

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spigell/skill-mapper/internal/matcher"
)

// Filter represents a single step applied to mapped skills before they are
// shown or saved.
type Filter interface {
	Name() string
	Disable(reason string)
	IsEnabled() bool

	Validate(cfg *Config) error
	Apply(ctx context.Context, deps Deps, results []matcher.Result) ([]matcher.Result, Step, error)
}

// SavedSkills reports whether a canonical skill is already stored.
type SavedSkills interface {
	Has(skill string) bool
}

// Deps aggregates dependencies shared across all filtering steps.
type Deps struct {
	Logger *zap.Logger
	Store  SavedSkills
}

// Step describes the result of executing a filtering step.
type Step struct {
	Initial int
	Dropped int
	Left    int
}

// Config contains configuration settings consumed by the filters.
type Config struct {
	MinConfidence  float64  `mapstructure:"min-confidence" validate:"gte=0,lte=1"`
	ExcludedSkills []string `mapstructure:"excluded-skills"`
	Categories     []string `mapstructure:"categories"`
}

// Status represents runtime information about a filter.
type Status struct {
	Name    string
	Enabled bool
	Reason  string
	Details map[string]string
}

// statusProvider is implemented by filters that can supply detailed status information.
type statusProvider interface {
	Status() Status
}

// Defaults returns the standard pipeline in execution order.
func Defaults(skipSaved bool) []Filter {
	return []Filter{
		NewConfidence(),
		NewExcludedSkills(),
		NewCategories(),
		NewAlreadySaved(skipSaved),
	}
}

// DisableByName marks a filter with the provided name as disabled while keeping it in the list.
func DisableByName(steps []Filter, name, reason string) {
	for _, step := range steps {
		if step.Name() == name {
			step.Disable(reason)
		}
	}
}

// Run executes the supplied filters sequentially and returns the results that survived.
func Run(ctx context.Context, cfg *Config, deps Deps, steps []Filter, results []matcher.Result) ([]matcher.Result, error) {
	for _, step := range steps {
		if !step.IsEnabled() {
			continue
		}
		if err := step.Validate(cfg); err != nil {
			return nil, fmt.Errorf("%s: %w", step.Name(), err)
		}
	}

	for _, step := range steps {
		if !step.IsEnabled() {
			if deps.Logger != nil {
				deps.Logger.Info("filter disabled", zap.String("name", step.Name()))
			}
			continue
		}

		next, info, err := step.Apply(ctx, deps, results)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", step.Name(), err)
		}

		if deps.Logger != nil {
			deps.Logger.Info("filter step",
				zap.String("name", step.Name()),
				zap.Int("initial", info.Initial),
				zap.Int("dropped", info.Dropped),
				zap.Int("left", info.Left),
			)
		}

		results = next
	}

	return results, nil
}

// Describe returns status entries for the provided filters.
func Describe(steps []Filter) []Status {
	statuses := make([]Status, 0, len(steps))
	for _, step := range steps {
		if reporter, ok := step.(statusProvider); ok {
			statuses = append(statuses, reporter.Status())
			continue
		}

		statuses = append(statuses, Status{
			Name:    step.Name(),
			Enabled: step.IsEnabled(),
		})
	}
	return statuses
}

// keep returns the results accepted by fn and the skills it rejected.
func keep(results []matcher.Result, fn func(matcher.Result) bool) ([]matcher.Result, []string) {
	kept := make([]matcher.Result, 0, len(results))
	dropped := make([]string, 0)
	for _, r := range results {
		if fn(r) {
			kept = append(kept, r)
			continue
		}
		dropped = append(dropped, r.Skill)
	}
	return kept, dropped
}
