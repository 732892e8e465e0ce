package filtering

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/skill-mapper/internal/matcher"
)

type categoriesFilter struct {
	categories []string
}

// NewCategories creates a filter that keeps only skills of the configured
// categories. An empty list keeps everything.
func NewCategories() Filter {
	return &categoriesFilter{}
}

func (f *categoriesFilter) Name() string { return "categories" }

func (f *categoriesFilter) Disable(string) {}

func (f *categoriesFilter) IsEnabled() bool { return true }

func (f *categoriesFilter) Validate(cfg *Config) error {
	f.categories = nil
	if cfg == nil {
		return nil
	}
	for _, c := range cfg.Categories {
		if c = strings.TrimSpace(c); c != "" {
			f.categories = append(f.categories, c)
		}
	}
	return nil
}

func (f *categoriesFilter) Apply(_ context.Context, deps Deps, results []matcher.Result) ([]matcher.Result, Step, error) {
	initial := len(results)
	if len(f.categories) == 0 {
		return results, Step{Initial: initial, Dropped: 0, Left: initial}, nil
	}

	kept, dropped := keep(results, func(r matcher.Result) bool {
		for _, c := range f.categories {
			if strings.EqualFold(c, r.Category.String()) {
				return true
			}
		}
		return false
	})

	if deps.Logger != nil && len(dropped) > 0 {
		deps.Logger.Info("excluding skills outside selected categories",
			zap.Strings("categories", f.categories),
			zap.Strings("excluded_skills", dropped),
			zap.Int("skills_left", len(kept)),
		)
	}

	return kept, Step{Initial: initial, Dropped: len(dropped), Left: len(kept)}, nil
}

func (f *categoriesFilter) Status() Status {
	details := map[string]string{}
	if len(f.categories) > 0 {
		details["categories"] = strings.Join(f.categories, ",")
	}
	return Status{Name: f.Name(), Enabled: true, Details: details}
}
