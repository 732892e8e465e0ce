package filtering

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/spigell/skill-mapper/internal/matcher"
)

const keepSavedFlagSetMsg = "keep-saved flag is set"

type alreadySavedFilter struct {
	ignore bool
}

// NewAlreadySaved creates a filter that removes skills the store already has.
// With ignore set every skill passes.
func NewAlreadySaved(ignore bool) Filter {
	return &alreadySavedFilter{ignore: ignore}
}

func (f *alreadySavedFilter) Name() string { return "already_saved" }

func (f *alreadySavedFilter) Disable(string) {}

func (f *alreadySavedFilter) IsEnabled() bool { return true }

func (f *alreadySavedFilter) Validate(*Config) error { return nil }

func (f *alreadySavedFilter) Apply(_ context.Context, deps Deps, results []matcher.Result) ([]matcher.Result, Step, error) {
	initial := len(results)
	if f.ignore {
		if deps.Logger != nil {
			deps.Logger.Info("keeping already saved skills", zap.String("reason", keepSavedFlagSetMsg))
		}
		return results, Step{Initial: initial, Dropped: 0, Left: initial}, nil
	}

	if deps.Store == nil {
		return results, Step{}, fmt.Errorf("skill store is required")
	}

	kept, dropped := keep(results, func(r matcher.Result) bool {
		return !deps.Store.Has(r.Skill)
	})

	if deps.Logger != nil && len(dropped) > 0 {
		deps.Logger.Info("excluding skills that are already saved",
			zap.Strings("excluded_skills", dropped),
			zap.Int("skills_left", len(kept)),
		)
	}

	return kept, Step{Initial: initial, Dropped: len(dropped), Left: len(kept)}, nil
}

func (f *alreadySavedFilter) Status() Status {
	details := map[string]string{
		"exclude_saved": strconv.FormatBool(!f.ignore),
	}
	reason := ""
	if f.ignore {
		reason = "skip requested via flag"
	}
	return Status{Name: f.Name(), Enabled: true, Reason: reason, Details: details}
}
