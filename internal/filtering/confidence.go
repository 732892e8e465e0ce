package filtering

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/spigell/skill-mapper/internal/matcher"
)

type confidenceFilter struct {
	disabled bool
	reason   string
	floor    float64
}

// NewConfidence creates a filter that removes matches below the confidence floor.
func NewConfidence() Filter {
	return &confidenceFilter{floor: matcher.MinConfidence}
}

func (f *confidenceFilter) Name() string { return "confidence" }

func (f *confidenceFilter) Disable(reason string) {
	f.disabled = true
	f.reason = reason
}

func (f *confidenceFilter) IsEnabled() bool { return !f.disabled }

// Validate picks the floor from cfg; zero keeps the matcher default.
func (f *confidenceFilter) Validate(cfg *Config) error {
	f.floor = matcher.MinConfidence
	if cfg == nil || cfg.MinConfidence == 0 {
		return nil
	}
	if cfg.MinConfidence < 0 || cfg.MinConfidence > 1 {
		return fmt.Errorf("minimum confidence %.2f is outside [0, 1]", cfg.MinConfidence)
	}
	f.floor = cfg.MinConfidence
	return nil
}

func (f *confidenceFilter) Apply(_ context.Context, deps Deps, results []matcher.Result) ([]matcher.Result, Step, error) {
	initial := len(results)
	kept, dropped := keep(results, func(r matcher.Result) bool {
		return r.Confidence >= f.floor
	})

	if deps.Logger != nil && len(dropped) > 0 {
		deps.Logger.Info("excluding weak matches",
			zap.Float64("min_confidence", f.floor),
			zap.Strings("excluded_skills", dropped),
			zap.Int("skills_left", len(kept)),
		)
	}

	return kept, Step{Initial: initial, Dropped: len(dropped), Left: len(kept)}, nil
}

func (f *confidenceFilter) Status() Status {
	details := map[string]string{
		"min_confidence": strconv.FormatFloat(f.floor, 'f', 2, 64),
	}
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason, Details: details}
}
