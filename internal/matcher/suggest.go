package matcher

import "fmt"

// Tier buckets a confidence for display.
type Tier string

const (
	TierHigh   Tier = "high"
	TierMedium Tier = "medium"
	TierLow    Tier = "low"
)

const (
	highTierAbove   = 0.8
	mediumTierAbove = 0.6
)

// TierOf returns the display tier of a confidence value.
func TierOf(confidence float64) Tier {
	switch {
	case confidence > highTierAbove:
		return TierHigh
	case confidence > mediumTierAbove:
		return TierMedium
	default:
		return TierLow
	}
}

// Suggestion is the "best match" hint shown for a typed phrase.
type Suggestion struct {
	// Offered is false when the match is too weak to propose.
	Offered bool
	Match   Result
	Tier    Tier
	Message string
}

// Suggest maps input and decides whether the match is worth proposing.
// Only matches strictly above MinConfidence are offered.
func (m *Matcher) Suggest(input string) Suggestion {
	r := m.Map(input)
	s := Suggestion{Match: r, Tier: TierOf(r.Confidence)}

	switch {
	case r.Skill != "" && r.Confidence > highTierAbove:
		s.Offered = true
		s.Message = fmt.Sprintf("Great match! We found %q in our %s category.", r.Skill, r.Category)
	case r.Skill != "" && r.Confidence > MinConfidence:
		s.Offered = true
		s.Message = fmt.Sprintf("Did you mean %q? (from %s)", r.Skill, r.Category)
	default:
		s.Match = Result{}
		s.Message = "We couldn't find a good match. Try selecting from the skills taxonomy."
	}

	return s
}
