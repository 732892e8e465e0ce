// Package dialogue maps the answers of a question and answer session onto a
// fixed set of broad experience categories, one category per answer at most.
package dialogue

import (
	"fmt"
	"strings"
)

// Definition describes a category the way it is presented to the model.
type Definition struct {
	Name        string `json:"category" yaml:"category"`
	Description string `json:"description" yaml:"description"`
	Stamps      string `json:"stamps" yaml:"stamps"`
}

// WeakFit is the category a model answers with when the answer does not map
// clearly onto any real category. It is never stored as mapped.
const WeakFit = "NO_MAP_WEAK_FIT"

// InitialQuestion opens a session with nothing mapped yet.
const InitialQuestion = "Tell me what you are typically doing when you lose track of time"

var weakFitDefinition = Definition{
	Name: WeakFit,
	Description: "Use this category if and only if the user's answer does not clearly, obviously, and rigorously map to any other category, " +
		"or if the user's answer is too brief/generic to draw a strong conclusion. This choice will result in no update.",
	Stamps: "NO_OP_EXPERIENCE",
}

var categories = []Definition{
	{
		Name:        "Human Skills (Durable)",
		Description: "Interpersonal, emotional, and cognitive traits that AI can't replicate",
		Stamps:      "Leading with Empathy - Conflict Navigation - Curiosity in Action - Speaking Up for What's Right",
	},
	{
		Name:        "Meta-Learning & Self-Awareness",
		Description: "Learning how to learn; adapting in real-time",
		Stamps:      "Learning from Failure - Reframing Feedback - Time I Pivoted - Curating My Strengths",
	},
	{
		Name:        "Maker & Builder Skills",
		Description: "Tactile, creative, or constructive projects",
		Stamps:      "Built Something with My Hands - DIY or Maker Showcase - Coding or Game Design Sprint - Organized a Community Project",
	},
	{
		Name:        "Civic & Community Impact",
		Description: "Actions that show care for others or collective systems",
		Stamps:      "Showed Up for My People - Volunteering or Advocacy - Family Responsibilities - Bridging Cultures",
	},
	{
		Name:        "Creative Expression & Communication",
		Description: "Use of language, art, or performance to express ideas",
		Stamps:      "Published Something - Designed an Experience - Spoken Word / Theatre / Music - Public Speaking Moment",
	},
	{
		Name:        "Problem-Solving & Systems Thinking",
		Description: "Navigating complexity or ambiguity",
		Stamps:      "Solved a Problem Without a Clear Answer - My Role in a Team Crisis - Optimized a Process - Designed a Better Way",
	},
	{
		Name:        "Work & Entrepreneurial Experience",
		Description: "Paid, unpaid, gig, and hustle-based learning",
		Stamps:      "Ran a Side Hustle - Work-Study or Part-Time Job - Supported a Business or Startup - Managed a Budget",
	},
	{
		Name:        "Future Self & Directionality",
		Description: "Purpose, values, and vision",
		Stamps:      "My Personal Mission Statement - Imagining My Future Life - When I Realized What I Want to Do - Values I Live By",
	},
}

// Total is the number of real categories. A session is complete once all of
// them are mapped.
var Total = len(categories)

// Categories returns a copy of the real categories in presentation order.
func Categories() []Definition {
	return append([]Definition(nil), categories...)
}

// all includes the weak fit sentinel, which is a valid model answer.
func all() []Definition {
	return append(Categories(), weakFitDefinition)
}

// TaxonomyString renders every category, the weak fit one included, one per line.
func TaxonomyString() string {
	defs := all()
	lines := make([]string, 0, len(defs))
	for _, d := range defs {
		lines = append(lines, fmt.Sprintf("%s: %s | Sample Experience Stamps: %s", d.Name, d.Description, d.Stamps))
	}
	return strings.Join(lines, "\n")
}

// FindCategory resolves a category name returned by a model. Names are
// compared case insensitively and either may contain the other, so
// "maker & builder" resolves to "Maker & Builder Skills". The first hit in
// presentation order wins. Blank names never match.
func FindCategory(name string) (Definition, bool) {
	needle := strings.ToLower(strings.TrimSpace(name))
	if needle == "" {
		return Definition{}, false
	}

	for _, d := range all() {
		candidate := strings.ToLower(d.Name)
		if strings.Contains(candidate, needle) || strings.Contains(needle, candidate) {
			return d, true
		}
	}
	return Definition{}, false
}

// Unmapped returns the names of the real categories missing from mapped.
func Unmapped(mapped []MappedCategory) []string {
	seen := make(map[string]struct{}, len(mapped))
	for _, m := range mapped {
		seen[m.Category] = struct{}{}
	}

	out := make([]string, 0, Total)
	for _, d := range categories {
		if _, ok := seen[d.Name]; !ok {
			out = append(out, d.Name)
		}
	}
	return out
}

// CompletionPercentage rounds mapped out of Total to a whole percentage.
func CompletionPercentage(mapped int) int {
	if mapped <= 0 {
		return 0
	}
	return (mapped*100 + Total/2) / Total
}
