package taxonomy

const (
	HumanSkills        Category = "Human Skills"
	MetaLearning       Category = "Meta-Learning"
	MakerBuilder       Category = "Maker & Builder"
	CivicImpact        Category = "Civic Impact"
	CreativeExpression Category = "Creative Expression"
	ProblemSolving     Category = "Problem-Solving"
	WorkExperience     Category = "Work Experience"
	FutureSelf         Category = "Future Self"
)

var defaultGroups = []Group{
	{Category: HumanSkills, Skills: []string{
		"Communication",
		"Collaboration",
		"Leadership",
		"Empathy",
		"Active Listening",
		"Conflict Resolution",
		"Networking",
		"Public Speaking",
		"Team Management",
	}},
	{Category: MetaLearning, Skills: []string{
		"Critical Thinking",
		"Research Skills",
		"Self-Reflection",
		"Learning Strategies",
		"Information Synthesis",
		"Knowledge Transfer",
		"Continuous Learning",
		"Adaptability",
	}},
	{Category: MakerBuilder, Skills: []string{
		"Prototyping",
		"Design Thinking",
		"Craftsmanship",
		"Innovation",
		"Technical Skills",
		"Project Management",
		"Problem Solving",
		"Creative Construction",
		"Engineering",
	}},
	{Category: CivicImpact, Skills: []string{
		"Community Engagement",
		"Social Responsibility",
		"Advocacy",
		"Volunteer Work",
		"Policy Understanding",
		"Cultural Awareness",
		"Environmental Stewardship",
		"Civic Participation",
	}},
	{Category: CreativeExpression, Skills: []string{
		"Artistic Creation",
		"Storytelling",
		"Music",
		"Writing",
		"Visual Arts",
		"Performance",
		"Creative Problem Solving",
		"Imagination",
		"Aesthetic Appreciation",
	}},
	{Category: ProblemSolving, Skills: []string{
		"Analytical Thinking",
		"Strategic Planning",
		"Troubleshooting",
		"Decision Making",
		"Systems Thinking",
		"Root Cause Analysis",
		// Also listed under Maker & Builder; reverse lookup reports that one.
		"Innovation",
		"Logic",
		"Pattern Recognition",
	}},
	{Category: WorkExperience, Skills: []string{
		"Professional Skills",
		"Industry Knowledge",
		"Workplace Etiquette",
		"Time Management",
		"Client Relations",
		"Business Acumen",
		"Career Development",
		"Mentorship",
	}},
	{Category: FutureSelf, Skills: []string{
		"Goal Setting",
		"Vision Creation",
		"Personal Growth",
		"Skill Development",
		"Career Planning",
		"Life Balance",
		"Self-Improvement",
		"Aspiration Mapping",
	}},
}

// defaultSynonyms holds lowercase alternative phrasings keyed by canonical skill.
// "Creativity" has no canonical entry and is never consulted by the matcher.
var defaultSynonyms = map[string][]string{
	"Communication": {
		"communicating",
		"speaking",
		"talking",
		"expressing",
		"communication skills",
		"verbal communication",
	},
	"Collaboration":      {"collaborating", "teamwork", "working together", "cooperative work", "team work"},
	"Leadership":         {"leading", "managing people", "guiding", "mentoring", "leading teams"},
	"Critical Thinking":  {"analyzing", "critical analysis", "thinking critically", "analytical skills", "reasoning"},
	"Problem Solving":    {"solving problems", "troubleshooting", "finding solutions", "problem resolution"},
	"Creativity":         {"being creative", "creative thinking", "innovation", "creative work"},
	"Design Thinking":    {"designing", "design", "user experience", "ux design", "design process"},
	"Project Management": {"managing projects", "project planning", "organizing work", "project coordination"},
	"Technical Skills":   {"coding", "programming", "technical work", "technology", "tech skills"},
	"Public Speaking":    {"presenting", "presentations", "speaking publicly", "giving talks"},
	"Writing":            {"written communication", "content creation", "authoring", "composing"},
	"Research Skills":    {"researching", "investigation", "studying", "gathering information"},
	"Time Management":    {"managing time", "scheduling", "planning", "organizing time"},
	"Goal Setting":       {"setting goals", "planning goals", "objective setting", "target setting"},
}

// Default returns the built-in taxonomy.
func Default() *Taxonomy {
	t, err := New(defaultGroups, defaultSynonyms)
	if err != nil {
		panic("taxonomy: invalid built-in data: " + err.Error())
	}
	return t
}
