package creative

import (
	"github.com/danielpatrickdp/whatif-engine/internal/candidate"
	"github.com/danielpatrickdp/whatif-engine/internal/lexicon"
	"github.com/danielpatrickdp/whatif-engine/internal/params"
	"github.com/danielpatrickdp/whatif-engine/internal/slots"
	"github.com/danielpatrickdp/whatif-engine/internal/weighted"
)

// #region prompt-techniques

// promptTechnique builds a template plus context slot values. ok is false
// when the technique cannot apply to the parameters.
type promptTechnique struct {
	name       string
	promptType candidate.PromptType
	minImpact  float64
	maxImpact  float64
	confidence float64
	build      func(rng weighted.Rand, p params.SimulatorParameters) (template string, ctx map[string]string, ok bool)
}

// promptTechniques are cycled in order by GeneratePrompts.
var promptTechniques = []promptTechnique{
	{name: "concept-blending", promptType: candidate.PromptCreative, minImpact: 0.7, maxImpact: 0.95, confidence: 0.6, build: conceptBlend},
	{name: "anti-template", promptType: candidate.PromptTwist, minImpact: 0.75, maxImpact: 1.0, confidence: 0.65, build: antiTemplate},
	{name: "character-conflict", promptType: candidate.PromptCharacter, minImpact: 0.6, maxImpact: 0.9, confidence: 0.7, build: characterConflict},
	{name: "associative-chain", promptType: candidate.PromptThematic, minImpact: 0.5, maxImpact: 0.85, confidence: 0.55, build: associativeChain},
}

// #endregion prompt-techniques

// #region concept-blending

type concept struct {
	word   string
	domain string
}

var concepts = []concept{
	{"time", "abstract"}, {"memory", "abstract"}, {"silence", "abstract"},
	{"music", "art"}, {"paintings", "art"}, {"poetry", "art"},
	{"gravity", "physics"}, {"light", "physics"}, {"weather", "physics"},
	{"money", "society"}, {"laws", "society"}, {"names", "society"},
	{"dreams", "mind"}, {"shadows", "mind"}, {"fear", "mind"},
	{"machines", "technology"}, {"maps", "technology"}, {"clocks", "technology"},
}

var blendTemplates = []string{
	"What if {concept_a} behaved like {concept_b} in {place}?",
	"What if {character} could trade {concept_a} for {concept_b}, but only once?",
	"What if everyone in {place} lost their {concept_a} and gained {concept_b} instead?",
}

// conceptBlend pairs two concepts from different domains.
func conceptBlend(rng weighted.Rand, _ params.SimulatorParameters) (string, map[string]string, bool) {
	a := weighted.Pick(rng, concepts)
	var others []concept
	for _, c := range concepts {
		if c.domain != a.domain {
			others = append(others, c)
		}
	}
	b := weighted.Pick(rng, others)
	return weighted.Pick(rng, blendTemplates), map[string]string{
		"concept_a": a.word,
		"concept_b": b.word,
	}, true
}

// #endregion concept-blending

// #region anti-template

// expectationViolations turn a genre's usual expectation on its head.
// The "" entry is used for unknown or missing genres.
var expectationViolations = map[string][]string{
	"mystery": {
		"What if {event} solved the case before anyone knew there was one?",
		"What if whoever was behind {event} hired {character} to find them?",
	},
	"fantasy": {
		"What if the magic behind {event} only worked for people who refused to believe in it?",
		"What if the prophecy about {event} was a copying mistake made by a tired scribe?",
	},
	"science_fiction": {
		"What if {event} was caused by the machines to protect people from themselves?",
		"What if the most advanced technology in {place} could not prevent {event} because it was built to cause it?",
	},
	"horror": {
		"What if the monster was more frightened of {event} than {character} was?",
		"What if {event} was the only safe thing that happened in {place}?",
	},
	"romance": {
		"What if {event} brought together two people who had already fallen in love once and forgotten?",
		"What if {character} realized that {event} was a rival's gift, not a rival's trick?",
	},
	"thriller": {
		"What if the agency that planned {event} wanted {character} to succeed?",
	},
	"comedy": {
		"What if {event} was taken completely seriously by everyone except {character}?",
	},
	"": {
		"What if {event} turned out to be the happy ending instead of the beginning?",
		"What if everyone expected {event} and {character} was the only one surprised?",
	},
}

const defaultEvent = "the turning point"

// antiTemplate applies a genre-specific expectation violation to the current event.
func antiTemplate(rng weighted.Rand, p params.SimulatorParameters) (string, map[string]string, bool) {
	patterns := expectationViolations[p.Genre]
	if len(patterns) == 0 {
		patterns = expectationViolations[""]
	}
	event := p.Event
	if event == "" {
		event = defaultEvent
	}
	return weighted.Pick(rng, patterns), map[string]string{"event": event}, true
}

// #endregion anti-template

// #region character-conflict

var conflictTemplates = []string{
	"What if {character}, who is {trait}, could only survive {event} by being {opposite_trait}?",
	"What if being {trait} is exactly what caused {event}, and {character} has to become {opposite_trait} to undo it?",
	"What if {event} made everyone believe {character} was {opposite_trait} when they have always been {trait}?",
}

// characterConflict contrasts a trait against the event. Needs at least one trait.
func characterConflict(rng weighted.Rand, p params.SimulatorParameters) (string, map[string]string, bool) {
	traits := p.Traits()
	if len(traits) == 0 {
		return "", nil, false
	}
	trait := weighted.Pick(rng, traits)
	event := p.Event
	if event == "" {
		event = "a single afternoon"
	}
	return weighted.Pick(rng, conflictTemplates), map[string]string{
		"trait":          trait,
		"opposite_trait": slots.OppositeTrait(trait),
		"event":          event,
	}, true
}

// #endregion character-conflict

// #region associative-chain

// associations is a small word-association table; chains follow it two hops.
var associations = map[string][]string{
	"letter":   {"secret", "distance", "handwriting"},
	"secret":   {"silence", "key", "betrayal"},
	"key":      {"door", "prison", "trust"},
	"door":     {"threshold", "key", "stranger"},
	"storm":    {"shipwreck", "rage", "cleansing"},
	"forest":   {"hunger", "path", "wolves"},
	"night":    {"dreams", "stars", "fear"},
	"city":     {"crowds", "loneliness", "noise"},
	"love":     {"loss", "courage", "memory"},
	"memory":   {"photograph", "ghost", "regret"},
	"war":      {"ruins", "loyalty", "silence"},
	"family":   {"inheritance", "secret", "home"},
	"home":     {"door", "absence", "return"},
	"magic":    {"price", "promise", "forgetting"},
	"friend":   {"betrayal", "promise", "laughter"},
	"ocean":    {"distance", "storm", "drowning"},
	"death":    {"inheritance", "ghost", "silence"},
	"power":    {"crown", "fear", "corruption"},
	"mystery":  {"clue", "secret", "night"},
	"fantasy":  {"magic", "quest", "crown"},
	"horror":   {"night", "door", "scream"},
	"dark":     {"night", "fear", "shadow"},
	"brave":    {"fear", "war", "sacrifice"},
	"curious":  {"door", "secret", "map"},
	"silence":  {"secret", "snow", "church"},
	"betrayal": {"friend", "knife", "exile"},
}

// associativeChain seeds from any parameter word and follows the table two hops.
func associativeChain(rng weighted.Rand, p params.SimulatorParameters) (string, map[string]string, bool) {
	var seeds []string
	for _, w := range p.SeedWords() {
		for _, tok := range lexicon.Tokenize(w) {
			if _, ok := associations[tok]; ok {
				seeds = append(seeds, tok)
			}
		}
	}
	if len(seeds) == 0 {
		for _, c := range concepts {
			if _, ok := associations[c.word]; ok {
				seeds = append(seeds, c.word)
			}
		}
	}
	seed := weighted.Pick(rng, seeds)
	link := weighted.Pick(rng, associations[seed])
	next := associations[link]
	var ends []string
	for _, w := range next {
		if w != seed && w != link {
			ends = append(ends, w)
		}
	}
	end := weighted.Pick(rng, ends)
	if end == "" {
		end = weighted.Pick(rng, associations[seed])
		if end == link {
			end = "something no one had a name for"
		}
	}
	return "What if {seed} led {character} to {link}, and {link} led to {end}?", map[string]string{
		"seed": seed,
		"link": link,
		"end":  end,
	}, true
}

// #endregion associative-chain

// #region branch-techniques

type branchTechnique struct {
	name       string
	branchType candidate.BranchType
	template   string
	outcome    string
	minImpact  float64
	maxImpact  float64
}

// branchTechniques are cycled in order by GenerateBranches.
var branchTechniques = []branchTechnique{
	{
		name: "unexpected-alliance", branchType: candidate.BranchDeEscalation,
		template:  "{character} and {other_character} set their quarrel aside to get past {obstacle}.",
		outcome:   "Old opponents cooperate and the tension eases for now.",
		minImpact: 0.5, maxImpact: 0.8,
	},
	{
		name: "hidden-motive", branchType: candidate.BranchPlotTwist,
		template:  "It turns out {other_character} went along with {action} only because {secret}.",
		outcome:   "A trusted figure's real reason comes to light.",
		minImpact: 0.7, maxImpact: 1.0,
	},
	{
		name: "moral-inversion", branchType: candidate.BranchMoralDilemma,
		template:  "Doing the right thing in {location} now looks wrong, and {character} must choose: {choice}.",
		outcome:   "Right and wrong trade places and someone has to pick a side.",
		minImpact: 0.65, maxImpact: 0.95,
	},
	{
		name: "time-pressure", branchType: candidate.BranchEscalation,
		template:  "{character} has only until nightfall before {consequence}.",
		outcome:   "A deadline forces every choice to happen faster.",
		minImpact: 0.6, maxImpact: 0.9,
	},
	{
		name: "perspective-shift", branchType: candidate.BranchCharacterDriven,
		template:  "Seen through the eyes of {other_character}, {action} stirs nothing but {emotion}.",
		outcome:   "The same events read differently from another point of view.",
		minImpact: 0.5, maxImpact: 0.85,
	},
}

// #endregion branch-techniques
