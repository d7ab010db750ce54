package slots

import (
	"github.com/danielpatrickdp/whatif-engine/internal/candidate"
	"github.com/danielpatrickdp/whatif-engine/internal/lexicon"
	"github.com/danielpatrickdp/whatif-engine/internal/params"
	"github.com/danielpatrickdp/whatif-engine/internal/weighted"
)

// #region branch-resolvers

// branchResolver draws a value for a branch slot from extracted node text;
// curated is used when extraction yields nothing.
type branchResolver struct {
	extracted func(ex lexicon.Extraction, p params.SimulatorParameters) []string
	curated   map[string][]string // technique → list; "" is the default list
}

var branchResolvers = map[string]branchResolver{
	"character": {
		extracted: func(ex lexicon.Extraction, p params.SimulatorParameters) []string {
			if name := p.CharacterName(); name != "" {
				return []string{name}
			}
			return ex.Characters
		},
	},
	"other_character": {
		extracted: func(ex lexicon.Extraction, p params.SimulatorParameters) []string {
			var out []string
			for _, c := range ex.Characters {
				if c != p.CharacterName() {
					out = append(out, c)
				}
			}
			return out
		},
		curated: map[string][]string{
			"": {"a stranger", "an old friend", "a rival who has been watching"},
		},
	},
	"action": {
		extracted: func(ex lexicon.Extraction, _ params.SimulatorParameters) []string { return ex.Actions },
		curated: map[string][]string{
			"": {"what just happened", "the sudden turn of events", "the choice that was made"},
		},
	},
	"location": {
		extracted: func(ex lexicon.Extraction, p params.SimulatorParameters) []string {
			if len(ex.Locations) > 0 {
				return ex.Locations
			}
			if place := p.Place(); place != "" {
				return []string{place}
			}
			return nil
		},
		curated: map[string][]string{
			"": {"this place", "the edge of town", "the room where it started"},
		},
	},
	"entity": {
		extracted: func(ex lexicon.Extraction, _ params.SimulatorParameters) []string { return ex.Entities },
		curated: map[string][]string{
			"": {"the object everyone overlooked", "an old promise", "the one clue that does not fit"},
		},
	},
	"emotion": {
		curated: map[string][]string{
			"":                    {"doubt", "relief", "quiet determination"},
			"character-reaction":  {"anger", "fear", "a laugh nobody expected"},
			"conflict-escalation": {"fury", "desperation", "cold resolve"},
			"perspective-shift":   {"envy", "pity", "grudging respect"},
		},
	},
	"consequence": {
		curated: map[string][]string{
			"":                        {"things get worse", "someone is left behind", "the truth comes out"},
			"consequence-exploration": {"the damage spreads further than anyone planned", "a debt comes due", "an innocent takes the blame"},
			"time-pressure":           {"the deadline moves up", "the way out starts to close", "help will arrive too late"},
		},
	},
	"secret": {
		curated: map[string][]string{
			"": {
				"they have been here before", "the letter was never meant for them",
				"their closest ally arranged everything", "the map was drawn by their own hand",
			},
		},
	},
	"obstacle": {
		curated: map[string][]string{
			"": {"a locked door", "a sudden storm", "a witness who will not talk", "a bridge that is no longer there"},
		},
	},
	"choice": {
		curated: map[string][]string{
			"": {
				"save the stranger or keep the secret", "tell the truth or protect a friend",
				"take the reward or walk away", "follow the rules or follow their heart",
			},
		},
	},
}

// #endregion branch-resolvers

// #region fill-branch

// Branch slot confidences by provenance.
const (
	extractedConfidence = 0.8
	curatedConfidence   = 0.6
	defaultConfidence   = 0.4
)

// FillBranch resolves a branch template from text extracted out of the node content.
// Unresolved slots fall back to the character's name or "the protagonist";
// it fails only when the template is empty.
func (f *Filler) FillBranch(template string, ex lexicon.Extraction, p params.SimulatorParameters, technique string) (Result, bool) {
	if template == "" {
		return Result{}, false
	}
	names := Placeholders(template)
	filled := make([]FilledSlot, 0, len(names))
	for _, name := range names {
		value, conf := f.resolveBranch(name, ex, p, technique)
		filled = append(filled, FilledSlot{
			Name: name, Placeholder: "{" + name + "}", Value: value, Confidence: conf,
		})
	}
	text := render(template, filled)
	if candidate.HasPlaceholder(text) {
		return Result{}, false
	}
	return Result{Text: text, Slots: filled}, true
}

func (f *Filler) resolveBranch(name string, ex lexicon.Extraction, p params.SimulatorParameters, technique string) (string, float64) {
	r, ok := branchResolvers[name]
	if ok {
		if r.extracted != nil {
			if values := nonEmpty(r.extracted(ex, p)); len(values) > 0 {
				return weighted.Pick(f.rng, values), extractedConfidence
			}
		}
		list := r.curated[technique]
		if len(list) == 0 {
			list = r.curated[""]
		}
		if len(list) > 0 {
			return list[weighted.Geometric(f.rng, len(list))], curatedConfidence
		}
	}
	return defaultSubject(p), defaultConfidence
}

func defaultSubject(p params.SimulatorParameters) string {
	if name := p.CharacterName(); name != "" {
		return name
	}
	return "the protagonist"
}

// #endregion fill-branch
