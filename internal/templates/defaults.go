package templates

import "time"

// seedTime is the fixed creation stamp for built-in templates.
var seedTime = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

// Defaults returns the built-in registry templates.
func Defaults() []Template {
	seed := []Template{
		{
			ID: "tpl-letter-sender", Name: "Unexpected sender", Category: "causal-branch",
			Text:        "What if {event} was arranged by {antagonist}, and {consequence}?",
			Required:    []string{"event", "antagonist", "consequence"},
			Constraints: Constraints{Genres: []string{"mystery", "thriller", "horror"}},
		},
		{
			ID: "tpl-place-memory", Name: "The place remembers", Category: "slot-permutation",
			Text:     "What if {place} remembered everything {character} ever did there?",
			Required: []string{"place", "character"},
		},
		{
			ID: "tpl-role-mentor", Name: "Mentor swap", Category: "role-reversal",
			Text:        "What if {character} had to train {antagonist} to stop a greater threat?",
			Required:    []string{"character", "antagonist"},
			Constraints: Constraints{Genres: []string{"fantasy", "adventure", "science_fiction"}},
		},
		{
			ID: "tpl-future-warning", Name: "Warning from later", Category: "temporal-displacement",
			Text:     "What if {character} received {object} sent from {time_shift}?",
			Required: []string{"character", "object", "time_shift"},
		},
		{
			ID: "tpl-gentle-inversion", Name: "Gentle inversion", Category: "constraint-inversion",
			Text:        "What if {character} found out that being {trait} was the reason everyone trusted them?",
			Required:    []string{"character", "trait"},
			Constraints: Constraints{Tones: []string{"light", "hopeful", "whimsical"}, AudienceAges: []string{"children", "teens", "all"}},
		},
		{
			ID: "tpl-theme-mirror", Name: "Theme mirror", Category: "thematic",
			Text:     "What if {theme} looked different to everyone in {place}?",
			Required: []string{"theme", "place"},
		},
	}
	for i := range seed {
		seed[i].Effectiveness = DefaultEffectiveness
		seed[i].Active = true
		seed[i].CreatedAt = seedTime
	}
	return seed
}
