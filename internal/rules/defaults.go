package rules

import "github.com/danielpatrickdp/whatif-engine/internal/params"

// #region default-catalog

// DefaultRules is the built-in logical rule catalog.
func DefaultRules() []Rule {
	return []Rule{
		// slot-permutation
		{
			ID: "sp-swap-place", Name: "Relocate the event", Category: SlotPermutation, Weight: 0.6,
			Template:    "What if {event} happened in {place} instead?",
			Constraints: &Constraints{RequiredFields: []string{params.FieldEvent}},
		},
		{
			ID: "sp-object-owner", Name: "Object in the wrong hands", Category: SlotPermutation, Weight: 0.5,
			Template: "What if {character} found {object} that belonged to {antagonist}?",
		},
		{
			ID: "sp-mood-shift", Name: "Mood transplant", Category: SlotPermutation, Weight: 0.4,
			Template: "What if {place} felt {mood} on the day {character} arrived?",
		},
		// constraint-inversion
		{
			ID: "ci-event-never", Name: "Invert the inciting event", Category: ConstraintInversion, Weight: 0.7,
			Template:    "What if it turned out that {event} {inversion}?",
			Constraints: &Constraints{RequiredFields: []string{params.FieldEvent}},
		},
		{
			ID: "ci-trait-flip", Name: "Flip the defining trait", Category: ConstraintInversion, Weight: 0.65,
			Template:    "What if {character}, always {trait}, had to be {opposite_trait} to survive?",
			Constraints: &Constraints{RequiredFields: []string{params.FieldTraits}},
		},
		{
			ID: "ci-mystery-solved", Name: "Solved too soon", Category: ConstraintInversion, Weight: 0.55,
			Template:    "What if {character} solved the case in the first hour, and the real mystery was why {antagonist} wanted it solved?",
			Constraints: &Constraints{Genres: []string{"mystery", "thriller"}},
		},
		// causal-branch
		{
			ID: "cb-because", Name: "Chain of consequence", Category: CausalBranch, Weight: 0.6,
			Template:    "What if, because {event}, {consequence}?",
			Constraints: &Constraints{RequiredFields: []string{params.FieldEvent}},
		},
		{
			ID: "cb-object-trigger", Name: "Object as trigger", Category: CausalBranch, Weight: 0.5,
			Template: "What if {object} was the reason {character} could not leave {place}?",
		},
		{
			ID: "cb-theme-cost", Name: "Theme with a price", Category: CausalBranch, Weight: 0.55,
			Template:    "What if {character} learned that {theme} has a cost, and {consequence}?",
			Constraints: &Constraints{RequiredFields: []string{params.FieldThemes}},
		},
		// role-reversal
		{
			ID: "rr-hero-villain", Name: "Hero becomes the problem", Category: RoleReversal, Weight: 0.7,
			Template: "What if {character} discovered they were {role} of this story all along?",
		},
		{
			ID: "rr-ally-enemy", Name: "Antagonist needs help", Category: RoleReversal, Weight: 0.6,
			Template: "What if {antagonist} came to {character} asking for protection?",
		},
		{
			ID: "rr-perspective", Name: "Retold from the other side", Category: RoleReversal, Weight: 0.45,
			Template:    "What if {event} were told in the {perspective} by {antagonist}?",
			Constraints: &Constraints{RequiredFields: []string{params.FieldEvent, params.FieldPerspective}},
		},
		// temporal-displacement
		{
			ID: "td-shift-event", Name: "Move the event in time", Category: TemporalDisplacement, Weight: 0.6,
			Template:    "What if {event} happened {time_shift}?",
			Constraints: &Constraints{RequiredFields: []string{params.FieldEvent}},
		},
		{
			ID: "td-memory", Name: "Remembered future", Category: TemporalDisplacement, Weight: 0.5,
			Template: "What if {character} remembered {place} exactly as it will look {time_shift}?",
		},
		{
			ID: "td-era-clash", Name: "Era collision", Category: TemporalDisplacement, Weight: 0.45,
			Template:    "What if someone from {time_shift} arrived in {era} {place} carrying {object}?",
			Constraints: &Constraints{RequiredFields: []string{params.FieldSetting}},
		},
	}
}

// DefaultCatalog returns the built-in catalog. It panics only if the
// built-in rules are malformed.
func DefaultCatalog() *Catalog {
	c, err := NewCatalog(DefaultRules())
	if err != nil {
		panic(err)
	}
	return c
}

// #endregion default-catalog
