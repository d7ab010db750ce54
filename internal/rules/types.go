package rules

// #region category

// Category groups logical rules by the transformation they apply.
type Category string

const (
	SlotPermutation      Category = "slot-permutation"
	ConstraintInversion  Category = "constraint-inversion"
	CausalBranch         Category = "causal-branch"
	RoleReversal         Category = "role-reversal"
	TemporalDisplacement Category = "temporal-displacement"
)

// Categories lists the logical categories in catalog order.
var Categories = []Category{
	SlotPermutation, ConstraintInversion, CausalBranch, RoleReversal, TemporalDisplacement,
}

// Known reports whether c is one of Categories.
func (c Category) Known() bool {
	for _, k := range Categories {
		if k == c {
			return true
		}
	}
	return false
}

// #endregion category

// #region rule

// Constraints limit where a rule applies. Empty lists place no restriction.
type Constraints struct {
	Genres         []string `yaml:"genres,omitempty"`
	Tones          []string `yaml:"tones,omitempty"`
	RequiredFields []string `yaml:"required_fields,omitempty"`
}

// Rule is a static, read-only logical generation rule.
type Rule struct {
	ID          string       `yaml:"id"`
	Name        string       `yaml:"name"`
	Category    Category     `yaml:"category"`
	Template    string       `yaml:"template"`
	Parameters  []string     `yaml:"parameters,omitempty"`
	Constraints *Constraints `yaml:"constraints,omitempty"`
	Weight      float64      `yaml:"weight"`

	// TemplateRef is set when the rule was built from a registry template.
	TemplateRef string `yaml:"-"`
}

// #endregion rule
