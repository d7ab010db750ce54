package rules

import (
	"errors"
	"fmt"
	"os"

	"github.com/danielpatrickdp/whatif-engine/internal/params"
	"github.com/danielpatrickdp/whatif-engine/internal/slots"
	"gopkg.in/yaml.v3"
)

// #region catalog

// Catalog is an immutable set of rules.
type Catalog struct {
	rules []Rule
}

// ErrInvalidRule is returned when a catalog entry fails validation.
var ErrInvalidRule = errors.New("invalid rule")

// NewCatalog validates rules and fills in missing parameter lists.
func NewCatalog(rules []Rule) (*Catalog, error) {
	seen := map[string]bool{}
	out := make([]Rule, 0, len(rules))
	for _, r := range rules {
		if r.ID == "" || r.Template == "" {
			return nil, fmt.Errorf("%w: id and template are required", ErrInvalidRule)
		}
		if seen[r.ID] {
			return nil, fmt.Errorf("%w: duplicate id %s", ErrInvalidRule, r.ID)
		}
		if !r.Category.Known() {
			return nil, fmt.Errorf("%w: %s has unknown category %q", ErrInvalidRule, r.ID, r.Category)
		}
		if r.Weight < 0 || r.Weight > 1 {
			return nil, fmt.Errorf("%w: %s weight %.2f outside [0,1]", ErrInvalidRule, r.ID, r.Weight)
		}
		seen[r.ID] = true
		if len(r.Parameters) == 0 {
			r.Parameters = slots.Placeholders(r.Template)
		}
		out = append(out, r)
	}
	return &Catalog{rules: out}, nil
}

// LoadCatalog reads a YAML list of rules from path.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules: %w", err)
	}
	var doc struct {
		Rules []Rule `yaml:"rules"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse rules: %w", err)
	}
	return NewCatalog(doc.Rules)
}

// Rules returns a copy of every rule.
func (c *Catalog) Rules() []Rule {
	out := make([]Rule, len(c.rules))
	copy(out, c.rules)
	return out
}

// Len returns the number of rules.
func (c *Catalog) Len() int {
	return len(c.rules)
}

// #endregion catalog

// #region applicability

// Applicable returns the rules whose constraints are satisfiable by p.
func (c *Catalog) Applicable(p params.SimulatorParameters) []Rule {
	var out []Rule
	for _, r := range c.rules {
		if r.AppliesTo(p) {
			out = append(out, r)
		}
	}
	return out
}

// AppliesTo reports whether the rule's genre, tone and required-field constraints hold.
// A genre or tone constraint is ignored when the parameter is unset.
func (r Rule) AppliesTo(p params.SimulatorParameters) bool {
	if r.Constraints == nil {
		return true
	}
	if p.Genre != "" && len(r.Constraints.Genres) > 0 && !contains(r.Constraints.Genres, p.Genre) {
		return false
	}
	if p.Tone != "" && len(r.Constraints.Tones) > 0 && !contains(r.Constraints.Tones, p.Tone) {
		return false
	}
	for _, f := range r.Constraints.RequiredFields {
		if !p.Has(f) {
			return false
		}
	}
	return true
}

// GroupByCategory buckets rules by category, preserving order within each group.
func GroupByCategory(rs []Rule) map[Category][]Rule {
	groups := make(map[Category][]Rule)
	for _, r := range rs {
		groups[r.Category] = append(groups[r.Category], r)
	}
	return groups
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if params.CanonicalGenre(s) == v || params.CanonicalTone(s) == v {
			return true
		}
	}
	return false
}

// #endregion applicability
