package slots

import "github.com/danielpatrickdp/whatif-engine/internal/params"

// #region filler-rule

// CategoryGeneral marks a filler rule that applies to every rule category.
const CategoryGeneral = "general"

// FillFunc returns candidate values for a slot, ordered generic → specific.
// An empty result means the rule cannot fill the slot for these parameters.
type FillFunc func(p params.SimulatorParameters) []string

// Rule resolves one slot name on the general-prompt path.
type Rule struct {
	Slot     string
	Priority int    // 1..10, higher is tried first
	Category string // CategoryGeneral or a rule category name
	Fill     FillFunc
}

// MaxPriority is the priority that earns the full confidence bonus.
const MaxPriority = 10

// #endregion filler-rule

// #region filled-slot

// FilledSlot records how a single placeholder was resolved.
type FilledSlot struct {
	Name        string
	Placeholder string
	Value       string
	Confidence  float64
}

// #endregion filled-slot

// #region result

// Result is the outcome of a successful fill.
type Result struct {
	Text  string
	Slots []FilledSlot
}

// Values returns slot name → resolved value.
func (r Result) Values() map[string]string {
	if len(r.Slots) == 0 {
		return nil
	}
	m := make(map[string]string, len(r.Slots))
	for _, s := range r.Slots {
		m[s.Name] = s.Value
	}
	return m
}

// #endregion result
