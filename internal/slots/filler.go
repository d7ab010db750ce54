package slots

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/danielpatrickdp/whatif-engine/internal/candidate"
	"github.com/danielpatrickdp/whatif-engine/internal/params"
	"github.com/danielpatrickdp/whatif-engine/internal/weighted"
	"go.uber.org/zap"
)

// #region filler

// Filler resolves {placeholder} tokens in template strings.
type Filler struct {
	rules     map[string][]Rule
	fallbacks map[string][]string
	rng       weighted.Rand
	log       *zap.Logger
}

// Option configures a Filler.
type Option func(*Filler)

// WithRules replaces the built-in filler rules.
func WithRules(rules []Rule) Option {
	return func(f *Filler) {
		f.rules = map[string][]Rule{}
		for _, r := range rules {
			f.Register(r)
		}
	}
}

// WithFallbacks replaces the generic fallback table.
func WithFallbacks(fb map[string][]string) Option {
	return func(f *Filler) { f.fallbacks = fb }
}

// WithLogger attaches a logger.
func WithLogger(log *zap.Logger) Option {
	return func(f *Filler) {
		if log != nil {
			f.log = log
		}
	}
}

// NewFiller creates a Filler with the default rules and fallbacks.
func NewFiller(rng weighted.Rand, opts ...Option) *Filler {
	f := &Filler{
		rules:     map[string][]Rule{},
		fallbacks: DefaultFallbacks(),
		rng:       rng,
		log:       zap.NewNop(),
	}
	for _, r := range DefaultRules() {
		f.Register(r)
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Register adds a filler rule, keeping each slot's rules sorted by descending priority.
func (f *Filler) Register(r Rule) {
	if r.Category == "" {
		r.Category = CategoryGeneral
	}
	list := append(f.rules[r.Slot], r)
	sort.SliceStable(list, func(i, j int) bool { return list[i].Priority > list[j].Priority })
	f.rules[r.Slot] = list
}

// #endregion filler

// #region placeholders

var placeholderRe = regexp.MustCompile(`\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// Placeholders returns the distinct slot names in template, in first-seen order.
func Placeholders(template string) []string {
	seen := map[string]bool{}
	var names []string
	for _, m := range placeholderRe.FindAllStringSubmatch(template, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			names = append(names, m[1])
		}
	}
	return names
}

// #endregion placeholders

// #region fill

// Fill resolves every placeholder in template from the parameters.
// Returns false if any slot cannot be resolved; the caller must drop the candidate.
func (f *Filler) Fill(template string, p params.SimulatorParameters, category string) (Result, bool) {
	return f.FillWithContext(template, p, category, nil)
}

// FillWithContext is Fill with technique-supplied values that take precedence
// over the registered rules.
func (f *Filler) FillWithContext(template string, p params.SimulatorParameters, category string, techCtx map[string]string) (Result, bool) {
	names := Placeholders(template)
	filled := make([]FilledSlot, 0, len(names))
	populated := p.Populated()

	for _, name := range names {
		if v, ok := techCtx[name]; ok && v != "" {
			filled = append(filled, FilledSlot{
				Name: name, Placeholder: "{" + name + "}", Value: v,
				Confidence: confidence(MaxPriority, populated),
			})
			continue
		}
		slot, ok := f.resolve(name, p, category, populated)
		if !ok {
			f.log.Debug("slot unfillable", zap.String("slot", name), zap.String("category", category))
			return Result{}, false
		}
		filled = append(filled, slot)
	}

	text := render(template, filled)
	if candidate.HasPlaceholder(text) {
		return Result{}, false
	}
	return Result{Text: text, Slots: filled}, true
}

// resolve tries the slot's rules by priority, then the fallback table.
func (f *Filler) resolve(name string, p params.SimulatorParameters, category string, populated int) (FilledSlot, bool) {
	for _, r := range f.rules[name] {
		if !categoryMatches(r.Category, category) {
			continue
		}
		values := nonEmpty(r.Fill(p))
		if len(values) == 0 {
			continue
		}
		return FilledSlot{
			Name:        name,
			Placeholder: "{" + name + "}",
			Value:       values[weighted.Geometric(f.rng, len(values))],
			Confidence:  confidence(r.Priority, populated),
		}, true
	}
	if values := nonEmpty(f.fallbacks[name]); len(values) > 0 {
		return FilledSlot{
			Name:        name,
			Placeholder: "{" + name + "}",
			Value:       values[weighted.Geometric(f.rng, len(values))],
			Confidence:  confidence(0, populated),
		}, true
	}
	return FilledSlot{}, false
}

func categoryMatches(ruleCategory, requested string) bool {
	return ruleCategory == CategoryGeneral || requested == "" || ruleCategory == requested
}

// confidence = 0.5 base + up to 0.3 from priority + up to 0.2 from populated parameters.
func confidence(priority, populated int) float64 {
	if priority > MaxPriority {
		priority = MaxPriority
	}
	if priority < 0 {
		priority = 0
	}
	paramBonus := 0.04 * float64(populated)
	if paramBonus > 0.2 {
		paramBonus = 0.2
	}
	return candidate.Clamp(0.5 + 0.3*float64(priority)/MaxPriority + paramBonus)
}

func nonEmpty(values []string) []string {
	out := values[:0:0]
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			out = append(out, v)
		}
	}
	return out
}

// render substitutes every occurrence of each resolved placeholder.
func render(template string, filled []FilledSlot) string {
	pairs := make([]string, 0, len(filled)*2)
	for _, s := range filled {
		pairs = append(pairs, s.Placeholder, s.Value)
	}
	return capitalizeFirst(strings.NewReplacer(pairs...).Replace(template))
}

func capitalizeFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError || unicode.IsUpper(r) {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// #endregion fill
