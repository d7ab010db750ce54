package logical

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/danielpatrickdp/whatif-engine/internal/candidate"
	"github.com/danielpatrickdp/whatif-engine/internal/health"
	"github.com/danielpatrickdp/whatif-engine/internal/lexicon"
	"github.com/danielpatrickdp/whatif-engine/internal/params"
	"github.com/danielpatrickdp/whatif-engine/internal/rules"
	"github.com/danielpatrickdp/whatif-engine/internal/slots"
	"github.com/danielpatrickdp/whatif-engine/internal/templates"
	"github.com/danielpatrickdp/whatif-engine/internal/weighted"
	"go.uber.org/zap"
)

// #region constants

// Scoring constants for rule-based candidates.
const (
	PromptConfidence    = 0.8
	CompletenessPerSlot = 0.05
	MaxCompleteness     = 0.2
	MinBranchImpact     = 0.6
	MaxBranchImpact     = 1.0
)

// #endregion constants

// #region generator

// TemplateSource supplies registry templates as extra rule material.
type TemplateSource interface {
	Find(f templates.Filter) []templates.Template
}

// Generator produces deterministic, rule-driven prompts and branch suggestions.
// It is safe for concurrent use when rng is.
type Generator struct {
	catalog   *rules.Catalog
	filler    *slots.Filler
	rng       weighted.Rand
	templates TemplateSource
	tracker   health.Tracker
	log       *zap.Logger
}

// Option configures a Generator.
type Option func(*Generator)

// WithTemplates adds active registry templates in logical categories to the rule pool.
func WithTemplates(src TemplateSource) Option {
	return func(g *Generator) { g.templates = src }
}

// WithLogger attaches a logger.
func WithLogger(log *zap.Logger) Option {
	return func(g *Generator) {
		if log != nil {
			g.log = log
		}
	}
}

// New creates a Generator over catalog.
func New(catalog *rules.Catalog, filler *slots.Filler, rng weighted.Rand, opts ...Option) *Generator {
	g := &Generator{
		catalog: catalog,
		filler:  filler,
		rng:     rng,
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Health returns the generator's running health snapshot.
func (g *Generator) Health() health.Snapshot {
	return g.tracker.Snapshot()
}

// #endregion generator

// #region generate-prompts

// GeneratePrompts returns up to count rule-based prompts. Candidates whose
// template cannot be filled are dropped, so fewer may come back. An error is
// returned only for an internal fault.
func (g *Generator) GeneratePrompts(ctx context.Context, p params.SimulatorParameters, count int) (out []candidate.GeneratedPrompt, err error) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("logical prompts: panic: %v", r)
		}
		g.tracker.Record(time.Since(start), err)
	}()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if count <= 0 {
		return nil, nil
	}

	pool := append(g.catalog.Applicable(p), g.templateRules(p)...)
	if len(pool) == 0 {
		g.log.Debug("no applicable rules", zap.String("genre", p.Genre), zap.String("tone", p.Tone))
		return nil, nil
	}
	groups := rules.GroupByCategory(pool)
	cats := orderedCategories(groups)

	dropped := 0
	for i := 0; i < count; i++ {
		group := groups[cats[g.rng.IntN(len(cats))]]
		rule := group[weighted.Index(g.rng, ruleWeights(group))]

		res, ok := g.filler.Fill(rule.Template, p, string(rule.Category))
		if !ok {
			dropped++
			continue
		}
		out = append(out, g.prompt(rule, res, p))
	}
	if dropped > 0 {
		g.tracker.Dropped(dropped)
	}
	g.log.Debug("logical prompts generated",
		zap.Int("requested", count),
		zap.Int("returned", len(out)),
		zap.Int("dropped", dropped),
		zap.Int("pool", len(pool)))
	return out, nil
}

// templateRules converts matching active registry templates into weighted rules.
func (g *Generator) templateRules(p params.SimulatorParameters) []rules.Rule {
	if g.templates == nil {
		return nil
	}
	active := true
	found := g.templates.Find(templates.Filter{
		Genre:       p.Genre,
		Tone:        p.Tone,
		AudienceAge: p.AudienceAge,
		Active:      &active,
	})
	var out []rules.Rule
	for _, t := range found {
		cat := rules.Category(t.Category)
		if !cat.Known() {
			continue
		}
		out = append(out, rules.Rule{
			ID:          t.ID,
			Name:        t.Name,
			Category:    cat,
			Template:    t.Text,
			Parameters:  t.Required,
			Weight:      t.Effectiveness,
			TemplateRef: t.ID,
		})
	}
	return out
}

func (g *Generator) prompt(rule rules.Rule, res slots.Result, p params.SimulatorParameters) candidate.GeneratedPrompt {
	bonus := math.Min(MaxCompleteness, CompletenessPerSlot*float64(p.Populated()))
	source := candidate.SourceRule
	tags := []string{string(rule.Category)}
	if rule.TemplateRef != "" {
		source = candidate.SourceTemplate
		tags = append(tags, "template")
	}
	if p.Genre != "" {
		tags = append(tags, p.Genre)
	}
	return candidate.GeneratedPrompt{
		ID:          candidate.NewID(),
		Text:        res.Text,
		Type:        candidate.PromptLogical,
		Tags:        tags,
		Impact:      candidate.Clamp(rule.Weight + bonus),
		Confidence:  PromptConfidence,
		TemplateRef: rule.TemplateRef,
		Method:      candidate.MethodRuleBased,
		Explanation: candidate.Explanation{
			Source:    source,
			RuleID:    rule.ID,
			RuleName:  rule.Name,
			Category:  string(rule.Category),
			Reasoning: fmt.Sprintf("%s rule chosen by weight %.2f with %d populated parameters", rule.Category, rule.Weight, p.Populated()),
			Slots:     res.Values(),
		},
	}
}

// orderedCategories lists non-empty groups in catalog category order so that
// a seeded draw is reproducible.
func orderedCategories(groups map[rules.Category][]rules.Rule) []rules.Category {
	var cats []rules.Category
	for _, c := range rules.Categories {
		if len(groups[c]) > 0 {
			cats = append(cats, c)
		}
	}
	return cats
}

func ruleWeights(group []rules.Rule) []float64 {
	w := make([]float64, len(group))
	for i, r := range group {
		w[i] = r.Weight
	}
	return w
}

// #endregion generate-prompts

// #region generate-branches

// GenerateBranches returns up to count branch suggestions for a story node,
// cycling through the fixed branch techniques.
func (g *Generator) GenerateBranches(ctx context.Context, content string, p params.SimulatorParameters, count int) (out []candidate.BranchSuggestion, err error) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("logical branches: panic: %v", r)
		}
		g.tracker.Record(time.Since(start), err)
	}()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ex := lexicon.Extract(content)
	dropped := 0
	for i := 0; i < count; i++ {
		tech := branchTechniques[i%len(branchTechniques)]
		res, ok := g.filler.FillBranch(tech.template, ex, p, tech.name)
		if !ok {
			dropped++
			continue
		}
		out = append(out, candidate.BranchSuggestion{
			ID:             candidate.NewID(),
			Text:           res.Text,
			BranchType:     tech.branchType,
			Impact:         weighted.Between(g.rng, MinBranchImpact, MaxBranchImpact),
			OutcomeSummary: tech.outcome,
			Method:         candidate.MethodRuleBased,
			Explanation: candidate.Explanation{
				Source:    candidate.SourceTechnique,
				Technique: tech.name,
				Category:  string(tech.branchType),
				Reasoning: tech.reasoning,
				Slots:     res.Values(),
			},
		})
	}
	if dropped > 0 {
		g.tracker.Dropped(dropped)
	}
	g.log.Debug("logical branches generated",
		zap.Int("requested", count),
		zap.Int("returned", len(out)),
		zap.Int("characters", len(ex.Characters)),
		zap.Int("actions", len(ex.Actions)))
	return out, nil
}

// #endregion generate-branches
