package creative

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/danielpatrickdp/whatif-engine/internal/candidate"
	"github.com/danielpatrickdp/whatif-engine/internal/health"
	"github.com/danielpatrickdp/whatif-engine/internal/lexicon"
	"github.com/danielpatrickdp/whatif-engine/internal/params"
	"github.com/danielpatrickdp/whatif-engine/internal/slots"
	"github.com/danielpatrickdp/whatif-engine/internal/weighted"
	"go.uber.org/zap"
)

// #region generator

// Backend generates additional candidate text for a set of parameters, or fails.
type Backend interface {
	Generate(ctx context.Context, p params.SimulatorParameters, n int) ([]candidate.Draft, error)
}

// DefaultBackendTimeout bounds one augmentation call.
const DefaultBackendTimeout = 10 * time.Second

// Generator produces heuristic "surprise" prompts and branch suggestions,
// optionally topped up by an external Backend.
type Generator struct {
	filler  *slots.Filler
	rng     weighted.Rand
	backend Backend
	timeout time.Duration
	target  int
	tracker health.Tracker
	log     *zap.Logger
}

// Option configures a Generator.
type Option func(*Generator)

// WithBackend enables augmentation through b, bounded by timeout per call.
func WithBackend(b Backend, timeout time.Duration) Option {
	return func(g *Generator) {
		g.backend = b
		if timeout > 0 {
			g.timeout = timeout
		}
	}
}

// WithTargetCount sets the candidate count augmentation tops up to when it
// exceeds the requested count. Zero keeps the requested count.
func WithTargetCount(n int) Option {
	return func(g *Generator) {
		if n > 0 {
			g.target = n
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(log *zap.Logger) Option {
	return func(g *Generator) {
		if log != nil {
			g.log = log
		}
	}
}

// New creates a Generator. Without WithBackend augmentation is disabled.
func New(filler *slots.Filler, rng weighted.Rand, opts ...Option) *Generator {
	g := &Generator{
		filler:  filler,
		rng:     rng,
		timeout: DefaultBackendTimeout,
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

// GeneratePrompts cycles the prompt techniques for up to count candidates.
// When the heuristics fall short of max(count, target) and a backend is
// attached, the remainder is requested from the backend; backend failure
// yields zero extra candidates.
func (g *Generator) GeneratePrompts(ctx context.Context, p params.SimulatorParameters, count int) (out []candidate.GeneratedPrompt, err error) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("creative prompts: panic: %v", r)
		}
		g.tracker.Record(time.Since(start), err)
	}()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dropped := 0
	for i := 0; i < count; i++ {
		tech := promptTechniques[i%len(promptTechniques)]
		template, techCtx, ok := tech.build(g.rng, p)
		if !ok {
			dropped++
			continue
		}
		res, ok := g.filler.FillWithContext(template, p, tech.name, techCtx)
		if !ok {
			dropped++
			continue
		}
		out = append(out, g.prompt(tech, res, p))
	}
	if dropped > 0 {
		g.tracker.Dropped(dropped)
	}

	want := max(count, g.target)
	if short := want - len(out); short > 0 && g.backend != nil {
		out = append(out, g.augment(ctx, p, short, len(out), want)...)
	}
	g.log.Debug("creative prompts generated",
		zap.Int("requested", count),
		zap.Int("returned", len(out)),
		zap.Int("dropped", dropped))
	return out, nil
}

func (g *Generator) prompt(tech promptTechnique, res slots.Result, p params.SimulatorParameters) candidate.GeneratedPrompt {
	tags := []string{tech.name}
	if p.Genre != "" {
		tags = append(tags, p.Genre)
	}
	return candidate.GeneratedPrompt{
		ID:         candidate.NewID(),
		Text:       res.Text,
		Type:       tech.promptType,
		Tags:       tags,
		Impact:     weighted.Between(g.rng, tech.minImpact, tech.maxImpact),
		Confidence: tech.confidence,
		Method:     candidate.MethodHybrid,
		Explanation: candidate.Explanation{
			Source:    candidate.SourceTechnique,
			Technique: tech.name,
			Reasoning: fmt.Sprintf("%s technique applied to %s", tech.name, describe(res.Values())),
			Slots:     res.Values(),
		},
	}
}

// describe lists slot values for the reasoning line.
func describe(values map[string]string) string {
	if len(values) == 0 {
		return "no parameters"
	}
	var parts []string
	for _, name := range []string{"concept_a", "concept_b", "event", "trait", "opposite_trait", "seed", "link", "end"} {
		if v, ok := values[name]; ok {
			parts = append(parts, name+"="+v)
		}
	}
	if len(parts) == 0 {
		return "the story parameters"
	}
	return strings.Join(parts, ", ")
}

// #endregion generate-prompts

// #region augment

// BackendConfidence is the confidence assigned to backend-sourced candidates.
const BackendConfidence = 0.6

// defaultDraftImpact is used when a draft carries no impact estimate.
const defaultDraftImpact = 0.7

type backendResult struct {
	drafts []candidate.Draft
	err    error
}

// augment asks the backend for n more candidates. It never returns an error:
// timeouts and failures are counted and produce nothing.
func (g *Generator) augment(ctx context.Context, p params.SimulatorParameters, n, have, want int) []candidate.GeneratedPrompt {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	done := make(chan backendResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- backendResult{err: fmt.Errorf("backend panic: %v", r)}
			}
		}()
		drafts, err := g.backend.Generate(ctx, p, n)
		done <- backendResult{drafts: drafts, err: err}
	}()

	var res backendResult
	select {
	case res = <-done:
	case <-ctx.Done():
		res.err = ctx.Err()
	}
	if res.err != nil {
		g.tracker.ExternalFailure()
		g.log.Warn("backend augmentation failed", zap.Int("requested", n), zap.Error(res.err))
		return nil
	}

	var out []candidate.GeneratedPrompt
	for _, d := range res.drafts {
		if len(out) == n {
			break
		}
		text := strings.TrimSpace(d.Text)
		if text == "" || candidate.HasPlaceholder(text) {
			continue
		}
		impact := d.Impact
		if impact <= 0 {
			impact = defaultDraftImpact
		}
		tags := append([]string{"backend"}, d.Tags...)
		out = append(out, candidate.GeneratedPrompt{
			ID:         candidate.NewID(),
			Text:       text,
			Type:       candidate.PromptCreative,
			Tags:       tags,
			Impact:     candidate.Clamp(impact),
			Confidence: BackendConfidence,
			Method:     candidate.MethodLLM,
			Explanation: candidate.Explanation{
				Source:    candidate.SourceBackend,
				Technique: "backend-augmentation",
				Reasoning: fmt.Sprintf("heuristics returned %d of %d; external backend supplied the rest", have, want),
			},
		})
	}
	g.log.Debug("backend augmentation", zap.Int("requested", n), zap.Int("accepted", len(out)))
	return out
}

// #endregion augment

// #region generate-branches

// GenerateBranches cycles the branch techniques for up to count suggestions.
func (g *Generator) GenerateBranches(ctx context.Context, content string, p params.SimulatorParameters, count int) (out []candidate.BranchSuggestion, err error) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("creative branches: panic: %v", r)
		}
		g.tracker.Record(time.Since(start), err)
	}()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ex := lexicon.Extract(content)
	for i := 0; i < count; i++ {
		tech := branchTechniques[i%len(branchTechniques)]
		res, ok := g.filler.FillBranch(tech.template, ex, p, tech.name)
		if !ok {
			g.tracker.Dropped(1)
			continue
		}
		out = append(out, candidate.BranchSuggestion{
			ID:             candidate.NewID(),
			Text:           res.Text,
			BranchType:     tech.branchType,
			Impact:         weighted.Between(g.rng, tech.minImpact, tech.maxImpact),
			OutcomeSummary: tech.outcome,
			Method:         candidate.MethodHybrid,
			Explanation: candidate.Explanation{
				Source:    candidate.SourceTechnique,
				Technique: tech.name,
				Category:  string(tech.branchType),
				Reasoning: fmt.Sprintf("%s technique over %d extracted entities", tech.name, len(ex.Entities)+len(ex.Characters)+len(ex.Locations)),
				Slots:     res.Values(),
			},
		})
	}
	g.log.Debug("creative branches generated", zap.Int("requested", count), zap.Int("returned", len(out)))
	return out, nil
}

// #endregion generate-branches
