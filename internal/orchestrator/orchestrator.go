package orchestrator

// #region imports
import (
	"context"
	"fmt"

	"github.com/danielpatrickdp/whatif-engine/internal/candidate"
	"github.com/danielpatrickdp/whatif-engine/internal/health"
	"github.com/danielpatrickdp/whatif-engine/internal/params"
	"github.com/danielpatrickdp/whatif-engine/internal/ranking"
	"github.com/danielpatrickdp/whatif-engine/internal/safety"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// #endregion

// #region orchestrator-struct

const tracerName = "github.com/danielpatrickdp/whatif-engine/internal/orchestrator"

// Orchestrator is the stateless top-level coordinator: it splits a request
// between the generators, merges, filters, ranks and truncates.
type Orchestrator struct {
	logical  Generator
	creative Generator
	ranker   Ranker
	filter   safety.Filter
	cfg      Config
	log      *zap.Logger
	tracer   trace.Tracer
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithSafetyFilter replaces the pass-through moderation hook.
func WithSafetyFilter(f safety.Filter) Option {
	return func(o *Orchestrator) {
		if f != nil {
			o.filter = f
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(log *zap.Logger) Option {
	return func(o *Orchestrator) {
		if log != nil {
			o.log = log
		}
	}
}

// WithTracer overrides the global otel tracer.
func WithTracer(t trace.Tracer) Option {
	return func(o *Orchestrator) { o.tracer = t }
}

// #endregion

// #region constructor

// New creates a fully wired orchestrator.
func New(logical, creative Generator, ranker Ranker, cfg Config, opts ...Option) *Orchestrator {
	if cfg.MaxPrompts <= 0 {
		cfg.MaxPrompts = DefaultConfig().MaxPrompts
	}
	o := &Orchestrator{
		logical:  logical,
		creative: creative,
		ranker:   ranker,
		filter:   safety.PassThrough{},
		cfg:      cfg,
		log:      zap.NewNop(),
		tracer:   otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// #endregion

// #region split

// SplitCounts divides total between the generators by mode: logical and
// creative take everything, balanced gives ceil(60%) to logical.
func SplitCounts(mode params.Mode, total int) Split {
	if total <= 0 {
		return Split{}
	}
	switch mode {
	case params.ModeLogical:
		return Split{Logical: total}
	case params.ModeCreative:
		return Split{Creative: total}
	default:
		logical := ceilSixtyPercent(total)
		return Split{Logical: logical, Creative: total - logical}
	}
}

// BranchCounts maps density to 2/4/6 suggestions with a ceil(60%) logical share.
// High density is 4 logical and 2 creative, not an even 3/3.
func BranchCounts(density params.Density) Split {
	total := 4
	switch density {
	case params.DensityLow:
		total = 2
	case params.DensityHigh:
		total = 6
	}
	logical := ceilSixtyPercent(total)
	return Split{Logical: logical, Creative: total - logical}
}

func ceilSixtyPercent(n int) int {
	return (n*6 + 9) / 10
}

// #endregion

// #region generate-prompts

// GeneratePrompts produces up to count ranked prompts (count <= 0 means the
// configured maximum). The result never exceeds the configured maximum.
func (o *Orchestrator) GeneratePrompts(ctx context.Context, p params.SimulatorParameters, count int) (res PromptResult, err error) {
	ctx, span := o.tracer.Start(ctx, "orchestrator.GeneratePrompts")
	defer span.End()
	defer o.recoverInto(&err, span)

	p = params.Normalize(p)
	if count <= 0 {
		count = o.cfg.MaxPrompts
	}
	split := SplitCounts(p.Mode, count)
	span.SetAttributes(
		attribute.String("mode", string(p.Mode)),
		attribute.Int("logical", split.Logical),
		attribute.Int("creative", split.Creative),
	)

	var logicalOut, creativeOut []candidate.GeneratedPrompt
	g, gctx := errgroup.WithContext(ctx)
	if split.Logical > 0 {
		g.Go(guarded("logical generator", func() error {
			out, err := o.logical.GeneratePrompts(gctx, p, split.Logical)
			if err != nil {
				return fmt.Errorf("logical generator: %w", err)
			}
			logicalOut = out
			return nil
		}))
	}
	if split.Creative > 0 {
		g.Go(guarded("creative generator", func() error {
			out, err := o.creative.GeneratePrompts(gctx, p, split.Creative)
			if err != nil {
				return fmt.Errorf("creative generator: %w", err)
			}
			creativeOut = out
			return nil
		}))
	}
	if err := g.Wait(); err != nil {
		return PromptResult{}, o.fail(span, err)
	}

	merged := append(logicalOut, creativeOut...)
	filtered := o.filter.FilterPrompts(ctx, merged, p)
	ranked, err := o.ranker.RankPrompts(filtered, p, ranking.Options{
		DiversityThreshold: o.cfg.DiversityThreshold,
		RelevanceThreshold: o.cfg.RelevanceThreshold,
	})
	if err != nil {
		return PromptResult{}, o.fail(span, fmt.Errorf("ranking: %w", err))
	}

	limit := min(count, o.cfg.MaxPrompts)
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	span.SetAttributes(attribute.Int("returned", len(ranked)))
	o.log.Info("prompts generated",
		zap.String("mode", string(p.Mode)),
		zap.Int("requested", count),
		zap.Int("generated", len(merged)),
		zap.Int("filtered", len(merged)-len(filtered)),
		zap.Int("returned", len(ranked)))

	return PromptResult{
		Prompts:   ranked,
		Requested: split,
		Generated: len(merged),
		Health:    o.Health(),
	}, nil
}

// #endregion

// #region generate-branches

// GenerateBranches produces ranked branch suggestions for a story node with
// the count fixed by the parameters' branch density.
func (o *Orchestrator) GenerateBranches(ctx context.Context, content string, p params.SimulatorParameters) (res BranchResult, err error) {
	ctx, span := o.tracer.Start(ctx, "orchestrator.GenerateBranches")
	defer span.End()
	defer o.recoverInto(&err, span)

	p = params.Normalize(p)
	split := BranchCounts(p.BranchDensity)
	span.SetAttributes(
		attribute.String("density", string(p.BranchDensity)),
		attribute.Int("logical", split.Logical),
		attribute.Int("creative", split.Creative),
	)

	var logicalOut, creativeOut []candidate.BranchSuggestion
	g, gctx := errgroup.WithContext(ctx)
	g.Go(guarded("logical generator", func() error {
		out, err := o.logical.GenerateBranches(gctx, content, p, split.Logical)
		if err != nil {
			return fmt.Errorf("logical generator: %w", err)
		}
		logicalOut = out
		return nil
	}))
	g.Go(guarded("creative generator", func() error {
		out, err := o.creative.GenerateBranches(gctx, content, p, split.Creative)
		if err != nil {
			return fmt.Errorf("creative generator: %w", err)
		}
		creativeOut = out
		return nil
	}))
	if err := g.Wait(); err != nil {
		return BranchResult{}, o.fail(span, err)
	}

	merged := append(logicalOut, creativeOut...)
	filtered := o.filter.FilterBranches(ctx, merged, p)
	ranked, err := o.ranker.RankBranches(filtered, content, p)
	if err != nil {
		return BranchResult{}, o.fail(span, fmt.Errorf("ranking: %w", err))
	}
	if len(ranked) > split.Total() {
		ranked = ranked[:split.Total()]
	}
	span.SetAttributes(attribute.Int("returned", len(ranked)))
	o.log.Info("branches generated",
		zap.String("density", string(p.BranchDensity)),
		zap.Int("generated", len(merged)),
		zap.Int("returned", len(ranked)))

	return BranchResult{
		Branches:  ranked,
		Requested: split,
		Generated: len(merged),
		Health:    o.Health(),
	}, nil
}

// #endregion

// #region health

// Health aggregates the logical, creative and ranking snapshots.
func (o *Orchestrator) Health() HealthReport {
	r := HealthReport{
		Logical:  o.logical.Health(),
		Creative: o.creative.Health(),
		Ranking:  o.ranker.Health(),
	}
	r.Status = health.Aggregate(r.Logical.Status, r.Creative.Status, r.Ranking.Status)
	return r
}

// #endregion

// #region failure

func (o *Orchestrator) fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	o.log.Error("generation failed", zap.Error(err))
	return fmt.Errorf("%w: %w", ErrGenerationFailed, err)
}

// guarded turns a panic inside an errgroup task into an error.
func guarded(name string, fn func() error) func() error {
	return func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("%s: panic: %v", name, r)
			}
		}()
		return fn()
	}
}

// recoverInto converts a panic in the pipeline into ErrGenerationFailed.
func (o *Orchestrator) recoverInto(err *error, span trace.Span) {
	if r := recover(); r != nil {
		*err = o.fail(span, fmt.Errorf("panic: %v", r))
	}
}

// #endregion
