package engine

// #region imports
import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/danielpatrickdp/whatif-engine/internal/backend"
	"github.com/danielpatrickdp/whatif-engine/internal/config"
	"github.com/danielpatrickdp/whatif-engine/internal/creative"
	"github.com/danielpatrickdp/whatif-engine/internal/logging"
	"github.com/danielpatrickdp/whatif-engine/internal/logical"
	"github.com/danielpatrickdp/whatif-engine/internal/orchestrator"
	"github.com/danielpatrickdp/whatif-engine/internal/params"
	"github.com/danielpatrickdp/whatif-engine/internal/ranking"
	"github.com/danielpatrickdp/whatif-engine/internal/rules"
	"github.com/danielpatrickdp/whatif-engine/internal/safety"
	"github.com/danielpatrickdp/whatif-engine/internal/slots"
	"github.com/danielpatrickdp/whatif-engine/internal/templates"
	"github.com/danielpatrickdp/whatif-engine/internal/weighted"
	"go.uber.org/zap"
)

// #endregion imports

// #region engine

// Engine owns every long-lived component built from a Config.
type Engine struct {
	cfg      config.Config
	log      *zap.Logger
	orch     *orchestrator.Orchestrator
	registry *templates.Registry
	store    *templates.Store
	client   *backend.Client
	guard    *backend.Guarded
}

// Health is the engine-level health view.
type Health struct {
	Generation orchestrator.HealthReport `json:"generation"`
	Backend    string                    `json:"backend,omitempty"` // breaker state when a backend is configured
}

// #endregion engine

// #region build

// Build wires the engine. log may be nil. Callers must Close the engine.
func Build(cfg config.Config, log *zap.Logger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	e := &Engine{cfg: cfg, log: log}

	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	// Each generator draws from its own stream; the two run concurrently.
	logicalRng := weighted.New(seed)
	creativeRng := weighted.New(seed + 1)

	catalog := rules.DefaultCatalog()
	if cfg.RulesFile != "" {
		c, err := rules.LoadCatalog(cfg.RulesFile)
		if err != nil {
			return nil, fmt.Errorf("load rules: %w", err)
		}
		catalog = c
	}

	if err := e.openRegistry(); err != nil {
		return nil, err
	}

	logicalGen := logical.New(catalog,
		slots.NewFiller(logicalRng, slots.WithLogger(log.Named("slots"))), logicalRng,
		logical.WithTemplates(e.registry),
		logical.WithLogger(log.Named("logical")))

	creativeOpts := []creative.Option{
		creative.WithLogger(log.Named("creative")),
		creative.WithTargetCount(cfg.Creative.TargetCount),
	}
	if cfg.Backend.Enabled {
		client, err := backend.NewClient(cfg.Backend.Addr)
		if err != nil {
			e.Close()
			return nil, fmt.Errorf("connect backend: %w", err)
		}
		e.client = client
		e.guard = backend.NewGuarded(client, backend.GuardSettings{
			Timeout:     cfg.Backend.Timeout,
			MaxFailures: cfg.Backend.BreakerFailures,
			Cooldown:    cfg.Backend.BreakerCooldown,
		}, log.Named("backend"))
		creativeOpts = append(creativeOpts, creative.WithBackend(e.guard, cfg.Backend.Timeout))
	}
	creativeGen := creative.New(
		slots.NewFiller(creativeRng, slots.WithLogger(log.Named("slots"))), creativeRng,
		creativeOpts...)

	ranker := ranking.New(
		ranking.WithWeights(cfg.Ranking),
		ranking.WithLogger(log.Named("ranking")))

	orchOpts := []orchestrator.Option{orchestrator.WithLogger(log.Named("orchestrator"))}
	if cfg.Safety.Enabled {
		orchOpts = append(orchOpts, orchestrator.WithSafetyFilter(
			safety.NewBannedTerms(cfg.Safety.Blocklist, log.Named("safety"))))
	}
	e.orch = orchestrator.New(logicalGen, creativeGen, ranker, orchestrator.Config{
		MaxPrompts:         cfg.Generation.MaxPrompts,
		DiversityThreshold: cfg.Generation.DiversityThreshold,
		RelevanceThreshold: cfg.Generation.RelevanceThreshold,
	}, orchOpts...)

	log.Info("engine ready",
		zap.Int("rules", catalog.Len()),
		zap.Bool("persistent_templates", e.store != nil),
		zap.Bool("backend", cfg.Backend.Enabled))
	return e, nil
}

func (e *Engine) openRegistry() error {
	t := e.cfg.Templates
	opts := []templates.Option{
		templates.WithLogger(e.log.Named("templates")),
		templates.WithRecommendationThresholds(t.ReviewBelow, t.PromoteAbove, t.RecommendMinUses),
	}
	if t.DBPath == "" {
		e.registry = templates.NewRegistry(templates.Defaults(), opts...)
		return nil
	}
	store, err := templates.NewStore(t.DBPath)
	if err != nil {
		return fmt.Errorf("open template store: %w", err)
	}
	reg, err := templates.OpenRegistry(store, templates.Defaults(), opts...)
	if err != nil {
		store.Close()
		return fmt.Errorf("open template registry: %w", err)
	}
	e.store, e.registry = store, reg
	return nil
}

// #endregion build

// #region operations

// GeneratePrompts runs one prompt generation request.
func (e *Engine) GeneratePrompts(ctx context.Context, p params.SimulatorParameters, count int) (orchestrator.PromptResult, error) {
	return e.orch.GeneratePrompts(ctx, p, count)
}

// GenerateBranches runs one branch generation request for a story node.
func (e *Engine) GenerateBranches(ctx context.Context, content string, p params.SimulatorParameters) (orchestrator.BranchResult, error) {
	return e.orch.GenerateBranches(ctx, content, p)
}

// Feedback applies a user reaction to the template that produced a candidate.
func (e *Engine) Feedback(templateID string, fb templates.Feedback) error {
	ok, err := e.registry.UpdateEffectiveness(templateID, fb)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("feedback for %q: %w", templateID, templates.ErrNotFound)
	}
	return nil
}

// ErrNoStore is returned by operations that need the persistent template store.
var ErrNoStore = errors.New("template store not configured")

// FeedbackHistory returns the newest feedback log rows for a template.
func (e *Engine) FeedbackHistory(templateID string, last int) ([]logging.FeedbackEntry, error) {
	if e.store == nil {
		return nil, ErrNoStore
	}
	return e.store.FeedbackHistory(templateID, last)
}

// Prune deactivates low performers using the configured thresholds.
func (e *Engine) Prune() (int, error) {
	return e.registry.Prune(e.cfg.Templates.PruneBelow, e.cfg.Templates.PruneMinUsage)
}

// Registry exposes the template registry for inspection commands.
func (e *Engine) Registry() *templates.Registry {
	return e.registry
}

// Health reports generation health and the backend breaker state.
func (e *Engine) Health() Health {
	h := Health{Generation: e.orch.Health()}
	if e.guard != nil {
		h.Backend = e.guard.State()
	}
	return h
}

// #endregion operations

// #region close

// Close releases the backend connection and the template store.
func (e *Engine) Close() error {
	var errs []error
	if e.client != nil {
		if err := e.client.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close backend: %w", err))
		}
	}
	if e.store != nil {
		if err := e.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close store: %w", err))
		}
	}
	return errors.Join(errs...)
}

// #endregion close
