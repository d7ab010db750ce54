package engine

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/danielpatrickdp/whatif-engine/internal/candidate"
	"github.com/danielpatrickdp/whatif-engine/internal/config"
	"github.com/danielpatrickdp/whatif-engine/internal/health"
	"github.com/danielpatrickdp/whatif-engine/internal/params"
	"github.com/danielpatrickdp/whatif-engine/internal/templates"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// #region helpers

func testConfig() config.Config {
	cfg := config.Default()
	cfg.Seed = 17
	return cfg
}

func build(t *testing.T, cfg config.Config) *Engine {
	t.Helper()
	e, err := Build(cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = e.Close() })
	return e
}

func mystery() params.SimulatorParameters {
	return params.SimulatorParameters{
		Character: &params.Character{Name: "Mara", Traits: []string{"curious", "stubborn"}},
		Setting:   &params.Setting{Place: "Blackwood Manor", Era: "1920s", Mood: "foggy"},
		Event:     "the letter arrived",
		Genre:     "mystery",
		Tone:      "dark",
	}
}

// #endregion helpers

// #region prompt-tests

func TestEngine_LogicalMysteryPrompts(t *testing.T) {
	e := build(t, testConfig())
	p := mystery()
	p.Mode = params.ModeLogical

	res, err := e.GeneratePrompts(context.Background(), p, 3)
	require.NoError(t, err)
	require.NotEmpty(t, res.Prompts)
	assert.LessOrEqual(t, len(res.Prompts), 3)
	for _, pr := range res.Prompts {
		assert.Equal(t, candidate.PromptLogical, pr.Type)
		assert.False(t, candidate.HasPlaceholder(pr.Text), pr.Text)
		assert.False(t, pr.Explanation.Empty(), "every prompt carries an explanation")
		assert.GreaterOrEqual(t, pr.Impact, 0.0)
		assert.LessOrEqual(t, pr.Impact, 1.0)
	}
}

func TestEngine_BalancedPromptsNeverExceedMax(t *testing.T) {
	cfg := testConfig()
	cfg.Generation.MaxPrompts = 4
	e := build(t, cfg)

	res, err := e.GeneratePrompts(context.Background(), mystery(), 10)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(res.Prompts), 4)
	for _, pr := range res.Prompts {
		assert.False(t, candidate.HasPlaceholder(pr.Text), pr.Text)
	}
}

func TestEngine_BannedContentFiltered(t *testing.T) {
	e := build(t, testConfig())
	p := mystery()
	p.Constraints = &params.Constraints{BannedContent: []string{"Mara"}}

	res, err := e.GeneratePrompts(context.Background(), p, 5)
	require.NoError(t, err)
	for _, pr := range res.Prompts {
		assert.NotContains(t, pr.Text, "Mara")
	}
}

func TestEngine_SeededBalancedRunsAreReproducible(t *testing.T) {
	texts := func() []string {
		e := build(t, testConfig())
		res, err := e.GeneratePrompts(context.Background(), mystery(), 5)
		require.NoError(t, err)
		out := make([]string, 0, len(res.Prompts))
		for _, pr := range res.Prompts {
			out = append(out, pr.Text)
		}
		return out
	}

	want := texts()
	require.NotEmpty(t, want)
	for i := 0; i < 20; i++ {
		assert.Equal(t, want, texts(), "run %d", i)
	}
}

// #endregion prompt-tests

// #region branch-tests

func TestEngine_HighDensityBranches(t *testing.T) {
	e := build(t, testConfig())
	p := mystery()
	p.BranchDensity = params.DensityHigh

	res, err := e.GenerateBranches(context.Background(),
		"Mara found the key beneath the stairs and hid it from the butler.", p)
	require.NoError(t, err)
	require.NotEmpty(t, res.Branches)
	assert.LessOrEqual(t, len(res.Branches), 6)
	for _, b := range res.Branches {
		assert.True(t, b.BranchType.Valid(), "unexpected branch type %q", b.BranchType)
		assert.False(t, candidate.HasPlaceholder(b.Text), b.Text)
		assert.NotEmpty(t, b.OutcomeSummary)
		assert.False(t, b.Explanation.Empty())
	}
}

// #endregion branch-tests

// #region template-tests

func TestEngine_FeedbackInMemory(t *testing.T) {
	e := build(t, testConfig())

	require.NoError(t, e.Feedback("tpl-place-memory", templates.Feedback{Accepted: true}))
	tpl, ok := e.Registry().Get("tpl-place-memory")
	require.True(t, ok)
	assert.Equal(t, 1, tpl.UsageCount)

	err := e.Feedback("missing", templates.Feedback{Accepted: true})
	assert.ErrorIs(t, err, templates.ErrNotFound)
}

func TestEngine_FeedbackPersistsAcrossBuilds(t *testing.T) {
	cfg := testConfig()
	cfg.Templates.DBPath = filepath.Join(t.TempDir(), "whatif.db")

	first, err := Build(cfg, nil)
	require.NoError(t, err)
	require.NoError(t, first.Feedback("tpl-letter-sender", templates.Feedback{Accepted: true, Rating: 5}))
	require.NoError(t, first.Close())

	second := build(t, cfg)
	tpl, ok := second.Registry().Get("tpl-letter-sender")
	require.True(t, ok)
	assert.Equal(t, 1, tpl.UsageCount)
	assert.Greater(t, tpl.Effectiveness, templates.DefaultEffectiveness)

	history, err := second.FeedbackHistory("tpl-letter-sender", 10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, 5, history[0].Rating)
}

func TestEngine_FeedbackHistoryNeedsStore(t *testing.T) {
	e := build(t, testConfig())
	_, err := e.FeedbackHistory("tpl-letter-sender", 1)
	assert.ErrorIs(t, err, ErrNoStore)
}

func TestEngine_Prune(t *testing.T) {
	cfg := testConfig()
	cfg.Templates.PruneMinUsage = 1
	cfg.Templates.PruneBelow = 0.5
	e := build(t, cfg)

	require.NoError(t, e.Feedback("tpl-role-mentor", templates.Feedback{Accepted: false}))
	n, err := e.Prune()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	tpl, _ := e.Registry().Get("tpl-role-mentor")
	assert.False(t, tpl.Active)
}

// #endregion template-tests

// #region build-tests

func TestBuild_InvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Generation.MaxPrompts = 0
	_, err := Build(cfg, nil)
	assert.ErrorIs(t, err, config.ErrInvalid)
}

func TestBuild_MissingRulesFile(t *testing.T) {
	cfg := testConfig()
	cfg.RulesFile = filepath.Join(t.TempDir(), "nope.yaml")
	_, err := Build(cfg, nil)
	assert.Error(t, err)
}

func TestBuild_BackendReportsBreakerState(t *testing.T) {
	cfg := testConfig()
	cfg.Backend.Enabled = true
	cfg.Backend.Addr = "127.0.0.1:1"
	e := build(t, cfg)

	h := e.Health()
	assert.Equal(t, "closed", h.Backend)
	assert.Equal(t, health.StatusHealthy, h.Generation.Status)
}

// #endregion build-tests
