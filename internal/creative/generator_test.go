package creative

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/danielpatrickdp/whatif-engine/internal/candidate"
	"github.com/danielpatrickdp/whatif-engine/internal/params"
	"github.com/danielpatrickdp/whatif-engine/internal/slots"
	"github.com/danielpatrickdp/whatif-engine/internal/weighted"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

type stubBackend struct {
	drafts []candidate.Draft
	err    error
	block  bool
	calls  int
	asked  int
}

func (s *stubBackend) Generate(ctx context.Context, _ params.SimulatorParameters, n int) ([]candidate.Draft, error) {
	s.calls++
	s.asked = n
	if s.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return s.drafts, s.err
}

func newGenerator(opts ...Option) *Generator {
	rng := weighted.New(11)
	return New(slots.NewFiller(rng), rng, opts...)
}

func fullParams() params.SimulatorParameters {
	return params.Normalize(params.SimulatorParameters{
		Character: &params.Character{Name: "Mara", Traits: []string{"Brave"}},
		Setting:   &params.Setting{Place: "Blackwood"},
		Event:     "a letter arrives",
		Genre:     "whodunit",
		Mode:      params.ModeCreative,
	})
}

func noTraitParams() params.SimulatorParameters {
	p := fullParams()
	p.Character = &params.Character{Name: "Mara"}
	return p
}

func techniqueRange(name string) (float64, float64) {
	for _, t := range promptTechniques {
		if t.name == name {
			return t.minImpact, t.maxImpact
		}
	}
	return 0, 0
}

// #region prompt-tests

func TestGeneratePrompts_CyclesTechniques(t *testing.T) {
	g := newGenerator()
	got, err := g.GeneratePrompts(context.Background(), fullParams(), 4)
	require.NoError(t, err)
	require.Len(t, got, 4)

	wantTypes := []candidate.PromptType{
		candidate.PromptCreative, candidate.PromptTwist, candidate.PromptCharacter, candidate.PromptThematic,
	}
	for i, pr := range got {
		assert.Equal(t, wantTypes[i], pr.Type)
		assert.Equal(t, promptTechniques[i].name, pr.Explanation.Technique)
		assert.False(t, candidate.HasPlaceholder(pr.Text), pr.Text)
		assert.False(t, pr.Explanation.Empty())

		lo, hi := techniqueRange(pr.Explanation.Technique)
		assert.GreaterOrEqual(t, pr.Impact, lo)
		assert.Less(t, pr.Impact, hi)
	}
}

func TestGeneratePrompts_AntiTemplateSubstitutesEvent(t *testing.T) {
	g := newGenerator()
	got, err := g.GeneratePrompts(context.Background(), fullParams(), 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "a letter arrives", got[1].Explanation.Slots["event"])
	assert.Contains(t, got[1].Text, "a letter arrives")
}

func TestGeneratePrompts_CharacterConflictNeedsTrait(t *testing.T) {
	g := newGenerator()
	got, err := g.GeneratePrompts(context.Background(), noTraitParams(), 4)
	require.NoError(t, err)
	assert.Len(t, got, 3)
	for _, pr := range got {
		assert.NotEqual(t, candidate.PromptCharacter, pr.Type)
	}
	assert.Equal(t, int64(1), g.Health().Dropped)
}

func TestGeneratePrompts_CharacterConflictUsesOpposite(t *testing.T) {
	g := newGenerator()
	got, err := g.GeneratePrompts(context.Background(), fullParams(), 3)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "brave", got[2].Explanation.Slots["trait"])
	assert.Equal(t, "cowardly", got[2].Explanation.Slots["opposite_trait"])
}

func TestGeneratePrompts_AssociativeChainFollowsTable(t *testing.T) {
	for seed := uint64(1); seed <= 10; seed++ {
		rng := weighted.New(seed)
		_, ctx, ok := associativeChain(rng, fullParams())
		require.True(t, ok)
		links, known := associations[ctx["seed"]]
		require.True(t, known, "seed %q not in table", ctx["seed"])
		assert.Contains(t, links, ctx["link"])
		assert.NotEmpty(t, ctx["end"])
	}
}

// #endregion prompt-tests

// #region augmentation-tests

func TestGeneratePrompts_NoBackendNoAugmentation(t *testing.T) {
	g := newGenerator()
	got, err := g.GeneratePrompts(context.Background(), noTraitParams(), 4)
	require.NoError(t, err)
	assert.Len(t, got, 3)
	assert.Equal(t, int64(0), g.Health().ExternalFailures)
}

func TestGeneratePrompts_BackendFillsGap(t *testing.T) {
	b := &stubBackend{drafts: []candidate.Draft{
		{Text: "What if {unfilled} stayed?"},
		{Text: "  What if the harbor kept a diary?  ", Impact: 0.9, Tags: []string{"sea"}},
		{Text: "What if the letters wrote back?"},
	}}
	g := newGenerator(WithBackend(b, time.Second))

	got, err := g.GeneratePrompts(context.Background(), noTraitParams(), 4)
	require.NoError(t, err)
	require.Len(t, got, 4)
	assert.Equal(t, 1, b.calls)
	assert.Equal(t, 1, b.asked)

	last := got[3]
	assert.Equal(t, "What if the harbor kept a diary?", last.Text)
	assert.Equal(t, candidate.MethodLLM, last.Method)
	assert.Equal(t, candidate.SourceBackend, last.Explanation.Source)
	assert.Equal(t, 0.9, last.Impact)
	assert.Equal(t, []string{"backend", "sea"}, last.Tags)
}

func TestGeneratePrompts_BackendSkippedWhenCountMet(t *testing.T) {
	b := &stubBackend{}
	g := newGenerator(WithBackend(b, time.Second))
	got, err := g.GeneratePrompts(context.Background(), fullParams(), 4)
	require.NoError(t, err)
	assert.Len(t, got, 4)
	assert.Equal(t, 0, b.calls)
}

func TestGeneratePrompts_TargetCountTopsUpPastRequest(t *testing.T) {
	b := &stubBackend{drafts: []candidate.Draft{
		{Text: "What if the lighthouse forgot the sea?"},
		{Text: "What if the fog kept the letters?"},
		{Text: "What if the manor had a twin?"},
	}}
	g := newGenerator(WithBackend(b, time.Second), WithTargetCount(4))

	got, err := g.GeneratePrompts(context.Background(), fullParams(), 2)
	require.NoError(t, err)
	require.Len(t, got, 4)
	assert.Equal(t, 1, b.calls)
	assert.Equal(t, 2, b.asked)
	assert.Equal(t, candidate.MethodLLM, got[2].Method)
	assert.Contains(t, got[3].Explanation.Reasoning, "returned 2 of 4")
}

func TestGeneratePrompts_TargetBelowCountIgnored(t *testing.T) {
	b := &stubBackend{}
	g := newGenerator(WithBackend(b, time.Second), WithTargetCount(1))

	got, err := g.GeneratePrompts(context.Background(), fullParams(), 4)
	require.NoError(t, err)
	assert.Len(t, got, 4)
	assert.Equal(t, 0, b.calls)
}

func TestGeneratePrompts_BackendFailureDegrades(t *testing.T) {
	b := &stubBackend{err: errors.New("connection refused")}
	g := newGenerator(WithBackend(b, time.Second))

	got, err := g.GeneratePrompts(context.Background(), noTraitParams(), 4)
	require.NoError(t, err)
	assert.Len(t, got, 3)
	assert.Equal(t, int64(1), g.Health().ExternalFailures)
}

func TestGeneratePrompts_BackendTimeoutDegrades(t *testing.T) {
	defer goleak.VerifyNone(t)

	b := &stubBackend{block: true}
	g := newGenerator(WithBackend(b, 20*time.Millisecond))

	got, err := g.GeneratePrompts(context.Background(), noTraitParams(), 4)
	require.NoError(t, err)
	assert.Len(t, got, 3)
	assert.Equal(t, int64(1), g.Health().ExternalFailures)
}

// #endregion augmentation-tests

// #region branch-tests

func TestGenerateBranches_FixedTypeMapping(t *testing.T) {
	g := newGenerator()
	content := "Mara opened the letter in the kitchen and ran to find the detective."
	got, err := g.GenerateBranches(context.Background(), content, fullParams(), 5)
	require.NoError(t, err)
	require.Len(t, got, 5)

	want := map[string]candidate.BranchType{
		"unexpected-alliance": candidate.BranchDeEscalation,
		"hidden-motive":       candidate.BranchPlotTwist,
		"moral-inversion":     candidate.BranchMoralDilemma,
		"time-pressure":       candidate.BranchEscalation,
		"perspective-shift":   candidate.BranchCharacterDriven,
	}
	for i, b := range got {
		tech := branchTechniques[i]
		assert.Equal(t, want[tech.name], b.BranchType)
		assert.GreaterOrEqual(t, b.Impact, tech.minImpact)
		assert.Less(t, b.Impact, tech.maxImpact)
		assert.False(t, candidate.HasPlaceholder(b.Text), b.Text)
		assert.True(t, strings.HasSuffix(b.Text, "."), b.Text)
		assert.Equal(t, candidate.MethodHybrid, b.Method)
	}
}

// #endregion branch-tests
