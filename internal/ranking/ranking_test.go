package ranking

import (
	"testing"

	"github.com/danielpatrickdp/whatif-engine/internal/candidate"
	"github.com/danielpatrickdp/whatif-engine/internal/params"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func prompt(text string, typ candidate.PromptType, impact float64) candidate.GeneratedPrompt {
	return candidate.GeneratedPrompt{
		ID: text, Text: text, Type: typ, Impact: impact, Confidence: 0.8,
		Method:      candidate.MethodRuleBased,
		Explanation: candidate.Explanation{Source: candidate.SourceRule, RuleID: "r"},
	}
}

// #region embedding-tests

func TestEmbed_CountsAndNormalizes(t *testing.T) {
	v := NewVocabulary([]string{"letter", "secret", "door"})
	e := v.Embed("The letter, the LETTERS and a secret.")
	assert.InDelta(t, 2.2360679, e.Magnitude, 1e-6) // sqrt(2^2 + 1^2)
	assert.InDelta(t, 2/2.2360679, e.Vector[0], 1e-6)
	assert.InDelta(t, 1/2.2360679, e.Vector[1], 1e-6)
	assert.Equal(t, 0.0, e.Vector[2])
	assert.InDelta(t, 1.0, norm(e.Vector), 1e-9)
}

func TestEmbed_ZeroVectorUnnormalized(t *testing.T) {
	e := DefaultVocabulary().Embed("xyzzy plugh")
	assert.True(t, e.Zero())
	assert.Equal(t, 0.0, norm(e.Vector))
	assert.Equal(t, 0.0, Cosine(e, e))
}

func TestCosine(t *testing.T) {
	v := DefaultVocabulary()
	a := v.Embed("the letter held a secret")
	b := v.Embed("a secret held the letter")
	c := v.Embed("the dragon guarded the crown in the kingdom")
	assert.InDelta(t, 1.0, Cosine(a, b), 1e-9)
	assert.Equal(t, 0.0, Cosine(a, c))
}

// #endregion embedding-tests

// #region metric-tests

func TestSafety(t *testing.T) {
	r := New()
	assert.Equal(t, 1.0, r.safety("a quiet walk home", false))
	assert.InDelta(t, 0.4, r.safety("blood on the knife, blood everywhere", false), 1e-9)
	assert.InDelta(t, 0.2, r.safety("blood on the knife", true), 1e-9)
	assert.InDelta(t, MinSafety, r.safety("kill murder blood gore torture", false), 1e-9)
	assert.InDelta(t, MinSafety/2, r.safety("kill murder blood gore torture", true), 1e-9)
}

func TestScorePrompts_SingleCandidateNovelty(t *testing.T) {
	r := New()
	got, err := r.ScorePrompts([]candidate.GeneratedPrompt{prompt("What if the letter lied?", candidate.PromptLogical, 0.5)}, params.SimulatorParameters{}, Options{})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 1.0, got[0].Metrics.Novelty)
	assert.Equal(t, 0.0, got[0].Metrics.Relevance)
}

func TestScorePrompts_FinalFormula(t *testing.T) {
	r := New()
	p := params.Normalize(params.SimulatorParameters{Event: "a letter arrives"})
	pr := prompt("What if the letter never arrives?", candidate.PromptTwist, 0.9)
	got, err := r.ScorePrompts([]candidate.GeneratedPrompt{pr}, p, Options{DiversityThreshold: 0.3})
	require.NoError(t, err)
	require.Len(t, got, 1)

	m := got[0].Metrics
	assert.InDelta(t, 0.3, m.DiversityBonus, 1e-9) // twist 0.1 + confidence 0.1 + impact 0.1
	want := (m.Relevance*0.4 + m.Novelty*0.3 + m.Safety*0.2 + m.Impact*0.1) * 1.3
	if want > 1 {
		want = 1
	}
	assert.InDelta(t, want, m.Final, 1e-9)
	assert.Greater(t, m.Relevance, 0.0)
}

func TestScorePrompts_BoundsAndOrder(t *testing.T) {
	r := New()
	p := params.Normalize(params.SimulatorParameters{Genre: "mystery", Event: "a letter arrives"})
	in := []candidate.GeneratedPrompt{
		prompt("What if the detective wrote the letter?", candidate.PromptLogical, 5),
		prompt("What if the manor kept a secret about the murder?", candidate.PromptTwist, 0.9),
		prompt("What if gravity behaved like music in the harbor?", candidate.PromptCreative, -1),
		prompt("What if the ghost was afraid of the night?", candidate.PromptThematic, 0.6),
	}
	got, err := r.ScorePrompts(in, p, Options{DiversityThreshold: 0.3})
	require.NoError(t, err)
	require.NotEmpty(t, got)

	for i, s := range got {
		for _, v := range []float64{s.Metrics.Relevance, s.Metrics.Novelty, s.Metrics.Safety, s.Metrics.Impact, s.Metrics.Final} {
			assert.GreaterOrEqual(t, v, 0.0)
			assert.LessOrEqual(t, v, 1.0)
		}
		assert.LessOrEqual(t, s.Metrics.DiversityBonus, MaxBonus)
		if i > 0 {
			assert.GreaterOrEqual(t, got[i-1].Metrics.Final, s.Metrics.Final)
		}
	}
}

// #endregion metric-tests

// #region diversity-tests

func TestRankPrompts_DiversityFilter(t *testing.T) {
	r := New()
	in := []candidate.GeneratedPrompt{
		prompt("What if the letter held a secret?", candidate.PromptLogical, 0.6),
		prompt("What if a secret was hidden in the letter?", candidate.PromptLogical, 0.5),
		prompt("What if the dragon stole the crown?", candidate.PromptCreative, 0.7),
		prompt("What if the storm reached the harbor at night?", candidate.PromptThematic, 0.7),
	}
	got, err := r.RankPrompts(in, params.SimulatorParameters{}, Options{DiversityThreshold: DefaultPromptDiversity})
	require.NoError(t, err)
	assert.Len(t, got, 3)

	v := DefaultVocabulary()
	for i := range got {
		for j := i + 1; j < len(got); j++ {
			sim := Cosine(v.Embed(got[i].Text), v.Embed(got[j].Text))
			assert.Less(t, sim, 1-DefaultPromptDiversity, "%q vs %q", got[i].Text, got[j].Text)
		}
	}
}

func TestRankPrompts_ReturnsCandidatesUnchanged(t *testing.T) {
	r := New()
	in := []candidate.GeneratedPrompt{prompt("What if the clock ran backwards at the station?", candidate.PromptCreative, 0.7)}
	got, err := r.RankPrompts(in, params.SimulatorParameters{}, Options{DiversityThreshold: 0.3})
	require.NoError(t, err)
	if diff := cmp.Diff(in, got); diff != "" {
		t.Errorf("ranked prompt changed (-want +got):\n%s", diff)
	}
}

func TestRankPrompts_RelevanceThreshold(t *testing.T) {
	r := New()
	in := []candidate.GeneratedPrompt{
		prompt("What if the letter was sent from the future?", candidate.PromptLogical, 0.5),
		prompt("What if the dragon stole the crown?", candidate.PromptCreative, 0.9),
	}
	p := params.Normalize(params.SimulatorParameters{Event: "a letter arrives"})
	got, err := r.RankPrompts(in, p, Options{DiversityThreshold: 0.3, RelevanceThreshold: 0.2})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, in[0].ID, got[0].ID)

	// with no query words the threshold is not applied
	got, err = r.RankPrompts(in, params.SimulatorParameters{}, Options{DiversityThreshold: 0.3, RelevanceThreshold: 0.2})
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestRankPrompts_Empty(t *testing.T) {
	got, err := New().RankPrompts(nil, params.SimulatorParameters{}, Options{})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRankBranches_FixedThreshold(t *testing.T) {
	r := New()
	branch := func(text string, bt candidate.BranchType) candidate.BranchSuggestion {
		return candidate.BranchSuggestion{
			ID: text, Text: text, BranchType: bt, Impact: 0.7,
			Explanation: candidate.Explanation{Source: candidate.SourceTechnique, Technique: "t"},
		}
	}
	in := []candidate.BranchSuggestion{
		branch("Mara learns that the letter was a secret.", candidate.BranchPlotTwist),
		branch("Mara learns the secret of the letter.", candidate.BranchPlotTwist),
		branch("The storm cuts off the harbor before night.", candidate.BranchEscalation),
	}
	got, err := r.ScoreBranches(in, "Mara opened the letter in the library.", params.SimulatorParameters{})
	require.NoError(t, err)
	require.Len(t, got, 2)
	v := DefaultVocabulary()
	sim := Cosine(v.Embed(got[0].Branch.Text), v.Embed(got[1].Branch.Text))
	assert.Less(t, sim, 1-BranchDiversity)
	assert.Equal(t, "healthy", string(r.Health().Status))
}

// #endregion diversity-tests
