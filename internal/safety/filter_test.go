package safety

import (
	"context"
	"testing"

	"github.com/danielpatrickdp/whatif-engine/internal/candidate"
	"github.com/danielpatrickdp/whatif-engine/internal/params"
)

// #region helpers
func withBanned(terms ...string) params.SimulatorParameters {
	return params.SimulatorParameters{Constraints: &params.Constraints{BannedContent: terms}}
}

func prompts(texts ...string) []candidate.GeneratedPrompt {
	out := make([]candidate.GeneratedPrompt, len(texts))
	for i, t := range texts {
		out[i] = candidate.GeneratedPrompt{ID: t, Text: t}
	}
	return out
}

// #endregion helpers

// #region evaluate-tests
func TestEvaluate_NoVetoes(t *testing.T) {
	f := NewBannedTerms(nil, nil)
	d := f.Evaluate("What if the letter arrived early?", withBanned("spiders"))
	if d.Vetoed {
		t.Fatalf("expected keep, got veto: %s", d.Reason)
	}
	if d.Action != "keep" {
		t.Errorf("expected action keep, got %s", d.Action)
	}
}

func TestEvaluate_BannedContentVeto(t *testing.T) {
	f := NewBannedTerms(nil, nil)
	d := f.Evaluate("What if Spiders filled the attic?", withBanned("spiders"))
	if !d.Vetoed {
		t.Fatal("expected veto")
	}
	if d.Action != "drop" {
		t.Errorf("expected action drop, got %s", d.Action)
	}
	if len(d.VetoSignals) != 1 || d.VetoSignals[0].Type != VetoBannedContent {
		t.Errorf("expected one banned_content veto, got %+v", d.VetoSignals)
	}
}

func TestEvaluate_WholeWordsOnly(t *testing.T) {
	f := NewBannedTerms([]string{"war"}, nil)
	d := f.Evaluate("What if the warden was kind?", params.SimulatorParameters{})
	if d.Vetoed {
		t.Fatalf("substring should not veto: %s", d.Reason)
	}
}

func TestEvaluate_MultiWordTerm(t *testing.T) {
	f := NewBannedTerms(nil, nil)
	d := f.Evaluate("What if the haunted house, the one on the hill, woke up?", withBanned("Haunted  House"))
	if !d.Vetoed {
		t.Fatal("expected multi-word veto")
	}
}

func TestEvaluate_BlocklistAndBanned(t *testing.T) {
	f := NewBannedTerms([]string{"gore"}, nil)
	d := f.Evaluate("What if gore and spiders were everywhere?", withBanned("spiders"))
	if len(d.VetoSignals) != 2 {
		t.Fatalf("expected 2 vetoes, got %d", len(d.VetoSignals))
	}
	if d.VetoSignals[1].Type != VetoBlocklist {
		t.Errorf("expected blocklist veto second, got %s", d.VetoSignals[1].Type)
	}
}

// #endregion evaluate-tests

// #region filter-tests
func TestFilterPrompts(t *testing.T) {
	f := NewBannedTerms(nil, nil)
	in := prompts("What if the spiders won?", "What if the river froze?")
	out := f.FilterPrompts(context.Background(), in, withBanned("spiders"))
	if len(out) != 1 || out[0].ID != "What if the river froze?" {
		t.Fatalf("unexpected result: %+v", out)
	}
	if len(in) != 2 || in[0].ID != "What if the spiders won?" {
		t.Error("input slice must not be modified")
	}
}

func TestFilterBranches(t *testing.T) {
	f := NewBannedTerms([]string{"blood"}, nil)
	in := []candidate.BranchSuggestion{{ID: "a", Text: "Blood on the stairs."}, {ID: "b", Text: "A door opens."}}
	out := f.FilterBranches(context.Background(), in, params.SimulatorParameters{})
	if len(out) != 1 || out[0].ID != "b" {
		t.Fatalf("unexpected result: %+v", out)
	}
}

func TestPassThrough(t *testing.T) {
	in := prompts("a", "b")
	out := PassThrough{}.FilterPrompts(context.Background(), in, withBanned("a"))
	if len(out) != 2 {
		t.Fatalf("expected pass-through, got %d", len(out))
	}
}

// #endregion filter-tests

func TestEvaluate_Possessive(t *testing.T) {
	f := NewBannedTerms(nil, nil)
	d := f.Evaluate("What if Mara's brother lied?", withBanned("mara"))
	if !d.Vetoed {
		t.Fatal("possessive form should veto")
	}
}
