package safety

import (
	"context"
	"fmt"
	"strings"

	"github.com/danielpatrickdp/whatif-engine/internal/candidate"
	"github.com/danielpatrickdp/whatif-engine/internal/lexicon"
	"github.com/danielpatrickdp/whatif-engine/internal/params"
	"go.uber.org/zap"
)

// #region filter
// Filter is the moderation hook applied to merged candidates before ranking.
type Filter interface {
	FilterPrompts(ctx context.Context, prompts []candidate.GeneratedPrompt, p params.SimulatorParameters) []candidate.GeneratedPrompt
	FilterBranches(ctx context.Context, branches []candidate.BranchSuggestion, p params.SimulatorParameters) []candidate.BranchSuggestion
}

// PassThrough keeps every candidate.
type PassThrough struct{}

// FilterPrompts returns prompts unchanged.
func (PassThrough) FilterPrompts(_ context.Context, prompts []candidate.GeneratedPrompt, _ params.SimulatorParameters) []candidate.GeneratedPrompt {
	return prompts
}

// FilterBranches returns branches unchanged.
func (PassThrough) FilterBranches(_ context.Context, branches []candidate.BranchSuggestion, _ params.SimulatorParameters) []candidate.BranchSuggestion {
	return branches
}

// #endregion filter

// #region banned-terms
// BannedTerms drops candidates that contain a request's banned content or a
// configured blocklist term. Terms match as whole words or word sequences,
// case-insensitively.
type BannedTerms struct {
	blocklist []string
	log       *zap.Logger
}

// NewBannedTerms creates a filter with an optional static blocklist.
func NewBannedTerms(blocklist []string, log *zap.Logger) *BannedTerms {
	if log == nil {
		log = zap.NewNop()
	}
	return &BannedTerms{blocklist: normalizeTerms(blocklist), log: log}
}

// Evaluate checks one text against the banned content in p and the blocklist.
func (b *BannedTerms) Evaluate(text string, p params.SimulatorParameters) Decision {
	padded := " " + strings.Join(matchWords(text), " ") + " "

	var vetoes []VetoSignal
	for _, term := range normalizeTerms(p.BannedContent()) {
		if strings.Contains(padded, " "+term+" ") {
			vetoes = append(vetoes, VetoSignal{
				Type:   VetoBannedContent,
				Term:   term,
				Reason: fmt.Sprintf("contains banned content %q", term),
			})
		}
	}
	for _, term := range b.blocklist {
		if strings.Contains(padded, " "+term+" ") {
			vetoes = append(vetoes, VetoSignal{
				Type:   VetoBlocklist,
				Term:   term,
				Reason: fmt.Sprintf("contains blocked term %q", term),
			})
		}
	}

	if len(vetoes) > 0 {
		return Decision{
			Action:      "drop",
			Reason:      fmt.Sprintf("hard veto: %s", vetoes[0].Reason),
			Vetoed:      true,
			VetoSignals: vetoes,
		}
	}
	return Decision{Action: "keep", Reason: "no banned terms"}
}

// FilterPrompts drops vetoed prompts.
func (b *BannedTerms) FilterPrompts(_ context.Context, prompts []candidate.GeneratedPrompt, p params.SimulatorParameters) []candidate.GeneratedPrompt {
	out := prompts[:0:0]
	for _, pr := range prompts {
		if d := b.Evaluate(pr.Text, p); d.Vetoed {
			b.log.Debug("prompt vetoed", zap.String("id", pr.ID), zap.String("reason", d.Reason))
			continue
		}
		out = append(out, pr)
	}
	return out
}

// FilterBranches drops vetoed branch suggestions.
func (b *BannedTerms) FilterBranches(_ context.Context, branches []candidate.BranchSuggestion, p params.SimulatorParameters) []candidate.BranchSuggestion {
	out := branches[:0:0]
	for _, br := range branches {
		if d := b.Evaluate(br.Text, p); d.Vetoed {
			b.log.Debug("branch vetoed", zap.String("id", br.ID), zap.String("reason", d.Reason))
			continue
		}
		out = append(out, br)
	}
	return out
}

// #endregion banned-terms

// #region helpers
// normalizeTerms lowercases terms and collapses them to single-spaced word runs.
func normalizeTerms(terms []string) []string {
	var out []string
	for _, t := range terms {
		if w := strings.Join(matchWords(t), " "); w != "" {
			out = append(out, w)
		}
	}
	return out
}

// matchWords lowercases text into words with quotes and possessive "'s" removed.
func matchWords(text string) []string {
	words := lexicon.Words(text)
	out := words[:0]
	for _, w := range words {
		w = strings.TrimSuffix(strings.Trim(w, "'"), "'s")
		if w != "" {
			out = append(out, w)
		}
	}
	return out
}

// #endregion helpers
