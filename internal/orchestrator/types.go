package orchestrator

import (
	"context"
	"errors"

	"github.com/danielpatrickdp/whatif-engine/internal/candidate"
	"github.com/danielpatrickdp/whatif-engine/internal/health"
	"github.com/danielpatrickdp/whatif-engine/internal/params"
	"github.com/danielpatrickdp/whatif-engine/internal/ranking"
)

// #region errors

// ErrGenerationFailed marks an internal fault in a generator or ranking pass.
// It is the only failure surfaced to callers; no partial result is returned.
var ErrGenerationFailed = errors.New("generation failed")

// #endregion

// #region collaborators

// Generator is one candidate source (logical or creative).
type Generator interface {
	GeneratePrompts(ctx context.Context, p params.SimulatorParameters, count int) ([]candidate.GeneratedPrompt, error)
	GenerateBranches(ctx context.Context, content string, p params.SimulatorParameters, count int) ([]candidate.BranchSuggestion, error)
	Health() health.Snapshot
}

// Ranker orders and diversity-filters merged candidates.
type Ranker interface {
	RankPrompts(prompts []candidate.GeneratedPrompt, p params.SimulatorParameters, opts ranking.Options) ([]candidate.GeneratedPrompt, error)
	RankBranches(branches []candidate.BranchSuggestion, content string, p params.SimulatorParameters) ([]candidate.BranchSuggestion, error)
	Health() health.Snapshot
}

// #endregion

// #region config

// Config bounds a single generation call.
type Config struct {
	MaxPrompts         int
	DiversityThreshold float64
	RelevanceThreshold float64
}

// DefaultConfig returns max 5 prompts, diversity 0.3, no relevance floor.
func DefaultConfig() Config {
	return Config{
		MaxPrompts:         5,
		DiversityThreshold: ranking.DefaultPromptDiversity,
		RelevanceThreshold: 0,
	}
}

// #endregion

// #region results

// Split is how many candidates were requested from each generator.
type Split struct {
	Logical  int `json:"logical"`
	Creative int `json:"creative"`
}

// Total is Logical + Creative.
func (s Split) Total() int {
	return s.Logical + s.Creative
}

// PromptResult is the outcome of one prompt generation call.
type PromptResult struct {
	Prompts   []candidate.GeneratedPrompt `json:"prompts"`
	Requested Split                       `json:"requested"`
	Generated int                         `json:"generated"`
	Health    HealthReport                `json:"health"`
}

// BranchResult is the outcome of one branch generation call.
type BranchResult struct {
	Branches  []candidate.BranchSuggestion `json:"branches"`
	Requested Split                        `json:"requested"`
	Generated int                          `json:"generated"`
	Health    HealthReport                 `json:"health"`
}

// HealthReport aggregates the component snapshots.
type HealthReport struct {
	Status   health.Status   `json:"status"`
	Logical  health.Snapshot `json:"logical"`
	Creative health.Snapshot `json:"creative"`
	Ranking  health.Snapshot `json:"ranking"`
}

// #endregion
