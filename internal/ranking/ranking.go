package ranking

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/danielpatrickdp/whatif-engine/internal/candidate"
	"github.com/danielpatrickdp/whatif-engine/internal/health"
	"github.com/danielpatrickdp/whatif-engine/internal/lexicon"
	"github.com/danielpatrickdp/whatif-engine/internal/params"
	"go.uber.org/zap"
)

// #region config

// Weights combine the four metrics into a final score.
type Weights struct {
	Relevance float64 `yaml:"relevance" json:"relevance"`
	Novelty   float64 `yaml:"novelty" json:"novelty"`
	Safety    float64 `yaml:"safety" json:"safety"`
	Impact    float64 `yaml:"impact" json:"impact"`
}

// DefaultWeights returns Wr=0.4, Wn=0.3, Ws=0.2, Wi=0.1.
func DefaultWeights() Weights {
	return Weights{Relevance: 0.4, Novelty: 0.3, Safety: 0.2, Impact: 0.1}
}

// Options tune a single prompt ranking call.
type Options struct {
	DiversityThreshold float64 // kept candidates must have similarity < 1 - threshold
	RelevanceThreshold float64 // applied only when the query has vocabulary words
}

// Defaults for diversity filtering.
const (
	DefaultPromptDiversity = 0.3
	BranchDiversity        = 0.4
)

// Safety scoring constants.
const (
	UnsafePenalty = 0.3
	MinSafety     = 0.1
	MaxBonus      = 0.3
)

// defaultUnsafeTerms are matched as whole words.
var defaultUnsafeTerms = []string{
	"kill", "killed", "killing", "murder", "murdered", "blood", "bloody", "gore",
	"torture", "suicide", "weapon", "gun", "knife", "corpse", "drugs", "abuse", "violence",
}

// #endregion config

// #region metrics

// Metrics are the transient per-candidate ranking scores, all in [0, 1].
type Metrics struct {
	Relevance      float64 `json:"relevance"`
	Novelty        float64 `json:"novelty"`
	Safety         float64 `json:"safety"`
	Impact         float64 `json:"impact"`
	DiversityBonus float64 `json:"diversity_bonus"`
	Final          float64 `json:"final"`
}

// ScoredPrompt pairs a kept prompt with its metrics.
type ScoredPrompt struct {
	Prompt  candidate.GeneratedPrompt `json:"prompt"`
	Metrics Metrics                   `json:"metrics"`
}

// ScoredBranch pairs a kept branch suggestion with its metrics.
type ScoredBranch struct {
	Branch  candidate.BranchSuggestion `json:"branch"`
	Metrics Metrics                    `json:"metrics"`
}

// #endregion metrics

// #region ranker

// Ranker scores, orders and diversity-filters candidates. Embeddings are
// rebuilt per call and never cached.
type Ranker struct {
	vocab   *Vocabulary
	weights Weights
	unsafe  map[string]bool
	tracker health.Tracker
	log     *zap.Logger
}

// Option configures a Ranker.
type Option func(*Ranker)

// WithWeights overrides the default metric weights.
func WithWeights(w Weights) Option {
	return func(r *Ranker) { r.weights = w }
}

// WithVocabulary overrides the default vocabulary.
func WithVocabulary(v *Vocabulary) Option {
	return func(r *Ranker) { r.vocab = v }
}

// WithUnsafeTerms replaces the unsafe keyword list.
func WithUnsafeTerms(terms []string) Option {
	return func(r *Ranker) { r.unsafe = wordSet(terms) }
}

// WithLogger attaches a logger.
func WithLogger(log *zap.Logger) Option {
	return func(r *Ranker) {
		if log != nil {
			r.log = log
		}
	}
}

// New creates a Ranker with the default vocabulary and weights.
func New(opts ...Option) *Ranker {
	r := &Ranker{
		vocab:   DefaultVocabulary(),
		weights: DefaultWeights(),
		unsafe:  wordSet(defaultUnsafeTerms),
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Health returns the ranker's running health snapshot.
func (r *Ranker) Health() health.Snapshot {
	return r.tracker.Snapshot()
}

// #endregion ranker

// #region rank-prompts

// RankPrompts returns prompts ordered by final score with near-duplicates
// removed. Ranking fields are not carried on the returned values.
func (r *Ranker) RankPrompts(prompts []candidate.GeneratedPrompt, p params.SimulatorParameters, opts Options) ([]candidate.GeneratedPrompt, error) {
	scored, err := r.ScorePrompts(prompts, p, opts)
	if err != nil {
		return nil, err
	}
	out := make([]candidate.GeneratedPrompt, len(scored))
	for i, s := range scored {
		out[i] = s.Prompt
	}
	return out, nil
}

// ScorePrompts is RankPrompts with the metrics of every kept prompt attached.
func (r *Ranker) ScorePrompts(prompts []candidate.GeneratedPrompt, p params.SimulatorParameters, opts Options) (out []ScoredPrompt, err error) {
	start := time.Now()
	defer func() {
		if rec := recover(); rec != nil {
			out, err = nil, fmt.Errorf("rank prompts: panic: %v", rec)
		}
		r.tracker.Record(time.Since(start), err)
	}()

	items := make([]item, len(prompts))
	for i, pr := range prompts {
		items[i] = item{
			emb:    r.vocab.Embed(pr.Text),
			impact: pr.Impact,
			bonus:  promptBonus(pr),
		}
	}
	kept := r.rank(items, r.vocab.Embed(p.QueryText()), p.IsYoungAudience(), opts)
	out = make([]ScoredPrompt, len(kept))
	for i, k := range kept {
		out[i] = ScoredPrompt{Prompt: prompts[k.idx], Metrics: k.metrics}
	}
	r.log.Debug("prompts ranked", zap.Int("in", len(prompts)), zap.Int("kept", len(out)))
	return out, nil
}

// promptBonus rewards surprising types and confident, high-impact prompts.
func promptBonus(pr candidate.GeneratedPrompt) float64 {
	var b float64
	switch pr.Type {
	case candidate.PromptTwist:
		b += 0.1
	case candidate.PromptCharacter, candidate.PromptThematic:
		b += 0.08
	case candidate.PromptCreative:
		b += 0.06
	}
	if pr.Confidence >= 0.7 {
		b += 0.1
	}
	if pr.Impact >= 0.8 {
		b += 0.1
	}
	return math.Min(MaxBonus, b)
}

// #endregion rank-prompts

// #region rank-branches

// RankBranches orders branch suggestions against the node content with the
// fixed branch diversity threshold.
func (r *Ranker) RankBranches(branches []candidate.BranchSuggestion, content string, p params.SimulatorParameters) ([]candidate.BranchSuggestion, error) {
	scored, err := r.ScoreBranches(branches, content, p)
	if err != nil {
		return nil, err
	}
	out := make([]candidate.BranchSuggestion, len(scored))
	for i, s := range scored {
		out[i] = s.Branch
	}
	return out, nil
}

// ScoreBranches is RankBranches with metrics attached.
func (r *Ranker) ScoreBranches(branches []candidate.BranchSuggestion, content string, p params.SimulatorParameters) (out []ScoredBranch, err error) {
	start := time.Now()
	defer func() {
		if rec := recover(); rec != nil {
			out, err = nil, fmt.Errorf("rank branches: panic: %v", rec)
		}
		r.tracker.Record(time.Since(start), err)
	}()

	items := make([]item, len(branches))
	for i, b := range branches {
		items[i] = item{
			emb:    r.vocab.Embed(b.Text),
			impact: b.Impact,
			bonus:  branchBonus(b),
		}
	}
	kept := r.rank(items, r.vocab.Embed(content), p.IsYoungAudience(), Options{DiversityThreshold: BranchDiversity})
	out = make([]ScoredBranch, len(kept))
	for i, k := range kept {
		out[i] = ScoredBranch{Branch: branches[k.idx], Metrics: k.metrics}
	}
	r.log.Debug("branches ranked", zap.Int("in", len(branches)), zap.Int("kept", len(out)))
	return out, nil
}

func branchBonus(b candidate.BranchSuggestion) float64 {
	var bonus float64
	switch b.BranchType {
	case candidate.BranchPlotTwist, candidate.BranchMoralDilemma:
		bonus += 0.1
	case candidate.BranchEscalation, candidate.BranchCharacterDriven, candidate.BranchDeEscalation:
		bonus += 0.05
	}
	if b.Impact >= 0.8 {
		bonus += 0.1
	}
	return math.Min(MaxBonus, bonus)
}

// #endregion rank-branches

// #region scoring

type item struct {
	emb    Embedding
	impact float64
	bonus  float64
}

type keptItem struct {
	idx     int
	metrics Metrics
}

// rank scores every item, drops low-relevance items when the query carries
// signal, sorts by final score and greedily enforces diversity.
func (r *Ranker) rank(items []item, query Embedding, young bool, opts Options) []keptItem {
	scored := make([]keptItem, 0, len(items))
	for i, it := range items {
		m := Metrics{
			Relevance:      math.Max(0, Cosine(query, it.emb)),
			Novelty:        novelty(items, i),
			Safety:         r.safety(it.emb.Text, young),
			Impact:         candidate.Clamp(it.impact),
			DiversityBonus: math.Min(MaxBonus, math.Max(0, it.bonus)),
		}
		base := m.Relevance*r.weights.Relevance +
			m.Novelty*r.weights.Novelty +
			m.Safety*r.weights.Safety +
			m.Impact*r.weights.Impact
		m.Final = candidate.Clamp(base * (1 + m.DiversityBonus))

		if !query.Zero() && m.Relevance < opts.RelevanceThreshold {
			continue
		}
		scored = append(scored, keptItem{idx: i, metrics: m})
	}

	sort.SliceStable(scored, func(a, b int) bool {
		return scored[a].metrics.Final > scored[b].metrics.Final
	})

	limit := 1 - opts.DiversityThreshold
	var kept []keptItem
	for _, s := range scored {
		if len(kept) > 0 && maxSimilarity(items, kept, s.idx) >= limit {
			continue
		}
		kept = append(kept, s)
	}
	return kept
}

// novelty is 1 - mean similarity to every other item; 1 with fewer than two items.
func novelty(items []item, i int) float64 {
	if len(items) < 2 {
		return 1
	}
	var sum float64
	for j := range items {
		if j != i {
			sum += Cosine(items[i].emb, items[j].emb)
		}
	}
	return candidate.Clamp(1 - sum/float64(len(items)-1))
}

func maxSimilarity(items []item, kept []keptItem, idx int) float64 {
	var best float64
	for _, k := range kept {
		if s := Cosine(items[idx].emb, items[k.idx].emb); s > best {
			best = s
		}
	}
	return best
}

// safety is 1 - 0.3 per distinct unsafe term (floor 0.1), halved for a
// young audience when any term is present.
func (r *Ranker) safety(text string, young bool) float64 {
	hits := 0
	seen := map[string]bool{}
	for _, w := range lexicon.Words(text) {
		if r.unsafe[w] && !seen[w] {
			seen[w] = true
			hits++
		}
	}
	if hits == 0 {
		return 1
	}
	s := math.Max(MinSafety, 1-UnsafePenalty*float64(hits))
	if young {
		s /= 2
	}
	return s
}

func wordSet(words []string) map[string]bool {
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}

// #endregion scoring
