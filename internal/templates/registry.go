package templates

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/danielpatrickdp/whatif-engine/internal/logging"
	"github.com/danielpatrickdp/whatif-engine/internal/params"
	"github.com/danielpatrickdp/whatif-engine/internal/rules"
	"github.com/danielpatrickdp/whatif-engine/internal/slots"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// #region persister

// Persister writes registry changes through to durable storage.
type Persister interface {
	SaveTemplate(t Template) error
	RecordFeedback(entry logging.FeedbackEntry) error
}

// #endregion persister

// #region registry

// Registry is the in-memory template catalog. Reads take a shared lock;
// Add, UpdateEffectiveness and Prune are serialized by the write lock.
type Registry struct {
	mu        sync.RWMutex
	templates map[string]*Template
	order     []string
	store     Persister
	log       *zap.Logger
	now       func() time.Time

	// Thresholds used by Recommendations.
	reviewBelow  float64
	promoteAbove float64
	minUsage     int
}

// Option configures a Registry.
type Option func(*Registry)

// WithStore enables write-through persistence.
func WithStore(p Persister) Option {
	return func(r *Registry) { r.store = p }
}

// WithLogger attaches a logger.
func WithLogger(log *zap.Logger) Option {
	return func(r *Registry) { r.log = logging.OrNop(log) }
}

// WithClock overrides time.Now for CreatedAt stamps.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) { r.now = now }
}

// WithRecommendationThresholds overrides the review/promote thresholds.
func WithRecommendationThresholds(reviewBelow, promoteAbove float64, minUsage int) Option {
	return func(r *Registry) {
		r.reviewBelow, r.promoteAbove, r.minUsage = reviewBelow, promoteAbove, minUsage
	}
}

// NewRegistry creates a registry seeded with the given templates, which are
// stored as-is (IDs, scores and flags preserved).
func NewRegistry(seed []Template, opts ...Option) *Registry {
	r := &Registry{
		templates:    make(map[string]*Template, len(seed)),
		log:          zap.NewNop(),
		now:          time.Now,
		reviewBelow:  0.4,
		promoteAbove: 0.8,
		minUsage:     10,
	}
	for _, opt := range opts {
		opt(r)
	}
	for _, t := range seed {
		t := t
		if _, dup := r.templates[t.ID]; !dup {
			r.order = append(r.order, t.ID)
		}
		r.templates[t.ID] = &t
	}
	return r
}

// #endregion registry

// #region reads

// Get returns a copy of the template with the given id.
func (r *Registry) Get(id string) (Template, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.templates[id]
	if !ok {
		return Template{}, false
	}
	return clone(*t), true
}

// ByCategory returns every template in a category, in insertion order.
func (r *Registry) ByCategory(category string) []Template {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Template
	for _, id := range r.order {
		if t := r.templates[id]; t.Category == category {
			out = append(out, clone(*t))
		}
	}
	return out
}

// Find returns templates matching every set filter field, by descending effectiveness.
func (r *Registry) Find(f Filter) []Template {
	r.mu.RLock()
	out := make([]Template, 0, len(r.order))
	for _, id := range r.order {
		t := r.templates[id]
		if matches(*t, f) {
			out = append(out, clone(*t))
		}
	}
	r.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool { return out[i].Effectiveness > out[j].Effectiveness })
	return out
}

func matches(t Template, f Filter) bool {
	if f.Category != "" && t.Category != f.Category {
		return false
	}
	if f.Genre != "" && !allows(t.Constraints.Genres, params.CanonicalGenre(f.Genre), params.CanonicalGenre) {
		return false
	}
	if f.Tone != "" && !allows(t.Constraints.Tones, params.CanonicalTone(f.Tone), params.CanonicalTone) {
		return false
	}
	if f.AudienceAge != "" && !allows(t.Constraints.AudienceAges, strings.ToLower(f.AudienceAge), strings.ToLower) {
		return false
	}
	if f.MinEffectiveness != nil && t.Effectiveness < *f.MinEffectiveness {
		return false
	}
	if f.Active != nil && t.Active != *f.Active {
		return false
	}
	return true
}

// allows reports whether an empty list or a list containing v (after canon).
func allows(list []string, v string, canon func(string) string) bool {
	if len(list) == 0 {
		return true
	}
	for _, s := range list {
		if canon(s) == v {
			return true
		}
	}
	return false
}

// #endregion reads

// #region add

// Add validates and registers a new active template.
func (r *Registry) Add(data NewTemplate) (Template, error) {
	if strings.TrimSpace(data.Text) == "" || strings.TrimSpace(data.Category) == "" {
		return Template{}, fmt.Errorf("%w: text and category are required", ErrInvalidTemplate)
	}
	placeholders := slots.Placeholders(data.Text)
	if len(placeholders) == 0 {
		return Template{}, fmt.Errorf("%w: text has no placeholders", ErrInvalidTemplate)
	}
	declared := make(map[string]bool, len(placeholders))
	for _, p := range placeholders {
		declared[p] = true
	}
	for _, req := range data.Required {
		if !declared[req] {
			return Template{}, fmt.Errorf("%w: required parameter %q not in text", ErrInvalidTemplate, req)
		}
	}
	eff := DefaultEffectiveness
	if data.Effectiveness != nil {
		eff = *data.Effectiveness
		if eff < 0 || eff > 1 {
			return Template{}, fmt.Errorf("%w: effectiveness %.2f outside [0,1]", ErrInvalidTemplate, eff)
		}
	}

	t := Template{
		ID:            data.ID,
		Name:          data.Name,
		Category:      data.Category,
		Text:          data.Text,
		Required:      data.Required,
		Optional:      data.Optional,
		Constraints:   data.Constraints,
		Effectiveness: eff,
		Active:        true,
		CreatedAt:     r.now().UTC(),
	}
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	if t.Required == nil && t.Optional == nil {
		t.Required = placeholders
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.templates[t.ID]; exists {
		return Template{}, fmt.Errorf("%w: duplicate id %s", ErrInvalidTemplate, t.ID)
	}
	if r.store != nil {
		if err := r.store.SaveTemplate(t); err != nil {
			return Template{}, fmt.Errorf("save template: %w", err)
		}
	}
	r.templates[t.ID] = &t
	r.order = append(r.order, t.ID)
	r.log.Info("template added", zap.String("id", t.ID), zap.String("category", t.Category))
	return clone(t), nil
}

// #endregion add

// #region update-effectiveness

// UpdateEffectiveness applies one feedback event. Returns false when the id
// is unknown. A persistence failure leaves the in-memory score unchanged.
func (r *Registry) UpdateEffectiveness(id string, fb Feedback) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.templates[id]
	if !ok {
		return false, nil
	}
	next := ApplyFeedback(*cur, fb)

	if r.store != nil {
		if err := r.store.SaveTemplate(next); err != nil {
			return false, fmt.Errorf("save template %s: %w", id, err)
		}
		entry := logging.FeedbackEntry{
			TemplateID:       id,
			Accepted:         fb.Accepted,
			Edited:           fb.Edited,
			Rating:           fb.Rating,
			OldEffectiveness: cur.Effectiveness,
			NewEffectiveness: next.Effectiveness,
			UsageCount:       next.UsageCount,
			CreatedAt:        r.now().UTC(),
		}
		if err := r.store.RecordFeedback(entry); err != nil {
			r.log.Warn("feedback log write failed", zap.String("id", id), zap.Error(err))
		}
	}

	r.log.Debug("effectiveness updated",
		zap.String("id", id),
		zap.Float64("old", cur.Effectiveness),
		zap.Float64("new", next.Effectiveness),
		zap.Int("usage", next.UsageCount))
	*cur = next
	return true, nil
}

// #endregion update-effectiveness

// #region prune

// Prune deactivates active templates with usage >= minUsage and effectiveness
// below minEffectiveness. Returns how many were deactivated.
func (r *Registry) Prune(minEffectiveness float64, minUsage int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for _, id := range r.order {
		t := r.templates[id]
		if !t.Active || t.UsageCount < minUsage || t.Effectiveness >= minEffectiveness {
			continue
		}
		next := *t
		next.Active = false
		if r.store != nil {
			if err := r.store.SaveTemplate(next); err != nil {
				return n, fmt.Errorf("save template %s: %w", id, err)
			}
		}
		*t = next
		n++
		r.log.Info("template deactivated",
			zap.String("id", id),
			zap.Float64("effectiveness", t.Effectiveness),
			zap.Int("usage", t.UsageCount))
	}
	return n, nil
}

// #endregion prune

// #region stats

// Stats summarizes the registry.
func (r *Registry) Stats() Stats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s := Stats{ByCategory: map[string]int{}}
	var effSum, top float64
	for _, id := range r.order {
		t := r.templates[id]
		s.Total++
		s.TotalUsage += t.UsageCount
		s.ByCategory[t.Category]++
		if !t.Active {
			s.Inactive++
			continue
		}
		s.Active++
		effSum += t.Effectiveness
		if s.TopTemplateID == "" || t.Effectiveness > top {
			s.TopTemplateID, top = t.ID, t.Effectiveness
		}
	}
	if s.Active > 0 {
		s.MeanEffectiveness = effSum / float64(s.Active)
	}
	return s
}

// Recommendations returns advisory maintenance items ordered by kind, then id.
// Every logical rule category is checked for coverage, seeded or not.
func (r *Registry) Recommendations() []Recommendation {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Recommendation
	activeByCategory := map[string]int{}
	var categories []string
	for _, c := range rules.Categories {
		categories = append(categories, string(c))
		activeByCategory[string(c)] = 0
	}
	for _, id := range r.order {
		t := r.templates[id]
		if _, seen := activeByCategory[t.Category]; !seen {
			categories = append(categories, t.Category)
			activeByCategory[t.Category] = 0
		}
		if !t.Active {
			continue
		}
		activeByCategory[t.Category]++
		switch {
		case t.UsageCount >= r.minUsage && t.Effectiveness < r.reviewBelow:
			out = append(out, Recommendation{
				Kind: RecommendReview, TemplateID: t.ID, Category: t.Category,
				Message: fmt.Sprintf("effectiveness %.2f after %d uses; consider rewriting", t.Effectiveness, t.UsageCount),
			})
		case t.Effectiveness >= r.promoteAbove && t.UsageCount < r.minUsage:
			out = append(out, Recommendation{
				Kind: RecommendPromote, TemplateID: t.ID, Category: t.Category,
				Message: fmt.Sprintf("effectiveness %.2f with only %d uses; surface it more often", t.Effectiveness, t.UsageCount),
			})
		}
	}
	for _, c := range categories {
		if activeByCategory[c] == 0 {
			out = append(out, Recommendation{
				Kind: RecommendAdd, Category: c,
				Message: fmt.Sprintf("category %s has no active templates", c),
			})
		}
	}

	rank := map[RecommendationKind]int{RecommendReview: 0, RecommendPromote: 1, RecommendAdd: 2}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Kind != out[j].Kind {
			return rank[out[i].Kind] < rank[out[j].Kind]
		}
		if out[i].TemplateID != out[j].TemplateID {
			return out[i].TemplateID < out[j].TemplateID
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// #endregion stats

// #region helpers

func clone(t Template) Template {
	t.Required = append([]string(nil), t.Required...)
	t.Optional = append([]string(nil), t.Optional...)
	t.Constraints.Genres = append([]string(nil), t.Constraints.Genres...)
	t.Constraints.Tones = append([]string(nil), t.Constraints.Tones...)
	t.Constraints.AudienceAges = append([]string(nil), t.Constraints.AudienceAges...)
	return t
}

// #endregion helpers
