package templates

import (
	"errors"
	"time"
)

// #region errors

var (
	ErrNotFound        = errors.New("template not found")
	ErrInvalidTemplate = errors.New("invalid template")
)

// #endregion errors

// #region template

// Constraints limit where a template applies. Empty lists place no restriction.
type Constraints struct {
	Genres       []string `yaml:"genres,omitempty" json:"genres,omitempty"`
	Tones        []string `yaml:"tones,omitempty" json:"tones,omitempty"`
	AudienceAges []string `yaml:"audience_ages,omitempty" json:"audience_ages,omitempty"`
}

// Template is a registry entry with a learned effectiveness score.
// Templates are never deleted, only deactivated.
type Template struct {
	ID            string      `json:"id"`
	Name          string      `json:"name"`
	Category      string      `json:"category"`
	Text          string      `json:"text"`
	Required      []string    `json:"required_parameters,omitempty"`
	Optional      []string    `json:"optional_parameters,omitempty"`
	Constraints   Constraints `json:"constraints"`
	UsageCount    int         `json:"usage_count"`
	Effectiveness float64     `json:"effectiveness"`
	Active        bool        `json:"active"`
	CreatedAt     time.Time   `json:"created_at"`
}

// NewTemplate is the input to Registry.Add.
type NewTemplate struct {
	ID          string      `yaml:"id,omitempty"`
	Name        string      `yaml:"name"`
	Category    string      `yaml:"category"`
	Text        string      `yaml:"text"`
	Required    []string    `yaml:"required,omitempty"`
	Optional    []string    `yaml:"optional,omitempty"`
	Constraints Constraints `yaml:"constraints,omitempty"`
	// Effectiveness seeds the score; nil uses DefaultEffectiveness.
	Effectiveness *float64 `yaml:"effectiveness,omitempty"`
}

// DefaultEffectiveness is the starting score for a new template.
const DefaultEffectiveness = 0.5

// #endregion template

// #region feedback

// Feedback is one user reaction to a candidate produced from a template.
type Feedback struct {
	Accepted bool
	Edited   bool
	Rating   int // 1..5; 0 = no rating
}

// #endregion feedback

// #region filter

// Filter is an AND of every non-zero field.
type Filter struct {
	Category         string
	Genre            string
	Tone             string
	AudienceAge      string
	MinEffectiveness *float64
	Active           *bool
}

// #endregion filter

// #region stats

// Stats summarizes the registry.
type Stats struct {
	Total             int            `json:"total"`
	Active            int            `json:"active"`
	Inactive          int            `json:"inactive"`
	TotalUsage        int            `json:"total_usage"`
	MeanEffectiveness float64        `json:"mean_effectiveness"` // over active templates
	ByCategory        map[string]int `json:"by_category"`
	TopTemplateID     string         `json:"top_template_id,omitempty"`
}

// RecommendationKind classifies a registry recommendation.
type RecommendationKind string

const (
	RecommendReview  RecommendationKind = "review"
	RecommendPromote RecommendationKind = "promote"
	RecommendAdd     RecommendationKind = "add-templates"
)

// Recommendation is an advisory maintenance item.
type Recommendation struct {
	Kind       RecommendationKind `json:"kind"`
	TemplateID string             `json:"template_id,omitempty"`
	Category   string             `json:"category,omitempty"`
	Message    string             `json:"message"`
}

// #endregion stats
