package params

// #region mode

// Mode selects how candidates are split between the logical and creative generators.
type Mode string

const (
	ModeLogical  Mode = "logical"
	ModeCreative Mode = "creative"
	ModeBalanced Mode = "balanced"
)

// #endregion mode

// #region density

// Density controls how many branch suggestions are requested per node.
type Density string

const (
	DensityLow    Density = "low"
	DensityMedium Density = "medium"
	DensityHigh   Density = "high"
)

// #endregion density

// #region parameters

// Character describes the protagonist of the requested story.
type Character struct {
	Name   string   `yaml:"name,omitempty" json:"name,omitempty"`
	Traits []string `yaml:"traits,omitempty" json:"traits,omitempty"` // at most MaxTraits after Normalize
}

// Setting describes where and when the story takes place.
type Setting struct {
	Era   string `yaml:"era,omitempty" json:"era,omitempty"`
	Place string `yaml:"place,omitempty" json:"place,omitempty"`
	Mood  string `yaml:"mood,omitempty" json:"mood,omitempty"`
}

// Constraints narrows what a generated candidate may contain.
type Constraints struct {
	LengthTarget     int      `yaml:"length_target,omitempty" json:"length_target,omitempty"`
	VocabularyLevel  string   `yaml:"vocabulary_level,omitempty" json:"vocabulary_level,omitempty"`
	BannedContent    []string `yaml:"banned_content,omitempty" json:"banned_content,omitempty"`
	EducationalGoals []string `yaml:"educational_goals,omitempty" json:"educational_goals,omitempty"`
}

// SimulatorParameters is the sparse input to every generation request.
// Every field is optional. Treat values as immutable once normalized.
type SimulatorParameters struct {
	Character     *Character   `yaml:"character,omitempty" json:"character,omitempty"`
	Setting       *Setting     `yaml:"setting,omitempty" json:"setting,omitempty"`
	Event         string       `yaml:"event,omitempty" json:"event,omitempty"`
	Genre         string       `yaml:"genre,omitempty" json:"genre,omitempty"`
	Tone          string       `yaml:"tone,omitempty" json:"tone,omitempty"`
	Constraints   *Constraints `yaml:"constraints,omitempty" json:"constraints,omitempty"`
	Mode          Mode         `yaml:"generation_mode,omitempty" json:"generation_mode,omitempty"`
	BranchDensity Density      `yaml:"branch_density,omitempty" json:"branch_density,omitempty"`
	Perspective   string       `yaml:"perspective,omitempty" json:"perspective,omitempty"`
	ThemeKeywords []string     `yaml:"theme_keywords,omitempty" json:"theme_keywords,omitempty"`
	AudienceAge   string       `yaml:"audience_age,omitempty" json:"audience_age,omitempty"`
}

// #endregion parameters

// #region field-names

// Field names accepted by rule and template required-field constraints.
const (
	FieldCharacter   = "character"
	FieldTraits      = "traits"
	FieldSetting     = "setting"
	FieldEvent       = "event"
	FieldGenre       = "genre"
	FieldTone        = "tone"
	FieldPerspective = "perspective"
	FieldThemes      = "theme_keywords"
	FieldAudience    = "audience_age"
)

// MaxTraits is the number of character traits kept by Normalize.
const MaxTraits = 3

// #endregion field-names
