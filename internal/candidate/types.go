package candidate

// #region prompt-type

// PromptType tags the flavor of a generated prompt.
type PromptType string

const (
	PromptLogical   PromptType = "logical"
	PromptCreative  PromptType = "creative"
	PromptTwist     PromptType = "twist"
	PromptCharacter PromptType = "character"
	PromptThematic  PromptType = "thematic"
)

// #endregion prompt-type

// #region branch-type

// BranchType is the fixed enumeration of branch suggestion kinds.
type BranchType string

const (
	BranchCharacterDriven BranchType = "character-driven"
	BranchPlotTwist       BranchType = "plot-twist"
	BranchMoralDilemma    BranchType = "moral-dilemma"
	BranchProcedural      BranchType = "procedural"
	BranchEscalation      BranchType = "escalation"
	BranchDeEscalation    BranchType = "de-escalation"
)

// BranchTypes lists every valid branch type.
var BranchTypes = []BranchType{
	BranchCharacterDriven,
	BranchPlotTwist,
	BranchMoralDilemma,
	BranchProcedural,
	BranchEscalation,
	BranchDeEscalation,
}

// Valid reports whether b is one of BranchTypes.
func (b BranchType) Valid() bool {
	for _, t := range BranchTypes {
		if t == b {
			return true
		}
	}
	return false
}

// #endregion branch-type

// #region method

// Method records which kind of generator produced a candidate.
type Method string

const (
	MethodRuleBased Method = "rule-based"
	MethodLLM       Method = "llm"
	MethodHybrid    Method = "hybrid"
)

// #endregion method

// #region explanation

// Source names what a candidate was produced from.
type Source string

const (
	SourceRule      Source = "rule"
	SourceTemplate  Source = "template"
	SourceTechnique Source = "technique"
	SourceBackend   Source = "backend"
)

// Explanation is the explainability record attached to every candidate.
type Explanation struct {
	Source    Source            `json:"source"`
	RuleID    string            `json:"rule_id,omitempty"`
	RuleName  string            `json:"rule_name,omitempty"`
	Category  string            `json:"category,omitempty"`
	Technique string            `json:"technique,omitempty"`
	Reasoning string            `json:"reasoning"`
	Slots     map[string]string `json:"slots,omitempty"`
}

// Empty reports whether the record identifies nothing.
func (e Explanation) Empty() bool {
	return e.Source == "" || (e.RuleID == "" && e.Technique == "" && e.Reasoning == "")
}

// #endregion explanation

// #region prompt

// GeneratedPrompt is a single "what if" prompt candidate.
type GeneratedPrompt struct {
	ID          string      `json:"id"`
	Text        string      `json:"text"`
	Type        PromptType  `json:"type"`
	Tags        []string    `json:"tags,omitempty"`
	Impact      float64     `json:"impact_score"`
	Confidence  float64     `json:"confidence_score"`
	TemplateRef string      `json:"template_ref,omitempty"`
	Method      Method      `json:"generation_method"`
	Explanation Explanation `json:"explanation"`
}

// #endregion prompt

// #region branch

// BranchSuggestion is a single branch candidate for an existing story node.
type BranchSuggestion struct {
	ID             string      `json:"id"`
	Text           string      `json:"text"`
	BranchType     BranchType  `json:"branch_type"`
	Impact         float64     `json:"impact_score"`
	OutcomeSummary string      `json:"outcome_summary"`
	Method         Method      `json:"generation_method"`
	Explanation    Explanation `json:"explanation"`
}

// #endregion branch

// #region draft

// Draft is raw candidate text returned by an external generative backend.
type Draft struct {
	Text   string
	Impact float64
	Tags   []string
}

// #endregion draft
