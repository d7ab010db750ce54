package logical

import "github.com/danielpatrickdp/whatif-engine/internal/candidate"

// #region branch-techniques

type branchTechnique struct {
	name       string
	branchType candidate.BranchType
	template   string
	outcome    string
	reasoning  string
}

// branchTechniques are cycled in order by GenerateBranches.
var branchTechniques = []branchTechnique{
	{
		name:       "character-reaction",
		branchType: candidate.BranchCharacterDriven,
		template:   "{character} meets {action} with {emotion}, and {other_character} sees it happen.",
		outcome:    "A character's response reshapes how the others treat them.",
		reasoning:  "follows the most immediate character reaction to the scene",
	},
	{
		name:       "consequence-exploration",
		branchType: candidate.BranchProcedural,
		template:   "Because of {action} in {location}, {consequence}.",
		outcome:    "The scene's events ripple outward step by step.",
		reasoning:  "traces a direct consequence of the scene's main action",
	},
	{
		name:       "conflict-escalation",
		branchType: candidate.BranchEscalation,
		template:   "{obstacle} stands between {character} and {entity}, and {other_character} turns it into a fight.",
		outcome:    "The stakes rise and the conflict becomes open.",
		reasoning:  "raises the existing tension by adding an obstacle",
	},
	{
		name:       "information-revelation",
		branchType: candidate.BranchPlotTwist,
		template:   "{character} learns that {secret}.",
		outcome:    "A hidden fact changes what the scene meant.",
		reasoning:  "reveals information that reframes the scene",
	},
	{
		name:       "choice-point",
		branchType: candidate.BranchMoralDilemma,
		template:   "{character} must decide: {choice}.",
		outcome:    "The story splits on a choice with a real cost.",
		reasoning:  "forces a decision between two costly options",
	},
}

// #endregion branch-techniques
