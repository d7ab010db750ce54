package candidate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasPlaceholder(t *testing.T) {
	assert.True(t, HasPlaceholder("What if {character} left?"))
	assert.True(t, HasPlaceholder("{}"))
	assert.False(t, HasPlaceholder("What if Mara left?"))
	assert.False(t, HasPlaceholder("a { lone brace"))
}

func TestBranchTypeValid(t *testing.T) {
	for _, b := range BranchTypes {
		assert.True(t, b.Valid(), string(b))
	}
	assert.False(t, BranchType("side-quest").Valid())
	assert.Len(t, BranchTypes, 6)
}

func TestExplanationEmpty(t *testing.T) {
	assert.True(t, Explanation{}.Empty())
	assert.True(t, Explanation{Source: SourceRule}.Empty())
	assert.False(t, Explanation{Source: SourceRule, RuleID: "r1"}.Empty())
	assert.False(t, Explanation{Source: SourceTechnique, Technique: "concept-blending"}.Empty())
}

func TestNewIDUnique(t *testing.T) {
	assert.NotEqual(t, NewID(), NewID())
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 0.0, Clamp(-0.2))
	assert.Equal(t, 1.0, Clamp(1.7))
	assert.Equal(t, 0.4, Clamp(0.4))
}
