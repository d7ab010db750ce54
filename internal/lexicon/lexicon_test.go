package lexicon

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestTokenize(t *testing.T) {
	got := Tokenize("The letter arrives, and the letter is OLD.")
	assert.Equal(t, []string{"letter", "arrives", "old"}, got)
}

func TestWordsKeepsDuplicates(t *testing.T) {
	assert.Equal(t, []string{"a", "door", "a", "door"}, Words("A door, a DOOR!"))
}

func TestSharedKeywords(t *testing.T) {
	assert.Equal(t, 2, SharedKeywords([]string{"storm", "ship", "captain"}, []string{"ship", "captain", "sea"}))
	assert.Equal(t, 0, SharedKeywords(nil, []string{"x"}))
}

func TestExtract(t *testing.T) {
	text := "The detective opened the door. Then Mara ran into Blackwood and found a strange letter in the library."
	got := Extract(text)
	want := Extraction{
		Entities:   []string{"door", "strange", "letter"},
		Actions:    []string{"opened", "ran", "found"},
		Characters: []string{"the detective", "Mara"},
		Locations:  []string{"Blackwood", "library"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("extraction mismatch (-want +got):\n%s", diff)
	}
	assert.False(t, got.Empty())
}

func TestExtract_Empty(t *testing.T) {
	assert.True(t, Extract("").Empty())
	assert.True(t, Extract("and the of").Empty())
}

func TestIsActionVerb(t *testing.T) {
	assert.True(t, IsActionVerb("Discovered"))
	assert.False(t, IsActionVerb("table"))
}
