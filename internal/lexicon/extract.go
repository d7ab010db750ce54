package lexicon

import (
	"strings"
	"unicode"
)

// #region types

// Extraction is a coarse keyword summary of a story node's text.
type Extraction struct {
	Entities   []string
	Actions    []string
	Characters []string
	Locations  []string
}

// Empty reports whether nothing was extracted.
func (e Extraction) Empty() bool {
	return len(e.Entities) == 0 && len(e.Actions) == 0 && len(e.Characters) == 0 && len(e.Locations) == 0
}

// #endregion types

// #region word-lists

// actionVerbs is a small fixed set of narrative verbs in common inflections.
var actionVerbs = wordSet(
	"open", "opens", "opened", "run", "runs", "ran", "flee", "flees", "fled",
	"find", "finds", "found", "discover", "discovers", "discovered",
	"fight", "fights", "fought", "hide", "hides", "hid", "steal", "steals", "stole",
	"break", "breaks", "broke", "leave", "leaves", "left", "arrive", "arrives", "arrived",
	"attack", "attacks", "attacked", "escape", "escapes", "escaped",
	"reveal", "reveals", "revealed", "betray", "betrays", "betrayed",
	"confront", "confronts", "confronted", "chase", "chases", "chased",
	"search", "searches", "searched", "follow", "follows", "followed",
	"read", "reads", "write", "writes", "wrote", "call", "calls", "called",
	"lie", "lies", "lied", "promise", "promises", "promised",
	"save", "saves", "saved", "lose", "loses", "lost", "kill", "kills", "killed",
	"enter", "enters", "entered", "climb", "climbs", "climbed",
	"whisper", "whispers", "whispered", "scream", "screams", "screamed",
)

// locationNouns are words that name places.
var locationNouns = wordSet(
	"forest", "castle", "city", "town", "village", "room", "house", "ship",
	"station", "library", "harbor", "harbour", "cave", "tower", "bridge",
	"market", "street", "garden", "palace", "temple", "school", "office",
	"hospital", "island", "mountain", "river", "desert", "kitchen", "attic",
	"basement", "cellar", "hall", "church", "lab", "laboratory", "train",
	"tavern", "inn", "camp", "shore", "beach", "woods", "mansion", "ruins",
)

// roleNouns are words that name characters by role.
var roleNouns = wordSet(
	"detective", "captain", "king", "queen", "prince", "princess", "knight",
	"doctor", "teacher", "stranger", "thief", "soldier", "witch", "wizard",
	"sister", "brother", "mother", "father", "friend", "guard", "sailor",
	"pilot", "robot", "child", "girl", "boy", "woman", "man", "officer",
	"merchant", "priest", "servant", "hunter", "rival", "mentor", "villain",
)

var locationPrepositions = wordSet("in", "at", "into", "inside", "through", "across", "near", "toward", "towards")

func wordSet(words ...string) map[string]bool {
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}

// IsActionVerb reports whether w is in the fixed action-verb list.
func IsActionVerb(w string) bool {
	return actionVerbs[strings.ToLower(w)]
}

// #endregion word-lists

// #region extract

const maxPerKind = 5

// Extract pulls a coarse entity/action/character/location summary out of text
// using word-membership heuristics only.
func Extract(text string) Extraction {
	var ex Extraction
	seen := map[string]bool{}
	add := func(list *[]string, w string) {
		if len(*list) >= maxPerKind || seen[w] {
			return
		}
		seen[w] = true
		*list = append(*list, w)
	}

	sentenceStart := true
	prev, prev2 := "", ""
	for _, raw := range strings.Fields(text) {
		word := strings.TrimFunc(raw, func(r rune) bool { return !unicode.IsLetter(r) })
		endsSentence := strings.ContainsAny(raw, ".!?")
		if word == "" {
			sentenceStart = sentenceStart || endsSentence
			continue
		}
		lower := strings.ToLower(word)

		switch {
		case actionVerbs[lower]:
			add(&ex.Actions, lower)
		case locationNouns[lower]:
			add(&ex.Locations, lower)
		case roleNouns[lower]:
			add(&ex.Characters, "the "+lower)
		case isCapitalized(word) && !sentenceStart && !stopwords[lower]:
			if locationPrepositions[prev] || (prev == "the" && locationPrepositions[prev2]) {
				add(&ex.Locations, word)
			} else {
				add(&ex.Characters, word)
			}
		case !stopwords[lower] && len(lower) > 3:
			add(&ex.Entities, lower)
		}

		prev2, prev = prev, lower
		sentenceStart = endsSentence
	}
	return ex
}

func isCapitalized(w string) bool {
	for _, r := range w {
		return unicode.IsUpper(r)
	}
	return false
}

// #endregion extract
