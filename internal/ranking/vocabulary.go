package ranking

import (
	"math"
	"strings"

	"github.com/danielpatrickdp/whatif-engine/internal/lexicon"
)

// #region vocabulary

// defaultWords is the fixed embedding vocabulary: narrative content words
// that show up in prompts, branches and story parameters.
var defaultWords = []string{
	// people and roles
	"character", "detective", "inspector", "stranger", "friend", "rival", "enemy", "ally",
	"villain", "hero", "mentor", "apprentice", "family", "mother", "father", "sibling",
	"child", "king", "queen", "witness", "culprit", "monster", "ghost", "machine", "protagonist",
	// places
	"place", "town", "city", "house", "manor", "library", "harbor", "forest", "kingdom",
	"station", "ship", "sea", "ocean", "river", "mountain", "school", "court", "room", "home", "door",
	// objects
	"letter", "key", "map", "photograph", "watch", "ring", "crown", "sword", "mirror", "diary", "message",
	// time
	"time", "past", "future", "years", "night", "day", "deadline", "morning", "century", "earlier", "later",
	// events and actions
	"arrives", "opened", "found", "lost", "discovered", "stolen", "escape", "remember", "forget",
	"trade", "swap", "train", "warning", "sent", "choose", "decide", "fight", "betray", "lie", "solve",
	// abstract
	"secret", "truth", "memory", "dream", "fear", "love", "magic", "prophecy", "price", "cost",
	"debt", "power", "silence", "music", "gravity", "money", "light", "shadow", "trust", "betrayal",
	"choice", "case", "clue", "mystery", "quest", "war", "storm", "danger", "threat", "promise",
	"consequence", "conflict", "reason", "everyone", "nobody", "alone", "together", "never", "always",
	// genre and tone
	"fantasy", "horror", "romance", "thriller", "adventure", "comedy", "drama", "science", "fiction",
	"dark", "hopeful", "tense", "whimsical",
	// sensitive content
	"kill", "murder", "blood", "death", "weapon", "violence",
}

// Vocabulary maps a fixed word list onto vector dimensions.
type Vocabulary struct {
	words []string
	index map[string]int
}

// NewVocabulary builds a vocabulary; duplicate words keep their first index.
func NewVocabulary(words []string) *Vocabulary {
	v := &Vocabulary{index: make(map[string]int, len(words))}
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w == "" {
			continue
		}
		if _, dup := v.index[w]; dup {
			continue
		}
		v.index[w] = len(v.words)
		v.words = append(v.words, w)
	}
	return v
}

// DefaultVocabulary returns the built-in vocabulary.
func DefaultVocabulary() *Vocabulary {
	return NewVocabulary(defaultWords)
}

// Size is the embedding dimension.
func (v *Vocabulary) Size() int {
	return len(v.words)
}

// lookup maps a token to its dimension, trying a naive singular form.
func (v *Vocabulary) lookup(tok string) (int, bool) {
	if i, ok := v.index[tok]; ok {
		return i, true
	}
	if strings.HasSuffix(tok, "s") {
		if i, ok := v.index[strings.TrimSuffix(tok, "s")]; ok {
			return i, true
		}
	}
	return 0, false
}

// #endregion vocabulary

// #region embedding

// Embedding is an L2-normalized bag-of-words count vector.
// Magnitude is the norm before normalization; a zero vector stays zero.
type Embedding struct {
	Text      string
	Vector    []float64
	Magnitude float64
}

// Embed counts vocabulary words in text and normalizes the result.
func (v *Vocabulary) Embed(text string) Embedding {
	vec := make([]float64, len(v.words))
	for _, w := range lexicon.Words(text) {
		if i, ok := v.lookup(strings.Trim(w, "'")); ok {
			vec[i]++
		}
	}
	mag := norm(vec)
	if mag > 0 {
		for i := range vec {
			vec[i] /= mag
		}
	}
	return Embedding{Text: text, Vector: vec, Magnitude: mag}
}

// Zero reports whether no vocabulary word was found.
func (e Embedding) Zero() bool {
	return e.Magnitude == 0
}

// Cosine returns the cosine similarity of two embeddings from the same
// vocabulary; 0 if either is a zero vector.
func Cosine(a, b Embedding) float64 {
	if a.Zero() || b.Zero() || len(a.Vector) != len(b.Vector) {
		return 0
	}
	var dot float64
	for i := range a.Vector {
		dot += a.Vector[i] * b.Vector[i]
	}
	return math.Min(1, dot)
}

// norm computes the L2 norm of v.
func norm(v []float64) float64 {
	var sum float64
	for _, x := range v {
		sum += x * x
	}
	return math.Sqrt(sum)
}

// #endregion embedding
