package params

import (
	"strconv"
	"strings"
)

// #region synonyms

// genreSynonyms maps accepted spellings to the canonical genre name.
var genreSynonyms = map[string]string{
	"mystery":         "mystery",
	"detective":       "mystery",
	"whodunit":        "mystery",
	"crime":           "mystery",
	"noir":            "mystery",
	"fantasy":         "fantasy",
	"magic":           "fantasy",
	"high fantasy":    "fantasy",
	"sci-fi":          "science_fiction",
	"scifi":           "science_fiction",
	"sf":              "science_fiction",
	"science fiction": "science_fiction",
	"science_fiction": "science_fiction",
	"space opera":     "science_fiction",
	"horror":          "horror",
	"scary":           "horror",
	"gothic":          "horror",
	"romance":         "romance",
	"romantic":        "romance",
	"love story":      "romance",
	"thriller":        "thriller",
	"suspense":        "thriller",
	"adventure":       "adventure",
	"action":          "adventure",
	"quest":           "adventure",
	"comedy":          "comedy",
	"funny":           "comedy",
	"humor":           "comedy",
	"humour":          "comedy",
	"drama":           "drama",
	"literary":        "drama",
	"historical":      "historical",
	"history":         "historical",
}

// toneSynonyms maps accepted spellings to the canonical tone name.
var toneSynonyms = map[string]string{
	"dark":          "dark",
	"grim":          "dark",
	"bleak":         "dark",
	"ominous":       "dark",
	"light":         "light",
	"lighthearted":  "light",
	"light-hearted": "light",
	"cheerful":      "light",
	"upbeat":        "light",
	"humorous":      "humorous",
	"funny":         "humorous",
	"comedic":       "humorous",
	"witty":         "humorous",
	"serious":       "serious",
	"somber":        "serious",
	"sombre":        "serious",
	"earnest":       "serious",
	"whimsical":     "whimsical",
	"quirky":        "whimsical",
	"playful":       "whimsical",
	"tense":         "tense",
	"suspenseful":   "tense",
	"gripping":      "tense",
	"hopeful":       "hopeful",
	"uplifting":     "hopeful",
	"melancholic":   "melancholic",
	"melancholy":    "melancholic",
	"wistful":       "melancholic",
}

// CanonicalGenre maps a genre name through the synonym table.
// Unknown genres are returned trimmed and lowercased.
func CanonicalGenre(genre string) string {
	g := strings.ToLower(strings.TrimSpace(genre))
	if c, ok := genreSynonyms[g]; ok {
		return c
	}
	return g
}

// CanonicalTone maps a tone name through the synonym table.
func CanonicalTone(tone string) string {
	t := strings.ToLower(strings.TrimSpace(tone))
	if c, ok := toneSynonyms[t]; ok {
		return c
	}
	return t
}

// #endregion synonyms

// #region normalize

// Normalize returns a normalized deep copy of p. The input is never mutated.
func Normalize(p SimulatorParameters) SimulatorParameters {
	out := SimulatorParameters{
		Event:         strings.TrimSpace(p.Event),
		Genre:         CanonicalGenre(p.Genre),
		Tone:          CanonicalTone(p.Tone),
		Mode:          Mode(strings.ToLower(strings.TrimSpace(string(p.Mode)))),
		BranchDensity: Density(strings.ToLower(strings.TrimSpace(string(p.BranchDensity)))),
		Perspective:   strings.ToLower(strings.TrimSpace(p.Perspective)),
		ThemeKeywords: normalizeWords(p.ThemeKeywords, 0),
		AudienceAge:   strings.ToLower(strings.TrimSpace(p.AudienceAge)),
	}

	switch out.Mode {
	case ModeLogical, ModeCreative, ModeBalanced:
	default:
		out.Mode = ModeBalanced
	}
	switch out.BranchDensity {
	case DensityLow, DensityMedium, DensityHigh:
	default:
		out.BranchDensity = DensityMedium
	}

	if p.Character != nil {
		c := &Character{
			Name:   strings.TrimSpace(p.Character.Name),
			Traits: normalizeWords(p.Character.Traits, MaxTraits),
		}
		if c.Name != "" || len(c.Traits) > 0 {
			out.Character = c
		}
	}
	if p.Setting != nil {
		s := &Setting{
			Era:   strings.TrimSpace(p.Setting.Era),
			Place: strings.TrimSpace(p.Setting.Place),
			Mood:  strings.ToLower(strings.TrimSpace(p.Setting.Mood)),
		}
		if s.Era != "" || s.Place != "" || s.Mood != "" {
			out.Setting = s
		}
	}
	if p.Constraints != nil {
		out.Constraints = &Constraints{
			LengthTarget:     p.Constraints.LengthTarget,
			VocabularyLevel:  strings.ToLower(strings.TrimSpace(p.Constraints.VocabularyLevel)),
			BannedContent:    normalizeWords(p.Constraints.BannedContent, 0),
			EducationalGoals: normalizeWords(p.Constraints.EducationalGoals, 0),
		}
	}
	return out
}

// normalizeWords trims, lowercases and de-duplicates words, dropping empties.
// limit <= 0 keeps all.
func normalizeWords(words []string, limit int) []string {
	if len(words) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(words))
	out := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w == "" || seen[w] {
			continue
		}
		seen[w] = true
		out = append(out, w)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// #endregion normalize

// #region accessors

// CharacterName returns the character's name, or "" when none was given.
func (p SimulatorParameters) CharacterName() string {
	if p.Character == nil {
		return ""
	}
	return p.Character.Name
}

// Traits returns the character's traits.
func (p SimulatorParameters) Traits() []string {
	if p.Character == nil {
		return nil
	}
	return p.Character.Traits
}

// Place returns the setting's place, or "".
func (p SimulatorParameters) Place() string {
	if p.Setting == nil {
		return ""
	}
	return p.Setting.Place
}

// Era returns the setting's era, or "".
func (p SimulatorParameters) Era() string {
	if p.Setting == nil {
		return ""
	}
	return p.Setting.Era
}

// Mood returns the setting's mood, or "".
func (p SimulatorParameters) Mood() string {
	if p.Setting == nil {
		return ""
	}
	return p.Setting.Mood
}

// BannedContent returns the banned terms from the constraints.
func (p SimulatorParameters) BannedContent() []string {
	if p.Constraints == nil {
		return nil
	}
	return p.Constraints.BannedContent
}

// Has reports whether the named field is populated.
func (p SimulatorParameters) Has(field string) bool {
	switch field {
	case FieldCharacter:
		return p.CharacterName() != ""
	case FieldTraits:
		return len(p.Traits()) > 0
	case FieldSetting:
		return p.Place() != "" || p.Era() != ""
	case FieldEvent:
		return p.Event != ""
	case FieldGenre:
		return p.Genre != ""
	case FieldTone:
		return p.Tone != ""
	case FieldPerspective:
		return p.Perspective != ""
	case FieldThemes:
		return len(p.ThemeKeywords) > 0
	case FieldAudience:
		return p.AudienceAge != ""
	}
	return false
}

// Populated counts the populated top-level fields.
func (p SimulatorParameters) Populated() int {
	n := 0
	for _, f := range []string{
		FieldCharacter, FieldTraits, FieldSetting, FieldEvent, FieldGenre,
		FieldTone, FieldPerspective, FieldThemes, FieldAudience,
	} {
		if p.Has(f) {
			n++
		}
	}
	return n
}

// youngAudiences lists audience labels treated as young readers.
var youngAudiences = map[string]bool{
	"children": true, "child": true, "kids": true, "kid": true,
	"early reader": true, "early_reader": true, "middle grade": true,
	"middle_grade": true, "teen": true, "teens": true, "young": true,
}

// IsYoungAudience reports whether the audience is children or teens.
// Numeric ages and ranges ("8-12") are young when the lower bound is under 13.
func (p SimulatorParameters) IsYoungAudience() bool {
	a := p.AudienceAge
	if a == "" {
		return false
	}
	if youngAudiences[a] {
		return true
	}
	lower := strings.TrimSpace(strings.TrimSuffix(strings.SplitN(a, "-", 2)[0], "+"))
	if n, err := strconv.Atoi(lower); err == nil {
		return n < 13
	}
	return false
}

// SeedWords returns the content words available from the parameters,
// in a stable order: themes, event words, place, mood, genre, traits.
func (p SimulatorParameters) SeedWords() []string {
	var words []string
	words = append(words, p.ThemeKeywords...)
	words = append(words, strings.Fields(strings.ToLower(p.Event))...)
	if place := p.Place(); place != "" {
		words = append(words, strings.Fields(strings.ToLower(place))...)
	}
	if mood := p.Mood(); mood != "" {
		words = append(words, mood)
	}
	if p.Genre != "" {
		words = append(words, p.Genre)
	}
	words = append(words, p.Traits()...)
	return words
}

// QueryText joins all free-text parameters into one string for similarity scoring.
func (p SimulatorParameters) QueryText() string {
	parts := []string{p.CharacterName()}
	parts = append(parts, p.Traits()...)
	parts = append(parts, p.Era(), p.Place(), p.Mood(), p.Event, p.Genre, p.Tone)
	parts = append(parts, p.ThemeKeywords...)
	var b strings.Builder
	for _, s := range parts {
		if s == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(strings.ReplaceAll(s, "_", " "))
	}
	return b.String()
}

// #endregion accessors
