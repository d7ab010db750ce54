package slots

import (
	"strings"

	"github.com/danielpatrickdp/whatif-engine/internal/params"
)

// #region genre-tables

// Lists below follow the convention generic → specific; later entries are
// drawn more often.

var genreArchetypes = map[string][]string{
	"mystery":         {"the detective", "a retired inspector", "the night-shift archivist"},
	"fantasy":         {"the apprentice", "a wandering knight", "the last dragon-speaker"},
	"science_fiction": {"the pilot", "a station engineer", "the ship's exiled AI"},
	"horror":          {"the caretaker", "a sleepless child", "the new tenant"},
	"romance":         {"the florist", "an old flame", "the rival's best friend"},
	"thriller":        {"the courier", "a whistleblower", "the double agent"},
	"adventure":       {"the explorer", "a young cartographer", "the stowaway"},
	"comedy":          {"the substitute teacher", "an overconfident chef", "the accidental mayor"},
	"drama":           {"the eldest sibling", "a widowed baker", "the estranged son"},
	"historical":      {"the scribe", "a court musician", "the lighthouse keeper"},
}

var genreAntagonists = map[string][]string{
	"mystery":         {"the culprit", "a blackmailer", "the trusted family lawyer"},
	"fantasy":         {"the dark lord", "a jealous court wizard", "the spirit of the forest"},
	"science_fiction": {"the corporation", "a rogue AI", "the colony's founder"},
	"horror":          {"the thing in the walls", "a smiling neighbor", "the house itself"},
	"romance":         {"a rival suitor", "the disapproving parent", "the protagonist's own pride"},
	"thriller":        {"the handler", "a corrupt official", "the person who recruited them"},
	"adventure":       {"the treasure hunter", "a mutinous crew", "the storm"},
	"comedy":          {"the health inspector", "a competitive neighbor", "the talking parrot"},
	"drama":           {"the family secret", "an old debt", "the town's memory"},
	"historical":      {"the magistrate", "a foreign envoy", "the plague"},
}

var genrePlaces = map[string][]string{
	"mystery":         {"the manor", "a fog-bound harbor", "the locked reading room"},
	"fantasy":         {"the kingdom", "a floating market", "the library under the mountain"},
	"science_fiction": {"the station", "a terraformed moon", "the generation ship's seed vault"},
	"horror":          {"the old house", "an abandoned asylum", "the lake that never freezes"},
	"romance":         {"the café", "a seaside town", "the rooftop garden"},
	"thriller":        {"the city", "a border checkpoint", "the embassy basement"},
	"adventure":       {"the jungle", "a sunken temple", "the edge of the map"},
	"comedy":          {"the office", "a cooking show set", "the world's smallest museum"},
	"drama":           {"the family farm", "a hospital corridor", "the childhood bedroom"},
	"historical":      {"the court", "a plague-era port", "the printing house"},
}

var genreObjects = map[string][]string{
	"mystery":         {"a letter", "a pocket watch", "a torn photograph"},
	"fantasy":         {"a sword", "a cracked crown", "a map that redraws itself"},
	"science_fiction": {"a data chip", "a broken beacon", "a message from the future"},
	"horror":          {"a doll", "a music box", "a mirror that lags behind"},
	"romance":         {"a ring", "an unsent letter", "a borrowed umbrella"},
	"thriller":        {"a briefcase", "a burner phone", "a list of names"},
	"adventure":       {"a compass", "a half-burned map", "a key made of bone"},
	"comedy":          {"a rubber chicken", "a wrong delivery", "a prize-winning zucchini"},
	"drama":           {"a photo album", "a will", "a recipe card in a dead mother's hand"},
	"historical":      {"a seal", "a forbidden pamphlet", "a smuggled manuscript"},
}

var toneMoods = map[string][]string{
	"dark":        {"uneasy", "suffocating", "quietly menacing"},
	"light":       {"bright", "breezy", "sun-warmed"},
	"humorous":    {"absurd", "chaotic", "ridiculous"},
	"serious":     {"heavy", "solemn", "weighted with consequence"},
	"whimsical":   {"curious", "dreamlike", "topsy-turvy"},
	"tense":       {"tight", "restless", "one breath from breaking"},
	"hopeful":     {"warm", "tentative", "on the edge of a new start"},
	"melancholic": {"wistful", "faded", "full of things left unsaid"},
}

var toneConsequences = map[string][]string{
	"dark":     {"someone pays for it", "the truth costs a life", "nothing can be undone"},
	"light":    {"everyone learns something", "a friendship begins", "the town throws a party"},
	"humorous": {"chaos follows", "the plan backfires spectacularly", "a goat becomes mayor"},
	"tense":    {"the clock starts ticking", "the trap closes", "only one of them can leave"},
	"hopeful":  {"a second chance appears", "an enemy becomes an ally", "the drought finally breaks"},
}

var traitOpposites = map[string]string{
	"brave": "cowardly", "cowardly": "brave", "honest": "deceitful", "deceitful": "honest",
	"kind": "cruel", "cruel": "kind", "loyal": "treacherous", "treacherous": "loyal",
	"curious": "incurious", "cautious": "reckless", "reckless": "cautious",
	"shy": "bold", "bold": "shy", "proud": "humble", "humble": "proud",
	"stubborn": "yielding", "generous": "greedy", "greedy": "generous",
	"calm": "frantic", "patient": "impatient", "optimistic": "cynical", "cynical": "optimistic",
	"clever": "foolish", "lazy": "driven", "ambitious": "content",
}

var timeShifts = map[string][]string{
	"":         {"a day earlier", "ten years later", "on the night before it all began"},
	"medieval": {"a century later", "in the age of steam", "in a neon future that remembers it"},
	"modern":   {"a hundred years ago", "in a distant future", "the day before the first phone call"},
	"future":   {"in the present day", "at the dawn of the space age", "before the colonies were founded"},
}

var genericInversions = []string{
	"never happened", "happened to someone else", "was planned all along",
	"was the protagonist's own doing",
}

// #endregion genre-tables

// #region default-rules

// DefaultRules returns the built-in filler rules for the general-prompt path.
func DefaultRules() []Rule {
	return []Rule{
		{Slot: "character", Priority: 10, Category: CategoryGeneral, Fill: one(params.SimulatorParameters.CharacterName)},
		{Slot: "character", Priority: 5, Category: CategoryGeneral, Fill: byGenre(genreArchetypes)},
		{Slot: "archetype", Priority: 8, Category: CategoryGeneral, Fill: byGenre(genreArchetypes)},
		{Slot: "trait", Priority: 10, Category: CategoryGeneral, Fill: params.SimulatorParameters.Traits},
		{Slot: "opposite_trait", Priority: 8, Category: CategoryGeneral, Fill: oppositeTraits},
		{Slot: "place", Priority: 10, Category: CategoryGeneral, Fill: one(params.SimulatorParameters.Place)},
		{Slot: "place", Priority: 5, Category: CategoryGeneral, Fill: byGenre(genrePlaces)},
		{Slot: "era", Priority: 10, Category: CategoryGeneral, Fill: one(params.SimulatorParameters.Era)},
		{Slot: "mood", Priority: 10, Category: CategoryGeneral, Fill: one(params.SimulatorParameters.Mood)},
		{Slot: "mood", Priority: 5, Category: CategoryGeneral, Fill: byTone(toneMoods)},
		{Slot: "event", Priority: 10, Category: CategoryGeneral, Fill: one(eventPhrase)},
		{Slot: "genre", Priority: 10, Category: CategoryGeneral, Fill: one(genreName)},
		{Slot: "tone", Priority: 10, Category: CategoryGeneral, Fill: one(func(p params.SimulatorParameters) string { return p.Tone })},
		{Slot: "object", Priority: 6, Category: CategoryGeneral, Fill: byGenre(genreObjects)},
		{Slot: "theme", Priority: 10, Category: CategoryGeneral, Fill: func(p params.SimulatorParameters) []string { return p.ThemeKeywords }},
		{Slot: "perspective", Priority: 10, Category: CategoryGeneral, Fill: one(func(p params.SimulatorParameters) string { return p.Perspective })},
		{Slot: "antagonist", Priority: 6, Category: CategoryGeneral, Fill: byGenre(genreAntagonists)},
		{Slot: "consequence", Priority: 6, Category: "causal-branch", Fill: byTone(toneConsequences)},
		{Slot: "inversion", Priority: 6, Category: "constraint-inversion", Fill: func(params.SimulatorParameters) []string { return genericInversions }},
		{Slot: "role", Priority: 6, Category: "role-reversal", Fill: byGenre(genreAntagonists)},
		{Slot: "time_shift", Priority: 6, Category: "temporal-displacement", Fill: eraShifts},
	}
}

// DefaultFallbacks is the generic last-resort table. Slots missing here fail.
func DefaultFallbacks() map[string][]string {
	return map[string][]string{
		"character":   {"a stranger", "someone close to them", "the protagonist"},
		"archetype":   {"the outsider", "the reluctant hero", "the one who stayed behind"},
		"place":       {"a quiet town", "an abandoned house", "the place they swore never to return to"},
		"mood":        {"strange", "unsettled", "charged with something unspoken"},
		"object":      {"a key", "a photograph", "a letter with no return address"},
		"antagonist":  {"a rival", "an old enemy", "someone they trusted"},
		"consequence": {"everything changes", "the past catches up", "someone has to choose"},
		"role":        {"the villain", "the mentor", "the one who needs saving"},
		"time_shift":  {"a day earlier", "years later", "on the night it all began"},
		"inversion":   {"never happened", "happened in reverse"},
	}
}

// #endregion default-rules

// #region helpers

func one(get func(params.SimulatorParameters) string) FillFunc {
	return func(p params.SimulatorParameters) []string {
		if v := get(p); v != "" {
			return []string{v}
		}
		return nil
	}
}

func byGenre(table map[string][]string) FillFunc {
	return func(p params.SimulatorParameters) []string {
		return table[p.Genre]
	}
}

func byTone(table map[string][]string) FillFunc {
	return func(p params.SimulatorParameters) []string {
		return table[p.Tone]
	}
}

func oppositeTraits(p params.SimulatorParameters) []string {
	var out []string
	for _, t := range p.Traits() {
		if o, ok := traitOpposites[t]; ok {
			out = append(out, o)
		}
	}
	return out
}

// OppositeTrait returns the contrasting trait, or "not "+trait when unknown.
func OppositeTrait(trait string) string {
	if o, ok := traitOpposites[trait]; ok {
		return o
	}
	return "anything but " + trait
}

func eraShifts(p params.SimulatorParameters) []string {
	era := strings.ToLower(p.Era())
	for key, shifts := range timeShifts {
		if key != "" && strings.Contains(era, key) {
			return shifts
		}
	}
	return timeShifts[""]
}

func eventPhrase(p params.SimulatorParameters) string {
	return strings.TrimRight(p.Event, ".!?")
}

func genreName(p params.SimulatorParameters) string {
	return strings.ReplaceAll(p.Genre, "_", " ")
}

// #endregion helpers
