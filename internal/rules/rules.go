// Package rules holds the keyword tables that drive outfit classification.
// The defaults are baked into the binary from rules.yaml; a replacement file
// can be loaded at startup without touching checker code.
package rules

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/danielpatrickdp/outfit-state/go-stylist/internal/outfit"
)

//go:embed rules.yaml
var embeddedRules []byte

// #region types

// Tables is the full rule set.
type Tables struct {
	Colors    ColorTable     `yaml:"colors"`
	Formality FormalityTable `yaml:"formality"`
	Patterns  PatternTable   `yaml:"patterns"`
	Seasons   SeasonTable    `yaml:"seasons"`
	EdgeCases EdgeCaseTable  `yaml:"edge_cases"`
	Garments  GarmentTable   `yaml:"garments"`

	colorMatchers   []wordMatcher
	garmentMatchers []garmentMatcher
}

type ColorTable struct {
	Vocabulary    []string   `yaml:"vocabulary"`
	Neutrals      []string   `yaml:"neutrals"`
	Brights       []string   `yaml:"brights"`
	Clashes       [][]string `yaml:"clashes"`
	MaxBright     int        `yaml:"max_bright"`
	DominantCount int        `yaml:"dominant_count"`
}

type FormalityLevel struct {
	Level    int      `yaml:"level"`
	Label    string   `yaml:"label"`
	Keywords []string `yaml:"keywords"`

	matchers []wordMatcher
}

type FormalityTable struct {
	DefaultLevel int              `yaml:"default_level"`
	Levels       []FormalityLevel `yaml:"levels"`
	MaxGap       int              `yaml:"max_gap"`
}

type PatternRule struct {
	Pattern outfit.Pattern `yaml:"pattern"`
	Regex   string         `yaml:"regex"`

	re *regexp.Regexp
}

type PatternTable struct {
	Rules           []PatternRule      `yaml:"rules"`
	Busy            []outfit.Pattern   `yaml:"busy"`
	CompatiblePairs [][]outfit.Pattern `yaml:"compatible_pairs"`
}

type SeasonTag struct {
	Keywords []string `yaml:"keywords"`
	Seasons  []string `yaml:"seasons"`

	matchers []wordMatcher
}

type SeasonTable struct {
	Precedence     []string    `yaml:"precedence"`
	Tags           []SeasonTag `yaml:"tags"`
	HeavyOuterwear []string    `yaml:"heavy_outerwear"`
	Shorts         []string    `yaml:"shorts"`
	Tank           []string    `yaml:"tank"`
	Scarf          []string    `yaml:"scarf"`
}

type EdgeCaseTable struct {
	Removal          []string            `yaml:"removal"`
	AmbiguousWords   []string            `yaml:"ambiguous_words"`
	Qualifiers       []string            `yaml:"qualifiers"`
	Pronouns         []string            `yaml:"pronouns"`
	AmbiguousOptions map[string][]string `yaml:"ambiguous_options"`
}

type GarmentTable struct {
	Zones       map[outfit.Zone][]string `yaml:"zones"`
	Descriptors []string                 `yaml:"descriptors"`
}

type garmentMatcher struct {
	wordMatcher
	zone outfit.Zone
}

// GarmentMatch is one garment phrase found in free text.
type GarmentMatch struct {
	Phrase string
	Zone   outfit.Zone
	Start  int
	End    int
}

// #endregion types

// #region loading

var (
	defaultOnce   sync.Once
	defaultTables *Tables
)

// Default returns the embedded rule set. It panics only if the embedded
// YAML is broken, which is a build defect.
func Default() *Tables {
	defaultOnce.Do(func() {
		t, err := Parse(embeddedRules)
		if err != nil {
			panic(fmt.Sprintf("embedded rules: %v", err))
		}
		defaultTables = t
	})
	return defaultTables
}

// LoadFile reads a replacement rule set from disk.
func LoadFile(path string) (*Tables, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules %s: %w", path, err)
	}
	t, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse rules %s: %w", path, err)
	}
	return t, nil
}

// LoadOrDefault loads path when set, otherwise the embedded defaults.
func LoadOrDefault(path string) (*Tables, error) {
	if path == "" {
		return Default(), nil
	}
	return LoadFile(path)
}

// Parse decodes YAML rules and compiles their matchers.
func Parse(data []byte) (*Tables, error) {
	var t Tables
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("unmarshal rules: %w", err)
	}
	if err := t.compile(); err != nil {
		return nil, err
	}
	return &t, nil
}

func (t *Tables) compile() error {
	t.colorMatchers = make([]wordMatcher, len(t.Colors.Vocabulary))
	for i, c := range t.Colors.Vocabulary {
		t.colorMatchers[i] = newWordMatcher(c, false)
	}
	for i := range t.Formality.Levels {
		lvl := &t.Formality.Levels[i]
		lvl.matchers = newWordMatchers(lvl.Keywords)
	}
	for i := range t.Patterns.Rules {
		r := &t.Patterns.Rules[i]
		re, err := regexp.Compile("(?i)" + r.Regex)
		if err != nil {
			return fmt.Errorf("compile pattern %s: %w", r.Pattern, err)
		}
		r.re = re
	}
	for i := range t.Seasons.Tags {
		tag := &t.Seasons.Tags[i]
		tag.matchers = newWordMatchers(tag.Keywords)
	}
	t.garmentMatchers = t.garmentMatchers[:0]
	for _, z := range outfit.Zones {
		for _, w := range t.Garments.Zones[z] {
			t.garmentMatchers = append(t.garmentMatchers, garmentMatcher{newWordMatcher(w, true), z})
		}
	}
	// longer phrases claim their span first ("tank top" before "top")
	sort.SliceStable(t.garmentMatchers, func(i, j int) bool {
		return len(t.garmentMatchers[i].word) > len(t.garmentMatchers[j].word)
	})
	if t.Colors.DominantCount <= 0 {
		t.Colors.DominantCount = 3
	}
	return nil
}

// #endregion loading

// #region word-matching

// wordMatcher does case-insensitive whole-word matching. Plural keywords
// tolerate an optional trailing "s"/"es".
type wordMatcher struct {
	word string
	re   *regexp.Regexp
}

func newWordMatcher(word string, plural bool) wordMatcher {
	expr := `(?i)\b` + regexp.QuoteMeta(strings.ToLower(word))
	if plural {
		expr += `(?:s|es)?`
	}
	return wordMatcher{word: word, re: regexp.MustCompile(expr + `\b`)}
}

func newWordMatchers(words []string) []wordMatcher {
	out := make([]wordMatcher, len(words))
	for i, w := range words {
		out[i] = newWordMatcher(w, true)
	}
	return out
}

func anyMatch(ms []wordMatcher, text string) bool {
	for _, m := range ms {
		if m.re.MatchString(text) {
			return true
		}
	}
	return false
}

// ContainsWord reports whether text contains word as a whole word, ignoring case.
func ContainsWord(text, word string) bool {
	return newWordMatcher(word, false).re.MatchString(text)
}

// ContainsAnyWord reports whether text contains any of words as whole words.
func ContainsAnyWord(text string, words []string) (string, bool) {
	for _, w := range words {
		if ContainsWord(text, w) {
			return w, true
		}
	}
	return "", false
}

// #endregion word-matching

// #region lookups

// ColorsIn returns vocabulary colors found in text, in order of appearance.
func (t *Tables) ColorsIn(text string) []string {
	type hit struct {
		color string
		pos   int
	}
	var hits []hit
	for _, m := range t.colorMatchers {
		if loc := m.re.FindStringIndex(text); loc != nil {
			hits = append(hits, hit{strings.ToLower(m.word), loc[0]})
		}
	}
	// insertion sort keeps this stable and the list is tiny
	for i := 1; i < len(hits); i++ {
		for j := i; j > 0 && hits[j].pos < hits[j-1].pos; j-- {
			hits[j], hits[j-1] = hits[j-1], hits[j]
		}
	}
	out := make([]string, len(hits))
	for i, h := range hits {
		out[i] = h.color
	}
	return out
}

// IsNeutral reports whether c is in the neutral set.
func (t *Tables) IsNeutral(c string) bool { return containsFold(t.Colors.Neutrals, c) }

// IsBright reports whether c is in the bright set.
func (t *Tables) IsBright(c string) bool { return containsFold(t.Colors.Brights, c) }

// Clashes reports whether a and b form a clashing pair in either order.
func (t *Tables) Clashes(a, b string) bool {
	for _, pair := range t.Colors.Clashes {
		if len(pair) != 2 {
			continue
		}
		if (strings.EqualFold(pair[0], a) && strings.EqualFold(pair[1], b)) ||
			(strings.EqualFold(pair[0], b) && strings.EqualFold(pair[1], a)) {
			return true
		}
	}
	return false
}

// FormalityFor returns the first level whose keywords match text.
func (t *Tables) FormalityFor(text string) (FormalityLevel, bool) {
	for _, lvl := range t.Formality.Levels {
		if anyMatch(lvl.matchers, text) {
			return lvl, true
		}
	}
	return FormalityLevel{}, false
}

// PatternFor returns the first pattern whose regex matches text, or solid.
func (t *Tables) PatternFor(text string) outfit.Pattern {
	for _, r := range t.Patterns.Rules {
		if r.re != nil && r.re.MatchString(text) {
			return r.Pattern
		}
	}
	return outfit.PatternSolid
}

// IsBusy reports whether p is in the busy pattern set.
func (t *Tables) IsBusy(p outfit.Pattern) bool {
	for _, b := range t.Patterns.Busy {
		if b == p {
			return true
		}
	}
	return false
}

// ExplicitlyCompatible reports whether a and b are a listed compatible pair.
func (t *Tables) ExplicitlyCompatible(a, b outfit.Pattern) bool {
	for _, pair := range t.Patterns.CompatiblePairs {
		if len(pair) != 2 {
			continue
		}
		if (pair[0] == a && pair[1] == b) || (pair[0] == b && pair[1] == a) {
			return true
		}
	}
	return false
}

// SeasonsFor returns the union of season tags whose keywords match text,
// in first-seen order. Empty when nothing matches.
func (t *Tables) SeasonsFor(text string) []string {
	var out []string
	seen := map[string]bool{}
	for _, tag := range t.Seasons.Tags {
		if !anyMatch(tag.matchers, text) {
			continue
		}
		for _, s := range tag.Seasons {
			if !seen[s] {
				seen[s] = true
				out = append(out, s)
			}
		}
	}
	return out
}

// MatchesAny reports whether text contains any keyword as a whole word
// (plural tolerant).
func MatchesAny(text string, keywords []string) bool {
	return anyMatch(newWordMatchers(keywords), text)
}

// GarmentsIn finds non-overlapping garment phrases in text, ordered by
// position.
func (t *Tables) GarmentsIn(text string) []GarmentMatch {
	var out []GarmentMatch
	taken := func(start, end int) bool {
		for _, m := range out {
			if start < m.End && end > m.Start {
				return true
			}
		}
		return false
	}
	for _, gm := range t.garmentMatchers {
		for _, loc := range gm.re.FindAllStringIndex(text, -1) {
			if taken(loc[0], loc[1]) {
				continue
			}
			out = append(out, GarmentMatch{Phrase: gm.word, Zone: gm.zone, Start: loc[0], End: loc[1]})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	return out
}

// IsDescriptor reports whether word is a color or a garment descriptor.
func (t *Tables) IsDescriptor(word string) bool {
	return containsFold(t.Colors.Vocabulary, word) || containsFold(t.Garments.Descriptors, word)
}

// AmbiguousOptions returns the concrete garments offered for a vague word.
func (t *Tables) AmbiguousOptions(word string) []string {
	return t.EdgeCases.AmbiguousOptions[strings.ToLower(word)]
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}

// #endregion lookups
