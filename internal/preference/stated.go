package preference

import (
	"sort"
	"strings"

	"github.com/danielpatrickdp/outfit-state/go-stylist/internal/outfit"
	"github.com/danielpatrickdp/outfit-state/go-stylist/internal/rules"
	"github.com/danielpatrickdp/outfit-state/go-stylist/internal/session"
)

// #region phrases

var likedPhrases = []string{
	"i love", "i like", "i prefer", "i'm into", "im into", "i really like",
	"my favorite", "my favourite", "more of",
}

var dislikedPhrases = []string{
	"i hate", "i don't like", "i dont like", "i do not like", "i can't stand",
	"i cant stand", "not a fan of", "i never wear", "no more", "i dislike",
}

// clauseEnds stop a stated preference.
var clauseEnds = []string{".", ";", "!", "?", " but ", " and i "}

// #endregion phrases

// #region detect

type statement struct {
	at, end int
	signal  Signal
}

// DetectStated extracts colors and patterns the message says the user
// likes or dislikes. Each phrase covers the text up to the next phrase or
// clause end. UserID and CreatedAt are left for the caller.
func DetectStated(message string, tables *rules.Tables) []Feedback {
	if tables == nil {
		tables = rules.Default()
	}
	lower := strings.ToLower(message)
	if strings.TrimSpace(lower) == "" {
		return nil
	}

	var marks []statement
	find := func(phrases []string, sig Signal) {
		for _, p := range phrases {
			from := 0
			for {
				i := strings.Index(lower[from:], p)
				if i < 0 {
					break
				}
				at := from + i
				marks = append(marks, statement{at: at, end: at + len(p), signal: sig})
				from = at + len(p)
			}
		}
	}
	find(likedPhrases, SignalLiked)
	find(dislikedPhrases, SignalDisliked)
	if len(marks) == 0 {
		return nil
	}
	sort.Slice(marks, func(a, b int) bool { return marks[a].at < marks[b].at })

	var out []Feedback
	seen := map[string]bool{}
	add := func(kind Kind, value string, sig Signal) {
		key := string(kind) + "|" + value
		if seen[key] {
			return
		}
		seen[key] = true
		out = append(out, Feedback{Kind: kind, Value: value, Signal: sig})
	}
	lastEnd := 0
	for i, m := range marks {
		if m.at < lastEnd {
			continue // overlapping phrase, e.g. "more of" inside "no more of"
		}
		lastEnd = m.end
		stop := len(lower)
		for _, n := range marks[i+1:] {
			if n.at >= m.end {
				stop = n.at
				break
			}
		}
		clause := lower[m.end:stop]
		for _, sep := range clauseEnds {
			if j := strings.Index(clause, sep); j >= 0 {
				clause = clause[:j]
			}
		}
		for _, c := range tables.ColorsIn(clause) {
			add(KindColor, c, m.signal)
		}
		if p := tables.PatternFor(clause); p != outfit.PatternSolid {
			add(KindPattern, string(p), m.signal)
		}
	}
	return out
}

// #endregion detect

// #region apply

// ApplyStated folds stated feedback into p and returns the partial to pass
// to UpdateUserPreferences. A liked color leaves the avoid list and the
// reverse; a disliked pattern leaves the preferred patterns.
func ApplyStated(p session.Preferences, fb []Feedback) session.Preferences {
	fav := append([]string{}, p.FavoriteColors...)
	avoid := append([]string{}, p.AvoidColors...)
	patterns := append([]outfit.Pattern{}, p.Patterns...)

	for _, f := range fb {
		v := strings.ToLower(strings.TrimSpace(f.Value))
		switch {
		case f.Kind == KindColor && f.Signal == SignalLiked:
			fav, avoid = addValue(fav, v), dropValue(avoid, v)
		case f.Kind == KindColor && f.Signal == SignalDisliked:
			avoid, fav = addValue(avoid, v), dropValue(fav, v)
		case f.Kind == KindPattern && f.Signal == SignalLiked:
			if !hasPattern(patterns, outfit.Pattern(v)) {
				patterns = append(patterns, outfit.Pattern(v))
			}
		case f.Kind == KindPattern && f.Signal == SignalDisliked:
			kept := patterns[:0]
			for _, x := range patterns {
				if x != outfit.Pattern(v) {
					kept = append(kept, x)
				}
			}
			patterns = kept
		}
	}
	return session.Preferences{FavoriteColors: fav, AvoidColors: avoid, Patterns: patterns}
}

func addValue(list []string, v string) []string {
	for _, x := range list {
		if x == v {
			return list
		}
	}
	return append(list, v)
}

func dropValue(list []string, v string) []string {
	out := list[:0]
	for _, x := range list {
		if x != v {
			out = append(out, x)
		}
	}
	return out
}

func hasPattern(list []outfit.Pattern, p outfit.Pattern) bool {
	for _, x := range list {
		if x == p {
			return true
		}
	}
	return false
}

// #endregion apply
