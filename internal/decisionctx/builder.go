// Package decisionctx builds the decision context string handed verbatim
// to the image-generation step. Sections render in a fixed order and the
// output format is a wire contract: change it only together with the
// consumer that parses it.
package decisionctx

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/danielpatrickdp/outfit-state/go-stylist/internal/compat"
	"github.com/danielpatrickdp/outfit-state/go-stylist/internal/decision"
	"github.com/danielpatrickdp/outfit-state/go-stylist/internal/outfit"
	"github.com/danielpatrickdp/outfit-state/go-stylist/internal/request"
	"github.com/danielpatrickdp/outfit-state/go-stylist/internal/session"
)

// #region sections
// Section identifies one block of the context.
type Section int

const (
	SectionClassification Section = iota
	SectionOutfit
	SectionDecision
	SectionChecks
	SectionClarification
	numSections
)

var sectionTitles = [numSections]string{
	"Request Classification",
	"Current Outfit State",
	"Decision Result",
	"Compatibility Checks",
	"Clarification Requested",
}

// Title returns the heading text of s.
func (s Section) Title() string {
	if s < 0 || s >= numSections {
		return ""
	}
	return sectionTitles[s]
}

// Field is one key:value line. Values that are nil, empty strings, or
// empty collections are skipped.
type Field struct {
	Key   string
	Value any
}

// QuotedList renders as a bracketed list of double-quoted strings instead
// of the comma-joined form other lists get.
type QuotedList []string

// RemoveInstruction is the imperative line added when a decision removes
// items.
const RemoveInstruction = "REMOVE these items completely from the image. Do not keep, blend, or partially show them: "

// #endregion sections

// #region builder
// Builder accumulates sections. Setting a section twice replaces it. The
// zero value is ready to use.
type Builder struct {
	sections [numSections]string
}

// New returns an empty Builder.
func New() *Builder { return &Builder{} }

// Set renders fields into section s. A section whose fields are all empty
// is dropped from the output.
func (b *Builder) Set(s Section, fields ...Field) *Builder {
	if s < 0 || s >= numSections {
		return b
	}
	b.sections[s] = renderSection(s.Title(), fields)
	return b
}

// Classification renders the request classification section.
func (b *Builder) Classification(c request.Classification) *Builder {
	return b.Set(SectionClassification,
		Field{"type", string(c.Type)},
		Field{"confidence", fmt.Sprintf("%.2f", c.Confidence)},
		Field{"items", outfit.Names(c.Entities.Items)},
		Field{"itemsToRemove", c.Entities.ItemsToRemove},
		Field{"colors", c.Entities.Colors},
		Field{"occasion", c.Entities.Occasion},
		Field{"season", c.Entities.Season},
		Field{"unknownTerms", c.Entities.UnknownTerms},
	)
}

// Outfit renders the current outfit section, followed by whatever the user
// has told us about their taste.
func (b *Builder) Outfit(items []outfit.Item, prefs session.Preferences) *Builder {
	fields := []Field{
		{"state", string(outfit.ClassifyState(items))},
		{"itemCount", len(items)},
	}
	if len(items) > 0 {
		fields = append(fields,
			Field{"items", outfit.Names(items)},
			Field{"zones", zoneCounts(items)},
			Field{"details", items},
		)
	}
	patterns := make([]string, len(prefs.Patterns))
	for i, p := range prefs.Patterns {
		patterns[i] = string(p)
	}
	fields = append(fields,
		Field{"favoriteColors", prefs.FavoriteColors},
		Field{"avoidColors", prefs.AvoidColors},
		Field{"preferredPatterns", patterns},
		Field{"styles", prefs.Styles},
		Field{"brands", prefs.Brands},
		Field{"occasion", prefs.Occasion},
	)
	return b.Set(SectionOutfit, fields...)
}

// Decision renders the decision section. Removals get the quoted list,
// the replacement flag and the removal instruction, and the quoted list
// is repeated as a trailing line.
func (b *Builder) Decision(r decision.Result) *Builder {
	fields := []Field{
		{"action", string(r.Action)},
		{"reasoning", r.Reasoning},
		{"itemsToAdd", outfit.Names(r.ItemsToAdd)},
	}
	if r.Regenerate {
		fields = append(fields, Field{"regenerate", true})
	}
	removing := outfit.Names(r.ItemsToRemove)
	if len(removing) > 0 {
		fields = append(fields,
			Field{"itemsToRemove", QuotedList(removing)},
			Field{"replacementOperation", true},
			Field{"instruction", RemoveInstruction + strings.Join(removing, ", ")},
		)
	}
	b.Set(SectionDecision, fields...)
	if len(removing) > 0 {
		b.sections[SectionDecision] += "\n" + line("itemsToRemove", QuotedList(removing))
	}
	return b
}

// Checks renders one line per checker plus the issue messages.
func (b *Builder) Checks(checks []compat.Check) *Builder {
	var fields []Field
	var issues, suggestions []string
	for _, c := range checks {
		status := "passed"
		if !c.Passed {
			status = "failed"
		}
		fields = append(fields, Field{string(c.Rule), status})
		for _, is := range c.Issues {
			issues = append(issues, fmt.Sprintf("%s (%s)", is.Message, is.Severity))
		}
		for _, s := range c.Suggestions {
			suggestions = append(suggestions, s.Title)
		}
	}
	fields = append(fields, Field{"issues", issues}, Field{"suggestions", suggestions})
	return b.Set(SectionChecks, fields...)
}

// Clarification renders the pending clarification. nil clears the section.
func (b *Builder) Clarification(c *session.Clarification) *Builder {
	if c == nil {
		b.sections[SectionClarification] = ""
		return b
	}
	labels := make([]string, len(c.Options))
	for i, o := range c.Options {
		labels[i] = o.Label
	}
	return b.Set(SectionClarification,
		Field{"scenario", c.Scenario},
		Field{"question", c.Question},
		Field{"options", labels},
	)
}

// String joins the non-empty sections with a blank line.
func (b *Builder) String() string {
	parts := make([]string, 0, numSections)
	for _, s := range b.sections {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.TrimRight(strings.Join(parts, "\n\n"), " \t\r\n")
}

// #endregion builder

// #region render
func renderSection(title string, fields []Field) string {
	lines := make([]string, 0, len(fields))
	for _, f := range fields {
		if isEmpty(f.Value) {
			continue
		}
		lines = append(lines, line(f.Key, f.Value))
	}
	if len(lines) == 0 {
		return ""
	}
	return "[" + title + "]\n" + strings.Join(lines, "\n")
}

func line(key string, v any) string {
	return key + ": " + renderValue(v)
}

func renderValue(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case QuotedList:
		return toJSON([]string(x))
	case []string:
		return strings.Join(x, ", ")
	case fmt.Stringer:
		return x.String()
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Bool, reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return fmt.Sprint(v)
	case reflect.String:
		return rv.String()
	}
	return toJSON(v)
}

func toJSON(v any) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Sprint(v)
	}
	return strings.TrimRight(buf.String(), "\n")
}

func isEmpty(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String, reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len() == 0
	case reflect.Pointer, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

func zoneCounts(items []outfit.Item) map[string]int {
	out := make(map[string]int)
	for z, n := range outfit.ZoneCounts(items) {
		if n > 0 && z != "" {
			out[string(z)] = n
		}
	}
	return out
}

// #endregion render
