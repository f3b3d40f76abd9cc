// Package templates renders user-facing replies from decision and
// compatibility results.
package templates

import "strings"

// #region tables
// Template tables. Placeholders are {name} tokens replaced by exact match.
var Confirmations = map[string]string{
	"no_change":      "I'm not sure which piece you mean. Could you be more specific about what you'd like to change?",
	"single_replace": "Done! I've swapped in the {item}.",
	"multiple":       "I've updated {count} items: {items}.",
	"added":          "I've added the {item} to your outfit.",
	"removed":        "I've taken off the {items}.",
	"regenerated":    "Here's a fresh outfit built around {items}.",
	"undo":           "Went back to your previous outfit.",
	"redo":           "Brought back the outfit you undid.",
	"cleared":        "Cleared your outfit. Let's start fresh!",
	"cancelled":      "No problem, I've left your outfit as it was.",
	"answered":       "Thanks! Tell me what you'd like instead and I'll update the look.",
	"advice":         "Here's what I think of your current outfit.",
	"noted":          "Got it, I'll keep that in mind for your looks.",
}

var Clarifications = map[string]string{
	"generic":                  "Could you tell me a bit more about what you'd like?",
	"incomplete_outfit_empty":  "Removing {item} would leave you with nothing to wear. Would you like to replace it instead?",
	"incomplete_outfit":        "Removing {items} leaves the outfit incomplete. Do you want to continue?",
	"impossible_combination":   "A {one_piece} already covers top and bottom, so it can't be worn with {separates}. Which would you prefer?",
	"ambiguous_name":           "Which kind of {word} did you have in mind?",
	"conflicting_instructions": "I got two different requests: {first} or {second}. Which one should I go with?",
	"multiple_interpretations": "I see more than one {color} piece in your outfit. Which one do you mean?",
	"unknown_term":             "I'm not familiar with \"{term}\". Can you describe it?",
}

var Suggestions = map[string]string{
	"generic":      "Consider {title}: {description}",
	"upgrade":      "Try upgrading the {item} to match the rest of the look.",
	"coordination": "A neutral piece would tie these colors together.",
	"style":        "{description}",
	"accessory":    "An accessory like {item} could finish the look.",
}

var Errors = map[string]string{
	"generic":         "Sorry, I didn't quite catch that. Could you rephrase?",
	"nothing_to_undo": "There's nothing to undo yet.",
	"nothing_to_redo": "There's nothing to redo.",
	"internal":        "Something went wrong on my side. Your outfit hasn't changed.",
}

// Follow-up prompts.
const incompletePrompt = "Add a few more pieces to complete the look!"

var completionPrompts = []string{
	"Want to add an accessory to finish it off?",
	"How about trying different shoes with this?",
	"Would you like a jacket or layer on top?",
	"Happy with this look, or should we keep styling?",
}

// WarningMarker prefixes each compatibility warning line.
const WarningMarker = "⚠️"

// #endregion tables

// #region fill
// Fill substitutes {key} tokens in tmpl. Tokens without a value are left
// as they are.
func Fill(tmpl string, vars map[string]string) string {
	if len(vars) == 0 {
		return tmpl
	}
	pairs := make([]string, 0, len(vars)*2)
	for k, v := range vars {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(tmpl)
}

func lookup(table map[string]string, key string, fallback string, vars map[string]string) string {
	tmpl, ok := table[key]
	if !ok {
		tmpl = fallback
	}
	return Fill(tmpl, vars)
}

// Confirmation renders a confirmation template. Unknown keys fall back to
// the generic error.
func Confirmation(key string, vars map[string]string) string {
	return lookup(Confirmations, key, Errors["generic"], vars)
}

// Clarification renders a clarification. Unknown keys fall back to the
// generic clarification.
func Clarification(key string, vars map[string]string) string {
	return lookup(Clarifications, key, Clarifications["generic"], vars)
}

// Suggestion renders a suggestion. Unknown keys use the generic form.
func Suggestion(key string, vars map[string]string) string {
	return lookup(Suggestions, key, Suggestions["generic"], vars)
}

// Error renders an error. Unknown keys fall back to the generic error.
func Error(key string, vars map[string]string) string {
	return lookup(Errors, key, Errors["generic"], vars)
}

// #endregion fill
