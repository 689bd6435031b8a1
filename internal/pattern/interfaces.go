// Package pattern compiles bank record match rules and evaluates them.
package pattern

import "github.com/Veraticus/paperwork-flow/internal/model"

// Matcher evaluates a single bank record against a rule.
type Matcher interface {
	// Matches reports whether every constraint of the rule accepts the input.
	Matches(description string, amount *float64, direction *model.Direction) bool
	// MatchesDescription evaluates the description constraint only.
	MatchesDescription(description string) bool
}
