// Package model defines the core data structures for the paperwork application.
package model

import (
	"fmt"
	"strings"
)

// PatternKind distinguishes literal description text from regular expressions.
type PatternKind string

// Pattern kinds.
const (
	PatternLiteral PatternKind = "literal"
	PatternRegex   PatternKind = "regex"
)

// DescriptionPattern is the description constraint of a match rule.
// Literal text is escaped before matching; both kinds match anywhere in the description.
type DescriptionPattern struct {
	Kind          PatternKind
	Text          string
	CaseSensitive bool
}

// Literal returns a case-insensitive literal pattern.
func Literal(text string) *DescriptionPattern {
	return &DescriptionPattern{Kind: PatternLiteral, Text: text}
}

// Regex returns a case-insensitive regular expression pattern.
func Regex(expr string) *DescriptionPattern {
	return &DescriptionPattern{Kind: PatternRegex, Text: expr}
}

// AmountConditionType represents the type of amount comparison.
type AmountConditionType string

// Amount condition constants.
const (
	AmountLessThan     AmountConditionType = "lt"
	AmountLessEqual    AmountConditionType = "le"
	AmountEqual        AmountConditionType = "eq"
	AmountGreaterEqual AmountConditionType = "ge"
	AmountGreaterThan  AmountConditionType = "gt"
	AmountRange        AmountConditionType = "range"
	AmountAny          AmountConditionType = "any"
)

// AmountTolerance is the maximum difference for an exact amount match.
const AmountTolerance = 0.01

// AmountCondition constrains the absolute amount of a bank record.
type AmountCondition struct {
	Condition AmountConditionType
	Value     float64
	Min       float64
	Max       float64
}

// ExactAmount matches amounts within AmountTolerance of v.
func ExactAmount(v float64) *AmountCondition {
	return &AmountCondition{Condition: AmountEqual, Value: v}
}

// AmountAtMost matches amounts less than or equal to v.
func AmountAtMost(v float64) *AmountCondition {
	return &AmountCondition{Condition: AmountLessEqual, Value: v}
}

// AmountAtLeast matches amounts greater than or equal to v.
func AmountAtLeast(v float64) *AmountCondition {
	return &AmountCondition{Condition: AmountGreaterEqual, Value: v}
}

// AmountBetween matches amounts in the inclusive range [lo, hi].
func AmountBetween(lo, hi float64) *AmountCondition {
	return &AmountCondition{Condition: AmountRange, Min: lo, Max: hi}
}

func (c AmountCondition) String() string {
	switch c.Condition {
	case AmountEqual:
		return fmt.Sprintf("= %.2f", c.Value)
	case AmountLessThan:
		return fmt.Sprintf("< %.2f", c.Value)
	case AmountLessEqual:
		return fmt.Sprintf("<= %.2f", c.Value)
	case AmountGreaterEqual:
		return fmt.Sprintf(">= %.2f", c.Value)
	case AmountGreaterThan:
		return fmt.Sprintf("> %.2f", c.Value)
	case AmountRange:
		return fmt.Sprintf("%.2f..%.2f", c.Min, c.Max)
	default:
		return "any"
	}
}

// MatchRule is a conjunction of optional constraints on a bank record.
// A nil constraint matches everything; a rule with no constraints is a catch-all.
type MatchRule struct {
	Description *DescriptionPattern
	Amount      *AmountCondition
	Direction   *Direction
	Name        string
}

// String renders the rule's constraints for listings.
func (r MatchRule) String() string {
	var parts []string
	if r.Description != nil {
		if r.Description.Kind == PatternRegex {
			parts = append(parts, fmt.Sprintf("/%s/", r.Description.Text))
		} else {
			parts = append(parts, fmt.Sprintf("%q", r.Description.Text))
		}
	}
	if r.Amount != nil {
		parts = append(parts, "amount "+r.Amount.String())
	}
	if r.Direction != nil {
		parts = append(parts, string(*r.Direction))
	}
	if len(parts) == 0 {
		return "*"
	}
	return strings.Join(parts, " ")
}
