package pattern

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/Veraticus/paperwork-flow/internal/common"
	"github.com/Veraticus/paperwork-flow/internal/model"
)

// Compiled is a match rule with its description pattern pre-compiled.
// It is immutable and safe for concurrent use.
type Compiled struct {
	re   *regexp.Regexp
	rule model.MatchRule
}

var _ Matcher = (*Compiled)(nil)

// Compile validates a rule and prepares it for matching. Invalid regular
// expressions, amounts and directions are reported as common.ErrInvalidRule.
func Compile(rule model.MatchRule) (*Compiled, error) {
	c := &Compiled{rule: rule}

	if rule.Description != nil {
		re, err := compileDescription(*rule.Description)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", common.ErrInvalidRule, ruleLabel(rule), err)
		}
		c.re = re
	}

	if rule.Amount != nil {
		if err := validateAmount(*rule.Amount); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", common.ErrInvalidRule, ruleLabel(rule), err)
		}
	}

	if rule.Direction != nil {
		d, err := model.ParseDirection(string(*rule.Direction))
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", common.ErrInvalidRule, ruleLabel(rule), err)
		}
		c.rule.Direction = &d
	}

	return c, nil
}

// Rule returns the rule this matcher was compiled from.
func (c *Compiled) Rule() model.MatchRule {
	return c.rule
}

// Matches reports whether description, amount and direction all satisfy the rule.
func (c *Compiled) Matches(description string, amount *float64, direction *model.Direction) bool {
	if !c.MatchesDescription(description) {
		return false
	}

	if !matchesAmount(c.rule.Amount, amount) {
		return false
	}

	return matchesDirection(c.rule.Direction, direction)
}

// MatchesDescription searches the description for the rule's pattern. A rule
// without a description pattern matches any description.
func (c *Compiled) MatchesDescription(description string) bool {
	if c.re == nil {
		return true
	}
	return c.re.MatchString(description)
}

func compileDescription(p model.DescriptionPattern) (*regexp.Regexp, error) {
	if p.Text == "" {
		return nil, errors.New("empty description pattern")
	}

	var expr string
	switch p.Kind {
	case model.PatternLiteral, "":
		expr = regexp.QuoteMeta(p.Text)
	case model.PatternRegex:
		expr = p.Text
	default:
		return nil, fmt.Errorf("unknown pattern kind %q", p.Kind)
	}

	if !p.CaseSensitive {
		expr = "(?i)" + expr
	}

	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", p.Text, err)
	}
	return re, nil
}

func validateAmount(c model.AmountCondition) error {
	finite := func(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }

	switch c.Condition {
	case model.AmountAny:
		return nil
	case model.AmountEqual, model.AmountLessThan, model.AmountLessEqual,
		model.AmountGreaterEqual, model.AmountGreaterThan:
		if !finite(c.Value) || c.Value < 0 {
			return fmt.Errorf("amount %v is not a non-negative number", c.Value)
		}
		return nil
	case model.AmountRange:
		if !finite(c.Min) || !finite(c.Max) || c.Min < 0 {
			return fmt.Errorf("amount range %v..%v is not numeric", c.Min, c.Max)
		}
		if c.Min > c.Max {
			return fmt.Errorf("amount range minimum %v exceeds maximum %v", c.Min, c.Max)
		}
		return nil
	default:
		return fmt.Errorf("unknown amount condition %q", c.Condition)
	}
}

// matchesAmount compares the absolute input amount with the condition. A missing
// condition or a missing input amount always matches.
func matchesAmount(cond *model.AmountCondition, amount *float64) bool {
	if cond == nil || amount == nil {
		return true
	}

	v := math.Abs(*amount)
	if math.IsNaN(v) {
		return false
	}

	switch cond.Condition {
	case model.AmountAny:
		return true
	case model.AmountEqual:
		return math.Abs(v-cond.Value) < model.AmountTolerance
	case model.AmountLessThan:
		return v < cond.Value
	case model.AmountLessEqual:
		return v <= cond.Value
	case model.AmountGreaterEqual:
		return v >= cond.Value
	case model.AmountGreaterThan:
		return v > cond.Value
	case model.AmountRange:
		return v >= cond.Min && v <= cond.Max
	}

	return false
}

// matchesDirection is true when either side leaves the direction unspecified.
func matchesDirection(want, got *model.Direction) bool {
	if want == nil || got == nil {
		return true
	}
	return *want == *got
}

func ruleLabel(rule model.MatchRule) string {
	if rule.Name != "" {
		return fmt.Sprintf("rule %q", rule.Name)
	}
	return "rule " + strings.TrimSpace(rule.String())
}
