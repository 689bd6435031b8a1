// Package classification assigns accounting treatments to bank records using an
// ordered list of match rules.
package classification

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/Veraticus/paperwork-flow/internal/model"
	"github.com/Veraticus/paperwork-flow/internal/pattern"
)

// Definition is a match rule together with the result it assigns.
type Definition struct {
	Rule   model.MatchRule
	Result model.ClassificationResult
}

type compiledRule struct {
	matcher *pattern.Compiled
	result  model.ClassificationResult
}

// RuleSet is an ordered, append-only list of rules evaluated first-match-wins.
// All methods are safe for concurrent use; Add and AddAll take the write lock.
type RuleSet struct {
	rules []compiledRule
	mu    sync.RWMutex
}

// NewRuleSet compiles defs in order. Any invalid rule aborts construction.
func NewRuleSet(defs ...Definition) (*RuleSet, error) {
	s := &RuleSet{}
	if err := s.AddAll(defs); err != nil {
		return nil, err
	}
	return s, nil
}

// NewDefaultRuleSet returns a rule set loaded with DefaultRules.
func NewDefaultRuleSet() (*RuleSet, error) {
	return NewRuleSet(DefaultRules()...)
}

// Add appends a rule at the lowest priority.
func (s *RuleSet) Add(rule model.MatchRule, result model.ClassificationResult) error {
	return s.AddAll([]Definition{{Rule: rule, Result: result}})
}

// AddAll appends defs in order. Either every definition is added or none is.
func (s *RuleSet) AddAll(defs []Definition) error {
	compiled := make([]compiledRule, 0, len(defs))
	for i, def := range defs {
		m, err := pattern.Compile(def.Rule)
		if err != nil {
			return fmt.Errorf("rule %d: %w", i+1, err)
		}
		compiled = append(compiled, compiledRule{matcher: m, result: def.Result})
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range compiled {
		s.rules = append(s.rules, c)
		slog.Debug("Registered classification rule",
			"position", len(s.rules),
			"rule", c.matcher.Rule().String(),
			"category", c.result.Category)
	}

	return nil
}

// Classify returns the result of the first rule accepting the input, or the
// uncategorized result when none does. An empty description is never matched.
func (s *RuleSet) Classify(description string, amount *float64, direction *model.Direction) model.ClassificationResult {
	if description == "" {
		return model.Uncategorized()
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, r := range s.rules {
		if r.matcher.Matches(description, amount, direction) {
			return r.result
		}
	}

	return model.Uncategorized()
}

// ClassifyRecord classifies a bank record by its description, amount and direction.
func (s *RuleSet) ClassifyRecord(record model.BankRecord) model.ClassificationResult {
	return s.Classify(record.Description(), record.Amount(), record.Direction())
}

// RulesMatching returns every rule whose description pattern matches, in rule
// order. Amount and direction constraints are ignored.
func (s *RuleSet) RulesMatching(description string) []Definition {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matches []Definition
	for _, r := range s.rules {
		if r.matcher.MatchesDescription(description) {
			matches = append(matches, Definition{Rule: r.matcher.Rule(), Result: r.result})
		}
	}

	return matches
}

// Rules returns the registered definitions in evaluation order.
func (s *RuleSet) Rules() []Definition {
	s.mu.RLock()
	defer s.mu.RUnlock()

	defs := make([]Definition, 0, len(s.rules))
	for _, r := range s.rules {
		defs = append(defs, Definition{Rule: r.matcher.Rule(), Result: r.result})
	}
	return defs
}

// Len returns the number of registered rules.
func (s *RuleSet) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rules)
}
