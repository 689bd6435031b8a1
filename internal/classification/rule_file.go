package classification

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Veraticus/paperwork-flow/internal/common"
	"github.com/Veraticus/paperwork-flow/internal/model"
)

// ruleFile is the on-disk YAML layout of additional classification rules.
type ruleFile struct {
	Rules []ruleEntry `yaml:"rules"`
}

type ruleEntry struct {
	Amount          *string     `yaml:"amount"`
	AmountMin       *string     `yaml:"amount_min"`
	AmountMax       *string     `yaml:"amount_max"`
	Name            string      `yaml:"name"`
	Pattern         string      `yaml:"pattern"`
	AmountCondition string      `yaml:"amount_condition"`
	Direction       string      `yaml:"direction"`
	Result          resultEntry `yaml:"result"`
	Regex           bool        `yaml:"regex"`
	CaseSensitive   bool        `yaml:"case_sensitive"`
}

type resultEntry struct {
	Category               string `yaml:"category"`
	PaymentDetail          string `yaml:"payment_detail"`
	NeedsDocumentNumber    bool   `yaml:"needs_document_number"`
	NeedsAttachment        bool   `yaml:"needs_attachment"`
	RegisterOfflinePayment bool   `yaml:"register_offline_payment"`
	RegisterCheckUsage     bool   `yaml:"register_check_usage"`
}

// LoadRuleFile reads rule definitions from a YAML file.
func LoadRuleFile(path string) ([]Definition, error) {
	data, err := os.ReadFile(path) // #nosec G304 - path comes from user configuration
	if err != nil {
		return nil, fmt.Errorf("failed to read rule file: %w", err)
	}

	defs, err := ParseRules(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("rule file %s: %w", path, err)
	}
	return defs, nil
}

// ParseRules decodes YAML rule definitions. Every entry is validated here so
// configuration mistakes surface before any record is classified.
func ParseRules(r io.Reader) ([]Definition, error) {
	var file ruleFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %w", common.ErrInvalidRule, err)
	}

	defs := make([]Definition, 0, len(file.Rules))
	for i, entry := range file.Rules {
		def, err := entry.definition()
		if err != nil {
			label := entry.Name
			if label == "" {
				label = fmt.Sprintf("#%d", i+1)
			}
			return nil, fmt.Errorf("%w: rule %s: %w", common.ErrInvalidRule, label, err)
		}
		defs = append(defs, def)
	}

	return defs, nil
}

func (e ruleEntry) definition() (Definition, error) {
	if strings.TrimSpace(e.Result.Category) == "" {
		return Definition{}, errors.New("result category is required")
	}

	rule := model.MatchRule{Name: e.Name}

	if e.Pattern != "" {
		kind := model.PatternLiteral
		if e.Regex {
			kind = model.PatternRegex
		}
		rule.Description = &model.DescriptionPattern{Kind: kind, Text: e.Pattern, CaseSensitive: e.CaseSensitive}
	}

	amount, err := e.amountCondition()
	if err != nil {
		return Definition{}, err
	}
	rule.Amount = amount

	if e.Direction != "" {
		d, err := model.ParseDirection(e.Direction)
		if err != nil {
			return Definition{}, err
		}
		rule.Direction = &d
	}

	return Definition{
		Rule: rule,
		Result: model.ClassificationResult{
			Category:               e.Result.Category,
			PaymentDetail:          e.Result.PaymentDetail,
			NeedsDocumentNumber:    e.Result.NeedsDocumentNumber,
			NeedsAttachment:        e.Result.NeedsAttachment,
			RegisterOfflinePayment: e.Result.RegisterOfflinePayment,
			RegisterCheckUsage:     e.Result.RegisterCheckUsage,
		},
	}, nil
}

func (e ruleEntry) amountCondition() (*model.AmountCondition, error) {
	cond := model.AmountConditionType(strings.ToLower(strings.TrimSpace(e.AmountCondition)))

	switch {
	case cond == "" && e.Amount == nil && e.AmountMin == nil && e.AmountMax == nil:
		return nil, nil
	case cond == "" && e.Amount != nil:
		cond = model.AmountEqual
	case cond == "" && (e.AmountMin != nil || e.AmountMax != nil):
		cond = model.AmountRange
	}

	c := &model.AmountCondition{Condition: cond}

	switch cond {
	case model.AmountAny:
		return c, nil
	case model.AmountRange:
		if e.AmountMin == nil || e.AmountMax == nil {
			return nil, errors.New("range amounts need amount_min and amount_max")
		}
		var err error
		if c.Min, err = parseAmount("amount_min", *e.AmountMin); err != nil {
			return nil, err
		}
		if c.Max, err = parseAmount("amount_max", *e.AmountMax); err != nil {
			return nil, err
		}
		return c, nil
	default:
		if e.Amount == nil {
			return nil, fmt.Errorf("amount_condition %q needs amount", cond)
		}
		v, err := parseAmount("amount", *e.Amount)
		if err != nil {
			return nil, err
		}
		c.Value = v
		return c, nil
	}
}

func parseAmount(field, raw string) (float64, error) {
	cleaned := strings.NewReplacer(",", "", "$", "").Replace(strings.TrimSpace(raw))
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("%s %q is not a number", field, raw)
	}
	return v, nil
}
