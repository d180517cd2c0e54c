// Package categorize assigns best-effort categories to bank transactions
// from an ordered table of keyword rules.
package categorize

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

//go:embed default_rules.yaml
var defaultRulesYAML []byte

// Direction restricts a rule to money in or money out.
type Direction string

const (
	Any    Direction = "any"
	Credit Direction = "credit"
	Debit  Direction = "debit"
)

// Rule maps descriptions containing any keyword to a category.
// A rule without keywords matches every transaction in its direction.
type Rule struct {
	Category  string    `yaml:"category"`
	Merchant  string    `yaml:"merchant,omitempty"`
	Keywords  []string  `yaml:"keywords,omitempty"`
	Direction Direction `yaml:"direction,omitempty"`
}

func (r Rule) matches(desc string, amount decimal.Decimal) bool {
	switch r.Direction {
	case Credit:
		if amount.IsNegative() {
			return false
		}
	case Debit:
		if !amount.IsNegative() {
			return false
		}
	}
	if len(r.Keywords) == 0 {
		return true
	}
	for _, k := range r.Keywords {
		if strings.Contains(desc, k) {
			return true
		}
	}
	return false
}

// RuleSet is an ordered rule table. The first matching rule wins.
type RuleSet struct {
	rules []Rule
}

type rulesFile struct {
	Rules []Rule `yaml:"rules"`
}

// NewRuleSet validates rules and normalizes their keywords.
func NewRuleSet(rules []Rule) (*RuleSet, error) {
	out := make([]Rule, 0, len(rules))
	for i, r := range rules {
		if strings.TrimSpace(r.Category) == "" {
			return nil, fmt.Errorf("rule %d: category is required", i+1)
		}
		switch r.Direction {
		case "":
			r.Direction = Any
		case Any, Credit, Debit:
		default:
			return nil, fmt.Errorf("rule %d: unknown direction %q", i+1, r.Direction)
		}
		kws := make([]string, 0, len(r.Keywords))
		for _, k := range r.Keywords {
			if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
				kws = append(kws, k)
			}
		}
		r.Keywords = kws
		out = append(out, r)
	}
	return &RuleSet{rules: out}, nil
}

// ParseRules reads a YAML rule table.
func ParseRules(data []byte) (*RuleSet, error) {
	var f rulesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing rules: %w", err)
	}
	return NewRuleSet(f.Rules)
}

// LoadRules reads a YAML rule table from disk.
func LoadRules(path string) (*RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rules: %w", err)
	}
	return ParseRules(data)
}

// DefaultRules returns the built-in rule table.
func DefaultRules() *RuleSet {
	rs, err := ParseRules(defaultRulesYAML)
	if err != nil {
		panic("invalid default rules: " + err.Error())
	}
	return rs
}

// DefaultRulesYAML returns the built-in rule table as YAML, for seeding a
// project's rules file.
func DefaultRulesYAML() []byte {
	return append([]byte(nil), defaultRulesYAML...)
}

// Rules returns a copy of the table.
func (s *RuleSet) Rules() []Rule {
	return append([]Rule(nil), s.rules...)
}

// Categorize returns the category and merchant of the first matching rule.
// ok is false when nothing matches.
func (s *RuleSet) Categorize(description string, amount decimal.Decimal) (category, merchant string, ok bool) {
	if s == nil {
		return "", "", false
	}
	desc := strings.ToLower(description)
	for _, r := range s.rules {
		if r.matches(desc, amount) {
			return r.Category, r.Merchant, true
		}
	}
	return "", "", false
}
